package cache

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()
	defer c.Close()

	k := NewDefaultKeyer()
	keys := []string{
		k.ClusterKey(Hash([]byte("a,b\nb,c\n")), ClusterKeyOpts{Kind: "undirected"}),
		k.RenderKey(Hash([]byte("tree")), RenderKeyOpts{Format: "svg"}),
	}
	for _, key := range keys {
		t.Run(KeyType(key), func(t *testing.T) {
			if err := c.Set(ctx, key, []byte("dendrogram"), TTLCluster); err != nil {
				t.Fatalf("Set: %v", err)
			}
			data, hit, err := c.Get(ctx, key)
			if err != nil || hit || data != nil {
				t.Errorf("Get() = %q, %v, %v, want a miss", data, hit, err)
			}
			if err := c.Delete(ctx, key); err != nil {
				t.Errorf("Delete: %v", err)
			}
		})
	}
}

// exercise runs the behaviour every local backend shares.
func exercise(t *testing.T, c Cache) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := c.Get(ctx, "missing"); err != nil || hit {
		t.Errorf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := c.Set(ctx, "k", []byte("dendrogram"), time.Hour); err != nil {
		t.Fatalf("Set: %v", err)
	}
	data, hit, err := c.Get(ctx, "k")
	if err != nil || !hit || string(data) != "dendrogram" {
		t.Errorf("Get(k) = %q, %v, %v", data, hit, err)
	}

	if err := c.Set(ctx, "stale", []byte("x"), time.Nanosecond); err != nil {
		t.Fatalf("Set: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, hit, _ := c.Get(ctx, "stale"); hit {
		t.Error("expired entry should miss")
	}

	if err := c.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete: %v", err)
	}
	if _, hit, _ := c.Get(ctx, "k"); hit {
		t.Error("deleted entry should miss")
	}
	if err := c.Delete(ctx, "never-set"); err != nil {
		t.Errorf("Delete(never-set): %v", err)
	}
}

func TestFileCache(t *testing.T) {
	c, err := NewFileCache(filepath.Join(t.TempDir(), "linkcomm"))
	if err != nil {
		t.Fatalf("NewFileCache: %v", err)
	}
	defer c.Close()
	exercise(t, c)
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	path := c.path("k")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(ctx, "k"); hit || err != nil {
		t.Errorf("Get(corrupt) = hit %v, err %v, want clean miss", hit, err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry should be removed")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatal(err)
		}
	}

	n, err := c.Clear()
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if n != 3 {
		t.Errorf("Clear() = %d, want 3", n)
	}
	entries, _ := os.ReadDir(c.Dir())
	if len(entries) != 0 {
		t.Errorf("cache dir still holds %d entries", len(entries))
	}
}

func TestMemoryCache(t *testing.T) {
	c, err := NewMemoryCache(4)
	if err != nil {
		t.Fatalf("NewMemoryCache: %v", err)
	}
	defer c.Close()
	exercise(t, c)
}

func TestMemoryCacheEvicts(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(2)
	if err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"a", "b", "c"} {
		_ = c.Set(ctx, k, []byte(k), 0)
	}
	if c.Len() != 2 {
		t.Errorf("Len() = %d, want 2", c.Len())
	}
	if _, hit, _ := c.Get(ctx, "a"); hit {
		t.Error("least recently used entry should be evicted")
	}
}

func TestTiered(t *testing.T) {
	ctx := context.Background()
	front, _ := NewMemoryCache(8)
	back, _ := NewMemoryCache(8)
	c := NewTiered(front, back, time.Minute)
	exercise(t, c)

	// A back-tier hit is copied forward.
	_ = back.Set(ctx, "only-back", []byte("v"), 0)
	if data, hit, err := c.Get(ctx, "only-back"); err != nil || !hit || string(data) != "v" {
		t.Fatalf("Get(only-back) = %q, %v, %v", data, hit, err)
	}
	if _, hit, _ := front.Get(ctx, "only-back"); !hit {
		t.Error("back-tier hit was not copied to the front tier")
	}
}

type failingCache struct {
	NullCache
	calls int
}

func (f *failingCache) Get(context.Context, string) ([]byte, bool, error) {
	f.calls++
	return nil, false, ErrNetwork
}

func TestBreaker(t *testing.T) {
	mem, _ := NewMemoryCache(8)
	exercise(t, NewBreaker(mem, DefaultBreakerSettings("memory")))

	ctx := context.Background()
	back := &failingCache{}
	b := NewBreaker(back, BreakerSettings{Name: "flaky", Failures: 2, Cooldown: time.Hour})

	for i := 0; i < 2; i++ {
		if _, _, err := b.Get(ctx, "k"); !errors.Is(err, ErrNetwork) {
			t.Fatalf("Get() error = %v, want ErrNetwork", err)
		}
	}
	if b.State() != gobreaker.StateOpen {
		t.Fatalf("State() = %v, want open", b.State())
	}
	if _, hit, err := b.Get(ctx, "k"); hit || !errors.Is(err, ErrBreakerOpen) {
		t.Errorf("Get() on open breaker = %v, %v, want ErrBreakerOpen", hit, err)
	}
	if back.calls != 2 {
		t.Errorf("backend calls = %d, want 2", back.calls)
	}
}

func TestBreakerMissIsNotFailure(t *testing.T) {
	b := NewBreaker(NewNullCache(), BreakerSettings{Name: "null", Failures: 1, Cooldown: time.Hour})
	for i := 0; i < 3; i++ {
		if _, hit, err := b.Get(context.Background(), "k"); hit || err != nil {
			t.Fatalf("Get() = %v, %v, want miss", hit, err)
		}
	}
	if b.State() != gobreaker.StateClosed {
		t.Errorf("State() = %v, want closed", b.State())
	}
}

func TestRedisCacheUnreachable(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	c := NewRedisCacheFromClient(client)
	c.remote.delay = time.Millisecond
	defer c.Close()

	_, hit, err := c.Get(context.Background(), "k")
	if hit || !errors.Is(err, ErrNetwork) {
		t.Errorf("Get() = hit %v, err %v, want network error", hit, err)
	}
}

func TestNewRedisCacheBadURL(t *testing.T) {
	if _, err := NewRedisCache(context.Background(), "http://nope"); err == nil {
		t.Error("NewRedisCache should reject a non-redis URL")
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		opts Options
		want string
	}{
		{"default", Options{}, "*cache.NullCache"},
		{"none", Options{Backend: BackendNone}, "*cache.NullCache"},
		{"file", Options{Backend: BackendFile, Dir: t.TempDir()}, "*cache.FileCache"},
		{"memory", Options{Backend: BackendMemory}, "*cache.MemoryCache"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := Open(ctx, tt.opts)
			if err != nil {
				t.Fatalf("Open: %v", err)
			}
			defer c.Close()
			if got := typeName(c); got != tt.want {
				t.Errorf("Open() = %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := Open(ctx, Options{Backend: "etcd"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open(etcd) error = %v, want ErrUnknownBackend", err)
	}
}

func typeName(c Cache) string {
	switch c.(type) {
	case *NullCache:
		return "*cache.NullCache"
	case *FileCache:
		return "*cache.FileCache"
	case *MemoryCache:
		return "*cache.MemoryCache"
	case *Tiered:
		return "*cache.Tiered"
	}
	return "unknown"
}

func TestHash(t *testing.T) {
	edges := []byte("from,to\na,b\n")
	if Hash(edges) != Hash(edges) {
		t.Error("Hash should be deterministic")
	}
	if Hash(edges) == Hash([]byte("from,to\nb,a\n")) {
		t.Error("different edge lists should hash differently")
	}
	if len(Hash(edges)) != 64 {
		t.Errorf("Hash length = %d, want 64", len(Hash(edges)))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()
	graph := Hash([]byte("a,b"))

	tests := []struct {
		name   string
		key    string
		prefix string
	}{
		{"cluster", k.ClusterKey(graph, ClusterKeyOpts{Kind: "directed-weighted"}), "cluster:directed-weighted:"},
		{"cluster without kind", k.ClusterKey(graph, ClusterKeyOpts{}), "cluster:-:"},
		{"render", k.RenderKey(graph, RenderKeyOpts{Format: "png", Scale: 2}), "render:png:"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !strings.HasPrefix(tt.key, tt.prefix) {
				t.Errorf("key = %q, want prefix %q", tt.key, tt.prefix)
			}
			if got := len(tt.key) - len(tt.prefix); got != 64 {
				t.Errorf("hash part has %d chars, want 64", got)
			}
		})
	}

	if k.ClusterKey(graph, ClusterKeyOpts{Kind: "undirected"}) == k.ClusterKey(graph, ClusterKeyOpts{Kind: "directed"}) {
		t.Error("graph kind should change the cluster key")
	}
	svg := RenderKeyOpts{Format: "svg", Precision: 2}
	detailed := svg
	detailed.Detailed = true
	if k.RenderKey(graph, svg) == k.RenderKey(graph, detailed) {
		t.Error("detail should change the render key")
	}
	if k.RenderKey(graph, svg) == k.RenderKey(Hash([]byte("other tree")), svg) {
		t.Error("the dendrogram hash should change the render key")
	}
}

func TestKeyType(t *testing.T) {
	k := NewScopedKeyer(nil, "staging:")
	tests := []struct {
		key  string
		want string
	}{
		{NewDefaultKeyer().ClusterKey("g", ClusterKeyOpts{Kind: "undirected"}), KeyTypeCluster},
		{k.ClusterKey("g", ClusterKeyOpts{}), KeyTypeCluster},
		{k.RenderKey("t", RenderKeyOpts{Format: "svg"}), KeyTypeRender},
		{"session:abc", ""},
	}
	for _, tt := range tests {
		if got := KeyType(tt.key); got != tt.want {
			t.Errorf("KeyType(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	opts := ClusterKeyOpts{Kind: "undirected"}

	tests := []struct {
		name  string
		inner Keyer
		scope string
		want  string
	}{
		{"with colon", inner, "staging:", "staging:" + inner.ClusterKey("g", opts)},
		{"colon added", inner, "staging", "staging:" + inner.ClusterKey("g", opts)},
		{"nil inner", nil, "team-a", "team-a:" + inner.ClusterKey("g", opts)},
		{"empty scope", inner, "", inner.ClusterKey("g", opts)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewScopedKeyer(tt.inner, tt.scope).ClusterKey("g", opts); got != tt.want {
				t.Errorf("ClusterKey() = %s, want %s", got, tt.want)
			}
		})
	}

	render := NewScopedKeyer(inner, "staging").RenderKey("tree", RenderKeyOpts{Format: "svg"})
	if !strings.HasPrefix(render, "staging:render:svg:") {
		t.Errorf("RenderKey() = %s, want staging:render:svg: prefix", render)
	}
	if KeyType(render) != KeyTypeRender {
		t.Errorf("KeyType(%s) = %q, want %q", render, KeyType(render), KeyTypeRender)
	}
}

func TestRemoteRetries(t *testing.T) {
	errDown := errors.New("connection refused")
	errFinal := errors.New("bad command")
	r := &remote{backend: BackendRedis, delay: time.Millisecond, transient: func(err error) bool { return err == errDown }}
	ctx := context.Background()

	tests := []struct {
		name      string
		results   []error
		wantCalls int
		wantErr   error
	}{
		{"success", []error{nil}, 1, nil},
		{"final error", []error{errFinal}, 1, errFinal},
		{"recovers", []error{errDown, nil}, 2, nil},
		{"gives up", []error{errDown, errDown, errDown, nil}, remoteAttempts, ErrNetwork},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := r.do(ctx, "get", func() error {
				calls++
				return tt.results[calls-1]
			})
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("do() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("do() = %v, want %v", err, tt.wantErr)
			}
			var be *BackendError
			if !errors.As(err, &be) || be.Backend != BackendRedis || be.Op != "get" {
				t.Errorf("do() = %#v, want a redis get BackendError", err)
			}
		})
	}
}

func TestRemoteCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &remote{backend: BackendMongo, delay: time.Hour, transient: func(error) bool { return true }}
	calls := 0
	err := r.do(ctx, "ping", func() error {
		calls++
		return errors.New("no server")
	})
	if !errors.Is(err, context.Canceled) || !errors.Is(err, ErrNetwork) {
		t.Errorf("do() = %v, want context.Canceled and ErrNetwork", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestNewMongoCacheBadURI(t *testing.T) {
	_, err := NewMongoCache(context.Background(), "http://nope", "", "")
	var be *BackendError
	if !errors.As(err, &be) || be.Backend != BackendMongo || be.Op != "connect" {
		t.Errorf("NewMongoCache(bad uri) error = %v, want a mongo connect BackendError", err)
	}
}

func TestMongoCacheUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	uri := "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=100&connectTimeoutMS=100"
	start := time.Now()
	_, err := Open(ctx, Options{Backend: BackendMongo, MongoURI: uri})
	var be *BackendError
	if !errors.As(err, &be) || be.Backend != BackendMongo || be.Op != "ping" {
		t.Fatalf("Open(mongo) error = %v, want a mongo ping BackendError", err)
	}
	if d := time.Since(start); d > 5*time.Second {
		t.Errorf("Open(mongo) took %v, want it bounded by the context", d)
	}
}
