package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/ruliana/link-community/pkg/cache"
	lcerr "github.com/ruliana/link-community/pkg/errors"
	"github.com/ruliana/link-community/pkg/graph"
	lcio "github.com/ruliana/link-community/pkg/io"
	"github.com/ruliana/link-community/pkg/slink"
)

// AppName names the configuration file, cache directory and environment
// prefix.
const AppName = "linkcomm"

// FileName is the configuration file looked up by [Find].
const FileName = AppName + ".toml"

// Config is the full configuration of a linkcomm process.
type Config struct {
	Graph   Graph   `toml:"graph"`
	CSV     CSV     `toml:"csv"`
	Cluster Cluster `toml:"cluster"`
	Cache   Cache   `toml:"cache"`
	Server  Server  `toml:"server"`
}

// Graph selects the edge kind.
type Graph struct {
	Directed bool `toml:"directed"`
	Weighted bool `toml:"weighted"`
}

// CSV describes the edge-list layout.
type CSV struct {
	Header bool   `toml:"header"`
	Comma  string `toml:"comma"`
}

// Cluster tunes the SLINK run.
type Cluster struct {
	Workers           int `toml:"workers"`
	ParallelThreshold int `toml:"parallel_threshold"`
	ProgressEvery     int `toml:"progress_every"`
}

// Cache selects the result cache backend.
type Cache struct {
	Backend         string        `toml:"backend"`
	Dir             string        `toml:"dir"`
	MemoryEntries   int           `toml:"memory_entries"`
	FrontTTL        time.Duration `toml:"front_ttl"`
	Prefix          string        `toml:"prefix"`
	RedisURL        string        `toml:"redis_url"`
	MongoURI        string        `toml:"mongo_uri"`
	MongoDatabase   string        `toml:"mongo_database"`
	MongoCollection string        `toml:"mongo_collection"`
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `toml:"addr"`
	ReadTimeout     time.Duration `toml:"read_timeout"`
	WriteTimeout    time.Duration `toml:"write_timeout"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout"`
	MaxBodyBytes    int64         `toml:"max_body_bytes"`
	MaxEdges        int           `toml:"max_edges"`
	AllowedOrigins  []string      `toml:"allowed_origins"`
	Metrics         bool          `toml:"metrics"`
}

// Default returns the built-in configuration: undirected unweighted edges,
// comma-separated with a header, file cache, API on :8080.
func Default() Config {
	return Config{
		CSV: CSV{Header: true, Comma: ","},
		Cluster: Cluster{
			Workers:           1,
			ParallelThreshold: slink.DefaultParallelThreshold,
			ProgressEvery:     slink.DefaultProgressEvery,
		},
		Cache: Cache{
			Backend:       cache.BackendFile,
			MemoryEntries: cache.DefaultMemoryEntries,
		},
		Server: Server{
			Addr:            ":8080",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    5 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			MaxBodyBytes:    32 << 20,
			MaxEdges:        20000,
		},
	}
}

// Load reads a TOML file over [Default], applies LINKCOMM_* environment
// overrides and validates the result. An empty path skips the file.
// Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := lcerr.ValidatePath(path); err != nil {
			return cfg, err
		}
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return cfg, lcerr.Wrap(lcerr.ErrCodeFileNotFound, err, "config %s", path)
			}
			return cfg, lcerr.Wrap(lcerr.ErrCodeInvalidConfig, err, "decode %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, lcerr.New(lcerr.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// LoadDotEnv loads KEY=value pairs from the given files into the process
// environment, without overriding variables already set. Missing files are
// skipped.
func LoadDotEnv(files ...string) error {
	for _, f := range files {
		if _, err := os.Stat(f); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(f); err != nil {
			return lcerr.Wrap(lcerr.ErrCodeInvalidConfig, err, "load %s", f)
		}
	}
	return nil
}

// Find returns the first configuration file that exists: ./linkcomm.toml,
// then $XDG_CONFIG_HOME/linkcomm/linkcomm.toml. It returns "" when there is
// none.
func Find() string {
	candidates := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, AppName, FileName))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return ""
}

// ApplyEnv overrides fields from LINKCOMM_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := map[string]*string{
		"LINKCOMM_CACHE_BACKEND":    &c.Cache.Backend,
		"LINKCOMM_CACHE_DIR":        &c.Cache.Dir,
		"LINKCOMM_CACHE_PREFIX":     &c.Cache.Prefix,
		"LINKCOMM_REDIS_URL":        &c.Cache.RedisURL,
		"LINKCOMM_MONGO_URI":        &c.Cache.MongoURI,
		"LINKCOMM_MONGO_DATABASE":   &c.Cache.MongoDatabase,
		"LINKCOMM_MONGO_COLLECTION": &c.Cache.MongoCollection,
		"LINKCOMM_SERVER_ADDR":      &c.Server.Addr,
	}
	for _, k := range slices.Sorted(maps.Keys(str)) {
		if v, ok := lookup(k); ok {
			*str[k] = v
		}
	}

	if v, ok := lookup("LINKCOMM_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return lcerr.Wrap(lcerr.ErrCodeInvalidConfig, err, "LINKCOMM_WORKERS")
		}
		c.Cluster.Workers = n
	}
	if v, ok := lookup("LINKCOMM_SERVER_METRICS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return lcerr.Wrap(lcerr.ErrCodeInvalidConfig, err, "LINKCOMM_SERVER_METRICS")
		}
		c.Server.Metrics = b
	}
	if v, ok := lookup("LINKCOMM_ALLOWED_ORIGINS"); ok {
		c.Server.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.Server.AllowedOrigins = append(c.Server.AllowedOrigins, o)
			}
		}
	}
	return nil
}

// Validate checks that the configuration is usable.
func (c Config) Validate() error {
	if utf8.RuneCountInString(c.CSV.Comma) != 1 {
		return lcerr.New(lcerr.ErrCodeInvalidConfig, "csv.comma must be a single character, got %q", c.CSV.Comma)
	}
	if r, _ := utf8.DecodeRuneInString(c.CSV.Comma); r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
		return lcerr.New(lcerr.ErrCodeInvalidConfig, "csv.comma %q is not a valid separator", c.CSV.Comma)
	}
	if c.Cluster.Workers < 0 {
		return lcerr.New(lcerr.ErrCodeInvalidConfig, "cluster.workers must be >= 0, got %d", c.Cluster.Workers)
	}
	if c.Cluster.ParallelThreshold < 0 {
		return lcerr.New(lcerr.ErrCodeInvalidConfig, "cluster.parallel_threshold must be >= 0")
	}
	if c.Cluster.ProgressEvery < 0 {
		return lcerr.New(lcerr.ErrCodeInvalidConfig, "cluster.progress_every must be >= 0")
	}

	switch c.Cache.Backend {
	case cache.BackendNone, cache.BackendFile, cache.BackendMemory:
	case cache.BackendRedis:
		if err := lcerr.ValidateURL(c.Cache.RedisURL, "redis", "rediss"); err != nil {
			return lcerr.Wrap(lcerr.ErrCodeInvalidConfig, err, "cache.redis_url")
		}
	case cache.BackendMongo:
		if err := lcerr.ValidateURL(c.Cache.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			return lcerr.Wrap(lcerr.ErrCodeInvalidConfig, err, "cache.mongo_uri")
		}
	default:
		return lcerr.New(lcerr.ErrCodeInvalidConfig, "cache.backend %q is not one of none, file, memory, redis, mongo", c.Cache.Backend)
	}
	if c.Cache.MemoryEntries < 0 {
		return lcerr.New(lcerr.ErrCodeInvalidConfig, "cache.memory_entries must be >= 0")
	}

	if c.Server.Addr == "" {
		return lcerr.New(lcerr.ErrCodeInvalidConfig, "server.addr must not be empty")
	}
	if c.Server.MaxBodyBytes <= 0 {
		return lcerr.New(lcerr.ErrCodeInvalidConfig, "server.max_body_bytes must be positive")
	}
	if c.Server.MaxEdges < 0 {
		return lcerr.New(lcerr.ErrCodeInvalidConfig, "server.max_edges must be >= 0")
	}
	return nil
}

// Kind returns the configured edge kind.
func (c Config) Kind() graph.Kind {
	return graph.KindOf(c.Graph.Directed, c.Graph.Weighted)
}

// CSVOptions converts the [graph] and [csv] tables for [lcio.ReadCSV].
func (c Config) CSVOptions() lcio.CSVOptions {
	comma, _ := utf8.DecodeRuneInString(c.CSV.Comma)
	return lcio.CSVOptions{
		Directed: c.Graph.Directed,
		Weighted: c.Graph.Weighted,
		Header:   c.CSV.Header,
		Comma:    comma,
	}
}

// ClusterOptions converts the [cluster] table into SLINK options.
func (c Config) ClusterOptions() []slink.Option {
	return []slink.Option{
		slink.WithWorkers(c.Cluster.Workers),
		slink.WithParallelThreshold(c.Cluster.ParallelThreshold),
		slink.WithProgressEvery(c.Cluster.ProgressEvery),
	}
}

// CacheOptions converts the [cache] table. An empty directory falls back to
// [DefaultCacheDir].
func (c Config) CacheOptions() (cache.Options, error) {
	dir := c.Cache.Dir
	if dir == "" && c.Cache.Backend == cache.BackendFile {
		d, err := DefaultCacheDir()
		if err != nil {
			return cache.Options{}, fmt.Errorf("cache dir: %w", err)
		}
		dir = d
	}
	return cache.Options{
		Backend:         c.Cache.Backend,
		Dir:             dir,
		MemoryEntries:   c.Cache.MemoryEntries,
		RedisURL:        c.Cache.RedisURL,
		MongoURI:        c.Cache.MongoURI,
		MongoDatabase:   c.Cache.MongoDatabase,
		MongoCollection: c.Cache.MongoCollection,
		FrontTTL:        c.Cache.FrontTTL,
	}, nil
}

// Keyer returns the cache keyer, scoped by the [cache] prefix when one is set
// so that several deployments can share a Redis or MongoDB backend.
func (c Config) Keyer() cache.Keyer {
	if c.Cache.Prefix == "" {
		return cache.NewDefaultKeyer()
	}
	return cache.NewScopedKeyer(nil, c.Cache.Prefix)
}

// DefaultCacheDir returns the cache directory using XDG standard
// (~/.cache/linkcomm/).
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}
