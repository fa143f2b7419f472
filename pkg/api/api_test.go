package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/ruliana/link-community/pkg/cache"
	"github.com/ruliana/link-community/pkg/config"
	"github.com/ruliana/link-community/pkg/observability"
	"github.com/ruliana/link-community/pkg/pipeline"
)

const simpleEdgesJSON = `[
	{"from":"a","to":"b"},{"from":"b","to":"c"},{"from":"c","to":"d"},
	{"from":"d","to":"e"},{"from":"e","to":"f"},{"from":"f","to":"c"},
	{"from":"d","to":"f"}
]`

func newTestServer(t *testing.T, mutate func(*config.Server)) *httptest.Server {
	t.Helper()
	mc, err := cache.NewMemoryCache(32)
	if err != nil {
		t.Fatalf("NewMemoryCache: %v", err)
	}
	logger := log.New(io.Discard)
	cfg := config.Default().Server
	if mutate != nil {
		mutate(&cfg)
	}
	srv := httptest.NewServer(New(pipeline.NewRunner(mc, nil, logger), cfg, logger).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func post(t *testing.T, url, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, contentType, strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return v
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	resp, err := http.Get(srv.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if _, err := uuid.Parse(resp.Header.Get(RequestIDHeader)); err != nil {
		t.Errorf("X-Request-ID = %q, want a UUID", resp.Header.Get(RequestIDHeader))
	}
	if body := decode[HealthResponse](t, resp); body.Status != "ok" {
		t.Errorf("status = %q, want ok", body.Status)
	}
}

func TestRequestIDPropagation(t *testing.T) {
	srv := newTestServer(t, nil)
	id := uuid.NewString()

	req, _ := http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != id {
		t.Errorf("X-Request-ID = %q, want %q", got, id)
	}

	req.Header.Set(RequestIDHeader, "not-a-uuid")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got == "not-a-uuid" {
		t.Error("malformed request ID was echoed")
	}
}

func TestCommunitiesJSON(t *testing.T) {
	srv := newTestServer(t, nil)
	body := `{"edges":` + simpleEdgesJSON + `,"levels":[0.5],"formats":["dot"]}`

	resp := post(t, srv.URL+"/v1/communities", "application/json", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decode[CommunitiesResponse](t, resp)

	if got.Nodes != 6 || got.Edges != 7 || got.Merges != 6 {
		t.Errorf("nodes, edges, merges = %d, %d, %d, want 6, 7, 6", got.Nodes, got.Edges, got.Merges)
	}
	if got.Dendrogram == nil || len(got.Dendrogram.AllMembers()) != 7 {
		t.Errorf("dendrogram = %v, want 7 members", got.Dendrogram)
	}
	if len(got.Cuts) != 1 || len(got.Cuts[0].Groups) != 3 {
		t.Errorf("cuts = %+v, want one cut with 3 groups", got.Cuts)
	}
	if len(got.Cuts) == 1 && got.Cuts[0].Groups[0].Size != 4 {
		t.Errorf("largest group size = %d, want 4", got.Cuts[0].Groups[0].Size)
	}
	if !strings.HasPrefix(got.Artifacts["dot"], "digraph G {") {
		t.Errorf("dot artifact = %q", got.Artifacts["dot"])
	}
	if got.Cached.Cluster {
		t.Error("first request hit the cache")
	}

	again := decode[CommunitiesResponse](t, post(t, srv.URL+"/v1/communities", "application/json", body))
	if !again.Cached.Cluster || !again.Cached.Render {
		t.Errorf("second request cached = %+v, want both", again.Cached)
	}
	if again.GraphHash != got.GraphHash {
		t.Errorf("graph hash changed: %s vs %s", again.GraphHash, got.GraphHash)
	}
}

func TestCommunitiesCSV(t *testing.T) {
	srv := newTestServer(t, nil)
	csv := "from,to,weight\na,b,1\nb,c,2\nc,a,1\n"

	resp := post(t, srv.URL+"/v1/communities?header=true&weighted=true&level=1", "text/csv", csv)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decode[CommunitiesResponse](t, resp)
	if got.Edges != 3 || got.Merges != 2 {
		t.Errorf("edges, merges = %d, %d, want 3, 2", got.Edges, got.Merges)
	}
	if len(got.Cuts) != 1 || got.Cuts[0].Level != 1 {
		t.Errorf("cuts = %+v, want one cut at 1", got.Cuts)
	}
}

func TestCommunitiesCSVField(t *testing.T) {
	srv := newTestServer(t, nil)
	body := `{"csv":"a,b\nb,c\n","directed":true}`
	resp := post(t, srv.URL+"/v1/communities", "application/json", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if got := decode[CommunitiesResponse](t, resp); got.Edges != 2 {
		t.Errorf("edges = %d, want 2", got.Edges)
	}
}

func TestCommunitiesErrors(t *testing.T) {
	srv := newTestServer(t, func(c *config.Server) {
		c.MaxEdges = 3
		c.MaxBodyBytes = 512
	})

	tests := []struct {
		name        string
		contentType string
		path        string
		body        string
		wantStatus  int
		wantCode    string
	}{
		{"malformed json", "application/json", "/v1/communities", `{"edges":`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"unknown field", "application/json", "/v1/communities", `{"edgez":[]}`, http.StatusBadRequest, "INVALID_FORMAT"},
		{"missing weight", "application/json", "/v1/communities", `{"weighted":true,"edges":[{"from":"a","to":"b"}]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"negative weight", "application/json", "/v1/communities", `{"weighted":true,"edges":[{"from":"a","to":"b","weight":-1}]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"empty node", "application/json", "/v1/communities", `{"edges":[{"from":"","to":"b"}]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"edges and csv", "application/json", "/v1/communities", `{"csv":"a,b","edges":[{"from":"a","to":"b"}]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"bad format", "application/json", "/v1/communities", `{"edges":[{"from":"a","to":"b"}],"formats":["gif"]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"too many edges", "application/json", "/v1/communities", `{"edges":` + simpleEdgesJSON + `}`, http.StatusRequestEntityTooLarge, "INVALID_INPUT"},
		{"body too large", "application/json", "/v1/communities", `{"csv":"` + strings.Repeat("x", 1024) + `"}`, http.StatusRequestEntityTooLarge, "TOO_LARGE"},
		{"bad query level", "text/csv", "/v1/communities?level=inf", "a,b\n", http.StatusBadRequest, "INVALID_INPUT"},
		{"bad query bool", "text/csv", "/v1/communities?directed=maybe", "a,b\n", http.StatusBadRequest, "INVALID_INPUT"},
		{"bad csv", "text/csv", "/v1/communities?weighted=true", "a,b\n", http.StatusBadRequest, "INVALID_FORMAT"},
		{"no route", "application/json", "/v1/nothing", `{}`, http.StatusNotFound, "NOT_FOUND"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+tt.path, tt.contentType, tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			body := decode[ErrorBody](t, resp)
			if body.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q (message %q)", body.Error.Code, tt.wantCode, body.Error.Message)
			}
			if body.Error.RequestID == "" {
				t.Error("error body has no request ID")
			}
		})
	}
}

func TestSimilarity(t *testing.T) {
	srv := newTestServer(t, nil)
	body := `{"edges":` + simpleEdgesJSON + `,"pairs":[
		{"a":{"from":"a","to":"b"},"b":{"from":"b","to":"c"}},
		{"a":{"from":"c","to":"d"},"b":{"from":"c","to":"f"}},
		{"a":{"from":"a","to":"b"},"b":{"from":"e","to":"f"}}
	]}`

	resp := post(t, srv.URL+"/v1/similarity", "application/json", body)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	got := decode[SimilarityResponse](t, resp)
	want := []float64{1.0 / 5, 1, 0}
	if len(got.Similarities) != len(want) {
		t.Fatalf("len(similarities) = %d, want %d", len(got.Similarities), len(want))
	}
	for i, w := range want {
		if d := got.Similarities[i].Similarity - w; d > 1e-9 || d < -1e-9 {
			t.Errorf("similarity[%d] = %v, want %v", i, got.Similarities[i].Similarity, w)
		}
	}
}

func TestSimilarityErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantCode   string
	}{
		{"no pairs", `{"edges":[{"from":"a","to":"b"}]}`, http.StatusBadRequest, "INVALID_INPUT"},
		{"unknown node", `{"edges":[{"from":"a","to":"b"}],"pairs":[{"a":{"from":"a","to":"b"},"b":{"from":"a","to":"z"}}]}`, http.StatusNotFound, "LOOKUP_FAILURE"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/v1/similarity", "application/json", tt.body)
			if resp.StatusCode != tt.wantStatus {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if body := decode[ErrorBody](t, resp); body.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Error.Code, tt.wantCode)
			}
		})
	}
}

type recordingHooks struct {
	observability.NoopHTTPHooks
	requests, responses, errors int
}

func (h *recordingHooks) OnRequest(context.Context, string, string, string) { h.requests++ }
func (h *recordingHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {
	h.responses++
}
func (h *recordingHooks) OnError(context.Context, string, string, string, error) { h.errors++ }

func TestHTTPHooks(t *testing.T) {
	hooks := &recordingHooks{}
	observability.SetHTTPHooks(hooks)
	t.Cleanup(observability.Reset)

	logger := log.New(io.Discard)
	h := New(pipeline.NewRunner(nil, nil, logger), config.Default().Server, logger).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/similarity", bytes.NewBufferString("{")))

	if hooks.requests != 2 || hooks.responses != 2 || hooks.errors != 1 {
		t.Errorf("hooks = %d requests, %d responses, %d errors, want 2, 2, 1",
			hooks.requests, hooks.responses, hooks.errors)
	}
}

func TestServeShutdown(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	logger := log.New(io.Discard)
	cfg := config.Default().Server
	cfg.ShutdownTimeout = time.Second
	s := New(pipeline.NewRunner(nil, nil, logger), cfg, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	resp, err := http.Get("http://" + ln.Addr().String() + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Serve() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func TestValidationMessage(t *testing.T) {
	srv := newTestServer(t, nil)
	resp := post(t, srv.URL+"/v1/communities", "application/json",
		`{"edges":[{"from":"a","to":"b"},{"from":"b"}],"precision":-3}`)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	body := decode[ErrorBody](t, resp)
	for _, want := range []string{"edges[1].to is required", "precision must be at least -1"} {
		if !strings.Contains(body.Error.Message, want) {
			t.Errorf("message = %q, want it to contain %q", body.Error.Message, want)
		}
	}
}

func TestCORS(t *testing.T) {
	srv := newTestServer(t, func(c *config.Server) {
		c.AllowedOrigins = []string{"https://example.org"}
	})

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/v1/communities", nil)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://example.org" {
		t.Errorf("Access-Control-Allow-Origin = %q, want the configured origin", got)
	}

	req, _ = http.NewRequest(http.MethodGet, srv.URL+"/healthz", nil)
	req.Header.Set("Origin", "https://evil.example")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("unknown origin allowed: %q", got)
	}
}

func TestMetricsRoute(t *testing.T) {
	m := observability.NewMetrics("linkcomm")
	m.Install()
	t.Cleanup(observability.Reset)

	logger := log.New(io.Discard)
	h := New(pipeline.NewRunner(nil, nil, logger), config.Default().Server, logger).WithMetrics(m.Handler()).Handler()

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d", rec.Code)
	}
	if want := `linkcomm_http_requests_total{method="GET",route="/healthz",status="200"} 1`; !strings.Contains(rec.Body.String(), want) {
		t.Errorf("metrics missing %s", want)
	}
}
