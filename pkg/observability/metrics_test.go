package observability

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsHooks(t *testing.T) {
	ctx := context.Background()
	m := NewMetrics("linkcomm")

	m.OnClusterStart(ctx, 10)
	m.OnClusterProgress(ctx, 5, 10, time.Second)
	if got := testutil.ToFloat64(m.clusterProgress); got != 0.5 {
		t.Errorf("cluster progress = %v, want 0.5", got)
	}
	m.OnClusterComplete(ctx, 10, 9, time.Second, nil)
	m.OnClusterComplete(ctx, 4, 0, time.Millisecond, errors.New("cancelled"))

	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"runs ok", testutil.ToFloat64(m.clusterRuns.WithLabelValues("ok")), 1},
		{"runs error", testutil.ToFloat64(m.clusterRuns.WithLabelValues("error")), 1},
		{"edges", testutil.ToFloat64(m.clusterItems), 10},
		{"merges", testutil.ToFloat64(m.clusterMerges), 9},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
		}
	}

	m.OnCacheHit(ctx, "cluster")
	m.OnCacheMiss(ctx, "render")
	m.OnCacheSet(ctx, "render", 512)
	if got := testutil.ToFloat64(m.cacheOps.WithLabelValues("cluster", "hit")); got != 1 {
		t.Errorf("cluster hits = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.cacheBytes.WithLabelValues("render")); got != 512 {
		t.Errorf("render bytes = %v, want 512", got)
	}

	m.OnReadComplete(ctx, "edges.csv", 7, time.Millisecond, nil)
	m.OnRenderComplete(ctx, "svg", time.Millisecond, nil)
	if got := testutil.ToFloat64(m.readEdges); got != 7 {
		t.Errorf("read edges = %v, want 7", got)
	}
	if got := testutil.ToFloat64(m.renders.WithLabelValues("svg", "ok")); got != 1 {
		t.Errorf("svg renders = %v, want 1", got)
	}

	m.OnRequest(ctx, "id", "POST", "/v1/communities")
	if got := testutil.ToFloat64(m.httpInFlight); got != 1 {
		t.Errorf("in flight = %v, want 1", got)
	}
	m.OnError(ctx, "id", "POST", "/v1/communities", errors.New("bad"))
	m.OnResponse(ctx, "id", "POST", "/v1/communities", 400, time.Millisecond)
	if got := testutil.ToFloat64(m.httpInFlight); got != 0 {
		t.Errorf("in flight = %v, want 0", got)
	}
	if got := testutil.ToFloat64(m.httpRequests.WithLabelValues("POST", "/v1/communities", "400")); got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
}

func TestMetricsInstallAndHandler(t *testing.T) {
	m := NewMetrics("linkcomm")
	m.Install()
	t.Cleanup(Reset)

	if Cache() != CacheHooks(m) {
		t.Fatal("Install should register the cache hooks")
	}
	Cache().OnCacheHit(context.Background(), "cluster")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("GET /metrics status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `linkcomm_cache_operations_total{key_type="cluster",result="hit"} 1`) {
		t.Errorf("metrics output missing cache hit counter:\n%s", body)
	}
}
