package observability

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRegister(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	if _, ok := Clustering().(NoopClusterHooks); !ok {
		t.Errorf("Clustering() = %T, want NoopClusterHooks", Clustering())
	}

	cluster := &testClusterHooks{}
	cache := testCacheHooks{}
	Register(Hooks{Cluster: cluster, Cache: cache})
	if Clustering() != cluster || Cache() != cache {
		t.Errorf("Register() did not install the given hooks: %T, %T", Clustering(), Cache())
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want NoopHTTPHooks after a partial Register", HTTP())
	}

	SetHTTPHooks(testHTTPHooks{})
	SetClusterHooks(nil)
	if Clustering() != cluster {
		t.Error("SetClusterHooks(nil) replaced the cluster hooks")
	}
	if _, ok := HTTP().(testHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want testHTTPHooks", HTTP())
	}
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Errorf("Pipeline() = %T, want NoopPipelineHooks", Pipeline())
	}

	Reset()
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Errorf("Cache() after Reset = %T, want NoopCacheHooks", Cache())
	}
}

func TestRegisterConcurrent(t *testing.T) {
	t.Cleanup(Reset)
	Reset()

	cluster := &testClusterHooks{}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetClusterHooks(cluster)
		}()
		go func() {
			defer wg.Done()
			SetHTTPHooks(testHTTPHooks{})
		}()
	}
	wg.Wait()

	if Clustering() != cluster {
		t.Errorf("Clustering() = %T, want the registered hooks", Clustering())
	}
	if _, ok := HTTP().(testHTTPHooks); !ok {
		t.Errorf("HTTP() = %T, want testHTTPHooks", HTTP())
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	h := &testClusterHooks{}
	SetClusterHooks(h)

	ctx := context.Background()
	Clustering().OnClusterStart(ctx, 3)
	Clustering().OnClusterProgress(ctx, 1, 3, time.Millisecond)
	Clustering().OnClusterProgress(ctx, 2, 3, time.Millisecond)
	Clustering().OnClusterComplete(ctx, 3, 2, time.Millisecond, nil)

	if h.starts != 1 || h.progress != 2 || h.completes != 1 {
		t.Errorf("events = (%d, %d, %d), want (1, 2, 1)", h.starts, h.progress, h.completes)
	}
}

type testClusterHooks struct {
	starts, progress, completes int
}

func (h *testClusterHooks) OnClusterStart(context.Context, int) { h.starts++ }
func (h *testClusterHooks) OnClusterProgress(context.Context, int, int, time.Duration) {
	h.progress++
}
func (h *testClusterHooks) OnClusterComplete(context.Context, int, int, time.Duration, error) {
	h.completes++
}

type testCacheHooks struct{}

func (testCacheHooks) OnCacheHit(context.Context, string)      {}
func (testCacheHooks) OnCacheMiss(context.Context, string)     {}
func (testCacheHooks) OnCacheSet(context.Context, string, int) {}

type testHTTPHooks struct{}

func (testHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (testHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (testHTTPHooks) OnError(context.Context, string, string, string, error)                 {}
