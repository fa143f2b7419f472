package pipeline

import (
	"context"
	"io"
	"time"

	"github.com/ruliana/link-community/pkg/graph"
	lcio "github.com/ruliana/link-community/pkg/io"
	"github.com/ruliana/link-community/pkg/observability"
)

// ReadFile reads the CSV edge list at path.
func (r *Runner) ReadFile(ctx context.Context, path string, opts lcio.CSVOptions) ([]graph.Edge[string], error) {
	start := time.Now()
	edges, err := lcio.ImportCSV(path, opts)
	r.readDone(ctx, path, edges, time.Since(start), err)
	return edges, err
}

// Read reads a CSV edge list from rd. Source names it in logs.
func (r *Runner) Read(ctx context.Context, source string, rd io.Reader, opts lcio.CSVOptions) ([]graph.Edge[string], error) {
	start := time.Now()
	edges, err := lcio.ReadCSV(rd, opts)
	r.readDone(ctx, source, edges, time.Since(start), err)
	return edges, err
}

func (r *Runner) readDone(ctx context.Context, source string, edges []graph.Edge[string], d time.Duration, err error) {
	observability.Pipeline().OnReadComplete(ctx, source, len(edges), d, err)
	if err != nil {
		return
	}
	r.Logger.Info("read edge list",
		"source", source,
		"edges", len(edges),
		"duration", d)
}
