package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/ruliana/link-community/pkg/cache"
	"github.com/ruliana/link-community/pkg/dendro"
	"github.com/ruliana/link-community/pkg/graph"
	lcio "github.com/ruliana/link-community/pkg/io"
	"github.com/ruliana/link-community/pkg/observability"
	"github.com/ruliana/link-community/pkg/render/nodelink"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, tree *dendro.Dendro[graph.Edge[string]], opts Options) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(opts.Formats))
	dot := ""
	for _, format := range opts.Formats {
		start := time.Now()
		var data []byte
		var err error

		switch format {
		case FormatJSON:
			var buf bytes.Buffer
			err = lcio.WriteDendrogramJSON(&buf, tree)
			data = buf.Bytes()
		default:
			if dot == "" {
				dot = nodelink.ToDOT(tree, nodelink.Options{Detailed: opts.Detailed, Precision: opts.Precision})
			}
			data, err = nodelink.Render(ctx, dot, format, opts.Scale)
		}

		observability.Pipeline().OnRenderComplete(ctx, format, time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("render %s: %w", format, err)
		}
		artifacts[format] = data
	}
	return artifacts, nil
}

// RenderWithCacheInfo generates artifacts with caching and returns cache hit info.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, tree *dendro.Dendro[graph.Edge[string]], treeHash string, opts Options) (map[string][]byte, bool, error) {
	hooks := observability.Cache()

	// Try to get all formats from cache
	artifacts := make(map[string][]byte)
	for _, format := range opts.Formats {
		key := r.Keyer.RenderKey(treeHash, opts.RenderKeyOpts(format))
		data, hit, err := r.Cache.Get(ctx, key)
		if err != nil || !hit {
			hooks.OnCacheMiss(ctx, cache.KeyTypeRender)
			break
		}
		hooks.OnCacheHit(ctx, cache.KeyTypeRender)
		artifacts[format] = data
	}
	if len(artifacts) == len(opts.Formats) {
		return artifacts, true, nil
	}

	rendered, err := Render(ctx, tree, opts)
	if err != nil {
		return nil, false, err
	}

	// Cache each format
	for format, data := range rendered {
		key := r.Keyer.RenderKey(treeHash, opts.RenderKeyOpts(format))
		if err := r.Cache.Set(ctx, key, data, cache.TTLRender); err == nil {
			hooks.OnCacheSet(ctx, cache.KeyTypeRender, len(data))
		}
	}
	return rendered, false, nil
}
