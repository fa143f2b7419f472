// Package pipeline runs link-community detection end to end for the CLI and
// the HTTP API.
//
// # Architecture
//
// The pipeline consists of four stages:
//
//  1. Read: Decode an edge list (CSV) and build the indexed graph
//  2. Cluster: Run SLINK over the edges and assemble the dendrogram
//  3. Cut: Split the dendrogram into groups at the requested levels
//  4. Render: Produce artifacts (JSON, DOT, SVG, PNG, PDF)
//
// Clustering and rendering are cached under content-derived keys, so running
// the same edge list twice only pays for the cheap stages.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	edges, err := runner.ReadFile(ctx, "edges.csv", csvOpts)
//	result, err := runner.Execute(ctx, edges, pipeline.Options{
//	    Directed: true,
//	    Weighted: true,
//	    Levels:   []float64{0.5},
//	    Formats:  []string{"svg"},
//	})
//	svg := result.Artifacts["svg"]
package pipeline

import (
	"slices"
	"time"

	"github.com/charmbracelet/log"

	"github.com/ruliana/link-community/pkg/cache"
	"github.com/ruliana/link-community/pkg/dendro"
	lcerr "github.com/ruliana/link-community/pkg/errors"
	"github.com/ruliana/link-community/pkg/graph"
	"github.com/ruliana/link-community/pkg/slink"
)

// Format constants for output artifacts.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// DefaultScale is the PNG scale factor used when none is given.
const DefaultScale = 2.0

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// Options contains all configuration for one pipeline run.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Graph options
	Directed bool `json:"directed,omitempty"`
	Weighted bool `json:"weighted,omitempty"`

	// Cut options
	Levels []float64 `json:"levels,omitempty"`

	// Render options
	Formats   []string `json:"formats,omitempty"`
	Detailed  bool     `json:"detailed,omitempty"`
	Precision int      `json:"precision,omitempty"`
	Scale     float64  `json:"scale,omitempty"`

	// Refresh recomputes the dendrogram even when it is cached.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized). Logger overrides the runner's
	// logger for this run.
	Logger   *log.Logger          `json:"-"`
	Cluster  []slink.Option       `json:"-"`
	Progress func(slink.Progress) `json:"-"`
}

// Kind returns the edge kind selected by Directed and Weighted.
func (o *Options) Kind() graph.Kind {
	return graph.KindOf(o.Directed, o.Weighted)
}

// ValidateAndSetDefaults checks the options and fills in defaults. It is
// idempotent.
func (o *Options) ValidateAndSetDefaults() error {
	for _, l := range o.Levels {
		if err := lcerr.ValidateLevel(l); err != nil {
			return err
		}
	}
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Scale < 0 {
		return lcerr.New(lcerr.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	return nil
}

// RenderKeyOpts returns cache key options for one artifact.
func (o *Options) RenderKeyOpts(format string) cache.RenderKeyOpts {
	opts := cache.RenderKeyOpts{Format: format, Detailed: o.Detailed, Precision: o.Precision}
	if format == FormatPNG {
		opts.Scale = o.Scale
	}
	return opts
}

// ClusterOptions returns the SLINK options for the run, including the
// progress callback.
func (o *Options) ClusterOptions() []slink.Option {
	opts := slices.Clone(o.Cluster)
	if o.Progress != nil {
		opts = append(opts, slink.WithProgress(o.Progress))
	}
	return opts
}

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return lcerr.New(lcerr.ErrCodeInvalidInput, "invalid format: %q (must be one of: json, dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// RunID identifies the run in logs and API responses.
	RunID string

	// Graph is the indexed edge graph.
	Graph *graph.Graph[string]

	// GraphHash is the content hash of the deduplicated edge list.
	GraphHash string

	// TreeHash is the content hash of the dendrogram.
	TreeHash string

	// Dendrogram is the assembled edge dendrogram.
	Dendrogram *dendro.Dendro[graph.Edge[string]]

	// Levels counts the merges at each distance level.
	Levels map[float64]int

	// Cuts holds one entry per requested level, in request order.
	Cuts []Cut

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Cut is the grouping of edges at one level.
type Cut struct {
	Level  float64
	Groups [][]graph.Edge[string]
}

// Stats contains pipeline execution statistics.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	Merges      int
	BuildTime   time.Duration
	ClusterTime time.Duration
	RenderTime  time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	ClusterHit bool // Whether the dendrogram came from cache
	RenderHit  bool // Whether all artifacts came from cache
}
