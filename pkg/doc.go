// Package pkg provides the libraries behind linkcomm, a link-community
// detector.
//
// # Overview
//
// Link communities group the edges of a graph instead of its nodes. Two
// edges that share a node are similar when the neighborhoods of their other
// endpoints overlap; single-linkage clustering over that similarity yields a
// dendrogram of edges, and cutting it at a level yields communities. Since a
// node belongs to every community one of its edges belongs to, communities
// overlap naturally.
//
// # Architecture
//
// The data flow through linkcomm:
//
//	CSV edge list
//	      ↓
//	 [io] package (read edges)
//	      ↓
//	 [graph] package (index nodes, edge similarity)
//	      ↓
//	 [slink] package (pointer representation, merge packs)
//	      ↓
//	 [dendro] package (assemble and cut the dendrogram)
//	      ↓
//	 JSON / DOT / SVG / PNG / PDF output
//
// # Quick Start
//
//	import (
//	    "context"
//	    "github.com/ruliana/link-community/pkg/graph"
//	)
//
//	g := graph.MustBuild(graph.Undirected, graph.Path("a", "b", "c", "d")...)
//	lc, _ := g.LinkCommunity(context.Background())
//	for _, community := range lc.CutByLevel(0.5) {
//	    fmt.Println(community)
//	}
//
// # Main Packages
//
// ## Core
//
// [graph] - Edges of four kinds (directed or not, weighted or not), the
// indexed graph and edge similarity: Jaccard for unweighted edges, Tanimoto
// for weighted ones.
//
// [slink] - Sibson's SLINK over any items and distance function. Each distance
// row can be computed by several goroutines.
//
// [dendro] - The dendrogram type, its assembly from SLINK merges, cuts,
// equality and JSON form.
//
// ## Adapters
//
// [io] - CSV edge lists in, dendrograms, cuts and level histograms out.
//
// [infomap] - Reading and relabeling Infomap .tree files.
//
// [render] and [render/nodelink] - Dendrograms as Graphviz diagrams, converted
// to PDF or PNG with librsvg.
//
// ## Infrastructure
//
// [pipeline] - Read → cluster → cut → render, shared by the CLI and the API.
//
// [cache] - Result cache with file, memory, Redis and MongoDB backends.
//
// [config] - TOML configuration with environment overrides.
//
// [api] - HTTP API over the pipeline.
//
// [errors] - Coded errors and input validation.
//
// [observability] - Hooks for clustering, pipeline, cache and HTTP events.
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...           # All tests
//	go test ./pkg/graph/...     # Specific package
//	go test -run Example ./...  # Examples only
//
// [graph]: https://pkg.go.dev/github.com/ruliana/link-community/pkg/graph
// [slink]: https://pkg.go.dev/github.com/ruliana/link-community/pkg/slink
// [dendro]: https://pkg.go.dev/github.com/ruliana/link-community/pkg/dendro
// [io]: https://pkg.go.dev/github.com/ruliana/link-community/pkg/io
// [infomap]: https://pkg.go.dev/github.com/ruliana/link-community/pkg/infomap
// [render]: https://pkg.go.dev/github.com/ruliana/link-community/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/ruliana/link-community/pkg/render/nodelink
// [pipeline]: https://pkg.go.dev/github.com/ruliana/link-community/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/ruliana/link-community/pkg/cache
// [config]: https://pkg.go.dev/github.com/ruliana/link-community/pkg/config
// [api]: https://pkg.go.dev/github.com/ruliana/link-community/pkg/api
// [errors]: https://pkg.go.dev/github.com/ruliana/link-community/pkg/errors
// [observability]: https://pkg.go.dev/github.com/ruliana/link-community/pkg/observability
package pkg
