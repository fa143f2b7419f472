// Package graph provides the indexed edge graph and the edge similarity used
// to detect link communities.
//
// Link communities are clusters of edges rather than nodes: two edges that
// meet at a node are similar when the other two endpoints have similar
// neighborhoods. Clustering the edges with single linkage yields a
// dendrogram whose cuts are overlapping node communities.
//
// # Edges
//
// An [Edge] is one of four variants selected by its [Kind]:
//
//	graph.Link("a", "b")               // undirected
//	graph.WeightedLink("a", "b", 2)    // undirected, weighted
//	graph.DLink("a", "b")              // directed
//	graph.WeightedDLink("a", "b", 2)   // directed, weighted
//
// # Graphs
//
// [Build] deduplicates edges, sorts the nodes and rewrites every edge to
// node indices. Adjacency is computed once, on first use. Directed graphs
// only record out-neighbors.
//
//	g, err := graph.Build(graph.Undirected, graph.Path("a", "b", "c"))
//	i, _ := g.FindIndex("b")
//	g.Neighbors(i) // a and c
//
// # Similarity
//
// [Graph.Similarity] is 0 for edges without a common endpoint and 1 for the
// same edge (either direction). Otherwise it compares the two endpoints that
// are not shared:
//
//   - unweighted: Jaccard index of the closed neighborhoods
//   - weighted: Tanimoto coefficient of the weight vectors
//
// # Communities
//
// [Graph.LinkCommunity] runs SLINK over the edges with distance
// 1 - similarity and returns the dendrogram with edges expressed as nodes:
//
//	c, err := g.LinkCommunity(ctx)
//	groups := c.CutByLevel(0.5)
package graph
