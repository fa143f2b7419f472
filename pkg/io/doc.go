// Package io reads and writes the files around a link-community run: CSV
// edge lists on the way in, JSON dendrograms, groups and level histograms on
// the way out.
//
// # Edge lists
//
// Edge lists are CSV files with one edge per row:
//
//	from,to,weight
//	a,b,2
//	b,c,2.5
//
// [ReadCSV] and [ImportCSV] decode them according to [CSVOptions]; the
// directed and weighted switches select the [graph.Kind] of every edge.
// [WriteCSV] and [ExportCSV] write the same format back, so a file can be
// round-tripped.
//
//	edges, err := io.ImportCSV("edges.csv", io.DefaultCSVOptions())
//	g, err := graph.Build(graph.DirectedWeighted, edges)
//
// # Dendrograms
//
// [WriteDendrogramJSON] writes the nested tree:
//
//	{
//	  "level": 0.83,
//	  "members": [],
//	  "children": [
//	    {"level": 0.8, "members": [{"from": "a", "to": "b"}, {"from": "b", "to": "c"}]}
//	  ]
//	}
//
// The empty dendrogram (zero or one edge) has a null level.
// [ReadDendrogramJSON] reads it back and rejects trees whose children are not
// strictly below their parent.
//
// # Cuts and levels
//
// [WriteGroupsJSON] numbers the groups of a cut, largest first, and
// [WriteLevelsJSON] writes the merge histogram sorted by level.
package io
