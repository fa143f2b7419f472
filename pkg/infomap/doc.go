// Package infomap reads the .tree files written by the Infomap community
// detector and relabels them with node names.
//
// A .tree line looks like
//
//	1:2:5 0.00123 "17" 17
//
// where "1:2" is the module path, 5 the rank of the leaf inside its module,
// and the trailing 17 the node index. [ReadTree] collects, for every prefix
// of every module path, the set of node indices below it:
//
//	tf, err := infomap.ReadTree(f)
//	for _, c := range tf.Communities() {
//	    fmt.Println(c, tf.Members(c))
//	}
//
// [NameTree] rewrites a .tree file so the quoted index becomes the node name
// read with [ReadNames].
package infomap
