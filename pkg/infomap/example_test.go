package infomap_test

import (
	"fmt"
	"os"
	"strings"

	"github.com/ruliana/link-community/pkg/infomap"
)

func ExampleReadTree() {
	tree := `# Codelength = 2.1 bits.
1:1 0.4 "0" 0
1:2 0.3 "2" 2
2:1 0.3 "1" 1
`
	tf, err := infomap.ReadTree(strings.NewReader(tree))
	if err != nil {
		panic(err)
	}
	for _, c := range tf.Communities() {
		fmt.Println(c, tf.Members(c))
	}
	// Output:
	// 1 [0 2]
	// 2 [1]
}

func ExampleNameTree() {
	tree := "1:1 0.5 \"1\" 1\n1:2 0.5 \"0\" 0\n"
	names := []string{"alice", "bob"}
	if err := infomap.NameTree(strings.NewReader(tree), os.Stdout, names); err != nil {
		panic(err)
	}
	// Output:
	// 1:1 0.5 "bob" 1
	// 1:2 0.5 "alice" 0
}
