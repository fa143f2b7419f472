package infomap

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	lcerr "github.com/ruliana/link-community/pkg/errors"
)

// treeLineRE matches a module path ("1:2:") followed by the leaf rank and
// ending in the node index.
var treeLineRE = regexp.MustCompile(`^((?:\d+:)+)\d+.*?(\d+)$`)

// TreeFile holds the module hierarchy of an Infomap .tree file.
//
// Every node belongs to each prefix of its module path: a node at
// "1:2:5" is a member of "1" and of "1:2". Communities keep the order in
// which they first appear in the file.
type TreeFile struct {
	order   []string
	members map[string][]int
	nodes   map[int][]string
}

func newTreeFile() *TreeFile {
	return &TreeFile{
		members: make(map[string][]int),
		nodes:   make(map[int][]string),
	}
}

func (t *TreeFile) add(community string, node int) {
	ms, ok := t.members[community]
	if !ok {
		t.order = append(t.order, community)
	}
	if i, found := slices.BinarySearch(ms, node); !found {
		t.members[community] = slices.Insert(ms, i, node)
		t.nodes[node] = append(t.nodes[node], community)
	}
}

// ReadTree parses a .tree file. Lines that do not carry a module path, such
// as the "# codelength" header, are skipped.
func ReadTree(r io.Reader) (*TreeFile, error) {
	t := newTreeFile()
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		m := treeLineRE.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		node, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, lcerr.Wrap(lcerr.ErrCodeInvalidFormat, err, "node index in %q", line)
		}
		path := strings.Split(strings.TrimSuffix(m[1], ":"), ":")
		for i := range path {
			t.add(strings.Join(path[:i+1], ":"), node)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read tree: %w", err)
	}
	return t, nil
}

// ImportTree reads the .tree file at path.
func ImportTree(path string) (*TreeFile, error) {
	if err := lcerr.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, lcerr.Wrap(lcerr.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTree(f)
}

// Communities lists the module paths in file order.
func (t *TreeFile) Communities() []string { return slices.Clone(t.order) }

// Len returns the number of communities.
func (t *TreeFile) Len() int { return len(t.order) }

// Members returns the sorted node indices of community c, or nil if c is
// unknown.
func (t *TreeFile) Members(c string) []int { return slices.Clone(t.members[c]) }

// CommunitiesFor returns the communities node belongs to, outermost first.
// An unknown node belongs to none.
func (t *TreeFile) CommunitiesFor(node int) []string { return slices.Clone(t.nodes[node]) }

// Select returns a new TreeFile restricted to the named communities.
// Unknown names are ignored.
func (t *TreeFile) Select(communities ...string) *TreeFile {
	out := newTreeFile()
	for _, c := range t.order {
		if !slices.Contains(communities, c) {
			continue
		}
		for _, n := range t.members[c] {
			out.add(c, n)
		}
	}
	return out
}

// Each calls fn for every community in file order until fn returns false.
func (t *TreeFile) Each(fn func(community string, members []int) bool) {
	for _, c := range t.order {
		if !fn(c, t.members[c]) {
			return
		}
	}
}
