package graph

import (
	"math"
	"testing"
)

const tolerance = 1e-9

type simCase struct {
	e1, e2 Edge[string]
	want   float64
}

func checkSimilarities(t *testing.T, g *Graph[string], cases []simCase, tol float64) {
	t.Helper()
	for _, c := range cases {
		got, err := g.SimilarityNodes(c.e1, c.e2)
		if err != nil {
			t.Fatalf("SimilarityNodes(%v, %v): %v", c.e1, c.e2, err)
		}
		if math.Abs(got-c.want) > tol {
			t.Errorf("similarity(%v, %v) = %v, want %v", c.e1, c.e2, got, c.want)
		}
		back, _ := g.SimilarityNodes(c.e2, c.e1)
		if back != got {
			t.Errorf("similarity(%v, %v) = %v, not symmetric with %v", c.e2, c.e1, back, got)
		}
	}
}

// weightedEdges is a-b-c-d-e-f-c with d-f and a triangle a-b-g, weighted.
func weightedEdges(link func(a, b string, w float64) Edge[string]) []Edge[string] {
	return []Edge[string]{
		link("a", "b", 2), link("b", "c", 2), link("c", "d", 3),
		link("d", "e", 4), link("e", "f", 4), link("f", "c", 3),
		link("d", "f", 4), link("a", "g", 2), link("b", "g", 2),
	}
}

func TestSimilarityUndirected(t *testing.T) {
	g := simpleGraph(t)
	checkSimilarities(t, g, []simCase{
		{Link("a", "b"), Link("c", "d"), 0},
		{Link("a", "b"), Link("b", "c"), 1.0 / 5},
		{Link("b", "c"), Link("c", "d"), 1.0 / 6},
		{Link("c", "f"), Link("f", "d"), 3.0 / 5},
		{Link("a", "b"), Link("a", "b"), 1},
		{Link("a", "b"), Link("b", "a"), 1},
	}, tolerance)
}

func TestSimilarityDirected(t *testing.T) {
	g := MustBuild(DirectedUnweighted,
		DLink("a", "b"), DLink("b", "c"), DLink("c", "d"),
		DLink("d", "e"), DLink("e", "f"), DLink("f", "c"),
		DLink("d", "f"), DLink("a", "g"), DLink("b", "g"))

	checkSimilarities(t, g, []simCase{
		{Link("a", "b"), Link("c", "d"), 0},
		{Link("a", "g"), Link("b", "g"), 0.5},
		{Link("a", "b"), Link("a", "g"), 1.0 / 3},
		{Link("a", "b"), Link("b", "g"), 1.0 / 3},
	}, tolerance)
}

func TestSimilarityUndirectedWeighted(t *testing.T) {
	g := MustBuild(UndirectedWeighted, weightedEdges(WeightedLink[string])...)

	checkSimilarities(t, g, []simCase{
		{WeightedLink("a", "b", 1), WeightedLink("c", "d", 3), 0},
		{WeightedLink("a", "b", 2), WeightedLink("a", "g", 2), 3.0 / 4},
		{WeightedLink("g", "b", 2), WeightedLink("a", "g", 2), 3.0 / 4},
		{WeightedLink("b", "a", 2), WeightedLink("b", "g", 2), 1},
	}, tolerance)

	checkSimilarities(t, g, []simCase{
		{WeightedLink("c", "d", 3), WeightedLink("c", "f", 3), 0.996},
		{WeightedLink("e", "d", 3), WeightedLink("e", "f", 3), 0.996},
		{WeightedLink("c", "b", 2), WeightedLink("c", "d", 3), 0.093},
	}, 1e-3)
}

func TestSimilarityDirectedWeighted(t *testing.T) {
	g := MustBuild(DirectedWeighted, weightedEdges(WeightedDLink[string])...)
	checkSimilarities(t, g, []simCase{
		{Link("a", "b"), Link("c", "d"), 0},
		{Link("a", "g"), Link("b", "g"), 0.5},
		{Link("a", "b"), Link("a", "g"), 0},
		{Link("a", "b"), Link("b", "g"), 0},
	}, tolerance)
}

func TestSimilarityDirectedWeightedCases(t *testing.T) {
	tests := []struct {
		name  string
		edges []Edge[string]
		cases []simCase
	}{
		{
			name:  "mutual connection",
			edges: []Edge[string]{WeightedDLink("a", "b", 99999), WeightedDLink("b", "a", 1)},
			cases: []simCase{{Link("a", "b"), Link("b", "a"), 1}},
		},
		{
			name:  "coming to the same vertex",
			edges: []Edge[string]{WeightedDLink("a", "b", 2), WeightedDLink("c", "b", 2)},
			cases: []simCase{{Link("a", "b"), Link("c", "b"), 1.0 / 3}},
		},
		{
			name: "coming to two vertices",
			edges: []Edge[string]{
				WeightedDLink("a", "b", 2), WeightedDLink("c", "b", 2),
				WeightedDLink("a", "d", 2), WeightedDLink("c", "d", 2),
			},
			cases: []simCase{
				{Link("a", "b"), Link("c", "b"), 1.0 / 2},
				{Link("a", "d"), Link("c", "d"), 1.0 / 2},
			},
		},
		{
			name:  "leaving the same vertex",
			edges: []Edge[string]{WeightedDLink("b", "a", 2), WeightedDLink("b", "c", 2)},
			cases: []simCase{{Link("b", "a"), Link("b", "c"), 0}},
		},
		{
			name: "leaving the same vertex with one extra link",
			edges: []Edge[string]{
				WeightedDLink("b", "a", 2), WeightedDLink("b", "c", 2), WeightedDLink("c", "a", 2),
			},
			cases: []simCase{{Link("b", "a"), Link("b", "c"), 0}},
		},
		{
			name: "leaving the same vertex with cycle",
			edges: []Edge[string]{
				WeightedDLink("b", "a", 2), WeightedDLink("b", "c", 2),
				WeightedDLink("a", "c", 2), WeightedDLink("c", "a", 2),
			},
			cases: []simCase{{Link("b", "a"), Link("b", "c"), 1}},
		},
		{
			name: "leaving the same vertex with extra node",
			edges: []Edge[string]{
				WeightedDLink("b", "a", 2), WeightedDLink("b", "c", 2),
				WeightedDLink("a", "d", 2), WeightedDLink("c", "d", 2),
			},
			cases: []simCase{{Link("b", "a"), Link("b", "c"), 1.0 / 3}},
		},
		{
			name:  "fairly connected",
			edges: fairlyConnected(),
			cases: []simCase{
				{Link("a", "c"), Link("b", "c"), 3.0 / 4},
				{Link("a", "d"), Link("b", "d"), 3.0 / 4},
				{Link("a", "c"), Link("a", "d"), 0},
				{Link("b", "c"), Link("b", "d"), 0},
				{Link("c", "d"), Link("b", "d"), 2.0 / 3},
				{Link("a", "c"), Link("a", "b"), 2.0 / 3},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checkSimilarities(t, MustBuild(DirectedWeighted, tt.edges...), tt.cases, tolerance)
		})
	}
}

// fairlyConnected is (a)->(c)<-(b), (a)->(d)<-(b), (a)->(b), (c)->(d).
func fairlyConnected() []Edge[string] {
	return []Edge[string]{
		WeightedDLink("a", "c", 2), WeightedDLink("a", "d", 2),
		WeightedDLink("b", "c", 2), WeightedDLink("b", "d", 2),
		WeightedDLink("a", "b", 2), WeightedDLink("c", "d", 2),
	}
}

func TestSimilarityBounded(t *testing.T) {
	graphs := map[string]*Graph[string]{
		"undirected":          simpleGraph(t),
		"undirected-weighted": MustBuild(UndirectedWeighted, weightedEdges(WeightedLink[string])...),
		"directed-weighted":   MustBuild(DirectedWeighted, weightedEdges(WeightedDLink[string])...),
	}
	for name, g := range graphs {
		edges := g.Edges()
		for _, e1 := range edges {
			for _, e2 := range edges {
				s := g.Similarity(e1, e2)
				if s < 0 || s > 1 || math.IsNaN(s) {
					t.Errorf("%s: Similarity(%v, %v) = %v, out of [0, 1]", name, e1, e2, s)
				}
				if s != g.Similarity(e2, e1) {
					t.Errorf("%s: Similarity(%v, %v) not symmetric", name, e1, e2)
				}
				if d := g.Distance(e1, e2); d != 1-s {
					t.Errorf("%s: Distance = %v, want %v", name, d, 1-s)
				}
			}
			if s := g.Similarity(e1, e1); s != 1 {
				t.Errorf("%s: Similarity(%v, itself) = %v, want 1", name, e1, s)
			}
		}
	}
}

func TestUnitWeightsMatchUnweighted(t *testing.T) {
	plain := simpleGraph(t)
	var weighted []Edge[string]
	for _, e := range plain.NodeEdges() {
		weighted = append(weighted, WeightedLink(e.From(), e.To(), 1))
	}
	wg := MustBuild(UndirectedWeighted, weighted...)

	for _, e1 := range plain.NodeEdges() {
		for _, e2 := range plain.NodeEdges() {
			a, _ := plain.SimilarityNodes(e1, e2)
			b, _ := wg.SimilarityNodes(e1, e2)
			if math.Abs(a-b) > tolerance {
				t.Errorf("similarity(%v, %v): unweighted %v, unit weights %v", e1, e2, a, b)
			}
		}
	}
}

func TestWeightVector(t *testing.T) {
	g := MustBuild(UndirectedWeighted,
		WeightedLink("a", "b", 2), WeightedLink("a", "b", 4), WeightedLink("a", "c", 3))
	a, _ := g.FindIndex("a")
	b, _ := g.FindIndex("b")
	c, _ := g.FindIndex("c")

	// a has partials b:2, b:4, c:3; mean 3, the last parallel edge wins.
	want := []Partial{{a, 3}, {b, 4}, {c, 3}}
	got := g.WeightVector(a)
	if len(got) != len(want) {
		t.Fatalf("WeightVector(a) = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("WeightVector(a)[%d] = %v, want %v", i, got[i], want[i])
		}
	}

	loop := MustBuild(UndirectedWeighted, WeightedLink("a", "a", 5), WeightedLink("a", "b", 1))
	if v := loop.WeightVector(0); v[0] != (Partial{0, 5}) {
		t.Errorf("self loop entry = %v, want {0 5}", v[0])
	}

	reversed := MustBuild(UndirectedWeighted,
		WeightedLink("a", "b", 4), WeightedLink("a", "c", 3), WeightedLink("b", "a", 2))
	if v := reversed.WeightVector(0); len(v) != 3 || v[1] != (Partial{1, 2}) {
		t.Errorf("WeightVector(a) = %v, want b at the weight of the last edge, 2", v)
	}

	sink := MustBuild(DirectedWeighted, WeightedDLink("a", "b", 1))
	if v := sink.WeightVector(1); len(v) != 0 {
		t.Errorf("sink WeightVector = %v, want empty", v)
	}

	if v := simpleGraph(t).WeightVector(0); v != nil {
		t.Errorf("unweighted WeightVector = %v, want nil", v)
	}
}

func TestSimilarityUnknownNode(t *testing.T) {
	g := simpleGraph(t)
	if _, err := g.SimilarityNodes(Link("a", "b"), Link("b", "z")); err == nil {
		t.Error("SimilarityNodes with unknown node: want error")
	}
}

func TestIdenticalAndDisjointDoNotAllocate(t *testing.T) {
	g := simpleGraph(t)
	e := g.Edges()
	allocs := testing.AllocsPerRun(100, func() {
		_ = g.Similarity(e[0], e[0])
		_ = g.Similarity(e[0], e[3])
	})
	if allocs != 0 {
		t.Errorf("allocations = %v, want 0", allocs)
	}
}
