package io

import (
	"cmp"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"

	"github.com/ruliana/link-community/pkg/dendro"
	"github.com/ruliana/link-community/pkg/graph"
)

// WriteCSV writes edges as a "from,to,weight" edge list. Unweighted edges
// leave the weight column out.
func WriteCSV[N cmp.Ordered](w io.Writer, edges []graph.Edge[N]) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"from", "to", "weight"}); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, e := range edges {
		rec := []string{fmt.Sprint(e.From()), fmt.Sprint(e.To())}
		if wt, ok := e.Weight(); ok {
			rec = append(rec, strconv.FormatFloat(wt, 'g', -1, 64))
		}
		if err := cw.Write(rec); err != nil {
			return fmt.Errorf("write %v: %w", e, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// ExportCSV writes edges to a CSV file at path. See [WriteCSV].
func ExportCSV[N cmp.Ordered](path string, edges []graph.Edge[N]) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteCSV(f, edges)
}

// WriteDendrogramJSON encodes d as indented JSON.
func WriteDendrogramJSON[T any](w io.Writer, d *dendro.Dendro[T]) error {
	return encode(w, d)
}

// ExportDendrogramJSON writes d to a JSON file at path.
func ExportDendrogramJSON[T any](path string, d *dendro.Dendro[T]) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteDendrogramJSON(f, d)
}

// Group is one community of a cut.
type Group[T any] struct {
	ID      int `json:"id"`
	Size    int `json:"size"`
	Members []T `json:"members"`
}

// Groups is the JSON form of a dendrogram cut.
type Groups[T any] struct {
	Level  float64    `json:"level"`
	Groups []Group[T] `json:"groups"`
}

// NewGroups numbers the groups of a cut, largest first. Groups of equal
// size keep their cut order.
func NewGroups[T any](level float64, groups [][]T) Groups[T] {
	out := Groups[T]{Level: level, Groups: make([]Group[T], len(groups))}
	for i, g := range groups {
		out.Groups[i] = Group[T]{Size: len(g), Members: g}
	}
	slices.SortStableFunc(out.Groups, func(a, b Group[T]) int { return cmp.Compare(b.Size, a.Size) })
	for i := range out.Groups {
		out.Groups[i].ID = i
	}
	return out
}

// WriteGroupsJSON encodes the groups of a cut at level.
func WriteGroupsJSON[T any](w io.Writer, level float64, groups [][]T) error {
	return encode(w, NewGroups(level, groups))
}

// LevelCount is the number of merges at one level.
type LevelCount struct {
	Level  float64 `json:"level"`
	Merges int     `json:"merges"`
}

// SortLevels flattens a level histogram, highest level first.
func SortLevels(levels map[float64]int) []LevelCount {
	out := make([]LevelCount, 0, len(levels))
	for l, n := range levels {
		out = append(out, LevelCount{Level: l, Merges: n})
	}
	slices.SortFunc(out, func(a, b LevelCount) int { return cmp.Compare(b.Level, a.Level) })
	return out
}

// WriteLevelsJSON encodes a level histogram as a list sorted by level.
func WriteLevelsJSON(w io.Writer, levels map[float64]int) error {
	return encode(w, SortLevels(levels))
}

func encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
