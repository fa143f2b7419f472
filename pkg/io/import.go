package io

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ruliana/link-community/pkg/dendro"
	lcerr "github.com/ruliana/link-community/pkg/errors"
	"github.com/ruliana/link-community/pkg/graph"
)

// CSVOptions controls how an edge list is read.
type CSVOptions struct {
	// Directed reads every row as a directed edge from column 1 to column 2.
	Directed bool
	// Weighted reads column 3 as the edge weight. Rows without a weight are
	// rejected.
	Weighted bool
	// Header skips the first row.
	Header bool
	// Comma is the field separator; zero means ','.
	Comma rune
}

// DefaultCSVOptions matches the files written by [WriteCSV]: a header row,
// comma separated, directed and weighted.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{Directed: true, Weighted: true, Header: true, Comma: ','}
}

// Kind returns the edge kind produced with these options.
func (o CSVOptions) Kind() graph.Kind {
	return graph.KindOf(o.Directed, o.Weighted)
}

// ReadCSV decodes an edge list from r.
//
// Each row holds "from,to" or "from,to,weight". Node names are trimmed and
// must be non-empty. With Weighted unset a weight column is ignored.
// Blank lines are skipped. Errors name the offending line.
//
// ReadCSV does not close r.
func ReadCSV(r io.Reader, opts CSVOptions) ([]graph.Edge[string], error) {
	cr := csv.NewReader(r)
	if opts.Comma != 0 {
		cr.Comma = opts.Comma
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	kind := opts.Kind()
	var edges []graph.Edge[string]
	for first := true; ; first = false {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, lcerr.Wrap(lcerr.ErrCodeInvalidFormat, err, "read csv")
		}
		if first && opts.Header {
			continue
		}
		line, _ := cr.FieldPos(0)

		e, err := parseRow(rec, kind)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		edges = append(edges, e)
	}
	return edges, nil
}

func parseRow(rec []string, kind graph.Kind) (graph.Edge[string], error) {
	if len(rec) < 2 {
		return graph.Edge[string]{}, lcerr.New(lcerr.ErrCodeInvalidFormat,
			"expected at least 2 columns, got %d", len(rec))
	}
	from, to := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1])
	if err := lcerr.ValidateNodeName(from); err != nil {
		return graph.Edge[string]{}, err
	}
	if err := lcerr.ValidateNodeName(to); err != nil {
		return graph.Edge[string]{}, err
	}

	w := 1.0
	if kind.IsWeighted() {
		if len(rec) < 3 || strings.TrimSpace(rec[2]) == "" {
			return graph.Edge[string]{}, lcerr.New(lcerr.ErrCodeInvalidFormat, "missing weight for %s,%s", from, to)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(rec[2]), 64)
		if err != nil {
			return graph.Edge[string]{}, lcerr.Wrap(lcerr.ErrCodeInvalidFormat, err, "weight %q", rec[2])
		}
		if err := lcerr.ValidateWeight(v); err != nil {
			return graph.Edge[string]{}, err
		}
		w = v
	}
	return graph.NewEdge(kind, from, to, w), nil
}

// ImportCSV reads the edge list at path. See [ReadCSV].
func ImportCSV(path string, opts CSVOptions) ([]graph.Edge[string], error) {
	if err := lcerr.ValidatePath(path); err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, lcerr.Wrap(lcerr.ErrCodeFileNotFound, err, "open %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f, opts)
}

// ImportGraph reads the edge list at path and builds the graph.
func ImportGraph(path string, opts CSVOptions) (*graph.Graph[string], error) {
	edges, err := ImportCSV(path, opts)
	if err != nil {
		return nil, err
	}
	return graph.Build(opts.Kind(), edges)
}

// ReadDendrogramJSON decodes a dendrogram written by [WriteDendrogramJSON]
// and checks its structure.
func ReadDendrogramJSON[T any](r io.Reader) (*dendro.Dendro[T], error) {
	var d dendro.Dendro[T]
	if err := json.NewDecoder(r).Decode(&d); err != nil {
		return nil, lcerr.Wrap(lcerr.ErrCodeInvalidFormat, err, "decode dendrogram")
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// ImportDendrogramJSON reads a dendrogram file. See [ReadDendrogramJSON].
func ImportDendrogramJSON[T any](path string) (*dendro.Dendro[T], error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadDendrogramJSON[T](f)
}
