package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	lcerr "github.com/ruliana/link-community/pkg/errors"
	"github.com/ruliana/link-community/pkg/graph"
	lcio "github.com/ruliana/link-community/pkg/io"
)

// EdgeRequest is one edge in a request body. Weight is required when the
// graph is weighted and ignored otherwise.
type EdgeRequest struct {
	From   string   `json:"from" validate:"required"`
	To     string   `json:"to" validate:"required"`
	Weight *float64 `json:"weight,omitempty"`
}

// GraphRequest describes the edge list of a request, either as JSON edges
// or as CSV text.
type GraphRequest struct {
	Directed bool          `json:"directed,omitempty"`
	Weighted bool          `json:"weighted,omitempty"`
	Edges    []EdgeRequest `json:"edges,omitempty" validate:"dive"`
	CSV      string        `json:"csv,omitempty"`
	Header   bool          `json:"header,omitempty"`
}

func (g GraphRequest) kind() graph.Kind {
	return graph.KindOf(g.Directed, g.Weighted)
}

func (g GraphRequest) csvOptions() lcio.CSVOptions {
	return lcio.CSVOptions{Directed: g.Directed, Weighted: g.Weighted, Header: g.Header, Comma: ','}
}

// edge converts e to a graph edge of kind. Unweighted kinds drop the weight.
func edge(kind graph.Kind, e EdgeRequest) (graph.Edge[string], error) {
	if err := lcerr.ValidateNodeName(e.From); err != nil {
		return graph.Edge[string]{}, err
	}
	if err := lcerr.ValidateNodeName(e.To); err != nil {
		return graph.Edge[string]{}, err
	}
	w := 0.0
	if kind.IsWeighted() {
		if e.Weight == nil {
			return graph.Edge[string]{}, lcerr.New(lcerr.ErrCodeInvalidInput, "edge %s-%s has no weight", e.From, e.To)
		}
		w = *e.Weight
		if err := lcerr.ValidateWeight(w); err != nil {
			return graph.Edge[string]{}, err
		}
	}
	return graph.NewEdge(kind, e.From, e.To, w), nil
}

func (g GraphRequest) jsonEdges() ([]graph.Edge[string], error) {
	kind := g.kind()
	edges := make([]graph.Edge[string], len(g.Edges))
	for i, e := range g.Edges {
		var err error
		if edges[i], err = edge(kind, e); err != nil {
			return nil, fmt.Errorf("edge %d: %w", i, err)
		}
	}
	return edges, nil
}

// CommunitiesRequest is the body of POST /v1/communities.
type CommunitiesRequest struct {
	GraphRequest
	Levels    []float64 `json:"levels,omitempty"`
	Formats   []string  `json:"formats,omitempty" validate:"dive,oneof=json dot svg png pdf"`
	Detailed  bool      `json:"detailed,omitempty"`
	Precision int       `json:"precision,omitempty" validate:"min=-1,max=17"`
	Scale     float64   `json:"scale,omitempty" validate:"min=0,max=16"`
	Refresh   bool      `json:"refresh,omitempty"`
}

// PairRequest names two edges to compare.
type PairRequest struct {
	A EdgeRequest `json:"a"`
	B EdgeRequest `json:"b"`
}

// SimilarityRequest is the body of POST /v1/similarity.
type SimilarityRequest struct {
	GraphRequest
	Pairs []PairRequest `json:"pairs" validate:"required,min=1,dive"`
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			return err
		}
		return lcerr.Wrap(lcerr.ErrCodeInvalidFormat, err, "decode request body")
	}
	return validateRequest(v)
}

func isCSV(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	return err == nil && mt == "text/csv"
}

// communitiesFromQuery reads the options of a CSV request from its query
// string: directed, weighted, header, detailed, refresh, precision, scale,
// and repeated level and format parameters.
func communitiesFromQuery(q url.Values) (CommunitiesRequest, error) {
	var req CommunitiesRequest
	bools := map[string]*bool{
		"directed": &req.Directed,
		"weighted": &req.Weighted,
		"header":   &req.Header,
		"detailed": &req.Detailed,
		"refresh":  &req.Refresh,
	}
	for name, dst := range bools {
		if v := q.Get(name); v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return req, lcerr.New(lcerr.ErrCodeInvalidInput, "%s: invalid boolean %q", name, v)
			}
			*dst = b
		}
	}
	if v := q.Get("precision"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil {
			return req, lcerr.New(lcerr.ErrCodeInvalidInput, "precision: invalid integer %q", v)
		}
		req.Precision = p
	}
	if v := q.Get("scale"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, lcerr.New(lcerr.ErrCodeInvalidInput, "scale: invalid number %q", v)
		}
		req.Scale = f
	}
	for _, v := range q["level"] {
		l, err := strconv.ParseFloat(v, 64)
		if err != nil || math.IsInf(l, 0) || math.IsNaN(l) {
			return req, lcerr.New(lcerr.ErrCodeInvalidInput, "level: invalid number %q", v)
		}
		req.Levels = append(req.Levels, l)
	}
	for _, v := range q["format"] {
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				req.Formats = append(req.Formats, f)
			}
		}
	}
	return req, nil
}
