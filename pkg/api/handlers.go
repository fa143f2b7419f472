package api

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"strings"

	"github.com/ruliana/link-community/pkg/buildinfo"
	"github.com/ruliana/link-community/pkg/dendro"
	lcerr "github.com/ruliana/link-community/pkg/errors"
	"github.com/ruliana/link-community/pkg/graph"
	lcio "github.com/ruliana/link-community/pkg/io"
	"github.com/ruliana/link-community/pkg/pipeline"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// CommunitiesResponse is the body of a successful POST /v1/communities.
type CommunitiesResponse struct {
	RunID      string                             `json:"run_id"`
	GraphHash  string                             `json:"graph_hash"`
	Nodes      int                                `json:"nodes"`
	Edges      int                                `json:"edges"`
	Merges     int                                `json:"merges"`
	Dendrogram *dendro.Dendro[graph.Edge[string]] `json:"dendrogram"`
	Levels     []lcio.LevelCount                  `json:"levels"`
	Cuts       []lcio.Groups[graph.Edge[string]]  `json:"cuts,omitempty"`
	Artifacts  map[string]string                  `json:"artifacts,omitempty"`
	Cached     CachedStages                       `json:"cached"`
}

// CachedStages reports which stages were served from the cache.
type CachedStages struct {
	Cluster bool `json:"cluster"`
	Render  bool `json:"render"`
}

// PairSimilarity is the similarity of one requested pair.
type PairSimilarity struct {
	A          EdgeRequest `json:"a"`
	B          EdgeRequest `json:"b"`
	Similarity float64     `json:"similarity"`
}

// SimilarityResponse is the body of a successful POST /v1/similarity.
type SimilarityResponse struct {
	Similarities []PairSimilarity `json:"similarities"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) communities(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req CommunitiesRequest
	var edges []graph.Edge[string]
	var err error
	if isCSV(r) {
		if req, err = communitiesFromQuery(r.URL.Query()); err == nil {
			err = validateRequest(&req)
		}
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		edges, err = s.runner.Read(ctx, "request", r.Body, req.csvOptions())
	} else {
		if err = decodeJSON(r, &req); err != nil {
			s.writeError(w, r, err)
			return
		}
		edges, err = s.edges(r, req.GraphRequest)
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.checkEdges(len(edges)); err != nil {
		s.writeError(w, r, err)
		return
	}

	res, err := s.runner.Execute(ctx, edges, pipeline.Options{
		Directed:  req.Directed,
		Weighted:  req.Weighted,
		Levels:    req.Levels,
		Formats:   req.Formats,
		Detailed:  req.Detailed,
		Precision: req.Precision,
		Scale:     req.Scale,
		Refresh:   req.Refresh,
		Logger:    s.logger.With("request", RequestID(ctx)),
		Cluster:   s.cluster,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := CommunitiesResponse{
		RunID:      res.RunID,
		GraphHash:  res.GraphHash,
		Nodes:      res.Stats.NodeCount,
		Edges:      res.Stats.EdgeCount,
		Merges:     res.Stats.Merges,
		Dendrogram: res.Dendrogram,
		Levels:     lcio.SortLevels(res.Levels),
		Artifacts:  encodeArtifacts(res.Artifacts),
		Cached:     CachedStages{Cluster: res.CacheInfo.ClusterHit, Render: res.CacheInfo.RenderHit},
	}
	for _, c := range res.Cuts {
		resp.Cuts = append(resp.Cuts, lcio.NewGroups(c.Level, c.Groups))
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) similarity(w http.ResponseWriter, r *http.Request) {
	var req SimilarityRequest
	if err := decodeJSON(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	edges, err := s.edges(r, req.GraphRequest)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.checkEdges(len(edges)); err != nil {
		s.writeError(w, r, err)
		return
	}
	g, err := graph.Build(req.kind(), edges)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	// Only endpoints are looked up, so pair weights are irrelevant.
	resp := SimilarityResponse{Similarities: make([]PairSimilarity, len(req.Pairs))}
	for i, p := range req.Pairs {
		a := graph.NewEdge(g.Kind(), p.A.From, p.A.To, 0)
		b := graph.NewEdge(g.Kind(), p.B.From, p.B.To, 0)
		sim, err := g.SimilarityNodes(a, b)
		if err != nil {
			s.writeError(w, r, fmt.Errorf("pair %d: %w", i, err))
			return
		}
		resp.Similarities[i] = PairSimilarity{A: p.A, B: p.B, Similarity: sim}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// edges returns the edge list of a JSON request, from either its edges or
// its csv field.
func (s *Server) edges(r *http.Request, g GraphRequest) ([]graph.Edge[string], error) {
	switch {
	case len(g.Edges) > 0 && g.CSV != "":
		return nil, lcerr.New(lcerr.ErrCodeInvalidInput, "give either edges or csv, not both")
	case g.CSV != "":
		return s.runner.Read(r.Context(), "request", strings.NewReader(g.CSV), g.csvOptions())
	default:
		return g.jsonEdges()
	}
}

func (s *Server) checkEdges(n int) error {
	if s.cfg.MaxEdges > 0 && n > s.cfg.MaxEdges {
		return &statusError{
			status: http.StatusRequestEntityTooLarge,
			code:   lcerr.ErrCodeInvalidInput,
			msg:    fmt.Sprintf("too many edges: %d (max %d)", n, s.cfg.MaxEdges),
		}
	}
	return nil
}

// encodeArtifacts returns text artifacts as is and binary ones base64
// encoded.
func encodeArtifacts(artifacts map[string][]byte) map[string]string {
	if len(artifacts) == 0 {
		return nil
	}
	out := make(map[string]string, len(artifacts))
	for format, data := range artifacts {
		switch format {
		case pipeline.FormatPNG, pipeline.FormatPDF:
			out[format] = base64.StdEncoding.EncodeToString(data)
		default:
			out[format] = string(data)
		}
	}
	return out
}
