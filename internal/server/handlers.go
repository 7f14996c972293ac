package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/atlas/pkg/buildinfo"
	"github.com/matzehuels/atlas/pkg/errors"
	"github.com/matzehuels/atlas/pkg/graph"
	"github.com/matzehuels/atlas/pkg/httputil"
	"github.com/matzehuels/atlas/pkg/pipeline"
	"github.com/matzehuels/atlas/pkg/render/nodelink"
)

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

// CommunitiesResponse is the body of POST /v1/communities.
type CommunitiesResponse struct {
	RunID       string            `json:"run_id"`
	Count       uint32            `json:"count"`
	Modularity  float64           `json:"modularity"`
	Levels      int               `json:"levels"`
	Communities map[string]uint32 `json:"communities"`
}

// QueryRequest is the body of the /v1/query endpoints. An empty Algorithm
// queries the positions stored in the document.
type QueryRequest struct {
	Graph     graph.Graph `json:"graph"`
	Algorithm string      `json:"algorithm,omitempty"`
	Root      string      `json:"root,omitempty"`

	X       float32 `json:"x"`
	Y       float32 `json:"y"`
	MaxDist float32 `json:"max_dist,omitempty"` // nearest
	Radius  float32 `json:"radius,omitempty"`   // radius

	MinX float32 `json:"min_x"` // rect
	MinY float32 `json:"min_y"`
	MaxX float32 `json:"max_x"`
	MaxY float32 `json:"max_y"`
}

// NearestResponse is the body of POST /v1/query/nearest. Hit is null when
// nothing qualifies.
type NearestResponse struct {
	Hit *pipeline.Hit `json:"hit"`
}

// HitsResponse is the body of the range query endpoints.
type HitsResponse struct {
	Hits []pipeline.Hit `json:"hits"`
}

var contentTypes = map[string]string{
	nodelink.FormatSVG: "image/svg+xml",
	nodelink.FormatPNG: "image/png",
	nodelink.FormatDOT: "text/vnd.graphviz; charset=utf-8",
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok", Build: buildinfo.Get()})
}

// layoutOptions builds pipeline options from the URL of a layout request.
func (s *Server) layoutOptions(r *http.Request, algorithm string) (pipeline.Options, error) {
	refresh, err := httputil.QueryBool(r, "refresh")
	if err != nil {
		return pipeline.Options{}, err
	}
	cfg := s.cfg
	opts := pipeline.Options{
		Algorithm: algorithm,
		Root:      r.URL.Query().Get("root"),
		Refresh:   refresh,
		Config:    &cfg,
		Logger:    s.logger,
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return pipeline.Options{}, err
	}
	return opts, nil
}

func (s *Server) readGraph(w http.ResponseWriter, r *http.Request) (graph.Graph, error) {
	var g graph.Graph
	err := httputil.DecodeJSON(w, r, s.cfg.Server.MaxBodyBytes, &g)
	return g, err
}

// encodingHalf selects the half-float position buffer of
// [pipeline.Result.HalfPositions] instead of the JSON layout document.
const encodingHalf = "f16"

// RunIDHeader carries the run id of binary layout responses.
const RunIDHeader = "X-Atlas-Run-ID"

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	opts, err := s.layoutOptions(r, chi.URLParam(r, "algorithm"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	encoding := r.URL.Query().Get("encoding")
	if encoding != "" && encoding != "json" && encoding != encodingHalf {
		httputil.WriteError(w, errors.New(errors.ErrCodeInvalidFormat, "unknown encoding %q (want json or f16)", encoding))
		return
	}
	g, err := s.readGraph(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := s.runner.Run(r.Context(), g, opts)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	if encoding == encodingHalf {
		data, err := res.HalfPositions()
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Header().Set(RunIDHeader, res.Layout.RunID)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, res.Layout)
}

func (s *Server) handleCommunities(w http.ResponseWriter, r *http.Request) {
	opts, err := s.layoutOptions(r, graph.AlgorithmCommunity)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	g, err := s.readGraph(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := s.runner.Run(r.Context(), g, opts)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	l := res.Layout
	out := CommunitiesResponse{
		RunID:       l.RunID,
		Count:       l.CommunityCount,
		Levels:      l.Levels,
		Communities: make(map[string]uint32, len(l.Nodes)),
	}
	if l.Modularity != nil {
		out.Modularity = *l.Modularity
	}
	for _, n := range l.Nodes {
		if n.Community != nil {
			out.Communities[n.ID] = *n.Community
		}
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// queryResult decodes a query request and returns the positioned graph it
// names.
func (s *Server) queryResult(w http.ResponseWriter, r *http.Request) (*pipeline.Result, QueryRequest, error) {
	var req QueryRequest
	if err := httputil.DecodeJSON(w, r, s.cfg.Server.MaxBodyBytes, &req); err != nil {
		return nil, req, err
	}
	if req.Algorithm == "" {
		res, err := pipeline.Load(req.Graph)
		return res, req, err
	}
	cfg := s.cfg
	res, err := s.runner.Run(r.Context(), req.Graph, pipeline.Options{
		Algorithm: req.Algorithm,
		Root:      req.Root,
		Config:    &cfg,
		Logger:    s.logger,
	})
	return res, req, err
}

func (s *Server) handleNearest(w http.ResponseWriter, r *http.Request) {
	res, req, err := s.queryResult(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	hit, ok, err := res.Nearest(req.X, req.Y, req.MaxDist)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var out NearestResponse
	if ok {
		out.Hit = &hit
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

func (s *Server) handleRadius(w http.ResponseWriter, r *http.Request) {
	res, req, err := s.queryResult(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	hits, err := res.InRadius(req.X, req.Y, req.Radius)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HitsResponse{Hits: hits})
}

func (s *Server) handleRect(w http.ResponseWriter, r *http.Request) {
	res, req, err := s.queryResult(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	hits, err := res.InRect(req.MinX, req.MinY, req.MaxX, req.MaxY)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, HitsResponse{Hits: hits})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = nodelink.FormatSVG
	}
	if !nodelink.ValidFormat(format) {
		httputil.WriteError(w, errors.New(errors.ErrCodeInvalidFormat, "unsupported format %q", format))
		return
	}
	labels, err := httputil.QueryBool(r, "labels")
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	opts, err := s.layoutOptions(r, chi.URLParam(r, "algorithm"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	g, err := s.readGraph(w, r)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	res, err := s.runner.Run(r.Context(), g, opts)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	data, _, err := s.runner.Preview(r.Context(), res, pipeline.PreviewOptions{Format: format, Labels: labels})
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	w.Header().Set("Content-Type", contentTypes[format])
	w.Header().Set("X-Atlas-Run-ID", res.Layout.RunID)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
