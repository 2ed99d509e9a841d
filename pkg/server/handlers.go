package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/odex-dev/odex/pkg/catalog"
	"github.com/odex-dev/odex/pkg/diagram"
	"github.com/odex-dev/odex/pkg/edm"
	"github.com/odex-dev/odex/pkg/httputil"
	"github.com/odex-dev/odex/pkg/odata"
	"github.com/odex-dev/odex/pkg/pipeline"
)

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// metadataResponse summarizes a service's model.
type metadataResponse struct {
	ServiceURL    string             `json:"service_url"`
	Version       edm.Version        `json:"version"`
	EntityTypes   []edm.EntityType   `json:"entity_types"`
	EntitySets    []edm.EntitySet    `json:"entity_sets"`
	Relationships []edm.Relationship `json:"relationships"`
}

// handleMetadata fetches and summarizes $metadata for ?url=<service>.
func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	rawURL := r.URL.Query().Get("url")
	svc, err := odata.ParseServiceURL(rawURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	refresh := r.URL.Query().Get("refresh") == "true"
	doc, err := s.runner.Fetch(r.Context(), pipeline.Options{
		ServiceURL: svc.Root,
		Refresh:    refresh,
	})
	if err != nil {
		writeError(w, upstreamStatus(err), err)
		return
	}

	s.recordService(r, svc.Root, doc)

	writeJSON(w, http.StatusOK, metadataResponse{
		ServiceURL:    svc.Root,
		Version:       doc.Version,
		EntityTypes:   doc.EntityTypes(),
		EntitySets:    doc.EntitySets(),
		Relationships: doc.Relationships(),
	})
}

// layoutRequest is the body of POST /api/layout. Two shapes are accepted: a
// raw topology ({nodes, edges, config?}), annotated directly by the layout
// engine, or pipeline options ({service_url, formats, ...}), which run the
// full fetch → layout → render pipeline.
type layoutRequest struct {
	Nodes  []diagram.Node `json:"nodes,omitempty"`
	Edges  []diagram.Edge `json:"edges,omitempty"`
	Config *layoutConfig  `json:"config,omitempty"`

	pipeline.Options
}

// layoutConfig is the wire form of [diagram.Config].
type layoutConfig struct {
	NodeWidth  float64 `json:"node_width,omitempty"`
	NodeHeight float64 `json:"node_height,omitempty"`
	TieBreak   string  `json:"tie_break,omitempty"`
}

// handleLayout annotates a caller-owned topology, or, when the body carries
// pipeline options instead of nodes, runs the full pipeline. The JSON
// artifact (the laid-out diagram) is always returned, plus any other
// requested formats base64-encoded by encoding/json.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var req layoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if len(req.Nodes) > 0 {
		s.layoutTopology(w, req)
		return
	}

	opts := req.Options
	opts.MetadataFile = "" // Server mode never reads local files
	if opts.ServiceURL == "" {
		writeError(w, http.StatusBadRequest, errors.New("service_url is required"))
		return
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []string{pipeline.FormatJSON}
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		writeError(w, pipelineStatus(err), err)
		return
	}

	s.recordService(r, opts.ServiceURL, result.Document)

	writeJSON(w, http.StatusOK, map[string]any{
		"diagram":      result.Diagram,
		"diagram_hash": result.DiagramHash,
		"artifacts":    result.Artifacts,
		"stats": map[string]any{
			"entities":      result.Stats.EntityCount,
			"relationships": result.Stats.RelationshipCount,
			"skipped_edges": result.Stats.SkippedEdges,
		},
		"cache": result.CacheInfo,
	})
}

// layoutTopology runs the layout engine on the request's own nodes and edges
// and returns the annotated topology. Duplicate IDs are the caller's error.
func (s *Server) layoutTopology(w http.ResponseWriter, req layoutRequest) {
	var cfg diagram.Config
	if req.Config != nil {
		if err := pipeline.ValidateTieBreak(req.Config.TieBreak); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		cfg.DefaultSize = diagram.Size{Width: req.Config.NodeWidth, Height: req.Config.NodeHeight}
		if req.Config.TieBreak == pipeline.TieBreakVertical {
			cfg.TieBreak = diagram.TieBreakVertical
		}
	}

	result, err := diagram.New(cfg).Layout(req.Nodes, req.Edges)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// queryRequest is the body of POST /api/query.
type queryRequest struct {
	ServiceURL string      `json:"service_url"`
	Query      odata.Query `json:"query"`
	Refresh    bool        `json:"refresh,omitempty"`
}

func (s *Server) handleQuery(w http.ResponseWriter, r *http.Request) {
	var req queryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	svc, err := odata.ParseServiceURL(req.ServiceURL)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// Version matters for query encoding, so resolve it from metadata first.
	doc, err := s.runner.Fetch(r.Context(), pipeline.Options{ServiceURL: svc.Root})
	if err != nil {
		writeError(w, upstreamStatus(err), err)
		return
	}

	rs, err := s.runner.Client.Execute(r.Context(), svc.WithVersion(doc.Version), req.Query, req.Refresh)
	if err != nil {
		if errors.Is(err, odata.ErrInvalidQuery) {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		writeError(w, upstreamStatus(err), err)
		return
	}

	writeJSON(w, http.StatusOK, rs)
}

func (s *Server) handleListServices(w http.ResponseWriter, r *http.Request) {
	entries, err := s.catalog.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": entries})
}

func (s *Server) handleDeleteService(w http.ResponseWriter, r *http.Request) {
	svc, err := odata.ParseServiceURL(r.URL.Query().Get("url"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if err := s.catalog.Delete(r.Context(), svc.Root); err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			writeError(w, http.StatusNotFound, err)
			return
		}
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// recordService upserts the catalog entry for a successfully explored
// service. Failures are logged, never surfaced: the catalog is bookkeeping.
func (s *Server) recordService(r *http.Request, serviceURL string, doc *edm.Document) {
	if serviceURL == "" || doc == nil {
		return
	}

	entry := catalog.New(serviceURL, "")
	entry.Version = doc.Version
	entry.EntityCount = len(doc.EntityTypes())
	entry.RelationshipCount = len(doc.Relationships())

	if _, err := s.catalog.Upsert(r.Context(), entry); err != nil {
		s.logger.Warn("catalog upsert failed", "service", serviceURL, "err", err)
	}
}

// upstreamStatus maps client fetch errors to response codes.
func upstreamStatus(err error) int {
	switch {
	case errors.Is(err, httputil.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, httputil.ErrNetwork):
		return http.StatusBadGateway
	case errors.Is(err, odata.ErrInvalidServiceURL):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// pipelineStatus maps pipeline errors to response codes.
func pipelineStatus(err error) int {
	if errors.Is(err, odata.ErrInvalidServiceURL) {
		return http.StatusBadRequest
	}
	return upstreamStatus(err)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
