package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"github.com/xnoubis/rosetta/pkg/core"
	"github.com/xnoubis/rosetta/pkg/core/distance"
	"github.com/xnoubis/rosetta/pkg/core/text"
	"github.com/xnoubis/rosetta/pkg/ingest"
	"github.com/xnoubis/rosetta/pkg/metrics"
)

// registerHTTPHandlers sets up the routes for the REST API.
func (s *Server) registerHTTPHandlers(mux *http.ServeMux) {
	mux.HandleFunc("/", s.router)
}

// router is the main manual router. It inspects the URL and delegates to
// the correct handler.
func (s *Server) router(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	// --- Debug endpoints (pprof) ---
	if strings.HasPrefix(path, "/debug/pprof") {
		switch {
		case path == "/debug/pprof/":
			pprof.Index(w, r)
		case path == "/debug/pprof/cmdline":
			pprof.Cmdline(w, r)
		case path == "/debug/pprof/profile":
			pprof.Profile(w, r)
		case path == "/debug/pprof/symbol":
			pprof.Symbol(w, r)
		case path == "/debug/pprof/trace":
			pprof.Trace(w, r)
		default:
			s.writeHTTPError(w, http.StatusNotFound, "pprof endpoint not found")
		}
		return
	}

	// --- Terrain endpoints ---
	switch path {
	case "/terrain/ingest":
		s.requirePost(w, r, s.handleIngest)
		return
	case "/terrain/step":
		s.requirePost(w, r, s.handleStep)
		return
	case "/terrain/run":
		s.requirePost(w, r, s.handleRun)
		return
	case "/terrain/lookup":
		s.requirePost(w, r, s.handleLookup)
		return
	case "/terrain/coverage":
		s.requirePost(w, r, s.handleCoverage)
		return
	case "/terrain/stats":
		s.requireGet(w, r, s.handleStats)
		return
	case "/terrain/snaps":
		s.requireGet(w, r, s.handleSnaps)
		return
	case "/terrain/runs":
		s.requireGet(w, r, s.handleRuns)
		return
	}

	s.writeHTTPError(w, http.StatusNotFound, "endpoint not found")
}

func (s *Server) requirePost(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	if r.Method != http.MethodPost {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use the POST method")
		return
	}
	h(w, r)
}

func (s *Server) requireGet(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	if r.Method != http.MethodGet {
		s.writeHTTPError(w, http.StatusMethodNotAllowed, "use the GET method")
		return
	}
	h(w, r)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- Terrain handlers ---

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if (req.Text == "") == (req.Folder == "") {
		s.writeHTTPError(w, http.StatusBadRequest, "exactly one of 'text' or 'folder' is required")
		return
	}

	collector := ingest.NewCollector(s.embedder)
	if s.cfg.Chunking.Size > 0 {
		collector.ChunkSize = s.cfg.Chunking.Size
		collector.ChunkOverlap = s.cfg.Chunking.Overlap
	}

	var (
		inputs []core.FragmentInput
		err    error
	)
	if req.Text != "" {
		source := req.Source
		if source == "" {
			source = "text"
		}
		inputs, err = collector.FromText(source, req.Text)
	} else {
		inputs, err = collector.FromFolder(req.Folder)
	}
	if err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, err.Error())
		return
	}

	opts := s.cfg.BuildOptions()
	if req.K > 0 {
		opts.K = req.K
	}
	if req.Precision != "" {
		p := distance.PrecisionType(req.Precision)
		if p != distance.Float32 && p != distance.Float16 {
			s.writeHTTPError(w, http.StatusBadRequest, fmt.Sprintf("invalid precision %q", req.Precision))
			return
		}
		opts.Precision = p
	}

	eng, err := core.Build(inputs, opts)
	if err != nil {
		s.writeHTTPError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.mu.Lock()
	s.engine = eng
	metrics.TotalFragments.Set(float64(eng.Graph().NodeCount()))
	s.persistLocked()
	s.mu.Unlock()

	s.writeHTTPResponse(w, http.StatusOK, IngestResponse{
		Fragments: eng.Graph().NodeCount(),
		Dim:       eng.Graph().Dim(),
		K:         eng.Graph().K(),
		Start:     eng.State().Current,
	})
}

func (s *Server) handleStep(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		s.writeHTTPError(w, http.StatusNotFound, "no terrain loaded, ingest first")
		return
	}

	id, entropy, snap := s.engine.Step()
	metrics.StepsTotal.Inc()
	if snap != nil {
		metrics.SnapsTotal.Inc()
	}

	state := s.engine.State()
	turn := 0
	if len(state.Turns) > 0 {
		turn = state.Turns[len(state.Turns)-1]
	}

	preview := ""
	if frag := s.engine.Graph().Fragment(id); frag != nil {
		preview = text.Truncate(frag.Content, 80)
	}

	s.persistLocked()

	s.writeHTTPResponse(w, http.StatusOK, StepResponse{
		Node:    id,
		Preview: preview,
		Entropy: entropy,
		Step:    state.Step,
		Turn:    turn,
		Snap:    snap,
	})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	// An empty body means "use the defaults".
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	steps := req.Steps
	if steps <= 0 {
		steps = 50
	}

	s.mu.Lock()
	if s.engine == nil {
		s.mu.Unlock()
		s.writeHTTPError(w, http.StatusNotFound, "no terrain loaded, ingest first")
		return
	}

	snapsBefore := len(s.engine.State().Snaps)
	start := time.Now()
	stats := s.engine.Run(steps)
	duration := time.Since(start)

	metrics.StepsTotal.Add(float64(steps))
	newSnaps := len(s.engine.State().Snaps) - snapsBefore
	metrics.SnapsTotal.Add(float64(newSnaps))

	s.persistLocked()
	s.mu.Unlock()

	report := s.runs.Add(RunReport{
		StartedAt:  start,
		DurationMs: duration.Milliseconds(),
		Requested:  steps,
		NewSnaps:   newSnaps,
		Stats:      stats,
	})

	s.writeHTTPResponse(w, http.StatusOK, report)
}

func (s *Server) handleLookup(w http.ResponseWriter, r *http.Request) {
	var req LookupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.Query == "" {
		s.writeHTTPError(w, http.StatusBadRequest, "'query' is required")
		return
	}
	k := req.K
	if k <= 0 {
		k = 5
	}

	vec, err := s.embedder.Embed(req.Query)
	if err != nil {
		s.writeHTTPError(w, http.StatusBadGateway, fmt.Sprintf("embedding query: %v", err))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		s.writeHTTPError(w, http.StatusNotFound, "no terrain loaded, ingest first")
		return
	}

	matches, err := s.engine.Lookup(vec, k)
	if err != nil {
		s.writeHTTPError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.writeHTTPResponse(w, http.StatusOK, LookupResponse{Query: req.Query, Matches: matches})
}

func (s *Server) handleCoverage(w http.ResponseWriter, r *http.Request) {
	var req CoverageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		s.writeHTTPError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	trials := req.Trials
	if trials <= 0 {
		trials = 5
	}
	steps := req.Steps
	if steps <= 0 {
		steps = 100
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		s.writeHTTPError(w, http.StatusNotFound, "no terrain loaded, ingest first")
		return
	}

	results, summary := s.engine.EvaluateCoverage(trials, steps)
	metrics.StepsTotal.Add(float64(trials * steps))
	s.persistLocked()

	s.writeHTTPResponse(w, http.StatusOK, CoverageResponse{Trials: results, Summary: summary})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		s.writeHTTPError(w, http.StatusNotFound, "no terrain loaded, ingest first")
		return
	}

	g := s.engine.Graph()
	s.writeHTTPResponse(w, http.StatusOK, StatsResponse{
		Fragments: g.NodeCount(),
		Dim:       g.Dim(),
		K:         g.K(),
		Precision: string(g.Precision()),
		Current:   s.engine.State().Current,
		Stats:     s.engine.Stats(),
	})
}

func (s *Server) handleSnaps(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.engine == nil {
		s.writeHTTPError(w, http.StatusNotFound, "no terrain loaded, ingest first")
		return
	}

	snaps := s.engine.State().Snaps
	if snaps == nil {
		snaps = []core.Snap{}
	}
	s.writeHTTPResponse(w, http.StatusOK, SnapsResponse{Snaps: snaps})
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	s.writeHTTPResponse(w, http.StatusOK, RunsResponse{Runs: s.runs.List(100)})
}

// --- HTTP response helpers ---

func (s *Server) writeHTTPResponse(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func (s *Server) writeHTTPError(w http.ResponseWriter, statusCode int, message string) {
	s.writeHTTPResponse(w, statusCode, map[string]string{"error": message})
}
