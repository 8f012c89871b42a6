// Package inspect serves a read-only HTTP view of a running navigator.
//
// # Routes
//
//	GET /healthz            liveness probe
//	GET /graph              the graph as JSON (see pkg/graph)
//	GET /graph/nodes/{id}   one node with its children
//	GET /graph.dot          Graphviz DOT, visible path highlighted
//	GET /graph.svg          rendered SVG
//	GET /journal            journal entries of the navigator's session (?all=1 for every session)
//	GET /stats              executor and hook counters
package inspect

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/navgraph/pkg/errors"
	"github.com/matzehuels/navgraph/pkg/executor"
	"github.com/matzehuels/navgraph/pkg/graph"
	"github.com/matzehuels/navgraph/pkg/journal"
	"github.com/matzehuels/navgraph/pkg/observability"
	"github.com/matzehuels/navgraph/pkg/render"
	"github.com/matzehuels/navgraph/pkg/screen"
)

// Navigator is the read side of a navigator.
type Navigator interface {
	Snapshot() *screen.Store
	Path() []screen.ID
	Session() string
	Stats() executor.Stats
}

// Option configures a Server.
type Option func(*Server)

// WithJournal serves entries from j on /journal.
func WithJournal(j journal.Journal) Option {
	return func(s *Server) {
		if j != nil {
			s.journal = j
		}
	}
}

// WithCounters adds hook counters to /stats.
func WithCounters(c *observability.Counters) Option {
	return func(s *Server) { s.counters = c }
}

// WithLogger sets the request logger. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// Server serves the inspector routes.
type Server struct {
	nav      Navigator
	journal  journal.Journal
	counters *observability.Counters
	logger   *log.Logger
	router   chi.Router
}

// New creates an inspector for nav.
func New(nav Navigator, opts ...Option) *Server {
	s := &Server{
		nav:     nav,
		journal: journal.NewNull(),
		logger:  log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.router = s.routes()
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("inspector listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Get("/graph", s.handleGraph)
	r.Get("/graph/nodes/{id}", s.handleNode)
	r.Get("/graph.dot", s.handleDOT)
	r.Get("/graph.svg", s.handleSVG)
	r.Get("/journal", s.handleJournal)
	r.Get("/stats", s.handleStats)
	return r
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Microsecond),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "session": s.nav.Session()})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, graph.FromStore(s.nav.Snapshot()))
}

// nodeResponse is the body of /graph/nodes/{id}.
type nodeResponse struct {
	Node      graph.Node   `json:"node"`
	Edges     []graph.Edge `json:"edges"`
	Ancestors []string     `json:"ancestors"`
}

func (s *Server) handleNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	store := s.nav.Snapshot()
	if !store.Has(screen.ID(id)) {
		writeError(w, http.StatusNotFound, errors.New(errors.ErrCodeNotFound, "screen %q is not tracked", id))
		return
	}

	g := graph.FromStore(store)
	resp := nodeResponse{Edges: []graph.Edge{}, Ancestors: []string{}}
	for _, n := range g.Nodes {
		if n.ID == id {
			resp.Node = n
		}
	}
	for _, e := range g.Edges {
		if e.From == id {
			resp.Edges = append(resp.Edges, e)
		}
	}
	for _, a := range store.Ancestors(screen.ID(id)) {
		resp.Ancestors = append(resp.Ancestors, string(a))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) dot() string {
	return render.ToDOT(s.nav.Snapshot(), render.Options{Highlight: s.nav.Path()})
}

func (s *Server) handleDOT(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
	_, _ = w.Write([]byte(s.dot()))
}

func (s *Server) handleSVG(w http.ResponseWriter, r *http.Request) {
	svg, err := render.RenderSVG(r.Context(), s.dot())
	if err != nil {
		writeError(w, http.StatusInternalServerError, errors.Wrap(errors.ErrCodeInternal, err, "render svg"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	_, _ = w.Write(svg)
}

func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	session := s.nav.Session()
	if r.URL.Query().Get("all") != "" {
		session = ""
	}
	entries, err := s.journal.Entries(r.Context(), session)
	if err != nil {
		writeError(w, http.StatusBadGateway, errors.Wrap(errors.ErrCodeInternal, err, "read journal"))
		return
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// statsResponse is the body of /stats.
type statsResponse struct {
	Executor executor.Stats                  `json:"executor"`
	Hooks    *observability.CountersSnapshot `json:"hooks,omitempty"`
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	resp := statsResponse{Executor: s.nav.Stats()}
	if s.counters != nil {
		snap := s.counters.Snapshot()
		resp.Hooks = &snap
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// Helpers
// =============================================================================

// errorResponse is the body of every error reply.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, errorResponse{
		Code:    string(errors.GetCode(err)),
		Message: errors.UserMessage(err),
	})
}
