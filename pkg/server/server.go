package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/schemaflow/pkg/store"
	"github.com/matzehuels/schemaflow/pkg/theme"
)

// maxBodyBytes bounds request bodies; schema models of a few thousand tables
// stay well below it.
const maxBodyBytes = 8 << 20

// Options configures a Server.
type Options struct {
	// Config is passed to every session. Nil uses theme.Current.
	Config *theme.Config

	// Store persists layouts for every session. Nil disables persistence.
	Store *store.Store

	// Logger receives request and session logs. Nil uses log.Default.
	Logger *log.Logger

	// IdleTTL closes sessions without requests for this long.
	// Zero uses DefaultIdleTTL.
	IdleTTL time.Duration
}

// Server is the HTTP bridge between the host editor and diagram sessions.
type Server struct {
	config   *theme.Config
	store    *store.Store
	logger   *log.Logger
	sessions *Registry
	router   chi.Router
}

// New returns a Server with its routes mounted.
func New(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{
		config:   opts.Config,
		store:    opts.Store,
		logger:   logger,
		sessions: NewRegistry(opts.IdleTTL),
	}
	s.router = s.routes()
	return s
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleOpen)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/graph", s.handleGraph)
			r.Put("/schema", s.handleSchema)
			r.Post("/drag", s.handleDrag)
			r.Post("/group-drag", s.handleGroupDrag)
			r.Post("/reset", s.handleReset)
			r.Delete("/", s.handleClose)
		})
	})
	return r
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// Sessions returns the session registry.
func (s *Server) Sessions() *Registry { return s.sessions }

// Close closes every open session, flushing pending layout writes.
func (s *Server) Close() error {
	return s.sessions.CloseAll()
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
