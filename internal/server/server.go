// Package server exposes the local HTTP API the game client talks to.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/sells-group/price-check/internal/config"
	"github.com/sells-group/price-check/internal/game"
	"github.com/sells-group/price-check/internal/model"
	"github.com/sells-group/price-check/internal/store"
	"github.com/sells-group/price-check/internal/trigger"
)

// Hovers receives raw hover ids.
type Hovers interface {
	Interest(raw uint64) *trigger.Task
	// Pending reports whether a hovered item waits for the keybind.
	Pending() bool
}

// SessionState is the player state the API reads and writes.
type SessionState interface {
	Apply(fn func(*game.State))
	SetKeybind(pressed bool)
	State() game.State
}

// Deps are the collaborators behind the API.
type Deps struct {
	Hovers         Hovers
	Session        SessionState
	Store          *store.Store
	Modes          *model.PriceModes
	Config         func() *config.Config
	LastPriceCheck func() time.Time
	Now            func() time.Time
}

// Server routes API requests.
type Server struct {
	deps   Deps
	router chi.Router
}

// New builds the router.
func New(deps Deps) *Server {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Server{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.config().Server.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/hover", s.handleHover)
		r.Put("/state", s.handleState)
		r.Put("/keybind", s.handleKeybind)
		r.Get("/items", s.handleItems)
		r.Delete("/items", s.handleClearItems)
		r.Get("/modes", s.handleModes)
	})

	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) config() *config.Config {
	if s.deps.Config != nil {
		if cfg := s.deps.Config(); cfg != nil {
			return cfg
		}
	}
	return &config.Config{}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		zap.L().Debug("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
