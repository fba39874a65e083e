// Package web serves the server-rendered HTML site.
package web

import (
	"context"
	"html/template"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/listenupapp/bookclub-server/internal/metrics"
	"github.com/listenupapp/bookclub-server/internal/service"
)

// SessionCookieName holds the opaque session token.
const SessionCookieName = "bookclub_session"

// Pinger reports database health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Config controls cookie behavior.
type Config struct {
	CookieSecure bool
}

// Server is the HTML front end plus the operational endpoints.
type Server struct {
	cfg      Config
	services *service.Services
	db       Pinger
	metrics  *metrics.Metrics
	logger   *slog.Logger
	pages    map[string]*template.Template
	router   chi.Router
}

// NewServer builds the router. Each mount function may attach extra routes,
// such as the JSON API, to the same router. A nil metrics disables /metrics.
func NewServer(
	cfg Config,
	services *service.Services,
	db Pinger,
	m *metrics.Metrics,
	logger *slog.Logger,
	mounts ...func(chi.Router),
) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		cfg:      cfg,
		services: services,
		db:       db,
		metrics:  m,
		logger:   logger,
		pages:    pages,
		router:   chi.NewRouter(),
	}

	s.setupMiddleware()
	s.setupRoutes()
	for _, mount := range mounts {
		mount(s.router)
	}
	return s, nil
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(requestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(s.metrics.InstrumentHandler)
}

func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealth)
	if s.metrics != nil {
		s.router.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	// HTML pages resolve the session cookie; the JSON API authenticates separately.
	s.router.Group(func(r chi.Router) {
		r.Use(s.loadIdentity)

		r.Get("/register", s.handleRegisterForm)
		r.Post("/register", s.handleRegister)
		r.Get("/login", s.handleLoginForm)
		r.Post("/login", s.handleLogin)
		r.Get("/logout", s.handleLogout)

		r.Get("/", s.handleIndex)
		r.Get("/add", s.handleAddForm)
		r.Post("/add", s.handleAdd)
		r.Get("/edit/{bookID}", s.handleEditForm)
		r.Post("/edit/{bookID}", s.handleEdit)
		r.Get("/delete/{bookID}", s.handleDelete)
		r.Get("/book/{bookID}", s.handleBookDetail)
		r.Post("/book/{bookID}/review", s.handleAddReview)

		r.Get("/review/{reviewID}/edit", s.handleEditReviewForm)
		r.Post("/review/{reviewID}/edit", s.handleEditReview)
		r.Get("/review/{reviewID}/delete", s.handleDeleteReview)
		r.Post("/review/{reviewID}/comment", s.handleAddComment)
		r.Get("/comment/{commentID}/delete", s.handleDeleteComment)

		r.Get("/profile", s.handleProfile)
		r.Get("/search", s.handleSearch)
	})
}

// requestLogger logs one line per request once the response is written.
func requestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
