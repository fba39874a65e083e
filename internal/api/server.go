// Package api serves the JSON API under /api/v1.
package api

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/listenupapp/bookclub-server/internal/auth"
	"github.com/listenupapp/bookclub-server/internal/service"
)

// BasePath is where the API is mounted.
const BasePath = "/api/v1"

// Config controls the API surface.
type Config struct {
	// CORSAllowedOrigins enables CORS for the listed origins. Empty disables it.
	CORSAllowedOrigins []string
}

// Server exposes the services as a JSON API.
type Server struct {
	cfg      Config
	services *service.Services
	api      huma.API
	logger   *slog.Logger
}

// NewServer creates an API server. Call Mount to attach it to a router.
func NewServer(cfg Config, services *service.Services, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{cfg: cfg, services: services, logger: logger}
}

// Mount attaches the API under BasePath. It matches func(chi.Router) so it
// can be passed straight to web.NewServer.
func (s *Server) Mount(r chi.Router) {
	r.Route(BasePath, func(r chi.Router) {
		if len(s.cfg.CORSAllowedOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins: s.cfg.CORSAllowedOrigins,
				AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
				MaxAge:         300,
			}))
		}
		r.Use(s.authMiddleware)

		RegisterErrorHandler()

		humaConfig := huma.DefaultConfig("Book Club API", "1.0.0")
		humaConfig.Info.Description = "Catalog books, review them and discuss the reviews."
		humaConfig.Servers = []*huma.Server{{URL: BasePath}}
		humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
			"bearer": {
				Type:         "http",
				Scheme:       "bearer",
				BearerFormat: "PASETO",
			},
		}

		s.api = humachi.New(r, humaConfig)
		s.registerRoutes()
	})
}

// API returns the huma API once Mount has run.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) registerRoutes() {
	s.registerAuthRoutes()
	s.registerBookRoutes()
	s.registerReviewRoutes()
	s.registerSearchRoutes()
}

// authMiddleware resolves a Bearer token into the request identity.
// Missing or invalid tokens leave the request anonymous; services reject it
// where a login is required.
func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || token == "" {
			next.ServeHTTP(w, r)
			return
		}

		identity := s.services.Sessions.Resolve(r.Context(), token)
		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	})
}

// bearerAuth marks an operation as requiring a session token in the OpenAPI document.
var bearerAuth = []map[string][]string{{"bearer": {}}}
