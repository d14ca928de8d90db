package adapthttp

import (
	"log/slog"
	"net/http"
	"time"

	"mealdiet/internal/app"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const sessionCookie = "sessionId"

// Options configures optional Server behavior.
type Options struct {
	Logger *slog.Logger
	// OIDC enables the SSO routes when non-nil.
	OIDC *OIDCConfig
	// ForwardAuth trusts Remote-User/Remote-Email headers from a reverse proxy.
	ForwardAuth  bool
	CookieSecure bool
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	meals *app.MealService
	auth  *app.AuthService

	log          *slog.Logger
	oidc         *OIDCConfig
	forwardAuth  bool
	cookieSecure bool

	registry *prometheus.Registry
	metrics  *httpMetrics
}

// New creates a Server wired to the given application services.
func New(ms *app.MealService, as *app.AuthService, opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	reg := prometheus.NewRegistry()
	return &Server{
		meals:        ms,
		auth:         as,
		log:          log,
		oidc:         opts.OIDC,
		forwardAuth:  opts.ForwardAuth,
		cookieSecure: opts.CookieSecure,
		registry:     reg,
		metrics:      newHTTPMetrics(reg),
	}
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(s.loggingMiddleware)
	r.Use(s.metrics.middleware)
	r.Use(middleware.Recoverer)
	r.Use(withNoCache)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})
	r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{Registry: s.registry}))

	r.Post("/users", s.handleRegister)
	r.Post("/sessions", s.handleLogin)
	r.Delete("/sessions", s.handleLogout)

	r.Get("/auth/config", s.handleConfig)
	r.Get("/auth/sso/login", s.handleSSOLogin)
	r.Get("/auth/sso/callback", s.handleSSOCallback)

	r.Route("/meals", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.handleMealList)
		r.Post("/", s.handleMealCreate)
		r.Get("/metrics", s.handleMealMetrics)
		r.Get("/{mealID}", s.handleMealGet)
		r.Put("/{mealID}", s.handleMealUpdate)
		r.Delete("/{mealID}", s.handleMealDelete)
	})

	return r
}

func (s *Server) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.auth.SessionTTL() / time.Second),
	})
}

func (s *Server) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   s.cookieSecure,
		MaxAge:   -1,
	})
}
