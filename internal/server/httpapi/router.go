// Package httpapi is the HTTP surface: the chi router, the route table with
// its required roles, the guard and the handlers.
package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/projecthub/internal/logging"
	"github.com/dmitrijs2005/projecthub/internal/server/cookies"
	"github.com/dmitrijs2005/projecthub/internal/server/models"
	"github.com/dmitrijs2005/projecthub/internal/server/obs"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

const maxBodyBytes = 1 << 20

// Route declares one endpoint. Roles empty means open. Limited routes go
// through the per-IP rate limiter. SkipIdentity routes never look at the
// id_token cookie.
type Route struct {
	Method       string
	Pattern      string
	Roles        []models.Role
	Limited      bool
	SkipIdentity bool
	Handler      http.HandlerFunc
}

var anyUser = []models.Role{models.RoleUser, models.RoleAdmin}

// Routes is the route table mounted under the API prefix.
func Routes(a *AuthHandler, u *UsersHandler) []Route {
	return []Route{
		{Method: http.MethodPost, Pattern: "/auth/signup", Limited: true, SkipIdentity: true, Handler: a.Signup},
		{Method: http.MethodPost, Pattern: "/auth/verify", Limited: true, SkipIdentity: true, Handler: a.Verify},
		{Method: http.MethodPost, Pattern: "/auth/signin", Limited: true, SkipIdentity: true, Handler: a.SignIn},
		{Method: http.MethodPost, Pattern: "/auth/refresh", Limited: true, Handler: a.Refresh},
		{Method: http.MethodPost, Pattern: "/auth/logout", Roles: anyUser, Handler: a.Logout},
		{Method: http.MethodGet, Pattern: "/auth/me", Roles: anyUser, Handler: a.Me},
		{Method: http.MethodPatch, Pattern: "/auth/me", Roles: anyUser, Handler: a.UpdateMe},
		{Method: http.MethodDelete, Pattern: "/auth/me", Roles: anyUser, Handler: a.DeleteMe},
		{Method: http.MethodPatch, Pattern: "/auth/user/{email}", Roles: anyUser, Handler: a.UpdateUser},
		{Method: http.MethodDelete, Pattern: "/auth/user", Roles: []models.Role{models.RoleAdmin}, Handler: a.DeleteUser},
		{Method: http.MethodGet, Pattern: "/users", Roles: []models.Role{models.RoleAdmin}, Handler: u.List},
		{Method: http.MethodGet, Pattern: "/users/{sub}", Roles: anyUser, Handler: u.Get},
	}
}

// Pinger reports database reachability. *sql.DB implements it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type RouterConfig struct {
	APIPrefix string
	UIDomain  string
	// TrustProxy enables middleware.RealIP. Without it the rate limiter keys
	// on the socket peer and forwarding headers are ignored.
	TrustProxy bool
}

type Deps struct {
	Auth     AuthAPI
	Users    UserReader
	Verifier TokenVerifier
	Cookies  *cookies.Service
	Metrics  *obs.Metrics
	Limiter  *RateLimiter
	DB       Pinger
	Logger   logging.Logger
}

func NewRouter(cfg RouterConfig, d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestID)
	if cfg.TrustProxy {
		r.Use(middleware.RealIP)
	}
	r.Use(Logging(d.Logger))
	r.Use(d.Metrics.Instrument)
	r.Use(middleware.Recoverer)
	r.Use(SecurityHeaders)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.UIDomain},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders:   []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(MaxBodyBytes(maxBodyBytes))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/readyz", readyHandler(d.DB, d.Logger))
	r.Handle("/metrics", d.Metrics.Handler())

	validate := NewValidator()
	guard := NewGuard(d.Verifier, d.Logger)
	auth := NewAuthHandler(d.Auth, d.Cookies, d.Metrics, validate, d.Logger)
	users := NewUsersHandler(d.Users, d.Logger)

	api := chi.NewRouter()
	for _, rt := range Routes(auth, users) {
		var chain []func(http.Handler) http.Handler
		if rt.Limited && d.Limiter != nil {
			chain = append(chain, d.Limiter.Middleware)
		}
		chain = append(chain, guard.Require(rt.Roles...))
		if !rt.SkipIdentity {
			chain = append(chain, guard.Identity)
		}
		api.With(chain...).Method(rt.Method, rt.Pattern, rt.Handler)
	}

	prefix := strings.Trim(cfg.APIPrefix, "/")
	if prefix == "" {
		r.Mount("/", api)
	} else {
		r.Mount("/"+prefix, api)
	}
	return r
}

func readyHandler(db Pinger, l logging.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.PingContext(r.Context()); err != nil {
				l.Warn(r.Context(), "readiness check failed", "error", err)
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
