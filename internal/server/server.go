package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"golang.org/x/time/rate"

	"boxboxd/internal/api"
	"boxboxd/internal/handlers"
	applog "boxboxd/internal/log"
	"boxboxd/internal/notify"
)

// Config captures the runtime configuration for the HTTP server.
type Config struct {
	Addr     string
	Backend  *api.Client
	Sessions scs.Store
	Session  SessionConfig
	Auth     AuthConfig
}

// SessionConfig controls session cookie behavior for the HTTP server.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// AuthConfig throttles the credential endpoints.
type AuthConfig struct {
	RatePerSecond float64
	Burst         int
}

// Server wraps an http.Server and exposes helpers for bootstrapping a
// production-ready web service.
type Server struct {
	config     Config
	httpServer *http.Server
}

// New builds a new Server using the provided configuration.
func New(cfg Config) (*Server, error) {
	if cfg.Backend == nil {
		return nil, errors.New("server: backend client is required")
	}

	sessionCfg := cfg.Session
	if sessionCfg.Lifetime <= 0 {
		sessionCfg.Lifetime = 30 * 24 * time.Hour
	}
	if strings.TrimSpace(sessionCfg.CookieName) == "" {
		sessionCfg.CookieName = "boxboxd_session"
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = sessionCfg.Lifetime
	sessionManager.Cookie.Name = sessionCfg.CookieName
	sessionManager.Cookie.Domain = sessionCfg.CookieDomain
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = sessionCfg.CookieSecure
	if cfg.Sessions != nil {
		sessionManager.Store = cfg.Sessions
	}

	applog.Debug(context.Background(), "session manager configured",
		"cookieName", sessionCfg.CookieName,
		"lifetime", sessionCfg.Lifetime.String(),
		"cookieSecure", sessionCfg.CookieSecure,
	)

	handlers.Configure(sessionManager, cfg.Backend, notify.DefaultTTL)

	authCfg := cfg.Auth
	if authCfg.RatePerSecond <= 0 {
		authCfg.RatePerSecond = 1
	}
	if authCfg.Burst <= 0 {
		authCfg.Burst = 5
	}
	limiter := rate.NewLimiter(rate.Limit(authCfg.RatePerSecond), authCfg.Burst)

	handler := sessionManager.LoadAndSave(newRouter(limiter))

	applog.Debug(context.Background(), "http handler chain prepared", "addr", cfg.Addr)

	return &Server{
		config: cfg,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}, nil
}

// Start begins serving HTTP traffic using the underlying http.Server.
func (s *Server) Start() error {
	applog.Debug(context.Background(), "server starting listener", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server with a timeout.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	applog.Debug(ctx, "server initiating graceful shutdown")
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured HTTP handler, enabling integration tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
