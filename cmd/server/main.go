package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"boxboxd/internal/api"
	"boxboxd/internal/config"
	"boxboxd/internal/localstore"
	applog "boxboxd/internal/log"
	"boxboxd/internal/server"
	"boxboxd/internal/theme"
)

const sessionCleanupInterval = time.Hour

// serverLifecycle is the slice of server.Server used by run, kept narrow so
// tests can substitute a stub.
type serverLifecycle interface {
	Start() error
	Stop() error
}

// sessionStore is the slice of localstore.Store used by run.
type sessionStore interface {
	Find(token string) ([]byte, bool, error)
	Commit(token string, b []byte, expiry time.Time) error
	Delete(token string) error
	StartCleanup(interval time.Duration)
	StopCleanup()
	Close() error
}

var (
	loadConfigFunc  = config.Load
	setLogLevelFunc = applog.SetLevel
	loadThemeFunc   = theme.LoadFile

	openSessionsFunc = func(path string) (sessionStore, error) {
		return localstore.Open(path)
	}
	newServerFunc = func(cfg server.Config) (serverLifecycle, error) {
		return server.New(cfg)
	}
	subscribeShutdownSig = func() (<-chan os.Signal, func()) {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGTERM, syscall.SIGINT)
		return ch, func() { signal.Stop(ch) }
	}
)

func main() {
	// A missing .env file is fine; the environment may be set directly.
	_ = godotenv.Load()
	os.Exit(run(context.Background()))
}

func run(ctx context.Context) int {
	cfg, err := loadConfigFunc()
	if err != nil {
		applog.Error(ctx, "failed to load configuration", "error", err)
		return 1
	}
	if err := setLogLevelFunc(cfg.Log.Level); err != nil {
		applog.Error(ctx, "invalid log level", "level", cfg.Log.Level, "error", err)
		return 1
	}

	if cfg.Theme.TeamsFile != "" {
		if err := loadThemeFunc(cfg.Theme.TeamsFile); err != nil {
			applog.Error(ctx, "failed to load team catalogue", "file", cfg.Theme.TeamsFile, "error", err)
			return 1
		}
		applog.Info(ctx, "team catalogue loaded", "file", cfg.Theme.TeamsFile)
	}

	backend, err := api.NewClient(api.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
	})
	if err != nil {
		applog.Error(ctx, "failed to build backend client", "error", err)
		return 1
	}

	sessions, err := openSessionsFunc(cfg.Session.DBPath)
	if err != nil {
		applog.Error(ctx, "failed to open session store", "path", cfg.Session.DBPath, "error", err)
		return 1
	}
	sessions.StartCleanup(sessionCleanupInterval)
	defer func() {
		sessions.StopCleanup()
		if err := sessions.Close(); err != nil {
			applog.Warn(ctx, "failed to close session store", "error", err)
		}
	}()

	srv, err := newServerFunc(server.Config{
		Addr:     cfg.Server.Addr,
		Backend:  backend,
		Sessions: sessions,
		Session: server.SessionConfig{
			Lifetime:     cfg.Session.Lifetime,
			CookieName:   cfg.Session.CookieName,
			CookieSecure: cfg.Session.CookieSecure,
		},
		Auth: server.AuthConfig{
			RatePerSecond: cfg.Auth.RatePerSecond,
			Burst:         cfg.Auth.Burst,
		},
	})
	if err != nil {
		applog.Error(ctx, "failed to build server", "error", err)
		return 1
	}

	errCh := make(chan error, 1)
	go func() {
		applog.Info(ctx, "starting http server", "addr", cfg.Server.Addr, "backend", backend.BaseURL())
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh, stop := subscribeShutdownSig()
	defer stop()

	select {
	case sig := <-sigCh:
		applog.Info(ctx, "shutting down http server", "signal", sig.String())
	case err := <-errCh:
		applog.Error(ctx, "server encountered an error", "error", err)
		return 1
	}

	if err := srv.Stop(); err != nil {
		applog.Error(ctx, "graceful shutdown failed", "error", err)
		return 1
	}
	return 0
}
