package server

import (
	"context"
	"net/http"

	"golang.org/x/time/rate"

	"boxboxd/internal/handlers"
	applog "boxboxd/internal/log"
)

func newRouter(authLimiter *rate.Limiter) http.Handler {
	mux := http.NewServeMux()
	applog.Debug(context.Background(), "registering http routes")

	mux.HandleFunc("GET /healthz", handlers.Health)

	mux.HandleFunc("GET /auth", handlers.Auth)
	mux.Handle("POST /auth/login", handlers.RateLimit(authLimiter, http.HandlerFunc(handlers.AuthLogin)))
	mux.Handle("POST /auth/register", handlers.RateLimit(authLimiter, http.HandlerFunc(handlers.AuthRegister)))
	mux.HandleFunc("GET /logout", handlers.Logout)
	mux.HandleFunc("POST /logout", handlers.Logout)

	mux.HandleFunc("GET /races", handlers.Seasons)
	mux.HandleFunc("GET /races/{season}", handlers.Season)
	mux.HandleFunc("GET /race/{id}", handlers.RaceDetail)

	mux.Handle("POST /race/{id}/reviews", handlers.RequireAuthentication(http.HandlerFunc(handlers.CreateReview)))
	mux.Handle("POST /reviews/{id}/update", handlers.RequireAuthentication(http.HandlerFunc(handlers.UpdateReview)))
	mux.Handle("POST /reviews/{id}/delete", handlers.RequireAuthentication(http.HandlerFunc(handlers.DeleteReview)))
	mux.HandleFunc("POST /notifications/dismiss", handlers.DismissNotification)

	mux.HandleFunc("GET /users", handlers.Users)
	mux.HandleFunc("GET /users/{id}", handlers.UserProfile)
	mux.Handle("GET /profile", handlers.RequireAuthentication(http.HandlerFunc(handlers.Profile)))

	mux.Handle("GET /settings", handlers.RequireAuthentication(http.HandlerFunc(handlers.Settings)))
	mux.Handle("POST /settings/appearance", handlers.RequireAuthentication(http.HandlerFunc(handlers.SettingsAppearance)))
	mux.Handle("POST /settings/team", handlers.RequireAuthentication(http.HandlerFunc(handlers.SettingsTeam)))

	mux.HandleFunc("GET /{$}", handlers.Home)
	mux.Handle("GET /assets/", http.StripPrefix("/assets/", http.FileServer(http.Dir("web/static"))))

	applog.Debug(context.Background(), "http routes registered")
	return mux
}
