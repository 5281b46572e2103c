package session

import "context"

// Durable storage keys. The names are part of the persisted format: values
// written by older deployments must keep restoring.
const (
	KeyToken = "token"
	KeyUser  = "user"
	KeyMode  = "ui-mode"
)

// Navigation targets triggered by session transitions.
const (
	PathHome = "/"
	PathAuth = "/auth"
)

// Storage is the durable local key-value store backing a visitor's session
// state. The web layer binds it to the visitor's cookie session; tests use
// an in-memory map.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string)
	Delete(ctx context.Context, key string)
}

// Navigator receives the navigation side effects of login, register and
// logout. The web layer implements it as an HTTP redirect.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(path string)

// Navigate calls f.
func (f NavigatorFunc) Navigate(path string) {
	f(path)
}
