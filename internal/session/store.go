// Package session holds the client-side state of a visitor: the
// authenticated identity with its bearer token, and the display
// preferences. State is restored once from durable storage, mutated only
// through the operations defined here, and persisted back on every change.
package session

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"boxboxd/internal/api"
	applog "boxboxd/internal/log"
	"boxboxd/internal/theme"
)

// Store is the session state container. Invariant: user and token are set
// and cleared together, a Store never holds one without the other.
type Store struct {
	backend *api.Client
	storage Storage
	nav     Navigator

	mu      sync.Mutex
	user    *api.User
	token   string
	loading bool
}

// NewStore builds an unrestored Store. Loading stays true until the single
// Restore call completes.
func NewStore(backend *api.Client, storage Storage, nav Navigator) *Store {
	return &Store{
		backend: backend,
		storage: storage,
		nav:     nav,
		loading: true,
	}
}

// Restore populates the store from durable storage. It never fails: a
// missing or unreadable persisted session simply leaves the visitor signed
// out. Loading flips to false exactly once; later calls are no-ops.
func (s *Store) Restore(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loading {
		return
	}
	defer func() { s.loading = false }()

	token, hasToken := s.storage.Get(ctx, KeyToken)
	rawUser, hasUser := s.storage.Get(ctx, KeyUser)
	if !hasToken || !hasUser || strings.TrimSpace(token) == "" {
		return
	}

	var user api.User
	if err := json.Unmarshal([]byte(rawUser), &user); err != nil {
		applog.Warn(ctx, "persisted user record is unreadable, starting signed out", "error", err)
		return
	}

	s.user = &user
	s.token = token
}

// Login exchanges credentials with the backend. On success the session is
// established, persisted, and the visitor is sent to the home page. On
// failure the error propagates and no state changes.
func (s *Store) Login(ctx context.Context, creds api.Credentials) error {
	result, err := s.backend.Login(ctx, creds)
	if err != nil {
		return err
	}
	s.establish(ctx, result)
	s.nav.Navigate(PathHome)
	return nil
}

// Register creates an account (multipart when an avatar is attached) with
// the same success and failure contract as Login.
func (s *Store) Register(ctx context.Context, reg api.Registration) error {
	result, err := s.backend.Register(ctx, reg)
	if err != nil {
		return err
	}
	s.establish(ctx, result)
	s.nav.Navigate(PathHome)
	return nil
}

func (s *Store) establish(ctx context.Context, result api.AuthResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user := result.User
	s.user = &user
	s.token = result.Token
	s.persistLocked(ctx)
}

// persistLocked writes the current identity to durable storage. Callers
// must hold mu.
func (s *Store) persistLocked(ctx context.Context) {
	s.storage.Set(ctx, KeyToken, s.token)
	raw, err := json.Marshal(s.user)
	if err != nil {
		applog.Error(ctx, "failed to serialise user record", "error", err)
		return
	}
	s.storage.Set(ctx, KeyUser, string(raw))
}

// Logout clears and unpersists the identity, then navigates to the auth
// page. Calling it while already signed out is a harmless no-op on state;
// the navigation still happens.
func (s *Store) Logout(ctx context.Context) {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.storage.Delete(ctx, KeyToken)
	s.storage.Delete(ctx, KeyUser)
	s.mu.Unlock()

	s.nav.Navigate(PathAuth)
}

// UpdateFavoriteTeam asks the backend to change the signed-in user's
// favorite team. The server's returned user record replaces the local one
// wholesale (the server is authoritative, not a local field merge). Without
// a token this is a no-op. Failures are logged and swallowed; existing
// state is never corrupted.
func (s *Store) UpdateFavoriteTeam(ctx context.Context, teamKey string) {
	s.mu.Lock()
	token := s.token
	s.mu.Unlock()
	if token == "" {
		return
	}

	updated, err := s.backend.UpdateProfile(ctx, token, api.ProfileUpdate{FavoriteTeam: teamKey})
	if err != nil {
		applog.Error(ctx, "failed to update favorite team", "team", teamKey, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// The visitor may have signed out while the request was in flight.
	if s.token != token {
		return
	}
	s.user = &updated
	s.persistLocked(ctx)
}

// User returns a copy of the signed-in user record, or nil.
func (s *Store) User() *api.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	user := *s.user
	return &user
}

// Token returns the bearer token, or "" when signed out.
func (s *Store) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// Loading reports whether the initial restoration is still pending.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// TeamKey returns the signed-in user's favorite team, or the default
// sentinel when signed out or teamless.
func (s *Store) TeamKey() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil || strings.TrimSpace(s.user.FavoriteTeam) == "" {
		return theme.DefaultKey
	}
	return s.user.FavoriteTeam
}

// Theme derives the palette for the current identity and the given display
// mode. It is computed on demand from its inputs, never stored, so it can
// not drift from the user's team.
func (s *Store) Theme(mode theme.Mode) theme.Palette {
	return theme.Resolve(s.TeamKey(), mode)
}
