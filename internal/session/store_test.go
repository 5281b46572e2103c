package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"boxboxd/internal/api"
	"boxboxd/internal/theme"
)

type memoryStorage struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemoryStorage() *memoryStorage {
	return &memoryStorage{values: map[string]string{}}
}

func (m *memoryStorage) Get(_ context.Context, key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	value, ok := m.values[key]
	return value, ok
}

func (m *memoryStorage) Set(_ context.Context, key, value string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = value
}

func (m *memoryStorage) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
}

type recordingNavigator struct {
	paths []string
}

func (n *recordingNavigator) Navigate(path string) {
	n.paths = append(n.paths, path)
}

func newBackend(t *testing.T, handler http.Handler) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := api.NewClient(api.Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("failed to build backend client: %v", err)
	}
	return client
}

func authBackend(t *testing.T) *api.Client {
	t.Helper()
	return newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/login":
			w.Write([]byte(`{"token":"tok-1","user":{"id":"u1","username":"alice","email":"a@x.com","favoriteTeam":"mclaren","avatar":"default-avatar-url"}}`))
		case "/api/users/register":
			w.Write([]byte(`{"token":"tok-2","user":{"id":"u2","username":"alice","email":"a@x.com","favoriteTeam":"","avatar":"/uploads/a.png"}}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

// checkIdentityInvariant asserts that user and token are set or cleared
// together.
func checkIdentityInvariant(t *testing.T, s *Store) {
	t.Helper()
	if (s.User() == nil) != (s.Token() == "") {
		t.Fatalf("identity invariant violated: user=%v token=%q", s.User(), s.Token())
	}
}

func TestRestoreWithEmptyStorage(t *testing.T) {
	t.Parallel()

	s := NewStore(authBackend(t), newMemoryStorage(), &recordingNavigator{})
	if !s.Loading() {
		t.Fatal("expected a fresh store to be loading")
	}

	s.Restore(context.Background())

	if s.Loading() {
		t.Fatal("expected loading to be false after restore")
	}
	if s.User() != nil || s.Token() != "" {
		t.Fatal("expected empty session")
	}
	checkIdentityInvariant(t, s)
}

func TestRestoreLoadingFlipsExactlyOnce(t *testing.T) {
	t.Parallel()

	storage := newMemoryStorage()
	s := NewStore(authBackend(t), storage, &recordingNavigator{})
	s.Restore(context.Background())

	// A later write to storage must not be picked up by a second Restore:
	// restoration happens once per lifetime.
	storage.Set(context.Background(), KeyToken, "tok-x")
	storage.Set(context.Background(), KeyUser, `{"id":"ux","username":"mallory"}`)
	s.Restore(context.Background())

	if s.Loading() {
		t.Fatal("loading must never revert to true")
	}
	if s.User() != nil {
		t.Fatal("second restore must be a no-op")
	}
}

func TestRestoreWithUnparsableUser(t *testing.T) {
	t.Parallel()

	storage := newMemoryStorage()
	storage.Set(context.Background(), KeyToken, "tok-1")
	storage.Set(context.Background(), KeyUser, "{not json")

	s := NewStore(authBackend(t), storage, &recordingNavigator{})
	s.Restore(context.Background())

	if s.Loading() {
		t.Fatal("expected loading false even after parse failure")
	}
	if s.User() != nil || s.Token() != "" {
		t.Fatal("expected empty session after parse failure")
	}
	checkIdentityInvariant(t, s)
}

func TestLoginEstablishesPersistsAndNavigates(t *testing.T) {
	t.Parallel()

	storage := newMemoryStorage()
	nav := &recordingNavigator{}
	s := NewStore(authBackend(t), storage, nav)
	s.Restore(context.Background())

	if err := s.Login(context.Background(), api.Credentials{Email: "a@x.com", Password: "pw"}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	user := s.User()
	if user == nil || user.Username != "alice" {
		t.Fatalf("unexpected user %+v", user)
	}
	if s.Token() != "tok-1" {
		t.Fatalf("unexpected token %q", s.Token())
	}
	if got := s.Theme(theme.ModeLight); got.Key != "mclaren" {
		t.Fatalf("expected mclaren theme, got %q", got.Key)
	}
	if len(nav.paths) != 1 || nav.paths[0] != PathHome {
		t.Fatalf("expected navigation to home, got %v", nav.paths)
	}
	if _, ok := storage.Get(context.Background(), KeyToken); !ok {
		t.Fatal("expected token to be persisted")
	}
	checkIdentityInvariant(t, s)
}

func TestLoginFailureLeavesStateUnchanged(t *testing.T) {
	t.Parallel()

	backend := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))
	storage := newMemoryStorage()
	nav := &recordingNavigator{}
	s := NewStore(backend, storage, nav)
	s.Restore(context.Background())

	err := s.Login(context.Background(), api.Credentials{Email: "a@x.com", Password: "bad"})
	if err == nil {
		t.Fatal("expected login error")
	}
	apiErr, ok := api.AsError(err)
	if !ok || apiErr.Message != "Invalid credentials" {
		t.Fatalf("expected typed backend error, got %v", err)
	}
	if s.User() != nil || s.Token() != "" {
		t.Fatal("expected state to stay empty")
	}
	if len(nav.paths) != 0 {
		t.Fatalf("expected no navigation, got %v", nav.paths)
	}
	if _, ok := storage.Get(context.Background(), KeyToken); ok {
		t.Fatal("expected nothing persisted")
	}
}

func TestLoginThenFreshRestoreRoundTrips(t *testing.T) {
	t.Parallel()

	storage := newMemoryStorage()
	backend := authBackend(t)
	first := NewStore(backend, storage, &recordingNavigator{})
	first.Restore(context.Background())
	if err := first.Login(context.Background(), api.Credentials{Email: "a@x.com", Password: "pw"}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	// A fresh store over the same storage simulates a reload.
	second := NewStore(backend, storage, &recordingNavigator{})
	second.Restore(context.Background())

	if second.Token() != first.Token() {
		t.Fatalf("token did not round-trip: %q vs %q", second.Token(), first.Token())
	}
	firstUser, secondUser := first.User(), second.User()
	if secondUser == nil || *secondUser != *firstUser {
		t.Fatalf("user did not round-trip: %+v vs %+v", secondUser, firstUser)
	}
	if first.Theme(theme.ModeDark) != second.Theme(theme.ModeDark) {
		t.Fatal("theme did not round-trip")
	}
}

func TestRegisterMultipartEstablishesSession(t *testing.T) {
	t.Parallel()

	backend := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart payload: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got := r.FormValue("username"); got != "alice" {
			t.Errorf("unexpected username %q", got)
		}
		if _, _, err := r.FormFile("avatar"); err != nil {
			t.Errorf("expected avatar file: %v", err)
		}
		w.Write([]byte(`{"token":"tok-2","user":{"id":"u2","username":"alice","email":"a@x.com","favoriteTeam":"","avatar":"/uploads/a.png"}}`))
	}))
	nav := &recordingNavigator{}
	s := NewStore(backend, newMemoryStorage(), nav)
	s.Restore(context.Background())

	err := s.Register(context.Background(), api.Registration{
		Username: "alice",
		Email:    "a@x.com",
		Password: "pw",
		Avatar:   &api.AvatarUpload{FileName: "me.png", ContentType: "image/png", Content: []byte{1, 2, 3}},
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user := s.User(); user == nil || user.Username != "alice" {
		t.Fatalf("unexpected user %+v", user)
	}
	if len(nav.paths) != 1 || nav.paths[0] != PathHome {
		t.Fatalf("expected navigation to home, got %v", nav.paths)
	}
	checkIdentityInvariant(t, s)
}

func TestLogoutIsIdempotentAndAlwaysNavigates(t *testing.T) {
	t.Parallel()

	storage := newMemoryStorage()
	nav := &recordingNavigator{}
	s := NewStore(authBackend(t), storage, nav)
	s.Restore(context.Background())
	if err := s.Login(context.Background(), api.Credentials{Email: "a@x.com", Password: "pw"}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	s.Logout(context.Background())
	s.Logout(context.Background())

	if s.User() != nil || s.Token() != "" {
		t.Fatal("expected cleared session")
	}
	if _, ok := storage.Get(context.Background(), KeyToken); ok {
		t.Fatal("expected token to be unpersisted")
	}
	if _, ok := storage.Get(context.Background(), KeyUser); ok {
		t.Fatal("expected user to be unpersisted")
	}
	// Home after login, then auth for each logout, signed in or not.
	want := []string{PathHome, PathAuth, PathAuth}
	if len(nav.paths) != len(want) {
		t.Fatalf("unexpected navigations %v", nav.paths)
	}
	for i, path := range want {
		if nav.paths[i] != path {
			t.Fatalf("navigation %d = %q, want %q", i, nav.paths[i], path)
		}
	}
	checkIdentityInvariant(t, s)
}

func TestUpdateFavoriteTeamUsesServerRecordWholesale(t *testing.T) {
	t.Parallel()

	backend := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/login":
			w.Write([]byte(`{"token":"tok-1","user":{"id":"u1","username":"alice","email":"a@x.com","favoriteTeam":"mclaren","avatar":"default-avatar-url"}}`))
		case "/api/users/profile":
			if r.Method != http.MethodPut {
				t.Errorf("unexpected method %s", r.Method)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
				t.Errorf("unexpected authorization %q", got)
			}
			// The server response differs from a local merge: the
			// username changed server-side too.
			w.Write([]byte(`{"id":"u1","username":"alice-renamed","email":"a@x.com","favoriteTeam":"ferrari","avatar":"default-avatar-url"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	storage := newMemoryStorage()
	s := NewStore(backend, storage, &recordingNavigator{})
	s.Restore(context.Background())
	if err := s.Login(context.Background(), api.Credentials{Email: "a@x.com", Password: "pw"}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	s.UpdateFavoriteTeam(context.Background(), "ferrari")

	user := s.User()
	if user == nil || user.FavoriteTeam != "ferrari" {
		t.Fatalf("expected ferrari team, got %+v", user)
	}
	if user.Username != "alice-renamed" {
		t.Fatalf("expected the server record wholesale, got %+v", user)
	}
	if got := s.Theme(theme.ModeDark); got.Key != "ferrari" || got.Mode != theme.ModeDark {
		t.Fatalf("expected ferrari dark theme, got %+v", got)
	}
	// The updated record must be re-persisted.
	second := NewStore(backend, storage, &recordingNavigator{})
	second.Restore(context.Background())
	if u := second.User(); u == nil || u.FavoriteTeam != "ferrari" {
		t.Fatalf("expected persisted update, got %+v", u)
	}
}

func TestUpdateFavoriteTeamWithoutTokenIsNoOp(t *testing.T) {
	t.Parallel()

	var calls int
	backend := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	s := NewStore(backend, newMemoryStorage(), &recordingNavigator{})
	s.Restore(context.Background())

	s.UpdateFavoriteTeam(context.Background(), "ferrari")

	if calls != 0 {
		t.Fatalf("expected no backend call, got %d", calls)
	}
	checkIdentityInvariant(t, s)
}

func TestUpdateFavoriteTeamSwallowsFailure(t *testing.T) {
	t.Parallel()

	backend := newBackend(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/users/login":
			w.Write([]byte(`{"token":"tok-1","user":{"id":"u1","username":"alice","email":"a@x.com","favoriteTeam":"mclaren","avatar":"default-avatar-url"}}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	s := NewStore(backend, newMemoryStorage(), &recordingNavigator{})
	s.Restore(context.Background())
	if err := s.Login(context.Background(), api.Credentials{Email: "a@x.com", Password: "pw"}); err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	s.UpdateFavoriteTeam(context.Background(), "ferrari")

	if user := s.User(); user == nil || user.FavoriteTeam != "mclaren" {
		t.Fatalf("expected state untouched after failure, got %+v", user)
	}
	checkIdentityInvariant(t, s)
}

func TestThemeDefaultsWhenSignedOut(t *testing.T) {
	t.Parallel()

	s := NewStore(authBackend(t), newMemoryStorage(), &recordingNavigator{})
	s.Restore(context.Background())

	if got := s.Theme(theme.ModeDark); got.Key != theme.DefaultKey {
		t.Fatalf("expected default theme, got %q", got.Key)
	}
}
