package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestClient(t *testing.T, handler http.Handler) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(Config{BaseURL: srv.URL + "/"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	return client, srv
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	t.Parallel()

	if _, err := NewClient(Config{}); err == nil {
		t.Fatal("expected error for empty base URL")
	}
}

func TestNewClientStripsTrailingSlash(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{BaseURL: "https://api.example.com/"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	if client.BaseURL() != "https://api.example.com" {
		t.Fatalf("expected trailing slash stripped, got %q", client.BaseURL())
	}
}

func TestLoginSuccess(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/users/login" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("unexpected content type %q", ct)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"tok-1","user":{"id":"u1","username":"alice","email":"a@x.com","favoriteTeam":"ferrari","avatar":"/uploads/a.png"}}`))
	}))

	result, err := client.Login(context.Background(), Credentials{Email: "a@x.com", Password: "pw"})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if result.Token != "tok-1" {
		t.Fatalf("unexpected token %q", result.Token)
	}
	if result.User.Username != "alice" || result.User.FavoriteTeam != "ferrari" {
		t.Fatalf("unexpected user %+v", result.User)
	}
}

func TestLoginPropagatesBackendMessage(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"Invalid credentials"}`))
	}))

	_, err := client.Login(context.Background(), Credentials{Email: "a@x.com", Password: "wrong"})
	apiErr, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Kind != KindAPI || apiErr.Status != http.StatusUnauthorized {
		t.Fatalf("unexpected error %+v", apiErr)
	}
	if apiErr.Message != "Invalid credentials" {
		t.Fatalf("expected backend message, got %q", apiErr.Message)
	}
	if apiErr.UserMessage() != "Invalid credentials" {
		t.Fatalf("expected user message passthrough, got %q", apiErr.UserMessage())
	}
}

func TestStatusErrorFallsBackToStatusText(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))

	_, err := client.UpcomingRace(context.Background())
	apiErr, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Message != http.StatusText(http.StatusInternalServerError) {
		t.Fatalf("expected status text fallback, got %q", apiErr.Message)
	}
	if apiErr.UserMessage() == "" {
		t.Fatal("expected non-empty user message")
	}
}

func TestNetworkFailureHasNetworkKind(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()
	client, err := NewClient(Config{BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	_, err = client.UpcomingRace(context.Background())
	apiErr, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Kind != KindNetwork {
		t.Fatalf("expected network kind, got %q", apiErr.Kind)
	}
}

func TestDecodeFailureHasDecodeKind(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))

	_, err := client.UpcomingRace(context.Background())
	apiErr, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %v", err)
	}
	if apiErr.Kind != KindDecode {
		t.Fatalf("expected decode kind, got %q", apiErr.Kind)
	}
}

func TestRegisterMultipart(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("expected multipart form: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if got := r.FormValue("username"); got != "alice" {
			t.Errorf("unexpected username %q", got)
		}
		file, header, err := r.FormFile("avatar")
		if err != nil {
			t.Errorf("expected avatar file: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer file.Close()
		if header.Filename != "me.png" {
			t.Errorf("unexpected filename %q", header.Filename)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"token":"tok-2","user":{"id":"u2","username":"alice","email":"a@x.com","favoriteTeam":"","avatar":"/uploads/me.png"}}`))
	}))

	result, err := client.Register(context.Background(), Registration{
		Username: "alice",
		Email:    "a@x.com",
		Password: "pw",
		Avatar: &AvatarUpload{
			FileName:    "me.png",
			ContentType: "image/png",
			Content:     []byte{0x89, 0x50, 0x4e, 0x47},
		},
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if result.User.Username != "alice" {
		t.Fatalf("unexpected user %+v", result.User)
	}
}

func TestRegisterWithoutAvatarSendsJSON(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}
		w.Write([]byte(`{"token":"tok-3","user":{"id":"u3","username":"bob","email":"b@x.com","favoriteTeam":"","avatar":"default-avatar-url"}}`))
	}))

	if _, err := client.Register(context.Background(), Registration{Username: "bob", Email: "b@x.com", Password: "pw"}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
}

func TestAuthenticatedCallsCarryBearerToken(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer tok-9" {
			t.Errorf("unexpected authorization header %q", got)
		}
		w.Write([]byte(`[]`))
	}))

	if _, err := client.FollowingReviews(context.Background(), "tok-9"); err != nil {
		t.Fatalf("FollowingReviews returned error: %v", err)
	}
}

func TestDeleteReviewSendsDelete(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete || r.URL.Path != "/api/reviews/r1" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))

	if err := client.DeleteReview(context.Background(), "tok", "r1"); err != nil {
		t.Fatalf("DeleteReview returned error: %v", err)
	}
}

func TestSeasonsUnwrapsEnvelope(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/races" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"seasons":[2024,2023]}`))
	}))

	seasons, err := client.Seasons(context.Background())
	if err != nil {
		t.Fatalf("Seasons returned error: %v", err)
	}
	if len(seasons) != 2 || seasons[0] != 2024 {
		t.Fatalf("unexpected seasons %v", seasons)
	}
}

func TestSearchUsersEscapesQuery(t *testing.T) {
	t.Parallel()

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("query"); got != "max v" {
			t.Errorf("unexpected query %q", got)
		}
		w.Write([]byte(`[{"_id":"u4","username":"maxv"}]`))
	}))

	users, err := client.SearchUsers(context.Background(), "max v")
	if err != nil {
		t.Fatalf("SearchUsers returned error: %v", err)
	}
	if len(users) != 1 || users[0].Username != "maxv" {
		t.Fatalf("unexpected users %v", users)
	}
}

func TestAvatarURL(t *testing.T) {
	t.Parallel()

	client, err := NewClient(Config{BaseURL: "https://api.example.com/"})
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}

	tests := []struct {
		name string
		path string
		want string
	}{
		{"empty", "", ""},
		{"sentinel", DefaultAvatarSentinel, ""},
		{"absolute", "https://cdn.example.com/a.png", "https://cdn.example.com/a.png"},
		{"relative with slash", "/uploads/a.png", "https://api.example.com/uploads/a.png"},
		{"relative without slash", "uploads/a.png", "https://api.example.com/uploads/a.png"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := client.AvatarURL(tt.path); got != tt.want {
				t.Fatalf("AvatarURL(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestErrorString(t *testing.T) {
	t.Parallel()

	err := &Error{Kind: KindAPI, Status: 404, Message: "Race not found"}
	if !strings.Contains(err.Error(), "404") || !strings.Contains(err.Error(), "Race not found") {
		t.Fatalf("unexpected error string %q", err.Error())
	}
}
