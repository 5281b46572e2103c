package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/alexedwards/scs/v2"

	"boxboxd/internal/api"
	"boxboxd/internal/flags"
	applog "boxboxd/internal/log"
	"boxboxd/internal/notify"
	"boxboxd/internal/session"
	"boxboxd/internal/theme"
	"boxboxd/internal/views"
)

var (
	sessionManager *scs.SessionManager
	backend        *api.Client
	flashTTL       time.Duration
)

// Configure installs the shared dependencies used by the HTTP handlers.
// ttl is how long a flash notification stays visible; zero selects the
// default.
func Configure(sm *scs.SessionManager, client *api.Client, ttl time.Duration) {
	sessionManager = sm
	backend = client
	flashTTL = ttl
}

// scsStorage exposes the scs session data under the session.Storage
// contract so the store persists through the browser cookie.
type scsStorage struct {
	manager *scs.SessionManager
}

func (s scsStorage) Get(ctx context.Context, key string) (string, bool) {
	if !s.manager.Exists(ctx, key) {
		return "", false
	}
	return s.manager.GetString(ctx, key), true
}

func (s scsStorage) Set(ctx context.Context, key, value string) {
	s.manager.Put(ctx, key, value)
}

func (s scsStorage) Delete(ctx context.Context, key string) {
	s.manager.Remove(ctx, key)
}

// httpNavigator turns store navigations into 303 redirects. It records
// whether a redirect was written so handlers can stop rendering afterwards.
type httpNavigator struct {
	w          http.ResponseWriter
	r          *http.Request
	redirected bool
}

func (n *httpNavigator) Navigate(path string) {
	if n.redirected {
		return
	}
	n.redirected = true
	http.Redirect(n.w, n.r, path, http.StatusSeeOther)
}

type requestState struct {
	store *session.Store
	prefs *session.Prefs
	flash *notify.Slot
	nav   *httpNavigator
}

func (st *requestState) ctx() context.Context {
	return st.nav.r.Context()
}

type contextKey string

const stateContextKey contextKey = "request-state"

// stateFor restores the session store and display preferences for the
// request, reusing the copy middleware already built when present.
func stateFor(w http.ResponseWriter, r *http.Request) *requestState {
	if st, ok := r.Context().Value(stateContextKey).(*requestState); ok {
		return st
	}
	return buildState(w, r)
}

func buildState(w http.ResponseWriter, r *http.Request) *requestState {
	storage := scsStorage{manager: sessionManager}
	nav := &httpNavigator{w: w, r: r}
	store := session.NewStore(backend, storage, nav)
	store.Restore(r.Context())
	prefs := session.NewPrefs(storage)
	prefs.Restore(r.Context())
	flash := notify.NewSlot(storage, flashTTL)
	return &requestState{store: store, prefs: prefs, flash: flash, nav: nav}
}

// RequireAuthentication gates protected pages on the restored session. While
// restoration is pending a placeholder renders instead of a redirect, so a
// returning visitor with a valid session is never bounced to the auth page.
func RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := stateFor(w, r)
		switch st.store.Guard() {
		case session.GuardPending:
			renderComponent(w, r, views.Loading(views.LoadingData{Layout: layoutFor(st, "Loading")}))
		case session.GuardUnauthorized:
			http.Redirect(w, r, session.PathAuth, http.StatusSeeOther)
		default:
			ctx := context.WithValue(r.Context(), stateContextKey, st)
			next.ServeHTTP(w, r.WithContext(ctx))
		}
	})
}

// layoutFor assembles the shared page chrome from the request state.
func layoutFor(st *requestState, title string) views.Layout {
	mode := st.prefs.Mode()
	layout := views.Layout{
		Title:    title,
		User:     st.store.User(),
		Pending:  st.store.Loading(),
		Palette:  st.store.Theme(mode),
		Mode:     mode,
		FlashTTL: st.flash.TTL(),
	}
	if layout.User != nil {
		layout.AvatarURL = backend.AvatarURL(layout.User.Avatar)
	}
	if flash, ok := st.flash.Current(st.ctx()); ok {
		layout.Flash = &flash
	}
	return layout
}

func renderComponent(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render page", "path", r.URL.Path, "error", err)
	}
}

func renderError(w http.ResponseWriter, r *http.Request, st *requestState, status int, message string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	component := views.Error(views.ErrorData{
		Layout:  layoutFor(st, http.StatusText(status)),
		Status:  status,
		Message: message,
	})
	if err := component.Render(r.Context(), w); err != nil {
		applog.Error(r.Context(), "failed to render error page", "status", status, "error", err)
	}
}

// errorMessage maps a backend failure to the text shown to the member.
func errorMessage(err error) string {
	if apiErr, ok := api.AsError(err); ok {
		return apiErr.UserMessage()
	}
	return "An unexpected error occurred."
}

func raceCard(race api.Race) views.RaceCard {
	card := views.RaceCard{
		ID:      race.ID,
		Name:    race.RaceName,
		Circuit: race.Circuit,
		Country: race.Country,
		Date:    race.Date,
		Season:  race.Season,
		Round:   race.Round,
	}
	if code, ok := flagCode(race); ok {
		card.FlagURL = flagURLFor(code)
	}
	return card
}

func reviewCard(review api.Review, viewerID string) views.ReviewCard {
	card := views.ReviewCard{
		ID:        review.ID,
		Rating:    review.Rating,
		Text:      review.Text,
		WatchedOn: review.WatchedOn,
		Tags:      review.Tags,
		IsRewatch: review.IsRewatch,
	}
	card.AuthorID = review.User.ID
	card.AuthorName = review.User.Username
	card.AvatarURL = backend.AvatarURL(review.User.Avatar)
	card.CanEdit = viewerID != "" && review.User.ID == viewerID
	if review.Race != nil {
		card.RaceID = review.Race.ID
		card.RaceName = review.Race.RaceName
		card.Season = review.Race.Season
	}
	return card
}

func reviewCards(reviews []api.Review, viewerID string) []views.ReviewCard {
	cards := make([]views.ReviewCard, 0, len(reviews))
	for _, review := range reviews {
		cards = append(cards, reviewCard(review, viewerID))
	}
	return cards
}

const flagWidth = 80

// flagCode resolves the flag for a race, preferring the explicit country and
// falling back to the race name.
func flagCode(race api.Race) (string, bool) {
	if code, ok := flags.CountryCode(race.Country); ok {
		return code, true
	}
	return flags.RaceFlagCode(race.RaceName)
}

func flagURLFor(code string) string {
	return flags.URL(code, flagWidth)
}

func teamLabel(key string) string {
	for _, option := range theme.Options() {
		if option.Value == key {
			return option.Label
		}
	}
	return ""
}
