package handlers

import (
	"net/http"
	"strings"
	"sync"

	"boxboxd/internal/api"
	applog "boxboxd/internal/log"
	"boxboxd/internal/views"
)

// Users renders the member search page. An empty query renders the page
// without hitting the backend.
func Users(w http.ResponseWriter, r *http.Request) {
	st := stateFor(w, r)
	query := strings.TrimSpace(r.URL.Query().Get("query"))
	data := views.UsersData{
		Layout: layoutFor(st, "Members"),
		Query:  query,
	}
	if query != "" {
		data.Searched = true
		results, err := backend.SearchUsers(r.Context(), query)
		if err != nil {
			applog.Error(r.Context(), "failed to search users", "query", query, "error", err)
			renderError(w, r, st, http.StatusBadGateway, "Could not search members right now.")
			return
		}
		data.Results = userCards(results)
	}
	renderComponent(w, r, views.Users(data))
}

// UserProfile renders a member's public profile with their review diary.
func UserProfile(w http.ResponseWriter, r *http.Request) {
	st := stateFor(w, r)
	id := r.PathValue("id")

	var (
		wg sync.WaitGroup

		profile    api.PublicUser
		profileErr error
		reviews    []api.Review
		reviewsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		profile, profileErr = backend.PublicProfile(r.Context(), id)
	}()
	go func() {
		defer wg.Done()
		reviews, reviewsErr = backend.UserReviews(r.Context(), id)
	}()
	wg.Wait()

	if profileErr != nil {
		if apiErr, ok := api.AsError(profileErr); ok && apiErr.Status == http.StatusNotFound {
			renderError(w, r, st, http.StatusNotFound, "That member does not exist.")
			return
		}
		applog.Error(r.Context(), "failed to load profile", "user", id, "error", profileErr)
		renderError(w, r, st, http.StatusBadGateway, "Could not load this profile.")
		return
	}

	viewer := st.store.User()
	viewerID := ""
	if viewer != nil {
		viewerID = viewer.ID
	}
	data := views.UserData{
		Layout: layoutFor(st, profile.Username),
		Profile: views.UserCard{
			ID:           profile.ID,
			Username:     profile.Username,
			AvatarURL:    backend.AvatarURL(profile.Avatar),
			FavoriteTeam: profile.FavoriteTeam,
		},
		TeamLabel: teamLabel(profile.FavoriteTeam),
		IsSelf:    viewerID != "" && viewerID == profile.ID,
	}
	if reviewsErr != nil {
		applog.Warn(r.Context(), "failed to load member reviews", "user", id, "error", reviewsErr)
		data.ReviewsErr = "Could not load this member's reviews."
	} else {
		data.Reviews = reviewCards(reviews, viewerID)
	}
	renderComponent(w, r, views.User(data))
}

// Profile renders the signed-in member's own diary. The route is guarded,
// so a user is always present here.
func Profile(w http.ResponseWriter, r *http.Request) {
	st := stateFor(w, r)
	user := st.store.User()
	if user == nil {
		http.Redirect(w, r, "/auth", http.StatusSeeOther)
		return
	}

	data := views.UserData{
		Layout: layoutFor(st, "Your profile"),
		Profile: views.UserCard{
			ID:           user.ID,
			Username:     user.Username,
			AvatarURL:    backend.AvatarURL(user.Avatar),
			FavoriteTeam: user.FavoriteTeam,
		},
		TeamLabel: teamLabel(user.FavoriteTeam),
		IsSelf:    true,
	}
	reviews, err := backend.UserReviews(r.Context(), user.ID)
	if err != nil {
		applog.Warn(r.Context(), "failed to load own reviews", "user", user.ID, "error", err)
		data.ReviewsErr = "Could not load your reviews."
	} else {
		data.Reviews = reviewCards(reviews, user.ID)
	}
	renderComponent(w, r, views.Profile(data))
}

func userCards(users []api.PublicUser) []views.UserCard {
	cards := make([]views.UserCard, 0, len(users))
	for _, user := range users {
		cards = append(cards, views.UserCard{
			ID:           user.ID,
			Username:     user.Username,
			AvatarURL:    backend.AvatarURL(user.Avatar),
			FavoriteTeam: user.FavoriteTeam,
		})
	}
	return cards
}
