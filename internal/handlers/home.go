package handlers

import (
	"net/http"
	"sync"

	"boxboxd/internal/api"
	applog "boxboxd/internal/log"
	"boxboxd/internal/views"
)

const latestFeedLimit = 4

// Home renders the landing page. The upcoming race and the review feeds are
// fetched concurrently, and each section degrades on its own when the
// backend fails.
func Home(w http.ResponseWriter, r *http.Request) {
	st := stateFor(w, r)
	user := st.store.User()
	token := st.store.Token()

	var (
		wg sync.WaitGroup

		upcoming    api.Race
		upcomingErr error
		latest      []api.Review
		latestErr   error
		following   []api.Review
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		upcoming, upcomingErr = backend.UpcomingRace(r.Context())
	}()
	go func() {
		defer wg.Done()
		latest, latestErr = backend.LatestReviews(r.Context())
	}()
	if token != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			reviews, err := backend.FollowingReviews(r.Context(), token)
			if err != nil {
				// The section simply stays empty.
				applog.Warn(r.Context(), "failed to load following feed", "error", err)
				return
			}
			following = reviews
		}()
	}
	wg.Wait()

	viewerID := ""
	if user != nil {
		viewerID = user.ID
	}
	data := views.HomeData{
		Layout:        layoutFor(st, "Home"),
		ShowFollowing: user != nil,
		Following:     reviewCards(following, viewerID),
	}
	if upcomingErr != nil {
		applog.Warn(r.Context(), "failed to load upcoming race", "error", upcomingErr)
		data.UpcomingErr = "Could not load upcoming race."
	} else if upcoming.ID != "" {
		card := raceCard(upcoming)
		data.Upcoming = &card
	}
	if latestErr != nil {
		applog.Warn(r.Context(), "failed to load latest reviews", "error", latestErr)
		data.LatestErr = "Could not load recent community reviews."
	} else {
		if len(latest) > latestFeedLimit {
			latest = latest[:latestFeedLimit]
		}
		data.Latest = reviewCards(latest, viewerID)
	}

	renderComponent(w, r, views.Home(data))
}
