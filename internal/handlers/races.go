package handlers

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"boxboxd/internal/api"
	applog "boxboxd/internal/log"
	"boxboxd/internal/views"
)

// Seasons renders the championship archive, newest season first.
func Seasons(w http.ResponseWriter, r *http.Request) {
	st := stateFor(w, r)
	seasons, err := backend.Seasons(r.Context())
	if err != nil {
		applog.Error(r.Context(), "failed to load seasons", "error", err)
		renderError(w, r, st, http.StatusBadGateway, "Could not load the season archive.")
		return
	}
	sort.Sort(sort.Reverse(sort.IntSlice(seasons)))
	renderComponent(w, r, views.Seasons(views.SeasonsData{
		Layout:  layoutFor(st, "Seasons"),
		Seasons: seasons,
	}))
}

// Season renders one season's race calendar in round order.
func Season(w http.ResponseWriter, r *http.Request) {
	st := stateFor(w, r)
	year, err := strconv.Atoi(r.PathValue("season"))
	if err != nil {
		renderError(w, r, st, http.StatusNotFound, "That season is not in the archive.")
		return
	}
	races, err := backend.SeasonRaces(r.Context(), year)
	if err != nil {
		applog.Error(r.Context(), "failed to load season races", "season", year, "error", err)
		renderError(w, r, st, http.StatusBadGateway, "Could not load the race calendar.")
		return
	}
	sort.Slice(races, func(i, j int) bool { return races[i].Round < races[j].Round })
	cards := make([]views.RaceCard, 0, len(races))
	for _, race := range races {
		cards = append(cards, raceCard(race))
	}
	renderComponent(w, r, views.Season(views.SeasonData{
		Layout: layoutFor(st, strconv.Itoa(year)+" season"),
		Season: year,
		Races:  cards,
	}))
}

// RaceDetail renders a race page with its reviews and, for signed-in
// members, the log form. The race and its reviews are fetched concurrently.
func RaceDetail(w http.ResponseWriter, r *http.Request) {
	st := stateFor(w, r)
	id := r.PathValue("id")

	var (
		wg sync.WaitGroup

		race       api.Race
		raceErr    error
		reviews    []api.Review
		reviewsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		race, raceErr = backend.Race(r.Context(), id)
	}()
	go func() {
		defer wg.Done()
		reviews, reviewsErr = backend.RaceReviews(r.Context(), id)
	}()
	wg.Wait()

	if raceErr != nil {
		if apiErr, ok := api.AsError(raceErr); ok && apiErr.Status == http.StatusNotFound {
			renderError(w, r, st, http.StatusNotFound, "That race is not in the archive.")
			return
		}
		applog.Error(r.Context(), "failed to load race", "race", id, "error", raceErr)
		renderError(w, r, st, http.StatusBadGateway, "Could not load this race.")
		return
	}

	user := st.store.User()
	viewerID := ""
	if user != nil {
		viewerID = user.ID
	}
	data := views.RaceData{
		Layout:       layoutFor(st, race.RaceName),
		Race:         raceCard(race),
		WinnerName:   race.WinningDriverName,
		WinnerTeam:   race.WinningConstructor,
		RevealWinner: r.URL.Query().Get("reveal") == "1",
		CanReview:    user != nil,
	}
	if reviewsErr != nil {
		applog.Warn(r.Context(), "failed to load race reviews", "race", id, "error", reviewsErr)
		data.ReviewsErr = "Could not load reviews for this race."
	} else {
		data.Reviews = reviewCards(reviews, viewerID)
	}
	if user != nil {
		data.Form = raceReviewForm(r, reviews, viewerID)
	}

	renderComponent(w, r, views.Race(data))
}

// raceReviewForm prefills the log form: today's date for a new entry, the
// existing review when the member is editing via ?edit=<id>.
func raceReviewForm(r *http.Request, reviews []api.Review, viewerID string) views.ReviewForm {
	blank := views.ReviewForm{WatchedOn: time.Now().Format("2006-01-02")}
	editID := r.URL.Query().Get("edit")
	if editID == "" {
		return blank
	}
	for _, review := range reviews {
		if review.ID != editID || review.User.ID != viewerID {
			continue
		}
		form := views.ReviewForm{
			EditingID: review.ID,
			Rating:    review.Rating,
			Text:      review.Text,
			Tags:      strings.Join(review.Tags, ", "),
			IsRewatch: review.IsRewatch,
		}
		if !review.WatchedOn.IsZero() {
			form.WatchedOn = review.WatchedOn.Format("2006-01-02")
		}
		return form
	}
	return blank
}
