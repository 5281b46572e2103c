package handlers

import (
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"boxboxd/internal/api"
	applog "boxboxd/internal/log"
	"boxboxd/internal/notify"
)

// CreateReview logs a race from the detail page form.
func CreateReview(w http.ResponseWriter, r *http.Request) {
	st := stateFor(w, r)
	raceID := r.PathValue("id")
	input, err := parseReviewForm(r, raceID)
	if err != "" {
		st.flash.Show(r.Context(), err, notify.SeverityError)
		http.Redirect(w, r, "/race/"+raceID, http.StatusSeeOther)
		return
	}

	if _, apiErr := backend.CreateReview(r.Context(), st.store.Token(), input); apiErr != nil {
		applog.Error(r.Context(), "failed to create review", "race", raceID, "error", apiErr)
		st.flash.Show(r.Context(), errorMessage(apiErr), notify.SeverityError)
		http.Redirect(w, r, "/race/"+raceID, http.StatusSeeOther)
		return
	}
	st.flash.Show(r.Context(), "Review posted.", notify.SeveritySuccess)
	http.Redirect(w, r, "/race/"+raceID, http.StatusSeeOther)
}

// UpdateReview saves an edit to one of the member's own reviews.
func UpdateReview(w http.ResponseWriter, r *http.Request) {
	st := stateFor(w, r)
	id := r.PathValue("id")
	raceID := r.PostFormValue("raceId")
	target := "/"
	if raceID != "" {
		target = "/race/" + raceID
	}

	input, formErr := parseReviewForm(r, raceID)
	if formErr != "" {
		st.flash.Show(r.Context(), formErr, notify.SeverityError)
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}

	if _, err := backend.UpdateReview(r.Context(), st.store.Token(), id, input); err != nil {
		applog.Error(r.Context(), "failed to update review", "review", id, "error", err)
		st.flash.Show(r.Context(), errorMessage(err), notify.SeverityError)
		http.Redirect(w, r, target, http.StatusSeeOther)
		return
	}
	st.flash.Show(r.Context(), "Review updated.", notify.SeveritySuccess)
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// DeleteReview removes one of the member's own reviews.
func DeleteReview(w http.ResponseWriter, r *http.Request) {
	st := stateFor(w, r)
	id := r.PathValue("id")

	if err := backend.DeleteReview(r.Context(), st.store.Token(), id); err != nil {
		applog.Error(r.Context(), "failed to delete review", "review", id, "error", err)
		st.flash.Show(r.Context(), errorMessage(err), notify.SeverityError)
	} else {
		st.flash.Show(r.Context(), "Review deleted.", notify.SeveritySuccess)
	}
	redirectBack(w, r)
}

// DismissNotification closes the visitor's current flash. Dismissal from the
// close button is deliberate, so the slot clears even if a newer message
// arrived.
func DismissNotification(w http.ResponseWriter, r *http.Request) {
	st := stateFor(w, r)
	st.flash.Dismiss(r.Context(), notify.ReasonExplicit)
	redirectBack(w, r)
}

// redirectBack sends the visitor to the referring page. Only same-origin
// targets are honored; anything else lands on the home page.
func redirectBack(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, refererTarget(r), http.StatusSeeOther)
}

func refererTarget(r *http.Request) string {
	ref, err := url.Parse(r.Header.Get("Referer"))
	if err != nil {
		return "/"
	}
	if ref.Host != "" && ref.Host != r.Host {
		return "/"
	}
	if !strings.HasPrefix(ref.Path, "/") || strings.HasPrefix(ref.Path, "//") {
		return "/"
	}
	target := ref.Path
	if ref.RawQuery != "" {
		target += "?" + ref.RawQuery
	}
	return target
}

// parseReviewForm validates the log form. A non-empty string return is the
// message to flash at the member.
func parseReviewForm(r *http.Request, raceID string) (api.ReviewInput, string) {
	if err := r.ParseForm(); err != nil {
		return api.ReviewInput{}, "We could not read your review. Please try again."
	}
	rating, err := strconv.ParseFloat(r.PostFormValue("rating"), 64)
	if err != nil || rating < 0.5 || rating > 5 || math.Trunc(rating*2) != rating*2 {
		return api.ReviewInput{}, "Pick a rating between half a star and five, in half-star steps."
	}
	watchedOn := strings.TrimSpace(r.PostFormValue("watchedOn"))
	if watchedOn == "" {
		return api.ReviewInput{}, "Tell us when you watched the race."
	}

	var tags []string
	for _, tag := range strings.Split(r.PostFormValue("tags"), ",") {
		if trimmed := strings.TrimSpace(tag); trimmed != "" {
			tags = append(tags, trimmed)
		}
	}
	return api.ReviewInput{
		RaceID:    raceID,
		Rating:    rating,
		Text:      strings.TrimSpace(r.PostFormValue("text")),
		WatchedOn: watchedOn,
		Tags:      tags,
		IsRewatch: r.PostFormValue("isRewatch") != "",
	}, ""
}
