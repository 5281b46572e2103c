package handlers

import (
	"net/http"

	applog "boxboxd/internal/log"
	"boxboxd/internal/notify"
	"boxboxd/internal/theme"
	"boxboxd/internal/views"
)

// Settings renders the account settings page. The route is guarded.
func Settings(w http.ResponseWriter, r *http.Request) {
	st := stateFor(w, r)
	show := r.URL.Query().Get("show")
	renderComponent(w, r, views.Settings(views.SettingsData{
		Layout:      layoutFor(st, "Settings"),
		Mode:        st.prefs.Mode(),
		Teams:       theme.Options(),
		Selected:    st.store.TeamKey(),
		ShowTerms:   show == "terms",
		ShowPrivacy: show == "privacy",
	}))
}

// SettingsAppearance flips between light and dark mode.
func SettingsAppearance(w http.ResponseWriter, r *http.Request) {
	st := stateFor(w, r)
	mode := st.prefs.Toggle(r.Context())
	applog.Debug(r.Context(), "display mode toggled", "mode", mode)
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}

// SettingsTeam saves the member's favorite team. The backend owns the
// resulting user record, so a failed save changes nothing.
func SettingsTeam(w http.ResponseWriter, r *http.Request) {
	st := stateFor(w, r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	team := r.PostFormValue("team")

	st.store.UpdateFavoriteTeam(r.Context(), team)
	if st.store.TeamKey() == team {
		st.flash.Show(r.Context(), "Favorite team saved.", notify.SeveritySuccess)
	} else {
		st.flash.Show(r.Context(), "We could not save your team. Please try again.", notify.SeverityError)
	}
	http.Redirect(w, r, "/settings", http.StatusSeeOther)
}
