// Package views renders every page of the site. Templates are embedded
// html/template files wrapped as templ components so handlers render them
// with a request context.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"path"
	"strings"
	"time"

	"github.com/a-h/templ"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

var funcMap = template.FuncMap{
	"formatDate":  formatDate,
	"formatDay":   formatDay,
	"stars":       Stars,
	"millis":      millis,
	"joinTags":    joinTags,
	"defaultDash": DefaultDash,
	"ratingLabel": RatingLabel,
	"initial":     Initial,
}

var pageTemplates = map[string]*template.Template{}

func init() {
	base := template.Must(template.New("layout.gohtml").
		Funcs(funcMap).
		ParseFS(templateFS, "templates/layout.gohtml"))

	names, err := fs.Glob(templateFS, "templates/page_*.gohtml")
	if err != nil {
		panic(fmt.Sprintf("views: glob templates: %v", err))
	}
	for _, name := range names {
		clone := template.Must(base.Clone())
		pageTemplates[path.Base(name)] = template.Must(clone.ParseFS(templateFS, name))
	}
}

func page(name string, data any) templ.Component {
	t, ok := pageTemplates[name]
	if !ok {
		panic(fmt.Sprintf("views: unknown page template %q", name))
	}
	return templ.FromGoHTML(t, data)
}

// Home renders the landing page with the upcoming race and review feeds.
func Home(data HomeData) templ.Component { return page("page_home.gohtml", data) }

// Auth renders the combined sign-in and sign-up page.
func Auth(data AuthData) templ.Component { return page("page_auth.gohtml", data) }

// Seasons renders the championship season list.
func Seasons(data SeasonsData) templ.Component { return page("page_seasons.gohtml", data) }

// Season renders a single season's race calendar.
func Season(data SeasonData) templ.Component { return page("page_season.gohtml", data) }

// Race renders the race detail page with its review feed and log form.
func Race(data RaceData) templ.Component { return page("page_race.gohtml", data) }

// Users renders the member search page.
func Users(data UsersData) templ.Component { return page("page_users.gohtml", data) }

// User renders a member's public profile.
func User(data UserData) templ.Component { return page("page_user.gohtml", data) }

// Profile renders the signed-in member's own profile.
func Profile(data UserData) templ.Component { return page("page_profile.gohtml", data) }

// Settings renders the account settings page.
func Settings(data SettingsData) templ.Component { return page("page_settings.gohtml", data) }

// Error renders the generic error page.
func Error(data ErrorData) templ.Component { return page("page_error.gohtml", data) }

// Loading renders the restoration placeholder for protected routes.
func Loading(data LoadingData) templ.Component { return page("page_loading.gohtml", data) }

// DefaultDash returns an em dash when the provided value is empty or
// whitespace.
func DefaultDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "—"
	}
	return value
}

// Stars renders a 0–5 rating in half-star steps, e.g. 3.5 → "★★★½".
func Stars(rating float64) string {
	if rating < 0 {
		rating = 0
	}
	if rating > 5 {
		rating = 5
	}
	full := int(rating)
	var b strings.Builder
	for i := 0; i < full; i++ {
		b.WriteRune('★')
	}
	if rating-float64(full) >= 0.5 {
		b.WriteRune('½')
	}
	if b.Len() == 0 {
		return "—"
	}
	return b.String()
}

// Initial returns the uppercased first letter of a name, the fallback shown
// when a member has no avatar.
func Initial(name string) string {
	for _, r := range strings.TrimSpace(name) {
		return strings.ToUpper(string(r))
	}
	return "?"
}

// RatingLabel converts a numeric rating into a descriptive label.
func RatingLabel(rating float64) string {
	switch {
	case rating >= 4.5:
		return "Instant classic"
	case rating >= 3.5:
		return "Great race"
	case rating >= 2.5:
		return "Decent watch"
	case rating > 0:
		return "One to forget"
	default:
		return "Unrated"
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("02 Jan 2006")
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "—"
	}
	return t.Format("Monday, 02 January 2006")
}

func millis(d time.Duration) int64 {
	return d.Milliseconds()
}

func joinTags(tags []string) string {
	return strings.Join(tags, ", ")
}
