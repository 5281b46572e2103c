package views

import (
	"time"

	"boxboxd/internal/api"
	"boxboxd/internal/notify"
	"boxboxd/internal/theme"
)

// Layout carries the chrome every page shares: the signed-in user (nil for
// visitors), the resolved team palette, and the current flash notification.
type Layout struct {
	Title     string
	User      *api.User
	AvatarURL string
	Pending   bool
	Palette   theme.Palette
	Mode      theme.Mode
	Flash     *notify.Notification
	FlashTTL  time.Duration
}

// RaceCard is a single grand prix as rendered in lists and detail headers.
type RaceCard struct {
	ID      string
	Name    string
	Circuit string
	Country string
	FlagURL string
	Date    time.Time
	Season  int
	Round   int
}

// ReviewCard is a review joined with its author and race for display.
type ReviewCard struct {
	ID         string
	AuthorID   string
	AuthorName string
	AvatarURL  string
	RaceID     string
	RaceName   string
	Season     int
	Rating     float64
	Text       string
	WatchedOn  time.Time
	Tags       []string
	IsRewatch  bool
	CanEdit    bool
}

// UserCard is a community member as rendered in search results and profiles.
type UserCard struct {
	ID           string
	Username     string
	AvatarURL    string
	FavoriteTeam string
}

// ReviewForm holds the state of the log/edit form on the race page.
type ReviewForm struct {
	EditingID string
	Rating    float64
	Text      string
	WatchedOn string
	Tags      string
	IsRewatch bool
	Error     string
}

// HomeData feeds the landing page. Each section carries its own error so a
// failed fetch degrades that section alone.
type HomeData struct {
	Layout        Layout
	Upcoming      *RaceCard
	UpcomingErr   string
	Latest        []ReviewCard
	LatestErr     string
	Following     []ReviewCard
	ShowFollowing bool
}

// AuthData feeds the combined sign-in / sign-up page.
type AuthData struct {
	Layout        Layout
	Tab           string
	LoginError    string
	RegisterError string
	Email         string
	Username      string
}

// SeasonsData feeds the championship season list.
type SeasonsData struct {
	Layout  Layout
	Seasons []int
}

// SeasonData feeds a single season's race calendar.
type SeasonData struct {
	Layout Layout
	Season int
	Races  []RaceCard
}

// RaceData feeds the race detail page.
type RaceData struct {
	Layout       Layout
	Race         RaceCard
	WinnerName   string
	WinnerTeam   string
	RevealWinner bool
	Reviews      []ReviewCard
	ReviewsErr   string
	CanReview    bool
	Form         ReviewForm
}

// UsersData feeds the member search page.
type UsersData struct {
	Layout   Layout
	Query    string
	Results  []UserCard
	Searched bool
}

// UserData feeds a member's public profile.
type UserData struct {
	Layout     Layout
	Profile    UserCard
	TeamLabel  string
	Reviews    []ReviewCard
	ReviewsErr string
	IsSelf     bool
}

// SettingsData feeds the account settings page.
type SettingsData struct {
	Layout      Layout
	Mode        theme.Mode
	Teams       []theme.Option
	Selected    string
	ShowTerms   bool
	ShowPrivacy bool
}

// ErrorData feeds the generic error page.
type ErrorData struct {
	Layout  Layout
	Status  int
	Message string
}

// LoadingData feeds the placeholder shown while session restoration is
// still pending on a protected route.
type LoadingData struct {
	Layout Layout
}
