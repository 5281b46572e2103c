package api

import "time"

// DefaultAvatarSentinel is the backend's marker for "no avatar uploaded".
// Clients fall back to rendering the user's initial letter.
const DefaultAvatarSentinel = "default-avatar-url"

// User is the authenticated account record returned by the login, register
// and profile-update endpoints.
type User struct {
	ID           string `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	FavoriteTeam string `json:"favoriteTeam"`
	Avatar       string `json:"avatar"`
}

// PublicUser is the reduced representation used by search results and
// public profile pages.
type PublicUser struct {
	ID           string `json:"_id"`
	Username     string `json:"username"`
	Avatar       string `json:"avatar,omitempty"`
	FavoriteTeam string `json:"favoriteTeam,omitempty"`
}

// Race is a Grand Prix record.
type Race struct {
	ID                 string    `json:"_id"`
	Season             int       `json:"season"`
	Round              int       `json:"round"`
	RaceName           string    `json:"raceName"`
	Circuit            string    `json:"circuit"`
	Date               time.Time `json:"date"`
	WinningDriverName  string    `json:"winningDriverName,omitempty"`
	WinningConstructor string    `json:"winningConstructor,omitempty"`
	Country            string    `json:"country,omitempty"`
}

// RaceRef is the embedded race summary carried by review feeds.
type RaceRef struct {
	ID       string `json:"_id"`
	RaceName string `json:"raceName"`
	Season   int    `json:"season"`
}

// ReviewAuthor is the embedded author summary carried by reviews.
type ReviewAuthor struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar,omitempty"`
}

// Review is a diary entry: a logged, rated and optionally written-up race.
type Review struct {
	ID        string       `json:"_id"`
	Rating    float64      `json:"rating"`
	Text      string       `json:"text"`
	WatchedOn time.Time    `json:"watchedOn"`
	Tags      []string     `json:"tags"`
	IsRewatch bool         `json:"isRewatch"`
	User      ReviewAuthor `json:"user"`
	Race      *RaceRef     `json:"race,omitempty"`
}

// Credentials carries a login submission.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AvatarUpload is an optional image attached to a registration.
type AvatarUpload struct {
	FileName    string
	ContentType string
	Content     []byte
}

// Registration carries an account-creation submission. When Avatar is set
// the request is sent as multipart form data, otherwise as JSON.
type Registration struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Avatar   *AvatarUpload `json:"-"`
}

// AuthResult is the success body of the login and register endpoints.
type AuthResult struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// ProfileUpdate carries a profile mutation. Only set fields are sent.
type ProfileUpdate struct {
	FavoriteTeam string `json:"favoriteTeam"`
}

// ReviewInput carries a review create or update submission. WatchedOn uses
// the backend's YYYY-MM-DD date format.
type ReviewInput struct {
	RaceID    string   `json:"raceId"`
	Rating    float64  `json:"rating"`
	Text      string   `json:"text"`
	WatchedOn string   `json:"watchedOn"`
	Tags      []string `json:"tags"`
	IsRewatch bool     `json:"isRewatch"`
}
