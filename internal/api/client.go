package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultTimeout = 15 * time.Second

// Config describes how the backend client should be initialised.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is a typed wrapper around the remote Boxboxd REST backend. All
// persistence (users, races, reviews, follows) lives behind it; the web
// frontend holds no domain data of its own.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient builds a Client for the given backend base URL. A trailing
// slash on the base URL is stripped.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		return nil, errors.New("api: base URL must not be empty")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}, nil
}

// BaseURL exposes the normalised backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// AvatarURL resolves an avatar path returned by the backend into a fetchable
// URL. The no-avatar sentinel and empty paths resolve to "", in which case
// the caller renders the user's initial letter instead. Absolute URLs pass
// through; server-relative paths get the backend base prepended.
func (c *Client) AvatarURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" || path == DefaultAvatarSentinel {
		return ""
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

// Login exchanges credentials for a bearer token and user record.
func (c *Client) Login(ctx context.Context, creds Credentials) (AuthResult, error) {
	var result AuthResult
	err := c.doJSON(ctx, http.MethodPost, "/api/users/login", "", creds, &result)
	return result, err
}

// Register creates an account. Registrations carrying an avatar are sent as
// multipart form data; plain registrations use JSON.
func (c *Client) Register(ctx context.Context, reg Registration) (AuthResult, error) {
	var result AuthResult
	if reg.Avatar == nil {
		err := c.doJSON(ctx, http.MethodPost, "/api/users/register", "", reg, &result)
		return result, err
	}

	body := new(bytes.Buffer)
	form := multipart.NewWriter(body)
	fields := map[string]string{
		"username": reg.Username,
		"email":    reg.Email,
		"password": reg.Password,
	}
	for name, value := range fields {
		if err := form.WriteField(name, value); err != nil {
			return result, &Error{Kind: KindNetwork, Message: fmt.Sprintf("encode form field %s: %v", name, err)}
		}
	}
	part, err := createAvatarPart(form, reg.Avatar)
	if err != nil {
		return result, &Error{Kind: KindNetwork, Message: fmt.Sprintf("encode avatar: %v", err)}
	}
	if _, err := part.Write(reg.Avatar.Content); err != nil {
		return result, &Error{Kind: KindNetwork, Message: fmt.Sprintf("encode avatar: %v", err)}
	}
	if err := form.Close(); err != nil {
		return result, &Error{Kind: KindNetwork, Message: fmt.Sprintf("finalise form: %v", err)}
	}

	err = c.do(ctx, http.MethodPost, "/api/users/register", "", body, form.FormDataContentType(), &result)
	return result, err
}

func createAvatarPart(form *multipart.Writer, avatar *AvatarUpload) (io.Writer, error) {
	if avatar.ContentType == "" {
		return form.CreateFormFile("avatar", avatar.FileName)
	}
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="avatar"; filename=%q`, avatar.FileName))
	header.Set("Content-Type", avatar.ContentType)
	return form.CreatePart(header)
}

// UpdateProfile applies a profile mutation and returns the backend's full
// updated user record, which is authoritative.
func (c *Client) UpdateProfile(ctx context.Context, token string, update ProfileUpdate) (User, error) {
	var user User
	err := c.doJSON(ctx, http.MethodPut, "/api/users/profile", token, update, &user)
	return user, err
}

// Race fetches a single race by identifier.
func (c *Client) Race(ctx context.Context, id string) (Race, error) {
	var race Race
	err := c.doJSON(ctx, http.MethodGet, "/api/races/"+url.PathEscape(id), "", nil, &race)
	return race, err
}

// UpcomingRace fetches the next race on the calendar.
func (c *Client) UpcomingRace(ctx context.Context) (Race, error) {
	var race Race
	err := c.doJSON(ctx, http.MethodGet, "/api/races/upcoming", "", nil, &race)
	return race, err
}

// Seasons lists the seasons that have races on record.
func (c *Client) Seasons(ctx context.Context) ([]int, error) {
	var body struct {
		Seasons []int `json:"seasons"`
	}
	if err := c.doJSON(ctx, http.MethodGet, "/api/races", "", nil, &body); err != nil {
		return nil, err
	}
	return body.Seasons, nil
}

// SeasonRaces lists the calendar for one season.
func (c *Client) SeasonRaces(ctx context.Context, season int) ([]Race, error) {
	var races []Race
	err := c.doJSON(ctx, http.MethodGet, "/api/races/season/"+strconv.Itoa(season), "", nil, &races)
	return races, err
}

// RaceReviews lists the reviews written for a race.
func (c *Client) RaceReviews(ctx context.Context, raceID string) ([]Review, error) {
	var reviews []Review
	err := c.doJSON(ctx, http.MethodGet, "/api/reviews/race/"+url.PathEscape(raceID), "", nil, &reviews)
	return reviews, err
}

// UserReviews lists the reviews written by a user.
func (c *Client) UserReviews(ctx context.Context, userID string) ([]Review, error) {
	var reviews []Review
	err := c.doJSON(ctx, http.MethodGet, "/api/reviews/user/"+url.PathEscape(userID), "", nil, &reviews)
	return reviews, err
}

// LatestReviews lists the most recent community reviews.
func (c *Client) LatestReviews(ctx context.Context) ([]Review, error) {
	var reviews []Review
	err := c.doJSON(ctx, http.MethodGet, "/api/reviews/latest", "", nil, &reviews)
	return reviews, err
}

// FollowingReviews lists recent reviews by users the caller follows.
func (c *Client) FollowingReviews(ctx context.Context, token string) ([]Review, error) {
	var reviews []Review
	err := c.doJSON(ctx, http.MethodGet, "/api/users/me/following-reviews", token, nil, &reviews)
	return reviews, err
}

// CreateReview logs a new review.
func (c *Client) CreateReview(ctx context.Context, token string, input ReviewInput) (Review, error) {
	var review Review
	err := c.doJSON(ctx, http.MethodPost, "/api/reviews", token, input, &review)
	return review, err
}

// UpdateReview replaces an existing review's contents.
func (c *Client) UpdateReview(ctx context.Context, token, id string, input ReviewInput) (Review, error) {
	var review Review
	err := c.doJSON(ctx, http.MethodPut, "/api/reviews/"+url.PathEscape(id), token, input, &review)
	return review, err
}

// DeleteReview removes a review.
func (c *Client) DeleteReview(ctx context.Context, token, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/reviews/"+url.PathEscape(id), token, nil, nil)
}

// SearchUsers finds users by username fragment.
func (c *Client) SearchUsers(ctx context.Context, query string) ([]PublicUser, error) {
	var users []PublicUser
	err := c.doJSON(ctx, http.MethodGet, "/api/users/search?query="+url.QueryEscape(query), "", nil, &users)
	return users, err
}

// PublicProfile fetches a user's public record.
func (c *Client) PublicProfile(ctx context.Context, id string) (PublicUser, error) {
	var user PublicUser
	err := c.doJSON(ctx, http.MethodGet, "/api/users/"+url.PathEscape(id), "", nil, &user)
	return user, err
}

func (c *Client) doJSON(ctx context.Context, method, path, token string, payload, out any) error {
	var body io.Reader
	contentType := ""
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return &Error{Kind: KindNetwork, Message: fmt.Sprintf("encode request: %v", err)}
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, token, body, contentType, out)
}

func (c *Client) do(ctx context.Context, method, path, token string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: fmt.Sprintf("build request: %v", err)}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var msg apiMessage
		_ = json.NewDecoder(resp.Body).Decode(&msg)
		return statusError(resp.StatusCode, strings.TrimSpace(msg.Message))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &Error{Kind: KindDecode, Message: fmt.Sprintf("decode response: %v", err)}
	}
	return nil
}
