// package services defines interface Service for interacting with the
// Spotify Web API on behalf of a signed-in user
package services

import (
	"context"
	"encoding/json"

	"golang.org/x/oauth2"
)

// Service defines the OAuth client used by the web handlers: the
// authorization-code exchange plus the authenticated resource calls.
//
// Every method is a stateless proxy to the external API. The access token is
// passed per call because each browser session carries its own token; the
// service itself holds only the application identity.
type Service interface {
	// AuthCodeURL builds the external authorization URL for the given state
	// token. Pure string construction, no side effects.
	AuthCodeURL(state string) string

	// Exchange redeems a freshly issued authorization code for a token pair.
	// Codes are single-use; a failed exchange is terminal for the login
	// attempt and the caller must restart from the login route.
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)

	// Profile retrieves the authenticated user's profile.
	Profile(ctx context.Context, accessToken string) (*Profile, error)

	// Playlists retrieves the user's playlists.
	Playlists(ctx context.Context, accessToken string) (*PlaylistPage, error)

	// CreatePlaylist creates a playlist owned by userID.
	CreatePlaylist(ctx context.Context, accessToken, userID string, draft PlaylistDraft) (*Playlist, error)

	// TopItems returns the user's top tracks or artists as the upstream JSON
	// payload, verbatim.
	TopItems(ctx context.Context, accessToken, kind string) (json.RawMessage, error)

	// Name returns the name of the service (e.g., "Spotify")
	Name() string
}

// Profile is a snapshot of the user's account, cached in the session after a
// successful callback.
type Profile struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
	Country     string `json:"country"`
	Product     string `json:"product"`
	Followers   int    `json:"followers"`
	ImageURL    string `json:"image_url"`
}

// Playlist represents a playlist owned by or followed by the user.
type Playlist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Owner       string `json:"owner"`
	TrackCount  int    `json:"track_count"`
	Public      bool   `json:"public"`
	ImageURL    string `json:"image_url"`
}

// PlaylistPage is one page of the user's playlist collection as returned by
// the upstream API at fetch time.
type PlaylistPage struct {
	Items []Playlist `json:"items"`
	Total int        `json:"total"`
}

// PlaylistDraft carries the user-supplied fields for playlist creation.
type PlaylistDraft struct {
	Name        string
	Description string
	Public      bool
}
