// Spotify API implementation of [Service]
//
// Spotify API response types based on https://developer.spotify.com/documentation/web-api/reference/
package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/desertthunder/spindle/internal/shared"
	"golang.org/x/oauth2"
)

const (
	spotifyAuthURL  = "https://accounts.spotify.com/authorize"
	spotifyTokenURL = "https://accounts.spotify.com/api/token"
	spotifyBaseURL  = "https://api.spotify.com/v1"

	// Upstream calls are bounded; a hung request must not pin a handler.
	requestTimeout = 10 * time.Second
)

// Scopes requested during authorization. The access token is limited to
// these grants.
var spotifyScopes = []string{
	"user-read-private",
	"user-read-email",
	"user-library-read",
	"user-top-read",
	"playlist-read-private",
	"playlist-modify-public",
	"playlist-modify-private",
}

type followers struct {
	Total int `json:"total"`
}

// SpotifyUser represents a Spotify user profile.
type SpotifyUser struct {
	ID          string         `json:"id"`
	DisplayName string         `json:"display_name"`
	Email       string         `json:"email"`
	Country     string         `json:"country"`
	Product     string         `json:"product"` // premium, free, etc.
	Followers   followers      `json:"followers"`
	Images      []SpotifyImage `json:"images"`
}

// SpotifyImage represents an image resource.
type SpotifyImage struct {
	URL    string `json:"url"`
	Height int    `json:"height"`
	Width  int    `json:"width"`
}

// Owner identifies the user owning a playlist.
type Owner struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

type playlistTracksRef struct {
	Total int `json:"total"`
}

// SpotifyPlaylist represents a Spotify playlist.
type SpotifyPlaylist struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Owner       Owner             `json:"owner"`
	Public      bool              `json:"public"`
	Tracks      playlistTracksRef `json:"tracks"`
	Images      []SpotifyImage    `json:"images"`
	URI         string            `json:"uri"`
}

// SpotifyPaginatedPlaylists represents a paginated response of playlists.
type SpotifyPaginatedPlaylists struct {
	Items    []SpotifyPlaylist `json:"items"`
	Total    int               `json:"total"`
	Limit    int               `json:"limit"`
	Offset   int               `json:"offset"`
	Next     *string           `json:"next"`
	Previous *string           `json:"previous"`
}

// SpotifyService implements the Service interface for Spotify API interactions.
// Uses [oauth2] for the authorization-code grant; the token endpoint call is a
// form-encoded POST authenticated with HTTP Basic client credentials, which
// [oauth2.Config.Exchange] performs per RFC 6749.
type SpotifyService struct {
	config     *oauth2.Config
	httpClient *http.Client
	baseURL    string
}

// NewSpotifyService creates a new Spotify service with the given application
// identity.
func NewSpotifyService(creds shared.SpotifyConfig) (*SpotifyService, error) {
	if creds.ClientID == "" {
		return nil, fmt.Errorf("%w: client_id", shared.ErrMissingCredentials)
	}
	if creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: client_secret", shared.ErrMissingCredentials)
	}
	if creds.RedirectURI == "" {
		return nil, fmt.Errorf("%w: redirect_uri", shared.ErrMissingCredentials)
	}

	config := &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
		Scopes:       spotifyScopes,
		Endpoint: oauth2.Endpoint{
			AuthURL: spotifyAuthURL,
			// Spotify authenticates the client with Basic auth on the token
			// endpoint; pinning the style stops oauth2 from probing.
			AuthStyle: oauth2.AuthStyleInHeader,
			TokenURL:  spotifyTokenURL,
		},
	}

	return &SpotifyService{
		config:     config,
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    spotifyBaseURL,
	}, nil
}

func (s *SpotifyService) Name() string {
	return "Spotify"
}

// AuthCodeURL returns the OAuth2 authorization URL for user login. The scope
// list is space-joined and percent-encoded by [oauth2.Config.AuthCodeURL].
func (s *SpotifyService) AuthCodeURL(state string) string {
	return s.config.AuthCodeURL(state)
}

// Exchange redeems an authorization code for an access/refresh token pair.
//
// Never retried: authorization codes are single-use, so a failure here is
// terminal for the login attempt.
func (s *SpotifyService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, fmt.Errorf("%w: empty authorization code", shared.ErrAuthExchange)
	}

	ctx = context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) {
			return nil, fmt.Errorf("%w: status %d: %s", shared.ErrAuthExchange, rErr.Response.StatusCode, rErr.Body)
		}
		return nil, fmt.Errorf("%w: %v", shared.ErrAuthExchange, err)
	}

	return token, nil
}

// doRequest performs an authenticated HTTP request to the Spotify API.
func (s *SpotifyService) doRequest(ctx context.Context, accessToken, method, endpoint string, body any, result any) error {
	if accessToken == "" {
		return shared.ErrNotAuthenticated
	}

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(resp.Body)
		return &APIError{Status: resp.StatusCode, Body: payload}
	}

	if result != nil {
		if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return nil
}

// Profile retrieves the current authenticated user's profile.
func (s *SpotifyService) Profile(ctx context.Context, accessToken string) (*Profile, error) {
	var user SpotifyUser
	if err := s.doRequest(ctx, accessToken, http.MethodGet, "/me", nil, &user); err != nil {
		return nil, err
	}

	profile := Profile{
		ID:          user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
		Country:     user.Country,
		Product:     user.Product,
		Followers:   user.Followers.Total,
	}
	if len(user.Images) > 0 {
		profile.ImageURL = user.Images[0].URL
	}

	return &profile, nil
}

// Playlists retrieves the first page of the user's playlists.
func (s *SpotifyService) Playlists(ctx context.Context, accessToken string) (*PlaylistPage, error) {
	var response SpotifyPaginatedPlaylists
	if err := s.doRequest(ctx, accessToken, http.MethodGet, "/me/playlists?limit=50", nil, &response); err != nil {
		return nil, err
	}

	page := PlaylistPage{Total: response.Total, Items: make([]Playlist, 0, len(response.Items))}
	for _, sp := range response.Items {
		page.Items = append(page.Items, newPlaylist(sp))
	}

	return &page, nil
}

// CreatePlaylist creates a playlist owned by userID.
func (s *SpotifyService) CreatePlaylist(ctx context.Context, accessToken, userID string, draft PlaylistDraft) (*Playlist, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id required for playlist creation", shared.ErrMissingArgument)
	}

	body := struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Public      bool   `json:"public"`
	}{
		Name:        draft.Name,
		Description: draft.Description,
		Public:      draft.Public,
	}

	var created SpotifyPlaylist
	endpoint := fmt.Sprintf("/users/%s/playlists", userID)
	if err := s.doRequest(ctx, accessToken, http.MethodPost, endpoint, body, &created); err != nil {
		return nil, err
	}

	playlist := newPlaylist(created)
	return &playlist, nil
}

// TopItems retrieves the user's top tracks or artists as raw JSON for
// verbatim passthrough. Kind defaults to "tracks".
func (s *SpotifyService) TopItems(ctx context.Context, accessToken, kind string) (json.RawMessage, error) {
	switch kind {
	case "":
		kind = "tracks"
	case "tracks", "artists":
	default:
		return nil, fmt.Errorf("%w: top item kind must be tracks or artists, got %q", shared.ErrInvalidInput, kind)
	}

	var raw json.RawMessage
	endpoint := fmt.Sprintf("/me/top/%s", kind)
	if err := s.doRequest(ctx, accessToken, http.MethodGet, endpoint, nil, &raw); err != nil {
		return nil, err
	}

	return raw, nil
}

func newPlaylist(sp SpotifyPlaylist) Playlist {
	p := Playlist{
		ID:          sp.ID,
		Name:        sp.Name,
		Description: sp.Description,
		Owner:       sp.Owner.DisplayName,
		TrackCount:  sp.Tracks.Total,
		Public:      sp.Public,
	}
	if len(sp.Images) > 0 {
		p.ImageURL = sp.Images[0].URL
	}
	return p
}
