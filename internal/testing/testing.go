// package testing contains shared testing utilities
package testing

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/desertthunder/spindle/internal/services"
	"golang.org/x/oauth2"
)

// MockService is a configurable test double for [services.Service]. Zero
// values behave like a healthy upstream with empty data; set the *Err fields
// to simulate failures and inspect the call counters afterwards.
type MockService struct {
	AuthURL string

	Token       *oauth2.Token
	ExchangeErr error

	ProfileResult *services.Profile
	ProfileErr    error

	PlaylistsResult *services.PlaylistPage
	PlaylistsErr    error

	CreateResult *services.Playlist
	CreateErr    error

	TopItemsResult json.RawMessage
	TopItemsErr    error

	ExchangeCalls  int
	ProfileCalls   int
	PlaylistsCalls int
	CreateCalls    int
	TopItemsCalls  int

	LastCode    string
	LastToken   string
	LastUserID  string
	LastDraft   services.PlaylistDraft
	LastTopKind string
}

func (m *MockService) AuthCodeURL(state string) string {
	if m.AuthURL != "" {
		return m.AuthURL + "&state=" + state
	}
	return "https://accounts.example.com/authorize?state=" + state
}

func (m *MockService) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	m.ExchangeCalls++
	m.LastCode = code
	if m.ExchangeErr != nil {
		return nil, m.ExchangeErr
	}
	if m.Token != nil {
		return m.Token, nil
	}
	return &oauth2.Token{AccessToken: "mock_access", RefreshToken: "mock_refresh"}, nil
}

func (m *MockService) Profile(ctx context.Context, accessToken string) (*services.Profile, error) {
	m.ProfileCalls++
	m.LastToken = accessToken
	if m.ProfileErr != nil {
		return nil, m.ProfileErr
	}
	if m.ProfileResult != nil {
		return m.ProfileResult, nil
	}
	return &services.Profile{ID: "mock_user", DisplayName: "Mock User"}, nil
}

func (m *MockService) Playlists(ctx context.Context, accessToken string) (*services.PlaylistPage, error) {
	m.PlaylistsCalls++
	m.LastToken = accessToken
	if m.PlaylistsErr != nil {
		return nil, m.PlaylistsErr
	}
	if m.PlaylistsResult != nil {
		return m.PlaylistsResult, nil
	}
	return &services.PlaylistPage{}, nil
}

func (m *MockService) CreatePlaylist(ctx context.Context, accessToken, userID string, draft services.PlaylistDraft) (*services.Playlist, error) {
	m.CreateCalls++
	m.LastToken = accessToken
	m.LastUserID = userID
	m.LastDraft = draft
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	if m.CreateResult != nil {
		return m.CreateResult, nil
	}
	return &services.Playlist{ID: "mock_playlist", Name: draft.Name, Public: draft.Public}, nil
}

func (m *MockService) TopItems(ctx context.Context, accessToken, kind string) (json.RawMessage, error) {
	m.TopItemsCalls++
	m.LastToken = accessToken
	m.LastTopKind = kind
	if m.TopItemsErr != nil {
		return nil, m.TopItemsErr
	}
	if m.TopItemsResult != nil {
		return m.TopItemsResult, nil
	}
	return json.RawMessage(`{"items":[]}`), nil
}

func (m *MockService) Name() string { return "mock" }

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}
