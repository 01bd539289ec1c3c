package services

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/desertthunder/spindle/internal/shared"
	tu "github.com/desertthunder/spindle/internal/testing/httpmock"
)

func testCreds() shared.SpotifyConfig {
	return shared.SpotifyConfig{
		ClientID:     "test_client_id",
		ClientSecret: "test_client_secret",
		RedirectURI:  "http://localhost:3000/callback",
	}
}

func TestSpotifyService(t *testing.T) {
	t.Run("NewSpotifyService", func(t *testing.T) {
		t.Run("With Valid Credentials", func(t *testing.T) {
			srv, err := NewSpotifyService(testCreds())
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if srv == nil {
				t.Fatal("expected service to be created")
			}

			if srv.Name() != "Spotify" {
				t.Errorf("expected service name 'Spotify', got %s", srv.Name())
			}
		})

		t.Run("Missing Credentials", func(t *testing.T) {
			for name, creds := range map[string]shared.SpotifyConfig{
				"client id":     {ClientSecret: "s", RedirectURI: "r"},
				"client secret": {ClientID: "i", RedirectURI: "r"},
				"redirect uri":  {ClientID: "i", ClientSecret: "s"},
			} {
				if _, err := NewSpotifyService(creds); !errors.Is(err, shared.ErrMissingCredentials) {
					t.Errorf("expected ErrMissingCredentials for missing %s, got %v", name, err)
				}
			}
		})
	})

	t.Run("AuthCodeURL", func(t *testing.T) {
		srv, err := NewSpotifyService(testCreds())
		if err != nil {
			t.Fatalf("failed to create service: %v", err)
		}

		authURL := srv.AuthCodeURL("test_state")
		parsed, err := url.Parse(authURL)
		if err != nil {
			t.Fatalf("failed to parse auth URL: %v", err)
		}

		if parsed.Host != "accounts.spotify.com" {
			t.Errorf("expected Spotify accounts host, got %s", parsed.Host)
		}

		q := parsed.Query()
		if q.Get("client_id") != "test_client_id" {
			t.Errorf("expected client_id in auth URL, got %s", q.Get("client_id"))
		}
		if q.Get("redirect_uri") != "http://localhost:3000/callback" {
			t.Errorf("expected redirect_uri in auth URL, got %s", q.Get("redirect_uri"))
		}
		if q.Get("response_type") != "code" {
			t.Errorf("expected response_type=code, got %s", q.Get("response_type"))
		}
		if q.Get("state") != "test_state" {
			t.Errorf("expected state in auth URL, got %s", q.Get("state"))
		}

		scope := q.Get("scope")
		if scope != strings.Join(spotifyScopes, " ") {
			t.Errorf("expected full scope set, got %q", scope)
		}
		if !strings.Contains(authURL, "user-top-read") {
			t.Error("expected raw URL to carry requested scopes")
		}
		if strings.Contains(authURL, "user-top-read user") {
			t.Error("expected scope spaces to be encoded in the raw URL")
		}
	})

	t.Run("Exchange", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			var calls int
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++

				user, pass, ok := r.BasicAuth()
				if !ok || user != "test_client_id" || pass != "test_client_secret" {
					t.Errorf("expected Basic client credentials, got %q/%q", user, pass)
				}
				if err := r.ParseForm(); err != nil {
					t.Fatalf("failed to parse form: %v", err)
				}
				if r.PostFormValue("grant_type") != "authorization_code" {
					t.Errorf("expected authorization_code grant, got %s", r.PostFormValue("grant_type"))
				}
				if r.PostFormValue("code") != "fresh_code" {
					t.Errorf("expected code in form, got %s", r.PostFormValue("code"))
				}
				if r.PostFormValue("redirect_uri") != "http://localhost:3000/callback" {
					t.Errorf("expected redirect_uri in form, got %s", r.PostFormValue("redirect_uri"))
				}

				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(`{"access_token":"new_access","refresh_token":"new_refresh","token_type":"Bearer","expires_in":3600}`))
			}))
			defer ts.Close()

			srv, err := NewSpotifyService(testCreds())
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}
			srv.config.Endpoint.TokenURL = ts.URL

			token, err := srv.Exchange(context.Background(), "fresh_code")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if token.AccessToken != "new_access" {
				t.Errorf("expected access token, got %s", token.AccessToken)
			}
			if token.RefreshToken != "new_refresh" {
				t.Errorf("expected refresh token, got %s", token.RefreshToken)
			}
			if calls != 1 {
				t.Errorf("expected exactly one token request, got %d", calls)
			}
		})

		t.Run("Upstream Rejection", func(t *testing.T) {
			var calls int
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				w.Write([]byte(`{"error":"invalid_grant"}`))
			}))
			defer ts.Close()

			srv, err := NewSpotifyService(testCreds())
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}
			srv.config.Endpoint.TokenURL = ts.URL

			_, err = srv.Exchange(context.Background(), "stale_code")
			if !errors.Is(err, shared.ErrAuthExchange) {
				t.Errorf("expected ErrAuthExchange, got %v", err)
			}
			if calls != 1 {
				t.Errorf("expected no retries, got %d calls", calls)
			}
		})

		t.Run("Empty Code", func(t *testing.T) {
			srv, err := NewSpotifyService(testCreds())
			if err != nil {
				t.Fatalf("failed to create service: %v", err)
			}

			if _, err := srv.Exchange(context.Background(), ""); !errors.Is(err, shared.ErrAuthExchange) {
				t.Errorf("expected ErrAuthExchange for empty code, got %v", err)
			}
		})
	})

	t.Run("Profile", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me" {
				t.Errorf("expected /me, got %s", r.URL.Path)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer session_token" {
				t.Errorf("expected bearer header, got %q", got)
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"id":"spotify_user","display_name":"Road Tripper","email":"rt@example.com","followers":{"total":3},"images":[{"url":"https://img.example/1"}]}`))
		}))
		defer ts.Close()

		srv := newTestService(t, ts.URL)

		profile, err := srv.Profile(context.Background(), "session_token")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if profile.ID != "spotify_user" {
			t.Errorf("expected mapped id, got %s", profile.ID)
		}
		if profile.DisplayName != "Road Tripper" {
			t.Errorf("expected mapped display name, got %s", profile.DisplayName)
		}
		if profile.Followers != 3 {
			t.Errorf("expected mapped followers, got %d", profile.Followers)
		}
		if profile.ImageURL != "https://img.example/1" {
			t.Errorf("expected first image URL, got %s", profile.ImageURL)
		}
	})

	t.Run("Playlists", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/me/playlists" {
				t.Errorf("expected /me/playlists, got %s", r.URL.Path)
			}

			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"total":2,"items":[
				{"id":"p1","name":"Focus","public":true,"owner":{"display_name":"Road Tripper"},"tracks":{"total":12}},
				{"id":"p2","name":"Gym","public":false,"tracks":{"total":40}}
			]}`))
		}))
		defer ts.Close()

		srv := newTestService(t, ts.URL)

		page, err := srv.Playlists(context.Background(), "session_token")
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if page.Total != 2 || len(page.Items) != 2 {
			t.Fatalf("expected two playlists, got total=%d len=%d", page.Total, len(page.Items))
		}
		if page.Items[0].Name != "Focus" || page.Items[0].TrackCount != 12 || !page.Items[0].Public {
			t.Errorf("unexpected first playlist mapping: %+v", page.Items[0])
		}
		if page.Items[0].Owner != "Road Tripper" {
			t.Errorf("expected owner display name, got %s", page.Items[0].Owner)
		}
	})

	t.Run("CreatePlaylist", func(t *testing.T) {
		t.Run("Success", func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodPost {
					t.Errorf("expected POST, got %s", r.Method)
				}
				if r.URL.Path != "/users/spotify_user/playlists" {
					t.Errorf("unexpected path %s", r.URL.Path)
				}

				var body map[string]any
				if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
					t.Fatalf("failed to decode body: %v", err)
				}
				if body["name"] != "Road Trip" {
					t.Errorf("expected name in body, got %v", body["name"])
				}
				if body["public"] != true {
					t.Errorf("expected public true, got %v", body["public"])
				}
				if body["description"] != "" {
					t.Errorf("expected empty description, got %v", body["description"])
				}

				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusCreated)
				w.Write([]byte(`{"id":"p_new","name":"Road Trip","public":true,"tracks":{"total":0}}`))
			}))
			defer ts.Close()

			srv := newTestService(t, ts.URL)

			draft := PlaylistDraft{Name: "Road Trip", Public: true}
			playlist, err := srv.CreatePlaylist(context.Background(), "session_token", "spotify_user", draft)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if playlist.ID != "p_new" || playlist.Name != "Road Trip" {
				t.Errorf("unexpected playlist: %+v", playlist)
			}
		})

		t.Run("Missing User ID", func(t *testing.T) {
			srv := newTestService(t, "http://unused.invalid")

			_, err := srv.CreatePlaylist(context.Background(), "session_token", "", PlaylistDraft{Name: "x"})
			if !errors.Is(err, shared.ErrMissingArgument) {
				t.Errorf("expected ErrMissingArgument, got %v", err)
			}
		})

		t.Run("Upstream Error Carries Payload", func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusForbidden)
				w.Write([]byte(`{"error":{"status":403,"message":"Insufficient client scope"}}`))
			}))
			defer ts.Close()

			srv := newTestService(t, ts.URL)

			_, err := srv.CreatePlaylist(context.Background(), "session_token", "spotify_user", PlaylistDraft{Name: "x"})
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Status != http.StatusForbidden {
				t.Errorf("expected status 403, got %d", apiErr.Status)
			}
			if !strings.Contains(string(apiErr.Body), "Insufficient client scope") {
				t.Errorf("expected upstream payload, got %s", apiErr.Body)
			}
			if !errors.Is(err, shared.ErrAPIRequest) {
				t.Error("expected APIError to unwrap to ErrAPIRequest")
			}
		})
	})

	t.Run("TopItems", func(t *testing.T) {
		t.Run("Defaults To Tracks", func(t *testing.T) {
			payload := `{"items":[{"name":"Song"}],"total":1}`
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/me/top/tracks" {
					t.Errorf("expected /me/top/tracks, got %s", r.URL.Path)
				}
				w.Header().Set("Content-Type", "application/json")
				w.Write([]byte(payload))
			}))
			defer ts.Close()

			srv := newTestService(t, ts.URL)

			raw, err := srv.TopItems(context.Background(), "session_token", "")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if string(raw) != payload {
				t.Errorf("expected verbatim payload, got %s", raw)
			}
		})

		t.Run("Artists Kind", func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/me/top/artists" {
					t.Errorf("expected /me/top/artists, got %s", r.URL.Path)
				}
				w.Write([]byte(`{}`))
			}))
			defer ts.Close()

			srv := newTestService(t, ts.URL)
			if _, err := srv.TopItems(context.Background(), "session_token", "artists"); err != nil {
				t.Errorf("expected no error, got %v", err)
			}
		})

		t.Run("Invalid Kind", func(t *testing.T) {
			srv := newTestService(t, "http://unused.invalid")

			_, err := srv.TopItems(context.Background(), "session_token", "albums")
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	})

	t.Run("Missing Token", func(t *testing.T) {
		srv := newTestService(t, "http://unused.invalid")

		if _, err := srv.Profile(context.Background(), ""); !errors.Is(err, shared.ErrNotAuthenticated) {
			t.Errorf("expected ErrNotAuthenticated, got %v", err)
		}
	})

	t.Run("Network Failure", func(t *testing.T) {
		srv := newTestService(t, "http://unused.invalid")
		srv.httpClient = &http.Client{Transport: tu.NewMockRoundTripper(nil, errors.New("connection refused"))}

		_, err := srv.Playlists(context.Background(), "session_token")
		if !errors.Is(err, shared.ErrAPIRequest) {
			t.Errorf("expected ErrAPIRequest, got %v", err)
		}
	})
}

func newTestService(t *testing.T, baseURL string) *SpotifyService {
	t.Helper()

	srv, err := NewSpotifyService(testCreds())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	srv.baseURL = baseURL
	return srv
}
