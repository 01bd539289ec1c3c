package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/spindle/internal/services"
	"github.com/desertthunder/spindle/internal/sessions"
	"github.com/desertthunder/spindle/internal/shared"
	"github.com/desertthunder/spindle/internal/web"
)

// App wires the OAuth client, session store and renderer into the route
// handlers. One instance serves every session.
type App struct {
	spotify services.Service
	store   *sessions.Store
	views   *web.Renderer
	logger  *log.Logger
}

// NewApp creates the handler layer with its dependencies.
func NewApp(spotify services.Service, store *sessions.Store, views *web.Renderer, logger *log.Logger) *App {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &App{spotify: spotify, store: store, views: views, logger: logger}
}

// Mount registers every route on the router.
func (a *App) Mount(r Router) {
	r.Handle(http.MethodGet, "/{$}", http.HandlerFunc(a.Home))
	r.Handle(http.MethodGet, "/login", http.HandlerFunc(a.Login))
	r.Handle(http.MethodGet, "/callback", http.HandlerFunc(a.Callback))
	r.Handle(http.MethodGet, "/top-tracks", http.HandlerFunc(a.TopTracks))
	r.Handle(http.MethodGet, "/add-playlist", http.HandlerFunc(a.AddPlaylist))
	r.Handle(http.MethodPost, "/create-playlist", http.HandlerFunc(a.CreatePlaylist))
}

// Home renders the landing page. For authenticated sessions the playlist
// snapshot is refreshed best-effort: a failed refresh degrades to a notice
// and a nil collection, it never fails the page or touches the stored token.
func (a *App) Home(w http.ResponseWriter, r *http.Request) {
	id, sess := a.store.Load(r)

	data := web.HomeData{Content: "Welcome to Spindle."}
	if !sess.Authenticated() {
		a.render(w, data)
		return
	}

	data.User = sess.User
	data.Content = "Welcome back."

	page, err := a.spotify.Playlists(r.Context(), sess.AccessToken)
	if err != nil {
		a.logger.Warn("playlist refresh failed", "error", err)
		data.Notice = "Your playlists are unavailable right now. Try again in a moment."
		a.render(w, data)
		return
	}

	data.Playlists = page
	sess.Playlists = page
	if err := a.store.Save(w, id, sess); err != nil {
		a.logger.Error("failed to save session", "error", err)
	}

	a.render(w, data)
}

// Login starts the authorization-code flow: it stores a fresh state token in
// the session and redirects to the external authorization URL.
func (a *App) Login(w http.ResponseWriter, r *http.Request) {
	id, sess := a.store.Load(r)

	state, err := shared.GenerateState()
	if err != nil {
		a.logger.Error("failed to generate state", "error", err)
		a.renderError(w, http.StatusInternalServerError, "Could not start the login flow.")
		return
	}

	sess.OAuthState = state
	if err := a.store.Save(w, id, sess); err != nil {
		a.logger.Error("failed to save session", "error", err)
		a.renderError(w, http.StatusInternalServerError, "Could not start the login flow.")
		return
	}

	http.Redirect(w, r, a.spotify.AuthCodeURL(state), http.StatusFound)
}

// Callback completes the flow. The exchange and the profile fetch must both
// succeed before anything is written to the session; a failure leaves the
// session exactly as it was and the user retries from /login. The playlist
// snapshot is best-effort.
func (a *App) Callback(w http.ResponseWriter, r *http.Request) {
	id, sess := a.store.Load(r)
	q := r.URL.Query()

	if errParam := q.Get("error"); errParam != "" {
		a.logger.Warn("authorization declined", "error", errParam, "description", q.Get("error_description"))
		a.renderError(w, http.StatusBadRequest, "Authorization was declined.")
		return
	}

	code := q.Get("code")
	if code == "" {
		a.renderError(w, http.StatusBadRequest, "Missing authorization code.")
		return
	}

	if state := q.Get("state"); sess.OAuthState == "" || state != sess.OAuthState {
		a.logger.Warn("state mismatch on callback")
		a.renderError(w, http.StatusBadRequest, "Invalid state parameter. Start again from the login page.")
		return
	}

	token, err := a.spotify.Exchange(r.Context(), code)
	if err != nil {
		a.logger.Error("token exchange failed", "error", err)
		a.renderError(w, http.StatusInternalServerError, "Error during authentication. Please try signing in again.")
		return
	}

	profile, err := a.spotify.Profile(r.Context(), token.AccessToken)
	if err != nil {
		a.logger.Error("profile fetch failed", "error", err)
		a.renderError(w, http.StatusInternalServerError, "Error during authentication. Please try signing in again.")
		return
	}

	data := web.HomeData{Content: "Successfully authenticated with Spotify!", User: profile}

	sess.AccessToken = token.AccessToken
	sess.RefreshToken = token.RefreshToken
	sess.User = profile
	sess.OAuthState = ""

	if page, err := a.spotify.Playlists(r.Context(), token.AccessToken); err != nil {
		a.logger.Warn("playlist fetch failed after login", "error", err)
		data.Notice = "Your playlists are unavailable right now. Try again in a moment."
	} else {
		sess.Playlists = page
		data.Playlists = page
	}

	if err := a.store.Save(w, id, sess); err != nil {
		a.logger.Error("failed to save session", "error", err)
		a.renderError(w, http.StatusInternalServerError, "Error during authentication. Please try signing in again.")
		return
	}

	a.render(w, data)
}

// TopTracks proxies the external top-items endpoint, returning the upstream
// JSON verbatim. Browser route, so missing auth redirects to login.
func (a *App) TopTracks(w http.ResponseWriter, r *http.Request) {
	_, sess := a.store.Load(r)
	if !sess.Authenticated() {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	raw, err := a.spotify.TopItems(r.Context(), sess.AccessToken, r.URL.Query().Get("type"))
	if err != nil {
		if errors.Is(err, shared.ErrInvalidInput) {
			a.writeJSONError(w, http.StatusBadRequest, "type must be tracks or artists")
			return
		}
		a.logger.Error("top items fetch failed", "error", err)
		a.writeJSONError(w, http.StatusInternalServerError, "failed to fetch top items")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if _, err := w.Write(raw); err != nil {
		a.logger.Error("failed to write response", "error", err)
	}
}

// AddPlaylist renders the playlist creation form.
func (a *App) AddPlaylist(w http.ResponseWriter, r *http.Request) {
	_, sess := a.store.Load(r)
	if !sess.Authenticated() {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}

	if err := a.views.PlaylistForm(w, sess.User); err != nil {
		a.logger.Error("render failed", "error", err)
	}
}

// CreatePlaylist handles the creation form POST. This is a form submission,
// not a browser navigation, so a missing token gets an explicit 401 instead
// of a redirect. The name is validated before any outbound call; after a
// successful create the playlist snapshot is re-fetched and persisted.
func (a *App) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	id, sess := a.store.Load(r)
	if !sess.Authenticated() {
		a.writeJSONError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	if err := r.ParseForm(); err != nil {
		a.writeJSONError(w, http.StatusBadRequest, "malformed form body")
		return
	}

	draft := services.PlaylistDraft{
		Name:        strings.TrimSpace(r.PostFormValue("name")),
		Description: r.PostFormValue("description"),
		Public:      r.PostFormValue("isPublic") == "true",
	}
	if draft.Name == "" {
		a.writeJSONError(w, http.StatusBadRequest, "playlist name is required")
		return
	}

	if sess.User == nil {
		// Callback always stores a profile with the token, but the record is
		// a cache; re-fetch rather than fail.
		profile, err := a.spotify.Profile(r.Context(), sess.AccessToken)
		if err != nil {
			a.logger.Error("profile fetch failed", "error", err)
			a.writeJSONError(w, http.StatusInternalServerError, "failed to resolve user")
			return
		}
		sess.User = profile
	}

	if _, err := a.spotify.CreatePlaylist(r.Context(), sess.AccessToken, sess.User.ID, draft); err != nil {
		a.logger.Error("playlist creation failed", "error", err)
		a.writeUpstreamError(w, err)
		return
	}

	if page, err := a.spotify.Playlists(r.Context(), sess.AccessToken); err != nil {
		a.logger.Warn("playlist refresh after create failed", "error", err)
	} else {
		sess.Playlists = page
	}

	if err := a.store.Save(w, id, sess); err != nil {
		a.logger.Error("failed to save session", "error", err)
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (a *App) render(w http.ResponseWriter, data web.HomeData) {
	if err := a.views.Home(w, data); err != nil {
		a.logger.Error("render failed", "error", err)
	}
}

func (a *App) renderError(w http.ResponseWriter, status int, message string) {
	if err := a.views.Error(w, status, message); err != nil {
		a.logger.Error("render failed", "error", err)
	}
}

func (a *App) writeJSONError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		a.logger.Error("failed to write error response", "error", err)
	}
}

// writeUpstreamError maps an upstream API failure to the response contract
// for write paths: 401 when the token was rejected, 500 otherwise, with the
// upstream payload attached when there is one.
func (a *App) writeUpstreamError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	payload := map[string]any{"error": "failed to create playlist"}

	var apiErr *services.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status == http.StatusUnauthorized {
			status = http.StatusUnauthorized
			payload["error"] = "spotify rejected the access token"
		}
		if len(apiErr.Body) > 0 {
			if json.Valid(apiErr.Body) {
				payload["upstream"] = json.RawMessage(apiErr.Body)
			} else {
				payload["upstream"] = string(apiErr.Body)
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error("failed to write error response", "error", err)
	}
}
