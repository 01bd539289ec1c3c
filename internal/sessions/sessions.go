// package sessions implements the server-side session store backing the web
// handlers
package sessions

import (
	"net/http"
	"sync"
	"time"

	"github.com/desertthunder/spindle/internal/services"
	"github.com/desertthunder/spindle/internal/shared"
	"github.com/gorilla/securecookie"
	gorilla "github.com/gorilla/sessions"
)

// Data is the typed per-browser session record. A session is authenticated
// exactly when it holds an access token; the profile and playlist snapshots
// are caches of upstream state at last fetch.
type Data struct {
	AccessToken  string
	RefreshToken string
	User         *services.Profile
	Playlists    *services.PlaylistPage
	OAuthState   string
}

// Authenticated reports whether the session completed the authorization-code
// flow.
func (d *Data) Authenticated() bool {
	return d != nil && d.AccessToken != ""
}

type record struct {
	data    Data
	expires time.Time
}

// Store keeps session records in memory, keyed by an opaque ID that travels
// in a signed cookie. Records are created empty on first access and expire
// with the cookie.
//
// Concurrency contract: a handler reads its session once near the start of a
// request and writes once near the end. Concurrent requests for the same
// session race with last-write-wins semantics; the store only guarantees
// that individual loads and saves are atomic.
type Store struct {
	name   string
	codec  *securecookie.SecureCookie
	opts   *gorilla.Options
	maxAge time.Duration

	mu      sync.RWMutex
	records map[string]*record
}

// NewStore creates a session store signing cookies with secret. maxAge is in
// seconds, matching [gorilla.Options].
func NewStore(secret []byte, name string, maxAge int) *Store {
	codec := securecookie.New(secret, nil)
	codec.MaxAge(maxAge)

	return &Store{
		name:  name,
		codec: codec,
		opts: &gorilla.Options{
			Path:     "/",
			MaxAge:   maxAge,
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		},
		maxAge:  time.Duration(maxAge) * time.Second,
		records: make(map[string]*record),
	}
}

// Load returns the session ID and record for the request's cookie.
//
// A missing, tampered or expired cookie yields a fresh empty session; the
// new ID only reaches the browser once the handler calls [Store.Save].
func (s *Store) Load(r *http.Request) (string, *Data) {
	cookie, err := r.Cookie(s.name)
	if err != nil {
		return s.fresh()
	}

	var id string
	if err := s.codec.Decode(s.name, cookie.Value, &id); err != nil {
		return s.fresh()
	}

	s.mu.RLock()
	rec, ok := s.records[id]
	s.mu.RUnlock()

	if !ok || time.Now().After(rec.expires) {
		return s.fresh()
	}

	data := rec.data
	return id, &data
}

func (s *Store) fresh() (string, *Data) {
	return shared.GenerateID(), &Data{}
}

// Save persists data under id and writes the signed session cookie.
func (s *Store) Save(w http.ResponseWriter, id string, data *Data) error {
	encoded, err := s.codec.Encode(s.name, id)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.records[id] = &record{data: *data, expires: time.Now().Add(s.maxAge)}
	s.mu.Unlock()

	http.SetCookie(w, gorilla.NewCookie(s.name, encoded, s.opts))
	return nil
}

// Clear drops every stored session. Cookies held by browsers stop resolving
// to a record and behave like first visits.
func (s *Store) Clear() {
	s.mu.Lock()
	s.records = make(map[string]*record)
	s.mu.Unlock()
}

// Len returns the number of live session records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
