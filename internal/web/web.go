// Package web renders the HTML views for the session web app.
//
// Templates are embedded at build time and parsed once at startup. Handlers
// hand a fully populated view-model to the [Renderer]; no template reaches
// into services or session state on its own.
package web

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/desertthunder/spindle/internal/services"
)

//go:embed templates/*.html
var templatesFS embed.FS

// HomeData is the view model for the home page.
type HomeData struct {
	Content   string
	User      *services.Profile
	Playlists *services.PlaylistPage
	Notice    string
}

// Renderer holds the parsed templates for every view.
type Renderer struct {
	home     *template.Template
	form     *template.Template
	errorTpl *template.Template
}

// NewRenderer parses the embedded templates. Panics on malformed templates
// since the binary ships them.
func NewRenderer() *Renderer {
	return &Renderer{
		home:     template.Must(template.ParseFS(templatesFS, "templates/home.html", "templates/layout.html")),
		form:     template.Must(template.ParseFS(templatesFS, "templates/playlist_form.html", "templates/layout.html")),
		errorTpl: template.Must(template.ParseFS(templatesFS, "templates/error.html", "templates/layout.html")),
	}
}

// Home renders the home page.
func (r *Renderer) Home(w http.ResponseWriter, data HomeData) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := r.home.ExecuteTemplate(w, "layout.html", data); err != nil {
		return fmt.Errorf("failed to render home: %w", err)
	}
	return nil
}

// PlaylistForm renders the playlist creation form.
func (r *Renderer) PlaylistForm(w http.ResponseWriter, user *services.Profile) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	data := struct{ User *services.Profile }{User: user}
	if err := r.form.ExecuteTemplate(w, "layout.html", data); err != nil {
		return fmt.Errorf("failed to render playlist form: %w", err)
	}
	return nil
}

// Error renders a user-facing error page with the given status.
func (r *Renderer) Error(w http.ResponseWriter, status int, message string) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	data := struct {
		Status  int
		Message string
	}{Status: status, Message: message}
	if err := r.errorTpl.ExecuteTemplate(w, "layout.html", data); err != nil {
		return fmt.Errorf("failed to render error page: %w", err)
	}
	return nil
}
