package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Server.Port != 3000 {
			t.Errorf("expected default port 3000, got %d", config.Server.Port)
		}
		if config.Session.CookieName != "spindle_session" {
			t.Errorf("expected default cookie name, got %s", config.Session.CookieName)
		}
		if config.Spotify.RedirectURI == "" {
			t.Error("expected a default redirect URI")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Run("File Overrides Defaults", func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "config.toml")
			contents := `
[spotify]
client_id = "file_id"
client_secret = "file_secret"
redirect_uri = "http://localhost:9000/callback"

[server]
port = 9000
`
			if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if config.Spotify.ClientID != "file_id" {
				t.Errorf("expected client id from file, got %s", config.Spotify.ClientID)
			}
			if config.Server.Port != 9000 {
				t.Errorf("expected port from file, got %d", config.Server.Port)
			}
		})

		t.Run("Environment Overrides File", func(t *testing.T) {
			t.Setenv("SPOTIFY_CLIENT_ID", "env_id")
			t.Setenv("SPOTIFY_CLIENT_SECRET", "env_secret")
			t.Setenv("SESSION_SECRET", "env_session_secret")
			t.Setenv("PORT", "8123")

			config, err := LoadConfig("")
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			if config.Spotify.ClientID != "env_id" {
				t.Errorf("expected env client id, got %s", config.Spotify.ClientID)
			}
			if config.Session.Secret != "env_session_secret" {
				t.Errorf("expected env session secret, got %s", config.Session.Secret)
			}
			if config.Server.Port != 8123 {
				t.Errorf("expected env port, got %d", config.Server.Port)
			}
		})

		t.Run("Missing File Falls Back To Defaults", func(t *testing.T) {
			config, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
			if err != nil {
				t.Fatalf("expected no error for missing file, got %v", err)
			}
			if config.Server.Port != 3000 {
				t.Errorf("expected default port, got %d", config.Server.Port)
			}
		})

		t.Run("Malformed File", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte("not toml {{{"), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			if _, err := LoadConfig(path); err == nil {
				t.Error("expected error for malformed config")
			}
		})
	})

	t.Run("Validate", func(t *testing.T) {
		valid := &Config{
			Spotify: SpotifyConfig{
				ClientID:     "id",
				ClientSecret: "secret",
				RedirectURI:  "http://localhost:3000/callback",
			},
			Session: SessionConfig{Secret: "session_secret"},
		}

		if err := valid.Validate(); err != nil {
			t.Errorf("expected valid config, got %v", err)
		}

		t.Run("Missing Values", func(t *testing.T) {
			for name, mutate := range map[string]func(c *Config){
				"client id":      func(c *Config) { c.Spotify.ClientID = "" },
				"client secret":  func(c *Config) { c.Spotify.ClientSecret = "" },
				"redirect uri":   func(c *Config) { c.Spotify.RedirectURI = "" },
				"session secret": func(c *Config) { c.Session.Secret = "" },
			} {
				config := *valid
				mutate(&config)

				err := config.Validate()
				if err == nil {
					t.Errorf("expected error for missing %s", name)
					continue
				}
				if !errors.Is(err, ErrMissingConfig) {
					t.Errorf("expected ErrMissingConfig for %s, got %v", name, err)
				}
			}
		})
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(path); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}

		if _, err := os.Stat(path); err != nil {
			t.Fatalf("expected config file to exist: %v", err)
		}

		if err := CreateConfigFile(path); err == nil {
			t.Error("expected error when file already exists")
		}
	})
}

func TestServerConfigAddr(t *testing.T) {
	cfg := ServerConfig{Host: "localhost", Port: 3000}
	if cfg.Addr() != "localhost:3000" {
		t.Errorf("unexpected addr %s", cfg.Addr())
	}
}
