package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration.
//
// A TOML file provides the base values and the process environment overrides
// them, so deployments can run from environment variables alone (the same
// variables the original service read from its .env file).
type Config struct {
	Spotify SpotifyConfig `toml:"spotify"`
	Session SessionConfig `toml:"session"`
	Server  ServerConfig  `toml:"server"`
}

// SpotifyConfig contains the Spotify application identity.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
}

// SessionConfig contains cookie session settings.
type SessionConfig struct {
	Secret     string `toml:"secret"`
	CookieName string `toml:"cookie_name"`
	MaxAge     int    `toml:"max_age"` // seconds
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// Addr returns the host:port the server binds to.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LoadConfig builds the effective configuration.
//
// Order: embedded defaults, then the TOML file at path (if it exists), then
// environment variables. A .env file in the working directory is loaded into
// the environment first when present.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	config := DefaultConfig()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			data, err := os.ReadFile(path)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
			if err := toml.Unmarshal(data, config); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	config.applyEnv()

	return config, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv("SPOTIFY_CLIENT_ID"); v != "" {
		c.Spotify.ClientID = v
	}
	if v := os.Getenv("SPOTIFY_CLIENT_SECRET"); v != "" {
		c.Spotify.ClientSecret = v
	}
	if v := os.Getenv("SPOTIFY_REDIRECT_URI"); v != "" {
		c.Spotify.RedirectURI = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		c.Session.Secret = v
	}
	if v := os.Getenv("HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
}

// Validate checks that every required credential is present.
//
// The server must not start without them, so callers treat any error here as
// fatal.
func (c *Config) Validate() error {
	for _, required := range []struct {
		value string
		name  string
	}{
		{c.Spotify.ClientID, "spotify client_id (SPOTIFY_CLIENT_ID)"},
		{c.Spotify.ClientSecret, "spotify client_secret (SPOTIFY_CLIENT_SECRET)"},
		{c.Spotify.RedirectURI, "spotify redirect_uri (SPOTIFY_REDIRECT_URI)"},
		{c.Session.Secret, "session secret (SESSION_SECRET)"},
	} {
		if required.value == "" {
			return fmt.Errorf("%w: %s", ErrMissingConfig, required.name)
		}
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
