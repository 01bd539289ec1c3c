package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/desertthunder/spindle/internal/server"
	"github.com/desertthunder/spindle/internal/services"
	"github.com/desertthunder/spindle/internal/sessions"
	"github.com/desertthunder/spindle/internal/web"
	"github.com/urfave/cli/v3"
)

// serveCommand starts the web application.
func serveCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Start the web application",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "config.toml",
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Override the listen port",
			},
		},
		Action: r.Serve,
	}
}

// Serve validates configuration, builds the application and runs the HTTP
// server until interrupted. Missing credentials abort before the listener
// opens.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	if port := cmd.Int("port"); port != 0 {
		config.Server.Port = port
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("refusing to start: %w", err)
	}

	spotify := r.spotify
	if spotify == nil {
		spotify, err = services.NewSpotifyService(config.Spotify)
		if err != nil {
			return fmt.Errorf("failed to create Spotify service: %w", err)
		}
	}

	store := sessions.NewStore([]byte(config.Session.Secret), config.Session.CookieName, config.Session.MaxAge)
	app := server.NewApp(spotify, store, web.NewRenderer(), r.logger)

	router := server.NewBasicRouter()
	router.Use(server.Recoverer(r.logger), server.RequestLogger(r.logger))
	app.Mount(router)

	httpServer := &http.Server{
		Addr:              config.Server.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		r.logger.Infof("listening at http://%v", config.Server.Addr())
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrors <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		r.logger.Infof("received %v, shutting down", sig)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	return r.writePlain("✓ Server stopped\n")
}
