package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/spindle/internal/shared"
	"github.com/urfave/cli/v3"
)

// configCommand handles configuration scaffolding and validation.
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage configuration",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write an example config.toml to the current directory",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.ConfigInit,
			},
			{
				Name:  "check",
				Usage: "Verify that credentials resolve from the config file and environment",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.ConfigCheck,
			},
		},
	}
}

// ConfigInit scaffolds a config file from the embedded example.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("config")
	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	return r.writePlain("✓ Config written to %s\n", path)
}

// ConfigCheck loads the effective configuration and validates it.
func (r *Runner) ConfigCheck(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}

	if err := config.Validate(); err != nil {
		return fmt.Errorf("configuration incomplete: %w", err)
	}

	r.writePlain("✓ Configuration OK\n")
	return r.writePlain("  redirect URI: %s\n  server: %s\n", config.Spotify.RedirectURI, config.Server.Addr())
}
