package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/tastelens/backend/config"
	"github.com/tastelens/backend/internal/bootstrap"
	"github.com/tastelens/backend/internal/infrastructure/logger"
)

// cli carries the global flags and the lazily built application
type cli struct {
	cfgFile string
	debug   bool
	out     io.Writer
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:          "tastectl",
		Short:        "Index, classify and match an Are.na library",
		Long:         `tastectl tags channel images for visual matching, routes unorganized blocks into category channels and builds per-channel style guides.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			c.out = cmd.OutOrStdout()
		},
	}

	root.PersistentFlags().StringVar(&c.cfgFile, "config", "", "config file (default is ./config.yaml or ./config/config.yaml)")
	root.PersistentFlags().BoolVar(&c.debug, "debug", false, "enable debug logging")

	root.AddCommand(
		newIndexCmd(c),
		newClassifyCmd(c),
		newStyleGuideCmd(c),
		newMatchCmd(c),
	)
	return root
}

// needs lists the credentials a command cannot run without
type needs struct {
	arena  bool
	gemini bool
}

// setup loads configuration, checks credentials and wires the application
func (c *cli) setup(n needs) (*bootstrap.App, error) {
	cfg, err := config.LoadFile(c.cfgFile)
	if err != nil {
		return nil, err
	}
	if n.arena {
		if err := cfg.RequireArena(); err != nil {
			return nil, err
		}
	}
	if n.gemini {
		if err := cfg.RequireGemini(); err != nil {
			return nil, err
		}
	}

	log, err := bootstrap.NewLogger(cfg, c.debug)
	if err != nil {
		return nil, err
	}

	app, err := bootstrap.New(cfg, log)
	if err != nil {
		return nil, err
	}
	return app, nil
}

// run wires the application, runs fn and releases resources
func (c *cli) run(ctx context.Context, n needs, fn func(ctx context.Context, app *bootstrap.App) error) error {
	app, err := c.setup(n)
	if err != nil {
		return err
	}
	defer func() {
		_ = app.Close()
		_ = app.Log.Sync()
	}()

	if err := fn(ctx, app); err != nil {
		app.Log.Error("command failed", logger.Error(err))
		return err
	}
	return nil
}

func requireChannel(channel string) error {
	if channel == "" {
		return fmt.Errorf("--channel is required")
	}
	return nil
}
