package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/de-tools/traffic-atlas/pkg/runtime/bootstrap"
	"github.com/de-tools/traffic-atlas/pkg/runtime/terminal"
	"github.com/de-tools/traffic-atlas/pkg/runtime/terminal/commands"
	"github.com/de-tools/traffic-atlas/pkg/services/config"
	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	_ = godotenv.Load()

	settings, err := config.LoadSettings(terminal.ConfigPath(os.Args[1:]))
	if err != nil {
		return err
	}

	// Logs go to stderr so report output can be piped.
	logger, err := bootstrap.NewLogger(os.Stderr, settings.Log.Level)
	if err != nil {
		return err
	}
	ctx := logger.WithContext(context.Background())

	registry, err := config.NewRegistry(settings.Profiles.Path)
	if errors.Is(err, fs.ErrNotExist) {
		logger.Debug().Str("path", settings.Profiles.Path).Msg("no profiles file")
		registry, err = config.NewRegistryFromBytes(nil)
	}
	if err != nil {
		return err
	}

	rt, err := bootstrap.New(ctx, settings, nil)
	if err != nil {
		return err
	}
	defer rt.Close()

	cli := terminal.NewCLI(terminal.Options{
		Profiles: registry,
		Pages:    rt,
		PageSize: settings.Pagination.DefaultSize,
		Exporter: func(ctx context.Context) (commands.Exporter, error) {
			exporter, err := rt.Exporter(ctx)
			if err != nil {
				return nil, err
			}
			return exporter, nil
		},
		Output: os.Stdout,
	})

	return cli.Execute(ctx)
}
