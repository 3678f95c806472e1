package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/de-tools/traffic-atlas/pkg/runtime/bootstrap"
	"github.com/de-tools/traffic-atlas/pkg/server"
	"github.com/de-tools/traffic-atlas/pkg/server/middleware"
	"github.com/de-tools/traffic-atlas/pkg/services/config"
	"github.com/de-tools/traffic-atlas/pkg/services/dashboard"
	"github.com/de-tools/traffic-atlas/pkg/services/session"
	"github.com/de-tools/traffic-atlas/pkg/telemetry"
	"github.com/gorilla/securecookie"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var (
	cfgPath     string
	profileName string
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "web",
		Short: "Start the web server for Traffic Atlas",
		RunE:  runServer,
	}

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", "",
		"Path to the settings file (YAML or TOML); TRAFFIC_ATLAS_* variables override it")
	rootCmd.Flags().StringVar(&profileName, "profile", "",
		"Serve only this profile (defaults to every configured profile)")

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Error loading .env file: %v\n", err)
	}

	settings, err := config.LoadSettings(cfgPath)
	if err != nil {
		return err
	}

	logger, err := bootstrap.NewLogger(os.Stdout, settings.Log.Level)
	if err != nil {
		return err
	}
	ctx := logger.WithContext(cmd.Context())

	registry, err := config.NewRegistry(settings.Profiles.Path)
	if err != nil {
		return fmt.Errorf("failed to create profile registry: %w", err)
	}
	profiles, err := selectProfiles(cmd, registry)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := telemetry.NewMetrics(reg)

	rt, err := bootstrap.New(ctx, settings, metrics)
	if err != nil {
		return err
	}
	defer rt.Close()

	logger.Info().Msgf("Profiles at `%s` successfully loaded.", settings.Profiles.Path)
	var pages []dashboard.Builder
	seen := make(map[string]string)
	for _, profile := range profiles {
		builders, err := rt.Pages(ctx, profile)
		if err != nil {
			return err
		}
		for _, b := range builders {
			if owner, dup := seen[b.Name()]; dup {
				return fmt.Errorf("page %s is served by both %s and %s; choose one with --profile",
					b.Name(), owner, profile.Name)
			}
			seen[b.Name()] = profile.Name
			pages = append(pages, b)
		}
		logger.Info().Msgf("Name: `%s`, Type: `%s`", profile.Name, profile.Type)
	}

	if len(settings.Users) == 0 {
		logger.Warn().Msg("no users configured; nobody will be able to log in")
	}
	maxAge := time.Duration(settings.Session.MaxAge) * time.Second
	sessions := session.NewManager(settings.Users,
		session.WithMaxAge(maxAge),
		session.WithDefaultPageSize(settings.Pagination.DefaultSize),
	)

	secret := []byte(settings.Session.Secret)
	if len(secret) == 0 {
		logger.Warn().Msg("session.secret is not set; sessions will not survive a restart")
		secret = securecookie.GenerateRandomKey(32)
	}

	webAPI := server.NewWebAPI(logger, server.Config{
		Addr: net.JoinHostPort(settings.Server.Host, settings.Server.Port),
		Dependencies: server.Dependencies{
			Sessions: sessions,
			Cookies:  middleware.NewCookieStore(secret, settings.Session.MaxAge, false),
			Pages:    pages,
			Metrics:  metrics,
		},
	})

	return webAPI.Start()
}

func selectProfiles(cmd *cobra.Command, registry config.Registry) ([]domain.ConfigProfile, error) {
	if profileName != "" {
		p, err := registry.GetProfile(cmd.Context(), profileName)
		if err != nil {
			return nil, err
		}
		return []domain.ConfigProfile{p}, nil
	}

	profiles, err := registry.GetProfiles(cmd.Context())
	if err != nil {
		return nil, err
	}
	if len(profiles) == 0 {
		return nil, errors.New("no profiles configured")
	}
	return profiles, nil
}
