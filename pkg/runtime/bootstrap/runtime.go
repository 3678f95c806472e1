package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/de-tools/traffic-atlas/pkg/services/config"
	"github.com/de-tools/traffic-atlas/pkg/services/dashboard"
	"github.com/de-tools/traffic-atlas/pkg/services/report"
	"github.com/de-tools/traffic-atlas/pkg/sources/costexplorer"
	"github.com/de-tools/traffic-atlas/pkg/sources/ga4"
	"github.com/de-tools/traffic-atlas/pkg/sources/searchconsole"
	"github.com/de-tools/traffic-atlas/pkg/store/s3export"
	"github.com/de-tools/traffic-atlas/pkg/store/snapshot"
	"github.com/de-tools/traffic-atlas/pkg/store/sqlite"
	"github.com/de-tools/traffic-atlas/pkg/telemetry"
	"github.com/rs/zerolog"
)

// NewLogger builds the root logger at the configured level.
func NewLogger(w io.Writer, level string) (zerolog.Logger, error) {
	if w == nil {
		w = os.Stdout
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	if lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), nil
}

// Runtime turns configured profiles into dashboard pages backed by live,
// recording or replaying sources.
type Runtime struct {
	settings *config.Settings
	mode     snapshot.Mode
	store    snapshot.Store
	metrics  *telemetry.Metrics
	db       *sql.DB
}

// New opens the snapshot database unless snapshots are off. metrics may be
// nil.
func New(ctx context.Context, settings *config.Settings, metrics *telemetry.Metrics) (*Runtime, error) {
	mode, err := snapshot.ParseMode(settings.Snapshot.Mode)
	if err != nil {
		return nil, err
	}

	rt := &Runtime{settings: settings, mode: mode, metrics: metrics}
	if mode == snapshot.ModeOff {
		return rt, nil
	}

	db, err := sqlite.NewDB(ctx, sqlite.Settings{DbPath: settings.Snapshot.Path})
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot database: %w", err)
	}
	st, err := snapshot.NewStore(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create snapshot store: %w", err)
	}
	rt.db = db
	rt.store = st

	zerolog.Ctx(ctx).Info().
		Str("mode", string(mode)).
		Str("path", settings.Snapshot.Path).
		Msg("snapshot store ready")
	return rt, nil
}

func (rt *Runtime) Close() error {
	if rt.db == nil {
		return nil
	}
	return rt.db.Close()
}

func (rt *Runtime) Mode() snapshot.Mode {
	return rt.mode
}

// Pages returns the dashboard pages profile can serve.
func (rt *Runtime) Pages(ctx context.Context, profile domain.ConfigProfile) ([]dashboard.Builder, error) {
	switch profile.Type {
	case domain.ProfileTypeGA4:
		analytics, err := rt.source(ctx, profile, ga4.SourceName, func() (report.Source, error) {
			return ga4.NewFromCredentialsFile(ctx, profile.PropertyID, profile.Credentials)
		})
		if err != nil {
			return nil, err
		}

		var search report.Source
		if profile.HasSearchConsole() {
			search, err = rt.source(ctx, profile, searchconsole.SourceName, func() (report.Source, error) {
				return searchconsole.NewFromCredentialsFile(ctx, profile.SiteURL, profile.SearchConsoleCredentials)
			})
			if err != nil {
				return nil, err
			}
		}
		return []dashboard.Builder{dashboard.NewSales(analytics), dashboard.NewSEO(analytics, search)}, nil

	case domain.ProfileTypeCostExplorer:
		spend, err := rt.source(ctx, profile, costexplorer.SourceName, func() (report.Source, error) {
			return costexplorer.NewFromProfile(ctx, profile.AWSProfile, profile.Region)
		})
		if err != nil {
			return nil, err
		}
		return []dashboard.Builder{dashboard.NewSpend(spend)}, nil

	default:
		return nil, fmt.Errorf("profile %s: unsupported type %q", profile.Name, profile.Type)
	}
}

func (rt *Runtime) source(
	ctx context.Context,
	profile domain.ConfigProfile,
	name string,
	live func() (report.Source, error),
) (report.Source, error) {
	var src report.Source
	if rt.mode == snapshot.ModeReplay {
		src = snapshot.NewReplay(rt.store, profile.Name, name)
	} else {
		s, err := live()
		if err != nil {
			return nil, fmt.Errorf("profile %s: failed to create %s source: %w", profile.Name, name, err)
		}
		src = snapshot.Wrap(rt.mode, s, rt.store, profile.Name)
	}

	if rt.metrics != nil {
		src = rt.metrics.Instrument(src)
	}
	zerolog.Ctx(ctx).Debug().
		Str("profile", profile.Name).
		Str("source", name).
		Str("mode", string(rt.mode)).
		Msg("source ready")
	return src, nil
}

// Exporter connects to the configured export bucket.
func (rt *Runtime) Exporter(ctx context.Context) (*s3export.Exporter, error) {
	export := rt.settings.Export
	if export.Bucket == "" {
		return nil, errors.New("export.bucket is not configured")
	}
	cfg, err := costexplorer.LoadConfig(ctx, "", export.Region)
	if err != nil {
		return nil, err
	}
	return s3export.NewFromConfig(cfg, export.Bucket, export.Prefix)
}
