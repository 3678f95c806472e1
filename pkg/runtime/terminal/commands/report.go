package commands

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/de-tools/traffic-atlas/pkg/adapters"
	"github.com/de-tools/traffic-atlas/pkg/models/api"
	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/de-tools/traffic-atlas/pkg/services/config"
	"github.com/de-tools/traffic-atlas/pkg/services/dashboard"
	"github.com/de-tools/traffic-atlas/pkg/services/report"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

const reportTimeout = 2 * time.Minute

var pageNames = []string{"sales", "seo", "spend"}

type PageFactory interface {
	Pages(ctx context.Context, profile domain.ConfigProfile) ([]dashboard.Builder, error)
}

type Reporter interface {
	Handle(report api.Report) error
}

type Exporter interface {
	Export(ctx context.Context, profile, page string, report api.Report) (string, error)
}

type ExporterFactory func(ctx context.Context) (Exporter, error)

type ReportCmd struct {
	profile  string
	periods  dashboard.PeriodParams
	table    string
	page     int
	pageSize int
	output   string
	export   bool

	profiles  config.Registry
	pages     PageFactory
	reporters map[string]Reporter
	exporter  ExporterFactory
	now       func() time.Time
}

type ReportDeps struct {
	Profiles  config.Registry
	Pages     PageFactory
	Reporters map[string]Reporter
	Exporter  ExporterFactory
	PageSize  int
	Now       func() time.Time
}

func NewReportCmd(deps ReportDeps) *cobra.Command {
	rc := &ReportCmd{
		profiles:  deps.Profiles,
		pages:     deps.Pages,
		reporters: deps.Reporters,
		exporter:  deps.Exporter,
		now:       deps.Now,
	}
	if rc.now == nil {
		rc.now = time.Now
	}
	pageSize := deps.PageSize
	if pageSize == 0 {
		pageSize = report.DefaultPageSize
	}

	cmd := &cobra.Command{
		Use:       "report [" + strings.Join(pageNames, "|") + "]",
		Short:     "Compare two periods on a dashboard page",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: pageNames,
		RunE:      rc.run,
	}

	cmd.Flags().StringVar(&rc.profile, "profile", "", "Profile to report on (defaults to the only configured one)")
	cmd.Flags().StringVar(&rc.periods.CurrentFrom, "current-from", "", "Start of the current period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&rc.periods.CurrentTo, "current-to", "", "End of the current period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&rc.periods.CompareFrom, "compare-from", "", "Start of the comparison period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&rc.periods.CompareTo, "compare-to", "", "End of the comparison period (YYYY-MM-DD)")
	cmd.Flags().StringVar(&rc.table, "table", "", "Paginated table --page applies to (defaults to the only one)")
	cmd.Flags().IntVar(&rc.page, "page", 1, "Page of the paginated table to show")
	cmd.Flags().IntVar(&rc.pageSize, "page-size", pageSize, fmt.Sprintf("Rows per page, one of %v", report.PageSizes))
	cmd.Flags().StringVarP(&rc.output, "output", "o", "text", "Output format (text or json)")
	cmd.Flags().BoolVar(&rc.export, "export", false, "Upload the report as JSON to the configured S3 bucket")

	return cmd
}

func (rc *ReportCmd) run(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), reportTimeout)
	defer cancel()
	logger := zerolog.Ctx(ctx)
	name := args[0]

	reporter, ok := rc.reporters[rc.output]
	if !ok {
		return fmt.Errorf("unsupported output format %q", rc.output)
	}

	profile, err := rc.resolveProfile(ctx)
	if err != nil {
		return err
	}

	builder, err := rc.builder(ctx, profile, name)
	if err != nil {
		return err
	}

	periods, err := dashboard.ParsePeriods(rc.periods, rc.now())
	if err != nil {
		return err
	}

	started := time.Now()
	rep, err := builder.Build(ctx, periods)
	if err != nil {
		return fmt.Errorf("failed to build %s report: %w", name, err)
	}
	logger.Debug().
		Str("profile", profile.Name).
		Str("page", name).
		Dur("duration", time.Since(started)).
		Msg("report built")

	paginator := report.NewPaginator()
	states, err := rc.pageStates(paginator, rep)
	if err != nil {
		return err
	}

	view, err := adapters.MapReportDomainToApi(rep, paginator, states)
	if err != nil {
		return err
	}
	if err := reporter.Handle(view); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}

	if !rc.export {
		return nil
	}
	if rc.exporter == nil {
		return fmt.Errorf("report export is not available")
	}
	exporter, err := rc.exporter(ctx)
	if err != nil {
		return fmt.Errorf("failed to set up export: %w", err)
	}
	key, err := exporter.Export(ctx, profile.Name, name, view)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Exported report to %s\n", key)
	return nil
}

func (rc *ReportCmd) resolveProfile(ctx context.Context) (domain.ConfigProfile, error) {
	if rc.profile != "" {
		return rc.profiles.GetProfile(ctx, rc.profile)
	}

	profiles, err := rc.profiles.GetProfiles(ctx)
	if err != nil {
		return domain.ConfigProfile{}, fmt.Errorf("failed to load profiles: %w", err)
	}
	if len(profiles) != 1 {
		return domain.ConfigProfile{}, fmt.Errorf("found %d profiles, choose one with --profile", len(profiles))
	}
	return profiles[0], nil
}

func (rc *ReportCmd) builder(ctx context.Context, profile domain.ConfigProfile, name string) (dashboard.Builder, error) {
	builders, err := rc.pages.Pages(ctx, profile)
	if err != nil {
		return nil, err
	}
	for _, b := range builders {
		if b.Name() == name {
			return b, nil
		}
	}
	return nil, fmt.Errorf("page %s is not available for %s profile %s", name, profile.Type, profile.Name)
}

// pageStates places --page on the chosen table. Other tables start at page 1.
func (rc *ReportCmd) pageStates(paginator *report.Paginator, rep *domain.Report) (*report.PageStates, error) {
	if !slices.Contains(report.PageSizes, rc.pageSize) {
		return nil, fmt.Errorf("%w: %d is not one of %v", domain.ErrInvalidPageSize, rc.pageSize, report.PageSizes)
	}
	states := report.NewPageStates(rc.pageSize)

	var target domain.AggregateTable
	switch {
	case rc.table != "":
		t, ok := rep.Table(rc.table)
		if !ok {
			return nil, fmt.Errorf("report has no table %q", rc.table)
		}
		target = t
	case len(rep.Tables) == 1:
		target = rep.Tables[0]
	case rc.page != 1:
		return nil, fmt.Errorf("--page needs --table when the report has %d tables", len(rep.Tables))
	}

	for _, t := range rep.Tables {
		page := 1
		if t.Name == target.Name {
			page = rc.page
		}
		if _, err := paginator.Paginate(t, rc.pageSize, page); err != nil {
			return nil, fmt.Errorf("table %s: %w", t.Name, err)
		}
		if err := states.Set(t.Name, domain.PageState{PageSize: rc.pageSize, CurrentPage: page}); err != nil {
			return nil, err
		}
	}
	return states, nil
}
