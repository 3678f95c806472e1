package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/de-tools/traffic-atlas/pkg/services/config"
	"github.com/spf13/cobra"
)

type ProfilesCmd struct {
	registry config.Registry
}

func NewProfilesCmd(registry config.Registry) *cobra.Command {
	pc := &ProfilesCmd{registry: registry}
	return &cobra.Command{
		Use:   "profiles",
		Short: "List configured profiles and the pages they serve",
		Args:  cobra.NoArgs,
		RunE:  pc.run,
	}
}

func (pc *ProfilesCmd) run(cmd *cobra.Command, _ []string) error {
	profiles, err := pc.registry.GetProfiles(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load profiles: %w", err)
	}

	if len(profiles) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No profiles configured")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tTYPE\tPAGES\tSOURCE")
	for _, p := range profiles {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", p.Name, p.Type, pagesFor(p), sourceOf(p))
	}
	return w.Flush()
}

func pagesFor(p domain.ConfigProfile) string {
	switch p.Type {
	case domain.ProfileTypeGA4:
		if p.HasSearchConsole() {
			return "sales, seo (+search console)"
		}
		return "sales, seo"
	case domain.ProfileTypeCostExplorer:
		return "spend"
	default:
		return "-"
	}
}

func sourceOf(p domain.ConfigProfile) string {
	if p.Type == domain.ProfileTypeCostExplorer {
		if p.AWSProfile == "" {
			return "aws:default"
		}
		return "aws:" + p.AWSProfile
	}
	return "properties/" + p.PropertyID
}
