package domain

import "fmt"

type ProfileType string

const (
	ProfileTypeGA4          ProfileType = "ga4"
	ProfileTypeCostExplorer ProfileType = "costexplorer"
)

// ConfigProfile is one section of the profiles file. GA4 profiles may also
// carry Search Console settings; Cost Explorer profiles name an AWS profile.
type ConfigProfile struct {
	Name string
	Type ProfileType

	PropertyID  string
	Credentials string

	SiteURL                  string
	SearchConsoleCredentials string

	AWSProfile string
	Region     string
}

func (c ConfigProfile) String() string {
	return fmt.Sprintf("%s:%s", c.Type, c.Name)
}

// HasSearchConsole reports whether the profile can feed the Search Console
// sections of the SEO page.
func (c ConfigProfile) HasSearchConsole() bool {
	return c.SiteURL != ""
}
