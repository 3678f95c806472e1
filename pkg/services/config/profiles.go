package config

import (
	"context"
	"fmt"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"gopkg.in/ini.v1"
)

type Registry interface {
	GetProfiles(ctx context.Context) ([]domain.ConfigProfile, error)
	GetProfile(ctx context.Context, name string) (domain.ConfigProfile, error)
}

type cfgRegistry struct {
	cfg *ini.File
}

// NewRegistry loads an ini file whose sections are dashboard profiles:
//
//	[shop]
//	type = ga4
//	property_id = 389980673
//	credentials = /etc/traffic-atlas/ga4.json
//	site_url = https://example.com/
//	search_console_credentials = /etc/traffic-atlas/gsc.json
//
//	[billing]
//	type = costexplorer
//	aws_profile = prod
func NewRegistry(path string) (Registry, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load profiles %s: %w", path, err)
	}
	return newRegistry(cfg), nil
}

func NewRegistryFromBytes(data []byte) (Registry, error) {
	cfg, err := ini.Load(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse profiles: %w", err)
	}
	return newRegistry(cfg), nil
}

func newRegistry(cfg *ini.File) *cfgRegistry {
	return &cfgRegistry{cfg: cfg}
}

func (cr *cfgRegistry) GetProfiles(_ context.Context) ([]domain.ConfigProfile, error) {
	var profiles []domain.ConfigProfile
	for _, section := range cr.cfg.Sections() {
		if len(section.Keys()) == 0 {
			continue
		}
		p, err := parseProfile(section)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

func (cr *cfgRegistry) GetProfile(_ context.Context, name string) (domain.ConfigProfile, error) {
	section, err := cr.cfg.GetSection(name)
	if err != nil || len(section.Keys()) == 0 {
		return domain.ConfigProfile{}, fmt.Errorf("profile %s not found", name)
	}
	return parseProfile(section)
}

func parseProfile(section *ini.Section) (domain.ConfigProfile, error) {
	p := domain.ConfigProfile{
		Name:                     section.Name(),
		Type:                     domain.ProfileType(section.Key("type").MustString(string(domain.ProfileTypeGA4))),
		PropertyID:               section.Key("property_id").String(),
		Credentials:              section.Key("credentials").String(),
		SiteURL:                  section.Key("site_url").String(),
		SearchConsoleCredentials: section.Key("search_console_credentials").String(),
		AWSProfile:               section.Key("aws_profile").String(),
		Region:                   section.Key("region").String(),
	}

	switch p.Type {
	case domain.ProfileTypeGA4:
		if p.PropertyID == "" {
			return p, fmt.Errorf("profile %s: property_id is required", p.Name)
		}
		if p.SearchConsoleCredentials == "" {
			p.SearchConsoleCredentials = p.Credentials
		}
	case domain.ProfileTypeCostExplorer:
	default:
		return p, fmt.Errorf("profile %s: unsupported type %q", p.Name, p.Type)
	}
	return p, nil
}
