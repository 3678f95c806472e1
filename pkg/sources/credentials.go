// Package sources holds the report API adapters the dashboards read from.
package sources

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
)

// ServiceAccount loads a service-account JSON key from path and returns a
// client option scoped to scopes.
func ServiceAccount(ctx context.Context, path string, scopes ...string) (option.ClientOption, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read credentials %s: %w", path, err)
	}

	creds, err := google.CredentialsFromJSON(ctx, data, scopes...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse credentials %s: %w", path, err)
	}
	return option.WithCredentials(creds), nil
}
