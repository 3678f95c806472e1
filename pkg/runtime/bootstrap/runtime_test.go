package bootstrap

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/de-tools/traffic-atlas/pkg/models/domain"
	"github.com/de-tools/traffic-atlas/pkg/services/config"
	"github.com/de-tools/traffic-atlas/pkg/store/snapshot"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger(t *testing.T) {
	var buf bytes.Buffer
	logger, err := NewLogger(&buf, "WARN")
	require.NoError(t, err)

	logger.Info().Msg("hidden")
	logger.Warn().Msg("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)

	_, err = NewLogger(&buf, "loud")
	assert.Error(t, err)
}

func settings(t *testing.T, mode string) *config.Settings {
	return &config.Settings{Snapshot: config.SnapshotSettings{
		Mode: mode,
		Path: filepath.Join(t.TempDir(), "snapshots.db"),
	}}
}

func names(t *testing.T, rt *Runtime, profile domain.ConfigProfile) []string {
	t.Helper()
	pages, err := rt.Pages(context.Background(), profile)
	require.NoError(t, err)
	var out []string
	for _, p := range pages {
		out = append(out, p.Name())
	}
	return out
}

func TestPages_Replay(t *testing.T) {
	rt, err := New(context.Background(), settings(t, "replay"), nil)
	require.NoError(t, err)
	defer rt.Close()
	assert.Equal(t, snapshot.ModeReplay, rt.Mode())

	shop := domain.ConfigProfile{Name: "shop", Type: domain.ProfileTypeGA4, PropertyID: "123", SiteURL: "sc-domain:example.com"}
	assert.Equal(t, []string{"sales", "seo"}, names(t, rt, shop))

	aws := domain.ConfigProfile{Name: "aws", Type: domain.ProfileTypeCostExplorer}
	assert.Equal(t, []string{"spend"}, names(t, rt, aws))

	_, err = rt.Pages(context.Background(), domain.ConfigProfile{Name: "x", Type: "ftp"})
	assert.Error(t, err)
}

func TestPages_MissingCredentials(t *testing.T) {
	rt, err := New(context.Background(), settings(t, "off"), nil)
	require.NoError(t, err)
	defer rt.Close()

	_, err = rt.Pages(context.Background(), domain.ConfigProfile{
		Name: "shop", Type: domain.ProfileTypeGA4, PropertyID: "123",
		Credentials: filepath.Join(t.TempDir(), "missing.json"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create ga4 source")
}

func TestNew_InvalidMode(t *testing.T) {
	_, err := New(context.Background(), settings(t, "rewind"), nil)
	assert.Error(t, err)
}

func TestExporter_RequiresBucket(t *testing.T) {
	rt, err := New(zerolog.Nop().WithContext(context.Background()), settings(t, "off"), nil)
	require.NoError(t, err)

	_, err = rt.Exporter(context.Background())
	assert.EqualError(t, err, "export.bucket is not configured")
}
