package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("DASHBOARD_CONFIG", "")
	t.Setenv("PORT", "")
	t.Setenv("DASHBOARD_SERVER_PORT", "")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8001", cfg.Server.Port)
	assert.Equal(t, int64(32<<20), cfg.Upload.MaxBytes)
	assert.Equal(t, 30*time.Minute, cfg.Session.TTL)
	assert.Equal(t, 5, cfg.Dashboard.PreviewRows)
	assert.Equal(t, "REGION", cfg.Dashboard.RegionColumn)
	assert.Equal(t, "ID", cfg.Dashboard.VendorColumn)
	assert.Equal(t, []string{"UNITS SOLD", "TOTAL SALES", "AVERAGE SALES"}, cfg.Dashboard.MetricColumns)
	assert.Equal(t, 800, cfg.Chart.Width)
	assert.Equal(t, "info", cfg.Log.Level)

	assert.Equal(t, cfg, Default())
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("DASHBOARD_DASHBOARD_VENDOR_COLUMN", "VENDOR_ID")
	t.Setenv("DASHBOARD_SESSION_TTL", "5m")
	t.Setenv("PORT", "9090")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "VENDOR_ID", cfg.Dashboard.VendorColumn)
	assert.Equal(t, 5*time.Minute, cfg.Session.TTL)
	assert.Equal(t, "9090", cfg.Server.Port)
}

func TestLoadConfigFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  port: "7000"
dashboard:
  region_column: AREA
  metric_columns: [REVENUE]
chart:
  width: 1024
`), 0o644))
	t.Setenv("DASHBOARD_CONFIG", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "AREA", cfg.Dashboard.RegionColumn)
	assert.Equal(t, []string{"REVENUE"}, cfg.Dashboard.MetricColumns)
	assert.Equal(t, 1024, cfg.Chart.Width)
	assert.Equal(t, 450, cfg.Chart.Height)
}

func TestLoadMissingExplicitFileFails(t *testing.T) {
	isolate(t)
	t.Setenv("DASHBOARD_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())

	cfg.Upload.MaxBytes = 0
	assert.ErrorContains(t, cfg.Validate(), "upload.max_bytes")

	cfg = Default()
	cfg.Chart.Height = -1
	assert.ErrorContains(t, cfg.Validate(), "chart size")
}
