package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salespulse/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SALES_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "data/archives/part_1.zip", cfg.Archives.Part1)
	assert.Equal(t, "data/archives/part_2.zip", cfg.Archives.Part2)
	assert.Equal(t, 10, cfg.Analytics.TopFamilies)
	assert.Equal(t, 15, cfg.Analytics.TopStates)
	assert.Equal(t, 14, cfg.Analytics.RollingWindow)
	assert.True(t, cfg.Security.RateLimit.Enabled)
	assert.Equal(t, "data/reports", cfg.Reports.Dir)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  port: 9001
archives:
  part1: /data/a.zip
  part2: /data/b.zip
analytics:
  top_families: 3
`
	require.NoError(t, os.WriteFile(file, []byte(yaml), 0644))

	t.Setenv("SALES_CONFIG_FILE", file)
	t.Setenv("SALES_SERVER_PORT", "9002")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9002, cfg.Server.Port, "environment wins over the file")
	assert.Equal(t, "/data/a.zip", cfg.Archives.Part1)
	assert.Equal(t, 3, cfg.Analytics.TopFamilies)
}

func TestLoad_RejectsInvalidPort(t *testing.T) {
	t.Setenv("SALES_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("SALES_SERVER_PORT", "70000")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestLoad_RejectsZeroRPSWhenEnabled(t *testing.T) {
	t.Setenv("SALES_CONFIG_FILE", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("SALES_SECURITY_RATE_LIMIT_RPS", "0")

	_, err := config.Load()
	assert.Error(t, err)
}

func TestEnsureReportDirAndReportPath(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "reports")
	cfg := &config.Config{}
	cfg.Reports.Dir = dir

	require.NoError(t, cfg.EnsureReportDir())
	assert.DirExists(t, dir)
	assert.Equal(t, filepath.Join(dir, "overview.csv"), cfg.ReportPath("overview.csv"))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "x.txt")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	assert.True(t, config.FileExists(file))
	assert.False(t, config.FileExists(filepath.Join(dir, "missing.txt")))
	assert.False(t, config.FileExists(dir), "directories do not count")
}
