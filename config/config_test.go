// ABOUTME: Tests for configuration loading, overrides, and saving
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withDataHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig := xdg.DataHome
	xdg.DataHome = dir
	t.Cleanup(func() { xdg.DataHome = orig })
	return dir
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	home := withDataHome(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, AppName, AppName+".db"), cfg.DatabasePath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultCharmHost, cfg.CharmHost)
	assert.NotEmpty(t, cfg.User.UUID)
	assert.Equal(t, filepath.Join(home, AppName, ConfigFileName), cfg.Path())
}

func TestSaveAndReload(t *testing.T) {
	withDataHome(t)

	cfg := Default()
	cfg.User.Name = "Harper"
	cfg.LogLevel = "debug"
	cfg.AutoSync = true
	require.NoError(t, cfg.Save())

	info, err := os.Stat(cfg.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := Load(cfg.Path())
	require.NoError(t, err)
	assert.Equal(t, "Harper", loaded.User.Name)
	assert.Equal(t, cfg.User.UUID, loaded.User.UUID)
	assert.Equal(t, "debug", loaded.LogLevel)
	assert.True(t, loaded.AutoSync)
}

func TestEnvironmentOverrides(t *testing.T) {
	withDataHome(t)
	t.Setenv("DEALDESK_DB_PATH", "/tmp/deals.db")
	t.Setenv("DEALDESK_LOG_LEVEL", "warn")
	t.Setenv("DEALDESK_USER_NAME", "Dana")
	t.Setenv("DEALDESK_USER_UUID", "user-42")
	t.Setenv("DEALDESK_UPLOAD_BASE_URL", "https://files.example.com")
	t.Setenv("CHARM_HOST", "charm.example.com")
	t.Setenv("DEALDESK_AUTO_SYNC", "true")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "/tmp/deals.db", cfg.DatabasePath)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "Dana", cfg.User.Name)
	assert.Equal(t, "user-42", cfg.User.UUID)
	assert.Equal(t, "https://files.example.com", cfg.UploadBaseURL)
	assert.Equal(t, "charm.example.com", cfg.CharmHost)
	assert.True(t, cfg.AutoSync)
}

func TestInvalidInputs(t *testing.T) {
	home := withDataHome(t)

	t.Setenv("DEALDESK_AUTO_SYNC", "sometimes")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("DEALDESK_AUTO_SYNC", "")
	bad := filepath.Join(home, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{not json"), 0600))
	_, err = Load(bad)
	assert.Error(t, err)
}
