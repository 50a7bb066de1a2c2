package settings

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	s, err := loadFile(filepath.Join(t.TempDir(), "settings.json"))
	require.NoError(t, err)
	assert.Equal(t, Default(), s)
	assert.Equal(t, 3*time.Second, s.SettleWindow())
	assert.Equal(t, slog.LevelInfo, s.Level())
}

func TestSaveThenLoadKeepsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "settings.json")
	s := Default()
	s.DebugMode = true
	s.SettleWindowMillis = 1500
	require.NoError(t, Save(path, s))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	got, err := loadFile(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	commented := []byte(`{
		// hand edited
		"warp_menu_enabled": false,
		"log_level": "debug",
	}`)
	require.NoError(t, os.WriteFile(path, commented, 0o600))
	got, err = loadFile(path)
	require.NoError(t, err)
	assert.False(t, got.WarpMenuEnabled)
	assert.True(t, got.ShowJerryIsland, "unset fields keep defaults")
	assert.Equal(t, slog.LevelDebug, got.Level())
}

func TestDebugOnlySettings(t *testing.T) {
	s := Default()
	s.SkipModeCheck = true
	s.ShowDebugOverlay = true
	s.AlwaysShowJerryIsland = true
	assert.False(t, s.ShouldSkipModeCheck())
	assert.False(t, s.ShouldShowDebugOverlay())
	assert.False(t, s.ShouldAlwaysShowJerryIsland())

	s.DebugMode = true
	assert.True(t, s.ShouldSkipModeCheck())
	assert.True(t, s.ShouldShowDebugOverlay())
	assert.True(t, s.ShouldAlwaysShowJerryIsland())
}

func TestApplyEnv(t *testing.T) {
	s := Default()
	err := ApplyEnv(&s, map[string]string{
		"WARPCTX_DEBUG_MODE":        "true",
		"WARPCTX_WARP_MENU_ENABLED": "false",
		"WARPCTX_SETTLE_WINDOW_MS":  "250",
		"DEBUG_MODE":                "false",
	})
	require.NoError(t, err)
	assert.True(t, s.DebugMode)
	assert.False(t, s.WarpMenuEnabled)
	assert.Equal(t, 250*time.Millisecond, s.SettleWindow())
	assert.True(t, s.ShowJerryIsland, "unset variables leave values alone")

	err = ApplyEnv(&s, map[string]string{"WARPCTX_SETTLE_WINDOW_MS": "soon"})
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	s := Default()
	s.SettleWindowMillis = -1
	assert.Error(t, s.Validate())
	assert.Error(t, Save(filepath.Join(t.TempDir(), "s.json"), s))

	s = Default()
	s.LogLevel = "loud"
	assert.Error(t, s.Validate())
	assert.Equal(t, slog.LevelInfo, s.Level())
}
