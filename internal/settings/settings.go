// Package settings holds the user's preferences, stored as JSON in the user
// config directory. Comments are tolerated when reading. Any field can be
// overridden with a WARPCTX_ environment variable.
package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/tidwall/jsonc"
)

// EnvPrefix starts every environment override, e.g. WARPCTX_DEBUG_MODE=true.
const EnvPrefix = "WARPCTX_"

type Settings struct {
	WarpMenuEnabled           bool   `json:"warp_menu_enabled" env:"WARP_MENU_ENABLED"`
	DebugMode                 bool   `json:"debug_mode" env:"DEBUG_MODE"`
	SkipModeCheck             bool   `json:"skip_mode_check" env:"SKIP_MODE_CHECK"`
	ShowDebugOverlay          bool   `json:"show_debug_overlay" env:"SHOW_DEBUG_OVERLAY"`
	SuggestMenuOnWarpCommand  bool   `json:"suggest_menu_on_warp_command" env:"SUGGEST_MENU_ON_WARP_COMMAND"`
	AddWarpCommandToHistory   bool   `json:"add_warp_command_to_history" env:"ADD_WARP_COMMAND_TO_HISTORY"`
	ShowJerryIsland           bool   `json:"show_jerry_island" env:"SHOW_JERRY_ISLAND"`
	AlwaysShowJerryIsland     bool   `json:"always_show_jerry_island" env:"ALWAYS_SHOW_JERRY_ISLAND"`
	ShowRegularWarpMenuButton bool   `json:"show_regular_warp_menu_button" env:"SHOW_REGULAR_WARP_MENU_BUTTON"`
	SettleWindowMillis        int    `json:"settle_window_ms,omitempty" env:"SETTLE_WINDOW_MS"`
	LogLevel                  string `json:"log_level,omitempty" env:"LOG_LEVEL"`
}

func Default() Settings {
	return Settings{
		WarpMenuEnabled:           true,
		SuggestMenuOnWarpCommand:  true,
		AddWarpCommandToHistory:   true,
		ShowJerryIsland:           true,
		ShowRegularWarpMenuButton: true,
		SettleWindowMillis:        3000,
		LogLevel:                  "info",
	}
}

// ShouldSkipModeCheck reports whether the game mode check is bypassed. It
// only takes effect in debug mode.
func (s Settings) ShouldSkipModeCheck() bool {
	return s.DebugMode && s.SkipModeCheck
}

// ShouldShowDebugOverlay reports whether the status overlay is drawn. It only
// takes effect in debug mode.
func (s Settings) ShouldShowDebugOverlay() bool {
	return s.DebugMode && s.ShowDebugOverlay
}

// ShouldAlwaysShowJerryIsland reports whether the seasonal island ignores
// the calendar. It only takes effect in debug mode.
func (s Settings) ShouldAlwaysShowJerryIsland() bool {
	return s.DebugMode && s.AlwaysShowJerryIsland
}

func (s Settings) SettleWindow() time.Duration {
	if s.SettleWindowMillis <= 0 {
		return 3 * time.Second
	}
	return time.Duration(s.SettleWindowMillis) * time.Millisecond
}

// Level parses LogLevel, defaulting to info.
func (s Settings) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

func (s Settings) Validate() error {
	if s.SettleWindowMillis < 0 {
		return fmt.Errorf("settle_window_ms must be >= 0, got %d", s.SettleWindowMillis)
	}
	if s.LogLevel != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(strings.TrimSpace(s.LogLevel))); err != nil {
			return fmt.Errorf("log_level: %w", err)
		}
	}
	return nil
}

func configDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	if dir == "" {
		return "", errors.New("config directory not found")
	}
	return filepath.Join(dir, "warpctx"), nil
}

// Path returns the default settings file location.
func Path() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "settings.json"), nil
}

// Load reads the settings at path and applies environment overrides. A
// missing file yields the defaults.
func Load(path string) (Settings, error) {
	s, err := loadFile(path)
	if err != nil {
		return Settings{}, err
	}
	if err := ApplyEnv(&s, nil); err != nil {
		return Settings{}, err
	}
	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func loadFile(path string) (Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return Settings{}, err
	}
	if err := json.Unmarshal(jsonc.ToJSON(data), &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings: %w", err)
	}
	return s, nil
}

// ApplyEnv overrides fields from WARPCTX_ variables. environ replaces the
// process environment when non-nil.
func ApplyEnv(s *Settings, environ map[string]string) error {
	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(s, opts); err != nil {
		return fmt.Errorf("settings from environment: %w", err)
	}
	return nil
}

// Save writes s to path atomically.
func Save(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "settings-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tmpPath)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return err
	}

	cleanup = false
	return nil
}
