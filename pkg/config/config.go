// Package config loads catlog settings from a YAML or TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/modoterra/catlog/pkg/render"
)

// Where log lines come from.
const (
	SourceADB   = "adb"
	SourceLocal = "local"
	SourceStdin = "stdin"
)

// Where process names come from.
const (
	ProcessSourceADB    = "adb"
	ProcessSourceProcfs = "procfs"
)

// Colour modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// DefaultPath is used when no --config flag is given.
const DefaultPath = "~/.config/catlog/config.yaml"

// Config is the full set of user settings.
type Config struct {
	HideTimestamp    bool     `yaml:"hide_timestamp"     toml:"hide_timestamp"`
	HideDate         bool     `yaml:"hide_date"          toml:"hide_date"`
	UseProcessName   bool     `yaml:"use_process_name"   toml:"use_process_name"`
	BrightColors     bool     `yaml:"bright_colors"      toml:"bright_colors"`
	TagWidth         int      `yaml:"tag_width"          toml:"tag_width"`
	ProcessNameWidth int      `yaml:"process_name_width" toml:"process_name_width"`
	PIDWidth         int      `yaml:"pid_width"          toml:"pid_width"`
	CacheEnabled     *bool    `yaml:"cache_enabled,omitempty"   toml:"cache_enabled,omitempty"`
	RefreshInterval  Duration `yaml:"refresh_interval"   toml:"refresh_interval"`
	Color            string   `yaml:"color"              toml:"color"`
	ADBPath          string   `yaml:"adb_path,omitempty" toml:"adb_path,omitempty"`
	Serial           string   `yaml:"serial,omitempty"   toml:"serial,omitempty"`
	Source           string   `yaml:"source"             toml:"source"`
	ProcessSource    string   `yaml:"process_source"     toml:"process_source"`
	Filters          []string `yaml:"filters,omitempty"  toml:"filters,omitempty"`
	LogLevel         string   `yaml:"log_level"          toml:"log_level"`
	LogFormat        string   `yaml:"log_format"         toml:"log_format"`
	LogFile          string   `yaml:"log_file,omitempty" toml:"log_file,omitempty"`
}

// Default returns the built-in settings.
func Default() Config {
	layout := render.DefaultLayout()
	return Config{
		HideTimestamp:    layout.HideTimestamp,
		HideDate:         layout.HideDate,
		UseProcessName:   layout.UseProcessName,
		BrightColors:     layout.BrightColors,
		TagWidth:         layout.TagWidth,
		ProcessNameWidth: layout.ProcessNameWidth,
		PIDWidth:         layout.PIDWidth,
		RefreshInterval:  Duration(time.Second),
		Color:            ColorAuto,
		Source:           SourceADB,
		ProcessSource:    ProcessSourceADB,
		LogLevel:         "warn",
		LogFormat:        "text",
	}
}

// Cache reports whether the process cache should run. It follows
// UseProcessName unless cache_enabled is set explicitly.
func (c Config) Cache() bool {
	if c.CacheEnabled != nil {
		return *c.CacheEnabled
	}
	return c.UseProcessName
}

// Layout returns the render column configuration.
func (c Config) Layout() render.Layout {
	return render.Layout{
		HideTimestamp:    c.HideTimestamp,
		HideDate:         c.HideDate,
		UseProcessName:   c.UseProcessName,
		BrightColors:     c.BrightColors,
		TagWidth:         c.TagWidth,
		ProcessNameWidth: c.ProcessNameWidth,
		PIDWidth:         c.PIDWidth,
	}
}

// Load reads the config at path. An empty path means DefaultPath, which may
// be absent, in which case defaults are returned. An explicit path must exist.
// The resolved path is returned alongside the config.
func Load(path string) (Config, string, error) {
	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = DefaultPath
	}
	resolved, err := expandPath(path)
	if err != nil {
		return Config{}, "", err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return Default(), resolved, nil
		}
		return Config{}, resolved, fmt.Errorf("read config: %w", err)
	}

	cfg, err := Parse(data, FormatFor(resolved))
	if err != nil {
		return Config{}, resolved, fmt.Errorf("parse config %s: %w", resolved, err)
	}
	return cfg, resolved, nil
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

// Duration is a time.Duration written as a Go duration string, e.g. "1s".
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("parse duration: %w", err)
	}
	*d = Duration(v)
	return nil
}
