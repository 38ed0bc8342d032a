package config

import (
	"fmt"
	"strings"
	"time"
)

// Validate checks the config for values the viewer cannot run with.
func Validate(c *Config) []error {
	var errs []error

	if c.TagWidth < 1 {
		errs = append(errs, fmt.Errorf("tag_width must be at least 1, got %d", c.TagWidth))
	}
	if c.ProcessNameWidth < 1 {
		errs = append(errs, fmt.Errorf("process_name_width must be at least 1, got %d", c.ProcessNameWidth))
	}
	if c.PIDWidth < 1 {
		errs = append(errs, fmt.Errorf("pid_width must be at least 1, got %d", c.PIDWidth))
	}
	if time.Duration(c.RefreshInterval) <= 0 {
		errs = append(errs, fmt.Errorf("refresh_interval must be positive, got %s", time.Duration(c.RefreshInterval)))
	}

	switch c.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, fmt.Errorf("color must be auto, always, or never; got %q", c.Color))
	}

	switch c.Source {
	case SourceADB, SourceLocal, SourceStdin:
	default:
		errs = append(errs, fmt.Errorf("source must be adb, local, or stdin; got %q", c.Source))
	}

	switch c.ProcessSource {
	case ProcessSourceADB, ProcessSourceProcfs:
	default:
		errs = append(errs, fmt.Errorf("process_source must be adb or procfs; got %q", c.ProcessSource))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log_level must be debug, info, warn, or error; got %q", c.LogLevel))
	}

	switch c.LogFormat {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json; got %q", c.LogFormat))
	}

	if c.Source == SourceStdin && len(c.Filters) > 0 {
		errs = append(errs, fmt.Errorf("filters are passed to logcat and cannot be used with source stdin"))
	}

	return errs
}
