package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/modoterra/catlog/internal/buildinfo"
	"github.com/modoterra/catlog/internal/logging"
	"github.com/modoterra/catlog/pkg/config"
	"github.com/modoterra/catlog/pkg/core"
	"github.com/modoterra/catlog/pkg/pidcache"
	"github.com/modoterra/catlog/pkg/providers/adb"
	"github.com/modoterra/catlog/pkg/providers/exec"
	"github.com/modoterra/catlog/pkg/providers/pipe"
	"github.com/modoterra/catlog/pkg/providers/procfs"
	"github.com/modoterra/catlog/pkg/render"
	"github.com/modoterra/catlog/pkg/termcap"
	tuimodel "github.com/modoterra/catlog/pkg/tui/model"
	"github.com/modoterra/catlog/pkg/viewer"
)

// procRoot is swapped out by tests.
var procRoot = procfs.DefaultRoot

var flags struct {
	configPath       string
	hideTimestamp    bool
	hideDate         bool
	useProcessName   bool
	brightColors     bool
	tagWidth         int
	processNameWidth int
	pidWidth         int
	refreshInterval  time.Duration
	color            string
	adbPath          string
	serial           string
	source           string
	processSource    string
	filters          []string
	logLevel         string
	logFormat        string
	logFile          string
	tui              bool
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "catlog [flags]",
	Short: "Colourised logcat viewer with process names",
	Long: "catlog streams Android logcat output and prints each line in aligned, colour-coded\n" +
		"columns, replacing pids with process names from a periodically refreshed process table.",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runStream,
}

func init() {
	def := config.Default()

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "config file (default "+config.DefaultPath+")")
	pf.StringVar(&flags.adbPath, "adb", "", "path to the adb binary")
	pf.StringVarP(&flags.serial, "serial", "s", "", "device serial passed to adb -s")
	pf.StringVar(&flags.processSource, "process-source", def.ProcessSource, "process table source: adb or procfs")
	pf.StringVar(&flags.logLevel, "log-level", def.LogLevel, "diagnostic log level: debug, info, warn or error")
	pf.StringVar(&flags.logFormat, "log-format", def.LogFormat, "diagnostic log format: text or json")
	pf.StringVar(&flags.logFile, "log-file", "", "write diagnostics to this file instead of stderr")

	f := rootCmd.Flags()
	f.BoolVar(&flags.hideTimestamp, "hide-timestamp", def.HideTimestamp, "omit the timestamp column")
	f.BoolVar(&flags.hideDate, "hide-date", def.HideDate, "show time only, without the month and day")
	f.BoolVarP(&flags.useProcessName, "use-process-name", "p", def.UseProcessName, "show process names instead of pid:pid")
	f.BoolVar(&flags.brightColors, "bright-colors", def.BrightColors, "use the bright palette for level colours")
	f.IntVar(&flags.tagWidth, "tag-width", def.TagWidth, "tag column width")
	f.IntVar(&flags.processNameWidth, "process-name-width", def.ProcessNameWidth, "process name column width")
	f.IntVar(&flags.pidWidth, "pid-width", def.PIDWidth, "pid:pid column width")
	f.DurationVar(&flags.refreshInterval, "refresh-interval", time.Duration(def.RefreshInterval), "process table refresh interval")
	f.StringVar(&flags.color, "color", def.Color, "colour output: auto, always or never")
	f.StringVar(&flags.source, "source", def.Source, "log source: adb, local or stdin")
	f.StringArrayVarP(&flags.filters, "filter", "f", nil, "logcat filterspec, repeatable (e.g. ActivityManager:I)")
	f.BoolVar(&flags.tui, "tui", false, "open the interactive viewer")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(psCmd)
	rootCmd.AddCommand(configCmd)
}

// loadConfig reads the config file and applies any flags set on the command
// line over it.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, _, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}
	applyFlags(cmd.Flags(), &cfg)
	return cfg, nil
}

func applyFlags(fs *pflag.FlagSet, cfg *config.Config) {
	set := func(name string, apply func()) {
		if f := fs.Lookup(name); f != nil && f.Changed {
			apply()
		}
	}
	set("hide-timestamp", func() { cfg.HideTimestamp = flags.hideTimestamp })
	set("hide-date", func() { cfg.HideDate = flags.hideDate })
	set("use-process-name", func() { cfg.UseProcessName = flags.useProcessName })
	set("bright-colors", func() { cfg.BrightColors = flags.brightColors })
	set("tag-width", func() { cfg.TagWidth = flags.tagWidth })
	set("process-name-width", func() { cfg.ProcessNameWidth = flags.processNameWidth })
	set("pid-width", func() { cfg.PIDWidth = flags.pidWidth })
	set("refresh-interval", func() { cfg.RefreshInterval = config.Duration(flags.refreshInterval) })
	set("color", func() { cfg.Color = flags.color })
	set("adb", func() { cfg.ADBPath = flags.adbPath })
	set("serial", func() { cfg.Serial = flags.serial })
	set("source", func() { cfg.Source = flags.source })
	set("process-source", func() { cfg.ProcessSource = flags.processSource })
	set("filter", func() { cfg.Filters = flags.filters })
	set("log-level", func() { cfg.LogLevel = flags.logLevel })
	set("log-format", func() { cfg.LogFormat = flags.logFormat })
	set("log-file", func() { cfg.LogFile = flags.logFile })
}

// setup loads and validates the config, then builds the logger.
func setup(cmd *cobra.Command, stderr io.Writer) (config.Config, *slog.Logger, io.Closer, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	if errs := config.Validate(&cfg); len(errs) > 0 {
		return config.Config{}, nil, nil, errors.Join(errs...)
	}
	logger, closer, err := logging.New(logging.Options{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		File:   cfg.LogFile,
	}, stderr)
	if err != nil {
		return config.Config{}, nil, nil, err
	}
	return cfg, logger, closer, nil
}

func processSource(cfg config.Config, logger *slog.Logger) (core.ProcessSource, error) {
	switch cfg.ProcessSource {
	case config.ProcessSourceProcfs:
		return procfs.New(procRoot, logger), nil
	default:
		path, err := adb.Locate(cfg.ADBPath)
		if err != nil {
			return nil, err
		}
		return adb.New(path, cfg.Serial, logger), nil
	}
}

func streamSource(cmd *cobra.Command, cfg config.Config, logger *slog.Logger) (core.StreamSource, error) {
	switch cfg.Source {
	case config.SourceStdin:
		return pipe.New(cmd.InOrStdin(), "stdin", logger), nil
	case config.SourceLocal:
		return exec.New(logger, "logcat", cfg.Filters...), nil
	default:
		path, err := adb.Locate(cfg.ADBPath)
		if err != nil {
			return nil, err
		}
		return adb.New(path, cfg.Serial, logger).Logcat(cfg.Filters), nil
	}
}

func runStream(cmd *cobra.Command, _ []string) error {
	// The TUI owns the terminal; diagnostics go to log_file or nowhere.
	stderr := cmd.ErrOrStderr()
	if flags.tui {
		stderr = io.Discard
	}
	cfg, logger, closer, err := setup(cmd, stderr)
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var procs core.ProcessSource
	if cfg.Cache() {
		if procs, err = processSource(cfg, logger); err != nil {
			return err
		}
	}
	cache := pidcache.New(procs, pidcache.Options{
		Enabled:  cfg.Cache(),
		Interval: time.Duration(cfg.RefreshInterval),
	}, logger)
	go cache.Run(ctx)

	stream, err := streamSource(cmd, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("streaming", "source", cfg.Source, "process_source", cfg.ProcessSource, "cache", cache.Enabled())

	if flags.tui {
		return runTUI(ctx, cancel, cfg, stream, cache, logger)
	}

	out := cmd.OutOrStdout()
	opts := render.Options{Profile: termenv.Ascii}
	if f, ok := out.(*os.File); ok {
		opts = render.Options{Profile: termcap.Profile(cfg.Color, f), Width: termcap.WidthFunc(f)}
	} else if cfg.Color == config.ColorAlways {
		opts.Profile = termenv.ANSI256
	}
	term := render.New(out, cfg.Layout(), opts)

	v := viewer.New(stream, cache, term, logger)
	err = v.Run(ctx)
	if cerr := term.Close(); cerr != nil {
		logger.Warn("terminal reset failed", "err", cerr)
	}
	stats := v.Stats()
	logger.Debug("viewer stopped", "lines", stats.Lines, "records", stats.Records, "skipped", stats.Skipped)

	// A piped file ending is the normal way out.
	var exitErr *viewer.ExitError
	if cfg.Source == config.SourceStdin && errors.As(err, &exitErr) && exitErr.Code == 0 {
		return nil
	}
	return err
}

func runTUI(ctx context.Context, cancel context.CancelFunc, cfg config.Config, stream core.StreamSource, cache *pidcache.Cache, logger *slog.Logger) error {
	app := tuimodel.New("catlog", cfg.Layout(), termcap.Profile(cfg.Color, os.Stdout))
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	sink := tuimodel.NewSink(p)

	go func() {
		err := viewer.New(stream, cache, sink, logger).Run(ctx)
		if err != nil {
			logger.Warn("log stream ended", "err", err)
		}
		sink.Done(err)
	}()

	_, err := p.Run()
	cancel()
	if errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}

// --- Version ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "catlog %s\n", buildinfo.String())
	},
}
