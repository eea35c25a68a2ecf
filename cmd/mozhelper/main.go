package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/holon-run/mozhelper/pkg/capability"
	"github.com/holon-run/mozhelper/pkg/config"
	"github.com/holon-run/mozhelper/pkg/desktop"
	"github.com/holon-run/mozhelper/pkg/helper"
	helperlog "github.com/holon-run/mozhelper/pkg/log"
	"github.com/holon-run/mozhelper/pkg/logs/redact"
	"github.com/holon-run/mozhelper/pkg/protocol"
)

// defaultLogLevel keeps the browser's stderr quiet unless something is wrong.
const defaultLogLevel = "warn"

var (
	configPath string
	logLevel   string
	logFile    string
	logFormat  string
	traceLines bool
	redactMode string
)

var rootCmd = &cobra.Command{
	Use:   "mozhelper",
	Short: "Desktop integration helper for Firefox",
	Long: `mozhelper lets the browser use the desktop's file dialogs, MIME
database, URL handlers, default applications and notifications.

The browser starts mozhelper and talks to it over stdin and stdout using a
line protocol: one command per line, each followed by its argument block and
answered with \1 (success) or \0 (failure). Diagnostics go to stderr.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, _ []string) error {
		fileCfg, cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := initLogging(cfg); err != nil {
			return err
		}
		defer helperlog.Sync()

		session := uuid.NewString()
		log := helperlog.With("session", session)
		if term.IsTerminal(int(os.Stdin.Fd())) {
			log.Warnw("stdin is a terminal; mozhelper is meant to be started by the browser")
		}

		bus := desktop.NewBus()
		defer bus.Close()

		store := config.NewStore(configPath, fileCfg)
		store.Associate = xdgMimeAssociate
		caps := newCapabilities(cfg, bus, store)

		h, err := helper.New(caps, cfg.Options(), os.Stdin, os.Stdout)
		if err != nil {
			return fmt.Errorf("failed to create helper: %w", err)
		}
		if cfg.Trace {
			h.SetTracer(newTracer(cfg))
		}

		log.Infow("session started", "config", configPath, "protocol_version", helper.ProtocolVersion)
		if err := h.Run(context.Background()); err != nil {
			return err
		}
		log.Infow("session ended")
		return nil
	},
}

// loadConfig reads the config file and applies command line overrides.
// fileCfg is the file content alone; cfg carries the overrides and is never
// written back.
func loadConfig(cmd *cobra.Command) (fileCfg, cfg config.Config, err error) {
	if configPath == "" {
		configPath = config.DefaultPath()
	}
	fileCfg, err = config.Load(configPath)
	if err != nil {
		return config.Config{}, config.Config{}, err
	}
	cfg = fileCfg
	cfg.KnownProtocols = append([]string(nil), fileCfg.KnownProtocols...)
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = logFile
	}
	if flags.Changed("trace") {
		cfg.Trace = traceLines
	}
	if flags.Changed("redact") {
		cfg.Redact = redactMode
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = defaultLogLevel
	}
	if cfg.Trace {
		cfg.LogLevel = string(helperlog.LevelDebug)
	}
	return fileCfg, cfg, nil
}

func initLogging(cfg config.Config) error {
	logCfg := helperlog.Config{
		Level:  helperlog.LogLevel(cfg.LogLevel),
		Format: logFormat,
		File:   cfg.LogFile,
	}
	if err := helperlog.Init(logCfg); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	return nil
}

// newTracer logs protocol lines at debug level after redaction.
func newTracer(cfg config.Config) protocol.Tracer {
	mode, err := redact.ParseMode(cfg.Redact)
	if err != nil {
		helperlog.Warn("invalid redaction mode, using default", "mode", cfg.Redact, "error", err)
		mode = redact.DefaultMode
	}
	r := redact.New(redact.Config{Mode: mode})
	return func(direction, line string) {
		helperlog.Debug("protocol", "dir", direction, "line", r.RedactString(line))
	}
}

func newCapabilities(cfg config.Config, bus *desktop.Bus, store *config.Store) capability.Capabilities {
	dataDirs := desktop.DataDirs()
	apps := desktop.NewApplications(dataDirs)
	return capability.Capabilities{
		Files: desktop.NewPortal(bus),
		Protocols: desktop.NewProtocols(desktop.ProtocolsConfig{
			Cache: desktop.NewProtocolCache(cfg.ProtocolCacheSize),
			Extra: cfg.KnownProtocols,
			Apps:  apps,
			Run:   desktop.ExecRunner,
		}),
		Mime:     desktop.NewMimeDB(dataDirs, apps, desktop.ExecRunner),
		Launcher: desktop.NewLauncher(desktop.StartDetached),
		Notifier: desktop.NewNotifier(bus, "Firefox", "firefox"),
		Config:   store,
	}
}

// xdgMimeAssociate registers desktopID as the default for mimeTypes.
func xdgMimeAssociate(desktopID string, mimeTypes ...string) error {
	args := append([]string{"default", desktopID}, mimeTypes...)
	_, err := desktop.ExecRunner(context.Background(), "xdg-mime", args...)
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: $"+config.EnvConfigPath+" or $XDG_CONFIG_HOME/mozhelper/config.yaml)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", defaultLogLevel, "Log level: debug, info, progress, minimal, warn, error")
	rootCmd.Flags().StringVar(&logFile, "log-file", "", "Append logs to this file instead of stderr")
	rootCmd.Flags().StringVar(&logFormat, "log-format", "console", "Log format: console or json")
	rootCmd.Flags().BoolVar(&traceLines, "trace", false, "Log every protocol line at debug level")
	rootCmd.Flags().StringVar(&redactMode, "redact", "", "Redaction of traced lines: "+strings.Join([]string{string(redact.ModeOff), string(redact.ModeBasic), string(redact.ModeAggressive)}, ", "))
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
