// Package config loads the helper's YAML configuration file and persists the
// settings the browser can change through the protocol.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/holon-run/mozhelper/pkg/helper"
)

// EnvConfigPath overrides the configuration file location.
const EnvConfigPath = "MOZHELPER_CONFIG"

// Config is the content of config.yaml. Zero values mean "use the default".
type Config struct {
	LogLevel string `yaml:"log_level,omitempty"`
	LogFile  string `yaml:"log_file,omitempty"`
	// Trace logs every protocol line at debug level.
	Trace bool `yaml:"trace,omitempty"`
	// Redact is the redaction mode applied to traced lines: off, basic or aggressive.
	Redact string `yaml:"redact,omitempty"`

	DefaultBrowser  string     `yaml:"default_browser,omitempty"`
	FeedReader      string     `yaml:"feed_reader,omitempty"`
	NewsClient      string     `yaml:"news_client,omitempty"`
	Mail            MailConfig `yaml:"mail,omitempty"`
	Terminal        string     `yaml:"terminal,omitempty"`
	DownloadComment string     `yaml:"download_comment,omitempty"`

	// KnownProtocols are schemes reported as handled in addition to the
	// desktop's registered scheme handlers.
	KnownProtocols    []string `yaml:"known_protocols,omitempty"`
	ProtocolCacheSize int      `yaml:"protocol_cache_size,omitempty"`
}

// MailConfig selects the mail client started by OPENMAIL.
type MailConfig struct {
	Client string `yaml:"client,omitempty"`
	// Terminal runs Client inside the configured terminal emulator.
	Terminal bool `yaml:"terminal,omitempty"`
}

// DefaultDir returns $XDG_CONFIG_HOME/mozhelper, falling back to
// ~/.config/mozhelper.
func DefaultDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "mozhelper")
	}
	return filepath.Join(".", ".mozhelper")
}

// DefaultPath returns the configuration file used when none is given on the
// command line.
func DefaultPath() string {
	if v := strings.TrimSpace(os.Getenv(EnvConfigPath)); v != "" {
		return v
	}
	return filepath.Join(DefaultDir(), "config.yaml")
}

// Load reads the configuration at path. A missing file yields an empty
// Config so every setting takes its default.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Config{}, nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to path atomically, creating the directory if needed.
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return fmt.Errorf("failed to create temporary config: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

func (c Config) validate() error {
	switch strings.ToLower(strings.TrimSpace(c.Redact)) {
	case "", "off", "basic", "aggressive":
	default:
		return fmt.Errorf("redact must be off, basic or aggressive: %q", c.Redact)
	}
	if c.ProtocolCacheSize < 0 {
		return fmt.Errorf("protocol_cache_size must not be negative: %d", c.ProtocolCacheSize)
	}
	if c.Mail.Terminal && strings.TrimSpace(c.Mail.Client) == "" {
		return fmt.Errorf("mail.terminal requires mail.client")
	}
	for i, p := range c.KnownProtocols {
		if strings.TrimSpace(p) == "" || strings.ContainsAny(p, ":/ ") {
			return fmt.Errorf("known_protocols[%d] is not a scheme name: %q", i, p)
		}
	}
	return nil
}

// Options merges the configured preferences over helper.DefaultOptions.
func (c Config) Options() helper.Options {
	opts := helper.DefaultOptions()
	if c.FeedReader != "" {
		opts.FeedReader = c.FeedReader
	}
	if c.NewsClient != "" {
		opts.NewsClient = c.NewsClient
	}
	if c.Mail.Client != "" {
		opts.MailClient = c.Mail.Client
	}
	opts.MailInTerminal = c.Mail.Terminal
	if c.Terminal != "" {
		opts.Terminal = c.Terminal
	}
	if c.DownloadComment != "" {
		opts.DownloadComment = c.DownloadComment
	}
	return opts
}
