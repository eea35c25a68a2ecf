// Package preflight checks that the desktop services the helper relies on
// are reachable. The doctor command runs these checks.
package preflight

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"golang.org/x/net/http/httpproxy"

	helperlog "github.com/holon-run/mozhelper/pkg/log"
)

// CheckLevel represents the severity level of a preflight check
type CheckLevel int

const (
	// LevelError indicates a failure that breaks commands
	LevelError CheckLevel = iota
	// LevelWarn indicates a problem that degrades some commands
	LevelWarn
	// LevelInfo indicates informational output
	LevelInfo
)

// String returns the lower-case level name.
func (l CheckLevel) String() string {
	switch l {
	case LevelError:
		return "error"
	case LevelWarn:
		return "warn"
	default:
		return "ok"
	}
}

// CheckResult represents the result of a single preflight check
type CheckResult struct {
	Name    string     // Check name
	Level   CheckLevel // Severity level
	Message string     // Human-readable message
	Error   error      // Underlying error (if any)
}

// Check represents a single preflight check
type Check interface {
	// Name returns the check name
	Name() string
	// Run executes the check and returns a CheckResult
	Run(ctx context.Context) CheckResult
}

// Checker runs a collection of preflight checks
type Checker struct {
	checks  []Check
	skipped bool
	quiet   bool
}

// Config configures the preflight checker
type Config struct {
	// Skip skips all preflight checks
	Skip bool
	// Quiet suppresses info-level messages
	Quiet bool
	// Bus connects to the session bus. Nil skips the bus and portal checks.
	Bus BusProbe
	// Tools are programs the helper runs; missing ones are errors.
	Tools []string
	// OptionalTools are programs some commands use; missing ones are warnings.
	OptionalTools []string
	// ConfigDir is checked for writability when set.
	ConfigDir string
	// Proxy checks the proxy environment when true.
	Proxy bool
}

// BusProbe is the part of a session bus connection the checks need.
type BusProbe interface {
	Connect() error
	NameHasOwner(ctx context.Context, name string) (bool, error)
}

// Bus names the helper talks to.
const (
	PortalBusName        = "org.freedesktop.portal.Desktop"
	NotificationsBusName = "org.freedesktop.Notifications"
)

// NewChecker creates a new preflight checker with the given configuration
func NewChecker(cfg Config) *Checker {
	c := &Checker{
		skipped: cfg.Skip,
		quiet:   cfg.Quiet,
	}

	if cfg.Bus != nil {
		c.checks = append(c.checks,
			&SessionBusCheck{Bus: cfg.Bus},
			&BusNameCheck{Bus: cfg.Bus, BusName: PortalBusName, Purpose: "file dialogs"},
			&BusNameCheck{Bus: cfg.Bus, BusName: NotificationsBusName, Purpose: "download notifications"},
		)
	}
	for _, tool := range cfg.Tools {
		c.checks = append(c.checks, &ToolCheck{Tool: tool, Missing: LevelError})
	}
	for _, tool := range cfg.OptionalTools {
		c.checks = append(c.checks, &ToolCheck{Tool: tool, Missing: LevelWarn})
	}
	if cfg.ConfigDir != "" {
		c.checks = append(c.checks, &ConfigDirCheck{Path: cfg.ConfigDir})
	}
	if cfg.Proxy {
		c.checks = append(c.checks, &ProxyCheck{})
	}

	return c
}

// Results runs every check and returns the results in order.
func (c *Checker) Results(ctx context.Context) []CheckResult {
	if c.skipped {
		return nil
	}
	results := make([]CheckResult, 0, len(c.checks))
	for _, check := range c.checks {
		results = append(results, check.Run(ctx))
	}
	return results
}

// Run executes all registered checks and returns an error if any critical checks fail
func (c *Checker) Run(ctx context.Context) error {
	if c.skipped {
		helperlog.Info("preflight checks skipped")
		return nil
	}

	helperlog.Progress("running preflight checks")

	var errs []error
	warnings := 0
	for _, result := range c.Results(ctx) {
		switch result.Level {
		case LevelError:
			helperlog.Error("preflight check failed", "check", result.Name, "message", result.Message)
			if result.Error != nil {
				errs = append(errs, fmt.Errorf("%s: %w", result.Name, result.Error))
			} else {
				errs = append(errs, fmt.Errorf("%s: %s", result.Name, result.Message))
			}
		case LevelWarn:
			helperlog.Warn("preflight check warning", "check", result.Name, "message", result.Message)
			warnings++
		case LevelInfo:
			if !c.quiet {
				helperlog.Info("preflight check", "check", result.Name, "message", result.Message)
			}
		}
	}

	if warnings > 0 {
		helperlog.Info("preflight warnings", "count", warnings)
	}
	if len(errs) > 0 {
		var msgs []string
		for _, err := range errs {
			msgs = append(msgs, err.Error())
		}
		return fmt.Errorf("preflight checks failed:\n  - %s", strings.Join(msgs, "\n  - "))
	}

	helperlog.Progress("preflight checks passed")
	return nil
}

// SessionBusCheck checks that the D-Bus session bus is reachable
type SessionBusCheck struct {
	Bus BusProbe
}

func (c *SessionBusCheck) Name() string {
	return "session-bus"
}

func (c *SessionBusCheck) Run(ctx context.Context) CheckResult {
	if os.Getenv("DBUS_SESSION_BUS_ADDRESS") == "" && os.Getenv("XDG_RUNTIME_DIR") == "" {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: "neither DBUS_SESSION_BUS_ADDRESS nor XDG_RUNTIME_DIR is set; run inside a desktop session",
			Error:   errors.New("no session bus address"),
		}
	}
	if err := c.Bus.Connect(); err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelError,
			Message: "cannot connect to the session bus",
			Error:   err,
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: "session bus is reachable",
	}
}

// BusNameCheck checks that a service owns BusName on the session bus
type BusNameCheck struct {
	Bus     BusProbe
	BusName string
	// Purpose names the commands that depend on the service.
	Purpose string
}

func (c *BusNameCheck) Name() string {
	return c.BusName
}

func (c *BusNameCheck) Run(ctx context.Context) CheckResult {
	if err := c.Bus.Connect(); err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: "skipped: session bus unavailable",
			Error:   err,
		}
	}
	owned, err := c.Bus.NameHasOwner(ctx, c.BusName)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: fmt.Sprintf("cannot query owner of %s", c.BusName),
			Error:   err,
		}
	}
	if !owned {
		// Activatable services start on the first call.
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: fmt.Sprintf("%s is not running; %s may fail", c.BusName, c.Purpose),
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: fmt.Sprintf("%s is running", c.BusName),
	}
}

// ToolCheck checks that a program is on PATH
type ToolCheck struct {
	Tool string
	// Missing is the level reported when the tool cannot be found.
	Missing CheckLevel
}

func (c *ToolCheck) Name() string {
	return c.Tool
}

func (c *ToolCheck) Run(ctx context.Context) CheckResult {
	path, err := exec.LookPath(c.Tool)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   c.Missing,
			Message: fmt.Sprintf("%s command not found; install xdg-utils or the package providing it", c.Tool),
			Error:   err,
		}
	}
	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: fmt.Sprintf("found %s", path),
	}
}

// ConfigDirCheck checks if the configuration directory is writable
type ConfigDirCheck struct {
	Path string
}

func (c *ConfigDirCheck) Name() string {
	return "config-dir"
}

func (c *ConfigDirCheck) Run(ctx context.Context) CheckResult {
	absPath, err := filepath.Abs(c.Path)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: fmt.Sprintf("failed to resolve config directory: %s", c.Path),
			Error:   err,
		}
	}

	info, err := os.Stat(absPath)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(absPath, 0755); err != nil {
			return CheckResult{
				Name:    c.Name(),
				Level:   LevelWarn,
				Message: fmt.Sprintf("cannot create config directory: %s", absPath),
				Error:   err,
			}
		}
	case err != nil:
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: fmt.Sprintf("cannot access config directory: %s", absPath),
			Error:   err,
		}
	case !info.IsDir():
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: fmt.Sprintf("config path is not a directory: %s", absPath),
			Error:   fmt.Errorf("not a directory"),
		}
	}

	testFile := filepath.Join(absPath, fmt.Sprintf(".mozhelper-write-test-%d", os.Getpid()))
	f, err := os.Create(testFile)
	if err != nil {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelWarn,
			Message: fmt.Sprintf("config directory is not writable; SETDEFAULTBROWSER will fail: %s", absPath),
			Error:   err,
		}
	}
	f.Close()
	_ = os.Remove(testFile)

	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: fmt.Sprintf("config directory is writable: %s", absPath),
	}
}

// ProxyCheck reports the proxy settings GETPROXY will answer with
type ProxyCheck struct {
	// Env overrides the settings read from the environment.
	Env *httpproxy.Config
}

func (c *ProxyCheck) Name() string {
	return "proxy"
}

func (c *ProxyCheck) Run(ctx context.Context) CheckResult {
	env := c.Env
	if env == nil {
		env = httpproxy.FromEnvironment()
	}
	// ProxyFunc drops settings it cannot parse, so check them first.
	for _, setting := range []struct{ scheme, value string }{
		{"http", env.HTTPProxy},
		{"https", env.HTTPSProxy},
	} {
		if err := validateProxy(setting.value); err != nil {
			return CheckResult{
				Name:    c.Name(),
				Level:   LevelWarn,
				Message: fmt.Sprintf("%s proxy setting is malformed and ignored; GETPROXY answers DIRECT for %s URLs", setting.scheme, setting.scheme),
				Error:   err,
			}
		}
	}

	proxyFor := env.ProxyFunc()
	var parts []string
	for _, scheme := range []string{"http", "https"} {
		probe := &url.URL{Scheme: scheme, Host: "mozhelper.invalid"}
		proxy, err := proxyFor(probe)
		if err != nil {
			return CheckResult{
				Name:    c.Name(),
				Level:   LevelWarn,
				Message: fmt.Sprintf("cannot resolve the %s proxy", scheme),
				Error:   err,
			}
		}
		if proxy != nil {
			parts = append(parts, fmt.Sprintf("%s via %s", scheme, proxy.Host))
		}
	}
	if len(parts) == 0 {
		return CheckResult{
			Name:    c.Name(),
			Level:   LevelInfo,
			Message: "no proxy configured; GETPROXY answers DIRECT",
		}
	}
	msg := strings.Join(parts, ", ")
	if env.NoProxy != "" {
		msg += fmt.Sprintf(" (no_proxy: %s)", env.NoProxy)
	}
	return CheckResult{
		Name:    c.Name(),
		Level:   LevelInfo,
		Message: msg,
	}
}

// validateProxy accepts what httpproxy accepts: a URL, or a bare
// host[:port] read as an http URL.
func validateProxy(value string) error {
	if value == "" {
		return nil
	}
	u, err := url.Parse(value)
	if err == nil && u.Scheme != "" && u.Host != "" {
		return nil
	}
	if _, herr := url.Parse("http://" + value); herr == nil {
		return nil
	}
	if err == nil {
		err = fmt.Errorf("no host in %q", value)
	}
	return fmt.Errorf("invalid proxy address %q: %w", value, err)
}
