package desktop

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	helperlog "github.com/holon-run/mozhelper/pkg/log"
)

// Starter starts a detached process and returns once it is running.
type Starter func(name string, args ...string) error

// StartDetached starts name without waiting for it. The child is reaped in
// the background so it never lingers as a zombie.
func StartDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	go func() {
		if err := cmd.Wait(); err != nil {
			helperlog.Debug("launched process exited", "command", name, "error", err)
		}
	}()
	return nil
}

// Launcher implements capability.AppLauncher with xdg-open and gtk-launch.
type Launcher struct {
	start Starter
	// Opener opens URLs with the user's preferred application.
	Opener string
	// ServiceLauncher starts an application by desktop file id.
	ServiceLauncher string
}

// NewLauncher creates a Launcher that starts processes with start.
func NewLauncher(start Starter) *Launcher {
	return &Launcher{start: start, Opener: "xdg-open", ServiceLauncher: "gtk-launch"}
}

// LaunchURL opens url, which may also be a local path.
func (l *Launcher) LaunchURL(ctx context.Context, url string) error {
	if url == "" {
		return fmt.Errorf("empty url")
	}
	return l.start(l.Opener, url)
}

// LaunchCommand runs command with args directly, without a shell.
func (l *Launcher) LaunchCommand(ctx context.Context, command string, args ...string) error {
	if command == "" {
		return fmt.Errorf("empty command")
	}
	return l.start(command, args...)
}

// LaunchService starts the application with the given desktop file id.
func (l *Launcher) LaunchService(ctx context.Context, desktopID string, urls ...string) error {
	id := strings.TrimSuffix(desktopID, ".desktop")
	if id == "" {
		return fmt.Errorf("empty desktop id")
	}
	return l.start(l.ServiceLauncher, append([]string{id}, urls...)...)
}

// FindExecutable resolves name through PATH to an absolute path.
func (l *Launcher) FindExecutable(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("executable %q not found: %w", name, err)
	}
	return filepath.Abs(path)
}
