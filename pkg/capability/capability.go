// Package capability defines the host services the helper brokers for the
// browser. Handlers only see these interfaces; pkg/desktop provides the
// freedesktop implementations.
//
// Every call is synchronous from the caller's point of view. Dialog calls
// may block for as long as the user keeps the dialog open.
package capability

import (
	"context"
	"errors"
)

var (
	// ErrNotFound reports that the requested type, scheme or application
	// does not exist on the host.
	ErrNotFound = errors.New("not found")
	// ErrCancelled reports that the user dismissed a dialog.
	ErrCancelled = errors.New("cancelled by user")
)

// Filter is one entry of a file dialog filter list.
type Filter struct {
	// Label is the human-readable name shown in the dialog.
	Label string
	// Patterns are glob patterns such as "*.html".
	Patterns []string
	// MimeTypes are MIME types such as "text/html".
	MimeTypes []string
}

// OpenRequest describes a file open dialog.
type OpenRequest struct {
	Title       string
	StartDir    string
	Filters     []Filter
	FilterIndex int
	Multiple    bool
	// LocalOnly restricts the selection to files on the local filesystem.
	LocalOnly bool
	// Parent is the X11 window id of the owning browser window, or 0.
	Parent int64
}

// SaveRequest describes a file save dialog.
type SaveRequest struct {
	Title string
	// Suggested is the proposed target, either a bare name or a path.
	Suggested   string
	Filters     []Filter
	FilterIndex int
	LocalOnly   bool
	Parent      int64
}

// DirectoryRequest describes a directory picker.
type DirectoryRequest struct {
	Title     string
	StartDir  string
	LocalOnly bool
	Parent    int64
}

// Selection is the outcome of an accepted file dialog.
type Selection struct {
	// FilterIndex is the index of the filter active when the dialog closed.
	FilterIndex int
	// URIs are the selected locations, as URIs.
	URIs []string
}

// FileChooser presents interactive file, directory and application pickers.
type FileChooser interface {
	ChooseOpen(ctx context.Context, req OpenRequest) (Selection, error)
	ChooseSave(ctx context.Context, req SaveRequest) (Selection, error)
	// ChooseDirectory returns the URI of the chosen directory.
	ChooseDirectory(ctx context.Context, req DirectoryRequest) (string, error)
	// ChooseApplication returns the command line of the chosen application.
	ChooseApplication(ctx context.Context, title string, parent int64) (string, error)
}

// ProtocolResolver answers questions about URL schemes.
type ProtocolResolver interface {
	// ResolveProxy returns the proxy URL to use for rawURL, or "" for a
	// direct connection.
	ResolveProxy(ctx context.Context, rawURL string) (string, error)
	IsKnownProtocol(ctx context.Context, scheme string) bool
	// AppNameForProtocol returns the display name of the handler for scheme.
	AppNameForProtocol(ctx context.Context, scheme string) (string, error)
}

// MimeType describes an entry of the MIME database.
type MimeType struct {
	Name    string
	Comment string
}

// Application describes an installed desktop application.
type Application struct {
	// ID is the desktop file id, e.g. "org.kde.dolphin.desktop".
	ID   string
	Name string
	// Exec is the command line template from the desktop file.
	Exec string
}

// MimeResolver looks up MIME types and their preferred applications.
type MimeResolver interface {
	ByExtension(ctx context.Context, ext string) (MimeType, error)
	ByName(ctx context.Context, name string) (MimeType, error)
	PreferredApplication(ctx context.Context, mimeType string) (Application, error)
}

// AppLauncher starts processes and opens URLs on the host.
type AppLauncher interface {
	LaunchURL(ctx context.Context, url string) error
	LaunchCommand(ctx context.Context, command string, args ...string) error
	LaunchService(ctx context.Context, desktopID string, urls ...string) error
	// FindExecutable resolves name to an absolute path using PATH.
	FindExecutable(name string) (string, error)
}

// Notification is a desktop notification event.
type Notification struct {
	// Event identifies the kind of notification, e.g. "downloadfinished".
	Event string
	Title string
	Text  string
}

// Notifier delivers desktop notifications.
type Notifier interface {
	Emit(ctx context.Context, n Notification) error
}

// ConfigStore persists the helper's host-side settings.
type ConfigStore interface {
	DefaultBrowser() (string, error)
	SetDefaultBrowser(name string, allTypes bool) error
}

// Capabilities bundles every service a handler may call.
type Capabilities struct {
	Files     FileChooser
	Protocols ProtocolResolver
	Mime      MimeResolver
	Launcher  AppLauncher
	Notifier  Notifier
	Config    ConfigStore
}

// Validate reports the first missing capability.
func (c Capabilities) Validate() error {
	switch {
	case c.Files == nil:
		return errors.New("file chooser capability is required")
	case c.Protocols == nil:
		return errors.New("protocol resolver capability is required")
	case c.Mime == nil:
		return errors.New("mime resolver capability is required")
	case c.Launcher == nil:
		return errors.New("app launcher capability is required")
	case c.Notifier == nil:
		return errors.New("notifier capability is required")
	case c.Config == nil:
		return errors.New("config store capability is required")
	}
	return nil
}
