package config

import (
	"fmt"
	"strings"
	"sync"

	helperlog "github.com/holon-run/mozhelper/pkg/log"
)

// WebTypes are the MIME types and scheme handlers a browser claims when it
// becomes the default for all types.
var WebTypes = []string{
	"text/html",
	"application/xhtml+xml",
	"x-scheme-handler/http",
	"x-scheme-handler/https",
}

// Associator makes desktopID the default application for mimeTypes.
type Associator func(desktopID string, mimeTypes ...string) error

// Store implements capability.ConfigStore on the configuration file.
// Writes touch only default_browser; the rest of the file is written back
// as it was read.
type Store struct {
	mu      sync.Mutex
	path    string
	browser string
	// Associate is called for SETDEFAULTBROWSER ALLTYPES. Nil skips the
	// association.
	Associate Associator
}

// NewStore creates a Store for the file at path. cfg is the file content
// as loaded, before any command line overrides.
func NewStore(path string, cfg Config) *Store {
	return &Store{path: path, browser: cfg.DefaultBrowser}
}

// Path returns the file the store writes to.
func (s *Store) Path() string {
	return s.path
}

// DefaultBrowser returns the configured default browser, "" if unset.
func (s *Store) DefaultBrowser() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.browser, nil
}

// SetDefaultBrowser records name as the default browser and writes the file.
// With allTypes the browser is also associated with WebTypes.
func (s *Store) SetDefaultBrowser(name string, allTypes bool) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("browser name is required")
	}

	s.mu.Lock()
	onDisk, err := Load(s.path)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	onDisk.DefaultBrowser = name
	if err := Save(s.path, onDisk); err != nil {
		s.mu.Unlock()
		return err
	}
	s.browser = name
	s.mu.Unlock()
	helperlog.Info("default browser updated", "browser", name, "path", s.path)

	if !allTypes || s.Associate == nil {
		return nil
	}
	desktopID := strings.TrimSuffix(name, ".desktop") + ".desktop"
	if err := s.Associate(desktopID, WebTypes...); err != nil {
		return fmt.Errorf("failed to associate %s with web types: %w", desktopID, err)
	}
	return nil
}
