package desktop

import (
	"context"
	"encoding/xml"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/holon-run/mozhelper/pkg/capability"
)

// MimeDB implements capability.MimeResolver on the shared MIME database.
// Extension lookup uses the globs the Go runtime already loads; comments
// come from the per-type XML files and preferred applications from
// xdg-mime.
type MimeDB struct {
	dataDirs []string
	apps     *Applications
	run      Runner
}

// NewMimeDB creates a MimeDB over dataDirs. run executes xdg-mime.
func NewMimeDB(dataDirs []string, apps *Applications, run Runner) *MimeDB {
	return &MimeDB{dataDirs: dataDirs, apps: apps, run: run}
}

// ByExtension returns the type registered for ext, given without the dot.
func (m *MimeDB) ByExtension(ctx context.Context, ext string) (capability.MimeType, error) {
	ext = strings.TrimPrefix(ext, ".")
	if ext == "" {
		return capability.MimeType{}, capability.ErrNotFound
	}
	full := mime.TypeByExtension("." + ext)
	if full == "" {
		full = mime.TypeByExtension("." + strings.ToLower(ext))
	}
	if full == "" {
		return capability.MimeType{}, fmt.Errorf("extension %q: %w", ext, capability.ErrNotFound)
	}
	name, _, err := mime.ParseMediaType(full)
	if err != nil {
		return capability.MimeType{}, fmt.Errorf("extension %q maps to malformed type %q: %w", ext, full, err)
	}
	return capability.MimeType{Name: name, Comment: m.comment(name)}, nil
}

// ByName returns the type called name if the database knows it.
func (m *MimeDB) ByName(ctx context.Context, name string) (capability.MimeType, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if !validTypeName(name) {
		return capability.MimeType{}, fmt.Errorf("type %q: %w", name, capability.ErrNotFound)
	}
	if _, ok := m.typeFile(name); ok {
		return capability.MimeType{Name: name, Comment: m.comment(name)}, nil
	}
	if exts, err := mime.ExtensionsByType(name); err == nil && len(exts) > 0 {
		return capability.MimeType{Name: name, Comment: m.comment(name)}, nil
	}
	return capability.MimeType{}, fmt.Errorf("type %q: %w", name, capability.ErrNotFound)
}

// PreferredApplication returns the default application for mimeType.
func (m *MimeDB) PreferredApplication(ctx context.Context, mimeType string) (capability.Application, error) {
	id, err := m.run(ctx, "xdg-mime", "query", "default", mimeType)
	if err != nil {
		return capability.Application{}, err
	}
	id = firstLine(id)
	if id == "" {
		return capability.Application{}, fmt.Errorf("no default application for %s: %w", mimeType, capability.ErrNotFound)
	}
	return m.apps.Lookup(id)
}

func (m *MimeDB) typeFile(name string) (string, bool) {
	for _, dir := range m.dataDirs {
		path := filepath.Join(dir, "mime", filepath.FromSlash(name)+".xml")
		if _, err := os.Stat(path); err == nil {
			return path, true
		}
	}
	return "", false
}

// mimeTypeFile is the per-type file written by update-mime-database.
type mimeTypeFile struct {
	Comments []struct {
		Lang string `xml:"lang,attr"`
		Text string `xml:",chardata"`
	} `xml:"comment"`
}

// comment returns the untranslated description of name, or name itself.
func (m *MimeDB) comment(name string) string {
	path, ok := m.typeFile(name)
	if !ok {
		return name
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return name
	}
	var parsed mimeTypeFile
	if err := xml.Unmarshal(data, &parsed); err != nil {
		return name
	}
	for _, c := range parsed.Comments {
		if c.Lang == "" && strings.TrimSpace(c.Text) != "" {
			return strings.TrimSpace(c.Text)
		}
	}
	return name
}

func validTypeName(name string) bool {
	major, minor, found := strings.Cut(name, "/")
	return found && major != "" && minor != "" && !strings.ContainsAny(name, " \t\\") && !strings.Contains(minor, "/") && !strings.Contains(name, "..")
}

func firstLine(s string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(s), "\n")
	return strings.TrimSpace(line)
}
