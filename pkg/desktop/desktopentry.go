package desktop

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/holon-run/mozhelper/pkg/capability"
)

const desktopEntryGroup = "[Desktop Entry]"

// Applications finds desktop entries in the XDG application directories.
type Applications struct {
	dataDirs []string
}

// NewApplications searches the applications directory of each data dir.
func NewApplications(dataDirs []string) *Applications {
	return &Applications{dataDirs: dataDirs}
}

// Lookup loads the desktop entry with the given desktop file id. A bare
// name such as "kmail" is tried with the ".desktop" suffix.
func (a *Applications) Lookup(id string) (capability.Application, error) {
	if id == "" {
		return capability.Application{}, capability.ErrNotFound
	}
	if !strings.HasSuffix(id, ".desktop") {
		id += ".desktop"
	}
	for _, dir := range a.dataDirs {
		for _, rel := range idCandidates(id) {
			path := filepath.Join(dir, "applications", rel)
			app, err := parseDesktopEntry(path)
			if os.IsNotExist(err) {
				continue
			}
			if err != nil {
				return capability.Application{}, err
			}
			app.ID = id
			return app, nil
		}
	}
	return capability.Application{}, fmt.Errorf("desktop entry %s: %w", id, capability.ErrNotFound)
}

// idCandidates lists the relative paths a desktop file id may map to:
// "kde4-kmail.desktop" may live at "kde4/kmail.desktop".
func idCandidates(id string) []string {
	candidates := []string{id}
	rest := id
	prefix := ""
	for {
		head, tail, found := strings.Cut(rest, "-")
		if !found {
			break
		}
		prefix = filepath.Join(prefix, head)
		candidates = append(candidates, filepath.Join(prefix, tail))
		rest = tail
	}
	return candidates
}

func parseDesktopEntry(path string) (capability.Application, error) {
	f, err := os.Open(path)
	if err != nil {
		return capability.Application{}, err
	}
	defer f.Close()

	var app capability.Application
	inEntry := false
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "[") {
			inEntry = line == desktopEntryGroup
			continue
		}
		if !inEntry {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		switch strings.TrimSpace(key) {
		case "Name":
			app.Name = strings.TrimSpace(value)
		case "Exec":
			app.Exec = strings.TrimSpace(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return capability.Application{}, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if app.Name == "" {
		return capability.Application{}, fmt.Errorf("desktop entry %s has no Name", path)
	}
	return app, nil
}
