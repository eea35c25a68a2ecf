package helper

import (
	"strconv"
	"strings"

	"github.com/holon-run/mozhelper/pkg/capability"
)

// parseFilters reads the browser's filter list: one "patterns|label" entry
// per line, patterns separated by spaces. Patterns containing a slash are
// MIME types. An entry without a label is labelled by its patterns.
func parseFilters(list string) []capability.Filter {
	var filters []capability.Filter
	for _, entry := range strings.Split(list, "\n") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		patterns, label, found := strings.Cut(entry, "|")
		patterns = strings.TrimSpace(patterns)
		if !found || strings.TrimSpace(label) == "" {
			label = patterns
		}
		f := capability.Filter{Label: strings.TrimSpace(label)}
		for _, p := range strings.Fields(patterns) {
			if strings.Contains(p, "/") {
				f.MimeTypes = append(f.MimeTypes, p)
			} else {
				f.Patterns = append(f.Patterns, p)
			}
		}
		if len(f.Patterns) == 0 && len(f.MimeTypes) == 0 {
			continue
		}
		filters = append(filters, f)
	}
	return filters
}

// clampFilter bounds a requested filter index to the available filters.
func clampFilter(index, count int) int {
	if index < 0 || count == 0 {
		return 0
	}
	if index >= count {
		return count - 1
	}
	return index
}

// lenientInt parses s as an integer, treating anything malformed as 0.
func lenientInt(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
