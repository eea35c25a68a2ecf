// Package pathutil converts between local paths and file URLs.
package pathutil

import (
	"net/url"
	"path/filepath"
	"strings"
)

// FileURL returns the file:// URL for an absolute local path.
func FileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// LocalPath returns the local path of a file:// URL. Plain absolute paths
// are returned unchanged. ok is false for any other URL.
func LocalPath(uri string) (string, bool) {
	if strings.HasPrefix(uri, "/") {
		return filepath.Clean(uri), true
	}
	u, err := url.Parse(uri)
	if err != nil || u.Scheme != "file" {
		return "", false
	}
	if u.Host != "" && u.Host != "localhost" {
		return "", false
	}
	if u.Path == "" {
		return "", false
	}
	return filepath.FromSlash(u.Path), true
}

// ParentDir returns the directory containing path. The parent of the
// filesystem root is the root itself.
func ParentDir(path string) string {
	clean := filepath.Clean(path)
	if IsFilesystemRoot(clean) {
		return clean
	}
	return filepath.Dir(clean)
}

// IsFilesystemRoot reports whether path points to filesystem root (POSIX or Windows volume root).
func IsFilesystemRoot(path string) bool {
	clean := filepath.Clean(path)
	if clean == string(filepath.Separator) {
		return true
	}
	volume := filepath.VolumeName(clean)
	return volume != "" && clean == volume+string(filepath.Separator)
}

// FirstField returns the program part of a command line template such as
// "dolphin %u".
func FirstField(command string) string {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
