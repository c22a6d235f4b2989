package utils

import (
	"errors"
	"path/filepath"
	"strings"
)

// ErrUnsafeFilename is returned when nothing usable remains of an uploaded
// filename after sanitization.
var ErrUnsafeFilename = errors.New("unsafe filename")

// SanitizeFilename reduces a client-supplied filename to a safe basename
// for storage on disk. Directory components are stripped, so a traversal
// attempt like "../../etc/passwd" collapses to "passwd" and can never
// escape the upload directory. Allowed characters are ASCII
// letters, digits, '.', '-' and '_'; everything else becomes '_'.
func SanitizeFilename(name string) (string, error) {
	// Strip any directory part, accepting both separator styles since the
	// client OS is unknown.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(filepath.Clean("/" + name))
	if name == "/" || name == "." {
		return "", ErrUnsafeFilename
	}

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '.' || r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}

	// leading dots would produce hidden files or "."/".." style names
	cleaned := strings.TrimLeft(b.String(), ".")
	if cleaned == "" {
		return "", ErrUnsafeFilename
	}
	return cleaned, nil
}
