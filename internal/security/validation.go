// Package security provides path and key validation for files the service
// writes locally and objects it writes remotely.
package security

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"
)

// maxObjectKeyLen is the S3 limit on object key length in bytes.
const maxObjectKeyLen = 1024

// ValidateWithinDir ensures path resolves inside baseDir, preventing a
// crafted file name from escaping the output directory.
func ValidateWithinDir(path, baseDir string) error {
	if path == "" {
		return fmt.Errorf("empty path")
	}

	absPath, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return fmt.Errorf("invalid path: %w", err)
	}

	absBaseDir, err := filepath.Abs(filepath.Clean(baseDir))
	if err != nil {
		return fmt.Errorf("invalid base directory: %w", err)
	}

	rel, err := filepath.Rel(absBaseDir, absPath)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("path %q must be within %q (attempted path traversal)", path, baseDir)
	}

	return nil
}

// ValidateObjectKey rejects keys the object store would refuse or that could
// be misread as a different path.
func ValidateObjectKey(key string) error {
	if key == "" {
		return fmt.Errorf("empty object key")
	}
	if len(key) > maxObjectKeyLen {
		return fmt.Errorf("object key exceeds %d bytes", maxObjectKeyLen)
	}
	if strings.HasPrefix(key, "/") {
		return fmt.Errorf("object key %q must not start with /", key)
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return fmt.Errorf("object key %q contains an empty or relative segment", key)
		}
	}
	if i := strings.IndexFunc(key, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r)
	}); i >= 0 {
		return fmt.Errorf("object key %q contains whitespace or control characters", key)
	}
	return nil
}
