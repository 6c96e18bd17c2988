package errors

import (
	"strings"
	"unicode"
)

// ValidateModelPath validates a dotted subsystem path such as "cycle.d1".
// An empty path is valid and selects the whole model.
//
// The validation rules are intentionally conservative:
//   - No control characters
//   - No empty segments (leading, trailing or doubled dots)
//   - Maximum length of 500 characters
func ValidateModelPath(path string) error {
	if path == "" {
		return nil
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "model path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "model path contains invalid control characters")
		}
	}

	for _, seg := range strings.Split(path, ".") {
		if strings.TrimSpace(seg) == "" {
			return New(ErrCodeInvalidPath, "model path %q contains an empty segment", path)
		}
	}

	return nil
}

// ValidateOutputName validates an output base name for safety.
// It prevents path traversal when names come from API requests.
//
// Validation rules:
//   - Name cannot be empty
//   - No null bytes or control characters
//   - No absolute paths
//   - No path traversal sequences (..)
//   - No backslashes
func ValidateOutputName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidPath, "output name cannot be empty")
	}

	for _, r := range name {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "output name contains invalid characters")
		}
	}

	if strings.HasPrefix(name, "/") {
		return New(ErrCodeInvalidPath, "output name must be relative (cannot start with /)")
	}

	if strings.Contains(name, "..") {
		return New(ErrCodeInvalidPath, "output name cannot contain path traversal sequences (..)")
	}

	if strings.Contains(name, "\\") {
		return New(ErrCodeInvalidPath, "output name cannot contain backslashes")
	}

	return nil
}
