package errors

import (
	"strings"
	"unicode"
)

// maxPathLength bounds paths accepted from the command line and HTTP API.
const maxPathLength = 4096

// ValidatePath validates a file path supplied by a user for safety.
// Absolute and relative paths are both accepted.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}

// ValidateTypeName validates a type name used to configure exclusions.
// Names are simple identifiers; qualified names may contain dots.
func ValidateTypeName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidConfig, "type name cannot be empty")
	}

	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' && r != '.' {
			return New(ErrCodeInvalidConfig, "invalid type name: %q", name)
		}
	}

	return nil
}
