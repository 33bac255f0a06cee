package errors

import (
	"strings"
	"unicode"
)

// Limits for free-text fields that end up in persisted graphs or blueprint
// headers.
const (
	MaxNameLength        = 128
	MaxDescriptionLength = 2048
)

// ValidateName validates a graph or package name.
//
// The rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of MaxNameLength characters
func ValidateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return New(ErrCodeInvalidInput, "name cannot be empty")
	}

	if len(name) > MaxNameLength {
		return New(ErrCodeInvalidInput, "name too long (max %d characters)", MaxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "name contains invalid control characters")
		}
	}
	return nil
}

// ValidateDescription validates the free-text description embedded in a
// blueprint header. Newlines and tabs are allowed, other control characters
// are not.
func ValidateDescription(desc string) error {
	if len(desc) > MaxDescriptionLength {
		return New(ErrCodeInvalidBlueprint, "description too long (max %d characters)", MaxDescriptionLength)
	}
	for _, r := range desc {
		if r == '\n' || r == '\t' || r == '\r' {
			continue
		}
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidBlueprint, "description contains invalid control characters")
		}
	}
	return nil
}

// ValidatePath validates an output file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 500
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
