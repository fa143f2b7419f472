package errors

import (
	"math"
	"strings"
	"unicode"
)

// ValidateNodeName validates a node identifier read from an edge list.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 1024 characters
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "node name cannot be empty")
	}

	if len(name) > 1024 {
		return New(ErrCodeInvalidInput, "node name too long (max 1024 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node name contains invalid control characters")
		}
	}

	return nil
}

// ValidateWeight validates an edge weight.
// Weights must be finite and non-negative so that similarity stays in [0, 1].
func ValidateWeight(w float64) error {
	if math.IsNaN(w) || math.IsInf(w, 0) {
		return New(ErrCodeInvalidInput, "edge weight must be finite, got %v", w)
	}
	if w < 0 {
		return New(ErrCodeInvalidInput, "edge weight must not be negative, got %v", w)
	}
	return nil
}

// ValidateLevel validates a dendrogram cut level.
// Any finite value or +Inf is accepted; NaN and -Inf are rejected.
func ValidateLevel(level float64) error {
	if math.IsNaN(level) {
		return New(ErrCodeInvalidInput, "cut level must be a number")
	}
	if math.IsInf(level, -1) {
		return New(ErrCodeInvalidInput, "cut level must not be -Inf")
	}
	return nil
}

// ValidatePath validates a local file path given on the command line or in a
// configuration file.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
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

// ValidateURL validates a URL string for safety.
// It ensures the URL has one of the allowed schemes.
func ValidateURL(rawURL string, schemes ...string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}
	for _, s := range schemes {
		if strings.HasPrefix(rawURL, s+"://") {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "URL must use one of the schemes %v", schemes)
}
