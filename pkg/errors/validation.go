package errors

import (
	"math"
	"strings"
	"unicode"
)

// MaxNodeKeyLength bounds the length of a node id in a graph document.
const MaxNodeKeyLength = 256

// ValidateNodeKey validates a node id taken from a graph document or a
// request. Keys must be non-empty, at most [MaxNodeKeyLength] bytes and free
// of control characters.
func ValidateNodeKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}
	if len(key) > MaxNodeKeyLength {
		return New(ErrCodeInvalidInput, "node id too long (max %d characters)", MaxNodeKeyLength)
	}
	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node id %q contains control characters", key)
		}
	}
	return nil
}

// ValidateCoordinate rejects NaN and infinite coordinates. The layout
// sentinel is finite and therefore allowed.
func ValidateCoordinate(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return New(ErrCodeInvalidInput, "%s must be finite, got %v", name, v)
	}
	return nil
}

// ValidatePositive checks that a configuration value is finite and > 0.
func ValidatePositive(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return New(ErrCodeInvalidConfig, "%s must be positive, got %v", name, v)
	}
	return nil
}

// ValidateNonNegative checks that a configuration value is finite and >= 0.
func ValidateNonNegative(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return New(ErrCodeInvalidConfig, "%s must not be negative, got %v", name, v)
	}
	return nil
}

// ValidateDistance checks that a query distance is finite and >= 0.
func ValidateDistance(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return New(ErrCodeInvalidInput, "%s must be a finite distance >= 0, got %v", name, v)
	}
	return nil
}

// ValidateFileExtension checks that path ends in one of exts (compared
// case-insensitively, each including the leading dot) and returns the
// matched extension in lower case.
func ValidateFileExtension(path string, exts ...string) (string, error) {
	lower := strings.ToLower(path)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return ext, nil
		}
	}
	return "", New(ErrCodeInvalidFormat, "unsupported file type %q (want one of %s)", path, strings.Join(exts, ", "))
}
