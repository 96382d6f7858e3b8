package errors

import (
	"strings"
	"unicode"
)

// maxTypeKeyLength bounds registry keys.
const maxTypeKeyLength = 256

// ValidateTypeKey validates a node type key such as "math/sum".
//
// The rules are:
//   - No empty keys
//   - No control characters or null bytes
//   - No whitespace-only segments
//   - No leading, trailing or doubled "/"
//   - Maximum length of 256 characters
//
// A key without any "/" is valid and has an empty category.
func ValidateTypeKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidInput, "node type key cannot be empty")
	}

	if len(key) > maxTypeKeyLength {
		return New(ErrCodeInvalidInput, "node type key too long (max %d characters)", maxTypeKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "node type key contains invalid control characters")
		}
	}

	if strings.HasPrefix(key, "/") || strings.HasSuffix(key, "/") {
		return New(ErrCodeInvalidInput, "node type key cannot start or end with /: %q", key)
	}

	for _, segment := range strings.Split(key, "/") {
		if strings.TrimSpace(segment) == "" {
			return New(ErrCodeInvalidInput, "node type key has an empty segment: %q", key)
		}
	}

	return nil
}

// ValidatePath validates a file path passed on the command line.
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
