package errors

import (
	"strings"
	"unicode"
)

// ValidatePackageName validates a canonical package name for safety.
// It rejects names that could be used for path traversal or injection attacks
// once embedded in a provider URL path.
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - No path traversal sequences (.., //, etc.)
//   - Maximum length of 214 characters (npm's limit)
func ValidatePackageName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidArgument, "package name is required")
	}

	if len(name) > 214 {
		return New(ErrCodeInvalidArgument, "package name too long (max 214 characters)")
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidArgument, "package name contains invalid control characters")
		}
	}

	dangerousPatterns := []string{
		"..",   // Parent directory
		"//",   // Double slash
		"\x00", // Null byte
		"\\",   // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(name, pattern) {
			return New(ErrCodeInvalidArgument, "package name contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidArgument, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidArgument, "URL must use http or https scheme")
	}

	return nil
}
