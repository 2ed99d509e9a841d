package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateServiceURL validates a service URL string for safety.
// It ensures the URL has a safe scheme (http or https) and contains no
// control characters.
func ValidateServiceURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidService, "service URL cannot be empty")
	}

	if len(rawURL) > 2048 {
		return New(ErrCodeInvalidService, "service URL too long (max 2048 characters)")
	}

	for _, r := range rawURL {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidService, "service URL contains invalid control characters")
		}
	}

	if strings.Contains(rawURL, "://") &&
		!strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidService, "service URL must use http or https scheme")
	}

	return nil
}

// entitySetNameRegex matches valid OData simple identifiers.
var entitySetNameRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateEntitySetName validates an entity set name. OData entity set names
// are simple identifiers: a letter or underscore followed by letters, digits,
// or underscores.
func ValidateEntitySetName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidEntitySet, "entity set name cannot be empty")
	}

	if len(name) > 128 {
		return New(ErrCodeInvalidEntitySet, "entity set name too long (max 128 characters)")
	}

	if !entitySetNameRegex.MatchString(name) {
		return New(ErrCodeInvalidEntitySet, "invalid entity set name: %q", name)
	}

	return nil
}

// profileNameRegex matches valid profile names.
var profileNameRegex = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// ValidateProfileName validates a named profile from the configuration file.
// Profile names become cache namespace prefixes, so the character set is
// intentionally conservative.
func ValidateProfileName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidProfile, "profile name cannot be empty")
	}

	if len(name) > 64 {
		return New(ErrCodeInvalidProfile, "profile name too long (max 64 characters)")
	}

	if !profileNameRegex.MatchString(name) {
		return New(ErrCodeInvalidProfile, "invalid profile name: %q", name)
	}

	return nil
}

// ValidateOutputPath validates a user-supplied output file path.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
func ValidateOutputPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}

	const maxPathLength = 500
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidInput, "output path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output path contains invalid characters")
		}
	}

	return nil
}
