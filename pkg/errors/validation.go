package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// versionRegex matches distribution and tool versions such as "1.41.1" or
// "1.1.0.Final".
var versionRegex = regexp.MustCompile(`^[0-9][0-9A-Za-z._-]*$`)

// ValidateVersion validates a distribution or analyzer version string.
// Versions end up in download URLs, directory names, and the deploy script
// name, so anything that could traverse paths or break a URL is rejected.
func ValidateVersion(version string) error {
	if version == "" {
		return New(ErrCodeInvalidVersion, "version cannot be empty")
	}
	if len(version) > 64 {
		return New(ErrCodeInvalidVersion, "version too long (max 64 characters)")
	}
	if strings.Contains(version, "..") {
		return New(ErrCodeInvalidVersion, "version contains invalid characters: %q", "..")
	}
	if !versionRegex.MatchString(version) {
		return New(ErrCodeInvalidVersion, "invalid version: %q", version)
	}
	return nil
}

// ValidateArtifactID validates an artifact identifier before it is used as
// a file name (e.g. "<id>-pom.xml").
//
// The rules mirror what can appear in a normalized analyzer identifier:
//   - No empty names
//   - No control characters or whitespace
//   - No path separators or traversal sequences
//   - Maximum length of 256 characters
func ValidateArtifactID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidArtifact, "artifact id cannot be empty")
	}
	if len(id) > 256 {
		return New(ErrCodeInvalidArtifact, "artifact id too long (max 256 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidArtifact, "artifact id contains invalid characters: %q", id)
		}
	}
	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidArtifact, "artifact id contains invalid characters: %q", pattern)
		}
	}
	return nil
}

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	return nil
}
