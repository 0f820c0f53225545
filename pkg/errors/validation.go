package errors

import (
	"strings"
	"unicode"
)

// MaxNodeNameLength bounds scene node names.
const MaxNodeNameLength = 1024

// ValidateNodeName validates a scene node name.
//
// Names are matched byte-for-byte by the stream validator, so the rules only
// reject values that cannot round-trip through a manifest:
//   - No empty names
//   - No control characters (including null bytes)
//   - No leading or trailing whitespace
//   - Maximum length of MaxNodeNameLength bytes
func ValidateNodeName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidNodeName, "node name cannot be empty")
	}

	if len(name) > MaxNodeNameLength {
		return New(ErrCodeInvalidNodeName, "node name too long (max %d characters)", MaxNodeNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidNodeName, "node name contains invalid control characters")
		}
	}

	if strings.TrimSpace(name) != name {
		return New(ErrCodeInvalidNodeName, "node name %q has surrounding whitespace", name)
	}

	return nil
}

// ValidateGroupName validates the display name of a scene node group.
func ValidateGroupName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidManifest, "group name cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidManifest, "group name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidManifest, "group name contains invalid control characters")
		}
	}
	// Group names become file and document keys.
	if strings.ContainsAny(name, "/\\") {
		return New(ErrCodeInvalidManifest, "group name cannot contain path separators")
	}
	return nil
}

// ValidateSceneKey validates the key a manifest is stored under.
// It prevents path traversal when the key is joined onto a store directory.
func ValidateSceneKey(key string) error {
	if key == "" {
		return New(ErrCodeInvalidPath, "scene key cannot be empty")
	}

	const maxKeyLength = 500
	if len(key) > maxKeyLength {
		return New(ErrCodeInvalidPath, "scene key too long (max %d characters)", maxKeyLength)
	}

	for _, r := range key {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "scene key contains invalid characters")
		}
	}

	if strings.HasPrefix(key, "/") {
		return New(ErrCodeInvalidPath, "scene key must be relative (cannot start with /)")
	}

	if strings.Contains(key, "..") {
		return New(ErrCodeInvalidPath, "scene key cannot contain path traversal sequences (..)")
	}

	if strings.Contains(key, "\\") {
		return New(ErrCodeInvalidPath, "scene key cannot contain backslashes")
	}

	return nil
}
