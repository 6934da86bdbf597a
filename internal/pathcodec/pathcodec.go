// Package pathcodec builds and validates materialized directory paths.
// Everything here is pure: the same inputs always produce the same outputs,
// and SanitizeName is idempotent.
package pathcodec

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// MaxNameLength is the maximum directory name length in runes.
const MaxNameLength = 255

// illegalChars are path separators and filesystem-reserved characters that
// may never appear in a directory name.
const illegalChars = `/\:*?"<>|`

// reservedNames are tokens that cannot be used as directory names, matched
// case-insensitively.
var reservedNames = map[string]struct{}{
	".": {}, "..": {},
	"CON": {}, "PRN": {}, "AUX": {}, "NUL": {},
	"COM1": {}, "COM2": {}, "COM3": {}, "COM4": {}, "COM5": {},
	"COM6": {}, "COM7": {}, "COM8": {}, "COM9": {},
	"LPT1": {}, "LPT2": {}, "LPT3": {}, "LPT4": {}, "LPT5": {},
	"LPT6": {}, "LPT7": {}, "LPT8": {}, "LPT9": {},
}

// SanitizeName normalizes a raw name into a legal path segment: trims and
// collapses whitespace, strips illegal and control characters, and strips
// leading/trailing dots. Applying it twice yields the same result.
func SanitizeName(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		// Tabs and newlines count as whitespace to collapse, not garbage to
		// strip.
		if r == '\t' || r == '\n' || r == '\r' {
			b.WriteRune(' ')
			continue
		}
		if r < 0x20 || r == 0x7f {
			continue
		}
		if strings.ContainsRune(illegalChars, r) {
			continue
		}
		b.WriteRune(r)
	}

	// Collapse internal whitespace runs to single spaces, then strip any
	// leading/trailing mix of dots and spaces in one pass so a second
	// sanitize finds nothing left to remove.
	s := strings.Join(strings.Fields(b.String()), " ")
	return strings.Trim(s, ". ")
}

// ValidateName is the single gate used before any create or rename. It
// rejects empty names, names over MaxNameLength runes, illegal characters
// and reserved tokens.
func ValidateName(name string) error {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return fmt.Errorf("directory name is required")
	}
	if utf8.RuneCountInString(trimmed) > MaxNameLength {
		return fmt.Errorf("directory name exceeds %d characters", MaxNameLength)
	}
	for _, r := range trimmed {
		if r < 0x20 || r == 0x7f {
			return fmt.Errorf("directory name contains control characters")
		}
		if strings.ContainsRune(illegalChars, r) {
			return fmt.Errorf("directory name contains illegal character %q", r)
		}
	}
	if _, ok := reservedNames[strings.ToUpper(trimmed)]; ok {
		return fmt.Errorf("directory name %q is reserved", trimmed)
	}
	// Names like "..." survive the checks above but sanitize away to nothing,
	// which would produce an empty path segment.
	if SanitizeName(trimmed) == "" {
		return fmt.Errorf("directory name %q contains no usable characters", trimmed)
	}
	return nil
}

// BuildPath joins a parent path and a name into a materialized path. An
// empty or "/" parent yields a root-level path.
func BuildPath(parentPath, name string) string {
	segment := SanitizeName(name)
	if parentPath == "" || parentPath == "/" {
		return "/" + segment
	}
	return strings.TrimRight(parentPath, "/") + "/" + segment
}

// Level counts the non-empty segments of a path. Root-level directories have
// level 1.
func Level(path string) int {
	level := 0
	for _, segment := range strings.Split(path, "/") {
		if segment != "" {
			level++
		}
	}
	return level
}

// IsDescendantPath reports whether candidate lies strictly inside ancestor's
// subtree.
func IsDescendantPath(candidate, ancestor string) bool {
	if candidate == ancestor {
		return false
	}
	return strings.HasPrefix(candidate, strings.TrimRight(ancestor, "/")+"/")
}

// ParentPath returns the path of a node's parent, or "/" for root-level
// nodes.
func ParentPath(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx <= 0 {
		return "/"
	}
	return path[:idx]
}
