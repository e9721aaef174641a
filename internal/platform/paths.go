package platform

import (
	"runtime"
	"strings"

	"github.com/mitchellh/go-homedir"
)

// Separator is the separator used when composing sync paths.
// Composition is textual, so configured entries are expected to use it.
const Separator = "/"

// Concat joins path elements by plain string concatenation.
// Unlike filepath.Join it never cleans, so configured leading and
// trailing separators are preserved exactly as written.
func Concat(elem ...string) string {
	return strings.Join(elem, "")
}

// CollapseDoubleSeparator replaces the first occurrence of a doubled
// separator with a single one. It is deliberately not a normalizer:
// any further doubled separators are left in place.
func CollapseDoubleSeparator(path string) string {
	return strings.Replace(path, Separator+Separator, Separator, 1)
}

// DirPortion returns everything before the final separator.
// A path without a separator has an empty directory portion.
func DirPortion(path string) string {
	idx := strings.LastIndex(path, Separator)
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// ExpandHome expands a leading ~ to the user's home directory
func ExpandHome(path string) (string, error) {
	if path == "" {
		return path, nil
	}
	return homedir.Expand(path)
}

// IsUNCPath checks if a path is a UNC path (Windows network share)
func IsUNCPath(path string) bool {
	if runtime.GOOS != "windows" {
		return false
	}
	return strings.HasPrefix(path, "\\\\") || strings.HasPrefix(path, "//")
}

// ValidatePath checks if a path is valid for the current platform
func ValidatePath(path string) error {
	if path == "" {
		return &PathError{Path: path, Message: "path is empty"}
	}

	// Check for invalid characters based on OS
	if runtime.GOOS == "windows" {
		invalidChars := []string{"<", ">", "\"", "|", "?", "*"}
		for _, char := range invalidChars {
			if strings.Contains(path, char) && !IsUNCPath(path) {
				return &PathError{Path: path, Message: "path contains invalid character: " + char}
			}
		}
	}

	return nil
}

// PathError represents a path validation error
type PathError struct {
	Path    string
	Message string
}

func (e *PathError) Error() string {
	return "invalid path '" + e.Path + "': " + e.Message
}
