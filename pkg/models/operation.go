package models

import (
	"strconv"
	"strings"
)

// RunConfig holds the resolved inputs of a single sync run.
// A nil Files or MountDirs slice means the value was never supplied,
// which is different from an explicitly empty list.
type RunConfig struct {
	// SourceBase is prepended verbatim to every entry in Files
	SourceBase string

	// DestBase is prepended verbatim to every entry in MountDirs
	DestBase string

	// Files are source-relative paths, in configured order
	Files []string

	// CleanPaths are removed under every validated destination before copying
	CleanPaths []string

	// MountDirs are destination subpaths expected to be backed by a remote share
	MountDirs []string
}

// Ready reports whether the run has everything it needs to perform operations.
func (c *RunConfig) Ready() bool {
	return c != nil && c.Files != nil && c.MountDirs != nil
}

// Clone returns a deep copy so the engine can never alias caller slices.
func (c *RunConfig) Clone() *RunConfig {
	if c == nil {
		return nil
	}
	return &RunConfig{
		SourceBase: c.SourceBase,
		DestBase:   c.DestBase,
		Files:      cloneStrings(c.Files),
		CleanPaths: cloneStrings(c.CleanPaths),
		MountDirs:  cloneStrings(c.MountDirs),
	}
}

// Validate checks structural problems that would make every path meaningless
func (c *RunConfig) Validate() error {
	if c == nil {
		return &ValidationError{Field: "RunConfig", Message: "configuration is required"}
	}
	for i, f := range c.Files {
		if strings.TrimSpace(f) == "" {
			return &ValidationError{Field: "Files", Message: "entry " + strconv.Itoa(i) + " is empty"}
		}
	}
	for i, p := range c.CleanPaths {
		if strings.TrimSpace(p) == "" {
			return &ValidationError{Field: "CleanPaths", Message: "entry " + strconv.Itoa(i) + " is empty"}
		}
	}
	return nil
}

// RunFlags toggles the stages of a run. Set before the run starts.
type RunFlags struct {
	PerformCopy       bool
	PerformClean      bool
	DryRunCopy        bool
	DryRunClean       bool
	Quiet             bool
	WriteReportToFile bool
}

// DefaultRunFlags returns the flags used when nothing is overridden
func DefaultRunFlags() RunFlags {
	return RunFlags{
		PerformCopy:       true,
		PerformClean:      true,
		WriteReportToFile: true,
	}
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
