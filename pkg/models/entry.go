package models

import (
	"github.com/sdejongh/mountsync/internal/platform"
)

// NoLocalFile is the destination label rendered for a transfer whose
// source file was absent before any destination was attempted.
const NoLocalFile = "no local file"

// TransferOutcome records the result of copying one file to one destination
type TransferOutcome struct {
	// File is the source-relative path as configured
	File string

	// Source is the resolved local path (source base + file)
	Source string

	// Destination is the directory the file was copied into.
	// Empty when SourceMissing is set.
	Destination string

	// MountDir is the configured destination label. Empty when SourceMissing is set.
	MountDir string

	// SourceMissing marks the single failure recorded for an absent source file
	SourceMissing bool

	// DryRun marks outcomes recorded without touching the filesystem
	DryRun bool

	// Err explains a failed outcome
	Err error
}

// DestinationLabel returns the destination, or NoLocalFile for a missing source
func (o TransferOutcome) DestinationLabel() string {
	if o.SourceMissing {
		return NoLocalFile
	}
	return o.Destination
}

// ReportPath renders the line written to the sync report for this outcome.
// A missing source has no destination, so its local path is shown instead.
// Every other line collapses the first double separator, matching the paths
// the copier actually wrote to.
func (o TransferOutcome) ReportPath(destBase string) string {
	if o.SourceMissing {
		return o.Source + " (" + NoLocalFile + ")"
	}
	return platform.CollapseDoubleSeparator(platform.Concat(destBase, o.MountDir, o.File))
}

// CleanOutcome records a path removed (or planned for removal) under a destination
type CleanOutcome struct {
	// Path is the resolved path under the destination
	Path string

	// MountDir is the destination the path belongs to
	MountDir string

	// DryRun marks a planned removal that was not performed
	DryRun bool
}

// DroppedTarget is a configured destination excluded by target validation
type DroppedTarget struct {
	MountDir string
	Path     string
	Reason   DropReason
}

// DropReason explains why a destination was excluded
type DropReason string

const (
	// DropMissing indicates the destination directory does not exist
	DropMissing DropReason = "directory does not exist"
	// DropDisconnected indicates the destination lists empty, which is how an unmounted share looks
	DropDisconnected DropReason = "not connected to remote host"
	// DropInaccessible indicates the destination could not be inspected
	DropInaccessible DropReason = "directory is not accessible"
)
