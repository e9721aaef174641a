package sync

import (
	"context"
	"io/fs"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/sdejongh/mountsync/internal/platform"
	"github.com/sdejongh/mountsync/pkg/logging"
	"github.com/sdejongh/mountsync/pkg/models"
	"github.com/sdejongh/mountsync/pkg/storage"
)

// CleanJournal receives the clean log. A nil journal disables it.
type CleanJournal interface {
	// BeginClean resets the clean log and writes its header
	BeginClean() error

	// PlannedRemoval records a removal a dry run would have performed
	PlannedRemoval(path string) error
}

// Cleaner removes configured paths under every validated destination
type Cleaner struct {
	backend storage.Backend
	journal CleanJournal
	logger  logging.Logger
}

// NewCleaner creates a cleaner
func NewCleaner(backend storage.Backend, journal CleanJournal, logger logging.Logger) *Cleaner {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Cleaner{backend: backend, journal: journal, logger: logger}
}

// Clean removes destBase+dir+path for every path and every dir, path outer.
//
// A removal counts as done when the path lists nothing afterwards, which
// includes a path that never existed. A path that still lists entries is
// left out of the result. A blank path is skipped so that a destination
// directory itself is never removed.
func (c *Cleaner) Clean(ctx context.Context, paths []string, destBase string, validDirs []string, dryRun bool) []models.CleanOutcome {
	cleaned := []models.CleanOutcome{}

	if c.journal != nil {
		if err := c.journal.BeginClean(); err != nil {
			c.logger.Error(ctx, "Failed to reset clean log", err, nil)
		}
	}

	for _, path := range paths {
		if strings.TrimSpace(path) == "" {
			c.logger.Warn(ctx, "Skipping blank clean entry", nil)
			continue
		}

		for _, dir := range validDirs {
			rmPath := platform.CollapseDoubleSeparator(platform.Concat(destBase, dir, path))

			if dryRun {
				cleaned = append(cleaned, models.CleanOutcome{Path: rmPath, MountDir: dir, DryRun: true})
				if c.journal != nil {
					if err := c.journal.PlannedRemoval(rmPath); err != nil {
						c.logger.Error(ctx, "Failed to write clean log", err, logging.Fields{"path": rmPath})
					}
				}
				continue
			}

			if err := c.backend.Remove(ctx, rmPath); err != nil {
				c.logger.Warn(ctx, "Remove failed", logging.Fields{"path": rmPath, "error": err.Error()})
			}

			if err := c.verifyGone(ctx, rmPath); err != nil {
				c.logger.Debug(ctx, "Path not cleaned", logging.Fields{"path": rmPath, "error": err.Error()})
				continue
			}

			c.logger.Debug(ctx, "Cleaned", logging.Fields{"path": rmPath, "mountdir": dir})
			cleaned = append(cleaned, models.CleanOutcome{Path: rmPath, MountDir: dir})
		}
	}

	return cleaned
}

// verifyGone lists rmPath and fails when anything is still there
func (c *Cleaner) verifyGone(ctx context.Context, rmPath string) error {
	entries, err := c.backend.List(ctx, rmPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return errors.Errorf("%w: %w", ErrCleanIncomplete, err)
	}
	if len(entries) > 0 {
		return errors.Errorf("%w: %d entries remain", ErrCleanIncomplete, len(entries))
	}
	return nil
}
