package sync

import (
	"context"
	"strings"

	"gitlab.com/tozd/go/errors"

	"github.com/sdejongh/mountsync/internal/platform"
	"github.com/sdejongh/mountsync/pkg/logging"
	"github.com/sdejongh/mountsync/pkg/models"
	"github.com/sdejongh/mountsync/pkg/storage"
)

// Copier copies every source file into every validated destination
type Copier struct {
	backend storage.Backend
	logger  logging.Logger
}

// NewCopier creates a copier
func NewCopier(backend storage.Backend, logger logging.Logger) *Copier {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Copier{backend: backend, logger: logger}
}

// Copy copies sourceBase+file to the directory portion of destBase+dir+file.
// A missing source produces exactly one failed outcome and no destination
// attempts; a blank entry is treated the same way. Otherwise the outcome is successful when the destination file
// exists after the copy. A dry run records success without touching anything.
func (c *Copier) Copy(ctx context.Context, files []string, sourceBase, destBase string, validDirs []string, dryRun bool) (copied, failed []models.TransferOutcome) {
	copied = []models.TransferOutcome{}
	failed = []models.TransferOutcome{}

	for _, file := range files {
		here := platform.Concat(sourceBase, file)

		if strings.TrimSpace(file) == "" {
			c.logger.Warn(ctx, "Skipping blank file entry", logging.Fields{"source": sourceBase})
			failed = append(failed, models.TransferOutcome{
				File:          file,
				Source:        here,
				SourceMissing: true,
				DryRun:        dryRun,
				Err:           errors.Errorf("%w: blank entry", ErrSourceFileMissing),
			})
			continue
		}

		exists, err := c.backend.Exists(ctx, here)
		if err != nil || !exists {
			cause := errors.Errorf("%w: %s", ErrSourceFileMissing, here)
			if err != nil {
				cause = errors.Errorf("%w: %w", ErrSourceFileMissing, err)
			}
			c.logger.Warn(ctx, "No local file", logging.Fields{"file": file, "source": here})
			failed = append(failed, models.TransferOutcome{
				File:          file,
				Source:        here,
				SourceMissing: true,
				DryRun:        dryRun,
				Err:           cause,
			})
			continue
		}

		for _, dir := range validDirs {
			if dir == "" {
				continue
			}

			mountPath := platform.CollapseDoubleSeparator(platform.Concat(destBase, dir, file))
			outcome := models.TransferOutcome{
				File:        file,
				Source:      here,
				Destination: platform.DirPortion(mountPath),
				MountDir:    dir,
				DryRun:      dryRun,
			}

			if dryRun {
				copied = append(copied, outcome)
				continue
			}

			if err := c.transfer(ctx, here, outcome.Destination, mountPath); err != nil {
				c.logger.Error(ctx, "Copy failed", err, logging.Fields{"file": file, "destination": outcome.Destination})
				outcome.Err = err
				failed = append(failed, outcome)
				continue
			}

			c.logger.Debug(ctx, "Copied", logging.Fields{"file": file, "destination": outcome.Destination})
			copied = append(copied, outcome)
		}
	}

	return copied, failed
}

// transfer creates there if needed, copies here into it and confirms mountPath exists
func (c *Copier) transfer(ctx context.Context, here, there, mountPath string) error {
	var copyErr error

	if there != "" {
		exists, err := c.backend.Exists(ctx, there)
		if err == nil && !exists {
			err = c.backend.MkdirAll(ctx, there)
		}
		if err != nil {
			copyErr = err
		}
	}

	if copyErr == nil {
		copyErr = c.backend.Copy(ctx, here, there)
	}

	exists, err := c.backend.Exists(ctx, mountPath)
	if err == nil && exists {
		if copyErr != nil {
			c.logger.Warn(ctx, "Copy reported an error but the destination exists", logging.Fields{"path": mountPath, "error": copyErr.Error()})
		}
		return nil
	}

	if copyErr == nil {
		copyErr = err
	}
	if copyErr == nil {
		return errors.Errorf("%w: %s not found after copy", ErrCopyFailed, mountPath)
	}
	return errors.Errorf("%w: %w", ErrCopyFailed, copyErr)
}
