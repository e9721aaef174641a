package sync

import (
	"context"
	"io/fs"

	"gitlab.com/tozd/go/errors"

	"github.com/sdejongh/mountsync/internal/platform"
	"github.com/sdejongh/mountsync/pkg/logging"
	"github.com/sdejongh/mountsync/pkg/models"
	"github.com/sdejongh/mountsync/pkg/storage"
)

// ValidationResult splits the configured destinations into kept and dropped
type ValidationResult struct {
	// Valid holds the kept mount dirs, in input order, duplicates preserved
	Valid []string

	// Dropped holds the excluded mount dirs with the reason
	Dropped []models.DroppedTarget
}

// Validator filters destinations that are missing or look unmounted
type Validator struct {
	backend storage.Backend
	logger  logging.Logger
}

// NewValidator creates a target validator
func NewValidator(backend storage.Backend, logger logging.Logger) *Validator {
	if logger == nil {
		logger = logging.NewNullLogger()
	}
	return &Validator{backend: backend, logger: logger}
}

// Validate checks every destBase+dir. A destination that lists no entries is
// dropped as well: an unmounted share looks exactly like an empty directory.
func (v *Validator) Validate(ctx context.Context, destBase string, dirs []string) *ValidationResult {
	result := &ValidationResult{
		Valid:   make([]string, 0, len(dirs)),
		Dropped: []models.DroppedTarget{},
	}

	for _, dir := range dirs {
		abs := platform.Concat(destBase, dir)

		reason, err := v.check(ctx, abs)
		if reason == "" {
			result.Valid = append(result.Valid, dir)
			continue
		}

		result.Dropped = append(result.Dropped, models.DroppedTarget{MountDir: dir, Path: abs, Reason: reason})

		fields := logging.Fields{
			"mountdir": dir,
			"path":     abs,
			"reason":   string(reason),
		}
		if err != nil {
			fields["cause"] = err.Error()
		}
		v.logger.Warn(ctx, abs+" "+string(reason), fields)
	}

	return result
}

// check returns an empty reason when abs is usable
func (v *Validator) check(ctx context.Context, abs string) (models.DropReason, error) {
	exists, err := v.backend.Exists(ctx, abs)
	if err != nil {
		return models.DropInaccessible, errors.Errorf("%w: %w", ErrDestinationUnreachable, err)
	}
	if !exists {
		return models.DropMissing, nil
	}

	entries, err := v.backend.List(ctx, abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return models.DropMissing, nil
		}
		return models.DropInaccessible, errors.Errorf("%w: %w", ErrDestinationUnreachable, err)
	}
	if len(entries) == 0 {
		return models.DropDisconnected, nil
	}

	return "", nil
}
