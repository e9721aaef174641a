package sync

import (
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrSourceFileMissing marks a configured file absent from the source base
	ErrSourceFileMissing = errors.Base("source file missing")

	// ErrDestinationUnreachable marks a destination dropped by validation
	ErrDestinationUnreachable = errors.Base("destination unreachable")

	// ErrCopyFailed marks a copy whose destination file is absent afterwards
	ErrCopyFailed = errors.Base("copy failed")

	// ErrCleanIncomplete marks a clean path that still lists entries after removal.
	// It is logged at debug level only; the path is simply left out of the cleaned list.
	ErrCleanIncomplete = errors.Base("clean incomplete")
)
