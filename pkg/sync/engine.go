package sync

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"

	"github.com/sdejongh/mountsync/pkg/logging"
	"github.com/sdejongh/mountsync/pkg/models"
	"github.com/sdejongh/mountsync/pkg/storage"
)

// Reporter receives the narration, the clean log and the final report
type Reporter interface {
	CleanJournal

	// Note prints one narration line to the console
	Note(line string)

	// Emit writes the sync report
	Emit(report *models.RunReport) error
}

// fsBackend is implemented by backends that expose their filesystem, which
// is needed to expand glob entries.
type fsBackend interface {
	Fs() afero.Fs
}

// Engine runs one sync: validate, clean, copy, report. Every call to Run
// builds a fresh report, so an engine can be reused across runs.
type Engine struct {
	backend  storage.Backend
	reporter Reporter
	logger   logging.Logger
	clock    clockwork.Clock
}

// EngineOption configures an Engine
type EngineOption func(*Engine)

// WithClock replaces the wall clock
func WithClock(clock clockwork.Clock) EngineOption {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// NewEngine creates a new sync engine
func NewEngine(backend storage.Backend, reporter Reporter, opts ...EngineOption) *Engine {
	e := &Engine{
		backend:  backend,
		reporter: reporter,
		logger:   logging.NewNullLogger(),
		clock:    clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.reporter == nil {
		e.reporter = nopReporter{}
	}
	return e
}

// Run executes the pipeline against cfg. The configuration is copied first,
// so the caller's slices are never touched. The returned error is non-nil
// only when the report could not be written; per-item failures live in the report.
func (e *Engine) Run(ctx context.Context, cfg *models.RunConfig, flags models.RunFlags) (*models.RunReport, error) {
	runID := uuid.NewString()
	logger := e.logger.WithFields(logging.Fields{"run_id": runID})

	cfg = cfg.Clone()
	var destBase string
	if cfg != nil {
		destBase = cfg.DestBase
	}
	report := models.NewRunReport(runID, e.clock.Now(), destBase, flags)

	if !cfg.Ready() {
		logger.Warn(ctx, "Missing files or mount dirs, nothing to do", nil)
		e.reporter.Note(" No operations performed.")
		report.Status = models.StatusSkipped
		report.Finish(e.clock.Now())
		return report, nil
	}

	logger.Info(ctx, "Run started", logging.Fields{
		"files":     len(cfg.Files),
		"mountdirs": len(cfg.MountDirs),
		"clean":     len(cfg.CleanPaths),
	})
	e.reporter.Note(" Start at " + report.StartTime.Format(models.TimestampLayout))

	files := cfg.Files
	if fb, ok := e.backend.(fsBackend); ok && flags.PerformCopy {
		expanded, err := ExpandFiles(fb.Fs(), cfg.SourceBase, cfg.Files)
		if err != nil {
			logger.Warn(ctx, "Glob expansion failed, using entries as written", logging.Fields{"error": err.Error()})
		} else {
			files = expanded
		}
	}

	validation := NewValidator(e.backend, logger).Validate(ctx, cfg.DestBase, cfg.MountDirs)
	report.ValidDirs = validation.Valid
	report.DroppedDirs = validation.Dropped

	if flags.PerformClean {
		cleaner := NewCleaner(e.backend, e.reporter, logger)
		report.Cleaned = cleaner.Clean(ctx, cfg.CleanPaths, cfg.DestBase, validation.Valid, flags.DryRunClean)
	}
	e.reporter.Note(" Cleaned " + strconv.Itoa(len(report.Cleaned)))

	if flags.PerformCopy {
		copier := NewCopier(e.backend, logger)
		report.Copied, report.Failed = copier.Copy(ctx, files, cfg.SourceBase, cfg.DestBase, validation.Valid, flags.DryRunCopy)
	}
	e.reporter.Note(" Copied " + strconv.Itoa(len(report.Copied)))

	if err := e.reporter.Emit(report); err != nil {
		logger.Error(ctx, "Failed to write report", err, nil)
		report.Status = models.StatusFailed
		report.Finish(e.clock.Now())
		return report, err
	}

	report.Finish(e.clock.Now())
	e.reporter.Note(" Completed at " + report.EndTime.Format(models.TimestampLayout))

	logger.Info(ctx, "Run completed", logging.Fields{
		"status":   string(report.Status),
		"copied":   len(report.Copied),
		"failed":   len(report.Failed),
		"cleaned":  len(report.Cleaned),
		"dropped":  len(report.DroppedDirs),
		"duration": report.Duration.String(),
	})

	return report, nil
}

type nopReporter struct{}

func (nopReporter) BeginClean() error { return nil }

func (nopReporter) PlannedRemoval(path string) error { return nil }

func (nopReporter) Note(line string) {}

func (nopReporter) Emit(report *models.RunReport) error { return nil }
