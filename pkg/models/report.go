package models

import (
	"time"
)

// TimestampLayout renders run timestamps, e.g. 10/18/2026 09:05:00 AM
const TimestampLayout = "01/02/2006 03:04:05 PM"

// RunReport is the result aggregate of a single run. A fresh report is
// built for every run and never reused.
type RunReport struct {
	// RunID identifies the run in logs and summaries
	RunID string

	// Timing
	StartTime time.Time
	EndTime   time.Time
	Duration  time.Duration

	// Inputs as seen by the stages
	DestBase    string
	Flags       RunFlags
	ValidDirs   []string
	DroppedDirs []DroppedTarget

	// Outcomes in the order they were produced
	Copied  []TransferOutcome
	Failed  []TransferOutcome
	Cleaned []CleanOutcome

	// Overall status
	Status RunStatus
}

// NewRunReport creates an empty report for a run
func NewRunReport(runID string, start time.Time, destBase string, flags RunFlags) *RunReport {
	return &RunReport{
		RunID:     runID,
		StartTime: start,
		DestBase:  destBase,
		Flags:     flags,
		Copied:    []TransferOutcome{},
		Failed:    []TransferOutcome{},
		Cleaned:   []CleanOutcome{},
		Status:    StatusSuccess,
	}
}

// Finish stamps the end time and derives the status from the outcomes
func (r *RunReport) Finish(end time.Time) {
	r.EndTime = end
	r.Duration = end.Sub(r.StartTime)
	if r.Status == StatusSkipped || r.Status == StatusFailed {
		return
	}
	if len(r.Failed) > 0 {
		r.Status = StatusPartial
	} else {
		r.Status = StatusSuccess
	}
}

// RunStatus represents the overall result
type RunStatus string

const (
	// StatusSuccess indicates every attempted transfer succeeded
	StatusSuccess RunStatus = "success"
	// StatusPartial indicates at least one failed outcome was recorded
	StatusPartial RunStatus = "partial"
	// StatusFailed indicates the run could not complete its report
	StatusFailed RunStatus = "failed"
	// StatusSkipped indicates no operations were performed
	StatusSkipped RunStatus = "skipped"
)

// ExitCode returns the appropriate exit code for the run status
func (s RunStatus) ExitCode() int {
	switch s {
	case StatusSuccess, StatusSkipped:
		return 0
	case StatusPartial:
		return 1
	case StatusFailed:
		return 2
	default:
		return 2
	}
}
