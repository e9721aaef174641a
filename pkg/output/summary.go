package output

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"github.com/sdejongh/mountsync/pkg/models"
)

// JSONReportData is the machine-readable run summary
type JSONReportData struct {
	RunID      string             `json:"run_id"`
	Status     string             `json:"status"`
	StartedAt  string             `json:"started_at"`
	Duration   string             `json:"duration"`
	DurationMs int64              `json:"duration_ms"`
	DryRun     JSONDryRunData     `json:"dry_run"`
	Stats      JSONStatsData      `json:"stats"`
	Mounts     JSONMountsData     `json:"mounts"`
	Copied     []JSONTransferData `json:"copied"`
	Failed     []JSONTransferData `json:"failed"`
	Cleaned    []string           `json:"cleaned"`
}

// JSONDryRunData shows which stages only recorded their plan
type JSONDryRunData struct {
	Copy  bool `json:"copy"`
	Clean bool `json:"clean"`
}

// JSONStatsData holds the outcome counts
type JSONStatsData struct {
	Copied  int `json:"copied"`
	Failed  int `json:"failed"`
	Cleaned int `json:"cleaned"`
	Dropped int `json:"dropped"`
}

// JSONMountsData lists the destinations kept and dropped by validation
type JSONMountsData struct {
	Valid   []string       `json:"valid"`
	Dropped []JSONDropData `json:"dropped"`
}

// JSONDropData represents a dropped destination
type JSONDropData struct {
	MountDir string `json:"mountdir"`
	Path     string `json:"path"`
	Reason   string `json:"reason"`
}

// JSONTransferData represents one transfer outcome
type JSONTransferData struct {
	File        string `json:"file"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	MountDir    string `json:"mountdir,omitempty"`
	Error       string `json:"error,omitempty"`
}

// WriteJSON prints the run summary as indented JSON
func WriteJSON(w io.Writer, report *models.RunReport) error {
	if w == nil {
		w = os.Stdout
	}

	data := JSONReportData{
		RunID:      report.RunID,
		Status:     string(report.Status),
		StartedAt:  report.StartTime.Format(time.RFC3339),
		Duration:   report.Duration.Round(time.Millisecond).String(),
		DurationMs: report.Duration.Milliseconds(),
		DryRun: JSONDryRunData{
			Copy:  report.Flags.DryRunCopy,
			Clean: report.Flags.DryRunClean,
		},
		Stats: JSONStatsData{
			Copied:  len(report.Copied),
			Failed:  len(report.Failed),
			Cleaned: len(report.Cleaned),
			Dropped: len(report.DroppedDirs),
		},
		Mounts: JSONMountsData{
			Valid:   append([]string{}, report.ValidDirs...),
			Dropped: make([]JSONDropData, 0, len(report.DroppedDirs)),
		},
		Copied:  transfers(report.Copied),
		Failed:  transfers(report.Failed),
		Cleaned: make([]string, 0, len(report.Cleaned)),
	}

	for _, d := range report.DroppedDirs {
		data.Mounts.Dropped = append(data.Mounts.Dropped, JSONDropData{
			MountDir: d.MountDir,
			Path:     d.Path,
			Reason:   string(d.Reason),
		})
	}
	for _, c := range report.Cleaned {
		data.Cleaned = append(data.Cleaned, c.Path)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func transfers(outcomes []models.TransferOutcome) []JSONTransferData {
	out := make([]JSONTransferData, 0, len(outcomes))
	for _, o := range outcomes {
		t := JSONTransferData{
			File:        o.File,
			Source:      o.Source,
			Destination: o.DestinationLabel(),
			MountDir:    o.MountDir,
		}
		if o.Err != nil {
			t.Error = o.Err.Error()
		}
		out = append(out, t)
	}
	return out
}
