package output

import (
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/jonboulle/clockwork"
	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/sdejongh/mountsync/pkg/models"
)

const rule = "------------------------ \n"

// ReporterConfig configures a Reporter
type ReporterConfig struct {
	// Fs holds the report files; nil means the OS filesystem
	Fs afero.Fs

	// ReportFile receives the sync report
	ReportFile string

	// CleanReportFile receives the clean report
	CleanReportFile string

	// WriteToFile enables both report files
	WriteToFile bool

	// Console mirrors every report line; nil when quiet
	Console io.Writer

	// Color highlights section headers on the console
	Color bool

	// Clock stamps the headers; nil means the wall clock
	Clock clockwork.Clock
}

// Reporter writes the sync report, the clean report and the run narration
type Reporter struct {
	report  *Journal
	clean   *Journal
	console io.Writer
	clock   clockwork.Clock

	ok   *color.Color
	fail *color.Color
}

// NewReporter creates a reporter
func NewReporter(cfg ReporterConfig) *Reporter {
	if cfg.Fs == nil {
		cfg.Fs = afero.NewOsFs()
	}
	if cfg.Clock == nil {
		cfg.Clock = clockwork.NewRealClock()
	}

	ok := color.New(color.FgGreen, color.Bold)
	fail := color.New(color.FgRed, color.Bold)
	if cfg.Color {
		ok.EnableColor()
		fail.EnableColor()
	} else {
		ok.DisableColor()
		fail.DisableColor()
	}

	return &Reporter{
		report:  NewJournal(cfg.Fs, cfg.ReportFile, cfg.WriteToFile, cfg.Console),
		clean:   NewJournal(cfg.Fs, cfg.CleanReportFile, cfg.WriteToFile, cfg.Console),
		console: cfg.Console,
		clock:   cfg.Clock,
		ok:      ok,
		fail:    fail,
	}
}

// Note prints one narration line to the console
func (r *Reporter) Note(line string) {
	if r.console != nil {
		io.WriteString(r.console, line+"\n")
	}
}

// BeginClean resets the clean report and writes its header
func (r *Reporter) BeginClean() error {
	if err := r.clean.Reset(); err != nil {
		return err
	}
	return r.clean.Write(" Cleaned on " + r.now() + "\n\n")
}

// PlannedRemoval records the command a dry-run clean would have run
func (r *Reporter) PlannedRemoval(path string) error {
	return r.clean.Write("rm -f " + path + "\n")
}

// Emit resets the sync report and writes the header, the successful
// section and the failed section.
func (r *Reporter) Emit(report *models.RunReport) error {
	if err := r.report.Reset(); err != nil {
		return err
	}

	var errs []error
	if r.report.Exists() {
		errs = append(errs, r.report.Write(rule+" Files Synced On: "+r.now()+" \n"+rule))
	}

	errs = append(errs, r.section(r.ok, " SUCCESSFUL", report.DestBase, report.Copied)...)
	errs = append(errs, r.section(r.fail, " FAILED", report.DestBase, report.Failed)...)

	return errors.Join(errs...)
}

func (r *Reporter) section(c *color.Color, title, destBase string, outcomes []models.TransferOutcome) []error {
	heading := title + " (" + strconv.Itoa(len(outcomes)) + ")"

	r.report.Print(rule + c.Sprint(heading) + "\n" + rule)
	errs := []error{r.report.Append(rule + heading + "\n" + rule)}

	for _, o := range outcomes {
		errs = append(errs, r.report.Write(" "+o.ReportPath(destBase)+"\n"))
	}
	return errs
}

func (r *Reporter) now() string {
	return r.clock.Now().Format(models.TimestampLayout)
}
