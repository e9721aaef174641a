package output

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
)

// Journal is an append-only text file mirrored to the console.
// Reset removes the file and, when file output is enabled, recreates it empty.
type Journal struct {
	fs      afero.Fs
	path    string
	enabled bool
	console io.Writer
}

// NewJournal creates a journal for path. A nil console disables the mirror.
func NewJournal(fsys afero.Fs, path string, enabled bool, console io.Writer) *Journal {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Journal{fs: fsys, path: path, enabled: enabled, console: console}
}

// Path returns the file path
func (j *Journal) Path() string {
	return j.path
}

// Reset truncates the journal for a new run
func (j *Journal) Reset() error {
	if j.path == "" {
		return nil
	}
	if err := j.fs.Remove(j.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Errorf("failed to remove %s: %w", j.path, err)
	}
	if !j.enabled {
		return nil
	}

	if dir := filepath.Dir(j.path); dir != "" {
		if err := j.fs.MkdirAll(dir, 0755); err != nil {
			return errors.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := j.fs.Create(j.path)
	if err != nil {
		return errors.Errorf("failed to create %s: %w", j.path, err)
	}
	return f.Close()
}

// Exists reports whether the journal file is present
func (j *Journal) Exists() bool {
	if j.path == "" {
		return false
	}
	ok, err := afero.Exists(j.fs, j.path)
	return err == nil && ok
}

// Append writes text to the file only. Nothing is written when file
// output is disabled or the file is gone.
func (j *Journal) Append(text string) error {
	if !j.enabled || !j.Exists() {
		return nil
	}

	f, err := j.fs.OpenFile(j.path, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Errorf("failed to open %s: %w", j.path, err)
	}
	if _, err := io.WriteString(f, text); err != nil {
		f.Close()
		return errors.Errorf("failed to write %s: %w", j.path, err)
	}
	return f.Close()
}

// Print writes text to the console only
func (j *Journal) Print(text string) {
	if j.console != nil {
		io.WriteString(j.console, text)
	}
}

// Write sends text to both the console and the file
func (j *Journal) Write(text string) error {
	j.Print(text)
	return j.Append(text)
}
