package logging

import (
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Format represents the log output format
type Format string

const (
	FormatJSON Format = "json"
	FormatText Format = "text"
)

// FileLoggerConfig holds configuration for file logging
type FileLoggerConfig struct {
	// Path is the log file path
	Path string
	// Format is the output format (json or text)
	Format Format
	// Level is the minimum log level
	Level Level
	// MaxSize is the maximum size in bytes before rotation (0 = no rotation)
	MaxSize int64
	// MaxBackups is the maximum number of backup files to keep
	MaxBackups int
}

// FileLogger writes diagnostic log entries to a rotating file.
// It is independent of the sync report files, which are rewritten every run.
type FileLogger struct {
	*zeroLogger
	out *rotatingFile
}

// NewFileLogger creates a new file logger
func NewFileLogger(config FileLoggerConfig) (*FileLogger, error) {
	out, err := openRotatingFile(config.Path, config.MaxSize, config.MaxBackups)
	if err != nil {
		return nil, err
	}

	var w io.Writer = out
	if config.Format != FormatJSON {
		w = zerolog.ConsoleWriter{
			Out:        out,
			NoColor:    true,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		}
	}

	return &FileLogger{
		zeroLogger: newZeroLogger(w, config.Level, out),
		out:        out,
	}, nil
}

// Path returns the path of the active log file
func (l *FileLogger) Path() string {
	return l.out.path
}

// rotatingFile is an append-only file that rolls over to numbered
// backups once it grows past maxSize.
type rotatingFile struct {
	path       string
	maxSize    int64
	maxBackups int

	mu   sync.Mutex
	file *os.File
	size int64
}

func openRotatingFile(path string, maxSize int64, maxBackups int) (*rotatingFile, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, errors.Errorf("failed to create log directory: %w", err)
	}

	rf := &rotatingFile{path: path, maxSize: maxSize, maxBackups: maxBackups}
	if err := rf.open(); err != nil {
		return nil, err
	}
	return rf, nil
}

func (rf *rotatingFile) open() error {
	file, err := os.OpenFile(rf.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return errors.Errorf("failed to open log file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return errors.Errorf("failed to stat log file: %w", err)
	}

	rf.file = file
	rf.size = info.Size()
	return nil
}

// Write appends p, rotating first when the size limit was reached
func (rf *rotatingFile) Write(p []byte) (int, error) {
	rf.mu.Lock()
	defer rf.mu.Unlock()

	if rf.file == nil {
		return 0, os.ErrClosed
	}

	if rf.maxSize > 0 && rf.size >= rf.maxSize {
		if err := rf.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := rf.file.Write(p)
	rf.size += int64(n)
	return n, err
}

// rotate shifts path.N to path.N+1, moves the live file to path.1
// and reopens an empty live file. Must be called with mu held.
// Missing backups are skipped; the live file is reopened even when a
// rename fails so later writes still land somewhere.
func (rf *rotatingFile) rotate() error {
	var errs []error
	if err := rf.file.Close(); err != nil {
		errs = append(errs, errors.Errorf("failed to close log file: %w", err))
	}

	for i := rf.maxBackups - 1; i >= 1; i-- {
		if err := os.Rename(rf.backup(i), rf.backup(i+1)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, errors.Errorf("failed to shift log backup: %w", err))
		}
	}
	if err := os.Rename(rf.path, rf.backup(1)); err != nil && !errors.Is(err, os.ErrNotExist) {
		errs = append(errs, errors.Errorf("failed to rotate log file: %w", err))
	}

	if rf.maxBackups > 0 {
		if err := os.Remove(rf.backup(rf.maxBackups + 1)); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, errors.Errorf("failed to remove old log backup: %w", err))
		}
	}

	if err := rf.open(); err != nil {
		rf.file = nil
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

func (rf *rotatingFile) backup(n int) string {
	return rf.path + "." + strconv.Itoa(n)
}

// Close closes the live file
func (rf *rotatingFile) Close() error {
	rf.mu.Lock()
	defer rf.mu.Unlock()
	if rf.file == nil {
		return nil
	}
	err := rf.file.Close()
	rf.file = nil
	return err
}
