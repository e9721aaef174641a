package storage

import (
	"context"
	"io"
	"time"
)

// FileInfo represents metadata about a file
type FileInfo struct {
	Path        string
	Name        string
	Size        int64
	ModTime     time.Time
	IsDir       bool
	Permissions uint32
}

// Backend is the set of filesystem capabilities the sync stages consume.
// Paths are absolute, already composed by the caller.
type Backend interface {
	// Exists checks if a file or directory exists
	Exists(ctx context.Context, path string) (bool, error)

	// List returns the entries of a directory, or the path itself when it
	// is a file. A path that does not exist yields an error matching
	// fs.ErrNotExist.
	List(ctx context.Context, path string) ([]FileInfo, error)

	// Copy copies the file src to dst. When dst is an existing directory
	// the file is copied into it under its own name. Existing files are
	// overwritten.
	Copy(ctx context.Context, src, dst string) error

	// Remove deletes a file or directory tree. Removing a path that does
	// not exist is not an error.
	Remove(ctx context.Context, path string) error

	// MkdirAll creates a directory and all necessary parents
	MkdirAll(ctx context.Context, path string) error

	// Close releases any resources held by the backend
	Close() error
}

// TransferObserver is notified around every byte stream a backend copies.
// StartTransfer may wrap the reader, e.g. to drive a progress bar.
type TransferObserver interface {
	StartTransfer(name string, size int64, r io.Reader) io.Reader
	FinishTransfer(name string, err error)
}
