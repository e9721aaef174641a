package storage

import (
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"

	"github.com/sdejongh/mountsync/pkg/ratelimit"
)

// Local is a filesystem backend over an afero.Fs. Production code uses
// the OS filesystem; tests substitute an in-memory one.
type Local struct {
	fs       afero.Fs
	limiter  *ratelimit.Limiter
	observer TransferObserver
}

// LocalOption configures a Local backend
type LocalOption func(*Local)

// WithLimiter caps the bandwidth of every copy
func WithLimiter(limiter *ratelimit.Limiter) LocalOption {
	return func(l *Local) {
		l.limiter = limiter
	}
}

// WithObserver reports copy progress to observer
func WithObserver(observer TransferObserver) LocalOption {
	return func(l *Local) {
		l.observer = observer
	}
}

// NewLocal creates a backend on top of fsys
func NewLocal(fsys afero.Fs, opts ...LocalOption) *Local {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	l := &Local{fs: fsys}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Fs returns the underlying filesystem
func (l *Local) Fs() afero.Fs {
	return l.fs
}

// Exists checks if a file or directory exists
func (l *Local) Exists(ctx context.Context, path string) (bool, error) {
	if path == "" {
		return false, nil
	}
	ok, err := afero.Exists(l.fs, path)
	if err != nil {
		return false, errors.Errorf("failed to check existence of %s: %w", path, err)
	}
	return ok, nil
}

// List returns directory entries, or the file itself
func (l *Local) List(ctx context.Context, path string) ([]FileInfo, error) {
	info, err := l.fs.Stat(path)
	if err != nil {
		return nil, errors.Errorf("failed to list %s: %w", path, err)
	}

	if !info.IsDir() {
		return []FileInfo{toFileInfo(path, info)}, nil
	}

	entries, err := afero.ReadDir(l.fs, path)
	if err != nil {
		return nil, errors.Errorf("failed to list %s: %w", path, err)
	}

	files := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		files = append(files, toFileInfo(filepath.Join(path, entry.Name()), entry))
	}
	return files, nil
}

// Copy copies src to dst, into dst when it is a directory
func (l *Local) Copy(ctx context.Context, src, dst string) (err error) {
	srcInfo, err := l.fs.Stat(src)
	if err != nil {
		return errors.Errorf("failed to stat source: %w", err)
	}
	if srcInfo.IsDir() {
		return errors.Errorf("source is a directory: %s", src)
	}

	target := dst
	if dstInfo, statErr := l.fs.Stat(dst); statErr == nil && dstInfo.IsDir() {
		target = filepath.Join(dst, filepath.Base(src))
	}

	in, err := l.fs.Open(src)
	if err != nil {
		return errors.Errorf("failed to open source: %w", err)
	}
	defer in.Close()

	out, err := l.fs.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, srcInfo.Mode().Perm())
	if err != nil {
		return errors.Errorf("failed to create destination: %w", err)
	}

	var reader io.Reader = ratelimit.NewReader(ctx, in, l.limiter)
	if l.observer != nil {
		reader = l.observer.StartTransfer(target, srcInfo.Size(), reader)
		defer func() { l.observer.FinishTransfer(target, err) }()
	}

	written, err := io.Copy(out, reader)
	if closeErr := out.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return errors.Errorf("failed to write destination: %w", err)
	}
	if written != srcInfo.Size() {
		return errors.Errorf("incomplete write: expected %d bytes, wrote %d", srcInfo.Size(), written)
	}

	// Preserve modification time
	if err := l.fs.Chtimes(target, srcInfo.ModTime(), srcInfo.ModTime()); err != nil {
		return errors.Errorf("failed to set modification time: %w", err)
	}

	return nil
}

// Remove deletes a file or directory tree
func (l *Local) Remove(ctx context.Context, path string) error {
	if err := l.fs.RemoveAll(path); err != nil {
		return errors.Errorf("failed to delete %s: %w", path, err)
	}
	return nil
}

// MkdirAll creates a directory and all necessary parents
func (l *Local) MkdirAll(ctx context.Context, path string) error {
	if err := l.fs.MkdirAll(path, 0755); err != nil {
		return errors.Errorf("failed to create directory %s: %w", path, err)
	}
	return nil
}

// Close releases resources (no-op for local filesystem)
func (l *Local) Close() error {
	return nil
}

func toFileInfo(path string, info fs.FileInfo) FileInfo {
	return FileInfo{
		Path:        path,
		Name:        info.Name(),
		Size:        info.Size(),
		ModTime:     info.ModTime(),
		IsDir:       info.IsDir(),
		Permissions: uint32(info.Mode().Perm()),
	}
}
