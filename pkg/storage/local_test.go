package storage

import (
	"bytes"
	"context"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMemLocal(t *testing.T, files map[string]string, opts ...LocalOption) *Local {
	t.Helper()
	memfs := afero.NewMemMapFs()
	for path, content := range files {
		require.NoError(t, memfs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(memfs, path, []byte(content), 0644))
	}
	return NewLocal(memfs, opts...)
}

type recordingObserver struct {
	mu       sync.Mutex
	started  []string
	finished map[string]error
	bytes    int64
}

func (o *recordingObserver) StartTransfer(name string, size int64, r io.Reader) io.Reader {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, name)
	o.bytes += size
	return r
}

func (o *recordingObserver) FinishTransfer(name string, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.finished == nil {
		o.finished = make(map[string]error)
	}
	o.finished[name] = err
}

func TestNewLocal(t *testing.T) {
	t.Run("DefaultsToOsFs", func(t *testing.T) {
		local := NewLocal(nil)
		assert.IsType(t, &afero.OsFs{}, local.Fs())
		assert.NoError(t, local.Close())
	})

	t.Run("UsesGivenFs", func(t *testing.T) {
		memfs := afero.NewMemMapFs()
		assert.Same(t, memfs, NewLocal(memfs).Fs())
	})
}

func TestLocalExists(t *testing.T) {
	local := newMemLocal(t, map[string]string{"/src/a.txt": "a"})
	ctx := context.Background()

	tests := []struct {
		path string
		want bool
	}{
		{"/src/a.txt", true},
		{"/src", true},
		{"/src/", true},
		{"/src/missing.txt", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := local.Exists(ctx, tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocalList(t *testing.T) {
	local := newMemLocal(t, map[string]string{
		"/dst/m1/file1.txt":     "content1",
		"/dst/m1/sub/file2.txt": "content2",
	})
	require.NoError(t, local.MkdirAll(context.Background(), "/dst/empty"))
	ctx := context.Background()

	t.Run("Directory", func(t *testing.T) {
		entries, err := local.List(ctx, "/dst/m1/")
		require.NoError(t, err)

		names := make([]string, 0, len(entries))
		for _, e := range entries {
			names = append(names, e.Name)
		}
		assert.ElementsMatch(t, []string{"file1.txt", "sub"}, names)
	})

	t.Run("File", func(t *testing.T) {
		entries, err := local.List(ctx, "/dst/m1/file1.txt")
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, int64(len("content1")), entries[0].Size)
		assert.False(t, entries[0].IsDir)
	})

	t.Run("EmptyDirectory", func(t *testing.T) {
		entries, err := local.List(ctx, "/dst/empty")
		require.NoError(t, err)
		assert.Empty(t, entries)
	})

	t.Run("Missing", func(t *testing.T) {
		_, err := local.List(ctx, "/dst/nope")
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})
}

func TestLocalCopy(t *testing.T) {
	ctx := context.Background()

	t.Run("IntoDirectory", func(t *testing.T) {
		local := newMemLocal(t, map[string]string{"/src/a.txt": "hello"})
		require.NoError(t, local.MkdirAll(ctx, "/dst/m1"))

		require.NoError(t, local.Copy(ctx, "/src/a.txt", "/dst/m1"))

		got, err := afero.ReadFile(local.Fs(), "/dst/m1/a.txt")
		require.NoError(t, err)
		assert.Equal(t, "hello", string(got))
	})

	t.Run("ToFilePath", func(t *testing.T) {
		local := newMemLocal(t, map[string]string{"/src/a.txt": "hello"})
		require.NoError(t, local.MkdirAll(ctx, "/dst"))

		require.NoError(t, local.Copy(ctx, "/src/a.txt", "/dst/renamed.txt"))

		ok, err := local.Exists(ctx, "/dst/renamed.txt")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Overwrites", func(t *testing.T) {
		local := newMemLocal(t, map[string]string{
			"/src/a.txt":    "new",
			"/dst/m1/a.txt": "old content that is longer",
		})

		require.NoError(t, local.Copy(ctx, "/src/a.txt", "/dst/m1"))

		got, err := afero.ReadFile(local.Fs(), "/dst/m1/a.txt")
		require.NoError(t, err)
		assert.Equal(t, "new", string(got))
	})

	t.Run("PreservesModTime", func(t *testing.T) {
		local := newMemLocal(t, map[string]string{"/src/a.txt": "x"})
		mtime := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
		require.NoError(t, local.Fs().Chtimes("/src/a.txt", mtime, mtime))
		require.NoError(t, local.MkdirAll(ctx, "/dst"))

		require.NoError(t, local.Copy(ctx, "/src/a.txt", "/dst"))

		info, err := local.Fs().Stat("/dst/a.txt")
		require.NoError(t, err)
		assert.True(t, info.ModTime().Equal(mtime))
	})

	t.Run("MissingSource", func(t *testing.T) {
		local := newMemLocal(t, nil)
		err := local.Copy(ctx, "/src/none.txt", "/dst")
		assert.ErrorIs(t, err, fs.ErrNotExist)
	})

	t.Run("SourceIsDirectory", func(t *testing.T) {
		local := newMemLocal(t, map[string]string{"/src/dir/a.txt": "a"})
		assert.Error(t, local.Copy(ctx, "/src/dir", "/dst"))
	})

	t.Run("NotifiesObserver", func(t *testing.T) {
		obs := &recordingObserver{}
		local := newMemLocal(t, map[string]string{"/src/a.txt": "12345"}, WithObserver(obs))
		require.NoError(t, local.MkdirAll(ctx, "/dst"))

		require.NoError(t, local.Copy(ctx, "/src/a.txt", "/dst"))

		assert.Equal(t, []string{"/dst/a.txt"}, obs.started)
		assert.Equal(t, int64(5), obs.bytes)
		assert.Contains(t, obs.finished, "/dst/a.txt")
		assert.NoError(t, obs.finished["/dst/a.txt"])
	})
}

func TestLocalRemove(t *testing.T) {
	ctx := context.Background()
	local := newMemLocal(t, map[string]string{
		"/dst/m1/old.log":       "x",
		"/dst/m1/cache/a.bin":   "a",
		"/dst/m1/cache/b/c.bin": "c",
	})

	t.Run("File", func(t *testing.T) {
		require.NoError(t, local.Remove(ctx, "/dst/m1/old.log"))
		ok, _ := local.Exists(ctx, "/dst/m1/old.log")
		assert.False(t, ok)
	})

	t.Run("Tree", func(t *testing.T) {
		require.NoError(t, local.Remove(ctx, "/dst/m1/cache"))
		ok, _ := local.Exists(ctx, "/dst/m1/cache/b/c.bin")
		assert.False(t, ok)
	})

	t.Run("MissingIsNotAnError", func(t *testing.T) {
		assert.NoError(t, local.Remove(ctx, "/dst/m1/never-existed"))
	})
}

func TestLocalOnDisk(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	src := filepath.Join(root, "src", "a.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(src), 0755))
	require.NoError(t, os.WriteFile(src, bytes.Repeat([]byte("z"), 4096), 0644))

	local := NewLocal(afero.NewOsFs())
	dst := filepath.Join(root, "dst", "m1")
	require.NoError(t, local.MkdirAll(ctx, dst))
	require.NoError(t, local.Copy(ctx, src, dst))

	content, err := os.ReadFile(filepath.Join(dst, "a.txt"))
	require.NoError(t, err)
	assert.Len(t, content, 4096)

	t.Run("CopyWithoutParentFails", func(t *testing.T) {
		err := local.Copy(ctx, src, filepath.Join(root, "missing", "dir", "a.txt"))
		assert.Error(t, err)
	})
}
