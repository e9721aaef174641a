package sync

import (
	"io/fs"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"

	"github.com/sdejongh/mountsync/internal/platform"
)

// hasMeta reports whether entry uses glob syntax
func hasMeta(entry string) bool {
	return strings.ContainsAny(entry, "*?[{")
}

// ExpandFiles expands glob entries of files against sourceBase.
// Literal entries are returned untouched, and so is an entry that names an
// existing source file even though it contains glob characters. A pattern with matches is replaced by
// its matches in lexical order, keeping the leading separator style of the
// pattern. A pattern without matches is kept as is, so the copier reports it
// as a missing local file.
func ExpandFiles(fsys afero.Fs, sourceBase string, files []string) ([]string, error) {
	if files == nil {
		return nil, nil
	}

	out := make([]string, 0, len(files))
	for _, entry := range files {
		if !hasMeta(entry) || !doublestar.ValidatePattern(entry) {
			out = append(out, entry)
			continue
		}
		if literal, _ := afero.Exists(fsys, platform.Concat(sourceBase, entry)); literal {
			out = append(out, entry)
			continue
		}

		matches, err := glob(fsys, sourceBase, entry)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			out = append(out, entry)
			continue
		}
		out = append(out, matches...)
	}

	return out, nil
}

func glob(fsys afero.Fs, sourceBase, entry string) ([]string, error) {
	leading := strings.HasPrefix(entry, "/")
	pattern := strings.TrimLeft(entry, "/")

	var root fs.FS
	switch {
	case sourceBase != "":
		root = afero.NewIOFS(afero.NewBasePathFs(fsys, sourceBase))
	case leading:
		root = afero.NewIOFS(afero.NewBasePathFs(fsys, "/"))
	default:
		root = afero.NewIOFS(fsys)
	}

	matches, err := doublestar.Glob(root, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}
	slices.Sort(matches)

	if leading {
		for i, m := range matches {
			matches[i] = "/" + m
		}
	}
	return matches, nil
}
