package namespace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"syscall"
	"time"

	"github.com/bmatcuk/doublestar/v4"
)

// EntryKind distinguishes files from folders.
type EntryKind int

const (
	KindFile EntryKind = iota
	KindFolder
)

func (k EntryKind) String() string {
	if k == KindFolder {
		return "folder"
	}
	return "file"
}

// Entry describes one direct child of a listed directory.
type Entry struct {
	Name       string
	Size       int64
	ModifiedAt time.Time
	Kind       EntryKind
}

// List enumerates the direct children of dir. Folders come first, then
// files, each group keeping the enumeration order of os.ReadDir (sorted by
// name). Symlinks and special files are not listed, and entries removed
// while the listing runs are skipped.
func List(dir string) ([]Entry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &fs.PathError{Op: "list", Path: dir, Err: syscall.ENOTDIR}
	}

	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	folders := make([]Entry, 0, len(dirents))
	files := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		if mode := de.Type(); !mode.IsDir() && !mode.IsRegular() {
			continue
		}

		fi, err := de.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("stat %s: %w", de.Name(), err)
		}

		entry := Entry{Name: de.Name(), ModifiedAt: fi.ModTime()}
		if fi.IsDir() {
			entry.Kind = KindFolder
			folders = append(folders, entry)
			continue
		}
		if !fi.Mode().IsRegular() {
			continue
		}
		entry.Kind = KindFile
		entry.Size = fi.Size()
		files = append(files, entry)
	}

	return append(folders, files...), nil
}

// Filter keeps the entries whose name matches pattern, preserving order.
// An empty pattern keeps everything.
func Filter(entries []Entry, pattern string) ([]Entry, error) {
	if pattern == "" {
		return entries, nil
	}
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		ok, err := doublestar.Match(pattern, e.Name)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, e)
		}
	}
	return out, nil
}
