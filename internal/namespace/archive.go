package namespace

import (
	"archive/tar"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/charlievieth/fastwalk"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// ArchiveFormat selects the compression of a folder archive.
type ArchiveFormat string

const (
	ArchiveGzip ArchiveFormat = "gzip"
	ArchiveZstd ArchiveFormat = "zstd"
)

// ParseArchiveFormat accepts "gzip" (the default for an empty value) or "zstd".
func ParseArchiveFormat(s string) (ArchiveFormat, error) {
	switch ArchiveFormat(s) {
	case "", ArchiveGzip:
		return ArchiveGzip, nil
	case ArchiveZstd:
		return ArchiveZstd, nil
	}
	return "", fmt.Errorf("unsupported archive format %q", s)
}

// Extension returns the file suffix for the format.
func (f ArchiveFormat) Extension() string {
	if f == ArchiveZstd {
		return ".tar.zst"
	}
	return ".tar.gz"
}

// ContentType returns the media type for the format.
func (f ArchiveFormat) ContentType() string {
	if f == ArchiveZstd {
		return "application/zstd"
	}
	return "application/gzip"
}

type archiveItem struct {
	path string
	rel  string
	info os.FileInfo
}

// WriteArchive streams dir as a compressed tar to w. Member names are
// prefixed with the base name of dir. Only folders and regular files are
// archived; symlinks are not followed.
func WriteArchive(ctx context.Context, w io.Writer, dir string, format ArchiveFormat) error {
	items, err := collectArchiveItems(ctx, dir)
	if err != nil {
		return err
	}

	var zw io.WriteCloser
	switch format {
	case ArchiveZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("zstd writer: %w", err)
		}
		zw = enc
	default:
		zw = gzip.NewWriter(w)
	}

	tw := tar.NewWriter(zw)
	base := filepath.Base(dir)
	for _, item := range items {
		if err := ctx.Err(); err != nil {
			tw.Close()
			zw.Close()
			return err
		}
		if err := writeArchiveItem(tw, base, item); err != nil {
			tw.Close()
			zw.Close()
			return err
		}
	}

	if err := tw.Close(); err != nil {
		zw.Close()
		return fmt.Errorf("close tar: %w", err)
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close %s: %w", format, err)
	}
	return nil
}

// collectArchiveItems walks concurrently and returns items sorted by path
// so the archive layout is stable.
func collectArchiveItems(ctx context.Context, dir string) ([]archiveItem, error) {
	var (
		mu    sync.Mutex
		items []archiveItem
	)

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(path string, d os.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			// entries removed while the walk runs are left out
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("walk %s: %w", path, err)
		}
		if path == dir {
			return nil
		}
		if !d.IsDir() && !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("stat %s: %w", path, err)
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}

		mu.Lock()
		items = append(items, archiveItem{path: path, rel: filepath.ToSlash(rel), info: info})
		mu.Unlock()
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(items, func(i, j int) bool { return items[i].rel < items[j].rel })
	return items, nil
}

func writeArchiveItem(tw *tar.Writer, base string, item archiveItem) error {
	header, err := tar.FileInfoHeader(item.info, "")
	if err != nil {
		return fmt.Errorf("tar header %s: %w", item.rel, err)
	}
	header.Name = base + "/" + item.rel
	if item.info.IsDir() {
		header.Name += "/"
	}

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("write header %s: %w", item.rel, err)
	}
	if item.info.IsDir() {
		return nil
	}

	f, err := os.Open(item.path)
	if err != nil {
		return fmt.Errorf("open %s: %w", item.rel, err)
	}
	defer f.Close()

	if _, err := io.CopyN(tw, f, item.info.Size()); err != nil {
		return fmt.Errorf("copy %s: %w", item.rel, err)
	}
	return nil
}
