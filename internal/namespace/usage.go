package namespace

import (
	"context"
	"os"
	"sync/atomic"

	"github.com/charlievieth/fastwalk"
)

// Usage summarizes the contents of a directory tree.
type Usage struct {
	Files   int64 `json:"files"`
	Folders int64 `json:"folders"`
	Bytes   int64 `json:"bytes"`
}

// DiskUsage walks dir and totals regular files and folders below it.
// Symlinks are not followed.
func DiskUsage(ctx context.Context, dir string) (Usage, error) {
	var files, folders, bytes atomic.Int64

	conf := fastwalk.Config{Follow: false}
	err := fastwalk.Walk(&conf, dir, func(path string, d os.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil || path == dir {
			return nil
		}

		switch {
		case d.IsDir():
			folders.Add(1)
		case d.Type().IsRegular():
			info, err := d.Info()
			if err != nil {
				return nil
			}
			files.Add(1)
			bytes.Add(info.Size())
		}
		return nil
	})
	if err != nil {
		return Usage{}, err
	}

	return Usage{Files: files.Load(), Folders: folders.Load(), Bytes: bytes.Load()}, nil
}
