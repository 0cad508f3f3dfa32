package namespace

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// maxSuffix bounds the suffix search of Allocate.
const maxSuffix = 100000

// Allocate returns a name derived from desired that is free in dir at the
// moment of the check. Taken names are suffixed before the last dot:
// report.pdf becomes report_1.pdf, README becomes README_1.
//
// The check and the later create are separate steps, so two concurrent
// allocators can pick the same name. Callers that must not overwrite should
// create the file exclusively.
func Allocate(dir, desired string) (string, error) {
	free, err := isFree(dir, desired)
	if err != nil || free {
		return desired, err
	}

	stem, ext := splitName(desired)
	for i := 1; i <= maxSuffix; i++ {
		candidate := stem + "_" + strconv.Itoa(i) + ext
		free, err := isFree(dir, candidate)
		if err != nil {
			return "", err
		}
		if free {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("allocate %q: %w", desired, fs.ErrExist)
}

// splitName splits at the last dot. The dot stays with the extension.
func splitName(name string) (stem, ext string) {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return name, ""
	}
	return name[:idx], name[idx:]
}

func isFree(dir, name string) (bool, error) {
	_, err := os.Lstat(filepath.Join(dir, name))
	switch {
	case err == nil:
		return false, nil
	case errors.Is(err, fs.ErrNotExist):
		return true, nil
	default:
		return false, err
	}
}
