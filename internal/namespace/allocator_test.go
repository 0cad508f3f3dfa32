package namespace

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(name), 0o644))
	}
}

func TestAllocate(t *testing.T) {
	tests := []struct {
		name     string
		existing []string
		desired  string
		want     string
	}{
		{"free name unchanged", nil, "report.pdf", "report.pdf"},
		{"first suffix", []string{"report.pdf"}, "report.pdf", "report_1.pdf"},
		{"skips taken suffixes", []string{"report.pdf", "report_1.pdf"}, "report.pdf", "report_2.pdf"},
		{"no extension", []string{"README", "README_1"}, "README", "README_2"},
		{"last dot only", []string{"a.tar.gz"}, "a.tar.gz", "a.tar_1.gz"},
		{"leading dot", []string{".bashrc"}, ".bashrc", "_1.bashrc"},
		{"trailing dot", []string{"notes."}, "notes.", "notes_1."},
		{"gap is reused", []string{"x.txt", "x_2.txt"}, "x.txt", "x_1.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			touch(t, dir, tt.existing...)

			got, err := Allocate(dir, tt.desired)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllocateTreatsFoldersAsTaken(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "photos"), 0o755))

	got, err := Allocate(dir, "photos")
	require.NoError(t, err)
	assert.Equal(t, "photos_1", got)
}

func TestAllocateTreatsDanglingSymlinksAsTaken(t *testing.T) {
	dir := t.TempDir()
	if err := os.Symlink(filepath.Join(dir, "missing"), filepath.Join(dir, "link.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}

	got, err := Allocate(dir, "link.txt")
	require.NoError(t, err)
	assert.Equal(t, "link_1.txt", got)
}
