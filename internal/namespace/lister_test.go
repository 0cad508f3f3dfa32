package namespace

import (
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Name
	}
	return out
}

func TestListFoldersBeforeFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "b"), 0o755))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "a"), 0o755))
	touch(t, dir, "z.txt", "y.txt")

	entries, err := List(dir)
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "y.txt", "z.txt"}, names(entries))
	for _, e := range entries[:2] {
		assert.Equal(t, KindFolder, e.Kind)
		assert.Zero(t, e.Size)
	}
	for _, e := range entries[2:] {
		assert.Equal(t, KindFile, e.Kind)
		assert.Equal(t, int64(len(e.Name)), e.Size)
		assert.False(t, e.ModifiedAt.IsZero())
	}
}

func TestListEmptyDirectory(t *testing.T) {
	entries, err := List(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListExcludesSymlinksAndSpecialFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "real.txt")

	if err := os.Symlink(filepath.Join(dir, "real.txt"), filepath.Join(dir, "link.txt")); err != nil {
		t.Skipf("symlinks unavailable: %v", err)
	}
	require.NoError(t, os.Symlink(dir, filepath.Join(dir, "looped")))

	sock := filepath.Join(dir, "s.sock")
	if l, err := net.Listen("unix", sock); err == nil {
		defer l.Close()
	}

	entries, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"real.txt"}, names(entries))
}

func TestListErrors(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "file.txt")

	_, err := List(filepath.Join(dir, "missing"))
	assert.Equal(t, KindNotFound, classify("list", Location{}, "", err).Kind)

	_, err = List(filepath.Join(dir, "file.txt"))
	assert.Equal(t, KindNotADirectory, classify("list", Location{}, "", err).Kind)
}

func TestFilter(t *testing.T) {
	entries := []Entry{
		{Name: "docs", Kind: KindFolder},
		{Name: "b.pdf", Kind: KindFile},
		{Name: "a.txt", Kind: KindFile},
		{Name: "c.pdf", Kind: KindFile},
	}

	got, err := Filter(entries, "*.pdf")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.pdf", "c.pdf"}, names(got))

	got, err = Filter(entries, "")
	require.NoError(t, err)
	assert.Len(t, got, 4)

	got, err = Filter(entries, "{docs,a.*}")
	require.NoError(t, err)
	assert.Equal(t, []string{"docs", "a.txt"}, names(got))
}

func TestEntryKindString(t *testing.T) {
	assert.Equal(t, "file", KindFile.String())
	assert.Equal(t, "folder", KindFolder.String())
}
