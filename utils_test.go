package lblcount

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFilesRecursiveAndSorted(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"b.json",
		"a/z.json",
		"a/b/c/deep.json",
		"a.json",
		"notes.txt",
		"a/b/image.jpg",
		"a/b/json", // No extension.
	} {
		writeFile(t, dir, name, "{}")
	}
	// Entries are matched by name only, so a directory with the extension is returned too.
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "dir.json"), 0755))

	files, err := FindFiles(dir, ".json")
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "a.json"),
		filepath.Join(dir, "a/b/c/deep.json"),
		filepath.Join(dir, "a/z.json"),
		filepath.Join(dir, "b.json"),
		filepath.Join(dir, "dir.json"),
	}, files)
}

func TestFindFilesSkipsRoot(t *testing.T) {
	root := filepath.Join(t.TempDir(), "labels.json")
	writeFile(t, root, "one.json", "{}")

	files, err := FindFiles(root, ".json")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(root, "one.json")}, files)
}

func TestFindFilesNoMatches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "x/readme.md", "")

	files, err := FindFiles(dir, ".json")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindFilesNotADirectory(t *testing.T) {
	dir := t.TempDir()
	file := writeFile(t, dir, "a.json", "{}")

	for _, path := range []string{file, filepath.Join(dir, "missing")} {
		_, err := FindFiles(path, ".json")
		assert.True(t, errors.Is(err, ErrNotADirectory), "unexpected error for %q: %v", path, err)
	}
}

func TestFindFilesSymlinkedRoot(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "data/one.json", "{}")
	link := filepath.Join(dir, "link")
	if err := os.Symlink(filepath.Join(dir, "data"), link); err != nil {
		t.Skipf("symlinks not supported: %v", err)
	}

	files, err := FindFiles(link, ".json")
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, "one.json", filepath.Base(files[0]))
}
