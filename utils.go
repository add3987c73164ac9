package lblcount

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ErrNotADirectory is returned when a path that must be a directory is missing or is a file.
var ErrNotADirectory = errors.New("not a directory")

// CheckDir returns an error wrapping ErrNotADirectory unless dirPath is an existing directory.
func CheckDir(dirPath string) error {
	dirInfo, err := os.Stat(dirPath)
	if err != nil {
		return fmt.Errorf("cannot read directory %q: %w (%v)", dirPath, ErrNotADirectory, err)
	}
	if !dirInfo.IsDir() {
		return fmt.Errorf("cannot read directory %q: %w", dirPath, ErrNotADirectory)
	}
	return nil
}

// FindFiles returns all entries with file extension ext found in the tree rooted at dirPath, at
// any depth. All entries are returned if ext is empty.
//
// Entries are not filtered by type, so a directory named "x.json" is returned, and fails later
// when it is parsed. The paths are sorted by their full path string. No matches is not an error.
func FindFiles(dirPath, ext string) ([]string, error) {
	if err := CheckDir(dirPath); err != nil {
		return nil, err
	}

	// WalkDir does not follow a symlinked root unless it ends in a separator.
	root := dirPath
	if fi, err := os.Lstat(dirPath); err == nil && fi.Mode()&fs.ModeSymlink != 0 {
		root = dirPath + string(os.PathSeparator)
	}

	files := make([]string, 0, 100)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to access %q: %w", path, err)
		}
		// Any entry below the root with the requested extension/suffix, whatever its type.
		if path == root || !strings.HasSuffix(d.Name(), ext) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

// readFile uses io.ReadAll to read the file at path.
func readFile(path string) (data []byte, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer closeWithErrCheck(f, &err)

	data, err = io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return data, nil
}

// closeWithErrCheck calls c.Close(). If it returns an error, and (*e == nil), e is set to that
// error.
func closeWithErrCheck(c io.Closer, e *error) {
	err := c.Close()
	if err != nil && *e == nil {
		*e = err
	}
}
