// Package filesys provides the small set of filesystem primitives the
// on-disk components of this module need: creating a data directory on
// first run and checking whether a path exists before deciding whether to
// bootstrap it.
package filesys

import (
	"errors"
	"os"
)

// ErrIsNotDir is returned by CreateDir when the path already exists as a
// non-directory file.
var ErrIsNotDir = errors.New("path isn't a directory")

// CreateDir ensures dirPath exists as a directory with permission,
// creating any missing parents. If the path already exists and force is
// false, the existing stat error (if any) is returned unchanged; if force
// is true, an existing directory is left alone. A path that exists but is
// not a directory is always an error.
func CreateDir(dirPath string, permission os.FileMode, force bool) error {
	stat, err := os.Stat(dirPath)
	if stat != nil && !stat.IsDir() {
		return ErrIsNotDir
	}
	if !force && !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(dirPath, permission); err != nil {
		return err
	}
	return os.Chmod(dirPath, permission)
}

// Exists reports whether a file or directory exists at path.
func Exists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}
