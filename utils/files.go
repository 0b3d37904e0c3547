package utils

import (
	"os"
	"path/filepath"
	"strings"
)

// Exists stats path; a missing path is not an error.
func Exists(path string) (isDir bool, exists bool, err error) {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false, false, nil
	}
	if err != nil {
		return false, false, err
	}
	return info.IsDir(), true, nil
}

// SplitExt splits a path into everything before the extension and the
// extension itself: "/d/photo.png" -> ("/d/photo", ".png"). A dot file
// without a further dot has no extension: "/d/.hidden" -> ("/d/.hidden", "").
func SplitExt(path string) (string, string) {
	ext := filepath.Ext(path)
	if ext == filepath.Base(path) {
		return path, ""
	}
	return strings.TrimSuffix(path, ext), ext
}

// CreateDir creates path and any missing parents.
func CreateDir(path string) error {
	return os.MkdirAll(path, os.ModePerm)
}
