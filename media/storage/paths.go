package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/leeforge/resizer/errors"
	"github.com/leeforge/resizer/utils"
)

// DefaultSuffix is inserted between stem and extension of derived outputs.
const DefaultSuffix = "_resized"

var supportedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".bmp":  {},
	".gif":  {},
	".tiff": {},
	".webp": {},
}

// IsSupportedImage reports whether path has an input extension the decoder
// accepts. The check is case-insensitive and does not touch the filesystem.
func IsSupportedImage(path string) bool {
	_, ok := supportedExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// SupportedExtensions returns the accepted input extensions, sorted.
func SupportedExtensions() []string {
	exts := make([]string, 0, len(supportedExtensions))
	for ext := range supportedExtensions {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}

// DefaultOutputPath derives the output path for inputPath: same directory
// and stem, suffix before the new extension.
//
//	DefaultOutputPath("/d/photo.png", ".jpg", "") == "/d/photo_resized.jpg"
//
// An empty suffix means DefaultSuffix.
func DefaultOutputPath(inputPath, ext, suffix string) (string, error) {
	if strings.TrimSpace(inputPath) == "" {
		return "", errors.NewNoSourcePath()
	}
	if suffix == "" {
		suffix = DefaultSuffix
	}

	stem, _ := utils.SplitExt(filepath.Base(inputPath))
	return filepath.Join(filepath.Dir(inputPath), stem+suffix+ext), nil
}

// EnsureUnique returns candidate if nothing exists there, otherwise the
// first free "stem_N.ext" for N = 1, 2, ... It never returns a path that is
// known to exist. Paths that cannot be inspected count as free; writing to
// them fails later with a classified error.
func EnsureUnique(candidate string) string {
	if !pathExists(candidate) {
		return candidate
	}

	base, ext := utils.SplitExt(candidate)
	for n := 1; ; n++ {
		next := fmt.Sprintf("%s_%d%s", base, n, ext)
		if !pathExists(next) {
			return next
		}
	}
}

// BackupName returns "stem_backup.ext" next to path. It names a file only;
// nothing is checked on disk.
func BackupName(path string) string {
	base, ext := utils.SplitExt(path)
	return base + "_backup" + ext
}

// CheckOutput validates an output path: non-blank, parent directory exists
// and is writable. The error is an InvalidPathError carrying the reason.
func CheckOutput(path string) error {
	if strings.TrimSpace(path) == "" {
		return errors.NewInvalidPath(path, "empty path")
	}

	parent := filepath.Dir(path)
	isDir, exists, err := utils.Exists(parent)
	switch {
	case err != nil:
		return errors.NewInvalidPath(path, "cannot inspect parent directory").WithInnerError(err)
	case !exists:
		return errors.NewInvalidPath(path, "parent directory does not exist")
	case !isDir:
		return errors.NewInvalidPath(path, "parent is not a directory")
	}

	if err := checkWritable(parent); err != nil {
		return errors.NewInvalidPath(path, "parent directory is not writable").WithInnerError(err)
	}
	return nil
}

// ValidateOutput is the boolean form of CheckOutput. It never fails.
func ValidateOutput(path string) bool {
	return CheckOutput(path) == nil
}

func pathExists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
