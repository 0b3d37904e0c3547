package storage

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// ExtractDropPath pulls the first path out of a drag-and-drop payload.
// Paths containing spaces arrive wrapped in braces ("{/a b/c.png} /d.png").
// The path must exist and have a supported extension.
func ExtractDropPath(data string) (string, bool) {
	data = strings.TrimSpace(data)
	if data == "" {
		return "", false
	}

	var first string
	if strings.HasPrefix(data, "{") {
		end := strings.Index(data, "}")
		if end < 0 {
			first = data[1:]
		} else {
			first = data[1:end]
		}
	} else {
		first = strings.Fields(data)[0]
	}
	first = strings.Trim(first, `"'`)

	if first == "" || !IsSupportedImage(first) {
		return "", false
	}
	if info, err := os.Stat(first); err != nil || info.IsDir() {
		return "", false
	}
	return first, true
}

// FileSizeMB returns the size of path in MiB, or 0 if it cannot be read.
func FileSizeMB(path string) float64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return float64(info.Size()) / (1024 * 1024)
}

// DirectoryImages lists supported image files directly inside dir, sorted.
// Unreadable entries are skipped; an unreadable dir yields an empty list.
func DirectoryImages(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var images []string
	for _, entry := range entries {
		full := filepath.Join(dir, entry.Name())
		if !IsSupportedImage(full) {
			continue
		}
		info, err := os.Stat(full)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		images = append(images, full)
	}

	sort.Strings(images)
	return images
}
