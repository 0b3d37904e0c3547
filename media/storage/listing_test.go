package storage

import (
	"os"
	"path/filepath"
	"testing"

	imgtest "github.com/leeforge/resizer/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractDropPath(t *testing.T) {
	dir := t.TempDir()
	png := imgtest.WriteImage(t, dir, "a.png", 4, 4)

	spaced := filepath.Join(dir, "with space")
	require.NoError(t, os.Mkdir(spaced, 0o755))
	jpg := imgtest.WriteImage(t, spaced, "b c.jpg", 4, 4)
	txt := imgtest.WriteFile(t, dir, "notes.txt", []byte("x"))

	tests := []struct {
		name string
		data string
		want string
		ok   bool
	}{
		{"plain", png, png, true},
		{"first of many", png + " " + jpg, png, true},
		{"braced with spaces", "{" + jpg + "} " + png, jpg, true},
		{"quoted", `"` + png + `"`, png, true},
		{"unsupported", txt, "", false},
		{"missing", filepath.Join(dir, "gone.png"), "", false},
		{"empty", "   ", "", false},
		{"directory", "{" + spaced + ".png}", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractDropPath(tt.data)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFileSizeMB(t *testing.T) {
	dir := t.TempDir()
	path := imgtest.WriteFile(t, dir, "blob.bin", make([]byte, 512*1024))

	assert.InDelta(t, 0.5, FileSizeMB(path), 1e-9)
	assert.Zero(t, FileSizeMB(filepath.Join(dir, "missing")))
}

func TestDirectoryImages(t *testing.T) {
	dir := t.TempDir()
	b := imgtest.WriteImage(t, dir, "b.PNG", 2, 2)
	a := imgtest.WriteImage(t, dir, "a.jpg", 2, 2)
	imgtest.WriteFile(t, dir, "readme.md", []byte("x"))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "folder.png"), 0o755))

	assert.Equal(t, []string{a, b}, DirectoryImages(dir))
	assert.Empty(t, DirectoryImages(filepath.Join(dir, "missing")))
}
