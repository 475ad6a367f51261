package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewee/ocr-skill/pkg/types"
)

func TestGetFileInfo(t *testing.T) {
	dir := t.TempDir()
	img := filepath.Join(dir, "Scan.JPG")
	pdf := filepath.Join(dir, "doc.pdf")
	txt := filepath.Join(dir, "notes.txt")
	for _, p := range []string{img, pdf, txt} {
		require.NoError(t, os.WriteFile(p, []byte("data"), 0o644))
	}

	info, err := GetFileInfo(img)
	require.NoError(t, err)
	assert.Equal(t, "jpg", info.Extension)
	assert.Equal(t, types.SourceKindImage, info.Kind)
	assert.EqualValues(t, 4, info.Size)

	info, err = GetFileInfo(pdf)
	require.NoError(t, err)
	assert.Equal(t, types.SourceKindPDF, info.Kind)

	_, err = GetFileInfo(txt)
	assert.True(t, IsType(err, ErrorTypeInput))
	assert.Contains(t, GetHint(err), "pdf")
}

func TestGetFileInfo_Missing(t *testing.T) {
	_, err := GetFileInfo(filepath.Join(t.TempDir(), "nope.png"))
	require.Error(t, err)
	assert.Equal(t, ExitInput, ExitCode(err))

	_, err = GetFileInfo(t.TempDir())
	assert.True(t, IsType(err, ErrorTypeInput))

	_, err = GetFileInfo("  ")
	assert.True(t, IsType(err, ErrorTypeInput))
}

func TestSourceKindFor(t *testing.T) {
	for _, ext := range []string{"png", "jpeg", "BMP", "gif", "webp", "tiff", "tif"} {
		kind, ok := SourceKindFor(ext)
		assert.True(t, ok, ext)
		assert.Equal(t, types.SourceKindImage, kind, ext)
	}
	_, ok := SourceKindFor("svg")
	assert.False(t, ok)
}

func TestSanitizeFileName(t *testing.T) {
	assert.Equal(t, "a_b", SanitizeFileName("a/b"))
	assert.Equal(t, "", SanitizeFileName("  "))
}
