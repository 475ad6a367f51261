package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodewee/ocr-skill/pkg/logger"
)

func TestSimpleTempManager_WithCleanupRemovesEverything(t *testing.T) {
	parent := t.TempDir()
	tm := NewSimpleTempManager(parent, logger.Discard())

	var file, dir string
	err := tm.WithCleanup(func() error {
		var err error
		file, err = tm.CreateTempFile("resized", ".jpg")
		require.NoError(t, err)
		assert.Equal(t, ".jpg", filepath.Ext(file))

		dir, err = tm.CreateTempDir("pages")
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(filepath.Join(dir, "page-1.png"), []byte("x"), 0o644))
		return nil
	})
	require.NoError(t, err)

	assert.NoFileExists(t, file)
	assert.NoDirExists(t, dir)

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSimpleTempManager_CleansUpOnError(t *testing.T) {
	parent := t.TempDir()
	tm := NewSimpleTempManager(parent, logger.Discard())

	called := false
	tm.RegisterCleanupFunc(func() error {
		called = true
		return nil
	})

	err := tm.WithCleanup(func() error {
		_, err := tm.CreateTempFile("x", ".png")
		require.NoError(t, err)
		return errors.New("backend failed")
	})
	assert.EqualError(t, err, "backend failed")
	assert.True(t, called)

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSimpleTempManager_NoWorkDirUntilUsed(t *testing.T) {
	parent := t.TempDir()
	tm := NewSimpleTempManager(parent, logger.Discard())
	require.NoError(t, tm.Cleanup())

	entries, err := os.ReadDir(parent)
	require.NoError(t, err)
	assert.Empty(t, entries)
}
