package utils

import (
	"fmt"
	"os"
	"sync"

	"github.com/nodewee/ocr-skill/pkg/interfaces"
	"github.com/nodewee/ocr-skill/pkg/logger"
)

// SimpleTempManager manages the temporary files of one request.
// Everything lives under a private work directory created inside parentDir
// on first use and removed on Cleanup.
type SimpleTempManager struct {
	parentDir  string
	workDir    string
	tempFiles  []string
	tempDirs   []string
	mu         sync.Mutex
	logger     *logger.Logger
	cleanupFns []func() error
}

// Ensure SimpleTempManager implements TempFileManager interface
var _ interfaces.TempFileManager = (*SimpleTempManager)(nil)

// NewSimpleTempManager creates a temp manager below parentDir (os.TempDir() when empty)
func NewSimpleTempManager(parentDir string, log *logger.Logger) *SimpleTempManager {
	return &SimpleTempManager{
		parentDir: parentDir,
		logger:    log,
	}
}

// ensureWorkDir creates the private work directory. Callers hold tm.mu.
func (tm *SimpleTempManager) ensureWorkDir() (string, error) {
	if tm.workDir != "" {
		return tm.workDir, nil
	}

	dir, err := os.MkdirTemp(tm.parentDir, "ocr-skill-")
	if err != nil {
		return "", fmt.Errorf("failed to create work directory: %w", err)
	}

	tm.workDir = dir
	tm.logger.Debug("Created work directory: %s", dir)
	return dir, nil
}

// CreateTempDir creates a temporary directory
func (tm *SimpleTempManager) CreateTempDir(prefix string) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	base, err := tm.ensureWorkDir()
	if err != nil {
		return "", err
	}

	sanitizedPrefix := SanitizeFileName(prefix)
	if sanitizedPrefix == "" {
		sanitizedPrefix = "temp"
	}

	tempDir, err := os.MkdirTemp(base, sanitizedPrefix+"-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}

	tm.tempDirs = append(tm.tempDirs, tempDir)
	tm.logger.Debug("Created temp directory: %s", tempDir)
	return tempDir, nil
}

// CreateTempFile creates an empty temporary file and returns its path
func (tm *SimpleTempManager) CreateTempFile(prefix, suffix string) (string, error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	base, err := tm.ensureWorkDir()
	if err != nil {
		return "", err
	}

	sanitizedPrefix := SanitizeFileName(prefix)
	if sanitizedPrefix == "" {
		sanitizedPrefix = "temp"
	}

	f, err := os.CreateTemp(base, sanitizedPrefix+"-*"+suffix)
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	path := f.Name()
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}

	tm.tempFiles = append(tm.tempFiles, path)
	tm.logger.Debug("Created temp file: %s", path)
	return path, nil
}

// RegisterCleanupFunc registers a cleanup function
func (tm *SimpleTempManager) RegisterCleanupFunc(fn func() error) {
	tm.mu.Lock()
	defer tm.mu.Unlock()
	tm.cleanupFns = append(tm.cleanupFns, fn)
}

// WithCleanup executes a function with automatic cleanup
func (tm *SimpleTempManager) WithCleanup(fn func() error) error {
	defer func() {
		if err := tm.Cleanup(); err != nil {
			tm.logger.Error("Temporary file cleanup failed: %v", err)
		}
	}()
	return fn()
}

// Cleanup removes registered files, directories and the work directory
func (tm *SimpleTempManager) Cleanup() error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	var errs []error

	for _, fn := range tm.cleanupFns {
		if err := fn(); err != nil {
			errs = append(errs, err)
			tm.logger.Warn("Cleanup function failed: %v", err)
		}
	}

	for _, file := range tm.tempFiles {
		if err := os.Remove(file); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove temp file %s: %w", file, err))
			tm.logger.Warn("Failed to remove temporary file: %s, error: %v", file, err)
		} else {
			tm.logger.Debug("Removed temporary file: %s", file)
		}
	}

	for _, dir := range tm.tempDirs {
		if err := os.RemoveAll(dir); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove temp dir %s: %w", dir, err))
			tm.logger.Warn("Failed to remove temporary directory: %s, error: %v", dir, err)
		}
	}

	if tm.workDir != "" {
		if err := os.RemoveAll(tm.workDir); err != nil && !os.IsNotExist(err) {
			errs = append(errs, fmt.Errorf("failed to remove work dir %s: %w", tm.workDir, err))
		} else {
			tm.logger.Debug("Removed work directory: %s", tm.workDir)
		}
		tm.workDir = ""
	}

	tm.tempFiles = tm.tempFiles[:0]
	tm.tempDirs = tm.tempDirs[:0]
	tm.cleanupFns = tm.cleanupFns[:0]

	if len(errs) > 0 {
		return fmt.Errorf("cleanup failed with %d errors: %v", len(errs), errs)
	}

	return nil
}
