package interfaces

// TempFileManager owns the temporary files of a single request
type TempFileManager interface {
	// CreateTempDir creates a directory that is removed on cleanup
	CreateTempDir(prefix string) (string, error)

	// CreateTempFile creates an empty file that is removed on cleanup
	CreateTempFile(prefix, suffix string) (string, error)

	// RegisterCleanupFunc schedules fn to run on cleanup
	RegisterCleanupFunc(fn func() error)

	// WithCleanup runs fn and cleans up afterwards regardless of the outcome
	WithCleanup(fn func() error) error

	// Cleanup removes everything created so far
	Cleanup() error
}
