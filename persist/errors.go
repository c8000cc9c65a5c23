package persist

import "errors"

var (
	// ErrNotFound is returned when no snapshot exists for the requested ID.
	ErrNotFound = errors.New("snapshot not found")
	// ErrSaveFailed wraps storage failures during Save.
	ErrSaveFailed = errors.New("snapshot save failed")
	// ErrLoadFailed wraps storage failures during Load.
	ErrLoadFailed = errors.New("snapshot load failed")
	// ErrCursorNotFound is returned by Restore when the persisted cursor ID
	// does not resolve to a node in the restored tree.
	ErrCursorNotFound = errors.New("snapshot cursor not found in tree")
)
