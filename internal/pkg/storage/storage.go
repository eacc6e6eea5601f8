package storage

import (
	"context"
	"io"
)

// FileStorage persists generated artifacts (timesheet workbooks).
type FileStorage interface {
	// Upload stores a file and returns the file path/key
	Upload(ctx context.Context, file io.Reader, path string) (string, error)

	// GetURL returns the public URL for a stored file
	GetURL(path string) string

	// Exists checks if file exists
	Exists(ctx context.Context, path string) (bool, error)
}
