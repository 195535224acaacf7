// Package storage resolves resume locators to document bytes.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the locator points at nothing.
var ErrNotFound = errors.New("resume not found")

// Downloader fetches a stored resume.
type Downloader interface {
	Download(ctx context.Context, locator string) ([]byte, error)
}
