package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// Dir serves resumes from a local directory. Locators are relative paths
// and cannot escape the root.
type Dir struct {
	root string
}

func NewDir(root string) *Dir {
	if strings.TrimSpace(root) == "" {
		root = "."
	}
	return &Dir{root: root}
}

func (d *Dir) Download(ctx context.Context, locator string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rel := filepath.Clean("/" + strings.TrimSpace(locator))
	if rel == "/" {
		return nil, fmt.Errorf("%w: empty locator", ErrNotFound)
	}

	data, err := os.ReadFile(filepath.Join(d.root, rel))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, locator)
		}
		return nil, fmt.Errorf("read %s: %w", locator, err)
	}
	return data, nil
}
