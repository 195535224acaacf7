// Package store persists final scores on the candidate profile record.
package store

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/GradPipeOrg/showoff/internal/scoring"
)

const defaultTable = "profiles"

var ErrInvalidUser = errors.New("user id is required")

var identPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ScoreStore overwrites the stored score of a user. Writing the same score
// twice leaves the same row.
type ScoreStore interface {
	Upsert(ctx context.Context, userID string, score scoring.FinalScore) error
}

func tableName(table string) (string, error) {
	if table == "" {
		return defaultTable, nil
	}
	if !identPattern.MatchString(table) {
		return "", fmt.Errorf("invalid table name %q", table)
	}
	return table, nil
}
