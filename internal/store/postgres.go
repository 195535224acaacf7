package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/GradPipeOrg/showoff/internal/scoring"
	"github.com/lib/pq"
	"go.uber.org/zap"
)

const upsertTemplate = `INSERT INTO %s
	(user_id, resume_score, github_score, showoff_score, resume_justification, github_justification, rank, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, 0, now())
ON CONFLICT (user_id) DO UPDATE SET
	resume_score = EXCLUDED.resume_score,
	github_score = EXCLUDED.github_score,
	showoff_score = EXCLUDED.showoff_score,
	resume_justification = EXCLUDED.resume_justification,
	github_justification = EXCLUDED.github_justification,
	rank = 0,
	updated_at = EXCLUDED.updated_at`

// Postgres writes scores to a profiles table. The rank column is reset
// on every write; ranking happens elsewhere.
type Postgres struct {
	db     *sql.DB
	upsert string
	logger *zap.Logger
}

// OpenPostgres connects with lib/pq.
func OpenPostgres(dsn, table string, logger *zap.Logger) (*Postgres, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres dsn is required")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return NewPostgres(db, table, logger)
}

func NewPostgres(db *sql.DB, table string, logger *zap.Logger) (*Postgres, error) {
	name, err := tableName(table)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Postgres{
		db:     db,
		upsert: fmt.Sprintf(upsertTemplate, pq.QuoteIdentifier(name)),
		logger: logger,
	}, nil
}

func (p *Postgres) Ping(ctx context.Context) error {
	return p.db.PingContext(ctx)
}

func (p *Postgres) Close() error {
	if p.db != nil {
		return p.db.Close()
	}
	return nil
}

func (p *Postgres) Upsert(ctx context.Context, userID string, score scoring.FinalScore) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUser
	}

	_, err := p.db.ExecContext(ctx, p.upsert,
		userID,
		score.ResumeScore,
		score.GitHubScore,
		score.ShowoffScore,
		score.ResumeJustification,
		score.GitHubJustification,
	)
	if err != nil {
		return fmt.Errorf("upsert score for %s: %w", userID, err)
	}

	p.logger.Debug("score row upserted", zap.String("user_id", userID), zap.Int("showoff_score", score.ShowoffScore))
	return nil
}
