package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GradPipeOrg/showoff/internal/scoring"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

type SupabaseConfig struct {
	URL     string
	Key     string
	Table   string
	Timeout time.Duration
}

// Supabase upserts score rows through PostgREST.
type Supabase struct {
	client *resty.Client
	table  string
	logger *zap.Logger
}

type profileRow struct {
	UserID              string `json:"user_id"`
	ResumeScore         int    `json:"resume_score"`
	GitHubScore         int    `json:"github_score"`
	ShowoffScore        int    `json:"showoff_score"`
	ResumeJustification string `json:"resume_justification"`
	GitHubJustification string `json:"github_justification"`
	Rank                int    `json:"rank"`
}

func NewSupabase(cfg SupabaseConfig, logger *zap.Logger) (*Supabase, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" {
		return nil, errors.New("supabase url is required")
	}
	key := strings.TrimSpace(cfg.Key)
	if key == "" {
		return nil, errors.New("supabase key is required")
	}
	table, err := tableName(cfg.Table)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(base).
		SetAuthToken(key).
		SetHeader("apikey", key).
		SetTimeout(timeout)

	return &Supabase{client: client, table: table, logger: logger}, nil
}

func (s *Supabase) Upsert(ctx context.Context, userID string, score scoring.FinalScore) error {
	if strings.TrimSpace(userID) == "" {
		return ErrInvalidUser
	}

	row := profileRow{
		UserID:              userID,
		ResumeScore:         score.ResumeScore,
		GitHubScore:         score.GitHubScore,
		ShowoffScore:        score.ShowoffScore,
		ResumeJustification: score.ResumeJustification,
		GitHubJustification: score.GitHubJustification,
	}

	resp, err := s.client.R().
		SetContext(ctx).
		SetPathParam("table", s.table).
		SetQueryParam("on_conflict", "user_id").
		SetHeader("Prefer", "resolution=merge-duplicates,return=minimal").
		SetBody([]profileRow{row}).
		Post("/rest/v1/{table}")
	if err != nil {
		return fmt.Errorf("upsert score for %s: %w", userID, err)
	}
	if resp.IsError() {
		return fmt.Errorf("upsert score for %s: bad status %s: %s", userID, resp.Status(), strings.TrimSpace(resp.String()))
	}

	s.logger.Debug("score row upserted", zap.String("user_id", userID), zap.Int("showoff_score", score.ShowoffScore))
	return nil
}
