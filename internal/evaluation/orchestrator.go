// Package evaluation runs both scoring axes for a candidate and stores the
// combined result.
package evaluation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/GradPipeOrg/showoff/internal/logger"
	"github.com/GradPipeOrg/showoff/internal/metrics"
	"github.com/GradPipeOrg/showoff/internal/queue"
	"github.com/GradPipeOrg/showoff/internal/scoring"
	"github.com/GradPipeOrg/showoff/internal/storage"
	"github.com/GradPipeOrg/showoff/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	axisResume = "resume"
	axisGitHub = "github"

	stageDownload = "download"
	stageStore    = "store"
)

type Config struct {
	Resume  ResumeAxis
	GitHub  GitHubAxis
	Storage storage.Downloader
	Store   store.ScoreStore
}

// Orchestrator evaluates one candidate at a time per call; it holds no
// per-job state and may be shared by workers.
type Orchestrator struct {
	resume  ResumeAxis
	github  GitHubAxis
	storage storage.Downloader
	store   store.ScoreStore
	logger  *zap.Logger
}

var _ queue.Processor = (*Orchestrator)(nil)

func New(cfg Config, log *zap.Logger) (*Orchestrator, error) {
	if cfg.Resume == nil || cfg.GitHub == nil {
		return nil, errors.New("both scoring axes are required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Orchestrator{
		resume:  cfg.Resume,
		github:  cfg.GitHub,
		storage: cfg.Storage,
		store:   cfg.Store,
		logger:  log,
	}, nil
}

// Evaluate scores the resume and the GitHub account concurrently and
// combines them. A failing axis contributes 0 and never affects the other.
func (o *Orchestrator) Evaluate(ctx context.Context, document []byte, username string) scoring.FinalScore {
	return o.evaluate(ctx, document, username, o.logger)
}

func (o *Orchestrator) evaluate(ctx context.Context, document []byte, username string, log *zap.Logger) scoring.FinalScore {
	var (
		g            errgroup.Group
		resumeResult scoring.Result
		githubResult scoring.Result
	)

	g.Go(func() error {
		resumeResult = o.runAxis(log, axisResume, o.resume.Strategy(), func() scoring.Result {
			return o.resume.Score(ctx, document)
		})
		return nil
	})
	g.Go(func() error {
		githubResult = o.runAxis(log, axisGitHub, o.github.Strategy(), func() scoring.Result {
			return o.github.Score(ctx, username)
		})
		return nil
	})
	_ = g.Wait()

	return scoring.Combine(resumeResult, githubResult)
}

func (o *Orchestrator) runAxis(log *zap.Logger, axis string, strategy Strategy, score func() scoring.Result) (res scoring.Result) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			res = scoring.Failed(fmt.Errorf("%s axis panicked: %v", axis, r))
		}
		res.Score = scoring.Clamp(res.Score)

		metrics.AxisScore.WithLabelValues(axis, string(strategy)).Observe(float64(res.Score))
		log.Debug("axis scored",
			zap.String("axis", axis),
			zap.String("strategy", string(strategy)),
			zap.Int("score", res.Score),
			zap.Duration("took", time.Since(start)),
		)
	}()

	return score()
}

// Process downloads the resume, evaluates and upserts the result. Only a
// missing resume or a failed write is an error; scoring failures are
// stored as zero scores.
func (o *Orchestrator) Process(ctx context.Context, job queue.EvaluationJob) error {
	if o.storage == nil || o.store == nil {
		return errors.New("orchestrator has no storage or store configured")
	}

	start := time.Now()
	metrics.JobsActive.Inc()
	defer metrics.JobsActive.Dec()

	log := logger.WithFields(o.logger, logger.JobFields(job.ID, job.UserID, job.GitHubUsername)...)
	log.Info("evaluation started", zap.String("resume_locator", job.ResumeLocator))

	document, err := o.storage.Download(ctx, job.ResumeLocator)
	if err != nil {
		metrics.JobsFailed.WithLabelValues(stageDownload).Inc()
		return fmt.Errorf("download resume %s: %w", job.ResumeLocator, err)
	}

	final := o.evaluate(ctx, document, job.GitHubUsername, log)

	if err := o.store.Upsert(ctx, job.UserID, final); err != nil {
		metrics.JobsFailed.WithLabelValues(stageStore).Inc()
		return fmt.Errorf("store score: %w", err)
	}

	metrics.JobsProcessed.Inc()
	metrics.JobDuration.Observe(time.Since(start).Seconds())

	log.Info("evaluation stored",
		zap.Int("resume_score", final.ResumeScore),
		zap.Int("github_score", final.GitHubScore),
		zap.Int("showoff_score", final.ShowoffScore),
		zap.Duration("took", time.Since(start)),
	)
	return nil
}
