package queue

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/GradPipeOrg/showoff/internal/logger"
	"github.com/GradPipeOrg/showoff/internal/utils"
	"go.uber.org/zap"
)

const (
	defaultWorkers     = 2
	defaultJobTimeout  = 5 * time.Minute
	defaultPollTimeout = 5 * time.Second

	errorBackoffBase  = time.Second
	errorBackoffLimit = 30 * time.Second

	ackTimeout = 5 * time.Second
)

var waitFor = utils.WaitFor

// Source hands out jobs; Redis is the production implementation. A job
// that is never acknowledged is handed out again after a restart.
type Source interface {
	Dequeue(ctx context.Context, timeout time.Duration) (*EvaluationJob, error)
	Ack(ctx context.Context, job EvaluationJob) error
}

// Processor runs one job to completion.
type Processor interface {
	Process(ctx context.Context, job EvaluationJob) error
}

type PoolConfig struct {
	Workers     int
	JobTimeout  time.Duration
	PollTimeout time.Duration
}

// Pool drains a Source with a fixed number of workers. Each worker handles
// one job at a time; a failed job is logged, acknowledged and not retried.
// A job cut short by shutdown is left unacknowledged.
type Pool struct {
	source      Source
	processor   Processor
	workers     int
	jobTimeout  time.Duration
	pollTimeout time.Duration
	logger      *zap.Logger
}

func NewPool(source Source, processor Processor, cfg PoolConfig, log *zap.Logger) *Pool {
	if log == nil {
		log = zap.NewNop()
	}

	p := &Pool{
		source:      source,
		processor:   processor,
		workers:     cfg.Workers,
		jobTimeout:  cfg.JobTimeout,
		pollTimeout: cfg.PollTimeout,
		logger:      log,
	}
	if p.workers <= 0 {
		p.workers = defaultWorkers
	}
	if p.jobTimeout <= 0 {
		p.jobTimeout = defaultJobTimeout
	}
	if p.pollTimeout <= 0 {
		p.pollTimeout = defaultPollTimeout
	}

	return p
}

// Run blocks until ctx is cancelled and every worker has exited.
func (p *Pool) Run(ctx context.Context) {
	var wg sync.WaitGroup

	p.logger.Info("starting workers", zap.Int("workers", p.workers), zap.Duration("job_timeout", p.jobTimeout))

	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			p.work(ctx, id)
		}(i + 1)
	}

	wg.Wait()
	p.logger.Info("all workers stopped")
}

func (p *Pool) work(ctx context.Context, id int) {
	log := p.logger.With(zap.Int("worker_id", id))
	log.Debug("worker started")
	defer log.Debug("worker stopped")

	failures := 0
	for ctx.Err() == nil {
		job, err := p.source.Dequeue(ctx, p.pollTimeout)
		switch {
		case errors.Is(err, ErrNoJob):
			failures = 0
			continue
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			failures++
			delay := utils.Backoff(errorBackoffBase, errorBackoffLimit, failures)
			log.Warn("dequeue failed", zap.Error(err), zap.Duration("retry_in", delay))
			if waitFor(ctx, delay) != nil {
				return
			}
			continue
		}

		failures = 0
		p.handle(ctx, *job, log)
	}
}

func (p *Pool) handle(ctx context.Context, job EvaluationJob, log *zap.Logger) {
	log = logger.WithFields(log, logger.JobFields(job.ID, job.UserID, job.GitHubUsername)...)

	jobCtx, cancel := context.WithTimeout(ctx, p.jobTimeout)
	defer cancel()

	err := p.processor.Process(jobCtx, job)
	if ctx.Err() != nil {
		log.Warn("job interrupted by shutdown", zap.Error(err))
		return
	}

	if err != nil {
		log.Error("job failed", zap.Error(err))
	} else {
		log.Info("job done")
	}

	ackCtx, cancelAck := context.WithTimeout(context.WithoutCancel(ctx), ackTimeout)
	defer cancelAck()
	if err := p.source.Ack(ackCtx, job); err != nil {
		log.Warn("ack failed", zap.Error(err))
	}
}
