package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/GradPipeOrg/showoff/internal/logger"
	"github.com/GradPipeOrg/showoff/internal/metrics"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	DefaultKey = "showoff:jobs"

	processingSuffix = ":processing"

	// BLMOVE takes whole seconds; anything lower blocks forever.
	minPollTimeout = time.Second
)

// ErrNoJob is returned by Dequeue when the poll timeout elapsed without a
// usable job.
var ErrNoJob = errors.New("no job available")

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisClient creates a go-redis client with conservative timeouts.
func NewRedisClient(cfg RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
		MinIdleConns: 2,
	})
}

// Redis is a FIFO job queue on a Redis list. Producers LPUSH onto key and
// workers BLMOVE jobs into key+":processing", where a job stays until it is
// acknowledged. Whatever a crashed worker left there is put back by Recover.
type Redis struct {
	client     *redis.Client
	key        string
	processing string
	logger     *zap.Logger
}

func NewRedis(client *redis.Client, key string, log *zap.Logger) *Redis {
	key = strings.TrimSpace(key)
	if key == "" {
		key = DefaultKey
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Redis{
		client:     client,
		key:        key,
		processing: key + processingSuffix,
		logger:     log.With(zap.String("queue", key)),
	}
}

func (q *Redis) Ping(ctx context.Context) error {
	if err := q.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

func (q *Redis) Close() error {
	if q.client != nil {
		return q.client.Close()
	}
	return nil
}

// Enqueue validates the job and pushes it. A missing id or timestamp is
// filled in.
func (q *Redis) Enqueue(ctx context.Context, job EvaluationJob) (EvaluationJob, error) {
	if err := job.Validate(); err != nil {
		return job, err
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	payload, err := json.Marshal(job)
	if err != nil {
		return job, fmt.Errorf("encode job: %w", err)
	}

	if err := q.client.LPush(ctx, q.key, payload).Err(); err != nil {
		return job, fmt.Errorf("push job: %w", err)
	}

	q.logger.Debug("job enqueued", logger.JobFields(job.ID, job.UserID, job.GitHubUsername)...)
	return job, nil
}

// Dequeue blocks up to timeout for the next job and moves it to the
// processing list. The caller must Ack the job once it is handled. Payloads
// that do not decode or validate are dropped and reported as ErrNoJob.
func (q *Redis) Dequeue(ctx context.Context, timeout time.Duration) (*EvaluationJob, error) {
	if timeout < minPollTimeout {
		timeout = minPollTimeout
	}

	payload, err := q.client.BLMove(ctx, q.key, q.processing, "RIGHT", "LEFT", timeout).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNoJob
	}
	if err != nil {
		return nil, fmt.Errorf("pop job: %w", err)
	}

	var job EvaluationJob
	if err := json.Unmarshal([]byte(payload), &job); err != nil {
		q.drop(ctx, payload, err)
		return nil, ErrNoJob
	}
	if err := job.Validate(); err != nil {
		q.drop(ctx, payload, err)
		return nil, ErrNoJob
	}
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	job.raw = payload

	return &job, nil
}

// Ack removes a handled job from the processing list. Jobs that did not
// come from Dequeue are ignored.
func (q *Redis) Ack(ctx context.Context, job EvaluationJob) error {
	if job.raw == "" {
		return nil
	}
	if err := q.client.LRem(ctx, q.processing, 1, job.raw).Err(); err != nil {
		return fmt.Errorf("ack job %s: %w", job.ID, err)
	}
	return nil
}

// Recover moves every job left in the processing list back onto the queue,
// oldest first in line, and returns how many were moved. Call it before the
// workers start; jobs that another live worker is handling would be run twice.
func (q *Redis) Recover(ctx context.Context) (int, error) {
	moved := 0
	for {
		err := q.client.LMove(ctx, q.processing, q.key, "LEFT", "RIGHT").Err()
		if errors.Is(err, redis.Nil) {
			break
		}
		if err != nil {
			return moved, fmt.Errorf("recover jobs: %w", err)
		}
		moved++
	}

	if moved > 0 {
		q.logger.Warn("requeued unacknowledged jobs", zap.Int("jobs", moved))
	}
	return moved, nil
}

// Len reports the number of waiting jobs.
func (q *Redis) Len(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.key).Result()
}

// Pending reports the number of jobs taken by workers and not yet
// acknowledged.
func (q *Redis) Pending(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.processing).Result()
}

func (q *Redis) drop(ctx context.Context, payload string, err error) {
	metrics.JobsDropped.Inc()
	q.logger.Warn("dropping malformed job",
		zap.Error(err),
		zap.String("payload", logger.TruncateForLog(payload, 200)),
	)

	if err := q.client.LRem(ctx, q.processing, 1, payload).Err(); err != nil {
		q.logger.Warn("failed to remove malformed job", zap.Error(err))
	}
}
