package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GradPipeOrg/showoff/internal/evaluation"
	"github.com/GradPipeOrg/showoff/internal/queue"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Drain the evaluation queue and store scores",
	Run: func(_ *cobra.Command, _ []string) {
		runWorker()
	},
}

func init() {
	rootCmd.AddCommand(workerCmd)
}

func runWorker() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log, config := setup()
	log.Info("starting the showoff worker", zap.String("version", version))

	resumeAxis, githubAxis, err := newAxes(ctx, config, log)
	if err != nil {
		log.Fatal("building scoring axes", zap.Error(err))
	}

	downloader, err := newDownloader(config.Storage, log)
	if err != nil {
		log.Fatal("building resume storage", zap.Error(err))
	}

	scores, closeStore, err := newStore(config.Store, log)
	if err != nil {
		log.Fatal("building score store", zap.Error(err))
	}
	defer closeStore()

	orchestrator, err := evaluation.New(evaluation.Config{
		Resume:  resumeAxis,
		GitHub:  githubAxis,
		Storage: downloader,
		Store:   scores,
	}, log)
	if err != nil {
		log.Fatal("building orchestrator", zap.Error(err))
	}

	q := queue.NewRedis(queue.NewRedisClient(queue.RedisConfig{
		Addr:     config.Queue.RedisAddr,
		Password: config.Queue.RedisPassword,
		DB:       config.Queue.RedisDB,
	}), config.Queue.Key, log)
	defer q.Close()

	if err := q.Ping(ctx); err != nil {
		log.Fatal("connecting to the queue", zap.Error(err))
	}
	if _, err := q.Recover(ctx); err != nil {
		log.Fatal("requeueing unacknowledged jobs", zap.Error(err))
	}

	if config.Metrics.Addr != "" {
		srv := serveMetrics(config.Metrics.Addr, log)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	queue.NewPool(q, orchestrator, queue.PoolConfig{
		Workers:     config.Queue.Workers,
		JobTimeout:  config.Queue.JobTimeout,
		PollTimeout: config.Queue.PollTimeout,
	}, log).Run(ctx)

	log.Info("exiting", zap.String("reason", "shutdown requested"))
}

func serveMetrics(addr string, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("serving metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("metrics server stopped", zap.Error(err))
		}
	}()

	return srv
}
