package cmd

import (
	"context"
	"fmt"

	"github.com/GradPipeOrg/showoff/internal/queue"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var enqueueCmd = &cobra.Command{
	Use:   "enqueue",
	Short: "Push an evaluation job onto the queue",
	Run: func(cmd *cobra.Command, _ []string) {
		runEnqueue(cmd)
	},
}

func init() {
	rootCmd.AddCommand(enqueueCmd)

	enqueueCmd.Flags().String("user-id", "", "profile id the score is written to")
	enqueueCmd.Flags().StringP("github-username", "u", "", "github username to evaluate")
	enqueueCmd.Flags().StringP("resume", "r", "", "resume locator in the storage backend")
}

func runEnqueue(cmd *cobra.Command) {
	ctx := context.Background()
	log, config := setup()

	userID, _ := cmd.Flags().GetString("user-id")
	username, _ := cmd.Flags().GetString("github-username")
	locator, _ := cmd.Flags().GetString("resume")

	q := queue.NewRedis(queue.NewRedisClient(queue.RedisConfig{
		Addr:     config.Queue.RedisAddr,
		Password: config.Queue.RedisPassword,
		DB:       config.Queue.RedisDB,
	}), config.Queue.Key, log)
	defer q.Close()

	job, err := q.Enqueue(ctx, queue.NewJob(userID, username, locator))
	if err != nil {
		log.Fatal("enqueueing job", zap.Error(err))
	}

	waiting, err := q.Len(ctx)
	if err != nil {
		log.Warn("reading queue length", zap.Error(err))
	}

	log.Info("job enqueued", zap.String("job_id", job.ID), zap.Int64("waiting", waiting))
	fmt.Println(job.ID)
}
