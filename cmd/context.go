package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/GradPipeOrg/showoff/internal/github"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var contextCmd = &cobra.Command{
	Use:   "context <github-username>",
	Short: "Print the GitHub context packet the judge would receive",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runContext(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(contextCmd)

	contextCmd.Flags().Bool("heuristic", false, "print the heuristic breakdown instead of the packet")
}

func runContext(cmd *cobra.Command, username string) {
	ctx := context.Background()
	log, config := setup()

	client, err := newGitHubClient(config.GitHub, log)
	if err != nil {
		log.Fatal("building github client", zap.Error(err))
	}

	if heuristic, _ := cmd.Flags().GetBool("heuristic"); heuristic {
		printHeuristic(ctx, client, config, username, log)
		return
	}

	packet, err := github.NewBuilder(client, log).Build(ctx, username)
	if err != nil {
		log.Fatal("building context packet", zap.Error(err))
	}

	// do not bother error since the packet is plain data
	pretty, _ := json.MarshalIndent(packet, "", "  ")
	fmt.Println(string(pretty))
}

func printHeuristic(ctx context.Context, client *github.Client, config *Config, username string, log *zap.Logger) {
	w, err := github.LookupWeights(config.Scoring.GitHubWeights)
	if err != nil {
		log.Fatal("looking up weights", zap.Error(err))
	}

	signals, err := client.CollectSignals(ctx, username)
	if err != nil {
		log.Fatal("collecting signals", zap.Error(err))
	}

	ev := github.NewHeuristicScorer(w, log).Evaluate(signals)

	fmt.Printf("%s (%s, %d pinned)\n", username, signals.Method, signals.PinnedCount)
	fmt.Printf("  account: %s\n", ev.Account.Breakdown())
	for _, r := range ev.Repos {
		fmt.Printf("  %s: %s\n", r.Repo, r.Outcome.Breakdown())
	}
	fmt.Printf("  total: %d (account %d + project average %d)\n", ev.Total, ev.Account.Total, ev.Project)
}
