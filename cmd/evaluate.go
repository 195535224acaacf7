package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/GradPipeOrg/showoff/internal/evaluation"
	"github.com/GradPipeOrg/showoff/internal/resume"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate [resume.pdf]",
	Short: "Score a local resume and a GitHub account without the queue",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if golden, _ := cmd.Flags().GetString("golden"); golden != "" {
			runGolden(golden)
			return
		}
		if len(args) == 0 {
			_ = cmd.Usage()
			os.Exit(1)
		}
		runEvaluate(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)

	evaluateCmd.Flags().StringP("github-username", "u", "", "github username; prompted for when empty")
	evaluateCmd.Flags().String("golden", "", "compare the resume heuristic against a golden set file instead")
	evaluateCmd.Flags().String("resume-strategy", "", "override scoring.resume (judge or heuristic)")
	evaluateCmd.Flags().String("github-strategy", "", "override scoring.github (judge or heuristic)")

	viper.BindPFlag("scoring.resume", evaluateCmd.Flags().Lookup("resume-strategy"))
	viper.BindPFlag("scoring.github", evaluateCmd.Flags().Lookup("github-strategy"))
}

func runEvaluate(cmd *cobra.Command, path string) {
	ctx := context.Background()
	log, config := setup()

	document, err := os.ReadFile(path)
	if err != nil {
		log.Fatal("reading resume", zap.Error(err))
	}

	username, _ := cmd.Flags().GetString("github-username")
	if strings.TrimSpace(username) == "" {
		username, err = promptUsername()
		if err != nil {
			log.Fatal("exiting", zap.Error(err))
		}
	}

	resumeAxis, githubAxis, err := newAxes(ctx, config, log)
	if err != nil {
		log.Fatal("building scoring axes", zap.Error(err))
	}

	orchestrator, err := evaluation.New(evaluation.Config{Resume: resumeAxis, GitHub: githubAxis}, log)
	if err != nil {
		log.Fatal("building orchestrator", zap.Error(err))
	}

	final := orchestrator.Evaluate(ctx, document, strings.TrimSpace(username))

	pretty, _ := json.MarshalIndent(final, "", "  ")
	fmt.Println(string(pretty))
}

func promptUsername() (string, error) {
	prompt := promptui.Prompt{
		Label: "GitHub username",
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return errors.New("username must not be empty")
			}
			return nil
		},
	}

	return prompt.Run()
}

// runGolden scores every resume of a golden set with the heuristic. Resume
// paths are relative to the golden set file.
func runGolden(path string) {
	log, config := setup()

	entries, err := resume.LoadGoldenSet(path)
	if err != nil {
		log.Fatal("loading golden set", zap.Error(err))
	}

	r, err := resume.LookupRubric(config.Scoring.ResumeRubric)
	if err != nil {
		log.Fatal("looking up rubric", zap.Error(err))
	}

	base := filepath.Dir(path)
	read := func(p string) ([]byte, error) {
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		return os.ReadFile(p)
	}

	report := resume.NewScorer(r, log).CompareGolden(entries, read)

	for _, res := range report.Results {
		if res.Error != "" {
			log.Warn("golden entry skipped", zap.String("resume_file", res.ResumeFile), zap.String("error", res.Error))
		}
	}

	pretty, _ := json.MarshalIndent(report, "", "  ")
	fmt.Println(string(pretty))
	log.Info("golden comparison done",
		zap.String("rubric", r.Version),
		zap.Int("evaluated", report.Evaluated),
		zap.Float64("mean_absolute_error", report.MeanAbsoluteError),
	)
}
