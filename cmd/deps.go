package cmd

import (
	"context"
	"fmt"
	stdlog "log"

	"github.com/GradPipeOrg/showoff/internal/evaluation"
	"github.com/GradPipeOrg/showoff/internal/github"
	"github.com/GradPipeOrg/showoff/internal/judge"
	"github.com/GradPipeOrg/showoff/internal/judge/gemini"
	"github.com/GradPipeOrg/showoff/internal/logger"
	"github.com/GradPipeOrg/showoff/internal/resume"
	"github.com/GradPipeOrg/showoff/internal/secrets"
	"github.com/GradPipeOrg/showoff/internal/storage"
	"github.com/GradPipeOrg/showoff/internal/store"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// setup builds the logger and the validated config, exiting on failure.
func setup() (*zap.Logger, *Config) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		stdlog.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		log.Fatal("getting a config", zap.Error(err))
	}

	return log, config
}

func newGitHubClient(cfg GitHubConfig, log *zap.Logger) (*github.Client, error) {
	token, err := secrets.Optional(secrets.Source{
		Name:  "github token",
		Value: cfg.Token,
		File:  cfg.TokenFile,
		Env:   "GITHUB_TOKEN",
	})
	if err != nil {
		return nil, err
	}
	if token == "" {
		log.Warn("no github token configured, requests are subject to anonymous rate limits",
			zap.String("hint", "set github.token-file or GITHUB_TOKEN"),
		)
	}

	return github.New(github.Config{
		APIURL:     cfg.APIURL,
		GraphQLURL: cfg.GraphQLURL,
		Token:      token,
		UserAgent:  cfg.UserAgent,
		Timeout:    cfg.Timeout,
	}, log), nil
}

func newJudgeRegistry(cfg JudgeConfig, log *zap.Logger) *judge.Registry {
	registry := judge.NewRegistry()

	registry.Register(gemini.ProviderName, func(ctx context.Context) (judge.Judge, error) {
		apiKey, err := secrets.Load(secrets.Source{
			Name:  "gemini api key",
			Value: cfg.Gemini.APIKey,
			File:  cfg.Gemini.APIKeyFile,
			Env:   "GEMINI_API_KEY",
		})
		if err != nil {
			return nil, fmt.Errorf("%w (set judge.gemini.api-key-file or GEMINI_API_KEY)", err)
		}

		return gemini.Factory(gemini.Config{
			APIKey:     apiKey,
			Model:      cfg.Gemini.Model,
			MaxRetries: cfg.Gemini.MaxRetries,
		}, cfg.Gemini.MaxLogLength, log)(ctx)
	})

	return registry
}

// newAxes builds the configured strategy for each axis. The judge is only
// created when an axis needs it.
func newAxes(ctx context.Context, config *Config, log *zap.Logger) (evaluation.ResumeAxis, evaluation.GitHubAxis, error) {
	resumeStrategy, err := evaluation.ParseStrategy(config.Scoring.Resume)
	if err != nil {
		return nil, nil, err
	}
	githubStrategy, err := evaluation.ParseStrategy(config.Scoring.GitHub)
	if err != nil {
		return nil, nil, err
	}

	var j judge.Judge
	if resumeStrategy == evaluation.StrategyJudge || githubStrategy == evaluation.StrategyJudge {
		j, err = newJudgeRegistry(config.Judge, log).New(ctx, config.Judge.Provider)
		if err != nil {
			return nil, nil, err
		}
	}

	var resumeAxis evaluation.ResumeAxis
	switch resumeStrategy {
	case evaluation.StrategyJudge:
		resumeAxis = evaluation.NewResumeJudge(j)
	default:
		r, err := resume.LookupRubric(config.Scoring.ResumeRubric)
		if err != nil {
			return nil, nil, err
		}
		resumeAxis = evaluation.NewResumeHeuristic(resume.NewScorer(r, log))
	}

	client, err := newGitHubClient(config.GitHub, log)
	if err != nil {
		return nil, nil, err
	}

	var githubAxis evaluation.GitHubAxis
	switch githubStrategy {
	case evaluation.StrategyJudge:
		githubAxis = evaluation.NewGitHubJudge(github.NewBuilder(client, log), j)
	default:
		w, err := github.LookupWeights(config.Scoring.GitHubWeights)
		if err != nil {
			return nil, nil, err
		}
		githubAxis = evaluation.NewGitHubHeuristic(client, github.NewHeuristicScorer(w, log))
	}

	log.Info("scoring strategies selected",
		zap.String("resume", string(resumeStrategy)),
		zap.String("github", string(githubStrategy)),
	)

	return resumeAxis, githubAxis, nil
}

func newDownloader(cfg StorageConfig, log *zap.Logger) (storage.Downloader, error) {
	switch cfg.Backend {
	case backendFile:
		return storage.NewDir(cfg.Dir), nil
	case backendSupabase:
		key, err := secrets.Load(secrets.Source{Name: "supabase storage key", Value: cfg.SupabaseKey})
		if err != nil {
			return nil, fmt.Errorf("%w (set storage.supabase-key or SUPABASE_KEY)", err)
		}
		return storage.NewSupabase(storage.SupabaseConfig{URL: cfg.SupabaseURL, Key: key, Bucket: cfg.Bucket}, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}

// newStore returns the configured score store and a function releasing it.
func newStore(cfg StoreConfig, log *zap.Logger) (store.ScoreStore, func() error, error) {
	switch cfg.Backend {
	case backendPostgres:
		dsn, err := secrets.Load(secrets.Source{Name: "postgres dsn", Value: cfg.DSN})
		if err != nil {
			return nil, nil, fmt.Errorf("%w (set store.dsn or DATABASE_URL)", err)
		}
		pg, err := store.OpenPostgres(dsn, cfg.Table, log)
		if err != nil {
			return nil, nil, err
		}
		return pg, pg.Close, nil
	case backendSupabase:
		key, err := secrets.Load(secrets.Source{Name: "supabase store key", Value: cfg.SupabaseKey})
		if err != nil {
			return nil, nil, fmt.Errorf("%w (set store.supabase-key or SUPABASE_KEY)", err)
		}
		s, err := store.NewSupabase(store.SupabaseConfig{URL: cfg.SupabaseURL, Key: key, Table: cfg.Table}, log)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return nil }, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}
