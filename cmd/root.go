package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/GradPipeOrg/showoff/internal/evaluation"
	"github.com/GradPipeOrg/showoff/internal/github"
	"github.com/GradPipeOrg/showoff/internal/queue"
	"github.com/GradPipeOrg/showoff/internal/resume"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app       = "showoff"
	envPrefix = "SHOWOFF"
)

const (
	backendSupabase = "supabase"
	backendFile     = "file"
	backendPostgres = "postgres"
)

type Config struct {
	Debug   bool          `mapstructure:"debug"`
	JSON    bool          `mapstructure:"json"`
	GitHub  GitHubConfig  `mapstructure:"github"`
	Judge   JudgeConfig   `mapstructure:"judge"`
	Scoring ScoringConfig `mapstructure:"scoring"`
	Queue   QueueConfig   `mapstructure:"queue"`
	Storage StorageConfig `mapstructure:"storage"`
	Store   StoreConfig   `mapstructure:"store"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type GitHubConfig struct {
	APIURL     string        `mapstructure:"api-url"`
	GraphQLURL string        `mapstructure:"graphql-url"`
	Token      string        `mapstructure:"token"`
	TokenFile  string        `mapstructure:"token-file"`
	Timeout    time.Duration `mapstructure:"timeout"`
	UserAgent  string        `mapstructure:"user-agent"`
}

type JudgeConfig struct {
	Provider string       `mapstructure:"provider"`
	Gemini   GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

// ScoringConfig picks one strategy per axis for the whole deployment.
type ScoringConfig struct {
	Resume        string `mapstructure:"resume"`
	GitHub        string `mapstructure:"github"`
	ResumeRubric  string `mapstructure:"resume-rubric"`
	GitHubWeights string `mapstructure:"github-weights"`
}

type QueueConfig struct {
	RedisAddr     string        `mapstructure:"redis-addr"`
	RedisPassword string        `mapstructure:"redis-password"`
	RedisDB       int           `mapstructure:"redis-db"`
	Key           string        `mapstructure:"key"`
	Workers       int           `mapstructure:"workers"`
	JobTimeout    time.Duration `mapstructure:"job-timeout"`
	PollTimeout   time.Duration `mapstructure:"poll-timeout"`
}

type StorageConfig struct {
	Backend     string `mapstructure:"backend"`
	Dir         string `mapstructure:"dir"`
	SupabaseURL string `mapstructure:"supabase-url"`
	SupabaseKey string `mapstructure:"supabase-key"`
	Bucket      string `mapstructure:"bucket"`
}

type StoreConfig struct {
	Backend     string `mapstructure:"backend"`
	DSN         string `mapstructure:"dsn"`
	SupabaseURL string `mapstructure:"supabase-url"`
	SupabaseKey string `mapstructure:"supabase-key"`
	Table       string `mapstructure:"table"`
}

type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "showoff scores candidates from a resume and a GitHub account",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is showoff.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
	if err := bindEnv(viper.GetViper()); err != nil {
		log.Fatalf("binding environment variables: %v", err)
	}
}

func initConfig() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Without a config file everything comes from defaults and environment.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", false)
	v.SetDefault("json", false)

	v.SetDefault("github.api-url", "https://api.github.com")
	v.SetDefault("github.graphql-url", "")
	v.SetDefault("github.token", "")
	v.SetDefault("github.token-file", "")
	v.SetDefault("github.timeout", 20*time.Second)
	v.SetDefault("github.user-agent", "")

	v.SetDefault("judge.provider", "gemini")
	v.SetDefault("judge.gemini.api-key", "")
	v.SetDefault("judge.gemini.api-key-file", "")
	v.SetDefault("judge.gemini.model", "gemini-2.5-pro")
	v.SetDefault("judge.gemini.max-retries", 2)
	v.SetDefault("judge.gemini.max-log-length", 200)

	v.SetDefault("scoring.resume", string(evaluation.StrategyJudge))
	v.SetDefault("scoring.github", string(evaluation.StrategyHeuristic))
	v.SetDefault("scoring.resume-rubric", resume.DefaultRubricVersion)
	v.SetDefault("scoring.github-weights", github.DefaultWeightsVersion)

	v.SetDefault("queue.redis-addr", "localhost:6379")
	v.SetDefault("queue.redis-password", "")
	v.SetDefault("queue.redis-db", 0)
	v.SetDefault("queue.key", queue.DefaultKey)
	v.SetDefault("queue.workers", 2)
	v.SetDefault("queue.job-timeout", 5*time.Minute)
	v.SetDefault("queue.poll-timeout", 5*time.Second)

	v.SetDefault("storage.backend", backendSupabase)
	v.SetDefault("storage.dir", ".")
	v.SetDefault("storage.supabase-url", "")
	v.SetDefault("storage.supabase-key", "")
	v.SetDefault("storage.bucket", "resumes")

	v.SetDefault("store.backend", backendSupabase)
	v.SetDefault("store.dsn", "")
	v.SetDefault("store.supabase-url", "")
	v.SetDefault("store.supabase-key", "")
	v.SetDefault("store.table", "profiles")

	v.SetDefault("metrics.addr", ":9090")
}

// bindEnv maps SHOWOFF_GITHUB_TOKEN_FILE style variables onto keys and
// accepts the conventional names of shared credentials.
func bindEnv(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	aliases := map[string]string{
		"storage.supabase-url": "SUPABASE_URL",
		"storage.supabase-key": "SUPABASE_KEY",
		"store.supabase-url":   "SUPABASE_URL",
		"store.supabase-key":   "SUPABASE_KEY",
		"store.dsn":            "DATABASE_URL",
		"queue.redis-addr":     "REDIS_ADDR",
	}
	for key, env := range aliases {
		own := envPrefix + "_" + strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
		if err := v.BindEnv(key, own, env); err != nil {
			return fmt.Errorf("binding %s: %w", env, err)
		}
	}

	return nil
}

func getConfig() (*Config, error) {
	return loadConfig(viper.GetViper())
}

func loadConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}

	normalize(&config)
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func normalize(c *Config) {
	c.Judge.Provider = strings.ToLower(strings.TrimSpace(c.Judge.Provider))
	c.Scoring.Resume = strings.ToLower(strings.TrimSpace(c.Scoring.Resume))
	c.Scoring.GitHub = strings.ToLower(strings.TrimSpace(c.Scoring.GitHub))
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.Store.Backend = strings.ToLower(strings.TrimSpace(c.Store.Backend))
}

func validateConfig(c *Config) error {
	if _, err := evaluation.ParseStrategy(c.Scoring.Resume); err != nil {
		return fmt.Errorf("scoring.resume: %w", err)
	}
	if _, err := evaluation.ParseStrategy(c.Scoring.GitHub); err != nil {
		return fmt.Errorf("scoring.github: %w", err)
	}
	if _, err := resume.LookupRubric(c.Scoring.ResumeRubric); err != nil {
		return fmt.Errorf("scoring.resume-rubric: %w", err)
	}
	if _, err := github.LookupWeights(c.Scoring.GitHubWeights); err != nil {
		return fmt.Errorf("scoring.github-weights: %w", err)
	}

	switch c.Storage.Backend {
	case backendSupabase, backendFile:
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}

	switch c.Store.Backend {
	case backendSupabase, backendPostgres:
	default:
		return fmt.Errorf("store.backend: unknown backend %q", c.Store.Backend)
	}

	if c.Queue.Workers <= 0 {
		return errors.New("queue.workers must be positive")
	}

	return nil
}
