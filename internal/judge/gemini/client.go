package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/GradPipeOrg/showoff/internal/logger"
	"github.com/GradPipeOrg/showoff/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	ProviderName = "gemini"

	defaultModel      = "gemini-2.5-pro"
	defaultMaxRetries = 2
	retryBaseDelay    = 2 * time.Second
	retryMaxDelay     = 10 * time.Second
)

var (
	// ErrBlocked is returned when the model refuses the request on safety
	// grounds.
	ErrBlocked = errors.New("gemini blocked the request")
	// ErrEmptyResponse is returned when no candidate carries text.
	ErrEmptyResponse = errors.New("gemini api returned empty response")
)

var waitFor = utils.WaitFor

// models is the part of the genai client the generator needs.
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator sends multi-part prompts to Gemini and returns JSON text.
type Generator struct {
	models     models
	modelName  string
	maxRetries int
	logger     *zap.Logger
}

// Config holds the generator settings.
type Config struct {
	APIKey     string
	Model      string
	MaxRetries int
}

// NewGenerator creates a Generator configured for the Gemini API backend.
func NewGenerator(ctx context.Context, cfg Config, log *zap.Logger) (*Generator, error) {
	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, cfg, log), nil
}

func newGenerator(m models, cfg Config, log *zap.Logger) *Generator {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = defaultModel
	}

	retries := cfg.MaxRetries
	if retries < 0 {
		retries = defaultMaxRetries
	}

	return &Generator{
		models:     m,
		modelName:  model,
		maxRetries: retries,
		logger:     logger.WithCommonFields(log, ProviderName, model),
	}
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}

// Generate sends the parts as one user turn with deterministic JSON output
// and returns the answer text. Server errors are retried.
func (g *Generator) Generate(ctx context.Context, parts []*genai.Part) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}
	if len(parts) == 0 {
		return "", errors.New("prompt must not be empty")
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	cfg := generationConfig()

	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			delay := utils.Backoff(retryBaseDelay, retryMaxDelay, attempt)
			g.logger.Debug("retrying gemini request", zap.Int("attempt", attempt), zap.Duration("delay", delay), zap.Error(lastErr))
			if err := waitFor(ctx, delay); err != nil {
				return "", err
			}
		}

		resp, err := g.models.GenerateContent(ctx, g.modelName, contents, cfg)
		if err != nil {
			lastErr = fmt.Errorf("generate content: %w", err)
			if isTemporary(err) {
				continue
			}
			return "", lastErr
		}

		return responseText(resp)
	}

	return "", lastErr
}

func generationConfig() *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"total_score_100": {Type: genai.TypeInteger},
				"justification":   {Type: genai.TypeString},
			},
			Required: []string{"total_score_100", "justification"},
		},
		SafetySettings: []*genai.SafetySetting{
			{Category: genai.HarmCategoryHateSpeech, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryHarassment, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategorySexuallyExplicit, Threshold: genai.HarmBlockThresholdBlockNone},
			{Category: genai.HarmCategoryDangerousContent, Threshold: genai.HarmBlockThresholdBlockNone},
		},
	}
}

func isTemporary(err error) bool {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code >= http.StatusInternalServerError
	}
	return false
}

func responseText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil {
		return "", ErrEmptyResponse
	}
	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("%w: %s", ErrBlocked, resp.PromptFeedback.BlockReason)
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil {
			continue
		}
		if candidate.FinishReason == genai.FinishReasonSafety {
			return "", fmt.Errorf("%w: finish reason %s", ErrBlocked, candidate.FinishReason)
		}
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil || part.Thought {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
		// The first candidate with text wins.
		if builder.Len() > 0 {
			break
		}
	}

	output := strings.TrimSpace(builder.String())
	if output == "" {
		return "", ErrEmptyResponse
	}
	return output, nil
}
