package gemini

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/GradPipeOrg/showoff/internal/judge"
	"github.com/GradPipeOrg/showoff/internal/logger"
	"github.com/GradPipeOrg/showoff/internal/metrics"
	"github.com/GradPipeOrg/showoff/internal/scoring"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

const (
	defaultMaxLogLength = 200
	pdfMIMEType         = "application/pdf"
)

type contentGenerator interface {
	Generate(ctx context.Context, parts []*genai.Part) (string, error)
	Model() string
}

// Judge is the Gemini rubric judge.
type Judge struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

var _ judge.Judge = (*Judge)(nil)

func NewJudge(generator contentGenerator, log *zap.Logger, maxLogLength int) *Judge {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Judge{
		generator: generator,
		logger:    logger.WithCommonFields(log, ProviderName, generator.Model()),
		maxLogLen: maxLogLength,
	}
}

// Factory returns a registry factory building the Gemini judge from cfg.
func Factory(cfg Config, maxLogLength int, log *zap.Logger) judge.Factory {
	return func(ctx context.Context) (judge.Judge, error) {
		g, err := NewGenerator(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		return NewJudge(g, log, maxLogLength), nil
	}
}

// Judge scores the payload. It never fails; errors become a zero score.
func (j *Judge) Judge(ctx context.Context, variant judge.Variant, payload judge.Payload) scoring.Result {
	log := j.logger.With(zap.String("variant", string(variant)))

	res, err := j.judge(ctx, variant, payload, log)
	if err != nil {
		log.Warn("gemini judge failed", zap.Error(err))
		metrics.JudgeCalls.WithLabelValues(ProviderName, string(variant), metrics.OutcomeError).Inc()
		return scoring.Failed(err)
	}

	metrics.JudgeCalls.WithLabelValues(ProviderName, string(variant), metrics.OutcomeOK).Inc()
	log.Info("gemini judge scored", zap.Int("score", res.Score))
	return res
}

func (j *Judge) judge(ctx context.Context, variant judge.Variant, payload judge.Payload, log *zap.Logger) (scoring.Result, error) {
	instructions, err := judge.Instructions(variant)
	if err != nil {
		return scoring.Result{}, err
	}

	parts := []*genai.Part{genai.NewPartFromText(instructions)}
	var payloadLen int

	switch variant {
	case judge.VariantResume:
		if len(payload.Document) == 0 {
			return scoring.Result{}, errors.New("resume document is empty")
		}
		parts = append(parts, genai.NewPartFromBytes(payload.Document, pdfMIMEType))
		payloadLen = len(payload.Document)
	case judge.VariantGitHub:
		if len(payload.Context) == 0 {
			return scoring.Result{}, errors.New("context packet is empty")
		}
		parts = append(parts, genai.NewPartFromText(string(payload.Context)))
		payloadLen = len(payload.Context)
		log.Debug("gemini context payload", zap.String("payload_preview", logger.TruncateForLog(string(payload.Context), j.maxLogLen)))
	}

	log.Debug("gemini generate content request",
		zap.Int("instructions_length", utf8.RuneCountInString(instructions)),
		zap.Int("payload_bytes", payloadLen),
	)

	raw, err := j.generator.Generate(ctx, parts)
	if err != nil {
		return scoring.Result{}, err
	}

	log.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, j.maxLogLen)),
	)

	res, err := judge.ParseVerdict(raw)
	if err != nil {
		return scoring.Result{}, fmt.Errorf("parse gemini response: %w", err)
	}
	return res, nil
}
