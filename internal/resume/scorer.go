package resume

import (
	"github.com/GradPipeOrg/showoff/internal/rubric"
	"github.com/GradPipeOrg/showoff/internal/scoring"
	"go.uber.org/zap"
)

// Scorer is the deterministic resume heuristic.
type Scorer struct {
	version string
	rules   []rubric.Rule[Document]
	logger  *zap.Logger
}

func NewScorer(r Rubric, logger *zap.Logger) *Scorer {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scorer{
		version: r.Version,
		rules:   r.Rules(),
		logger:  logger.With(zap.String("rubric", r.Version)),
	}
}

// Score applies the rubric to already extracted text. Missing signals award
// nothing; it never fails.
func (s *Scorer) Score(doc Document) scoring.Result {
	out := rubric.Evaluate(s.rules, doc, s.logger)
	score := scoring.Clamp(out.Percent())

	s.logger.Debug("resume heuristic scored",
		zap.Int("raw_points", out.Total),
		zap.Int("nominal_max", out.Nominal),
		zap.Int("score", score),
	)

	return scoring.Result{
		Score:         score,
		Justification: "Heuristic " + s.version + ": " + out.Breakdown(),
	}
}

// ScoreBytes extracts the document and scores it. An unreadable document
// scores 0.
func (s *Scorer) ScoreBytes(data []byte) scoring.Result {
	doc, err := Extract(data)
	if err != nil {
		s.logger.Warn("resume extraction failed", zap.Error(err))
		return scoring.Failed(err)
	}

	return s.Score(doc)
}
