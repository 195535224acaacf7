package evaluation

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/GradPipeOrg/showoff/internal/github"
	"github.com/GradPipeOrg/showoff/internal/judge"
	"github.com/GradPipeOrg/showoff/internal/resume"
	"github.com/GradPipeOrg/showoff/internal/scoring"
)

// Strategy names how an axis is scored.
type Strategy string

const (
	StrategyJudge     Strategy = "judge"
	StrategyHeuristic Strategy = "heuristic"
)

// ParseStrategy accepts "judge" or "heuristic", case-insensitively.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case StrategyJudge:
		return StrategyJudge, nil
	case StrategyHeuristic:
		return StrategyHeuristic, nil
	default:
		return "", fmt.Errorf("unknown scoring strategy %q (want judge or heuristic)", s)
	}
}

// ResumeAxis scores resume bytes. It never fails.
type ResumeAxis interface {
	Strategy() Strategy
	Score(ctx context.Context, document []byte) scoring.Result
}

// GitHubAxis scores a GitHub account. It never fails; an unknown user
// scores 0.
type GitHubAxis interface {
	Strategy() Strategy
	Score(ctx context.Context, username string) scoring.Result
}

// PacketBuilder is satisfied by *github.Builder.
type PacketBuilder interface {
	Build(ctx context.Context, username string) (*github.ContextPacket, error)
}

// SignalCollector is satisfied by *github.Client.
type SignalCollector interface {
	CollectSignals(ctx context.Context, username string) (*github.Signals, error)
}

type resumeJudge struct{ judge judge.Judge }

func NewResumeJudge(j judge.Judge) ResumeAxis { return resumeJudge{judge: j} }

func (resumeJudge) Strategy() Strategy { return StrategyJudge }

func (a resumeJudge) Score(ctx context.Context, document []byte) scoring.Result {
	return a.judge.Judge(ctx, judge.VariantResume, judge.Payload{Document: document})
}

type resumeHeuristic struct{ scorer *resume.Scorer }

func NewResumeHeuristic(s *resume.Scorer) ResumeAxis { return resumeHeuristic{scorer: s} }

func (resumeHeuristic) Strategy() Strategy { return StrategyHeuristic }

func (a resumeHeuristic) Score(_ context.Context, document []byte) scoring.Result {
	return a.scorer.ScoreBytes(document)
}

type githubJudge struct {
	builder PacketBuilder
	judge   judge.Judge
}

func NewGitHubJudge(b PacketBuilder, j judge.Judge) GitHubAxis {
	return githubJudge{builder: b, judge: j}
}

func (githubJudge) Strategy() Strategy { return StrategyJudge }

func (a githubJudge) Score(ctx context.Context, username string) scoring.Result {
	packet, err := a.builder.Build(ctx, username)
	if err != nil {
		return scoring.Failed(err)
	}

	data, err := json.Marshal(packet)
	if err != nil {
		return scoring.Failed(fmt.Errorf("encode context packet: %w", err))
	}

	return a.judge.Judge(ctx, judge.VariantGitHub, judge.Payload{Context: data})
}

type githubHeuristic struct {
	collector SignalCollector
	scorer    *github.HeuristicScorer
}

func NewGitHubHeuristic(c SignalCollector, s *github.HeuristicScorer) GitHubAxis {
	return githubHeuristic{collector: c, scorer: s}
}

func (githubHeuristic) Strategy() Strategy { return StrategyHeuristic }

func (a githubHeuristic) Score(ctx context.Context, username string) scoring.Result {
	signals, err := a.collector.CollectSignals(ctx, username)
	if err != nil {
		return scoring.Failed(err)
	}
	return a.scorer.Score(signals)
}
