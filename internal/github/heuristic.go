package github

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/GradPipeOrg/showoff/internal/rubric"
	"github.com/GradPipeOrg/showoff/internal/scoring"
	"go.uber.org/zap"
)

const DefaultWeightsVersion = "v2.0"

// Weights is a versioned weight table for the GitHub heuristic. Account
// rules apply once; project rules apply per analyzed repository and are
// averaged.
type Weights struct {
	Version string

	ProfileComplete int
	ProfilePartial  int

	PinnedCurated int
	PinnedSingle  int

	ReadmeRich      int
	ReadmePresent   int
	ReadmeRichBytes int

	StructureElite  int
	StructureStrong int
	StructureBasic  int
	TestMarkers     []string
	SourceMarkers   []string

	CommitTiers rubric.Tiers
	Branching   int

	OSS            int
	Community      int
	CommunityAbove int
}

var weightsV20 = Weights{
	Version: "v2.0",

	ProfileComplete: 5,
	ProfilePartial:  2,

	PinnedCurated: 5,
	PinnedSingle:  1,

	ReadmeRich:      15,
	ReadmePresent:   7,
	ReadmeRichBytes: 200,

	StructureElite:  35,
	StructureStrong: 20,
	StructureBasic:  5,
	TestMarkers:     []string{"test", ".spec.", ".github/workflows", "pytest.ini"},
	SourceMarkers:   []string{"src/"},

	// More than 5 commits, more than the initial one.
	CommitTiers: rubric.Tiers{{AtLeast: 6, Points: 20}, {AtLeast: 2, Points: 10}},
	Branching:   10,

	OSS:            5,
	Community:      5,
	CommunityAbove: 5,
}

var weights = map[string]Weights{
	weightsV20.Version: weightsV20,
}

// LookupWeights returns the named weight table; empty means the default.
func LookupWeights(version string) (Weights, error) {
	if version == "" {
		version = DefaultWeightsVersion
	}
	w, ok := weights[version]
	if !ok {
		return Weights{}, fmt.Errorf("unknown github weights %q (known: %s)", version, strings.Join(WeightsVersions(), ", "))
	}
	return w, nil
}

func WeightsVersions() []string {
	out := make([]string, 0, len(weights))
	for v := range weights {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func (w Weights) accountRules() []rubric.Rule[*Signals] {
	return []rubric.Rule[*Signals]{
		{
			Name: "profile.polish",
			Max:  w.ProfileComplete,
			Award: func(s *Signals) int {
				switch {
				case s.Profile.Bio != "" && s.Profile.Name != "":
					return w.ProfileComplete
				case s.Profile.Bio != "" || s.Profile.Name != "":
					return w.ProfilePartial
				}
				return 0
			},
		},
		{
			Name: "profile.pinned",
			Max:  w.PinnedCurated,
			Award: func(s *Signals) int {
				switch {
				case s.PinnedCount >= minPinned:
					return w.PinnedCurated
				case s.PinnedCount == 1:
					return w.PinnedSingle
				}
				return 0
			},
		},
		{
			Name: "community.oss",
			Max:  w.OSS,
			Award: func(s *Signals) int {
				if s.OSSContributions > 0 {
					return w.OSS
				}
				return 0
			},
		},
		{
			Name: "community.reach",
			Max:  w.Community,
			Award: func(s *Signals) int {
				stars := 0
				for _, r := range s.Repos {
					stars = max(stars, r.Stars)
				}
				if s.Profile.Followers > w.CommunityAbove || stars > w.CommunityAbove {
					return w.Community
				}
				return 0
			},
		},
	}
}

func (w Weights) projectRules() []rubric.Rule[RepoSignals] {
	return []rubric.Rule[RepoSignals]{
		{
			Name: "project.readme",
			Max:  w.ReadmeRich,
			Award: func(r RepoSignals) int {
				switch {
				case r.ReadmeFound && r.ReadmeSize > w.ReadmeRichBytes:
					return w.ReadmeRich
				case r.ReadmeFound:
					return w.ReadmePresent
				}
				return 0
			},
		},
		{
			Name: "project.structure",
			Max:  w.StructureElite,
			Award: func(r RepoSignals) int {
				tests := anyPathContains(r.Paths, w.TestMarkers)
				src := anyPathContains(r.Paths, w.SourceMarkers)
				switch {
				case tests && src:
					return w.StructureElite
				case tests || src:
					return w.StructureStrong
				}
				return w.StructureBasic
			},
		},
		{
			Name: "project.commits",
			Max:  w.CommitTiers.Points(math.MaxInt),
			Award: func(r RepoSignals) int {
				return w.CommitTiers.Points(r.CommitCount)
			},
		},
		{
			Name: "project.branching",
			Max:  w.Branching,
			Award: func(r RepoSignals) int {
				if r.BranchCount > 1 {
					return w.Branching
				}
				return 0
			},
		},
	}
}

func anyPathContains(paths, markers []string) bool {
	for _, p := range paths {
		p = strings.ToLower(p)
		for _, m := range markers {
			if strings.Contains(p, m) {
				return true
			}
		}
	}
	return false
}

// RepoOutcome is the project rubric outcome of one repository.
type RepoOutcome struct {
	Repo    string
	Outcome rubric.Outcome
}

// Evaluation is the full heuristic breakdown.
type Evaluation struct {
	Account rubric.Outcome
	Repos   []RepoOutcome
	// Project is the per-repository total averaged across Repos.
	Project int
	Total   int
}

// HeuristicScorer is the LLM-free GitHub scorer.
type HeuristicScorer struct {
	account []rubric.Rule[*Signals]
	project []rubric.Rule[RepoSignals]
	logger  *zap.Logger
}

func NewHeuristicScorer(w Weights, logger *zap.Logger) *HeuristicScorer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HeuristicScorer{
		account: w.accountRules(),
		project: w.projectRules(),
		logger:  logger.With(zap.String("weights", w.Version)),
	}
}

// Evaluate applies the weight table to the signals.
func (h *HeuristicScorer) Evaluate(s *Signals) Evaluation {
	if s == nil {
		s = &Signals{}
	}

	ev := Evaluation{Account: rubric.Evaluate(h.account, s, h.logger)}

	sum := 0
	for _, r := range s.Repos {
		out := rubric.Evaluate(h.project, r, h.logger.With(zap.String("repo", r.Name)))
		ev.Repos = append(ev.Repos, RepoOutcome{Repo: r.Name, Outcome: out})
		sum += out.Total
	}
	if n := len(s.Repos); n > 0 {
		ev.Project = (sum + n/2) / n
	}

	ev.Total = ev.Account.Total + ev.Project
	return ev
}

// Score returns the clamped heuristic score. It carries no justification.
func (h *HeuristicScorer) Score(s *Signals) scoring.Result {
	ev := h.Evaluate(s)
	score := scoring.Clamp(ev.Total)

	h.logger.Debug("github heuristic scored",
		zap.Int("account_points", ev.Account.Total),
		zap.Int("project_points", ev.Project),
		zap.Int("repos", len(ev.Repos)),
		zap.Int("score", score),
	)

	return scoring.Result{Score: score}
}
