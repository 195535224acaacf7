// Package rubric evaluates weighted point-award rules against a scoring input.
//
// Rules are plain data plus an award function so that rubric versions can be
// swapped without touching the engine: a version is just another []Rule.
package rubric

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Rule awards points for a single rubric line.
type Rule[T any] struct {
	// Name identifies the rule in breakdowns and logs, e.g. "impact.verbs".
	Name string
	// Max is the nominal maximum of the rule. Award may exceed it; the
	// engine does not clamp individual rules.
	Max   int
	Award func(in T) int
}

// Award is the outcome of a single rule.
type Award struct {
	Rule   string
	Points int
	Max    int
}

// Outcome describes a full rubric evaluation.
type Outcome struct {
	Awards  []Award
	Total   int
	Nominal int
}

// Evaluate applies all rules in order and sums their awards.
func Evaluate[T any](rules []Rule[T], in T, logger *zap.Logger) Outcome {
	if logger == nil {
		logger = zap.NewNop()
	}

	out := Outcome{Awards: make([]Award, 0, len(rules))}
	for _, rule := range rules {
		if rule.Award == nil {
			continue
		}

		points := rule.Award(in)
		if points < 0 {
			points = 0
		}

		logger.Debug("rubric rule",
			zap.String("name", rule.Name),
			zap.Int("points", points),
			zap.Int("max", rule.Max),
		)

		out.Awards = append(out.Awards, Award{Rule: rule.Name, Points: points, Max: rule.Max})
		out.Total += points
		out.Nominal += rule.Max
	}

	return out
}

// Percent rescales Total against Nominal to 0-100, rounding half up.
func (o Outcome) Percent() int {
	if o.Nominal <= 0 {
		return 0
	}
	return (o.Total*100 + o.Nominal/2) / o.Nominal
}

// Breakdown renders the awards as "rule=points/max" pairs.
func (o Outcome) Breakdown() string {
	parts := make([]string, 0, len(o.Awards))
	for _, a := range o.Awards {
		parts = append(parts, fmt.Sprintf("%s=%d/%d", a.Rule, a.Points, a.Max))
	}
	return strings.Join(parts, " ")
}

// Tier maps a count to points using descending thresholds.
type Tier struct {
	AtLeast int
	Points  int
}

// Tiers is an ordered list of thresholds, highest first.
type Tiers []Tier

// Points returns the award of the first tier whose threshold n reaches.
func (t Tiers) Points(n int) int {
	for _, tier := range t {
		if n >= tier.AtLeast {
			return tier.Points
		}
	}
	return 0
}
