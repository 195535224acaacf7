package rubric

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestEvaluateSumsAwards(t *testing.T) {
	rules := []Rule[int]{
		{Name: "double", Max: 10, Award: func(n int) int { return n * 2 }},
		{Name: "negative", Max: 5, Award: func(int) int { return -3 }},
		{Name: "skipped", Max: 5},
	}

	out := Evaluate(rules, 4, nil)

	if out.Total != 8 {
		t.Fatalf("expected total 8, got %d", out.Total)
	}
	if out.Nominal != 15 {
		t.Fatalf("expected nominal 15, got %d", out.Nominal)
	}
	if len(out.Awards) != 2 {
		t.Fatalf("expected 2 awards, got %d", len(out.Awards))
	}
	if out.Awards[1].Points != 0 {
		t.Fatalf("expected negative award to floor at 0, got %d", out.Awards[1].Points)
	}
	if got := out.Breakdown(); got != "double=8/10 negative=0/5" {
		t.Fatalf("unexpected breakdown: %q", got)
	}
}

func TestEvaluateLogsEachRule(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	rules := []Rule[string]{
		{Name: "a", Max: 1, Award: func(string) int { return 1 }},
		{Name: "b", Max: 1, Award: func(string) int { return 0 }},
	}

	Evaluate(rules, "", zap.New(core))

	entries := observed.FilterMessage("rubric rule").All()
	if len(entries) != 2 {
		t.Fatalf("expected 2 log entries, got %d", len(entries))
	}
	if entries[0].ContextMap()["name"] != "a" {
		t.Fatalf("unexpected rule name in log: %v", entries[0].ContextMap())
	}
}

func TestOutcomePercent(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		total   int
		nominal int
		expect  int
	}{
		{name: "empty", total: 0, nominal: 0, expect: 0},
		{name: "exact", total: 40, nominal: 80, expect: 50},
		{name: "rounds half up", total: 58, nominal: 80, expect: 73},
		{name: "rounds down", total: 1, nominal: 80, expect: 1},
		{name: "overflow", total: 90, nominal: 80, expect: 113},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			out := Outcome{Total: tt.total, Nominal: tt.nominal}
			if got := out.Percent(); got != tt.expect {
				t.Fatalf("expected %d, got %d", tt.expect, got)
			}
		})
	}
}

func TestTiersPoints(t *testing.T) {
	tiers := Tiers{{AtLeast: 6, Points: 20}, {AtLeast: 3, Points: 10}, {AtLeast: 1, Points: 5}}

	cases := map[int]int{0: 0, 1: 5, 2: 5, 3: 10, 5: 10, 6: 20, 12: 20}
	for n, want := range cases {
		if got := tiers.Points(n); got != want {
			t.Fatalf("Points(%d) = %d, want %d", n, got, want)
		}
	}
}
