package scoring

import (
	"errors"
	"math"
	"testing"
)

func TestShowoffMatchesFlooredWeightedSum(t *testing.T) {
	t.Parallel()

	for r := 0; r <= 100; r++ {
		for g := 0; g <= 100; g++ {
			want := int(math.Floor((float64(r)*7 + float64(g)*3) / 10))
			if got := Showoff(r, g); got != want {
				t.Fatalf("Showoff(%d, %d) = %d, want %d", r, g, got, want)
			}
		}
	}
}

func TestShowoffBoundaries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		resume int
		github int
		expect int
	}{
		{name: "both zero", resume: 0, github: 0, expect: 0},
		{name: "both max", resume: 100, github: 100, expect: 100},
		{name: "resume only", resume: 100, github: 0, expect: 70},
		{name: "github only", resume: 0, github: 100, expect: 30},
		{name: "floors fraction", resume: 73, github: 41, expect: 63},
		{name: "clamps out of range", resume: 140, github: -5, expect: 70},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Showoff(tt.resume, tt.github); got != tt.expect {
				t.Fatalf("expected %d, got %d", tt.expect, got)
			}
		})
	}
}

func TestCombineCarriesJustifications(t *testing.T) {
	final := Combine(
		Result{Score: 80, Justification: "strong projects"},
		Result{Score: 150, Justification: "overflowing rubric"},
	)

	if final.ResumeScore != 80 || final.GitHubScore != 100 {
		t.Fatalf("unexpected axis scores: %+v", final)
	}
	if final.ShowoffScore != 86 {
		t.Fatalf("expected showoff 86, got %d", final.ShowoffScore)
	}
	if final.ResumeJustification != "strong projects" || final.GitHubJustification != "overflowing rubric" {
		t.Fatalf("justifications not carried: %+v", final)
	}
}

func TestFailed(t *testing.T) {
	res := Failed(errors.New("quota exceeded"))
	if res.Score != 0 {
		t.Fatalf("expected zero score, got %d", res.Score)
	}
	if res.Justification != "Error: quota exceeded" {
		t.Fatalf("unexpected justification: %q", res.Justification)
	}

	if empty := Failed(nil); empty != (Result{}) {
		t.Fatalf("expected empty result for nil error, got %+v", empty)
	}
}
