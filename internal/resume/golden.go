package resume

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// GoldenEntry is one resume with the averaged score of an LLM judging panel.
type GoldenEntry struct {
	ResumeFile  string  `json:"resume_file"`
	LLMAvgScore float64 `json:"llm_avg_score"`
}

// GoldenResult compares the heuristic against one golden entry.
type GoldenResult struct {
	ResumeFile     string  `json:"resume_file"`
	GoldenScore    float64 `json:"golden_score"`
	HeuristicScore int     `json:"heuristic_score"`
	Difference     float64 `json:"difference"`
	Error          string  `json:"error,omitempty"`
}

// GoldenReport summarises a comparison run.
type GoldenReport struct {
	Results           []GoldenResult `json:"results"`
	Evaluated         int            `json:"evaluated"`
	MeanAbsoluteError float64        `json:"mean_absolute_error"`
}

// LoadGoldenSet reads a golden set file.
func LoadGoldenSet(path string) ([]GoldenEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading golden set: %w", err)
	}

	var entries []GoldenEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing golden set: %w", err)
	}

	return entries, nil
}

// CompareGolden scores every golden resume and reports the mean absolute
// error against the panel averages. Entries whose file cannot be read or
// parsed are reported but excluded from the mean.
func (s *Scorer) CompareGolden(entries []GoldenEntry, read func(path string) ([]byte, error)) GoldenReport {
	report := GoldenReport{Results: make([]GoldenResult, 0, len(entries))}
	var total float64

	for _, entry := range entries {
		res := GoldenResult{ResumeFile: entry.ResumeFile, GoldenScore: entry.LLMAvgScore}

		data, err := read(entry.ResumeFile)
		if err != nil {
			res.Error = err.Error()
			report.Results = append(report.Results, res)
			continue
		}

		doc, err := Extract(data)
		if err != nil {
			res.Error = err.Error()
			report.Results = append(report.Results, res)
			continue
		}

		res.HeuristicScore = s.Score(doc).Score
		res.Difference = float64(res.HeuristicScore) - entry.LLMAvgScore
		total += math.Abs(res.Difference)
		report.Evaluated++
		report.Results = append(report.Results, res)
	}

	if report.Evaluated > 0 {
		report.MeanAbsoluteError = total / float64(report.Evaluated)
	}

	return report
}
