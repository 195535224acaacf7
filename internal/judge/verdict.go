package judge

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/GradPipeOrg/showoff/internal/scoring"
	"github.com/tidwall/gjson"
	"github.com/xeipuuv/gojsonschema"
)

const (
	fieldScore         = "total_score_100"
	fieldJustification = "justification"
)

const verdictSchema = `{
  "type": "object",
  "required": ["total_score_100", "justification"],
  "properties": {
    "total_score_100": {
      "type": ["number", "string"],
      "pattern": "^-?[0-9]+(\\.[0-9]+)?$"
    },
    "justification": {"type": "string"}
  }
}`

var (
	ErrEmptyVerdict   = errors.New("empty verdict")
	ErrInvalidVerdict = errors.New("verdict does not match schema")
)

var verdictLoader = gojsonschema.NewStringLoader(verdictSchema)

// ParseVerdict reads the model answer. Code fences around the JSON are
// tolerated; the score is rounded and clamped to the valid range.
func ParseVerdict(raw string) (scoring.Result, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return scoring.Result{}, ErrEmptyVerdict
	}

	if !gjson.Valid(cleaned) {
		return scoring.Result{}, fmt.Errorf("%w: not json", ErrInvalidVerdict)
	}

	res, err := gojsonschema.Validate(verdictLoader, gojsonschema.NewStringLoader(cleaned))
	if err != nil {
		return scoring.Result{}, fmt.Errorf("validate verdict: %w", err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, desc := range res.Errors() {
			msgs = append(msgs, desc.String())
		}
		return scoring.Result{}, fmt.Errorf("%w: %s", ErrInvalidVerdict, strings.Join(msgs, "; "))
	}

	score := gjson.Get(cleaned, fieldScore).Float()
	if math.IsNaN(score) || math.IsInf(score, 0) {
		score = 0
	}

	return scoring.Result{
		Score:         scoring.Clamp(int(math.Round(score))),
		Justification: strings.TrimSpace(gjson.Get(cleaned, fieldJustification).String()),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}
