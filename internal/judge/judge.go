// Package judge scores artifacts by delegating to a hosted generative model
// with a fixed rubric as instructions.
package judge

import (
	"context"
	"embed"
	"fmt"

	"github.com/GradPipeOrg/showoff/internal/scoring"
)

// Variant selects the rubric and payload kind.
type Variant string

const (
	VariantResume Variant = "resume"
	VariantGitHub Variant = "github"
)

// Payload is the artifact handed to the model. Resume judging sends the
// PDF bytes in Document; GitHub judging sends a serialized context packet
// in Context.
type Payload struct {
	Document []byte
	Context  []byte
}

// Judge returns a bounded score for the payload. Failures of any kind are
// reported as a zero score with the error as justification.
type Judge interface {
	Judge(ctx context.Context, variant Variant, payload Payload) scoring.Result
}

//go:embed prompts/*.md
var prompts embed.FS

// Instructions returns the rubric text for the variant.
func Instructions(v Variant) (string, error) {
	switch v {
	case VariantResume, VariantGitHub:
	default:
		return "", fmt.Errorf("unknown judge variant %q", v)
	}

	data, err := prompts.ReadFile("prompts/" + string(v) + ".md")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
