// Package queue carries evaluation jobs from submission to the workers.
package queue

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// ErrInvalidJob wraps every validation failure of a job.
var ErrInvalidJob = errors.New("invalid evaluation job")

var validate = validator.New()

// EvaluationJob is one request to score a candidate.
type EvaluationJob struct {
	ID             string    `json:"id" validate:"omitempty,uuid"`
	UserID         string    `json:"user_id" validate:"required"`
	GitHubUsername string    `json:"github_username" validate:"required,max=39"`
	ResumeLocator  string    `json:"resume_locator" validate:"required"`
	EnqueuedAt     time.Time `json:"enqueued_at"`

	// raw is the payload as it sits in the processing list, kept for Ack.
	raw string
}

// NewJob builds a job with a fresh id.
func NewJob(userID, username, locator string) EvaluationJob {
	return EvaluationJob{
		ID:             uuid.NewString(),
		UserID:         strings.TrimSpace(userID),
		GitHubUsername: strings.TrimSpace(username),
		ResumeLocator:  strings.TrimSpace(locator),
		EnqueuedAt:     time.Now().UTC(),
	}
}

// Validate trims the fields and checks that everything a worker needs is
// present.
func (j *EvaluationJob) Validate() error {
	j.ID = strings.TrimSpace(j.ID)
	j.UserID = strings.TrimSpace(j.UserID)
	j.GitHubUsername = strings.TrimSpace(j.GitHubUsername)
	j.ResumeLocator = strings.TrimSpace(j.ResumeLocator)

	if err := validate.Struct(j); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidJob, err)
	}
	return nil
}
