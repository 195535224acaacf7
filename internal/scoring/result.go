package scoring

import "fmt"

const (
	MinScore = 0
	MaxScore = 100

	// Weights of the two axes in the showoff score, in tenths.
	resumeWeight = 7
	githubWeight = 3
)

// Result is the outcome of a single scoring axis.
type Result struct {
	Score         int    `json:"score"`
	Justification string `json:"justification"`
}

// FinalScore is the combined outcome of one evaluation.
type FinalScore struct {
	ResumeScore         int    `json:"resume_score"`
	GitHubScore         int    `json:"github_score"`
	ShowoffScore        int    `json:"showoff_score"`
	ResumeJustification string `json:"resume_justification"`
	GitHubJustification string `json:"github_justification"`
}

// Clamp bounds a raw score to [MinScore, MaxScore].
func Clamp(score int) int {
	if score < MinScore {
		return MinScore
	}
	if score > MaxScore {
		return MaxScore
	}
	return score
}

// Failed returns a zero result carrying the error as its justification.
func Failed(err error) Result {
	if err == nil {
		return Result{}
	}
	return Result{Score: 0, Justification: fmt.Sprintf("Error: %v", err)}
}

// Showoff computes floor(resume*0.7 + github*0.3) without floating point error.
func Showoff(resumeScore, githubScore int) int {
	r := Clamp(resumeScore)
	g := Clamp(githubScore)
	return (resumeWeight*r + githubWeight*g) / 10
}

// Combine merges both axis results into a FinalScore.
func Combine(resume, github Result) FinalScore {
	r := Clamp(resume.Score)
	g := Clamp(github.Score)

	return FinalScore{
		ResumeScore:         r,
		GitHubScore:         g,
		ShowoffScore:        Showoff(r, g),
		ResumeJustification: resume.Justification,
		GitHubJustification: github.Justification,
	}
}
