package github

const (
	ReadmeLimit  = 1000
	SnippetLimit = 1500

	// TruncationMarker ends every excerpt that was cut.
	TruncationMarker = "\n... [TRUNCATED]"

	maxCommits        = 10
	maxSnippets       = 5
	maxSourceFallback = 3
)

// ContextPacket is the bounded snapshot of a GitHub presence handed to the
// judge. It is never mutated after Build returns.
type ContextPacket struct {
	UserProfile           UserProfile    `json:"user_profile"`
	AnalysisMethod        AnalysisMethod `json:"analysis_method"`
	AnalyzedRepos         []RepoSnapshot `json:"analyzed_repos"`
	OSSContributionsCount int            `json:"oss_contributions_count"`
}

type UserProfile struct {
	Bio       string `json:"bio,omitempty"`
	Name      string `json:"name,omitempty"`
	Followers int    `json:"followers"`
}

type RepoSnapshot struct {
	Name             string        `json:"name"`
	Description      string        `json:"description,omitempty"`
	PrimaryLanguage  string        `json:"primary_language,omitempty"`
	ReadmeContent    string        `json:"readme_content"`
	FileList         []string      `json:"file_list"`
	CommitMessages   []string      `json:"commit_messages"`
	BranchCount      int           `json:"branch_count"`
	PullRequestCount int           `json:"pull_request_count"`
	StargazerCount   int           `json:"stargazerCount"`
	RawCodeSnippets  []CodeSnippet `json:"raw_code_snippets"`
}

type CodeSnippet struct {
	FileName string `json:"file_name"`
	Content  string `json:"content"`
	Language string `json:"language"`
}

// Truncate bounds s to limit runes. A cut string keeps its head and ends
// with TruncationMarker, the marker counting toward the limit.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}

	keep := limit - len([]rune(TruncationMarker))
	if keep < 0 {
		return string(r[:limit])
	}
	return string(r[:keep]) + TruncationMarker
}
