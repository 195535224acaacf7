package github

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const (
	maxPinned   = 6
	maxAnalyzed = 3
	minPinned   = 2
)

// AnalysisMethod tells how repositories were selected.
type AnalysisMethod string

const (
	MethodPinned   AnalysisMethod = "pinned"
	MethodFallback AnalysisMethod = "top_repo_fallback"
)

// Repository is the metadata needed to analyze one repository.
type Repository struct {
	Owner         string
	Name          string
	Description   string
	Language      string
	DefaultBranch string
	Stars         int
}

// FullName returns owner/name.
func (r Repository) FullName() string {
	return r.Owner + "/" + r.Name
}

// Selection is the outcome of the hybrid repository selection.
type Selection struct {
	Method      AnalysisMethod
	PinnedCount int
	Repos       []Repository
}

const pinnedQuery = `query($login: String!, $first: Int!) {
  user(login: $login) {
    pinnedItems(first: $first, types: REPOSITORY) {
      nodes {
        ... on Repository {
          name
          description
          stargazerCount
          owner { login }
          primaryLanguage { name }
          defaultBranchRef { name }
        }
      }
    }
  }
}`

// PinnedRepositories resolves up to maxPinned pinned repositories with one
// GraphQL query. Nodes without a name are dropped.
func (c *Client) PinnedRepositories(ctx context.Context, username string) ([]Repository, error) {
	data, err := c.postGraphQL(ctx, pinnedQuery, map[string]any{"login": username, "first": maxPinned})
	if err != nil {
		return nil, fmt.Errorf("pinned items for %s: %w", username, err)
	}

	if errs := gjson.GetBytes(data, "errors"); errs.Exists() && len(errs.Array()) > 0 {
		return nil, fmt.Errorf("pinned items for %s: %s", username, errs.Get("0.message").String())
	}

	var repos []Repository
	gjson.GetBytes(data, "data.user.pinnedItems.nodes").ForEach(func(_, node gjson.Result) bool {
		name := strings.TrimSpace(node.Get("name").String())
		if name == "" {
			return true
		}

		owner := node.Get("owner.login").String()
		if owner == "" {
			owner = username
		}

		repos = append(repos, Repository{
			Owner:         owner,
			Name:          name,
			Description:   node.Get("description").String(),
			Language:      node.Get("primaryLanguage.name").String(),
			DefaultBranch: node.Get("defaultBranchRef.name").String(),
			Stars:         int(node.Get("stargazerCount").Int()),
		})
		return true
	})

	return repos, nil
}

type restRepository struct {
	Name  string `json:"name"`
	Owner struct {
		Login string `json:"login"`
	} `json:"owner"`
	Description     *string `json:"description"`
	Language        *string `json:"language"`
	DefaultBranch   string  `json:"default_branch"`
	StargazersCount int     `json:"stargazers_count"`
}

// RecentRepositories lists the most recently pushed-to public repositories.
func (c *Client) RecentRepositories(ctx context.Context, username string, limit int) ([]Repository, error) {
	q := url.Values{}
	q.Set("sort", "pushed")
	q.Set("direction", "desc")
	q.Set("type", "owner")
	q.Set("per_page", strconv.Itoa(limit))

	var raw []restRepository
	if err := c.getJSON(ctx, "/users/"+url.PathEscape(username)+"/repos", q, &raw); err != nil {
		return nil, fmt.Errorf("recent repositories for %s: %w", username, err)
	}

	repos := make([]Repository, 0, len(raw))
	for _, r := range raw {
		if len(repos) == limit {
			break
		}
		owner := r.Owner.Login
		if owner == "" {
			owner = username
		}
		repos = append(repos, Repository{
			Owner:         owner,
			Name:          r.Name,
			Description:   deref(r.Description),
			Language:      deref(r.Language),
			DefaultBranch: r.DefaultBranch,
			Stars:         r.StargazersCount,
		})
	}

	return repos, nil
}

// SelectRepositories prefers pinned repositories and falls back to the most
// recently pushed ones when fewer than two pinned repositories resolve.
func (c *Client) SelectRepositories(ctx context.Context, username string) Selection {
	pinned, err := c.PinnedRepositories(ctx, username)
	if err != nil {
		c.logger.Debug("pinned lookup failed, treating as absent", zap.String("username", username), zap.Error(err))
	}

	if len(pinned) >= minPinned {
		return Selection{
			Method:      MethodPinned,
			PinnedCount: len(pinned),
			Repos:       pinned[:min(len(pinned), maxAnalyzed)],
		}
	}

	recent, err := c.RecentRepositories(ctx, username, maxAnalyzed)
	if err != nil {
		c.logger.Debug("recent repositories lookup failed, treating as absent", zap.String("username", username), zap.Error(err))
	}

	c.logger.Debug("using top repo fallback",
		zap.String("username", username),
		zap.Int("pinned", len(pinned)),
		zap.Int("recent", len(recent)),
	)

	return Selection{
		Method:      MethodFallback,
		PinnedCount: len(pinned),
		Repos:       recent,
	}
}
