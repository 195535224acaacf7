package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

var fallbackBranches = []string{"main", "master"}

type readmeMeta struct {
	Name string `json:"name"`
	Size int    `json:"size"`
}

type treeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
}

type treeResponse struct {
	Tree      []treeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

type restCommit struct {
	Commit struct {
		Message string `json:"message"`
	} `json:"commit"`
}

type restPull struct {
	State    string  `json:"state"`
	MergedAt *string `json:"merged_at"`
}

func repoPath(r Repository) string {
	return "/repos/" + url.PathEscape(r.Owner) + "/" + url.PathEscape(r.Name)
}

// Readme returns the raw README text of the repository.
func (c *Client) Readme(ctx context.Context, r Repository) (string, error) {
	data, err := c.getRaw(ctx, repoPath(r)+"/readme", nil)
	if err != nil {
		return "", fmt.Errorf("readme of %s: %w", r.FullName(), err)
	}
	return string(data), nil
}

// ReadmeSize returns the README size in bytes from its metadata.
func (c *Client) ReadmeSize(ctx context.Context, r Repository) (int, error) {
	var meta readmeMeta
	if err := c.getJSON(ctx, repoPath(r)+"/readme", nil, &meta); err != nil {
		return 0, fmt.Errorf("readme metadata of %s: %w", r.FullName(), err)
	}
	return meta.Size, nil
}

// FilePaths lists blob paths of the repository tree. The default branch is
// tried first, then main and master.
func (c *Client) FilePaths(ctx context.Context, r Repository) ([]string, error) {
	branches := make([]string, 0, 3)
	if r.DefaultBranch != "" {
		branches = append(branches, r.DefaultBranch)
	}
	for _, b := range fallbackBranches {
		if b != r.DefaultBranch {
			branches = append(branches, b)
		}
	}

	q := url.Values{}
	q.Set("recursive", "1")

	var lastErr error
	for _, branch := range branches {
		var tree treeResponse
		err := c.getJSON(ctx, repoPath(r)+"/git/trees/"+url.PathEscape(branch), q, &tree)
		if err != nil {
			lastErr = err
			if errors.Is(err, ErrNotFound) {
				continue
			}
			break
		}

		paths := make([]string, 0, len(tree.Tree))
		for _, e := range tree.Tree {
			if e.Type == "blob" {
				paths = append(paths, e.Path)
			}
		}
		return paths, nil
	}

	return nil, fmt.Errorf("tree of %s: %w", r.FullName(), lastErr)
}

// CommitMessages returns up to limit commit messages, most recent first.
func (c *Client) CommitMessages(ctx context.Context, r Repository, limit int) ([]string, error) {
	q := url.Values{}
	q.Set("per_page", strconv.Itoa(limit))

	var commits []restCommit
	if err := c.getJSON(ctx, repoPath(r)+"/commits", q, &commits); err != nil {
		return nil, fmt.Errorf("commits of %s: %w", r.FullName(), err)
	}

	messages := make([]string, 0, min(len(commits), limit))
	for _, cm := range commits {
		if len(messages) == limit {
			break
		}
		messages = append(messages, strings.TrimSpace(cm.Commit.Message))
	}
	return messages, nil
}

// BranchCount returns the number of branches in the repository.
func (c *Client) BranchCount(ctx context.Context, r Repository) (int, error) {
	n, err := c.countItems(ctx, repoPath(r)+"/branches", nil)
	if err != nil {
		return 0, fmt.Errorf("branches of %s: %w", r.FullName(), err)
	}
	return n, nil
}

// PullRequestCount counts open and merged pull requests. Closed unmerged
// ones are skipped. The state of each pull request has to be read, so only
// the newest maxListPages*perPage pull requests are looked at.
func (c *Client) PullRequestCount(ctx context.Context, r Repository) (int, error) {
	q := url.Values{}
	q.Set("state", "all")
	q.Set("per_page", strconv.Itoa(perPage))

	items, err := c.getItems(ctx, repoPath(r)+"/pulls", q)
	if err != nil {
		return 0, fmt.Errorf("pulls of %s: %w", r.FullName(), err)
	}

	var pulls []restPull
	if err := decodeItems(items, &pulls); err != nil {
		return 0, fmt.Errorf("decode pulls of %s: %w", r.FullName(), err)
	}

	count := 0
	for _, p := range pulls {
		if p.State == "open" || (p.MergedAt != nil && *p.MergedAt != "") {
			count++
		}
	}
	return count, nil
}

// FileContent returns the raw content of a file at the repository default
// branch.
func (c *Client) FileContent(ctx context.Context, r Repository, path string) (string, error) {
	segments := strings.Split(path, "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}

	var q url.Values
	if r.DefaultBranch != "" {
		q = url.Values{}
		q.Set("ref", r.DefaultBranch)
	}

	data, err := c.getRaw(ctx, repoPath(r)+"/contents/"+strings.Join(segments, "/"), q)
	if err != nil {
		return "", fmt.Errorf("content of %s:%s: %w", r.FullName(), path, err)
	}
	return string(data), nil
}
