package github

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Signals are the raw API fields read by the heuristic scorer. No file
// content is ever fetched for them.
type Signals struct {
	Profile          Profile
	Method           AnalysisMethod
	PinnedCount      int
	Repos            []RepoSignals
	OSSContributions int
}

type RepoSignals struct {
	Name        string
	ReadmeFound bool
	ReadmeSize  int
	Paths       []string
	CommitCount int
	BranchCount int
	Stars       int
}

// CollectSignals gathers heuristic input for username with the same
// repository selection as Builder.Build.
func (c *Client) CollectSignals(ctx context.Context, username string) (*Signals, error) {
	profile, err := c.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	log := c.logger.With(zap.String("username", profile.Login))

	sel := c.SelectRepositories(ctx, username)
	s := &Signals{
		Profile:     *profile,
		Method:      sel.Method,
		PinnedCount: sel.PinnedCount,
		Repos:       make([]RepoSignals, len(sel.Repos)),
	}

	var g errgroup.Group
	for i, repo := range sel.Repos {
		g.Go(func() error {
			s.Repos[i] = c.repoSignals(ctx, repo, log)
			return nil
		})
	}
	g.Go(func() error {
		n, err := c.MergedExternalPRCount(ctx, username)
		s.OSSContributions = absent(log, "oss contributions", "", n, err)
		return nil
	})
	_ = g.Wait()

	return s, nil
}

func (c *Client) repoSignals(ctx context.Context, repo Repository, log *zap.Logger) RepoSignals {
	name := repo.FullName()
	rs := RepoSignals{Name: repo.Name, Stars: repo.Stars}

	var g errgroup.Group
	g.Go(func() error {
		size, err := c.ReadmeSize(ctx, repo)
		rs.ReadmeFound = err == nil
		rs.ReadmeSize = absent(log, "readme", name, size, err)
		return nil
	})
	g.Go(func() error {
		paths, err := c.FilePaths(ctx, repo)
		rs.Paths = absent(log, "tree", name, paths, err)
		return nil
	})
	g.Go(func() error {
		msgs, err := c.CommitMessages(ctx, repo, maxCommits)
		rs.CommitCount = len(absent(log, "commits", name, msgs, err))
		return nil
	})
	g.Go(func() error {
		n, err := c.BranchCount(ctx, repo)
		rs.BranchCount = absent(log, "branches", name, n, err)
		return nil
	})
	_ = g.Wait()

	return rs
}
