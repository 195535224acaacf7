package github

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Builder assembles context packets. Only profile resolution can fail a
// build; every other fetch degrades to an absent value.
type Builder struct {
	client *Client
	logger *zap.Logger
}

func NewBuilder(client *Client, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{client: client, logger: logger}
}

// Build produces the context packet for username.
func (b *Builder) Build(ctx context.Context, username string) (*ContextPacket, error) {
	profile, err := b.client.GetUser(ctx, username)
	if err != nil {
		return nil, err
	}
	log := b.logger.With(zap.String("username", profile.Login))

	sel := b.client.SelectRepositories(ctx, username)

	packet := &ContextPacket{
		UserProfile: UserProfile{
			Bio:       profile.Bio,
			Name:      profile.Name,
			Followers: profile.Followers,
		},
		AnalysisMethod: sel.Method,
		AnalyzedRepos:  make([]RepoSnapshot, len(sel.Repos)),
	}

	var g errgroup.Group
	for i, repo := range sel.Repos {
		g.Go(func() error {
			packet.AnalyzedRepos[i] = b.snapshot(ctx, repo, log)
			return nil
		})
	}
	g.Go(func() error {
		n, err := b.client.MergedExternalPRCount(ctx, username)
		packet.OSSContributionsCount = absent(log, "oss contributions", "", n, err)
		return nil
	})
	_ = g.Wait()

	log.Info("context packet built",
		zap.String("analysis_method", string(packet.AnalysisMethod)),
		zap.Int("repos", len(packet.AnalyzedRepos)),
		zap.Int("oss_contributions", packet.OSSContributionsCount),
	)

	return packet, nil
}

func (b *Builder) snapshot(ctx context.Context, repo Repository, log *zap.Logger) RepoSnapshot {
	name := repo.FullName()
	snap := RepoSnapshot{
		Name:            repo.Name,
		Description:     repo.Description,
		PrimaryLanguage: repo.Language,
		StargazerCount:  repo.Stars,
		FileList:        []string{},
		CommitMessages:  []string{},
		RawCodeSnippets: []CodeSnippet{},
	}

	var g errgroup.Group

	g.Go(func() error {
		readme, err := b.client.Readme(ctx, repo)
		snap.ReadmeContent = Truncate(absent(log, "readme", name, readme, err), ReadmeLimit)
		return nil
	})

	g.Go(func() error {
		paths, err := b.client.FilePaths(ctx, repo)
		if paths = absent(log, "tree", name, paths, err); paths != nil {
			snap.FileList = paths
		}
		snap.RawCodeSnippets = b.snippets(ctx, repo, SelectKeyFiles(paths), log)
		return nil
	})

	g.Go(func() error {
		msgs, err := b.client.CommitMessages(ctx, repo, maxCommits)
		if msgs = absent(log, "commits", name, msgs, err); msgs != nil {
			snap.CommitMessages = msgs
		}
		return nil
	})

	g.Go(func() error {
		n, err := b.client.BranchCount(ctx, repo)
		snap.BranchCount = absent(log, "branches", name, n, err)
		return nil
	})

	g.Go(func() error {
		n, err := b.client.PullRequestCount(ctx, repo)
		snap.PullRequestCount = absent(log, "pulls", name, n, err)
		return nil
	})

	_ = g.Wait()
	return snap
}

// snippets fetches key files concurrently and keeps their selection order.
// Files that cannot be fetched are left out.
func (b *Builder) snippets(ctx context.Context, repo Repository, files []string, log *zap.Logger) []CodeSnippet {
	contents := make([]string, len(files))
	found := make([]bool, len(files))

	var wg sync.WaitGroup
	for i, file := range files {
		wg.Add(1)
		go func() {
			defer wg.Done()
			content, err := b.client.FileContent(ctx, repo, file)
			if err != nil {
				absent(log, "file "+file, repo.FullName(), "", err)
				return
			}
			contents[i] = content
			found[i] = true
		}()
	}
	wg.Wait()

	out := make([]CodeSnippet, 0, len(files))
	for i, file := range files {
		if !found[i] {
			continue
		}
		out = append(out, CodeSnippet{
			FileName: file,
			Content:  Truncate(contents[i], SnippetLimit),
			Language: LanguageFor(file),
		})
	}
	return out
}

// absent returns v, or the zero value of T when err is set.
func absent[T any](log *zap.Logger, what, repo string, v T, err error) T {
	if err == nil {
		return v
	}

	fields := []zap.Field{zap.String("fetch", what), zap.Error(err)}
	if repo != "" {
		fields = append(fields, zap.String("repo", repo))
	}
	log.Debug("treating fetch as absent", fields...)

	var zero T
	return zero
}
