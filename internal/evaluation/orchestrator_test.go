package evaluation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/GradPipeOrg/showoff/internal/github"
	"github.com/GradPipeOrg/showoff/internal/judge"
	"github.com/GradPipeOrg/showoff/internal/queue"
	"github.com/GradPipeOrg/showoff/internal/resume"
	"github.com/GradPipeOrg/showoff/internal/scoring"
	"github.com/GradPipeOrg/showoff/internal/storage"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type fixedResume struct {
	res   scoring.Result
	panic bool
}

func (fixedResume) Strategy() Strategy { return StrategyHeuristic }

func (f fixedResume) Score(context.Context, []byte) scoring.Result {
	if f.panic {
		panic("boom")
	}
	return f.res
}

type fixedGitHub struct{ res scoring.Result }

func (fixedGitHub) Strategy() Strategy { return StrategyHeuristic }

func (f fixedGitHub) Score(context.Context, string) scoring.Result { return f.res }

type stubJudge struct {
	mu      sync.Mutex
	res     scoring.Result
	payload judge.Payload
	variant judge.Variant
}

func (s *stubJudge) Judge(_ context.Context, v judge.Variant, p judge.Payload) scoring.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.variant, s.payload = v, p
	return s.res
}

type stubBuilder struct {
	packet *github.ContextPacket
	err    error
}

func (s stubBuilder) Build(context.Context, string) (*github.ContextPacket, error) {
	return s.packet, s.err
}

type stubCollector struct {
	signals *github.Signals
	err     error
}

func (s stubCollector) CollectSignals(context.Context, string) (*github.Signals, error) {
	return s.signals, s.err
}

type mapStorage map[string][]byte

func (m mapStorage) Download(_ context.Context, locator string) ([]byte, error) {
	data, ok := m[locator]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return data, nil
}

type memoryStore struct {
	mu     sync.Mutex
	rows   map[string]scoring.FinalScore
	writes int
	err    error
}

func (m *memoryStore) Upsert(_ context.Context, userID string, score scoring.FinalScore) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if m.rows == nil {
		m.rows = map[string]scoring.FinalScore{}
	}
	m.rows[userID] = score
	m.writes++
	return nil
}

func newOrchestrator(t *testing.T, cfg Config) *Orchestrator {
	t.Helper()

	o, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}
	return o
}

func testJob() queue.EvaluationJob {
	return queue.NewJob("user-1", "octocat", "user-1/resume.pdf")
}

func TestEvaluateCombinesAxes(t *testing.T) {
	o := newOrchestrator(t, Config{
		Resume: fixedResume{res: scoring.Result{Score: 80, Justification: "resume ok"}},
		GitHub: fixedGitHub{res: scoring.Result{Score: 50, Justification: "github ok"}},
	})

	got := o.Evaluate(context.Background(), []byte("%PDF"), "octocat")
	want := scoring.FinalScore{
		ResumeScore:         80,
		GitHubScore:         50,
		ShowoffScore:        71,
		ResumeJustification: "resume ok",
		GitHubJustification: "github ok",
	}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestEvaluateIsolatesPanickingAxis(t *testing.T) {
	o := newOrchestrator(t, Config{
		Resume: fixedResume{panic: true},
		GitHub: fixedGitHub{res: scoring.Result{Score: 90}},
	})

	got := o.Evaluate(context.Background(), nil, "octocat")
	if got.ResumeScore != 0 || got.GitHubScore != 90 || got.ShowoffScore != 27 {
		t.Fatalf("unexpected result %+v", got)
	}
	if !strings.HasPrefix(got.ResumeJustification, "Error: ") {
		t.Fatalf("expected error justification, got %q", got.ResumeJustification)
	}
}

func TestEvaluateClampsAxisScores(t *testing.T) {
	o := newOrchestrator(t, Config{
		Resume: fixedResume{res: scoring.Result{Score: 130}},
		GitHub: fixedGitHub{res: scoring.Result{Score: -4}},
	})

	got := o.Evaluate(context.Background(), nil, "octocat")
	if got.ResumeScore != 100 || got.GitHubScore != 0 || got.ShowoffScore != 70 {
		t.Fatalf("unexpected result %+v", got)
	}
}

func TestProcessPersistsJudgeFailureAsZero(t *testing.T) {
	packet := &github.ContextPacket{AnalysisMethod: github.MethodPinned}
	failing := &stubJudge{res: scoring.Failed(errors.New("gemini blocked the request"))}
	st := &memoryStore{}

	o := newOrchestrator(t, Config{
		Resume:  fixedResume{res: scoring.Result{Score: 80, Justification: "strong"}},
		GitHub:  NewGitHubJudge(stubBuilder{packet: packet}, failing),
		Storage: mapStorage{"user-1/resume.pdf": []byte("%PDF")},
		Store:   st,
	})

	if err := o.Process(context.Background(), testJob()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	row := st.rows["user-1"]
	if row.ResumeScore != 80 || row.GitHubScore != 0 || row.ShowoffScore != 56 {
		t.Fatalf("unexpected row %+v", row)
	}
	if !strings.HasPrefix(row.GitHubJustification, "Error: ") {
		t.Fatalf("expected error justification, got %q", row.GitHubJustification)
	}
	if failing.variant != judge.VariantGitHub || !strings.Contains(string(failing.payload.Context), `"analysis_method":"pinned"`) {
		t.Fatalf("judge did not receive the packet: %s %s", failing.variant, failing.payload.Context)
	}
}

func TestProcessUnknownGitHubUserScoresZero(t *testing.T) {
	st := &memoryStore{}
	notFound := fmt.Errorf("get user ghost: %w", github.ErrNotFound)

	for name, axis := range map[string]GitHubAxis{
		"heuristic": NewGitHubHeuristic(stubCollector{err: notFound}, github.NewHeuristicScorer(mustWeights(t), nil)),
		"judge":     NewGitHubJudge(stubBuilder{err: notFound}, &stubJudge{res: scoring.Result{Score: 99}}),
	} {
		t.Run(name, func(t *testing.T) {
			o := newOrchestrator(t, Config{
				Resume:  fixedResume{res: scoring.Result{Score: 60}},
				GitHub:  axis,
				Storage: mapStorage{"user-1/resume.pdf": []byte("%PDF")},
				Store:   st,
			})

			if err := o.Process(context.Background(), testJob()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if row := st.rows["user-1"]; row.GitHubScore != 0 || row.ShowoffScore != 42 {
				t.Fatalf("unexpected row %+v", row)
			}
		})
	}
}

func TestProcessDownloadFailureWritesNothing(t *testing.T) {
	st := &memoryStore{}
	o := newOrchestrator(t, Config{
		Resume:  fixedResume{},
		GitHub:  fixedGitHub{},
		Storage: mapStorage{},
		Store:   st,
	})

	err := o.Process(context.Background(), testJob())
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected storage.ErrNotFound, got %v", err)
	}
	if st.writes != 0 {
		t.Fatalf("expected no writes, got %d", st.writes)
	}
}

func TestProcessStoreFailure(t *testing.T) {
	boom := errors.New("connection refused")
	o := newOrchestrator(t, Config{
		Resume:  fixedResume{},
		GitHub:  fixedGitHub{},
		Storage: mapStorage{"user-1/resume.pdf": nil},
		Store:   &memoryStore{err: boom},
	})

	if err := o.Process(context.Background(), testJob()); !errors.Is(err, boom) {
		t.Fatalf("expected store error, got %v", err)
	}
}

func TestProcessIsIdempotent(t *testing.T) {
	st := &memoryStore{}
	o := newOrchestrator(t, Config{
		Resume:  fixedResume{res: scoring.Result{Score: 75, Justification: "r"}},
		GitHub:  fixedGitHub{res: scoring.Result{Score: 40, Justification: "g"}},
		Storage: mapStorage{"user-1/resume.pdf": []byte("%PDF")},
		Store:   st,
	})

	job := testJob()
	for i := 0; i < 2; i++ {
		if err := o.Process(context.Background(), job); err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
	}

	if len(st.rows) != 1 || st.writes != 2 {
		t.Fatalf("expected one row written twice, got %d rows and %d writes", len(st.rows), st.writes)
	}
	if row := st.rows["user-1"]; row.ShowoffScore != 64 {
		t.Fatalf("unexpected row %+v", row)
	}
}

func TestProcessLogsAxisScoresWithJobFields(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	o, err := New(Config{
		Resume:  fixedResume{res: scoring.Result{Score: 75, Justification: "r"}},
		GitHub:  fixedGitHub{res: scoring.Result{Score: 40, Justification: "g"}},
		Storage: mapStorage{"user-1/resume.pdf": []byte("%PDF")},
		Store:   &memoryStore{},
	}, zap.New(core))
	if err != nil {
		t.Fatalf("new orchestrator: %v", err)
	}

	job := testJob()
	if err := o.Process(context.Background(), job); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	entries := observed.FilterMessage("axis scored").All()
	if len(entries) != 2 {
		t.Fatalf("expected two axis entries, got %d", len(entries))
	}
	for _, e := range entries {
		fields := e.ContextMap()
		if fields["job_id"] != job.ID || fields["user_id"] != job.UserID {
			t.Fatalf("axis entry misses job fields: %v", fields)
		}
	}
}

func TestResumeAxes(t *testing.T) {
	r, err := resume.LookupRubric(resume.DefaultRubricVersion)
	if err != nil {
		t.Fatalf("lookup rubric: %v", err)
	}

	heuristic := NewResumeHeuristic(resume.NewScorer(r, nil))
	if res := heuristic.Score(context.Background(), []byte("not a pdf")); res.Score != 0 || !strings.HasPrefix(res.Justification, "Error: ") {
		t.Fatalf("expected extraction failure to score 0, got %+v", res)
	}

	j := &stubJudge{res: scoring.Result{Score: 88, Justification: "elite"}}
	if res := NewResumeJudge(j).Score(context.Background(), []byte("%PDF")); res.Score != 88 {
		t.Fatalf("unexpected result %+v", res)
	}
	if j.variant != judge.VariantResume || string(j.payload.Document) != "%PDF" {
		t.Fatalf("judge got %s %q", j.variant, j.payload.Document)
	}
}

func TestGitHubHeuristicAxis(t *testing.T) {
	signals := &github.Signals{
		Profile: github.Profile{Login: "octocat", Name: "Octo", Bio: "cats", Followers: 10},
	}
	axis := NewGitHubHeuristic(stubCollector{signals: signals}, github.NewHeuristicScorer(mustWeights(t), nil))

	res := axis.Score(context.Background(), "octocat")
	// profile polish 5 + community reach 5, no repositories.
	if res.Score != 10 || res.Justification != "" {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestGitHubJudgeSendsPacketJSON(t *testing.T) {
	packet := &github.ContextPacket{
		UserProfile:    github.UserProfile{Name: "Octo", Followers: 3},
		AnalysisMethod: github.MethodFallback,
		AnalyzedRepos:  []github.RepoSnapshot{},
	}
	j := &stubJudge{res: scoring.Result{Score: 61}}

	if res := NewGitHubJudge(stubBuilder{packet: packet}, j).Score(context.Background(), "octocat"); res.Score != 61 {
		t.Fatalf("unexpected result %+v", res)
	}

	var decoded map[string]any
	if err := json.Unmarshal(j.payload.Context, &decoded); err != nil {
		t.Fatalf("payload is not json: %v", err)
	}
	if decoded["analysis_method"] != "top_repo_fallback" {
		t.Fatalf("unexpected packet %v", decoded)
	}
}

func TestParseStrategy(t *testing.T) {
	for in, want := range map[string]Strategy{"judge": StrategyJudge, " Heuristic ": StrategyHeuristic} {
		got, err := ParseStrategy(in)
		if err != nil || got != want {
			t.Fatalf("ParseStrategy(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseStrategy("llm"); err == nil {
		t.Fatal("expected error for unknown strategy")
	}
}

func TestNewRequiresAxes(t *testing.T) {
	if _, err := New(Config{Resume: fixedResume{}}, nil); err == nil {
		t.Fatal("expected error without github axis")
	}
}

func mustWeights(t *testing.T) github.Weights {
	t.Helper()

	w, err := github.LookupWeights(github.DefaultWeightsVersion)
	if err != nil {
		t.Fatalf("lookup weights: %v", err)
	}
	return w
}

func TestEvaluateHeuristicModeIsDeterministic(t *testing.T) {
	r, err := resume.LookupRubric("")
	if err != nil {
		t.Fatalf("lookup rubric: %v", err)
	}

	signals := &github.Signals{
		Profile:     github.Profile{Login: "octocat", Bio: "builder"},
		Method:      github.MethodFallback,
		PinnedCount: 1,
		Repos: []github.RepoSignals{
			{Name: "octocat/api", ReadmeFound: true, ReadmeSize: 512, Paths: []string{"src/main.go", "src/main_test.go"}, CommitCount: 8, BranchCount: 2, Stars: 3},
			{Name: "octocat/dots", Paths: []string{"vimrc"}, CommitCount: 1, BranchCount: 1},
		},
	}

	o := newOrchestrator(t, Config{
		Resume: NewResumeHeuristic(resume.NewScorer(r, nil)),
		GitHub: NewGitHubHeuristic(stubCollector{signals: signals}, github.NewHeuristicScorer(mustWeights(t), nil)),
	})

	first := o.Evaluate(context.Background(), []byte("not a pdf"), "octocat")
	second := o.Evaluate(context.Background(), []byte("not a pdf"), "octocat")

	if first != second {
		t.Fatalf("expected identical results, got %+v and %+v", first, second)
	}
	if first.GitHubScore == 0 || first.ShowoffScore != scoring.Showoff(first.ResumeScore, first.GitHubScore) {
		t.Fatalf("unexpected result %+v", first)
	}
}
