package github

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type fakeRepo struct {
	readme   string
	paths    []string
	files    map[string]string
	commits  int
	branches int
	pulls    []restPull
	stars    int
	failTree bool
}

// fakeGitHub serves the subset of the REST and GraphQL APIs the client uses.
type fakeGitHub struct {
	login     string
	name      string
	bio       string
	followers int
	pinned    []string
	recent    []string
	repos     map[string]fakeRepo
	oss       int
	failOSS   bool
}

func newTestClient(t *testing.T, f *fakeGitHub) *Client {
	t.Helper()

	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	return New(Config{APIURL: srv.URL, Token: "test-token"}, zap.NewNop())
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Authorization") != "Bearer test-token" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")

	switch {
	case r.URL.Path == "/graphql":
		f.graphql(w)
	case r.URL.Path == "/search/issues":
		if f.failOSS {
			w.WriteHeader(http.StatusUnprocessableEntity)
			return
		}
		writeJSON(w, map[string]any{"total_count": f.oss, "items": []any{}})
	case len(parts) == 2 && parts[0] == "users":
		if parts[1] != f.login {
			http.NotFound(w, r)
			return
		}
		user := map[string]any{"login": f.login, "followers": f.followers, "name": nil, "bio": nil}
		if f.name != "" {
			user["name"] = f.name
		}
		if f.bio != "" {
			user["bio"] = f.bio
		}
		writeJSON(w, user)
	case len(parts) == 3 && parts[0] == "users" && parts[2] == "repos":
		limit, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
		var out []map[string]any
		for _, name := range f.recent {
			if limit > 0 && len(out) == limit {
				break
			}
			out = append(out, map[string]any{
				"name":             name,
				"owner":            map[string]any{"login": f.login},
				"default_branch":   "main",
				"stargazers_count": f.repos[name].stars,
				"language":         nil,
			})
		}
		writeJSON(w, out)
	case len(parts) >= 4 && parts[0] == "repos" && parts[1] == f.login:
		repo, ok := f.repos[parts[2]]
		if !ok {
			http.NotFound(w, r)
			return
		}
		f.repo(w, r, repo, parts[3:])
	default:
		http.NotFound(w, r)
	}
}

func (f *fakeGitHub) graphql(w http.ResponseWriter) {
	nodes := make([]map[string]any, 0, len(f.pinned))
	for _, name := range f.pinned {
		nodes = append(nodes, map[string]any{
			"name":             name,
			"description":      "pinned " + name,
			"stargazerCount":   f.repos[name].stars,
			"owner":            map[string]any{"login": f.login},
			"primaryLanguage":  map[string]any{"name": "Go"},
			"defaultBranchRef": map[string]any{"name": "main"},
		})
	}
	writeJSON(w, map[string]any{
		"data": map[string]any{"user": map[string]any{"pinnedItems": map[string]any{"nodes": nodes}}},
	})
}

func (f *fakeGitHub) repo(w http.ResponseWriter, r *http.Request, repo fakeRepo, rest []string) {
	q := r.URL.Query()

	switch rest[0] {
	case "readme":
		if repo.readme == "" {
			http.NotFound(w, r)
			return
		}
		if r.Header.Get("Accept") == acceptRaw {
			_, _ = w.Write([]byte(repo.readme))
			return
		}
		writeJSON(w, map[string]any{"name": "README.md", "size": len(repo.readme)})
	case "git":
		if repo.failTree {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		if len(rest) != 3 || rest[1] != "trees" || rest[2] != "main" || q.Get("recursive") != "1" {
			http.NotFound(w, r)
			return
		}
		tree := []map[string]any{{"path": "docs", "type": "tree"}}
		for _, p := range repo.paths {
			tree = append(tree, map[string]any{"path": p, "type": "blob"})
		}
		writeJSON(w, map[string]any{"tree": tree, "truncated": false})
	case "commits":
		n := repo.commits
		if limit, _ := strconv.Atoi(q.Get("per_page")); limit > 0 && n > limit {
			n = limit
		}
		out := make([]map[string]any, 0, n)
		for i := 0; i < n; i++ {
			out = append(out, map[string]any{"commit": map[string]any{"message": fmt.Sprintf("commit %d\n", i)}})
		}
		writeJSON(w, out)
	case "branches":
		start, end := paginate(w, r, repo.branches)
		out := []map[string]any{}
		for i := start; i < end; i++ {
			out = append(out, map[string]any{"name": fmt.Sprintf("b%d", i)})
		}
		writeJSON(w, out)
	case "pulls":
		if q.Get("state") != "all" {
			writeJSON(w, []any{})
			return
		}
		start, end := paginate(w, r, len(repo.pulls))
		writeJSON(w, repo.pulls[start:end])
	case "contents":
		content, ok := repo.files[strings.Join(rest[1:], "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(content))
	default:
		http.NotFound(w, r)
	}
}

// paginate slices a list of n items the way the REST API does and sets the
// Link header for the pages that follow.
func paginate(w http.ResponseWriter, r *http.Request, n int) (int, int) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page == 0 {
		page = 1
	}
	size, _ := strconv.Atoi(q.Get("per_page"))
	if size == 0 {
		size = 30
	}

	start := min((page-1)*size, n)
	end := min(start+size, n)
	if end < n {
		last := (n + size - 1) / size
		link := func(p int, rel string) string {
			return fmt.Sprintf(`<http://%s%s?page=%d&per_page=%d>; rel="%s"`, r.Host, r.URL.Path, p, size, rel)
		}
		w.Header().Set("Link", link(page+1, "next")+", "+link(last, "last"))
	}
	return start, end
}
