package secrets

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPrecedence(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "token")
	if err := os.WriteFile(file, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SHOWOFF_TEST_SECRET", "from-env")

	tests := []struct {
		name   string
		src    Source
		expect string
	}{
		{name: "file wins", src: Source{File: file, Value: "inline", Env: "SHOWOFF_TEST_SECRET"}, expect: "from-file"},
		{name: "inline over env", src: Source{Value: " inline ", Env: "SHOWOFF_TEST_SECRET"}, expect: "inline"},
		{name: "env last", src: Source{Env: "SHOWOFF_TEST_SECRET"}, expect: "from-env"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	for _, src := range []Source{
		{Name: "api key"},
		{Name: "api key", File: empty},
		{Name: "api key", File: filepath.Join(dir, "missing")},
		{Name: "api key", Env: "SHOWOFF_TEST_UNSET_SECRET"},
	} {
		if _, err := Load(src); err == nil {
			t.Fatalf("expected error for %+v", src)
		}
	}
}

func TestOptional(t *testing.T) {
	got, err := Optional(Source{Name: "github token", Env: "SHOWOFF_TEST_UNSET_SECRET"})
	if err != nil || got != "" {
		t.Fatalf("expected empty secret without error, got %q, %v", got, err)
	}

	got, err = Optional(Source{Name: "github token", Value: "ghp_x"})
	if err != nil || got != "ghp_x" {
		t.Fatalf("expected inline secret, got %q, %v", got, err)
	}
}
