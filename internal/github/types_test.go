package github

import (
	"testing"

	"github.com/stahnma/gh-repometa/internal/normalize"
)

func TestRepoFullName(t *testing.T) {
	tests := []struct {
		owner, name, want string
	}{
		{"w3c", "trace-context", "w3c/trace-context"},
		{"org", "project", "org/project"},
		{"", "", "/"},
	}
	for _, tt := range tests {
		r := Repo{Owner: tt.owner, Name: tt.name}
		if got := r.FullName(); got != tt.want {
			t.Errorf("Repo{%q,%q}.FullName() = %q, want %q", tt.owner, tt.name, got, tt.want)
		}
	}
}

func TestParseRepo(t *testing.T) {
	r, err := ParseRepo(" w3c/trace-context ")
	if err != nil {
		t.Fatal(err)
	}
	if r.Owner != "w3c" || r.Name != "trace-context" {
		t.Errorf("got %+v", r)
	}

	for _, bad := range []string{"", "w3c", "w3c/", "/repo", "a/b/c"} {
		if _, err := ParseRepo(bad); err == nil {
			t.Errorf("ParseRepo(%q) should fail", bad)
		}
	}
}

func TestSnapshotRepositoryNames(t *testing.T) {
	snap := &Snapshot{Repositories: []normalize.Record{
		{"nameWithOwner": "w3c/b"},
		{"nameWithOwner": "w3c/a"},
	}}
	got := snap.RepositoryNames()
	if len(got) != 2 || got[0] != "w3c/b" || got[1] != "w3c/a" {
		t.Errorf("RepositoryNames() = %v, want arrival order", got)
	}
}
