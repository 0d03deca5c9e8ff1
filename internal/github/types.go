package github

import (
	"fmt"
	"strings"

	"github.com/stahnma/gh-repometa/internal/normalize"
)

// Repo identifies a GitHub repository.
type Repo struct {
	Owner string
	Name  string
}

// FullName returns the "owner/name" form.
func (r Repo) FullName() string {
	return r.Owner + "/" + r.Name
}

// ParseRepo splits an "owner/name" string.
func ParseRepo(s string) (Repo, error) {
	owner, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || owner == "" || name == "" || strings.Contains(name, "/") {
		return Repo{}, fmt.Errorf("expected owner/name, got %q", s)
	}
	return Repo{Owner: owner, Name: name}, nil
}

// Snapshot is the persisted result of one collection run.
type Snapshot struct {
	FetchedAt    string             `json:"fetchedAt"`
	Repositories []normalize.Record `json:"repositories"`
}

// RepositoryNames returns the nameWithOwner of every record, in order.
func (s *Snapshot) RepositoryNames() []string {
	names := make([]string, 0, len(s.Repositories))
	for _, r := range s.Repositories {
		names = append(names, r.NameWithOwner())
	}
	return names
}
