package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	gh "github.com/google/go-github/v68/github"
	"github.com/sirupsen/logrus"

	"github.com/stahnma/gh-repometa/internal/cache"
	"github.com/stahnma/gh-repometa/internal/paginate"
)

// mockClient implements Client for testing.
type mockClient struct {
	rateLimitsFn func(ctx context.Context) (*gh.RateLimits, *gh.Response, error)
}

func (m *mockClient) RateLimits(ctx context.Context) (*gh.RateLimits, *gh.Response, error) {
	return m.rateLimitsFn(ctx)
}

// emptyResponse returns a *gh.Response that signals no more pages.
func emptyResponse() *gh.Response {
	return &gh.Response{
		Response: &http.Response{StatusCode: 200},
	}
}

// mockGraphQL implements graphql.Client. It is safe for concurrent use and
// records every call.
type mockGraphQL struct {
	repositoriesFn func(login string, cursor string) (map[string]any, error)
	repositoryFn   func(owner, name string) (map[string]any, error)
	labelsFn       func(owner, name, cursor string) (map[string]any, error)

	mu    sync.Mutex
	calls []call
}

type call struct {
	query string
	vars  map[string]any
}

func (m *mockGraphQL) Query(_ context.Context, query string, vars map[string]any) (map[string]any, error) {
	m.mu.Lock()
	m.calls = append(m.calls, call{query: query, vars: vars})
	m.mu.Unlock()

	switch query {
	case repositoriesQuery:
		return m.repositoriesFn(vars["login"].(string), cursorOf(vars))
	case repositoryQuery:
		return m.repositoryFn(vars["owner"].(string), vars["name"].(string))
	case labelsQuery:
		return m.labelsFn(vars["owner"].(string), vars["name"].(string), cursorOf(vars))
	}
	return nil, fmt.Errorf("unexpected query %q", query)
}

func (m *mockGraphQL) callsTo(query string) []call {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []call
	for _, c := range m.calls {
		if c.query == query {
			out = append(out, c)
		}
	}
	return out
}

func cursorOf(vars map[string]any) string {
	if p, ok := vars["endCursor"].(*string); ok && p != nil {
		return *p
	}
	return ""
}

// recordingSleep counts pagination delays without waiting.
type recordingSleep struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *recordingSleep) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return nil
}

func (s *recordingSleep) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.delays)
}

var testNow = time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)

func newTestCollector(gql *mockGraphQL, c *cache.Cache, opts CollectOptions) (*Collector, *recordingSleep) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	rs := &recordingSleep{}
	pager := &paginate.Paginator{Delay: paginate.DefaultDelay, Sleep: rs.sleep, Log: log}
	col := NewCollector(gql, c, pager, opts, log)
	col.now = func() time.Time { return testNow }
	return col, rs
}

// repoNode builds a raw repository node as the API returns it.
func repoNode(nameWithOwner string, labels ...string) map[string]any {
	nodes := make([]any, len(labels))
	for i, l := range labels {
		nodes[i] = map[string]any{"name": l}
	}
	return map[string]any{
		"nameWithOwner": nameWithOwner,
		"isPrivate":     false,
		"readme":        map[string]any{"text": "# " + nameWithOwner},
		"labels":        map[string]any{"nodes": nodes},
	}
}

func repositoriesPage(endCursor string, hasNext bool, nodes ...map[string]any) map[string]any {
	edges := make([]any, len(nodes))
	for i, n := range nodes {
		edges[i] = map[string]any{"node": n}
	}
	return map[string]any{
		"organization": map[string]any{
			"repositories": map[string]any{
				"pageInfo": map[string]any{"endCursor": endCursor, "hasNextPage": hasNext},
				"edges":    edges,
			},
		},
	}
}

func labelsPage(endCursor string, hasNext bool, names ...string) map[string]any {
	edges := make([]any, len(names))
	for i, n := range names {
		edges[i] = map[string]any{"node": map[string]any{"name": n}}
	}
	return map[string]any{
		"repository": map[string]any{
			"labels": map[string]any{
				"pageInfo": map[string]any{"endCursor": endCursor, "hasNextPage": hasNext},
				"edges":    edges,
			},
		},
	}
}

func labelNames(prefix string, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = fmt.Sprintf("%s-%02d", prefix, i)
	}
	return names
}
