package github

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// widen replaces truncated label connections with the complete list.
// The fetches for one page run concurrently and all finish before widen
// returns. nodes is not modified; each widened node is a shallow copy.
func (c *Collector) widen(ctx context.Context, nodes []any) ([]any, error) {
	out := make([]any, len(nodes))
	copy(out, nodes)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.opts.WideningConcurrency)
	for i, n := range nodes {
		node, ok := n.(map[string]any)
		if !ok || !labelsTruncated(node, c.opts.LabelPageSize) {
			continue
		}
		name, _ := node["nameWithOwner"].(string)
		repo, err := ParseRepo(name)
		if err != nil {
			// Left for the normalizer to reject.
			continue
		}
		i := i // per-iteration copy; go.mod targets go 1.21 loop semantics
		g.Go(func() error {
			labels, err := c.Labels(gctx, repo.Owner, repo.Name)
			if err != nil {
				return fmt.Errorf("widening labels of %s: %w", repo.FullName(), err)
			}
			out[i] = withLabels(node, labels)
			c.log.WithField("repository", repo.FullName()).Debugf("widened labels to %d", len(labels))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// labelsTruncated reports whether the labels connection of node may hold
// more entries than were returned.
func labelsTruncated(node map[string]any, limit int) bool {
	conn, ok := node["labels"].(map[string]any)
	if !ok {
		return false
	}
	nodes, _ := conn["nodes"].([]any)
	if pi, ok := conn["pageInfo"].(map[string]any); ok {
		if more, _ := pi["hasNextPage"].(bool); more {
			return true
		}
	}
	if total, ok := count(conn["totalCount"]); ok && total > len(nodes) {
		return true
	}
	return limit > 0 && len(nodes) >= limit
}

func withLabels(node map[string]any, labels []string) map[string]any {
	cp := make(map[string]any, len(node))
	for k, v := range node {
		cp[k] = v
	}
	wrapped := make([]any, len(labels))
	for i, l := range labels {
		wrapped[i] = map[string]any{"name": l}
	}
	cp["labels"] = map[string]any{"nodes": wrapped}
	return cp
}

func count(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		n, err := t.Int64()
		return int(n), err == nil
	case float64:
		return int(t), true
	case int:
		return t, true
	}
	return 0, false
}
