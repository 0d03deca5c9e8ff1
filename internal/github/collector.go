package github

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stahnma/gh-repometa/internal/cache"
	apperrors "github.com/stahnma/gh-repometa/internal/errors"
	"github.com/stahnma/gh-repometa/internal/graphql"
	"github.com/stahnma/gh-repometa/internal/normalize"
	"github.com/stahnma/gh-repometa/internal/paginate"
)

const (
	DefaultPageSize            = 10
	DefaultLabelPageSize       = 30
	DefaultLabelsPageSize      = 100
	DefaultWideningConcurrency = 5
)

// CollectOptions tunes a Collector. Zero sizes fall back to the defaults above.
type CollectOptions struct {
	PageSize            int
	LabelPageSize       int
	LabelsPageSize      int
	WideningConcurrency int

	IncludePrivate bool
	SkipInvalid    bool
	NoCache        bool
}

func (o CollectOptions) withDefaults() CollectOptions {
	if o.PageSize <= 0 {
		o.PageSize = DefaultPageSize
	}
	if o.LabelPageSize <= 0 {
		o.LabelPageSize = DefaultLabelPageSize
	}
	if o.LabelsPageSize <= 0 {
		o.LabelsPageSize = DefaultLabelsPageSize
	}
	if o.WideningConcurrency <= 0 {
		o.WideningConcurrency = DefaultWideningConcurrency
	}
	return o
}

// Collector fetches and normalizes the repositories of an owner.
type Collector struct {
	gql   graphql.Client
	cache *cache.Cache
	pager *paginate.Paginator
	opts  CollectOptions
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewCollector wires a Collector. c may be nil to disable caching.
func NewCollector(gql graphql.Client, c *cache.Cache, pager *paginate.Paginator, opts CollectOptions, log logrus.FieldLogger) *Collector {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if pager == nil {
		pager = paginate.New(paginate.DefaultDelay, log)
	}
	return &Collector{
		gql:   gql,
		cache: c,
		pager: pager,
		opts:  opts.withDefaults(),
		log:   log,
		now:   time.Now,
	}
}

// Repositories walks every repository of owner, page by page, and returns
// the normalized records in the order GitHub listed them.
func (c *Collector) Repositories(ctx context.Context, owner string) ([]normalize.Record, error) {
	if owner == "" {
		return nil, errors.New("owner is required")
	}
	pager := c.pager.For("repositories", owner)
	return paginate.Collect(ctx, pager, func(ctx context.Context, cursor *string) (paginate.PageResult[normalize.Record], error) {
		var page paginate.PageResult[normalize.Record]

		data, err := c.gql.Query(ctx, repositoriesQuery, map[string]any{
			"login":       owner,
			"first":       c.opts.PageSize,
			"endCursor":   cursor,
			"labelsFirst": c.opts.LabelPageSize,
		})
		if err != nil {
			return page, fmt.Errorf("querying repositories of %s: %w", owner, err)
		}
		org, ok := data["organization"].(map[string]any)
		if !ok {
			return page, &apperrors.PaginationError{Reason: apperrors.ReasonUnknownOwner, Owner: owner}
		}
		conn, ok := org["repositories"].(map[string]any)
		if !ok {
			return page, &apperrors.PaginationError{
				Reason:     apperrors.ReasonMissingCollection,
				Owner:      owner,
				Collection: "repositories",
			}
		}

		nodes, info := readConnection(conn)
		if !c.opts.IncludePrivate {
			nodes = dropPrivate(nodes)
		}
		nodes, err = c.widen(ctx, nodes)
		if err != nil {
			return page, err
		}
		page.Items, err = c.normalizePage(nodes)
		if err != nil {
			return page, err
		}
		page.EndCursor = info.endCursor
		page.HasNextPage = info.hasNextPage
		return page, nil
	})
}

// Repository fetches and normalizes a single repository.
func (c *Collector) Repository(ctx context.Context, owner, name string) (normalize.Record, error) {
	data, err := c.gql.Query(ctx, repositoryQuery, map[string]any{
		"owner":       owner,
		"name":        name,
		"labelsFirst": c.opts.LabelPageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("querying repository %s/%s: %w", owner, name, err)
	}
	node, ok := data["repository"].(map[string]any)
	if !ok {
		return nil, &apperrors.PaginationError{Reason: apperrors.ReasonUnknownRepository, Owner: owner, Repository: name}
	}
	nodes, err := c.widen(ctx, []any{node})
	if err != nil {
		return nil, err
	}
	return normalize.Normalize(nodes[0], c.now())
}

// Labels returns every label name of a repository, following its cursor to the end.
func (c *Collector) Labels(ctx context.Context, owner, name string) ([]string, error) {
	repo := Repo{Owner: owner, Name: name}
	cacheKey := "labels:" + repo.FullName()
	if val, found := c.cacheGet(cacheKey); found {
		if labels, ok := val.([]string); ok {
			return labels, nil
		}
	}

	pager := c.pager.For("labels", repo.FullName())
	labels, err := paginate.Collect(ctx, pager, func(ctx context.Context, cursor *string) (paginate.PageResult[string], error) {
		var page paginate.PageResult[string]

		data, err := c.gql.Query(ctx, labelsQuery, map[string]any{
			"owner":     owner,
			"name":      name,
			"first":     c.opts.LabelsPageSize,
			"endCursor": cursor,
		})
		if err != nil {
			return page, fmt.Errorf("querying labels of %s: %w", repo.FullName(), err)
		}
		node, ok := data["repository"].(map[string]any)
		if !ok {
			return page, &apperrors.PaginationError{Reason: apperrors.ReasonUnknownRepository, Owner: owner, Repository: name}
		}
		conn, ok := node["labels"].(map[string]any)
		if !ok {
			return page, &apperrors.PaginationError{
				Reason:     apperrors.ReasonMissingCollection,
				Owner:      owner,
				Repository: name,
				Collection: "labels",
			}
		}

		nodes, info := readConnection(conn)
		for _, n := range nodes {
			if l, ok := n.(map[string]any); ok {
				if s, ok := l["name"].(string); ok {
					page.Items = append(page.Items, s)
				}
			}
		}
		page.EndCursor = info.endCursor
		page.HasNextPage = info.hasNextPage
		return page, nil
	})
	if err != nil {
		return nil, err
	}
	if labels == nil {
		labels = []string{}
	}
	c.cacheSet(cacheKey, labels)
	return labels, nil
}

// Snapshot collects the repositories of owner with the time of the run.
func (c *Collector) Snapshot(ctx context.Context, owner string) (*Snapshot, error) {
	cacheKey := fmt.Sprintf("repositories:%s:private=%t:skip=%t:labels=%d",
		owner, c.opts.IncludePrivate, c.opts.SkipInvalid, c.opts.LabelPageSize)
	if val, found := c.cacheGet(cacheKey); found {
		if data, ok := val.([]byte); ok {
			if snap, err := decodeSnapshot(data); err == nil {
				c.log.WithField("owner", owner).Debug("snapshot served from cache")
				return snap, nil
			}
		}
	}

	started := c.now()
	repos, err := c.Repositories(ctx, owner)
	if err != nil {
		return nil, err
	}
	if repos == nil {
		repos = []normalize.Record{}
	}
	snap := &Snapshot{
		FetchedAt:    started.UTC().Format(normalize.TimeLayout),
		Repositories: repos,
	}
	c.log.WithField("owner", owner).Infof("%d repositories retrieved", len(repos))

	if data, err := json.Marshal(snap); err == nil {
		c.cacheSet(cacheKey, data)
	}
	return snap, nil
}

// normalizePage applies the invalid-record policy and the private filter.
func (c *Collector) normalizePage(nodes []any) ([]normalize.Record, error) {
	now := c.now()
	records := make([]normalize.Record, 0, len(nodes))
	for _, n := range nodes {
		rec, err := normalize.Normalize(n, now)
		if err != nil {
			if !c.opts.SkipInvalid {
				return nil, err
			}
			c.log.WithError(err).Warn("skipping invalid repository")
			continue
		}
		if rec.IsPrivate() && !c.opts.IncludePrivate {
			c.log.WithField("repository", rec.NameWithOwner()).Debug("skipping private repository")
			continue
		}
		if errs := rec.Errors(); errs != nil {
			c.log.WithFields(logrus.Fields{
				"repository": rec.NameWithOwner(),
				"fields":     len(errs),
			}).Debug("repository has invalid fields")
		}
		records = append(records, rec)
	}
	return records, nil
}

func (c *Collector) cacheGet(key string) (any, bool) {
	if c.cache == nil || c.opts.NoCache {
		return nil, false
	}
	val, found := c.cache.Get(key)
	if found {
		c.log.Debugf("Cache hit for key: %s", key)
	} else {
		c.log.Debugf("Cache miss for key: %s", key)
	}
	return val, found
}

func (c *Collector) cacheSet(key string, val any) {
	if c.cache == nil || c.opts.NoCache {
		return
	}
	c.cache.Set(key, val)
}

func decodeSnapshot(data []byte) (*Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var snap Snapshot
	if err := dec.Decode(&snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// dropPrivate removes nodes flagged isPrivate so they cost no label fetches.
// Anything else, invalid nodes included, is left for the normalizer.
func dropPrivate(nodes []any) []any {
	out := nodes[:0:0]
	for _, n := range nodes {
		if node, ok := n.(map[string]any); ok {
			if private, _ := node["isPrivate"].(bool); private {
				continue
			}
		}
		out = append(out, n)
	}
	return out
}

type pageInfo struct {
	endCursor   string
	hasNextPage bool
}

// readConnection returns the nodes of a connection, given either as
// edges { node } or as a plain nodes list, and its pageInfo.
func readConnection(conn map[string]any) ([]any, pageInfo) {
	var info pageInfo
	if pi, ok := conn["pageInfo"].(map[string]any); ok {
		info.endCursor, _ = pi["endCursor"].(string)
		info.hasNextPage, _ = pi["hasNextPage"].(bool)
	}

	if edges, ok := conn["edges"].([]any); ok {
		nodes := make([]any, 0, len(edges))
		for _, e := range edges {
			var node any
			if edge, ok := e.(map[string]any); ok {
				node = edge["node"]
			}
			nodes = append(nodes, node)
		}
		return nodes, info
	}
	nodes, _ := conn["nodes"].([]any)
	return nodes, info
}
