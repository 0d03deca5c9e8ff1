// Package paginate walks cursor-paginated GraphQL connections.
package paginate

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	apperrors "github.com/stahnma/gh-repometa/internal/errors"
)

// DefaultDelay throttles requests against the API rate limits.
const DefaultDelay = 5 * time.Second

// PageResult is one page of a connection.
type PageResult[T any] struct {
	Items       []T
	EndCursor   string
	HasNextPage bool
}

// FetchFunc fetches the page that follows cursor. A nil cursor asks for the first page.
type FetchFunc[T any] func(ctx context.Context, cursor *string) (PageResult[T], error)

// Paginator holds the pacing shared by every walk.
type Paginator struct {
	Delay time.Duration
	Sleep func(ctx context.Context, d time.Duration) error
	Log   logrus.FieldLogger

	// Collection and Owner only label errors and log lines.
	Collection string
	Owner      string
}

// New returns a Paginator sleeping delay between pages.
func New(delay time.Duration, log logrus.FieldLogger) *Paginator {
	return &Paginator{Delay: delay, Sleep: SleepContext, Log: log}
}

// For returns a copy labelled for one collection walk.
func (p *Paginator) For(collection, owner string) *Paginator {
	cp := *p
	cp.Collection = collection
	cp.Owner = owner
	return &cp
}

// SleepContext waits d or until ctx is done.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Collect fetches every page in order and returns their items concatenated.
// The first error aborts the walk; nothing is retried.
func Collect[T any](ctx context.Context, p *Paginator, fetch FetchFunc[T]) ([]T, error) {
	var (
		all    []T
		cursor *string
	)
	for page := 1; ; page++ {
		res, err := fetch(ctx, cursor)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Items...)
		p.log().WithFields(logrus.Fields{
			"collection": p.Collection,
			"owner":      p.Owner,
			"page":       page,
			"items":      len(res.Items),
			"cursor":     res.EndCursor,
		}).Debug("page fetched")

		if !res.HasNextPage {
			return all, nil
		}
		if res.EndCursor == "" {
			return nil, &apperrors.PaginationError{
				Reason:     apperrors.ReasonMissingCursor,
				Owner:      p.Owner,
				Collection: p.Collection,
			}
		}
		if err := p.wait(ctx); err != nil {
			return nil, err
		}
		next := res.EndCursor
		cursor = &next
	}
}

func (p *Paginator) wait(ctx context.Context) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = SleepContext
	}
	return sleep(ctx, p.Delay)
}

func (p *Paginator) log() logrus.FieldLogger {
	if p.Log == nil {
		return logrus.StandardLogger()
	}
	return p.Log
}
