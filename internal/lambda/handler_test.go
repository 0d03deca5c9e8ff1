package lambda

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/stahnma/gh-repometa/internal/cache"
	"github.com/stahnma/gh-repometa/internal/commands"
	"github.com/stahnma/gh-repometa/internal/config"
	ghub "github.com/stahnma/gh-repometa/internal/github"
	"github.com/stahnma/gh-repometa/internal/sink"
)

type mockGraphQL struct {
	queryFn func(ctx context.Context, query string, vars map[string]any) (map[string]any, error)
}

func (m *mockGraphQL) Query(ctx context.Context, query string, vars map[string]any) (map[string]any, error) {
	return m.queryFn(ctx, query, vars)
}

type sinkFunc func(ctx context.Context, name string, v any) error

func (f sinkFunc) Save(ctx context.Context, name string, v any) error { return f(ctx, name, v) }

func newTestApp(saved *[]any) *commands.App {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return &commands.App{
		Config: config.Config{
			Owner:       "w3c",
			NoCache:     true,
			OutputName:  "all-repos.json",
			S3Bucket:    "repometa",
			S3ObjectKey: "w3c-%s.json",
		},
		Cache: cache.New(),
		GraphQL: &mockGraphQL{
			queryFn: func(_ context.Context, _ string, vars map[string]any) (map[string]any, error) {
				return map[string]any{"organization": map[string]any{"repositories": map[string]any{
					"pageInfo": map[string]any{"hasNextPage": false},
					"edges": []any{
						map[string]any{"node": map[string]any{"nameWithOwner": vars["login"].(string) + "/a"}},
					},
				}}}, nil
			},
		},
		Log: log,
		NewSink: func(_ context.Context, cfg config.Config, _ io.Writer) (sink.Sink, error) {
			if cfg.Sink != config.SinkS3 {
				return nil, nil
			}
			return sinkFunc(func(_ context.Context, _ string, v any) error {
				*saved = append(*saved, v)
				return nil
			}), nil
		},
		Sleep: func(context.Context, time.Duration) error { return nil },
	}
}

func TestHandler(t *testing.T) {
	var saved []any
	handler := NewHandler(newTestApp(&saved))

	msg, err := handler(context.Background(), Event{Owner: "webassembly"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(msg, "1 repositories of webassembly") {
		t.Errorf("unexpected message %q", msg)
	}
	if len(saved) != 1 {
		t.Fatalf("expected one upload, got %d", len(saved))
	}
	snap := saved[0].(*ghub.Snapshot)
	if snap.Repositories[0].NameWithOwner() != "webassembly/a" {
		t.Errorf("uploaded %v", snap.RepositoryNames())
	}
}

func TestHandler_DefaultOwner(t *testing.T) {
	var saved []any
	handler := NewHandler(newTestApp(&saved))

	if _, err := handler(context.Background(), Event{}); err != nil {
		t.Fatal(err)
	}
	if names := saved[0].(*ghub.Snapshot).RepositoryNames(); names[0] != "w3c/a" {
		t.Errorf("uploaded %v, want w3c/a", names)
	}
}

func TestHandler_MissingBucket(t *testing.T) {
	var saved []any
	app := newTestApp(&saved)
	app.Config.S3Bucket = ""

	_, err := NewHandler(app)(context.Background(), Event{})
	if err == nil || !strings.Contains(err.Error(), "S3_BUCKET_NAME") {
		t.Errorf("expected bucket error, got %v", err)
	}
	if len(saved) != 0 {
		t.Error("nothing should be uploaded")
	}
}

func TestHandler_NoOwner(t *testing.T) {
	var saved []any
	app := newTestApp(&saved)
	app.Config.Owner = ""

	if _, err := NewHandler(app)(context.Background(), Event{}); err == nil {
		t.Error("expected error without owner")
	}
}
