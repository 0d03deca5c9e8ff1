package lambda

import (
	"context"
	"fmt"

	"github.com/stahnma/gh-repometa/internal/commands"
	"github.com/stahnma/gh-repometa/internal/config"
)

// Event is the invocation payload. An empty owner falls back to GITHUB_OWNER.
type Event struct {
	Owner string `json:"owner"`
}

// NewHandler returns a Lambda handler function that collects an owner's
// repositories and uploads the snapshot to S3.
func NewHandler(app *commands.App) func(context.Context, Event) (string, error) {
	return func(ctx context.Context, event Event) (string, error) {
		owner := event.Owner
		if owner == "" {
			owner = app.Config.Owner
		}
		if owner == "" {
			return "", fmt.Errorf("event owner or GITHUB_OWNER must be set")
		}

		cfg := app.Config
		cfg.Sink = config.SinkS3
		if err := cfg.Validate(); err != nil {
			return "", err
		}

		s, err := app.NewSink(ctx, cfg, nil)
		if err != nil {
			return "", fmt.Errorf("opening S3 sink: %w", err)
		}

		snap, err := app.CollectAndSave(ctx, owner, s)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Collected %d repositories of %s and uploaded the snapshot to S3", len(snap.Repositories), owner), nil
	}
}
