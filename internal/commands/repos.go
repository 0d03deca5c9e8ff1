package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stahnma/gh-repometa/internal/config"
	ghub "github.com/stahnma/gh-repometa/internal/github"
	"github.com/stahnma/gh-repometa/internal/sink"
)

func (a *App) newReposCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repos [owner]",
		Short: "Collect every repository of an organization and save the snapshot",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runRepos(cmd, args)
		},
	}
	cmd.Flags().BoolVar(&a.Config.IncludePrivate, "include-private", a.Config.IncludePrivate, "Keep private repositories in the snapshot")
	cmd.Flags().BoolVar(&a.Config.SkipInvalid, "skip-invalid", a.Config.SkipInvalid, "Drop repositories that cannot be normalized instead of failing")
	cmd.Flags().Bool("stdout", false, "Write the snapshot to stdout instead of the configured sink")
	return cmd
}

func (a *App) runRepos(cmd *cobra.Command, args []string) error {
	owner := a.Config.Owner
	if len(args) == 1 {
		owner = args[0]
	}
	if owner == "" {
		return fmt.Errorf("an owner argument or GITHUB_OWNER must be set")
	}
	if err := a.ensureClient(); err != nil {
		return err
	}
	ctx := cmd.Context()

	toStdout, _ := cmd.Flags().GetBool("stdout")
	var s sink.Sink = &sink.WriterSink{W: cmd.OutOrStdout()}
	if !toStdout {
		if err := a.Config.Validate(); err != nil {
			return err
		}
		var err error
		s, err = a.NewSink(ctx, a.Config, cmd.OutOrStdout())
		if err != nil {
			return fmt.Errorf("opening sink: %w", err)
		}
		defer sink.Close(s)
	}

	snap, err := a.CollectAndSave(ctx, owner, s)
	if err != nil {
		return err
	}
	if !toStdout && a.Config.Sink != config.SinkStdout {
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %d repositories of %s to the %s sink as %s\n",
			len(snap.Repositories), owner, a.Config.Sink, a.Config.OutputName)
	}
	return nil
}

// CollectAndSave snapshots owner and stores the result in s under the configured output name.
func (a *App) CollectAndSave(ctx context.Context, owner string, s sink.Sink) (*ghub.Snapshot, error) {
	if err := a.ensureClient(); err != nil {
		return nil, err
	}
	a.logQuotas(ctx)

	snap, err := a.collector().Snapshot(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("collecting repositories of %s: %w", owner, err)
	}
	if err := s.Save(ctx, a.Config.OutputName, snap); err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}
	return snap, nil
}

// logQuotas reports the remaining API budget before a long collection.
func (a *App) logQuotas(ctx context.Context) {
	if a.GHClient == nil {
		return
	}
	quotas, err := ghub.FetchQuotas(ctx, a.GHClient)
	if err != nil {
		a.logger().WithError(err).Debug("rate limit check failed")
		return
	}
	for _, q := range quotas {
		a.logger().WithField("resource", q.Resource).Debugf("%d/%d requests remaining", q.Remaining, q.Limit)
	}
}
