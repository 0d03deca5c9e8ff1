package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	ghub "github.com/stahnma/gh-repometa/internal/github"
)

func (a *App) newRateLimitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ratelimit",
		Short: "Show the remaining REST and GraphQL quota",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.ensureRESTClient(); err != nil {
				return err
			}
			quotas, err := ghub.FetchQuotas(cmd.Context(), a.GHClient)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for _, q := range quotas {
				fmt.Fprintf(w, "%s: %d/%d remaining, resets at %s\n", q.Resource, q.Remaining, q.Limit, q.Reset.Format(time.RFC3339))
			}
			return nil
		},
	}
}
