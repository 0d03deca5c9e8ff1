package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stahnma/gh-repometa/internal/format"
	ghub "github.com/stahnma/gh-repometa/internal/github"
)

func (a *App) newRepoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "repo <owner/name>",
		Short: "Print the normalized record of one repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := ghub.ParseRepo(args[0])
			if err != nil {
				return err
			}
			if err := a.ensureClient(); err != nil {
				return err
			}
			rec, err := a.collector().Repository(cmd.Context(), repo.Owner, repo.Name)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", repo.FullName(), err)
			}
			return format.WriteJSON(cmd.OutOrStdout(), rec, a.Config.SlackMode)
		},
	}
}

func (a *App) newLabelsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "labels <owner/name>",
		Short: "Print every label of one repository",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := ghub.ParseRepo(args[0])
			if err != nil {
				return err
			}
			if err := a.ensureClient(); err != nil {
				return err
			}
			labels, err := a.collector().Labels(cmd.Context(), repo.Owner, repo.Name)
			if err != nil {
				return fmt.Errorf("fetching labels of %s: %w", repo.FullName(), err)
			}
			return format.WriteJSON(cmd.OutOrStdout(), labels, a.Config.SlackMode)
		},
	}
}
