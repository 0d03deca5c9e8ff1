package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

func (a *App) newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show the build revision",
		RunE: func(cmd *cobra.Command, args []string) error {
			sha := a.GitSHA
			if sha == "" {
				sha = "unknown"
			}
			if a.GitDirty != "" {
				sha += "-dirty"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "gh-repometa %s (%s, %s/%s)\n", sha, runtime.Version(), runtime.GOOS, runtime.GOARCH)
			return nil
		},
	}
}
