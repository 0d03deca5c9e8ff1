package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/stahnma/gh-repometa/internal/cache"
	"github.com/stahnma/gh-repometa/internal/config"
	ghub "github.com/stahnma/gh-repometa/internal/github"
	"github.com/stahnma/gh-repometa/internal/graphql"
	"github.com/stahnma/gh-repometa/internal/paginate"
	"github.com/stahnma/gh-repometa/internal/sink"
)

// App holds shared application state.
type App struct {
	Config   config.Config
	Cache    *cache.Cache
	GHClient ghub.Client
	GraphQL  graphql.Client
	Log      logrus.FieldLogger
	GitSHA   string
	GitDirty string

	// NewSink builds the configured sink. Tests replace it.
	NewSink func(ctx context.Context, cfg config.Config, stdout io.Writer) (sink.Sink, error)
	// Sleep paces pagination. nil means a real, cancellable wait.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewApp creates a new App from the given configuration.
func NewApp(cfg config.Config, log logrus.FieldLogger, gitSHA, gitDirty string) (*App, error) {
	c, err := cache.LoadFromFile(cfg.CacheFile, log)
	if err != nil {
		return nil, fmt.Errorf("loading cache: %w", err)
	}

	return &App{
		Config:   cfg,
		Cache:    c,
		Log:      log,
		GitSHA:   gitSHA,
		GitDirty: gitDirty,
		NewSink:  sink.New,
	}, nil
}

// ensureClient creates the GraphQL client, and the REST client alongside it,
// if they don't exist.
func (a *App) ensureClient() error {
	if a.GraphQL != nil {
		return nil
	}
	if a.Config.GitHubToken == "" {
		return fmt.Errorf("GITHUB_TOKEN must be set")
	}
	a.GraphQL = graphql.NewClient(a.Config.GraphQLURL, a.Config.GitHubToken, a.Config.RequestTimeout, a.logger())
	return a.ensureRESTClient()
}

// ensureRESTClient creates the go-github client if it doesn't exist.
func (a *App) ensureRESTClient() error {
	if a.GHClient != nil {
		return nil
	}
	if a.Config.GitHubToken == "" {
		return fmt.Errorf("GITHUB_TOKEN must be set")
	}
	rest, err := ghub.NewClient(a.Config.GitHubToken, a.Config.EnterpriseURL)
	if err != nil {
		return err
	}
	a.GHClient = rest
	return nil
}

// collector returns a Collector honouring the current configuration and flags.
func (a *App) collector() *ghub.Collector {
	pager := paginate.New(a.Config.PageDelay, a.logger())
	if a.Sleep != nil {
		pager.Sleep = a.Sleep
	}
	return ghub.NewCollector(a.GraphQL, a.Cache, pager, ghub.CollectOptions{
		PageSize:            a.Config.PageSize,
		LabelPageSize:       a.Config.LabelPageSize,
		LabelsPageSize:      a.Config.LabelsPageSize,
		WideningConcurrency: a.Config.WideningConcurrency,
		IncludePrivate:      a.Config.IncludePrivate,
		SkipInvalid:         a.Config.SkipInvalid,
		NoCache:             a.Config.NoCache,
	}, a.logger())
}

func (a *App) logger() logrus.FieldLogger {
	if a.Log == nil {
		return logrus.StandardLogger()
	}
	return a.Log
}

// SaveCache saves the cache to disk if caching is enabled.
func (a *App) SaveCache() error {
	if !a.Config.NoCache {
		return a.Cache.SaveToFile(a.Config.CacheFile)
	}
	return nil
}

// NewRootCommand creates the root cobra command with all subcommands.
func (a *App) NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   os.Args[0],
		Short: "Collect and normalize metadata about the repositories of a GitHub organization.",
	}
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	rootCmd.PersistentFlags().BoolVar(&a.Config.NoCache, "no-cache", a.Config.NoCache, "Disable caching")

	rootCmd.AddCommand(a.newReposCommand())
	rootCmd.AddCommand(a.newRepoCommand())
	rootCmd.AddCommand(a.newLabelsCommand())
	rootCmd.AddCommand(a.newRateLimitCommand())
	rootCmd.AddCommand(a.newVersionCommand())
	rootCmd.AddCommand(a.newClearCacheCommand())

	return rootCmd
}
