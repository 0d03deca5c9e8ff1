package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	awslambda "github.com/aws/aws-lambda-go/lambda"

	"github.com/stahnma/gh-repometa/internal/commands"
	"github.com/stahnma/gh-repometa/internal/config"
	lambdapkg "github.com/stahnma/gh-repometa/internal/lambda"
	"github.com/stahnma/gh-repometa/internal/logger"
)

var (
	GitSHA   string
	GitDirty string
)

func main() {
	cfg := config.FromEnvironment()
	onLambda := os.Getenv("LAMBDA_TASK_ROOT") != ""

	log := logger.New(logger.Options{
		Level: cfg.LogLevel,
		Debug: cfg.DebugMode,
		JSON:  onLambda,
	})

	app, err := commands.NewApp(cfg, log, GitSHA, GitDirty)
	if err != nil {
		log.Fatalf("Error initializing application: %v", err)
	}

	if onLambda {
		awslambda.Start(lambdapkg.NewHandler(app))
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := app.NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
	if err := app.SaveCache(); err != nil {
		log.Fatalf("Error saving cache: %v", err)
	}
}
