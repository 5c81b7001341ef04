package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/timmy/tagglr/internal/config"
	"github.com/timmy/tagglr/internal/logger"
	"github.com/timmy/tagglr/internal/service"
	"github.com/timmy/tagglr/internal/tumblr"
)

func main() {
	// Initialize logger first (with env defaults)
	appLogger := logger.NewDefault()
	defer logger.Sync()

	// Parse command line flags
	dryRun := flag.Bool("dry-run", true, "Classify posts but do not write tags back")
	force := flag.Bool("force", false, "Re-process posts that already carry the indicator tag")
	postURL := flag.String("post", "", "Tag a single post by URL instead of walking the listing")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	// Tag every log line of this invocation with a run ID
	appLogger = appLogger.WithField(logger.FieldRunID, uuid.New().String())
	logger.SetDefaultLogger(appLogger)

	appLogger.WithFields(logger.Fields{
		"dry_run": *dryRun,
		"force":   *force,
		"post":    *postURL,
		"quota":   cfg.Run.Quota,
		"blog":    cfg.Tumblr.Blog,
	}).Info("Starting tagging run")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = appLogger.WithContext(ctx)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	// Initialize the blog API client
	posts := tumblr.New(&tumblr.Config{
		Blog:        cfg.Tumblr.Blog,
		APIBase:     cfg.Tumblr.APIBase,
		APIKey:      cfg.Tumblr.APIKey,
		AccessToken: cfg.Tumblr.AccessToken,
		PageDelay:   cfg.Tumblr.PageDelay,
	}, appLogger)

	// Initialize services
	vision := service.NewVisionService(&service.VisionConfig{
		Model:   cfg.LLM.VisionModel,
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
	}, appLogger)

	tags := service.NewTagService(&service.TagConfig{
		Model:   cfg.LLM.TagModel,
		APIKey:  cfg.LLM.APIKey,
		BaseURL: cfg.LLM.BaseURL,
	}, appLogger)

	verifier := service.NewModelVerifier(&service.VerifierConfig{
		BaseURL: cfg.LLM.BaseURL,
		APIKey:  cfg.LLM.APIKey,
		Models:  []string{cfg.LLM.VisionModel, cfg.LLM.TagModel},
	}, appLogger)

	runner := service.NewRunService(
		verifier,
		posts,
		service.NewFlattener(vision),
		tags,
		appLogger,
		&service.RunOptions{
			DryRun:    *dryRun,
			Force:     *force,
			PostURL:   *postURL,
			Quota:     cfg.Run.Quota,
			PostDelay: cfg.Run.PostDelay,
		},
	)

	// Fatal exits with code 1; model verification failures land here.
	stats, err := runner.Run(ctx)
	if err != nil {
		appLogger.WithError(err).Fatal("Run failed")
	}

	appLogger.WithFields(logger.Fields{
		"total":   stats.TotalPosts,
		"tagged":  stats.TaggedPosts,
		"planned": stats.PlannedPosts,
		"skipped": stats.SkippedPosts,
		"failed":  stats.FailedPosts,
	}).Info("Tagging run finished")
}
