package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/api"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/codec"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/config"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/logger"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/project"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/repository"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/service"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/wiki"
)

func main() {
	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	// CONFIG_PATH selects the config file in production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	site := project.SiteContext{
		Host:        cfg.Site.Host,
		ScriptPath:  cfg.Site.ScriptPath,
		ArticlePath: cfg.Site.ArticlePath,
		DevMode:     cfg.Site.DevMode,
	}
	resolver := project.NewResolver(site)

	wikiClient := wiki.NewClient(&wiki.ClientConfig{
		UserAgent:     cfg.Wiki.UserAgent,
		ThumbnailSize: cfg.Wiki.ThumbnailSize,
		Timeout:       cfg.Wiki.Timeout,
	})

	aggregator := service.NewAggregator(
		service.NewBatchFetcher(wikiClient, resolver),
		service.NewCardEnricher(resolver),
		resolver,
	)
	listService := service.NewListService(
		repository.NewListRepository(db),
		aggregator,
		codec.New(resolver),
	)

	router := api.SetupRouter(aggregator, listService, site, &cfg.Server, appLogger)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port":     cfg.Server.Port,
			"mode":     cfg.Server.Mode,
			"site":     site.Host,
			"dev_mode": site.DevMode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
