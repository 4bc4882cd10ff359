package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/codec"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/config"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/domain"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/logger"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/project"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/service"
	"github.com/wikimedia/mediawiki-extensions-ReadingLists-sub001/internal/wiki"
)

func main() {
	// Logs go to stderr so stdout stays machine readable
	appLogger := logger.New(&logger.Config{
		Level:       "warn",
		Format:      "text",
		Output:      os.Stderr,
		ServiceName: "readinglists-tool",
	})
	logger.SetDefaultLogger(appLogger)

	encodePath := flag.String("encode", "", "JSON file with {name, description, list} to encode; - reads stdin")
	decodeToken := flag.String("decode", "", "Token to decode")
	renderToken := flag.String("render", "", "Token to decode and resolve into cards")
	group := flag.Bool("group", false, "Group rendered cards by project")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	resolver := project.NewResolver(project.SiteContext{
		Host:        cfg.Site.Host,
		ScriptPath:  cfg.Site.ScriptPath,
		ArticlePath: cfg.Site.ArticlePath,
		DevMode:     cfg.Site.DevMode,
	})
	tokenCodec := codec.New(resolver)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	switch {
	case *encodePath != "":
		token, err := encodeFile(tokenCodec, *encodePath)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to encode list")
		}
		fmt.Println(token)

	case *decodeToken != "":
		doc, err := tokenCodec.Decode(*decodeToken)
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to decode token")
		}
		printJSON(doc)

	case *renderToken != "":
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
		lists := service.NewListService(nil, aggregator, tokenCodec)

		shared, err := lists.RenderToken(ctx, *renderToken, service.AggregateOptions{GroupByProject: *group})
		if err != nil {
			appLogger.WithError(err).Fatal("Failed to render token")
		}
		printJSON(shared)

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func encodeFile(c *codec.Codec, path string) (string, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return "", err
		}
		defer f.Close()
		r = f
	}

	var doc domain.CollectionToken
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return "", fmt.Errorf("failed to read list: %w", err)
	}
	return c.Encode(doc.Name, doc.Description, doc.TitlesByProject)
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		logger.Error("Failed to marshal output: %v", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}
