// Package main wires together the sitemap service binary.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gcpubsub "cloud.google.com/go/pubsub"
	gcstorage "cloud.google.com/go/storage"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/studyvault/sitemapd/internal/api"
	"github.com/studyvault/sitemapd/internal/clock/system"
	"github.com/studyvault/sitemapd/internal/config"
	"github.com/studyvault/sitemapd/internal/events"
	eventsmemory "github.com/studyvault/sitemapd/internal/events/memory"
	eventspubsub "github.com/studyvault/sitemapd/internal/events/pubsub"
	"github.com/studyvault/sitemapd/internal/gsc"
	"github.com/studyvault/sitemapd/internal/logging"
	"github.com/studyvault/sitemapd/internal/metrics"
	"github.com/studyvault/sitemapd/internal/ping"
	"github.com/studyvault/sitemapd/internal/publish"
	"github.com/studyvault/sitemapd/internal/sitemap"
	"github.com/studyvault/sitemapd/internal/store"
	storememory "github.com/studyvault/sitemapd/internal/store/memory"
	storepostgres "github.com/studyvault/sitemapd/internal/store/postgres"
	"github.com/studyvault/sitemapd/internal/storage"
	storagegcs "github.com/studyvault/sitemapd/internal/storage/gcs"
	storagelocal "github.com/studyvault/sitemapd/internal/storage/local"
	storagememory "github.com/studyvault/sitemapd/internal/storage/memory"
)

func main() {
	cfgPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init failed: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if syncErr := logger.Sync(); syncErr != nil {
			fmt.Fprintf(os.Stderr, "logger sync failed: %v\n", syncErr)
		}
	}()
	zap.ReplaceGlobals(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Init()
	clock := system.New()

	papers, cleanup, err := newPaperStore(ctx, cfg)
	if err != nil {
		logger.Fatal("paper store init failed", zap.Error(err))
	}
	defer cleanup()

	blobs, err := newBlobStore(ctx, cfg)
	if err != nil {
		logger.Fatal("blob store init failed", zap.Error(err))
	}

	builder := sitemap.NewBuilder(
		cfg.Site.BaseURL,
		sitemap.DefaultStaticRoutes(),
		papers,
		cfg.Builder.PageSize,
		clock,
		logger.Named("builder"),
	)
	publisher := publish.New(blobs, logger.Named("publisher"))

	engines := make([]ping.Engine, 0, len(cfg.Ping.Engines))
	for _, e := range cfg.Ping.Engines {
		engines = append(engines, ping.Engine{Name: e.Name, Endpoint: e.Endpoint})
	}
	pinger := ping.New(
		engines,
		&http.Client{Timeout: time.Duration(cfg.Ping.TimeoutSeconds) * time.Second},
		logger.Named("ping"),
		ping.WithObserver(metrics.ObservePing),
	)

	var search api.SearchClient
	if cfg.Search.Enabled {
		limiter := rate.NewLimiter(rate.Every(cfg.Indexing.MinInterval()), 1)
		client := gsc.NewClient(
			gsc.FileCredentialSource{Path: cfg.Search.CredentialsFile},
			cfg.Search.Property,
			limiter,
			logger.Named("gsc"),
		)
		if err := client.Init(ctx); err != nil {
			// Keep serving sitemaps; search endpoints will report 503.
			logger.Warn("search client init failed", zap.Error(err))
		} else {
			search = client
		}
	}

	eventPub, closeEvents, err := newEventPublisher(ctx, cfg)
	if err != nil {
		logger.Fatal("event publisher init failed", zap.Error(err))
	}
	defer closeEvents()

	server := api.NewServer(builder, publisher, pinger, search, eventPub, clock, cfg, logger.Named("api"))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.Int("port", cfg.Server.Port))
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown failed", zap.Error(err))
	}
}

func newPaperStore(ctx context.Context, cfg config.Config) (store.PaperStore, func(), error) {
	if cfg.DB.DSN == "" {
		return storememory.NewPaperStore(), func() {}, nil
	}
	pg, err := storepostgres.NewPaperStore(ctx, storepostgres.Config{
		DSN:      cfg.DB.DSN,
		MaxConns: cfg.DB.MaxConns,
	})
	if err != nil {
		return nil, nil, err
	}
	return pg, pg.Close, nil
}

func newBlobStore(ctx context.Context, cfg config.Config) (storage.BlobStore, error) {
	switch cfg.Storage.Backend {
	case "local":
		return storagelocal.New(storagelocal.Config{BaseDir: cfg.Storage.BaseDir})
	case "gcs":
		client, err := gcstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("gcs client: %w", err)
		}
		return storagegcs.New(client, storagegcs.Config{Bucket: cfg.Storage.GCSBucket})
	case "memory":
		return storagememory.NewBlobStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

func newEventPublisher(ctx context.Context, cfg config.Config) (events.Publisher, func(), error) {
	if !cfg.PubSub.Enabled {
		return eventsmemory.New(), func() {}, nil
	}
	client, err := gcpubsub.NewClient(ctx, cfg.PubSub.ProjectID)
	if err != nil {
		return nil, nil, fmt.Errorf("pubsub client: %w", err)
	}
	topic := client.Topic(cfg.PubSub.TopicName)
	cleanup := func() {
		topic.Stop()
		if err := client.Close(); err != nil {
			zap.L().Warn("pubsub client close failed", zap.Error(err))
		}
	}
	return eventspubsub.New(topic), cleanup, nil
}
