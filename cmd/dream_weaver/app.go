package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"dream_weaver/internal/ai"
	"dream_weaver/internal/config"
	"dream_weaver/internal/directory"
	"dream_weaver/internal/discovery"
	"dream_weaver/internal/follow"
	"dream_weaver/internal/locale"
	"dream_weaver/internal/location"
	"dream_weaver/internal/logging"
	"dream_weaver/internal/metrics"
	"dream_weaver/internal/storage"
)

// app is the wired object graph shared by every subcommand.
type app struct {
	cfg        *config.Config
	logger     *zap.Logger
	snapshots  storage.Snapshots
	metrics    *metrics.Collector
	journal    *storage.JournalStorage
	follows    *follow.Store
	bundle     *locale.Bundle
	assistant  *ai.Client
	provider   location.Provider
	sessions   *discovery.SessionManager
	discoverer *discovery.Discoverer
	keywords   *discovery.KeywordCache
}

func newApp(ctx context.Context) (*app, error) {
	op := "main.newApp"

	cfg, err := config.New()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.LogLevel, cfg.Environment)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	snaps, err := openSnapshots(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	collector := metrics.NewCollector("dream_weaver")

	journal := storage.NewJournalStorage(snaps, logger, storage.WithWriteFailureHook(collector.ObserveSnapshotFailure))
	journal.Load(ctx)

	follows := follow.NewStore(snaps, logger, follow.WithWriteFailureHook(collector.ObserveSnapshotFailure))
	follows.Load(ctx)

	bundle, err := locale.NewBundle(snaps, logger, cfg.DefaultLocale)
	if err != nil {
		_ = snaps.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	bundle.Load(ctx)

	assistant, err := ai.NewClient(ctx, cfg.GeminiAPIKey, logger,
		ai.WithInstructions(func() ai.Instructions {
			return ai.Instructions{
				Interpreter: bundle.T("systemInstruction_dreamInterpreter"),
				StorySpark:  bundle.T("systemInstruction_storySpark"),
				Visualizer:  bundle.T("systemInstruction_aiVisualizer"),
			}
		}),
		ai.WithObserver(collector.ObserveAI),
	)
	if err != nil {
		_ = snaps.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &app{
		cfg:        cfg,
		logger:     logger,
		snapshots:  snaps,
		metrics:    collector,
		journal:    journal,
		follows:    follows,
		bundle:     bundle,
		assistant:  assistant,
		provider:   newProvider(cfg, logger),
		sessions:   discovery.NewSessionManager(logger, discovery.WithLocationObserver(collector.ObserveLocation)),
		discoverer: discovery.NewDiscoverer(directory.All(), follows),
		keywords:   discovery.NewKeywordCache(),
	}, nil
}

func openSnapshots(ctx context.Context, cfg *config.Config) (storage.Snapshots, error) {
	switch cfg.StorageDriver {
	case config.DriverPostgres:
		return storage.OpenPostgres(ctx, cfg.PostgresDSN)
	default:
		path := cfg.SQLitePath
		if path == "" {
			var err error
			if path, err = storage.DefaultSQLitePath(); err != nil {
				return nil, err
			}
		}
		return storage.OpenSQLite(path)
	}
}

// newProvider prefers configured coordinates, then the IP lookup endpoint. With
// neither, location is unsupported.
func newProvider(cfg *config.Config, logger *zap.Logger) location.Provider {
	if cfg.LocationFixed != nil {
		return location.NewFixedProvider(cfg.LocationFixed.Latitude, cfg.LocationFixed.Longitude)
	}
	return location.NewHTTPProvider(cfg.LocationURL, logger)
}

func (a *app) currentKeywords() discovery.KeywordSet {
	return a.keywords.EntryKeywords(a.journal.List())
}

func (a *app) Close() {
	if err := a.snapshots.Close(); err != nil {
		a.logger.Warn("failed to close snapshot store", zap.Error(err))
	}
	_ = a.logger.Sync()
}
