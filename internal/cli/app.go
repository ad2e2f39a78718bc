package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pulsegraph/pulsegraph/internal/cache"
	"github.com/pulsegraph/pulsegraph/internal/discover"
	"github.com/pulsegraph/pulsegraph/internal/extract"
	"github.com/pulsegraph/pulsegraph/internal/freshness"
	"github.com/pulsegraph/pulsegraph/internal/graph"
	"github.com/pulsegraph/pulsegraph/internal/ingest"
	"github.com/pulsegraph/pulsegraph/internal/logger"
	"github.com/pulsegraph/pulsegraph/internal/model"
	"github.com/pulsegraph/pulsegraph/internal/refresh"
)

// app is the wired process: config, logger, store, and the refresh
// pipeline. Commands build it once and run against it.
type app struct {
	cfg          *model.Config
	log          *logger.Logger
	store        graph.Store
	orchestrator *refresh.Orchestrator
	evaluator    *freshness.Evaluator

	client *graph.Client // nil in offline mode
}

// buildApp wires everything. The returned cleanup closes the Neo4j driver
// and flushes logs; call it on every exit path.
func buildApp(ctx context.Context) (*app, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	mode := cfg.Server.Mode
	if verbose {
		mode = "dev"
	}
	log, err := logger.New(mode)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}

	var store graph.Store
	var client *graph.Client
	if offline {
		log.Info("offline mode: using in-memory store")
		store = graph.NewMemStore()
	} else {
		client, err = graph.NewClient(ctx, cfg.Graph, log)
		if err != nil {
			log.Sync()
			return nil, nil, err
		}
		if err := client.EnsureSchema(ctx); err != nil {
			_ = client.Close(ctx)
			log.Sync()
			return nil, nil, err
		}
		store = graph.NewNeo4jStore(client)
	}

	cleanup := func() {
		if client != nil {
			_ = client.Close(context.Background())
		}
		log.Sync()
	}

	var fetchCache cache.Cache
	if cfg.Cache.Enabled {
		dir := cfg.Cache.Dir
		if dir == "" {
			if home, err := os.UserHomeDir(); err == nil {
				dir = filepath.Join(home, ".pulsegraph", "cache")
			}
		}
		fetchCache = cache.NewLayeredCache(cfg.Cache.MemoryTTL, dir, cfg.Cache.DiskTTL)
	}

	discoverer, err := discover.New(cfg.Discovery, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	fetcher, err := ingest.New(cfg.Fetch, fetchCache, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	extractor, err := extract.NewOpenAIExtractor(cfg.Extract, log)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	orchestrator := refresh.New(
		store,
		discoverer,
		fetcher,
		extractor,
		discover.NewClassifier(cfg.Categories),
		cfg.Refresh,
		log,
	)

	return &app{
		cfg:          cfg,
		log:          log,
		store:        store,
		orchestrator: orchestrator,
		evaluator:    freshness.NewEvaluator(cfg.Freshness),
		client:       client,
	}, cleanup, nil
}
