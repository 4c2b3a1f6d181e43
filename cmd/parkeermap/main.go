package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robbertj85/parkeerplaatsen/internal/api"
	"github.com/robbertj85/parkeerplaatsen/internal/core/config"
	"github.com/robbertj85/parkeerplaatsen/internal/core/httpclient"
	"github.com/robbertj85/parkeerplaatsen/internal/core/observability"
	"github.com/robbertj85/parkeerplaatsen/internal/core/server"
	"github.com/robbertj85/parkeerplaatsen/internal/dataset"
	"github.com/robbertj85/parkeerplaatsen/internal/filter"
	"github.com/robbertj85/parkeerplaatsen/internal/layers"
	"github.com/robbertj85/parkeerplaatsen/internal/logger"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	// snapshot override via flag
	snapshotFlag := flag.String("snapshot", "", "snapshot path or URL")
	flag.Parse()

	cfg := config.FromEnv()
	if *snapshotFlag != "" {
		cfg.SnapshotSource = strings.TrimSpace(*snapshotFlag)
	}

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		Component: "parkeermap",
	}, os.Stdout)

	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting parkeermap",
		"addr", cfg.Addr,
		"version", Version,
		"snapshot", cfg.SnapshotSource,
		"layer_store", cfg.LayerStore)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client := httpclient.NewOutbound()

	// a failed first load is non-fatal: the service starts on an empty
	// collection and reports not-ready
	loadCtx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	data, err := dataset.Load(loadCtx, cfg.SnapshotSource, client)
	cancel()
	if err != nil {
		appLog.Error("snapshot load failed, serving empty collection", "err", err)
		data = dataset.Empty()
	}
	observability.SetFacilitiesLoaded(len(data.Facilities()))
	appLog.Info("snapshot loaded",
		"facilities", len(data.Facilities()),
		"version", data.Version())

	reg, err := layers.LoadRegistry(cfg.CityRegistryPath)
	if err != nil {
		appLog.Error("city registry load failed", "err", err)
		return 1
	}

	var store layers.Store
	if cfg.LayerStore == "redis" {
		store, err = layers.NewRedisStore(ctx, cfg.RedisAddr)
		if err != nil {
			appLog.Error("redis layer store unavailable, using memory", "err", err)
			store = layers.NewMemoryStore()
		}
	} else {
		store = layers.NewMemoryStore()
	}

	loader := layers.NewLoader(reg, store, client, zl, cfg.LayerFetchTimeout)
	memo := filter.NewMemo(cfg.MemoSize, cfg.MemoTTL)
	handler := api.New(appLog, data, memo, loader)

	if err := server.Run(ctx, cfg, appLog, zl, handler); err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
