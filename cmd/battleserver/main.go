// Package main provides the battle server binary: the turn engine, computer
// opponent, and persistence behind an HTTP API.
package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cory-johannsen/cardbattle/internal/api"
	"github.com/cory-johannsen/cardbattle/internal/config"
	"github.com/cory-johannsen/cardbattle/internal/game/ai"
	"github.com/cory-johannsen/cardbattle/internal/game/battle"
	"github.com/cory-johannsen/cardbattle/internal/game/catalog"
	"github.com/cory-johannsen/cardbattle/internal/game/dice"
	"github.com/cory-johannsen/cardbattle/internal/game/result"
	"github.com/cory-johannsen/cardbattle/internal/gameserver"
	"github.com/cory-johannsen/cardbattle/internal/observability"
	"github.com/cory-johannsen/cardbattle/internal/server"
	"github.com/cory-johannsen/cardbattle/internal/storage"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	contentDir := flag.String("content", "", "class YAML directory; overrides battle.content_dir")
	flag.Parse()

	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if *contentDir != "" {
		cfg.Battle.ContentDir = *contentDir
	}

	logger, err := observability.NewLogger(cfg.Logging, "battleserver")
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	cat, err := loadCatalog(cfg.Battle.ContentDir)
	if err != nil {
		logger.Fatal("loading class catalog", zap.Error(err))
	}
	logger.Info("class catalog loaded",
		zap.Int("classes", len(cat.Classes())),
		zap.String("content_dir", cfg.Battle.ContentDir),
	)

	be, err := openBackend(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("opening storage backend", zap.Error(err))
	}

	roller := dice.NewLoggedRoller(dice.NewCryptoSource(), logger)
	engine := battle.NewEngine(cat, roller, logger)
	store := storage.NewBattleStore(be.kv, cat, logger)
	sink := result.MultiSink{result.NewLogSink(logger)}
	if be.results != nil {
		sink = append(sink, be.results)
	}
	rewards := result.Rewards{Min: cfg.Battle.RewardMin, Max: cfg.Battle.RewardMax}
	reporter := result.NewReporter(sink, store, roller, rewards, logger)
	opponent := ai.NewOpponent(engine, dice.NewCryptoSource(), logger)
	scheduler := gameserver.NewTurnScheduler(cfg.Battle.PacingDelay)
	handler := gameserver.NewBattleHandler(engine, store, reporter, opponent, scheduler, logger)

	if cfg.Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewHandler(handler, cat, be.health, logger).Router()
	httpSrv := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	lc := server.NewLifecycle(logger)
	lc.Add("storage", server.OnStop(be.close))
	lc.Add("turn-scheduler", server.OnStop(handler.Stop))
	lc.Add("http", server.NewHTTPService(httpSrv, cfg.HTTP.ShutdownTimeout, logger))

	logger.Info("battle server initialized",
		zap.String("addr", cfg.HTTP.Addr()),
		zap.String("storage", cfg.Storage.Driver),
		zap.Duration("pacing_delay", cfg.Battle.PacingDelay),
		zap.Duration("startup", time.Since(start)),
	)

	if err := lc.Run(ctx); err != nil {
		logger.Fatal("battle server exited", zap.Error(err))
	}
}

func loadCatalog(dir string) (*catalog.Catalog, error) {
	if dir == "" {
		return catalog.Default(), nil
	}
	return catalog.LoadDir(dir)
}
