package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sportsbot/internal/attribution"
	"sportsbot/internal/client/espn"
	"sportsbot/internal/client/kalshi"
	"sportsbot/internal/config"
	cronrunner "sportsbot/internal/cron"
	"sportsbot/internal/db"
	"sportsbot/internal/handler"
	"sportsbot/internal/logger"
	"sportsbot/internal/metrics"
	"sportsbot/internal/models"
	gormrepository "sportsbot/internal/repository/gorm"
	"sportsbot/internal/scd"
	"sportsbot/internal/service"
	"sportsbot/internal/strategy"
)

func main() {
	cfgPath := os.Getenv("SB_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("SB_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	retry := scd.RetryPolicy{
		MaxRetries: cfg.Store.MaxRetries,
		Backoff:    cfg.Store.Backoff,
		MaxBackoff: cfg.Store.MaxBackoff,
	}
	gameStore := scd.NewStore[models.GameState](dbConn.Gorm, logger, "game_state", retry)
	marketStore := scd.NewStore[models.Market](dbConn.Gorm, logger, "market", retry)
	edgeStore := scd.NewStore[models.Edge](dbConn.Gorm, logger, "edge", retry)
	positionStore := scd.NewStore[models.Position](dbConn.Gorm, logger, "position", retry)

	store := gormrepository.New(dbConn.Gorm)
	manager := &strategy.Manager{Repo: store, Logger: logger}
	recorder := &attribution.Recorder{Repo: store, Positions: positionStore, Logger: logger}

	espnHTTP := &http.Client{Timeout: cfg.ESPN.Timeout}
	espnClient := espn.NewClient(espnHTTP, cfg.ESPN.BaseURL)
	kalshiHTTP := &http.Client{Timeout: cfg.Kalshi.Timeout}
	kalshiClient := kalshi.NewClient(kalshiHTTP, cfg.Kalshi.BaseURL)

	leagues := make([]service.League, 0, len(cfg.ESPN.Leagues))
	for _, l := range cfg.ESPN.Leagues {
		leagues = append(leagues, service.League{Sport: l.Sport, League: l.League})
	}
	gameSync := &service.GameSyncService{
		ESPN:    espnClient,
		Games:   gameStore,
		Repo:    store,
		Logger:  logger,
		Leagues: leagues,
	}
	marketSync := &service.MarketSyncService{
		Kalshi:     kalshiClient,
		Markets:    marketStore,
		Repo:       store,
		Logger:     logger,
		Series:     cfg.Kalshi.Series,
		PageLimit:  cfg.Kalshi.PageLimit,
		ResolveKey: service.StaticResolver(cfg.Kalshi.EventGames),
	}
	model := attribution.NewScoreDiffModel()
	if cfg.Model.ID != "" {
		model.ModelID = cfg.Model.ID
	}
	if cfg.Model.Version != "" {
		model.ModelVersion = cfg.Model.Version
	}
	positionMark := &service.PositionMarkService{
		Positions: positionStore,
		Markets:   marketStore,
		Logger:    logger,
	}
	edgeScan := &service.EdgeScanService{
		Games:     gameStore,
		Markets:   marketStore,
		Edges:     edgeStore,
		Model:     model,
		Logger:    logger,
		ScanLimit: cfg.Store.ScanLimit,
	}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	gameHandler := &handler.GameHandler{Games: gameStore}
	gameHandler.Register(engine)
	marketHandler := &handler.MarketHandler{Markets: marketStore, Edges: edgeStore}
	marketHandler.Register(engine)
	strategyHandler := &handler.StrategyHandler{Manager: manager}
	strategyHandler.Register(engine)
	tradeHandler := &handler.TradeHandler{Recorder: recorder, Repo: store}
	tradeHandler.Register(engine)
	positionHandler := &handler.PositionHandler{Recorder: recorder, Positions: positionStore}
	positionHandler.Register(engine)
	anomalyHandler := &handler.AnomalyHandler{Repo: store}
	anomalyHandler.Register(engine)
	engine.GET("/metrics", gin.WrapH(metrics.Handler()))

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		_, err = cronRunner.Add("game_sync", cfg.Cron.GameSync, func(ctx context.Context) {
			result, err := gameSync.PollOnce(ctx)
			if err != nil {
				logger.Warn("game sync failed", zap.Error(err))
				return
			}
			logger.Info("game sync ok",
				zap.Int("games", result.Games),
				zap.Int("versions", result.Versions),
				zap.Int("noops", result.Noops),
				zap.Int("rejected", result.Rejected),
			)
		})
		if err != nil {
			logger.Warn("cron register game sync failed", zap.Error(err))
		}

		_, err = cronRunner.Add("market_sync", cfg.Cron.MarketSync, func(ctx context.Context) {
			result, err := marketSync.PollOnce(ctx)
			if err != nil {
				logger.Warn("market sync failed", zap.Error(err))
				return
			}
			logger.Info("market sync ok",
				zap.Int("markets", result.Markets),
				zap.Int("versions", result.Versions),
				zap.Int("noops", result.Noops),
				zap.Int("rejected", result.Rejected),
			)
		})
		if err != nil {
			logger.Warn("cron register market sync failed", zap.Error(err))
		}

		_, err = cronRunner.Add("edge_scan", cfg.Cron.EdgeScan, func(ctx context.Context) {
			result, err := edgeScan.ScanOnce(ctx)
			if err != nil {
				logger.Warn("edge scan failed", zap.Error(err))
				return
			}
			logger.Info("edge scan ok",
				zap.Int("scanned", result.Scanned),
				zap.Int("versions", result.Versions),
				zap.Int("noops", result.Noops),
				zap.Int("skipped", result.Skipped),
			)
		})
		if err != nil {
			logger.Warn("cron register edge scan failed", zap.Error(err))
		}

		_, err = cronRunner.Add("position_mark", cfg.Cron.PositionMark, func(ctx context.Context) {
			result, err := positionMark.RefreshOnce(ctx)
			if err != nil {
				logger.Warn("position mark failed", zap.Error(err))
				return
			}
			if result.Open > 0 {
				logger.Info("position mark ok",
					zap.Int("open", result.Open),
					zap.Int("versions", result.Versions),
					zap.Int("noops", result.Noops),
					zap.Int("skipped", result.Skipped),
				)
			}
		})
		if err != nil {
			logger.Warn("cron register position mark failed", zap.Error(err))
		}

		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
