package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"artshop/internal/catalog"
	"artshop/internal/metrics"
	"artshop/internal/session"
	synchub "artshop/internal/sync"
	"artshop/internal/thumbs"
	"artshop/internal/topics"
	"artshop/pkg/database"
	"artshop/pkg/logging"
	"artshop/pkg/utils"
)

func main() {
	// .env is a development convenience; production sets the environment directly
	if os.Getenv("ARTSHOP_ENV") != "production" {
		_ = godotenv.Load()
	}

	cfg := utils.LoadServerConfig()
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger init failed: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if os.Getenv("ARTSHOP_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	tree, err := topics.LoadOrDefault(cfg.TopicsFile)
	if err != nil {
		logger.Fatal("topic tree invalid", zap.String("file", cfg.TopicsFile), zap.Error(err))
	}

	resolver := catalog.NewResolver(cfg.AssetsRoot, cfg.DB, tree.GalleryKeys(), logger)
	hub := synchub.NewHub()

	sessions := session.NewManager(resolver, hub, cfg.SessionIdle, logger)
	sessions.OnEnd = hub.DropSession

	router := gin.New()
	router.Use(gin.Recovery(), logging.GinLogger(logger), metrics.Middleware())
	_ = router.SetTrustedProxies([]string{"127.0.0.1"})

	router.Static("/static", cfg.AssetsRoot)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// never fails hard: without a store the catalog serves defaults
	router.GET("/ready", func(c *gin.Context) {
		stats := hub.Stats()
		store := "ok"
		if db, err := database.OpenReadOnly(cfg.DB); err != nil {
			store = err.Error()
			if errors.Is(err, database.ErrNotExist) {
				store = "missing"
			}
		} else {
			_ = db.Close()
		}

		status := "ready"
		if store != "ok" {
			status = "degraded"
		}
		c.JSON(http.StatusOK, gin.H{
			"status":      status,
			"store":       store,
			"sessions":    sessions.Len(),
			"tcp_clients": stats.TCPClients,
			"ws_clients":  stats.WSClients,
		})
	})

	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	catalog.NewHandler(resolver).RegisterRoutes(router.Group("/catalog"))
	thumbs.NewHandler(thumbs.New(cfg.AssetsRoot, cfg.ThumbCache, logger)).RegisterRoutes(router.Group("/thumbs"))

	sessGroup := router.Group("/sessions")
	session.NewHandler(sessions, tree, logger).RegisterRoutes(sessGroup)
	sessGroup.GET("/:id/ws", synchub.WSHandler(hub, sessions.Lookup, logger))

	httpSrv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	var tcpSrv *synchub.Server
	if cfg.TCPAddr != "" {
		tcpSrv = synchub.NewServer(cfg.TCPAddr, hub, logger)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	errCh := make(chan error, 2)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		sessions.RunSweeper(ctx, time.Minute)
	}()

	if tcpSrv != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := tcpSrv.Run(); err != nil {
				errCh <- err
			}
		}()
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("http server listening",
			zap.String("addr", cfg.Addr),
			zap.String("assets", cfg.AssetsRoot),
			zap.String("db", cfg.DB.Path),
		)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("shutdown signal received", zap.Stringer("signal", sig))
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	logger.Info("shutting down servers")
	stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http shutdown error", zap.Error(err))
	}
	if tcpSrv != nil {
		if err := tcpSrv.Close(); err != nil {
			logger.Warn("tcp shutdown error", zap.Error(err))
		}
	}

	wg.Wait()
	logger.Info("servers stopped")
}
