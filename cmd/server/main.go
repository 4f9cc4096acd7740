// Package main runs the live auction backend: REST control API, WebSocket
// fan-out for overlays and the countdown scheduler, with graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/streamcraft/auction-backend/config"
	"github.com/streamcraft/auction-backend/internal/auctions"
	"github.com/streamcraft/auction-backend/internal/livesource"
	"github.com/streamcraft/auction-backend/internal/middleware"
	"github.com/streamcraft/auction-backend/internal/realtime"
	"github.com/streamcraft/auction-backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	var source livesource.Source = livesource.Nop{}
	if cfg.LiveSource.Simulator {
		source = livesource.NewSimulator(cfg.LiveSource.GiftInterval, logger)
		logger.Info("gift simulator enabled", zap.Duration("interval", cfg.LiveSource.GiftInterval))
	}

	hub := realtime.NewHub(logger)
	registry := auctions.NewRegistry()
	engine := auctions.NewService(registry, hub, source, cfg.Server.BaseURL, cfg.Engine.TopDonorsLimit, logger)
	scheduler := auctions.NewScheduler(engine, cfg.Engine.TickInterval, logger)
	handler := auctions.NewHandler(engine)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	api := router.Group("/api/auctions")
	{
		api.POST("", handler.Create)
		api.GET("", handler.List)
		api.GET("/:id", handler.Get)
		api.PUT("/:id", handler.Update)
		api.DELETE("/:id", handler.Delete)
		api.POST("/:id/start", handler.Start)
		api.POST("/:id/pause", handler.Pause)
		api.POST("/:id/resume", handler.Resume)
		api.POST("/:id/stop", handler.Stop)
		api.PATCH("/:id/time", handler.AdjustTime)
		api.GET("/:id/donors/top", handler.TopDonors)
	}

	router.GET("/ws/auctions/:id", realtime.ServeWs(hub, engine.InitialData, logger))

	scheduler.Start()

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	scheduler.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
