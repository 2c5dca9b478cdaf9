package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/montroyal/quote-service/config"
	"github.com/montroyal/quote-service/internal/handlers"
	"github.com/montroyal/quote-service/internal/middleware"
	"github.com/montroyal/quote-service/internal/pricing"
	"github.com/montroyal/quote-service/internal/session"
	"github.com/montroyal/quote-service/internal/storage"
	"github.com/montroyal/quote-service/internal/telemetry"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger := initLogger(cfg.Logging)

	logger.Info().Msg("Starting quote service")

	ctx := context.Background()

	cleanup, err := telemetry.Init(ctx, telemetry.GetConfigFromEnv())
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize telemetry")
	}
	defer cleanup(ctx)

	engine, err := buildEngine(cfg.Pricing)
	if err != nil {
		logger.Fatal().Err(err).Msg("Invalid pricing configuration")
	}

	archive, err := storage.NewLocalStorage(cfg.Storage.BasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize proposal archive")
	}

	sessions := session.NewManager()
	sweeper := session.NewSweeper(sessions, logger, cfg.Session.SweepInterval, cfg.Session.MaxIdle)
	go sweeper.Start(ctx)

	handlers.Init(handlers.Deps{
		Sessions: sessions,
		Engine:   engine,
		Archive:  archive,
		Metrics:  telemetry.NewMetricsRecorder(),
		Logger:   logger,
	})

	if cfg.Logging.Level == "info" || cfg.Logging.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	setupMiddleware(router, logger)

	router.GET("/health", handlers.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	internal := router.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(cfg.Auth.APIKey))
	internal.Use(middleware.ServiceRateLimitMiddleware(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.BurstSize))
	{
		internal.GET("/health", handlers.HealthCheck)

		catalog := internal.Group("/catalog")
		{
			catalog.POST("", handlers.LoadCatalog)
			catalog.GET("/articles", handlers.SearchArticles)
			catalog.GET("/stats", handlers.CatalogStats)
		}

		cart := internal.Group("/cart")
		{
			cart.GET("", handlers.ListCart)
			cart.DELETE("", handlers.ClearCart)
			cart.POST("/items", handlers.AddToCart)
			cart.PATCH("/items/:businessKey", handlers.UpdateCartItem)
			cart.DELETE("/items/:businessKey", handlers.RemoveCartItem)
			cart.POST("/recalculate", handlers.RecalculateCart)
		}

		quote := internal.Group("/quote")
		{
			quote.GET("", handlers.ListQuotes)
			quote.POST("/export", handlers.ExportQuote)
			quote.GET("/download", handlers.DownloadQuote)
		}
	}

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info().Str("addr", addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server...")
	sweeper.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited")
}

func buildEngine(cfg config.PricingConfig) (pricing.Engine, error) {
	discountBasis, err := pricing.ParseBasis(cfg.DiscountBasis)
	if err != nil {
		return pricing.Engine{}, fmt.Errorf("discount_basis: %w", err)
	}
	grossMarginBasis, err := pricing.ParseBasis(cfg.GrossMarginBasis)
	if err != nil {
		return pricing.Engine{}, fmt.Errorf("gross_margin_basis: %w", err)
	}
	return pricing.NewEngine(discountBasis, grossMarginBasis), nil
}

func initLogger(cfg config.LoggingConfig) *zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var output io.Writer
	if cfg.Format == "json" {
		output = os.Stdout
	} else {
		output = zerolog.ConsoleWriter{Out: os.Stdout, NoColor: cfg.NoColor}
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("service", "quote-service").Logger()
	return &logger
}

func setupMiddleware(router *gin.Engine, logger *zerolog.Logger) {
	router.Use(func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		end := time.Now()
		latency := end.Sub(start)

		logger.Info().
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", query).
			Int("status", c.Writer.Status()).
			Dur("latency", latency).
			Str("ip", c.ClientIP()).
			Msg("HTTP request")
	})
}
