package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dharmasatrya/holitrip/internal/assembler"
	"github.com/dharmasatrya/holitrip/internal/cache"
	"github.com/dharmasatrya/holitrip/internal/config"
	"github.com/dharmasatrya/holitrip/internal/geo"
	"github.com/dharmasatrya/holitrip/internal/handler"
	"github.com/dharmasatrya/holitrip/internal/providers"
	"github.com/dharmasatrya/holitrip/internal/ratelimit"
	"github.com/dharmasatrya/holitrip/internal/repo"
)

func main() {
	cfg, err := config.Load(".")
	if err != nil {
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	catalog, closeCatalog, err := newCatalog(ctx, cfg, logger)
	if err != nil {
		slog.Error("failed to initialize catalog", "driver", cfg.CatalogDriver, "error", err)
		os.Exit(1)
	}
	defer closeCatalog()
	slog.Info("catalog ready", "driver", catalog.Name())

	coordCache := newCoordinateCache(cfg)
	defer coordCache.Close()

	rateLimiter := ratelimit.NewKeyedLimiter(ratelimit.RateLimitConfig{
		RequestsPerSecond: cfg.GeocoderRPS,
		BurstSize:         cfg.GeocoderBurst,
	})

	geoConfig := geo.DefaultClientConfig()
	geoConfig.BaseURL = cfg.GeocoderURL
	geoConfig.APIKey = cfg.GeocodingAPIKey
	geoConfig.Timeout = cfg.GeocoderTimeout
	geoConfig.RateLimiter = rateLimiter
	geocoder, err := geo.NewClient(geoConfig, logger)
	if err != nil {
		slog.Error("failed to initialize geocoder", "error", err)
		os.Exit(1)
	}

	engine := assembler.New(assembler.Config{
		Transports: catalog,
		Lodgings:   catalog,
		Activities: catalog,
		Geocoder:   geocoder,
		Cache:      coordCache,
		Logger:     logger,
	})

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	searchHandler := handler.NewSearchHandler(engine, catalog.Name())

	api := e.Group("/api/v1")
	api.POST("/packages/search", searchHandler.Search)
	e.GET("/health", handler.HealthHandler)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("server starting", "port", cfg.Port)
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-stop
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
		os.Exit(1)
	}
	slog.Info("server stopped")
}

// newCatalog returns the configured catalog and a cleanup func.
func newCatalog(ctx context.Context, cfg config.Config, logger *slog.Logger) (providers.Catalog, func(), error) {
	if cfg.CatalogDriver != config.CatalogPostgres {
		catalog, err := providers.NewEmbeddedCatalog(logger)
		if err != nil {
			return nil, nil, err
		}
		return catalog, func() {}, nil
	}

	if err := repo.Migrate(ctx, cfg.DatabaseURL, logger); err != nil {
		return nil, nil, err
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	slog.Info("database connection established")

	return repo.NewPgCatalog(pool, logger), pool.Close, nil
}

func newCoordinateCache(cfg config.Config) cache.Cache {
	memory := cache.NewMemoryCache()
	if !cfg.CacheEnabled {
		slog.Info("redis cache disabled, coordinates memoized in memory")
		return memory
	}

	redisCache, err := cache.NewRedisCache(cache.RedisConfig{
		Host: cfg.RedisHost,
		Port: cfg.RedisPort,
		TTL:  cfg.RedisTTL,
	})
	if err != nil {
		slog.Warn("redis unavailable, falling back to memory cache", "error", err)
		return memory
	}
	slog.Info("redis cache enabled", "host", cfg.RedisHost, "port", cfg.RedisPort, "ttl", cfg.RedisTTL)
	return cache.NewTiered(memory, redisCache)
}
