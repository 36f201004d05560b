package main

import (
	"context"
	"flag"
	"fmt"
	"html/template"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	analyticsapp "github.com/wyfcoding/alphaview/internal/analytics/application"
	analyticshttp "github.com/wyfcoding/alphaview/internal/analytics/interfaces/http"
	authapp "github.com/wyfcoding/alphaview/internal/auth/application"
	"github.com/wyfcoding/alphaview/internal/auth/infrastructure/cognito"
	authredis "github.com/wyfcoding/alphaview/internal/auth/infrastructure/persistence/redis"
	authhttp "github.com/wyfcoding/alphaview/internal/auth/interfaces/http"
	marketapp "github.com/wyfcoding/alphaview/internal/marketdata/application"
	marketmysql "github.com/wyfcoding/alphaview/internal/marketdata/infrastructure/persistence/mysql"
	markethttp "github.com/wyfcoding/alphaview/internal/marketdata/interfaces/http"
	portfolioapp "github.com/wyfcoding/alphaview/internal/portfolio/application"
	"github.com/wyfcoding/alphaview/internal/portfolio/domain"
	"github.com/wyfcoding/alphaview/internal/portfolio/infrastructure/messaging"
	portfoliomysql "github.com/wyfcoding/alphaview/internal/portfolio/infrastructure/persistence/mysql"
	portfoliohttp "github.com/wyfcoding/alphaview/internal/portfolio/interfaces/http"
	"github.com/wyfcoding/alphaview/pkg/cache"
	"github.com/wyfcoding/alphaview/pkg/config"
	"github.com/wyfcoding/alphaview/pkg/db"
	"github.com/wyfcoding/alphaview/pkg/logger"
	"github.com/wyfcoding/alphaview/pkg/metrics"
	"github.com/wyfcoding/alphaview/pkg/middleware"
	"github.com/wyfcoding/alphaview/pkg/secrets"
	"github.com/wyfcoding/alphaview/web"
)

var configPath = flag.String("config", "configs/config.toml", "config file path")

func main() {
	flag.Parse()
	ctx := context.Background()

	// 1. Config
	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 2. Logger
	if err := logger.Init(logger.Config{
		Level:      cfg.Logger.Level,
		Format:     cfg.Logger.Format,
		Output:     cfg.Logger.Output,
		FilePath:   cfg.Logger.FilePath,
		MaxSize:    cfg.Logger.MaxSize,
		MaxBackups: cfg.Logger.MaxBackups,
		MaxAge:     cfg.Logger.MaxAge,
		Compress:   cfg.Logger.Compress,
		WithCaller: cfg.Logger.WithCaller,
	}); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 3. Metrics
	m := metrics.New(cfg.ServiceName)
	if err := m.Register(); err != nil {
		logger.Fatal(ctx, "Failed to register metrics", "error", err)
	}
	if cfg.Metrics.Enabled {
		m.Serve(cfg.Metrics.Port, cfg.Metrics.Path)
	}

	// 4. Database credentials (secrets store or config DSN)
	dsn := cfg.Database.DSN
	if cfg.Secrets.Enabled {
		creds, err := secrets.NewClient(secrets.Config{
			Addr:    cfg.Secrets.Addr,
			Token:   cfg.Secrets.Token,
			Path:    cfg.Secrets.Path,
			Timeout: cfg.Secrets.Timeout,
		}).FetchDatabaseCredentials(ctx)
		if err != nil {
			logger.Fatal(ctx, "Failed to fetch database credentials", "error", err)
		}
		dsn = creds.DSN()
	}

	// 5. Database
	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                dsn,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		LogEnabled:         cfg.Database.LogEnabled,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to connect database", "error", err)
	}
	defer database.Close()

	if cfg.Environment == "dev" {
		if err := database.AutoMigrate(
			&portfoliomysql.PositionModel{},
			&portfoliomysql.TargetModel{},
			&portfoliomysql.ExecutionModel{},
			&marketmysql.DailyPriceModel{},
		); err != nil {
			logger.Error(ctx, "Failed to migrate database", "error", err)
		}
	}

	// 6. Redis (server-side sessions)
	redisCache, err := cache.New(cache.Config{
		Host:         cfg.Redis.Host,
		Port:         cfg.Redis.Port,
		Password:     cfg.Redis.Password,
		DB:           cfg.Redis.DB,
		MaxPoolSize:  cfg.Redis.MaxPoolSize,
		ConnTimeout:  cfg.Redis.ConnTimeout,
		ReadTimeout:  cfg.Redis.ReadTimeout,
		WriteTimeout: cfg.Redis.WriteTimeout,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to connect redis", "error", err)
	}
	defer redisCache.Close()

	// 7. Repositories
	positionRepo := portfoliomysql.NewPositionRepository(database.DB)
	targetRepo := portfoliomysql.NewTargetRepository(database.DB)
	executionRepo := portfoliomysql.NewExecutionRepository(database.DB)
	priceRepo := marketmysql.NewPriceRepository(database.DB)
	sessionRepo := authredis.NewSessionRepository(redisCache)

	// 8. Event publisher
	var publisher domain.EventPublisher = messaging.NopPublisher{}
	if cfg.Kafka.Enabled {
		kafkaPublisher := messaging.NewKafkaPublisher(cfg.Kafka.Brokers)
		defer kafkaPublisher.Close()
		publisher = kafkaPublisher
	}

	// 9. Application services
	identityProvider := cognito.NewClient(cognito.Config{
		Endpoint:     cfg.Cognito.Endpoint,
		UserPoolID:   cfg.Cognito.UserPoolID,
		ClientID:     cfg.Cognito.ClientID,
		ClientSecret: cfg.Cognito.ClientSecret,
		Timeout:      cfg.Cognito.Timeout,
	})
	authService := authapp.NewAuthService(identityProvider, sessionRepo, time.Duration(cfg.Session.TTL)*time.Second)
	marketDataService := marketapp.NewMarketDataService(priceRepo)
	portfolioService := portfolioapp.NewPortfolioService(positionRepo, targetRepo, executionRepo, marketDataService, publisher)
	analyticsService := analyticsapp.NewAnalyticsService(positionRepo, executionRepo, priceRepo)

	// 10. HTTP server
	gin.SetMode(gin.ReleaseMode)
	if cfg.Environment == "dev" {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(
		middleware.GinRecoveryMiddleware(),
		middleware.GinLoggingMiddleware(),
		middleware.GinCORSMiddleware(),
		middleware.GinMetricsMiddleware(m),
		authhttp.LoadSession(authService),
	)
	router.SetHTMLTemplate(template.Must(template.ParseFS(web.Templates, "templates/*.html")))

	requireAuth := authhttp.RequireAuthenticated()
	requireAdmin := authhttp.RequireAdmin()
	loginLimiter := middleware.GinRateLimitMiddleware(middleware.NewIPRateLimiter(10, 0.5))

	authhttp.NewAuthHandler(authService, m, cfg.Session.Secure).RegisterRoutes(router, loginLimiter)
	portfoliohttp.NewPortfolioHandler(portfolioService, m).RegisterRoutes(router, requireAuth, requireAdmin)
	analyticshttp.NewAnalyticsHandler(analyticsService, marketDataService).RegisterRoutes(router, requireAuth)
	markethttp.NewMarketDataHandler(marketDataService).RegisterRoutes(router, requireAuth, requireAdmin)

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info(ctx, "HTTP server started", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal(ctx, "HTTP server failed", "error", err)
		}
	}()

	// 11. Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info(ctx, "Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error(ctx, "Server forced to shutdown", "error", err)
	}
	logger.Info(ctx, "Server exited")
}
