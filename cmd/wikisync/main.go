// wikisync 将组合摘要页同步到 MediaWiki，由 cron 或手工触发
package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	portfoliomysql "github.com/wyfcoding/alphaview/internal/portfolio/infrastructure/persistence/mysql"
	"github.com/wyfcoding/alphaview/internal/wiki"
	"github.com/wyfcoding/alphaview/pkg/config"
	"github.com/wyfcoding/alphaview/pkg/db"
	"github.com/wyfcoding/alphaview/pkg/logger"
	"github.com/wyfcoding/alphaview/pkg/secrets"
)

var (
	configPath = flag.String("config", "configs/config.toml", "config file path")
	pageTitle  = flag.String("page", "", "wiki page title (overrides config)")
	dryRun     = flag.Bool("dry-run", false, "render the page without saving it")
)

func main() {
	flag.Parse()
	ctx := context.Background()

	cfg, err := config.Load(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	if err := logger.Init(logger.Config{
		Level:  cfg.Logger.Level,
		Format: cfg.Logger.Format,
		Output: "stdout",
	}); err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

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

	database, err := db.Init(db.Config{
		Driver:             cfg.Database.Driver,
		DSN:                dsn,
		MaxOpenConns:       cfg.Database.MaxOpenConns,
		MaxIdleConns:       cfg.Database.MaxIdleConns,
		ConnMaxLifetime:    cfg.Database.ConnMaxLifetime,
		SlowQueryThreshold: cfg.Database.SlowQueryThreshold,
	})
	if err != nil {
		logger.Fatal(ctx, "Failed to connect database", "error", err)
	}
	defer database.Close()

	positions, err := portfoliomysql.NewPositionRepository(database.DB).ListOpen(ctx)
	if err != nil {
		logger.Fatal(ctx, "Failed to list positions", "error", err)
	}
	targets, err := portfoliomysql.NewTargetRepository(database.DB).List(ctx)
	if err != nil {
		logger.Fatal(ctx, "Failed to list targets", "error", err)
	}

	page := wiki.RenderSummary(positions, targets, time.Now())

	if *dryRun {
		fmt.Println(page)
		return
	}

	title := cfg.Wiki.PageTitle
	if *pageTitle != "" {
		title = *pageTitle
	}
	if title == "" {
		logger.Fatal(ctx, "Wiki page title is not configured")
	}

	client := wiki.NewClient(cfg.Wiki.URL, cfg.Wiki.Username, cfg.Wiki.Password)
	if err := client.Login(ctx); err != nil {
		logger.Fatal(ctx, "Wiki login failed", "error", err)
	}

	exists, err := client.PageExists(ctx, title)
	if err != nil {
		logger.Fatal(ctx, "Wiki page lookup failed", "error", err)
	}
	summary := "Automated portfolio summary update"
	if !exists {
		summary = "Create portfolio summary page"
	}

	if err := client.SavePage(ctx, title, page, summary); err != nil {
		logger.Fatal(ctx, "Wiki page save failed", "error", err)
	}
	logger.Info(ctx, "Wiki page synced", "title", title, "positions", len(positions))
}
