package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	tele "gopkg.in/telebot.v3"

	"github.com/nalyk/shopbot/internal/bootstrap"
	"github.com/nalyk/shopbot/internal/bot"
	"github.com/nalyk/shopbot/internal/config"
	cronpkg "github.com/nalyk/shopbot/internal/cron"
	"github.com/nalyk/shopbot/internal/middleware"
	"github.com/nalyk/shopbot/internal/pkg/telegram"
	"github.com/nalyk/shopbot/internal/repository"
	"github.com/nalyk/shopbot/internal/wallet"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	db, err := config.NewDatabase(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := bootstrap.MigrateAndSeed(db, cfg.Database.Path); err != nil {
		logger.Fatal("Failed to migrate database schema", zap.Error(err))
	}
	if hasArg("--migrate-only") {
		logger.Info("Migration completed")
		return
	}

	repos := bot.Repos{
		Categories: repository.NewCategoryRepository(db),
		Items:      repository.NewItemRepository(db),
		Users:      repository.NewUserRepository(db),
		Buys:       repository.NewBuyRepository(db),
		Deposits:   repository.NewDepositRepository(db),
	}

	walletSvc := wallet.NewClient(cfg.Wallet.BaseURL, cfg.Wallet.APIKey, cfg.Wallet.PriceURL)
	sessions := bot.NewSessionStore()
	svc := bot.NewAdminService(cfg, logger, repos, walletSvc, sessions)

	teleBot, err := bot.NewBot(cfg, logger, svc)
	if err != nil {
		logger.Fatal("Failed to create bot", zap.Error(err))
	}

	botAPI := telegram.NewBotAPI(cfg.Bot.Token)

	scheduler := cronpkg.NewReportScheduler(
		logger, botAPI, cfg.Bot.ReportChannel, cfg.Shop.CurrencySymbol,
		repos.Buys, repos.Users, repos.Deposits,
	)
	if err := scheduler.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	e := echo.New()
	e.HideBanner = true
	e.GET("/healthz", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	webhookMode := cfg.Bot.WebhookURL != ""
	if webhookMode {
		deduper, dedupeErr := middleware.NewDeduper(
			cfg.Redis.Addr, cfg.Redis.Pass, cfg.Redis.DB, 10*time.Minute,
		)
		if dedupeErr != nil {
			logger.Warn("Redis unavailable for webhook dedup, using in-memory fallback", zap.Error(dedupeErr))
		}
		e.POST("/webhook", func(c echo.Context) error {
			var update tele.Update
			if err := c.Bind(&update); err != nil {
				return c.NoContent(http.StatusBadRequest)
			}
			teleBot.ProcessUpdate(update)
			return c.NoContent(http.StatusOK)
		}, middleware.UpdateDedup(deduper))

		if _, err := botAPI.SetWebhook(cfg.Bot.WebhookURL); err != nil {
			logger.Fatal("Failed to register webhook", zap.Error(err))
		}
		logger.Info("Webhook registered", zap.String("url", cfg.Bot.WebhookURL))
	} else {
		if _, err := botAPI.DeleteWebhook(); err != nil {
			logger.Warn("Failed to clear webhook before polling", zap.Error(err))
		}
		go teleBot.Start()
		logger.Info("Long polling started")
	}

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	go func() {
		logger.Info("Starting server", zap.String("addr", addr))
		if err := e.Start(addr); err != nil {
			logger.Info("Server stopped", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down...")

	if !webhookMode {
		teleBot.Stop()
	}
	scheduler.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited")
}

func hasArg(name string) bool {
	for _, arg := range os.Args[1:] {
		if arg == name {
			return true
		}
	}
	return false
}
