// Package main contains the entrypoint for the schedule bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tgbot "github.com/go-telegram/bot"

	"github.com/rozkladbot/rozkladbot/internal/api"
	"github.com/rozkladbot/rozkladbot/internal/bot"
	"github.com/rozkladbot/rozkladbot/internal/bot/handlers"
	"github.com/rozkladbot/rozkladbot/internal/cache"
	"github.com/rozkladbot/rozkladbot/internal/config"
	"github.com/rozkladbot/rozkladbot/internal/data"
	"github.com/rozkladbot/rozkladbot/internal/lang"
	"github.com/rozkladbot/rozkladbot/internal/logger"
	"github.com/rozkladbot/rozkladbot/internal/pages"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run wires every component together and blocks until shutdown. It
// returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		return 1
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info("Logger initialized", "level", cfg.LogLevel, "format", cfg.LogFormat)

	langs, err := lang.Load(cfg.DefaultLang, log)
	if err != nil {
		log.Error("Failed to load locales", "error", err)
		return 1
	}

	chats, err := data.NewChatStore(filepath.Join(cfg.DataDir, "chats"), cfg.DefaultLang, log)
	if err != nil {
		log.Error("Failed to open chat store", "dir", cfg.DataDir, "error", err)
		return 1
	}
	users, err := data.NewUserStore(filepath.Join(cfg.DataDir, "users"), log)
	if err != nil {
		log.Error("Failed to open user store", "dir", cfg.DataDir, "error", err)
		return 1
	}

	store, err := cache.New(cfg.CachePath, log)
	if err != nil {
		log.Error("Failed to open cache", "path", cfg.CachePath, "error", err)
		return 1
	}
	defer store.Close()

	client := api.NewClient(cfg.APIBaseURL, cfg.APITimeout, log)

	composer := pages.NewComposer(log, langs, client, store, chats, pages.Config{
		HiddenMarker:     cfg.HiddenMarker,
		ScheduleCacheTTL: cfg.ScheduleCacheTTL,
		SupportURL:       cfg.SupportURL,
	})

	deps := handlers.Deps{
		Logger:   log,
		Config:   cfg,
		Composer: composer,
		Langs:    langs,
		Chats:    chats,
		Users:    users,
		Cache:    store,
	}

	tg, err := tgbot.New(cfg.TelegramToken,
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithSkipGetMe(),
	)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	me, err := tg.GetMe(ctx)
	if err != nil {
		log.Error("Failed to get bot info", "error", err)
		return 1
	}
	log.Info("Connected to Telegram", "bot_id", me.ID, "username", me.Username)

	handlers.Register(tg, deps)

	notifier, err := bot.NewNotifier(log, tg, client, chats, langs, composer)
	if err != nil {
		log.Error("Failed to create notifier", "error", err)
		return 1
	}

	app := bot.New(log, tg, notifier)

	log.Info("Starting bot")
	if err := app.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Bot stopped with error", "error", err)
		return 1
	}

	return 0
}
