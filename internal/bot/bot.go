// Package bot orchestrates the bot components: the Telegram update
// listener and the class notification scheduler, with a shared lifecycle
// and graceful shutdown.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"
)

// Bot ties the transport listener and the notifier together.
type Bot struct {
	logger   *slog.Logger
	tg       *tgbot.Bot
	notifier *Notifier
}

// New creates the orchestrator.
func New(logger *slog.Logger, tg *tgbot.Bot, notifier *Notifier) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		logger:   logger.With("component", "bot"),
		tg:       tg,
		notifier: notifier,
	}
}

// Run starts both components and blocks until the context is cancelled
// or one of them fails.
func (b *Bot) Run(ctx context.Context) error {
	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram listener")
		b.tg.Start(gCtx)

		if gCtx.Err() == nil {
			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		b.logger.Info("Telegram listener stopped")
		return nil
	})

	g.Go(func() error {
		if err := b.notifier.Start(); err != nil {
			return fmt.Errorf("failed to start notifier: %w", err)
		}

		<-gCtx.Done()
		return b.notifier.Stop()
	})

	err := g.Wait()
	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot stopped with error", "error", err)
		return err
	}

	b.logger.Info("Bot stopped gracefully")
	return nil
}
