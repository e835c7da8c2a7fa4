// Package logger builds the process-wide slog logger and the bot
// middleware that traces inbound updates.
package logger

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// New creates a slog logger with the given level ("debug", "info",
// "warn", "error") and format ("json" or "text") and installs it as the
// process default.
func New(level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}

	var handler slog.Handler
	if format == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	log := slog.New(handler)
	slog.SetDefault(log)
	return log
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Middleware logs every inbound update with its routing attributes and
// processing duration.
func Middleware(log *slog.Logger) bot.Middleware {
	return func(next bot.HandlerFunc) bot.HandlerFunc {
		return func(ctx context.Context, b *bot.Bot, update *models.Update) {
			start := time.Now()
			entry := log.With(describeUpdate(update)...)

			entry.DebugContext(ctx, "Processing update")
			next(ctx, b, update)
			entry.InfoContext(ctx, "Processed update", "duration", time.Since(start))
		}
	}
}

// describeUpdate extracts the log attributes of an update: its type, the
// chat and user it came from, and the payload that routes it.
func describeUpdate(update *models.Update) []any {
	attrs := []any{"update_id", update.ID}

	switch {
	case update.Message != nil:
		msg := update.Message
		attrs = append(attrs,
			"update_type", "message",
			"chat_id", msg.Chat.ID,
			"message_id", msg.ID,
			"text", truncate(msg.Text, 50),
		)
		if msg.From != nil {
			attrs = append(attrs, "user_id", msg.From.ID)
		}

	case update.CallbackQuery != nil:
		cq := update.CallbackQuery
		attrs = append(attrs,
			"update_type", "callback_query",
			"user_id", cq.From.ID,
			"data", cq.Data,
		)
		if cq.Message.Message != nil {
			attrs = append(attrs, "chat_id", cq.Message.Message.Chat.ID)
		} else if cq.Message.InaccessibleMessage != nil {
			attrs = append(attrs, "chat_id", cq.Message.InaccessibleMessage.Chat.ID)
		}

	default:
		attrs = append(attrs, "update_type", "other")
	}

	return attrs
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
