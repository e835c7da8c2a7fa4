package handlers

import (
	"context"
	"strings"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/rozkladbot/rozkladbot/internal/pages"
)

// commandPage composes the page a command results in.
type commandPage func(ctx context.Context, cc pages.ChatCtx, update *models.Update) pages.Page

// newCommand adapts a page composition to a command handler that sends
// the page as a new message.
func (d Deps) newCommand(name string, fn commandPage) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		chatID := update.Message.Chat.ID
		log := d.Logger.With("handler", name, "chat_id", chatID)

		cc, err := d.chatCtx(chatID)
		if err != nil {
			log.ErrorContext(ctx, "Chat state read failed", "error", err)
			cc = d.fallbackCtx(chatID)
			d.sendPage(ctx, b, cc, d.Composer.Error(cc))
			return
		}

		log.DebugContext(ctx, "Handling command")
		d.sendPage(ctx, b, cc, fn(ctx, cc, update))
	}
}

// NewStartHandler greets the chat and opens the menu. A deep-link
// payload ("t.me/bot?start=ref") is recorded once as the user's
// referral source.
func NewStartHandler(d Deps) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		if update.Message == nil {
			return
		}
		chatID := update.Message.Chat.ID

		if update.Message.From != nil {
			d.recordReferral(update.Message.From.ID, update.Message.Text)
		}

		cc, err := d.chatCtx(chatID)
		if err != nil {
			d.Logger.ErrorContext(ctx, "Chat state read failed", "error", err, "chat_id", chatID)
			cc = d.fallbackCtx(chatID)
			d.sendPage(ctx, b, cc, d.Composer.Error(cc))
			return
		}

		d.sendPage(ctx, b, cc, d.Composer.Greeting(cc))

		isAdmin := update.Message.From != nil && d.isAdmin(update.Message.From.ID)
		d.sendPage(ctx, b, cc, d.Composer.Menu(cc, isAdmin))
	}
}

func (d Deps) recordReferral(userID int64, messageText string) {
	_, payload, found := strings.Cut(messageText, " ")
	if !found || payload == "" {
		return
	}

	state, err := d.Users.Get(userID)
	if err != nil || state.Referral != "" {
		return
	}
	if err := d.Users.SetReferral(userID, payload); err != nil {
		d.Logger.Warn("Failed to record referral", "error", err, "user_id", userID)
	}
}

// NewMenuHandler opens the main menu.
func NewMenuHandler(d Deps) bot.HandlerFunc {
	return d.newCommand("menu", func(_ context.Context, cc pages.ChatCtx, update *models.Update) pages.Page {
		isAdmin := update.Message.From != nil && d.isAdmin(update.Message.From.ID)
		return d.Composer.Menu(cc, isAdmin)
	})
}

// NewSettingsHandler opens the settings page.
func NewSettingsHandler(d Deps) bot.HandlerFunc {
	return d.newCommand("settings", func(ctx context.Context, cc pages.ChatCtx, _ *models.Update) pages.Page {
		return d.Composer.Settings(ctx, cc)
	})
}

// NewSelectHandler opens the group selection flow.
func NewSelectHandler(d Deps) bot.HandlerFunc {
	return d.newCommand("select", func(ctx context.Context, cc pages.ChatCtx, _ *models.Update) pages.Page {
		return d.Composer.StructureList(ctx, cc)
	})
}

// NewLangHandler opens the language picker.
func NewLangHandler(d Deps) bot.HandlerFunc {
	return d.newCommand("lang", func(_ context.Context, cc pages.ChatCtx, _ *models.Update) pages.Page {
		return d.Composer.LangSelection(cc)
	})
}

// NewTodayHandler opens today's schedule.
func NewTodayHandler(d Deps) bot.HandlerFunc {
	return d.newCommand("today", func(ctx context.Context, cc pages.ChatCtx, _ *models.Update) pages.Page {
		return d.Composer.Schedule(ctx, cc, time.Now())
	})
}

// NewCallsHandler shows the university call schedule.
func NewCallsHandler(d Deps) bot.HandlerFunc {
	return d.newCommand("calls", func(ctx context.Context, cc pages.ChatCtx, _ *models.Update) pages.Page {
		return d.Composer.Calls(ctx, cc)
	})
}
