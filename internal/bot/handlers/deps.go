// Package handlers contains the bot command handlers, the callback
// action rule table, and the helpers that deliver composed pages to
// chats.
package handlers

import (
	"log/slog"

	"github.com/rozkladbot/rozkladbot/internal/cache"
	"github.com/rozkladbot/rozkladbot/internal/config"
	"github.com/rozkladbot/rozkladbot/internal/data"
	"github.com/rozkladbot/rozkladbot/internal/lang"
	"github.com/rozkladbot/rozkladbot/internal/pages"
)

// Deps provides dependencies for command and callback handlers.
type Deps struct {
	Logger   *slog.Logger
	Config   *config.Config
	Composer *pages.Composer
	Langs    *lang.Store
	Chats    *data.ChatStore
	Users    *data.UserStore
	Cache    *cache.Cache
}

// chatCtx resolves the page-composition context for a chat, creating the
// state record with defaults on first contact.
func (d Deps) chatCtx(chatID int64) (pages.ChatCtx, error) {
	state, err := d.Chats.Get(chatID)
	if err != nil {
		return pages.ChatCtx{}, err
	}
	return pages.ChatCtx{
		ChatID: chatID,
		State:  state,
		Lang:   d.Langs.Get(state.LangCode),
	}, nil
}

// fallbackCtx is the context used when chat state cannot be read; the
// user still gets an answer in the default language.
func (d Deps) fallbackCtx(chatID int64) pages.ChatCtx {
	return pages.ChatCtx{
		ChatID: chatID,
		Lang:   d.Langs.Get(d.Langs.DefaultCode()),
	}
}

// isAdmin reports whether the user may use admin actions: either the
// configured admin or a user flagged as admin in the store.
func (d Deps) isAdmin(userID int64) bool {
	if userID == d.Config.TelegramAdminID {
		return true
	}
	state, err := d.Users.Get(userID)
	if err != nil {
		d.Logger.Warn("User state read failed", "error", err, "user_id", userID)
		return false
	}
	return state.Admin
}
