// Package pages composes the bot pages: the text, inline keyboard and
// formatting of every screen the bot can show. Composers read chat state
// and remote schedule data and map remote failures to fallback pages;
// sending the result is the transport's job.
package pages

import (
	"log/slog"
	"sync"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/rozkladbot/rozkladbot/internal/api"
	"github.com/rozkladbot/rozkladbot/internal/cache"
	"github.com/rozkladbot/rozkladbot/internal/data"
	"github.com/rozkladbot/rozkladbot/internal/lang"
)

// Page is one composed screen, ready to be sent or edited into a chat
// message and recorded in the message history under Name.
type Page struct {
	Name               string
	Text               string
	Keyboard           [][]models.InlineKeyboardButton
	ParseMode          models.ParseMode
	DisableLinkPreview bool
	Data               map[string]string
}

// ChatCtx is the resolved context a page is rendered for: the chat, a
// snapshot of its state and the language table for its language code.
type ChatCtx struct {
	ChatID int64
	State  data.ChatState
	Lang   lang.Language
}

// Config carries the page-composition knobs.
type Config struct {
	// HiddenMarker is the case-insensitive substring that marks a
	// discipline as hidden; a day whose every period is hidden counts
	// as empty.
	HiddenMarker string

	// ScheduleCacheTTL bounds how old a cached schedule window may be
	// before it is refetched.
	ScheduleCacheTTL time.Duration

	// SupportURL is the "write me" link on the API-unavailable page.
	SupportURL string
}

// Composer builds pages. One instance per process, safe for concurrent
// use.
type Composer struct {
	logger *slog.Logger
	langs  *lang.Store
	client *api.Client
	cache  *cache.Cache
	chats  *data.ChatStore
	cfg    Config
	now    func() time.Time

	// missing-teacher names already warned about, to log once per name
	missingTeachers sync.Map
}

// NewComposer creates a page composer.
func NewComposer(logger *slog.Logger, langs *lang.Store, client *api.Client, c *cache.Cache, chats *data.ChatStore, cfg Config) *Composer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Composer{
		logger: logger.With("component", "pages"),
		langs:  langs,
		client: client,
		cache:  c,
		chats:  chats,
		cfg:    cfg,
		now:    time.Now,
	}
}

// esc escapes a remote-sourced value for MarkdownV2 interpolation.
// Pre-composed template text is never passed through it.
func esc(s string) string {
	return bot.EscapeMarkdown(s)
}

// btn builds a callback button.
func btn(label, action string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: label, CallbackData: action}
}

// urlBtn builds a link button.
func urlBtn(label, url string) models.InlineKeyboardButton {
	return models.InlineKeyboardButton{Text: label, URL: url}
}

// SplitRows partitions buttons into rows of the given width, preserving
// order. The last row may be shorter.
func SplitRows(buttons []models.InlineKeyboardButton, width int) [][]models.InlineKeyboardButton {
	if width < 1 {
		width = 1
	}
	rows := make([][]models.InlineKeyboardButton, 0, (len(buttons)+width-1)/width)
	for len(buttons) > width {
		rows = append(rows, buttons[:width])
		buttons = buttons[width:]
	}
	if len(buttons) > 0 {
		rows = append(rows, buttons)
	}
	return rows
}

// row is a single keyboard row.
func row(buttons ...models.InlineKeyboardButton) []models.InlineKeyboardButton {
	return buttons
}
