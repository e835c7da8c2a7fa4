package pages

import (
	"context"

	"github.com/go-telegram/bot/models"

	"github.com/rozkladbot/rozkladbot/internal/callback"
	"github.com/rozkladbot/rozkladbot/internal/lang"
)

// Greeting is the /start reply, shown before the menu.
func (c *Composer) Greeting(cc ChatCtx) Page {
	return Page{
		Name:      PageGreeting,
		Text:      cc.Lang.Get("page.greeting"),
		ParseMode: models.ParseModeMarkdown,
	}
}

// Menu composes the main menu. The admin panel entry appears only for
// admins.
func (c *Composer) Menu(cc ChatCtx, isAdmin bool) Page {
	keyboard := [][]models.InlineKeyboardButton{
		row(btn(cc.Lang.Get("button.schedule"), ActionOpenScheduleToday)),
		row(
			btn(cc.Lang.Get("button.settings"), ActionOpenSettings),
			btn(cc.Lang.Get("button.more"), ActionOpenMore),
		),
	}
	if isAdmin {
		keyboard = append(keyboard, row(btn(cc.Lang.Get("button.admin.panel"), ActionAdminOpenPanel)))
	}

	return Page{
		Name:      PageMenu,
		Text:      cc.Lang.Get("page.menu"),
		Keyboard:  keyboard,
		ParseMode: models.ParseModeMarkdown,
	}
}

// More composes the secondary menu.
func (c *Composer) More(cc ChatCtx) Page {
	return Page{
		Name: PageMore,
		Text: cc.Lang.Get("page.more"),
		Keyboard: [][]models.InlineKeyboardButton{
			row(btn(cc.Lang.Get("button.calls"), ActionOpenCalls)),
			row(btn(cc.Lang.Get("button.students_list"), ActionOpenStudents)),
			row(btn(cc.Lang.Get("button.info"), ActionOpenInfo)),
			row(btn(cc.Lang.Get("button.back"), ActionOpenMenu)),
		},
		ParseMode: models.ParseModeMarkdown,
	}
}

// Settings composes the settings page and marks them as seen. Each
// notification toggle encodes the state it would switch to.
func (c *Composer) Settings(ctx context.Context, cc ChatCtx) Page {
	if !cc.State.SeenSettings {
		if err := c.chats.SetSeenSettings(cc.ChatID, true); err != nil {
			c.logger.Warn("Failed to mark settings seen", "error", err, "chat_id", cc.ChatID)
		}
	}

	groupName := cc.Lang.Get("text.not_selected")
	if cc.State.GroupID != nil {
		groupName = cc.Lang.Get("text.unknown")
		if group, err := c.cache.GetGroup(ctx, *cc.State.GroupID); err != nil {
			c.logger.Warn("Group cache read failed", "error", err, "group_id", *cc.State.GroupID)
		} else if group != nil {
			groupName = esc(group.Name)
		}
	}

	text := lang.Format(cc.Lang.Get("page.settings"), map[string]string{
		"group":        groupName,
		"cl_notif_15m": toggleIcon(cc.State.ClassNotif15m),
		"cl_notif_1m":  toggleIcon(cc.State.ClassNotif1m),
	})

	keyboard := [][]models.InlineKeyboardButton{
		row(
			btn(cc.Lang.Get("button.select_group"), ActionOpenSelectGroup),
			btn(cc.Lang.Get("button.select_lang"), ActionOpenSelectLang),
		),
		row(btn(cc.Lang.Get("button.settings.cl_notif_15m"),
			callback.Encode(ActionSetClassNotif, map[string]string{
				"time": "15m", "state": toggleState(cc.State.ClassNotif15m),
			}))),
		row(btn(cc.Lang.Get("button.settings.cl_notif_1m"),
			callback.Encode(ActionSetClassNotif, map[string]string{
				"time": "1m", "state": toggleState(cc.State.ClassNotif1m),
			}))),
		row(btn(cc.Lang.Get("button.back"), ActionOpenMenu)),
	}

	return Page{
		Name:      PageSettings,
		Text:      text,
		Keyboard:  keyboard,
		ParseMode: models.ParseModeMarkdown,
	}
}

// LangSelection composes the language picker listing every loaded
// locale.
func (c *Composer) LangSelection(cc ChatCtx) Page {
	var keyboard [][]models.InlineKeyboardButton
	for _, code := range c.langs.Codes() {
		keyboard = append(keyboard, row(btn(c.langs.Get(code).Name(),
			callback.Encode(ActionSelectLang, map[string]string{"lang": code}))))
	}
	keyboard = append(keyboard, row(
		btn(cc.Lang.Get("button.back"), ActionOpenSettings),
		btn(cc.Lang.Get("button.menu"), ActionOpenMenu),
	))

	return Page{
		Name: PageLangSelect,
		Text: lang.Format(cc.Lang.Get("page.lang_select"), map[string]string{
			"lang": cc.Lang.Name(),
		}),
		Keyboard:  keyboard,
		ParseMode: models.ParseModeMarkdown,
	}
}

// AdminPanel composes the admin panel.
func (c *Composer) AdminPanel(cc ChatCtx) Page {
	return Page{
		Name: PageAdminPanel,
		Text: cc.Lang.Get("page.admin_panel"),
		Keyboard: [][]models.InlineKeyboardButton{
			row(btn(cc.Lang.Get("button.admin.clear_cache"), ActionAdminClearCache)),
			row(btn(cc.Lang.Get("button.back"), ActionOpenMenu)),
		},
		ParseMode: models.ParseModeMarkdown,
	}
}

// AccessDenied is shown when a non-admin taps an admin action.
func (c *Composer) AccessDenied(cc ChatCtx) Page {
	return Page{
		Name:      PageAccessDenied,
		Text:      cc.Lang.Get("alert.no_permissions"),
		Keyboard:  [][]models.InlineKeyboardButton{row(btn(cc.Lang.Get("button.menu"), ActionOpenMenu))},
		ParseMode: models.ParseModeMarkdown,
	}
}

// APIUnavailable is the fallback for unclassified remote failures.
func (c *Composer) APIUnavailable(cc ChatCtx) Page {
	buttons := []models.InlineKeyboardButton{btn(cc.Lang.Get("button.menu"), ActionOpenMenu)}
	if c.cfg.SupportURL != "" {
		buttons = append(buttons, urlBtn(cc.Lang.Get("button.write_me"), c.cfg.SupportURL))
	}

	return Page{
		Name:      PageUnavailable,
		Text:      cc.Lang.Get("page.api_unavailable"),
		Keyboard:  [][]models.InlineKeyboardButton{buttons},
		ParseMode: models.ParseModeMarkdown,
	}
}

// InvalidGroup is shown when the stored group id is missing or rejected
// by the remote API.
func (c *Composer) InvalidGroup(cc ChatCtx) Page {
	return Page{
		Name: PageInvalidGroup,
		Text: cc.Lang.Get("page.invalid_group"),
		Keyboard: [][]models.InlineKeyboardButton{row(
			btn(cc.Lang.Get("button.select_group"), ActionOpenSelectGroup),
			btn(cc.Lang.Get("button.menu"), ActionOpenMenu),
		)},
		ParseMode: models.ParseModeMarkdown,
	}
}

// Forbidden is shown on a 403 from the remote API. backAction, when
// non-empty, overrides the menu button with a back button.
func (c *Composer) Forbidden(cc ChatCtx, backAction string) Page {
	return Page{
		Name:      PageForbidden,
		Text:      cc.Lang.Get("page.forbidden"),
		Keyboard:  backKeyboard(cc.Lang, backAction),
		ParseMode: models.ParseModeMarkdown,
	}
}

// NotFound is shown on a 404 from the remote API.
func (c *Composer) NotFound(cc ChatCtx, backAction string) Page {
	return Page{
		Name:      PageNotFound,
		Text:      cc.Lang.Get("page.not_found"),
		Keyboard:  backKeyboard(cc.Lang, backAction),
		ParseMode: models.ParseModeMarkdown,
	}
}

// Error is the generic failure page the top-level boundary answers with.
func (c *Composer) Error(cc ChatCtx) Page {
	return Page{
		Name:      PageError,
		Text:      cc.Lang.Get("page.error"),
		Keyboard:  [][]models.InlineKeyboardButton{row(btn(cc.Lang.Get("button.menu"), ActionOpenMenu))},
		ParseMode: models.ParseModeMarkdown,
	}
}

func backKeyboard(l lang.Language, backAction string) [][]models.InlineKeyboardButton {
	if backAction == "" {
		return [][]models.InlineKeyboardButton{row(btn(l.Get("button.menu"), ActionOpenMenu))}
	}
	return [][]models.InlineKeyboardButton{row(btn(l.Get("button.back"), backAction))}
}

func toggleIcon(enabled bool) string {
	if enabled {
		return "✅"
	}
	return "❌"
}

// toggleState is the state a toggle button switches to when tapped.
func toggleState(enabled bool) string {
	if enabled {
		return "0"
	}
	return "1"
}
