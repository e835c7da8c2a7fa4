package handlers

import (
	"context"
	"strconv"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/rozkladbot/rozkladbot/internal/api"
	"github.com/rozkladbot/rozkladbot/internal/callback"
	"github.com/rozkladbot/rozkladbot/internal/pages"
)

// NewCallbackHandler builds the catch-all callback query handler. Every
// button press decodes through the dispatcher's rule table; the first
// matching rule wins, so specific prefixes are registered before the
// broader ones they share a prefix with.
func NewCallbackHandler(d Deps) bot.HandlerFunc {
	dispatcher := callback.NewDispatcher(d.Logger, d.unsupportedAction(), d.handlerFailure())
	d.registerRules(dispatcher)

	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		cq := update.CallbackQuery
		if cq == nil {
			return
		}

		dispatcher.Dispatch(ctx, b, update, cq.Data)

		if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: cq.ID,
		}); err != nil {
			d.Logger.DebugContext(ctx, "Callback answer failed", "error", err)
		}
	}
}

// registerRules fills the dispatcher rule table. Registration order is
// the match priority: "open.schedule.extra" must precede
// "open.schedule" and so on.
func (d Deps) registerRules(dispatcher *callback.Dispatcher) {
	dispatcher.Register(pages.ActionOpenScheduleExtra, d.editWith(d.openScheduleExtra))
	dispatcher.Register(pages.ActionOpenScheduleToday, d.editWith(d.openScheduleToday))
	dispatcher.Register(pages.ActionOpenScheduleDay, d.editWith(d.openScheduleDay))
	dispatcher.Register(pages.ActionOpenSelectGroup, d.editWith(d.openSelectGroup))
	dispatcher.Register(pages.ActionOpenSelectLang, d.editWith(d.openSelectLang))
	dispatcher.Register(pages.ActionOpenMenu, d.editWith(d.openMenu))
	dispatcher.Register(pages.ActionOpenMore, d.editWith(d.openMore))
	dispatcher.Register(pages.ActionOpenSettings, d.editWith(d.openSettings))
	dispatcher.Register(pages.ActionOpenCalls, d.editWith(d.openCalls))
	dispatcher.Register(pages.ActionOpenStudents, d.editWith(d.openStudents))
	dispatcher.Register(pages.ActionOpenInfo, d.editWith(d.openInfo))
	dispatcher.Register(pages.ActionSelectStructure, d.editWith(d.selectStructure))
	dispatcher.Register(pages.ActionSelectFaculty, d.editWith(d.selectFaculty))
	dispatcher.Register(pages.ActionSelectCourse, d.editWith(d.selectCourse))
	dispatcher.Register(pages.ActionSelectGroup, d.editWith(d.selectGroup))
	dispatcher.Register(pages.ActionSelectLang, d.editWith(d.selectLang))
	dispatcher.Register(pages.ActionSetClassNotif, d.editWith(d.setClassNotif))
	dispatcher.Register(pages.ActionAdminOpenPanel, d.editWith(d.adminPanel))
	dispatcher.Register(pages.ActionAdminClearCache, d.editWith(d.adminClearCache))
}

// pageFn composes the page a callback action results in.
type pageFn func(ctx context.Context, cc pages.ChatCtx, update *models.Update, action callback.Action) pages.Page

// editWith adapts a page composition to a callback handler: resolve chat
// context, compose, edit the tapped message in place. A chat state read
// failure still answers with the generic error page.
func (d Deps) editWith(fn pageFn) callback.Handler {
	return func(ctx context.Context, b *bot.Bot, update *models.Update, action callback.Action) {
		chatID, messageID := callbackTarget(update)

		cc, err := d.chatCtx(chatID)
		if err != nil {
			d.Logger.ErrorContext(ctx, "Chat state read failed", "error", err, "chat_id", chatID)
			cc = d.fallbackCtx(chatID)
			d.editPage(ctx, b, cc, messageID, d.Composer.Error(cc))
			return
		}

		d.editPage(ctx, b, cc, messageID, fn(ctx, cc, update, action))
	}
}

// callbackTarget locates the chat and message a callback came from. A
// message too old for the transport to expose edits as message id zero,
// which falls back to sending a new message.
func callbackTarget(update *models.Update) (chatID int64, messageID int) {
	cq := update.CallbackQuery
	if cq.Message.Message != nil {
		return cq.Message.Message.Chat.ID, cq.Message.Message.ID
	}
	if cq.Message.InaccessibleMessage != nil {
		return cq.Message.InaccessibleMessage.Chat.ID, 0
	}
	return cq.From.ID, 0
}

func (d Deps) openMenu(_ context.Context, cc pages.ChatCtx, update *models.Update, _ callback.Action) pages.Page {
	return d.Composer.Menu(cc, d.isAdmin(update.CallbackQuery.From.ID))
}

func (d Deps) openMore(_ context.Context, cc pages.ChatCtx, _ *models.Update, _ callback.Action) pages.Page {
	return d.Composer.More(cc)
}

func (d Deps) openSettings(ctx context.Context, cc pages.ChatCtx, _ *models.Update, _ callback.Action) pages.Page {
	return d.Composer.Settings(ctx, cc)
}

func (d Deps) openCalls(ctx context.Context, cc pages.ChatCtx, _ *models.Update, _ callback.Action) pages.Page {
	return d.Composer.Calls(ctx, cc)
}

func (d Deps) openStudents(ctx context.Context, cc pages.ChatCtx, _ *models.Update, _ callback.Action) pages.Page {
	return d.Composer.StudentsList(ctx, cc)
}

func (d Deps) openInfo(ctx context.Context, cc pages.ChatCtx, _ *models.Update, _ callback.Action) pages.Page {
	return d.Composer.Info(ctx, cc)
}

func (d Deps) openSelectGroup(ctx context.Context, cc pages.ChatCtx, _ *models.Update, _ callback.Action) pages.Page {
	return d.Composer.StructureList(ctx, cc)
}

func (d Deps) openSelectLang(_ context.Context, cc pages.ChatCtx, _ *models.Update, _ callback.Action) pages.Page {
	return d.Composer.LangSelection(cc)
}

func (d Deps) openScheduleToday(ctx context.Context, cc pages.ChatCtx, _ *models.Update, _ callback.Action) pages.Page {
	return d.Composer.Schedule(ctx, cc, time.Now())
}

func (d Deps) openScheduleDay(ctx context.Context, cc pages.ChatCtx, _ *models.Update, action callback.Action) pages.Page {
	return d.Composer.Schedule(ctx, cc, actionDate(action))
}

func (d Deps) openScheduleExtra(ctx context.Context, cc pages.ChatCtx, _ *models.Update, action callback.Action) pages.Page {
	return d.Composer.ScheduleExtra(ctx, cc, actionDate(action))
}

func (d Deps) selectStructure(ctx context.Context, cc pages.ChatCtx, _ *models.Update, action callback.Action) pages.Page {
	return d.Composer.FacultyList(ctx, cc, actionInt(action, "structureId"))
}

func (d Deps) selectFaculty(ctx context.Context, cc pages.ChatCtx, _ *models.Update, action callback.Action) pages.Page {
	return d.Composer.CourseList(ctx, cc,
		actionInt(action, "structureId"), actionInt(action, "facultyId"))
}

func (d Deps) selectCourse(ctx context.Context, cc pages.ChatCtx, _ *models.Update, action callback.Action) pages.Page {
	return d.Composer.GroupList(ctx, cc,
		actionInt(action, "structureId"), actionInt(action, "facultyId"), actionInt(action, "course"))
}

// selectGroup stores the chosen group and jumps straight to today's
// schedule.
func (d Deps) selectGroup(ctx context.Context, cc pages.ChatCtx, _ *models.Update, action callback.Action) pages.Page {
	groupID := actionInt(action, "groupId")
	if groupID == 0 {
		return d.Composer.InvalidGroup(cc)
	}

	if err := d.Chats.SetGroupID(cc.ChatID, &groupID); err != nil {
		d.Logger.ErrorContext(ctx, "Failed to store group", "error", err, "chat_id", cc.ChatID)
		return d.Composer.Error(cc)
	}
	cc.State.GroupID = &groupID

	return d.Composer.Schedule(ctx, cc, time.Now())
}

// selectLang switches the chat language. Picking the already-active
// language leaves the settings flow.
func (d Deps) selectLang(ctx context.Context, cc pages.ChatCtx, _ *models.Update, action callback.Action) pages.Page {
	code := action.Arg("lang")
	if !d.Langs.Has(code) {
		code = d.Langs.DefaultCode()
	}

	if code == cc.State.LangCode {
		return d.Composer.More(cc)
	}

	if err := d.Chats.SetLangCode(cc.ChatID, code); err != nil {
		d.Logger.ErrorContext(ctx, "Failed to store language", "error", err, "chat_id", cc.ChatID)
		return d.Composer.Error(cc)
	}
	cc.State.LangCode = code
	cc.Lang = d.Langs.Get(code)

	return d.Composer.LangSelection(cc)
}

// setClassNotif flips a class notification toggle. Enabling one offset
// disables the other.
func (d Deps) setClassNotif(ctx context.Context, cc pages.ChatCtx, _ *models.Update, action callback.Action) pages.Page {
	offset := action.Arg("time")
	enabled := action.Arg("state") == "1"

	if err := d.Chats.SetClassNotif(cc.ChatID, offset, enabled); err != nil {
		d.Logger.ErrorContext(ctx, "Failed to store notification setting", "error", err, "chat_id", cc.ChatID)
		return d.Composer.Error(cc)
	}

	state, err := d.Chats.Get(cc.ChatID)
	if err == nil {
		cc.State = state
	}

	return d.Composer.Settings(ctx, cc)
}

func (d Deps) adminPanel(_ context.Context, cc pages.ChatCtx, update *models.Update, _ callback.Action) pages.Page {
	if !d.isAdmin(update.CallbackQuery.From.ID) {
		return d.Composer.AccessDenied(cc)
	}
	return d.Composer.AdminPanel(cc)
}

func (d Deps) adminClearCache(ctx context.Context, cc pages.ChatCtx, update *models.Update, _ callback.Action) pages.Page {
	if !d.isAdmin(update.CallbackQuery.From.ID) {
		return d.Composer.AccessDenied(cc)
	}

	if err := d.Cache.Clear(ctx); err != nil {
		d.Logger.ErrorContext(ctx, "Cache clear failed", "error", err)
		return d.Composer.Error(cc)
	}
	d.Logger.InfoContext(ctx, "Cache cleared", "user_id", update.CallbackQuery.From.ID)

	return d.Composer.AdminPanel(cc)
}

// unsupportedAction is the dispatcher fallback: an alert plus the menu,
// so stale buttons from removed pages still lead somewhere.
func (d Deps) unsupportedAction() callback.Handler {
	return func(ctx context.Context, b *bot.Bot, update *models.Update, action callback.Action) {
		chatID, messageID := callbackTarget(update)

		cc, err := d.chatCtx(chatID)
		if err != nil {
			cc = d.fallbackCtx(chatID)
		}

		if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{
			CallbackQueryID: update.CallbackQuery.ID,
			Text:            cc.Lang.Get("alert.unsupported_action"),
			ShowAlert:       true,
		}); err != nil {
			d.Logger.DebugContext(ctx, "Alert answer failed", "error", err)
		}

		d.editPage(ctx, b, cc, messageID, d.Composer.Menu(cc, d.isAdmin(update.CallbackQuery.From.ID)))
	}
}

// handlerFailure answers after a handler panic so the tap is not left
// hanging.
func (d Deps) handlerFailure() callback.Handler {
	return func(ctx context.Context, b *bot.Bot, update *models.Update, _ callback.Action) {
		chatID, messageID := callbackTarget(update)

		cc, err := d.chatCtx(chatID)
		if err != nil {
			cc = d.fallbackCtx(chatID)
		}
		d.editPage(ctx, b, cc, messageID, d.Composer.Error(cc))
	}
}

// actionDate parses the action's date argument, defaulting to today.
func actionDate(action callback.Action) time.Time {
	if parsed, err := api.ParseDate(action.Arg("date")); err == nil {
		return parsed
	}
	return time.Now()
}

func actionInt(action callback.Action, key string) int {
	n, _ := strconv.Atoi(action.Arg(key))
	return n
}
