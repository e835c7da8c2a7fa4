package bot

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"
	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/rozkladbot/rozkladbot/internal/api"
	"github.com/rozkladbot/rozkladbot/internal/data"
	"github.com/rozkladbot/rozkladbot/internal/lang"
	"github.com/rozkladbot/rozkladbot/internal/pages"
)

// notifOffset is one supported lead time for class notifications. The
// key matches the chat setting and the locale key suffix.
type notifOffset struct {
	lead time.Duration
	key  string
}

var notifOffsets = []notifOffset{
	{lead: 15 * time.Minute, key: "15m"},
	{lead: time.Minute, key: "1m"},
}

// Notifier pushes "classes start soon" messages to opted-in chats. A
// minutely job compares the university call schedule against the clock
// and notifies chats whose first lesson starts one lead time from now.
type Notifier struct {
	logger    *slog.Logger
	tg        *tgbot.Bot
	client    *api.Client
	chats     *data.ChatStore
	langs     *lang.Store
	composer  *pages.Composer
	scheduler gocron.Scheduler
}

// NewNotifier creates the notifier and its scheduler.
func NewNotifier(
	logger *slog.Logger,
	tg *tgbot.Bot,
	client *api.Client,
	chats *data.ChatStore,
	langs *lang.Store,
	composer *pages.Composer,
) (*Notifier, error) {
	if logger == nil {
		logger = slog.Default()
	}

	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	return &Notifier{
		logger:    logger.With("component", "notifier"),
		tg:        tg,
		client:    client,
		chats:     chats,
		langs:     langs,
		composer:  composer,
		scheduler: scheduler,
	}, nil
}

// Start schedules the minutely check and starts the scheduler.
func (n *Notifier) Start() error {
	_, err := n.scheduler.NewJob(
		gocron.DurationJob(time.Minute),
		gocron.NewTask(n.tick, context.Background()),
		gocron.WithName("class_notifications"),
	)
	if err != nil {
		return fmt.Errorf("failed to schedule notification job: %w", err)
	}

	n.scheduler.Start()
	n.logger.Info("Notifier started")
	return nil
}

// Stop shuts the scheduler down, waiting for a running tick to finish.
func (n *Notifier) Stop() error {
	err := n.scheduler.Shutdown()
	if err != nil {
		n.logger.Error("Error stopping notifier", "error", err)
		return err
	}
	n.logger.Info("Notifier stopped")
	return nil
}

// tick runs once a minute and fires notifications for every lead time
// whose target call slot starts exactly then.
func (n *Notifier) tick(ctx context.Context) {
	slots, err := n.client.TimetableCallSchedule(ctx)
	if err != nil {
		n.logger.WarnContext(ctx, "Call schedule fetch failed", "error", err)
		return
	}

	now := time.Now()
	for _, offset := range notifOffsets {
		target := now.Add(offset.lead).Format("15:04")
		for _, slot := range slots {
			if slot.TimeStart == target {
				n.notify(ctx, offset, slot)
				break
			}
		}
	}
}

// notify pushes the notification for one lead time to every opted-in
// chat whose classes start at the slot.
func (n *Notifier) notify(ctx context.Context, offset notifOffset, slot api.CallSlot) {
	chatIDs, err := n.chats.ChatIDs()
	if err != nil {
		n.logger.ErrorContext(ctx, "Chat listing failed", "error", err)
		return
	}

	notified := 0
	for _, chatID := range chatIDs {
		state, err := n.chats.Get(chatID)
		if err != nil {
			n.logger.WarnContext(ctx, "Chat state read failed", "error", err, "chat_id", chatID)
			continue
		}
		if !state.Accessible || state.GroupID == nil || !offsetEnabled(state, offset.key) {
			continue
		}

		cc := pages.ChatCtx{ChatID: chatID, State: state, Lang: n.langs.Get(state.LangCode)}

		day, hasClasses, err := n.composer.TodaySchedule(ctx, cc)
		if err != nil {
			n.logger.WarnContext(ctx, "Schedule fetch failed", "error", err, "chat_id", chatID)
			continue
		}
		if !hasClasses || !dayStartsAt(day, slot.TimeStart) {
			continue
		}

		remaining := cc.Lang.Get("text.notification.remaining." + offset.key)
		if n.send(ctx, cc, n.composer.ClassesNotification(cc, day, remaining)) {
			notified++
		}
	}

	if notified > 0 {
		n.logger.InfoContext(ctx, "Sent class notifications",
			"lead", offset.key, "slot", slot.TimeStart, "chats", notified)
	}
}

// send delivers a notification page. A delivery failure marks the chat
// inaccessible so it is skipped until the user comes back.
func (n *Notifier) send(ctx context.Context, cc pages.ChatCtx, page pages.Page) bool {
	var markup models.ReplyMarkup
	if len(page.Keyboard) > 0 {
		markup = &models.InlineKeyboardMarkup{InlineKeyboard: page.Keyboard}
	}

	msg, err := n.tg.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID:      cc.ChatID,
		Text:        page.Text,
		ParseMode:   page.ParseMode,
		ReplyMarkup: markup,
	})
	if err != nil {
		n.logger.WarnContext(ctx, "Notification delivery failed, marking chat inaccessible",
			"error", err, "chat_id", cc.ChatID)
		if markErr := n.chats.SetAccessible(cc.ChatID, false); markErr != nil {
			n.logger.ErrorContext(ctx, "Failed to mark chat inaccessible",
				"error", markErr, "chat_id", cc.ChatID)
		}
		return false
	}

	if err := n.chats.AddMessage(cc.ChatID, data.StoredMessage{
		ID:        msg.ID,
		Timestamp: time.Now().Unix(),
		PageName:  page.Name,
		LangCode:  cc.State.LangCode,
		Data:      page.Data,
	}); err != nil {
		n.logger.WarnContext(ctx, "Failed to record notification", "error", err, "chat_id", cc.ChatID)
	}
	return true
}

func offsetEnabled(state data.ChatState, key string) bool {
	switch key {
	case "15m":
		return state.ClassNotif15m
	case "1m":
		return state.ClassNotif1m
	default:
		return false
	}
}

// dayStartsAt reports whether the day's first period begins at the call
// slot, so only the start of classes triggers a notification, not every
// lesson.
func dayStartsAt(day api.ScheduleDay, timeStart string) bool {
	for _, lesson := range day.Lessons {
		for _, period := range lesson.Periods {
			return period.TimeStart == timeStart
		}
	}
	return false
}
