package pages

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-telegram/bot/models"

	"github.com/rozkladbot/rozkladbot/internal/api"
	"github.com/rozkladbot/rozkladbot/internal/callback"
	"github.com/rozkladbot/rozkladbot/internal/lang"
)

// maxMessageLen is the transport limit for message text.
const maxMessageLen = 4096

// Calls composes the university call schedule page.
func (c *Composer) Calls(ctx context.Context, cc ChatCtx) Page {
	slots, err := c.client.TimetableCallSchedule(ctx)
	if err != nil {
		return c.errorPage(cc, err, "")
	}

	lines := make([]string, 0, len(slots))
	for _, slot := range slots {
		lines = append(lines, fmt.Sprintf("`%d)` *%s* `-` *%s*",
			slot.Number, esc(slot.TimeStart), esc(slot.TimeEnd)))
	}

	return Page{
		Name: PageCalls,
		Text: lang.Format(cc.Lang.Get("page.calls"), map[string]string{
			"schedule": strings.Join(lines, "\n"),
		}),
		Keyboard:  [][]models.InlineKeyboardButton{row(btn(cc.Lang.Get("button.back"), ActionOpenMore))},
		ParseMode: models.ParseModeMarkdown,
	}
}

// StudentsList composes the numbered roster of the chat's group,
// truncated to the transport's message limit.
func (c *Composer) StudentsList(ctx context.Context, cc ChatCtx) Page {
	if cc.State.GroupID == nil {
		return c.InvalidGroup(cc)
	}

	students, err := c.client.ListStudentsByGroup(ctx, *cc.State.GroupID, cc.State.LangCode)
	if err != nil {
		return c.errorPage(cc, err, "")
	}

	var roster strings.Builder
	for i, student := range students {
		fmt.Fprintf(&roster, "*%d\\)* %s %s %s\n",
			i+1, esc(student.LastName), esc(student.FirstName), esc(student.SecondName))
	}

	groupName := cc.Lang.Get("text.unknown")
	if group, err := c.cache.GetGroup(ctx, *cc.State.GroupID); err == nil && group != nil {
		groupName = esc(group.Name)
	}

	text := lang.Format(cc.Lang.Get("page.students_list"), map[string]string{
		"group":    groupName,
		"students": roster.String(),
	})
	if len(text) > maxMessageLen {
		cut := maxMessageLen - 3
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}

	return Page{
		Name:      PageStudents,
		Text:      text,
		Keyboard:  [][]models.InlineKeyboardButton{row(btn(cc.Lang.Get("button.back"), ActionOpenMore))},
		ParseMode: models.ParseModeMarkdown,
	}
}

// Info composes the about page with the remote API version.
func (c *Composer) Info(ctx context.Context, cc ChatCtx) Page {
	apiVer := cc.Lang.Get("text.unknown")
	if version, err := c.client.GetVersion(ctx); err == nil {
		apiVer = esc(version.Name)
	}

	text := lang.Format(cc.Lang.Get("page.info"), map[string]string{
		"api_ver":           apiVer,
		"api_ver_supported": esc(api.SupportedVersion),
	})

	return Page{
		Name: PageInfo,
		Text: text,
		Keyboard: [][]models.InlineKeyboardButton{row(
			btn(cc.Lang.Get("button.back"), ActionOpenMore),
			btn(cc.Lang.Get("button.menu"), ActionOpenMenu),
		)},
		ParseMode:          models.ParseModeMarkdown,
		DisableLinkPreview: true,
	}
}

// ClassesNotification composes the push shown shortly before classes
// start. remaining is the localized time left, like "15 min".
func (c *Composer) ClassesNotification(cc ChatCtx, day api.ScheduleDay, remaining string) Page {
	var lines []string
	for _, lesson := range day.Lessons {
		for _, period := range lesson.Periods {
			lines = append(lines, lang.Format(cc.Lang.Get("text.notification.lesson"), map[string]string{
				"lessonNumber": strconv.Itoa(lesson.Number),
				"discipline":   esc(period.DisciplineShortName),
				"type":         esc(period.TypeStr),
			}))
		}
	}

	text := lang.Format(cc.Lang.Get("page.classes_notification"), map[string]string{
		"remaining": esc(remaining),
		"schedule":  strings.Join(lines, "\n"),
	})

	return Page{
		Name: PageNotification,
		Text: text,
		Keyboard: [][]models.InlineKeyboardButton{row(
			btn(cc.Lang.Get("button.open_schedule"),
				callback.Encode(ActionOpenScheduleDay, map[string]string{"date": day.Date})),
			btn(cc.Lang.Get("button.settings"), ActionOpenSettings),
		)},
		ParseMode: models.ParseModeMarkdown,
	}
}
