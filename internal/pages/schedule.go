package pages

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"github.com/go-telegram/bot/models"

	"github.com/rozkladbot/rozkladbot/internal/api"
	"github.com/rozkladbot/rozkladbot/internal/cache"
	"github.com/rozkladbot/rozkladbot/internal/callback"
	"github.com/rozkladbot/rozkladbot/internal/lang"
)

// Schedule composes the schedule page for the given date. It fetches the
// surrounding window, then branches between the day page and the
// empty-range page depending on whether the day has visible lessons.
func (c *Composer) Schedule(ctx context.Context, cc ChatCtx, date time.Time) Page {
	if cc.State.GroupID == nil {
		return c.InvalidGroup(cc)
	}

	days, err := c.fetchWindow(ctx, cc, *cc.State.GroupID, date)
	if err != nil {
		return c.errorPage(cc, err, "")
	}

	dateStr := api.FormatDate(date)
	for _, day := range days {
		if day.Date == dateStr && !IsDayEmpty(day, c.cfg.HiddenMarker) {
			return c.DaySchedule(ctx, cc, date, day)
		}
	}

	return c.EmptySchedule(ctx, cc, date, days)
}

// DaySchedule composes the page for one day with visible lessons.
func (c *Composer) DaySchedule(ctx context.Context, cc ChatCtx, date time.Time, day api.ScheduleDay) Page {
	text := lang.Format(cc.Lang.Get("page.schedule"), map[string]string{
		"date":     c.localizedDate(cc.Lang, date),
		"schedule": c.renderDay(ctx, cc.Lang, day),
	})

	buttons := c.navButtons(cc.Lang, navTargets{
		prevDay:   date.AddDate(0, 0, -1),
		nextDay:   date.AddDate(0, 0, 1),
		prevWeek:  date.AddDate(0, 0, -7),
		nextWeek:  date.AddDate(0, 0, 7),
		showToday: !sameDay(date, c.now()),
	})
	keyboard := SplitRows(buttons, 2)

	if hasExtraText(day) {
		extraRow := row(btn(cc.Lang.Get("button.schedule.extra"),
			callback.Encode(ActionOpenScheduleExtra, map[string]string{"date": api.FormatDate(date)})))
		keyboard = append([][]models.InlineKeyboardButton{extraRow}, keyboard...)
	}

	return Page{
		Name:               PageSchedule,
		Text:               text,
		Keyboard:           keyboard,
		ParseMode:          models.ParseModeMarkdown,
		DisableLinkPreview: true,
		Data:               map[string]string{"date": api.FormatDate(date)},
	}
}

// EmptySchedule composes the page for a date without visible lessons,
// merging a run of consecutive empty days into a single range when the
// run spans more than one day in either direction. days may be nil, in
// which case the window around date is fetched.
func (c *Composer) EmptySchedule(ctx context.Context, cc ChatCtx, date time.Time, days []api.ScheduleDay) Page {
	if days == nil {
		if cc.State.GroupID == nil {
			return c.InvalidGroup(cc)
		}
		var err error
		days, err = c.fetchWindow(ctx, cc, *cc.State.GroupID, date)
		if err != nil {
			return c.errorPage(cc, err, "")
		}
	}

	gaps := AnalyzeGaps(days, date, c.cfg.HiddenMarker)
	nextDay := date.AddDate(0, 0, gaps.SkipRight)
	prevDay := date.AddDate(0, 0, -gaps.SkipLeft)
	nextWeek := date.AddDate(0, 0, 7)
	prevWeek := date.AddDate(0, 0, -7)

	// The today shortcut is useless when today already sits strictly
	// inside the empty run.
	today := c.now()
	showToday := !(dayAfter(nextDay, today) && dayAfter(today, prevDay))

	var text string
	if gaps.Merged() {
		text = lang.Format(cc.Lang.Get("page.schedule.empty.multiple_days"), map[string]string{
			"dateStart": c.localizedDate(cc.Lang, prevDay.AddDate(0, 0, 1)),
			"dateEnd":   c.localizedDate(cc.Lang, nextDay.AddDate(0, 0, -1)),
		})
		// Week jumps must land outside the merged range.
		if nextDay.After(nextWeek) {
			nextWeek = nextDay
		}
		if prevDay.Before(prevWeek) {
			prevWeek = prevDay
		}
	} else {
		text = lang.Format(cc.Lang.Get("page.schedule.empty"), map[string]string{
			"date": c.localizedDate(cc.Lang, date),
		})
	}

	buttons := c.navButtons(cc.Lang, navTargets{
		prevDay:   prevDay,
		nextDay:   nextDay,
		prevWeek:  prevWeek,
		nextWeek:  nextWeek,
		showToday: showToday,
	})

	return Page{
		Name:      PageEmptySchedule,
		Text:      text,
		Keyboard:  SplitRows(buttons, 2),
		ParseMode: models.ParseModeMarkdown,
		Data:      map[string]string{"date": api.FormatDate(date)},
	}
}

// ScheduleExtra composes the additional-information page for a day,
// collecting the announcement of every period that carries one.
func (c *Composer) ScheduleExtra(ctx context.Context, cc ChatCtx, date time.Time) Page {
	if cc.State.GroupID == nil {
		return c.InvalidGroup(cc)
	}

	dateStr := api.FormatDate(date)
	backAction := callback.Encode(ActionOpenScheduleDay, map[string]string{"date": dateStr})

	days, err := c.client.TimetableGroup(ctx, *cc.State.GroupID, dateStr, dateStr, cc.State.LangCode)
	if err != nil {
		return c.errorPage(cc, err, backAction)
	}

	var day *api.ScheduleDay
	for i := range days {
		if days[i].Date == dateStr {
			day = &days[i]
			break
		}
	}
	if day == nil {
		return c.EmptySchedule(ctx, cc, date, days)
	}

	var sections []string
	for _, lesson := range day.Lessons {
		for _, period := range lesson.Periods {
			if !period.ExtraText {
				continue
			}
			ad, err := c.client.TimetableAd(ctx, period.R1, dateStr, cc.State.LangCode)
			if err != nil {
				return c.errorPage(cc, err, backAction)
			}
			body := strings.TrimSpace(sanitizeHTML(ad.HTML))
			sections = append(sections, fmt.Sprintf("<b>%d)</b> %s", lesson.Number, body))
		}
	}

	text := lang.Format(cc.Lang.Get("page.schedule.extra"), map[string]string{
		"extra": strings.Join(sections, "\n\n"),
	})

	return Page{
		Name:               PageScheduleExtra,
		Text:               text,
		Keyboard:           [][]models.InlineKeyboardButton{row(btn(cc.Lang.Get("button.back"), backAction))},
		ParseMode:          models.ParseModeHTML,
		DisableLinkPreview: true,
		Data:               map[string]string{"date": dateStr},
	}
}

// TodaySchedule returns today's schedule day for the chat's group, or
// false when the day is absent from the window or empty. The class
// notifier uses it to decide whether a chat has classes to announce.
func (c *Composer) TodaySchedule(ctx context.Context, cc ChatCtx) (api.ScheduleDay, bool, error) {
	if cc.State.GroupID == nil {
		return api.ScheduleDay{}, false, nil
	}

	today := c.now()
	days, err := c.fetchWindow(ctx, cc, *cc.State.GroupID, today)
	if err != nil {
		return api.ScheduleDay{}, false, err
	}

	todayStr := api.FormatDate(today)
	for _, day := range days {
		if day.Date == todayStr {
			return day, !IsDayEmpty(day, c.cfg.HiddenMarker), nil
		}
	}
	return api.ScheduleDay{}, false, nil
}

// fetchWindow returns the schedule days of the bucketed window around
// date, serving from the cache when it fully covers the window and is
// fresh, and refreshing it from the remote API otherwise.
func (c *Composer) fetchWindow(ctx context.Context, cc ChatCtx, groupID int, date time.Time) ([]api.ScheduleDay, error) {
	from, to := api.DateRange(date, api.DefaultDateRange)
	fromStr, toStr := api.FormatDate(from), api.FormatDate(to)

	days, ok, err := c.cache.GetScheduleRange(ctx, groupID, cc.State.LangCode, fromStr, toStr, c.cfg.ScheduleCacheTTL)
	if err != nil {
		c.logger.Warn("Schedule cache read failed", "error", err, "group_id", groupID)
	} else if ok {
		return days, nil
	}

	days, err = c.client.TimetableGroup(ctx, groupID, fromStr, toStr, cc.State.LangCode)
	if err != nil {
		return nil, err
	}

	if err := c.cache.PutScheduleDays(ctx, groupID, cc.State.LangCode, days); err != nil {
		c.logger.Warn("Schedule cache write failed", "error", err, "group_id", groupID)
	}
	return days, nil
}

// errorPage maps a remote-API failure to its fallback page. backAction,
// when non-empty, is the target of the back button on pages that carry
// one.
func (c *Composer) errorPage(cc ChatCtx, err error, backAction string) Page {
	switch {
	case errors.Is(err, api.ErrValidation):
		return c.InvalidGroup(cc)
	case errors.Is(err, api.ErrForbidden):
		return c.Forbidden(cc, backAction)
	case errors.Is(err, api.ErrNotFound):
		return c.NotFound(cc, backAction)
	default:
		return c.APIUnavailable(cc)
	}
}

type navTargets struct {
	prevDay, nextDay   time.Time
	prevWeek, nextWeek time.Time
	showToday          bool
}

// navButtons builds the flat day and week navigation button sequence
// shared by the day page and the empty-range page.
func (c *Composer) navButtons(l lang.Language, t navTargets) []models.InlineKeyboardButton {
	buttons := []models.InlineKeyboardButton{
		btn(l.Get("button.navigation.day_previous"),
			callback.Encode(ActionOpenScheduleDay, map[string]string{"date": api.FormatDate(t.prevDay)})),
		btn(l.Get("button.navigation.day_next"),
			callback.Encode(ActionOpenScheduleDay, map[string]string{"date": api.FormatDate(t.nextDay)})),
		btn(l.Get("button.navigation.week_previous"),
			callback.Encode(ActionOpenScheduleDay, map[string]string{"date": api.FormatDate(t.prevWeek), "week": ""})),
		// rnd keeps week jumps that land on the same page distinct, so
		// the transport does not reject the edit as unmodified.
		btn(l.Get("button.navigation.week_next"),
			callback.Encode(ActionOpenScheduleDay, map[string]string{
				"date": api.FormatDate(t.nextWeek),
				"week": "",
				"rnd":  strconv.FormatUint(uint64(rand.Uint32()), 10),
			})),
		btn(l.Get("button.menu"), ActionOpenMenu),
	}
	if t.showToday {
		buttons = append(buttons, btn(l.Get("button.navigation.today"), ActionOpenScheduleToday))
	}
	return buttons
}

// renderDay formats every period of a day with the localized period
// template.
func (c *Composer) renderDay(ctx context.Context, l lang.Language, day api.ScheduleDay) string {
	var sb strings.Builder

	for _, lesson := range day.Lessons {
		for _, period := range lesson.Periods {
			sb.WriteString(lang.Format(l.Get("text.schedule.period"), map[string]string{
				"timeStart":    esc(orDefault(period.TimeStart, "??:??")),
				"timeEnd":      esc(orDefault(period.TimeEnd, "??:??")),
				"discipline":   esc(orDefault(period.DisciplineShortName, "Unknown discipline")),
				"type":         esc(orDefault(period.TypeStr, "?")),
				"lessonNumber": strconv.Itoa(lesson.Number),
				"classroom":    esc(period.Classroom),
				"teacher":      c.teacherLine(ctx, period.TeachersNameFull),
			}))
		}
	}

	sb.WriteString("`—――—――——―—―――—―—―――――――――`")
	return sb.String()
}

// teacherLine renders the teacher field of a period. Only the first of
// several comma-separated names is shown, with a "+N" suffix counting
// the rest, and it becomes a directory link when the name is known.
func (c *Composer) teacherLine(ctx context.Context, fullNames string) string {
	name := fullNames
	extra := 0
	if i := strings.Index(name, ", "); i >= 0 {
		extra = strings.Count(fullNames, ",")
		name = name[:i]
	}

	line := esc(name)
	if ref := c.lookupTeacher(ctx, name); ref != nil {
		line = "[" + line + "](" + ref.PageLink + ")"
	}
	if extra > 0 {
		line += " \\+" + strconv.Itoa(extra)
	}
	return line
}

// lookupTeacher resolves a teacher directory entry by normalized name.
// A cache miss falls through to the remote directory search; a name
// unknown there too is logged once per distinct name.
func (c *Composer) lookupTeacher(ctx context.Context, name string) *cache.TeacherRef {
	if name == "" {
		return nil
	}

	normalized := normalizeTeacherName(name)
	ref, err := c.cache.FindTeacher(ctx, normalized)
	if err != nil {
		c.logger.Warn("Teacher lookup failed", "error", err, "name", name)
		return nil
	}
	if ref != nil {
		return ref
	}

	if ref = c.searchTeacher(ctx, name, normalized); ref != nil {
		return ref
	}

	if _, seen := c.missingTeachers.LoadOrStore(normalized, struct{}{}); !seen {
		c.logger.Warn("Teacher not found in directory", "name", name)
	}
	return nil
}

// searchTeacher queries the remote directory for an exact normalized
// match and caches the hit. The service searches by last-name fragment,
// so only the first word of the display name is sent.
func (c *Composer) searchTeacher(ctx context.Context, name, normalized string) *cache.TeacherRef {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return nil
	}

	matches, err := c.client.SearchTeacher(ctx, fields[0])
	if err != nil {
		c.logger.Warn("Teacher search failed", "error", err, "name", name)
		return nil
	}

	for _, match := range matches {
		full := strings.TrimSpace(match.LastName + " " + match.FirstName + " " + match.SecondName)
		if match.PageLink == "" || normalizeTeacherName(full) != normalized {
			continue
		}

		ref := cache.TeacherRef{FullName: full, PageLink: match.PageLink}
		if err := c.cache.PutTeacher(ctx, normalized, ref); err != nil {
			c.logger.Warn("Failed to cache teacher", "error", err, "name", name)
		}
		return &ref
	}
	return nil
}

// normalizeTeacherName folds a display name into the directory key form.
func normalizeTeacherName(name string) string {
	return strings.ToLower(strings.Join(strings.Fields(name), " "))
}

// localizedDate renders a date heading like "*21\.08\.2023* `[`*Monday*`]`".
func (c *Composer) localizedDate(l lang.Language, date time.Time) string {
	weekday := (int(date.Weekday()) + 6) % 7
	return "*" + esc(date.Format("02.01.2006")) + "* `[`*" +
		l.Get("text.time.week_day."+strconv.Itoa(weekday)) + "*`]`"
}

// sameDay reports whether two instants fall on the same calendar date.
func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// dayAfter reports whether a falls on a later calendar date than b.
func dayAfter(a, b time.Time) bool {
	ay, ad := a.Year(), a.YearDay()
	by, bd := b.Year(), b.YearDay()
	return ay > by || (ay == by && ad > bd)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
