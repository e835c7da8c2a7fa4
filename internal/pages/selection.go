package pages

import (
	"context"
	"strconv"

	"github.com/go-telegram/bot/models"

	"github.com/rozkladbot/rozkladbot/internal/callback"
)

// StructureList opens the group selection flow. A university with a
// single structure skips straight to its faculties.
func (c *Composer) StructureList(ctx context.Context, cc ChatCtx) Page {
	structures, err := c.client.ListStructures(ctx, cc.State.LangCode)
	if err != nil {
		return c.errorPage(cc, err, "")
	}

	if len(structures) == 1 {
		return c.FacultyList(ctx, cc, structures[0].ID)
	}

	keyboard := [][]models.InlineKeyboardButton{
		row(btn(cc.Lang.Get("button.back"), ActionOpenMenu)),
	}
	for _, structure := range structures {
		keyboard = append(keyboard, row(btn(structure.FullName,
			callback.Encode(ActionSelectStructure, map[string]string{
				"structureId": strconv.Itoa(structure.ID),
			}))))
	}

	return Page{
		Name:      PageStructures,
		Text:      cc.Lang.Get("page.structure"),
		Keyboard:  keyboard,
		ParseMode: models.ParseModeMarkdown,
	}
}

// FacultyList lists the faculties of a structure. The back button skips
// the structure page when it would have auto-forwarded anyway.
func (c *Composer) FacultyList(ctx context.Context, cc ChatCtx, structureID int) Page {
	faculties, err := c.client.ListFaculties(ctx, structureID, cc.State.LangCode)
	if err != nil {
		return c.errorPage(cc, err, "")
	}
	structures, err := c.client.ListStructures(ctx, cc.State.LangCode)
	if err != nil {
		return c.errorPage(cc, err, "")
	}

	backTarget := ActionOpenMenu
	if len(structures) > 1 {
		backTarget = ActionOpenSelectGroup
	}

	keyboard := [][]models.InlineKeyboardButton{
		row(btn(cc.Lang.Get("button.back"), backTarget)),
	}
	for _, faculty := range faculties {
		keyboard = append(keyboard, row(btn(faculty.FullName,
			callback.Encode(ActionSelectFaculty, map[string]string{
				"structureId": strconv.Itoa(structureID),
				"facultyId":   strconv.Itoa(faculty.ID),
			}))))
	}

	return Page{
		Name:      PageFaculties,
		Text:      cc.Lang.Get("page.faculty"),
		Keyboard:  keyboard,
		ParseMode: models.ParseModeMarkdown,
	}
}

// CourseList lists the course years of a faculty.
func (c *Composer) CourseList(ctx context.Context, cc ChatCtx, structureID, facultyID int) Page {
	courses, err := c.client.ListCourses(ctx, facultyID, cc.State.LangCode)
	if err != nil {
		return c.errorPage(cc, err, "")
	}

	keyboard := [][]models.InlineKeyboardButton{
		row(btn(cc.Lang.Get("button.back"),
			callback.Encode(ActionSelectStructure, map[string]string{
				"structureId": strconv.Itoa(structureID),
			}))),
	}
	for _, course := range courses {
		keyboard = append(keyboard, row(btn(strconv.Itoa(course.Course),
			callback.Encode(ActionSelectCourse, map[string]string{
				"structureId": strconv.Itoa(structureID),
				"facultyId":   strconv.Itoa(facultyID),
				"course":      strconv.Itoa(course.Course),
			}))))
	}

	return Page{
		Name:      PageCourses,
		Text:      cc.Lang.Get("page.course"),
		Keyboard:  keyboard,
		ParseMode: models.ParseModeMarkdown,
	}
}

// GroupList lists the groups of a faculty course in three-wide rows and
// feeds the group directory cache so later pages can resolve group
// names offline.
func (c *Composer) GroupList(ctx context.Context, cc ChatCtx, structureID, facultyID, course int) Page {
	groups, err := c.client.ListGroups(ctx, facultyID, course, cc.State.LangCode)
	if err != nil {
		return c.errorPage(cc, err, "")
	}

	if err := c.cache.AddGroups(ctx, facultyID, course, groups); err != nil {
		c.logger.Warn("Group cache write failed", "error", err, "faculty_id", facultyID)
	}

	keyboard := [][]models.InlineKeyboardButton{
		row(btn(cc.Lang.Get("button.back"),
			callback.Encode(ActionSelectFaculty, map[string]string{
				"structureId": strconv.Itoa(structureID),
				"facultyId":   strconv.Itoa(facultyID),
			}))),
	}

	groupButtons := make([]models.InlineKeyboardButton, 0, len(groups))
	for _, group := range groups {
		groupButtons = append(groupButtons, btn(group.Name,
			callback.Encode(ActionSelectGroup, map[string]string{
				"groupId": strconv.Itoa(group.ID),
			})))
	}
	keyboard = append(keyboard, SplitRows(groupButtons, 3)...)

	return Page{
		Name:      PageGroups,
		Text:      cc.Lang.Get("page.group"),
		Keyboard:  keyboard,
		ParseMode: models.ParseModeMarkdown,
	}
}
