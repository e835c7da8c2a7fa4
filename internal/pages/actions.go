package pages

// Action names carried in button payloads. They are part of the external
// contract: a button a page emits today must still route correctly when
// tapped weeks later, so these names never change meaning.
const (
	ActionOpenMenu          = "open.menu"
	ActionOpenMore          = "open.more"
	ActionOpenInfo          = "open.info"
	ActionOpenCalls         = "open.calls"
	ActionOpenStudents      = "open.students_list"
	ActionOpenSettings      = "open.settings"
	ActionOpenSelectLang    = "open.select_lang"
	ActionOpenSelectGroup   = "open.select_group"
	ActionOpenScheduleToday = "open.schedule.today"
	ActionOpenScheduleDay   = "open.schedule.day"
	ActionOpenScheduleExtra = "open.schedule.extra"

	ActionSelectStructure = "select.schedule.structure"
	ActionSelectFaculty   = "select.schedule.faculty"
	ActionSelectCourse    = "select.schedule.course"
	ActionSelectGroup     = "select.schedule.group"
	ActionSelectLang      = "select.lang"

	ActionSetClassNotif = "set.cl_notif"

	ActionAdminOpenPanel  = "admin.open_panel"
	ActionAdminClearCache = "admin.clear_cache"
)

// Page kind names used in the message history log.
const (
	PageMenu          = "menu"
	PageMore          = "more"
	PageInfo          = "info"
	PageGreeting      = "greeting"
	PageCalls         = "calls"
	PageStudents      = "students_list"
	PageSettings      = "settings"
	PageLangSelect    = "lang_select"
	PageStructures    = "structures"
	PageFaculties     = "faculties"
	PageCourses       = "courses"
	PageGroups        = "groups"
	PageSchedule      = "schedule"
	PageEmptySchedule = "empty_schedule"
	PageScheduleExtra = "schedule_extra"
	PageNotification  = "classes_notification"
	PageAdminPanel    = "admin_panel"
	PageInvalidGroup  = "invalid_group"
	PageForbidden     = "forbidden"
	PageNotFound      = "not_found"
	PageUnavailable   = "api_unavailable"
	PageError         = "error"
	PageAccessDenied  = "access_denied"
)
