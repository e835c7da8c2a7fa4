package api

// ScheduleDay is a single calendar day of the group timetable.
type ScheduleDay struct {
	Date    string   `json:"date"`
	Lessons []Lesson `json:"lessons"`
}

// Lesson groups the periods held in one lesson slot.
type Lesson struct {
	Number  int      `json:"number"`
	Periods []Period `json:"periods"`
}

// Period describes one class: what, when, by whom and where.
type Period struct {
	R1                  int    `json:"r1"`
	DisciplineShortName string `json:"disciplineShortName"`
	DisciplineFullName  string `json:"disciplineFullName"`
	TypeStr             string `json:"typeStr"`
	TimeStart           string `json:"timeStart"`
	TimeEnd             string `json:"timeEnd"`
	TeachersName        string `json:"teachersName"`
	TeachersNameFull    string `json:"teachersNameFull"`
	Classroom           string `json:"classroom"`
	ExtraText           bool   `json:"extraText"`
}

// CallSlot is one row of the university call schedule.
type CallSlot struct {
	Number    int    `json:"number"`
	TimeStart string `json:"timeStart"`
	TimeEnd   string `json:"timeEnd"`
}

// Structure is a university structure (campus or institute).
type Structure struct {
	ID        int    `json:"id"`
	ShortName string `json:"shortName"`
	FullName  string `json:"fullName"`
}

// Faculty belongs to a structure.
type Faculty struct {
	ID        int    `json:"id"`
	ShortName string `json:"shortName"`
	FullName  string `json:"fullName"`
}

// Course is a course year available at a faculty.
type Course struct {
	Course int `json:"course"`
}

// Group is a student group.
type Group struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Course int    `json:"course"`
}

// Student is one member of a group.
type Student struct {
	ID         int    `json:"id"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	SecondName string `json:"secondName"`
}

// TeacherMatch is one result of the teacher directory search.
type TeacherMatch struct {
	LastName   string `json:"lastName"`
	FirstName  string `json:"firstName"`
	SecondName string `json:"secondName"`
	ChairName  string `json:"chairName"`
	PageLink   string `json:"pageLink"`
}

// Announcement is extra info attached to a period, usually an online
// meeting link.
type Announcement struct {
	HTML string `json:"html"`
}

// Version describes the remote API build.
type Version struct {
	Name string `json:"name"`
}
