// Package api implements the client for the university timetable REST
// service. Every call is synchronous and bounded by the client timeout;
// failures are classified into the sentinel errors of this package and
// are never retried here.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// DefaultLanguage is sent as Accept-Language when the caller gives none.
const DefaultLanguage = "uk"

// SupportedVersion is the remote API version this client is written
// against.
const SupportedVersion = "1.6.1"

// Client talks to the timetable REST service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a timetable API client. timeout bounds every request
// including body read.
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "api_client"),
	}
}

// doRequest handles the request/response cycle with status classification.
func (c *Client) doRequest(ctx context.Context, method, path, lang string, body, response any) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if lang == "" {
		lang = DefaultLanguage
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept-Language", lang)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "API request failed", "path", path, "error", err)
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.WarnContext(ctx, "API returned error status", "path", path, "status", resp.StatusCode)
		return classifyStatus(resp.StatusCode)
	}

	if response == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(response); err != nil {
		return fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	return nil
}

// TimetableGroup returns the group schedule for the inclusive date range.
// Dates are ISO-8601 calendar dates; dateEnd equal to dateStart fetches a
// single day.
func (c *Client) TimetableGroup(ctx context.Context, groupID int, dateStart, dateEnd, lang string) ([]ScheduleDay, error) {
	var days []ScheduleDay
	err := c.doRequest(ctx, http.MethodPost, "/time-table/group", lang, map[string]any{
		"groupId":   groupID,
		"dateStart": dateStart,
		"dateEnd":   dateEnd,
	}, &days)
	if err != nil {
		return nil, err
	}
	return days, nil
}

// TimetableCallSchedule returns the university-wide call schedule.
func (c *Client) TimetableCallSchedule(ctx context.Context) ([]CallSlot, error) {
	var calls []CallSlot
	err := c.doRequest(ctx, http.MethodPost, "/time-table/call-schedule", "", nil, &calls)
	if err != nil {
		return nil, err
	}
	return calls, nil
}

// TimetableAd returns the announcement attached to a period, usually an
// online meeting link. classCode is the period r1 value.
func (c *Client) TimetableAd(ctx context.Context, classCode int, date, lang string) (*Announcement, error) {
	var ad Announcement
	err := c.doRequest(ctx, http.MethodPost, "/time-table/schedule-ad", lang, map[string]any{
		"r1": classCode,
		"r2": date,
	}, &ad)
	if err != nil {
		return nil, err
	}
	return &ad, nil
}

// ListStructures returns the university structures.
func (c *Client) ListStructures(ctx context.Context, lang string) ([]Structure, error) {
	var structures []Structure
	err := c.doRequest(ctx, http.MethodGet, "/list/structures", lang, nil, &structures)
	if err != nil {
		return nil, err
	}
	return structures, nil
}

// ListFaculties returns the faculties of a structure.
func (c *Client) ListFaculties(ctx context.Context, structureID int, lang string) ([]Faculty, error) {
	var faculties []Faculty
	err := c.doRequest(ctx, http.MethodPost, "/list/faculties", lang, map[string]any{
		"structureId": structureID,
	}, &faculties)
	if err != nil {
		return nil, err
	}
	return faculties, nil
}

// ListCourses returns the course years available at a faculty.
func (c *Client) ListCourses(ctx context.Context, facultyID int, lang string) ([]Course, error) {
	var courses []Course
	err := c.doRequest(ctx, http.MethodPost, "/list/courses", lang, map[string]any{
		"facultyId": facultyID,
	}, &courses)
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// ListGroups returns the groups of a faculty course.
func (c *Client) ListGroups(ctx context.Context, facultyID, course int, lang string) ([]Group, error) {
	var groups []Group
	err := c.doRequest(ctx, http.MethodPost, "/list/groups", lang, map[string]any{
		"facultyId": facultyID,
		"course":    course,
	}, &groups)
	if err != nil {
		return nil, err
	}
	return groups, nil
}

// ListStudentsByGroup returns all students of a group.
func (c *Client) ListStudentsByGroup(ctx context.Context, groupID int, lang string) ([]Student, error) {
	var students []Student
	err := c.doRequest(ctx, http.MethodPost, "/list/students-by-group", lang, map[string]any{
		"groupId": groupID,
	}, &students)
	if err != nil {
		return nil, err
	}
	return students, nil
}

// SearchTeacher looks up teachers by a last-name fragment. The match is
// case-insensitive and the service returns at most the first 50 hits.
func (c *Client) SearchTeacher(ctx context.Context, name string) ([]TeacherMatch, error) {
	var teachers []TeacherMatch
	err := c.doRequest(ctx, http.MethodPost, "/other/search-teachers", "", map[string]any{
		"name": name,
	}, &teachers)
	if err != nil {
		return nil, err
	}
	return teachers, nil
}

// GetVersion returns the remote API build description.
func (c *Client) GetVersion(ctx context.Context) (*Version, error) {
	var v Version
	err := c.doRequest(ctx, http.MethodGet, "/version", "", nil, &v)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
