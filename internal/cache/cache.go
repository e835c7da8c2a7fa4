// Package cache provides the sqlite-backed caches for remote API data:
// fetched schedule windows, group directory entries and the teacher
// directory. The remote service is slow and rate limited, so pages read
// through this cache before hitting it.
package cache

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite3 "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/rozkladbot/rozkladbot/internal/api"
	"github.com/rozkladbot/rozkladbot/migrations"
)

// Cache wraps the sqlite connection holding all cached API data.
type Cache struct {
	db     *sqlx.DB
	logger *slog.Logger
}

// New opens the cache database at path and applies migrations.
func New(path string, logger *slog.Logger) (*Cache, error) {
	if logger == nil {
		logger = slog.Default()
	}
	log := logger.With("component", "cache")

	db, err := sqlx.Connect("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to cache database: %w", err)
	}

	// SQLite does not support concurrent writers.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := applyMigrations(db.DB); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			log.Error("Error closing cache database after migration failure", "error", closeErr)
		}
		return nil, fmt.Errorf("failed to apply cache migrations: %w", err)
	}

	log.Info("Cache database ready", "path", path)
	return &Cache{db: db, logger: log}, nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	return c.db.Close()
}

func applyMigrations(db *sql.DB) error {
	sourceDriver, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	dbDriver, err := migratesqlite3.WithInstance(db, &migratesqlite3.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite migration driver: %w", err)
	}

	migrator, err := migrate.NewWithInstance("iofs", sourceDriver, "sqlite3", dbDriver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := migrator.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// scheduleRow mirrors the group_schedule table.
type scheduleRow struct {
	GroupID  int    `db:"group_id"`
	Date     string `db:"date"`
	Language string `db:"language"`
	Lessons  string `db:"lessons"`
	Updated  int64  `db:"updated"`
}

// PutScheduleDays stores one fetched window, one row per day, replacing
// stale rows for the same key.
func (c *Cache) PutScheduleDays(ctx context.Context, groupID int, lang string, days []api.ScheduleDay) error {
	tx, err := c.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if tx != nil {
			if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
				c.logger.WarnContext(ctx, "Error rolling back transaction", "error", rollbackErr)
			}
		}
	}()

	now := time.Now().Unix()
	for _, day := range days {
		lessons, err := json.Marshal(day.Lessons)
		if err != nil {
			return fmt.Errorf("failed to encode lessons for %s: %w", day.Date, err)
		}
		_, err = tx.NamedExecContext(ctx, `
            INSERT OR REPLACE INTO group_schedule (group_id, date, language, lessons, updated)
            VALUES (:group_id, :date, :language, :lessons, :updated);
        `, scheduleRow{GroupID: groupID, Date: day.Date, Language: lang, Lessons: string(lessons), Updated: now})
		if err != nil {
			return fmt.Errorf("failed to store schedule day %s: %w", day.Date, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	tx = nil

	c.logger.DebugContext(ctx, "Cached schedule window", "group_id", groupID, "days", len(days))
	return nil
}

// GetScheduleRange returns the cached days covering [dateStart, dateEnd]
// inclusive. The second return value reports a usable hit: every day of
// the range present and no row older than maxAge.
func (c *Cache) GetScheduleRange(ctx context.Context, groupID int, lang, dateStart, dateEnd string, maxAge time.Duration) ([]api.ScheduleDay, bool, error) {
	var rows []scheduleRow
	err := c.db.SelectContext(ctx, &rows, `
        SELECT group_id, date, language, lessons, updated
        FROM group_schedule
        WHERE group_id = ? AND language = ? AND date >= ? AND date <= ?
        ORDER BY date;
    `, groupID, lang, dateStart, dateEnd)
	if err != nil {
		return nil, false, fmt.Errorf("failed to query schedule cache: %w", err)
	}

	from, err := api.ParseDate(dateStart)
	if err != nil {
		return nil, false, err
	}
	to, err := api.ParseDate(dateEnd)
	if err != nil {
		return nil, false, err
	}
	wantDays := int(to.Sub(from).Hours()/24) + 1
	if len(rows) < wantDays {
		return nil, false, nil
	}

	oldest := time.Now().Add(-maxAge).Unix()
	days := make([]api.ScheduleDay, 0, len(rows))
	for _, row := range rows {
		if row.Updated < oldest {
			return nil, false, nil
		}
		var lessons []api.Lesson
		if err := json.Unmarshal([]byte(row.Lessons), &lessons); err != nil {
			return nil, false, fmt.Errorf("failed to decode cached lessons for %s: %w", row.Date, err)
		}
		days = append(days, api.ScheduleDay{Date: row.Date, Lessons: lessons})
	}
	return days, true, nil
}

// AddGroups upserts group directory entries seen while listing a faculty
// course, so the settings page can later resolve a stored group id to its
// name without another API round trip.
func (c *Cache) AddGroups(ctx context.Context, facultyID, course int, groups []api.Group) error {
	for _, g := range groups {
		_, err := c.db.ExecContext(ctx, `
            INSERT OR REPLACE INTO groups (id, name, faculty_id, course)
            VALUES (?, ?, ?, ?);
        `, g.ID, g.Name, facultyID, course)
		if err != nil {
			return fmt.Errorf("failed to store group %d: %w", g.ID, err)
		}
	}
	return nil
}

// GetGroup resolves a group id to its cached directory entry. Returns
// nil without error when the group was never cached.
func (c *Cache) GetGroup(ctx context.Context, groupID int) (*api.Group, error) {
	var g api.Group
	err := c.db.GetContext(ctx, &g, `SELECT id, name, course FROM groups WHERE id = ?;`, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query group %d: %w", groupID, err)
	}
	return &g, nil
}

// TeacherRef is a teacher directory entry: the display name plus the
// university page the schedule links to.
type TeacherRef struct {
	FullName string `db:"full_name"`
	PageLink string `db:"page_link"`
}

// FindTeacher looks up a directory entry by normalized name. Returns nil
// without error when the teacher is unknown.
func (c *Cache) FindTeacher(ctx context.Context, normalizedName string) (*TeacherRef, error) {
	var t TeacherRef
	err := c.db.GetContext(ctx, &t, `
        SELECT full_name, page_link FROM teachers WHERE normalized_name = ?;
    `, normalizedName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query teacher %q: %w", normalizedName, err)
	}
	return &t, nil
}

// PutTeacher upserts a teacher directory entry.
func (c *Cache) PutTeacher(ctx context.Context, normalizedName string, ref TeacherRef) error {
	_, err := c.db.ExecContext(ctx, `
        INSERT OR REPLACE INTO teachers (normalized_name, full_name, page_link)
        VALUES (?, ?, ?);
    `, normalizedName, ref.FullName, ref.PageLink)
	if err != nil {
		return fmt.Errorf("failed to store teacher %q: %w", normalizedName, err)
	}
	return nil
}

// Clear drops all cached API data. Bound to the admin clear-cache action.
func (c *Cache) Clear(ctx context.Context) error {
	for _, table := range []string{"group_schedule", "groups", "teachers"} {
		if _, err := c.db.ExecContext(ctx, "DELETE FROM "+table+";"); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	c.logger.InfoContext(ctx, "Cache cleared")
	return nil
}
