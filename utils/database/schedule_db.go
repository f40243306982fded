package database

import (
	"fmt"
	"time"

	"discord-role-scheduler/model"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
)

// InitSchedulerDB opens the scheduler database and ensures its tables exist.
func InitSchedulerDB(dbPath string) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to scheduler database: %w", err)
	}

	schema := `
    CREATE TABLE IF NOT EXISTS schedules (
        id TEXT PRIMARY KEY,
        guild_id TEXT NOT NULL,
        actor_id TEXT NOT NULL,
        action TEXT NOT NULL,
        role_id TEXT NOT NULL,
        target_spec TEXT NOT NULL,
        resolved_kind TEXT NOT NULL,
        schedule_type TEXT NOT NULL,
        one_time_at DATETIME,
        hour INTEGER NOT NULL DEFAULT 0,
        minute INTEGER NOT NULL DEFAULT 0,
        day_of_week INTEGER NOT NULL DEFAULT 0,
        day_of_month INTEGER NOT NULL DEFAULT 0,
        interval_minutes INTEGER NOT NULL DEFAULT 0,
        next_run_at DATETIME NOT NULL,
        last_run_at DATETIME,
        status TEXT NOT NULL,
        reason TEXT NOT NULL DEFAULT '',
        created_at DATETIME NOT NULL
    );
    CREATE TABLE IF NOT EXISTS temp_roles (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        guild_id TEXT NOT NULL,
        user_id TEXT NOT NULL,
        role_id TEXT NOT NULL,
        assigned_at DATETIME NOT NULL,
        expires_at DATETIME NOT NULL,
        notify_on_assign INTEGER NOT NULL DEFAULT 0,
        notify_on_expiry INTEGER NOT NULL DEFAULT 0,
        status TEXT NOT NULL
    );`

	if _, err = db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create scheduler tables: %w", err)
	}

	return db, nil
}

// AddSchedule inserts a new schedule record.
func AddSchedule(db *sqlx.DB, record model.ScheduleRecord) error {
	query := `INSERT INTO schedules (id, guild_id, actor_id, action, role_id,
              target_spec, resolved_kind, schedule_type, one_time_at, hour,
              minute, day_of_week, day_of_month, interval_minutes, next_run_at,
              last_run_at, status, reason, created_at)
              VALUES (:id, :guild_id, :actor_id, :action, :role_id,
              :target_spec, :resolved_kind, :schedule_type, :one_time_at, :hour,
              :minute, :day_of_week, :day_of_month, :interval_minutes, :next_run_at,
              :last_run_at, :status, :reason, :created_at)`

	if _, err := db.NamedExec(query, record); err != nil {
		return fmt.Errorf("failed to insert schedule: %w", err)
	}
	return nil
}

// GetSchedule retrieves a single schedule by ID.
func GetSchedule(db *sqlx.DB, id string) (model.ScheduleRecord, error) {
	var record model.ScheduleRecord
	err := db.Get(&record, "SELECT * FROM schedules WHERE id = ?", id)
	if err != nil {
		return model.ScheduleRecord{}, fmt.Errorf("failed to get schedule %s: %w", id, err)
	}
	return record, nil
}

// GetDueSchedules retrieves all active schedules whose next run is at or
// before now.
func GetDueSchedules(db *sqlx.DB, now time.Time) ([]model.ScheduleRecord, error) {
	var records []model.ScheduleRecord
	query := "SELECT * FROM schedules WHERE status = ? AND next_run_at <= ?"
	err := db.Select(&records, query, model.ScheduleStatusActive, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get due schedules: %w", err)
	}
	return records, nil
}

// MarkScheduleFired records an execution: last_run_at is set to firedAt and
// either the next run is advanced (recurring) or the schedule is completed
// (one-time). The update only applies while the record is still active, so
// a concurrent cancel wins and the fire is not recorded over it.
func MarkScheduleFired(db *sqlx.DB, id string, firedAt, nextRunAt time.Time, completed bool) error {
	status := model.ScheduleStatusActive
	if completed {
		status = model.ScheduleStatusCompleted
	}
	query := `UPDATE schedules SET last_run_at = ?, next_run_at = ?, status = ?
              WHERE id = ? AND status = ?`
	_, err := db.Exec(query, firedAt, nextRunAt, status, id, model.ScheduleStatusActive)
	if err != nil {
		return fmt.Errorf("failed to mark schedule %s fired: %w", id, err)
	}
	return nil
}

// CancelSchedule soft-cancels an active schedule. The record is retained.
func CancelSchedule(db *sqlx.DB, id string) error {
	query := "UPDATE schedules SET status = ? WHERE id = ? AND status = ?"
	result, err := db.Exec(query, model.ScheduleStatusCancelled, id, model.ScheduleStatusActive)
	if err != nil {
		return fmt.Errorf("failed to cancel schedule %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for schedule %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no active schedule found with id %s", id)
	}
	return nil
}

// DeleteSchedule hard-deletes a schedule regardless of status.
func DeleteSchedule(db *sqlx.DB, id string) error {
	result, err := db.Exec("DELETE FROM schedules WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule %s: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected for schedule %s: %w", id, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("no schedule found with id %s", id)
	}
	return nil
}

// ListActiveSchedules retrieves all active schedules for a guild, soonest
// first.
func ListActiveSchedules(db *sqlx.DB, guildID string) ([]model.ScheduleRecord, error) {
	var records []model.ScheduleRecord
	query := `SELECT * FROM schedules WHERE guild_id = ? AND status = ?
              ORDER BY next_run_at`
	err := db.Select(&records, query, guildID, model.ScheduleStatusActive)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules for guild %s: %w", guildID, err)
	}
	return records, nil
}
