package database

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"discord-role-scheduler/model"

	"github.com/jmoiron/sqlx"
)

// GetActiveTempRole retrieves the active temporary-role record for a
// (guild, user, role) tuple, or nil if there is none.
func GetActiveTempRole(db *sqlx.DB, guildID, userID, roleID string) (*model.TemporaryRoleRecord, error) {
	var record model.TemporaryRoleRecord
	query := `SELECT * FROM temp_roles WHERE guild_id = ? AND user_id = ?
              AND role_id = ? AND status = ?`
	err := db.Get(&record, query, guildID, userID, roleID, model.TempRoleStatusActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get temp role for user %s in guild %s: %w", userID, guildID, err)
	}
	return &record, nil
}

// AddTempRole inserts a new temporary-role record and returns its ID.
func AddTempRole(db *sqlx.DB, record model.TemporaryRoleRecord) (int64, error) {
	query := `INSERT INTO temp_roles (guild_id, user_id, role_id, assigned_at,
              expires_at, notify_on_assign, notify_on_expiry, status)
              VALUES (:guild_id, :user_id, :role_id, :assigned_at,
              :expires_at, :notify_on_assign, :notify_on_expiry, :status)`

	result, err := db.NamedExec(query, record)
	if err != nil {
		return 0, fmt.Errorf("failed to insert temp role: %w", err)
	}
	return result.LastInsertId()
}

// RenewTempRole extends an active record's expiry. Used when a user who
// already holds the role is granted it again.
func RenewTempRole(db *sqlx.DB, id int64, expiresAt time.Time) error {
	query := "UPDATE temp_roles SET expires_at = ? WHERE id = ? AND status = ?"
	_, err := db.Exec(query, expiresAt, id, model.TempRoleStatusActive)
	if err != nil {
		return fmt.Errorf("failed to renew temp role %d: %w", id, err)
	}
	return nil
}

// GetDueTempRoles retrieves all active records whose expiry is at or
// before now.
func GetDueTempRoles(db *sqlx.DB, now time.Time) ([]model.TemporaryRoleRecord, error) {
	var records []model.TemporaryRoleRecord
	query := "SELECT * FROM temp_roles WHERE status = ? AND expires_at <= ?"
	err := db.Select(&records, query, model.TempRoleStatusActive, now)
	if err != nil {
		return nil, fmt.Errorf("failed to get due temp roles: %w", err)
	}
	return records, nil
}

// MarkTempRoleRemoved transitions a record out of active. It reports
// whether this call made the transition; false means another pass already
// handled the record, which callers treat as "skip, not an error".
func MarkTempRoleRemoved(db *sqlx.DB, id int64) (bool, error) {
	query := "UPDATE temp_roles SET status = ? WHERE id = ? AND status = ?"
	result, err := db.Exec(query, model.TempRoleStatusRemoved, id, model.TempRoleStatusActive)
	if err != nil {
		return false, fmt.Errorf("failed to mark temp role %d removed: %w", id, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check rows affected for temp role %d: %w", id, err)
	}
	return rowsAffected > 0, nil
}

// ListTempRoles retrieves active temporary grants for a guild, optionally
// filtered to one user.
func ListTempRoles(db *sqlx.DB, guildID, userID string) ([]model.TemporaryRoleRecord, error) {
	var records []model.TemporaryRoleRecord
	var err error
	if userID != "" {
		query := `SELECT * FROM temp_roles WHERE guild_id = ? AND user_id = ?
                  AND status = ? ORDER BY expires_at`
		err = db.Select(&records, query, guildID, userID, model.TempRoleStatusActive)
	} else {
		query := `SELECT * FROM temp_roles WHERE guild_id = ? AND status = ?
                  ORDER BY expires_at`
		err = db.Select(&records, query, guildID, model.TempRoleStatusActive)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list temp roles for guild %s: %w", guildID, err)
	}
	return records, nil
}
