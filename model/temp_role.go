package model

import "time"

// Temporary role statuses.
const (
	TempRoleStatusActive  = "active"
	TempRoleStatusRemoved = "removed"
)

// TemporaryRoleRecord tracks a role grant that expires on its own.
// At most one active record exists per (guild, user, role); re-granting
// extends ExpiresAt on the existing record instead of inserting a new one.
type TemporaryRoleRecord struct {
	ID             int64     `db:"id"`
	GuildID        string    `db:"guild_id"`
	UserID         string    `db:"user_id"`
	RoleID         string    `db:"role_id"`
	AssignedAt     time.Time `db:"assigned_at"`
	ExpiresAt      time.Time `db:"expires_at"`
	NotifyOnAssign bool      `db:"notify_on_assign"`
	NotifyOnExpiry bool      `db:"notify_on_expiry"`
	Status         string    `db:"status"`
}
