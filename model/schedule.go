package model

import "time"

// RoleAction is the mutation a schedule applies to its targets.
type RoleAction string

const (
	ActionAssign RoleAction = "assign"
	ActionRevoke RoleAction = "revoke"
)

// ScheduleType selects how a schedule's next run time is derived.
type ScheduleType string

const (
	ScheduleOneTime ScheduleType = "one_time"
	ScheduleDaily   ScheduleType = "daily"
	ScheduleWeekly  ScheduleType = "weekly"
	ScheduleMonthly ScheduleType = "monthly"
	ScheduleCustom  ScheduleType = "custom"
)

// TargetKind classifies how a target specification was expressed.
type TargetKind string

const (
	TargetUsers    TargetKind = "users"
	TargetRole     TargetKind = "role"
	TargetEveryone TargetKind = "everyone"
	TargetMixed    TargetKind = "mixed"
)

// Schedule statuses. A one-time schedule moves to completed after firing;
// recurring schedules stay active until cancelled.
const (
	ScheduleStatusActive    = "active"
	ScheduleStatusCancelled = "cancelled"
	ScheduleStatusCompleted = "completed"
)

// ScheduleRecord describes a pending or recurring role mutation.
// The schedule configuration is stored flattened; which columns are
// meaningful depends on ScheduleType.
type ScheduleRecord struct {
	ID              string       `db:"id"`
	GuildID         string       `db:"guild_id"`
	ActorID         string       `db:"actor_id"`
	Action          RoleAction   `db:"action"`
	RoleID          string       `db:"role_id"`
	TargetSpec      string       `db:"target_spec"`
	ResolvedKind    TargetKind   `db:"resolved_kind"`
	ScheduleType    ScheduleType `db:"schedule_type"`
	OneTimeAt       *time.Time   `db:"one_time_at"`
	Hour            int          `db:"hour"`
	Minute          int          `db:"minute"`
	DayOfWeek       int          `db:"day_of_week"`
	DayOfMonth      int          `db:"day_of_month"`
	IntervalMinutes int          `db:"interval_minutes"`
	NextRunAt       time.Time    `db:"next_run_at"`
	LastRunAt       *time.Time   `db:"last_run_at"`
	Status          string       `db:"status"`
	Reason          string       `db:"reason"`
	CreatedAt       time.Time    `db:"created_at"`
}
