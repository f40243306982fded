package scheduler

import (
	"fmt"
	"time"

	"discord-role-scheduler/executor"
	"discord-role-scheduler/model"
	"discord-role-scheduler/schedule"
	"discord-role-scheduler/targets"
	"discord-role-scheduler/utils/database"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// TierLookup returns the effective target cap for an actor. The default
// keeps the base cap for everyone.
type TierLookup func(actorID string, baseCap int) int

// DefaultBaseTargetCap bounds how many members one operation may touch.
const DefaultBaseTargetCap = 500

// DefaultSnapshotTimeout bounds the wait for a fresh guild snapshot
// before falling back to the cached one.
const DefaultSnapshotTimeout = 30 * time.Second

// Options configures the scheduling service.
type Options struct {
	// SelfID is the bot's own user ID, exempt from the bot filter.
	SelfID          string
	BaseTargetCap   int
	TierLookup      TierLookup
	SnapshotTimeout time.Duration
}

// Service is the application-facing API: it creates, cancels and lists
// schedules and performs immediate temporary grants and removals.
type Service struct {
	db         *sqlx.DB
	exec       *executor.BulkExecutor
	snapshots  *snapshotFetcher
	selfID     string
	baseCap    int
	tierLookup TierLookup
	now        func() time.Time
}

// NewService wires the service against its store, executor and snapshot
// provider.
func NewService(db *sqlx.DB, exec *executor.BulkExecutor, provider SnapshotProvider, opts Options) *Service {
	if opts.BaseTargetCap <= 0 {
		opts.BaseTargetCap = DefaultBaseTargetCap
	}
	if opts.SnapshotTimeout <= 0 {
		opts.SnapshotTimeout = DefaultSnapshotTimeout
	}
	return &Service{
		db:         db,
		exec:       exec,
		snapshots:  newSnapshotFetcher(provider, opts.SnapshotTimeout),
		selfID:     opts.SelfID,
		baseCap:    opts.BaseTargetCap,
		tierLookup: opts.TierLookup,
		now:        time.Now,
	}
}

func (s *Service) effectiveCap(actorID string) int {
	if s.tierLookup != nil {
		return s.tierLookup(actorID, s.baseCap)
	}
	return s.baseCap
}

// resolveTargets classifies a target spec and materializes the concrete
// member set against a fresh guild snapshot.
func (s *Service) resolveTargets(guildID, specText, actorID string) ([]string, model.TargetKind, error) {
	snapshot, err := s.snapshots.fetch(guildID)
	if err != nil {
		return nil, "", err
	}
	resolution := targets.Resolve(specText, snapshot)
	ids, err := targets.Materialize(resolution, snapshot, targets.MaterializeOptions{
		SelfID: s.selfID,
		Cap:    s.effectiveCap(actorID),
	})
	if err != nil {
		return nil, resolution.Kind, err
	}
	return ids, resolution.Kind, nil
}

// CreateSchedule parses the schedule and target text, validates the
// target set, and persists a new schedule record. No remote mutation
// happens until the dispatcher picks the record up.
func (s *Service) CreateSchedule(guildID, actorID string, action model.RoleAction, roleID, targetSpecText string, scheduleType model.ScheduleType, scheduleText, reason string) (model.ScheduleRecord, error) {
	now := s.now()

	// Validate the target spec up front so a bad request fails before
	// anything is persisted.
	_, kind, err := s.resolveTargets(guildID, targetSpecText, actorID)
	if err != nil {
		return model.ScheduleRecord{}, err
	}

	record := model.ScheduleRecord{
		ID:           uuid.NewString(),
		GuildID:      guildID,
		ActorID:      actorID,
		Action:       action,
		RoleID:       roleID,
		TargetSpec:   targetSpecText,
		ResolvedKind: kind,
		ScheduleType: scheduleType,
		Status:       model.ScheduleStatusActive,
		Reason:       reason,
		CreatedAt:    now,
	}

	if scheduleType == model.ScheduleOneTime {
		at, err := schedule.ParseOneTime(scheduleText, now)
		if err != nil {
			return model.ScheduleRecord{}, err
		}
		record.OneTimeAt = &at
		record.NextRunAt = at
	} else {
		desc, err := schedule.ParseRecurring(scheduleType, scheduleText)
		if err != nil {
			return model.ScheduleRecord{}, err
		}
		record.Hour = desc.Hour
		record.Minute = desc.Minute
		record.DayOfWeek = desc.DayOfWeek
		record.DayOfMonth = desc.DayOfMonth
		record.IntervalMinutes = desc.IntervalMinutes
		record.NextRunAt = schedule.ComputeNextRun(desc, now, nil)
	}

	if err := database.AddSchedule(s.db, record); err != nil {
		return model.ScheduleRecord{}, err
	}
	return record, nil
}

// CancelSchedule soft-cancels a schedule; the record is kept for audit.
// An execution already in flight is not interrupted.
func (s *Service) CancelSchedule(id string) error {
	return database.CancelSchedule(s.db, id)
}

// DeleteSchedule hard-deletes a schedule record.
func (s *Service) DeleteSchedule(id string) error {
	return database.DeleteSchedule(s.db, id)
}

// AssignTemporary grants a role to the resolved targets for the given
// duration. Targets already holding an active temporary grant are renewed
// instead of re-granted.
func (s *Service) AssignTemporary(guildID, actorID, roleID, targetSpecText, durationText, reason string, notify, notifyExpiry bool) (executor.BulkResult, error) {
	duration, err := schedule.ParseDuration(durationText)
	if err != nil {
		return executor.BulkResult{}, err
	}
	ids, _, err := s.resolveTargets(guildID, targetSpecText, actorID)
	if err != nil {
		return executor.BulkResult{}, err
	}

	expiresAt := s.now().Add(duration)
	return s.exec.Execute(executor.Request{
		GuildID:        guildID,
		Action:         model.ActionAssign,
		RoleID:         roleID,
		TargetIDs:      ids,
		Reason:         reason,
		ExpiresAt:      &expiresAt,
		Notify:         notify,
		NotifyOnExpiry: notifyExpiry,
		NotifyMessage: fmt.Sprintf("You have been granted a temporary role until %s. Reason: %s",
			expiresAt.Format(time.RFC1123), reason),
	}), nil
}

// RemoveTemporary revokes a temporary grant from the resolved targets
// ahead of its expiry. Targets without an active grant report not-found.
func (s *Service) RemoveTemporary(guildID, roleID, targetSpecText, reason string, notify bool) (executor.BulkResult, error) {
	ids, _, err := s.resolveTargets(guildID, targetSpecText, "")
	if err != nil {
		return executor.BulkResult{}, err
	}

	return s.exec.Execute(executor.Request{
		GuildID:             guildID,
		Action:              model.ActionRevoke,
		RoleID:              roleID,
		TargetIDs:           ids,
		Reason:              reason,
		RequireActiveRecord: true,
		Notify:              notify,
		NotifyMessage:       fmt.Sprintf("Your temporary role has been removed. Reason: %s", reason),
	}), nil
}

// ListActiveSchedules returns the active schedules of a guild.
func (s *Service) ListActiveSchedules(guildID string) ([]model.ScheduleRecord, error) {
	return database.ListActiveSchedules(s.db, guildID)
}

// ListTemporaryGrants returns the active temporary grants of a guild,
// optionally filtered to one user.
func (s *Service) ListTemporaryGrants(guildID, userID string) ([]model.TemporaryRoleRecord, error) {
	return database.ListTempRoles(s.db, guildID, userID)
}
