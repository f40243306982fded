package scheduler

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"discord-role-scheduler/executor"
	"discord-role-scheduler/model"
	"discord-role-scheduler/schedule"
	"discord-role-scheduler/targets"
	"discord-role-scheduler/utils/database"

	"github.com/robfig/cron/v3"
)

// DefaultTickSpec runs the dispatcher once a minute.
const DefaultTickSpec = "@every 1m"

// Dispatcher is the control loop: each tick fires due schedules and
// revokes expired temporary grants. Ticks are serialized; a tick that
// would overlap a running one is skipped by the cron chain.
type Dispatcher struct {
	svc      *Service
	tickSpec string
	cron     *cron.Cron
	mu       sync.Mutex
}

// NewDispatcher creates a dispatcher over the service's store, executor
// and snapshot cache.
func NewDispatcher(svc *Service, tickSpec string) *Dispatcher {
	if tickSpec == "" {
		tickSpec = DefaultTickSpec
	}
	return &Dispatcher{svc: svc, tickSpec: tickSpec}
}

// Start begins the periodic tick.
func (d *Dispatcher) Start() error {
	c := cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.PrintfLogger(log.Default())),
	))
	if _, err := c.AddFunc(d.tickSpec, func() { d.Tick(d.svc.now()) }); err != nil {
		return fmt.Errorf("failed to schedule dispatcher tick: %w", err)
	}
	c.Start()
	d.cron = c
	log.Printf("Dispatcher started, tick spec %q", d.tickSpec)
	return nil
}

// Stop halts the tick loop and waits for an in-flight tick to finish.
func (d *Dispatcher) Stop() {
	if d.cron == nil {
		return
	}
	log.Println("Stopping dispatcher...")
	<-d.cron.Stop().Done()
	log.Println("Dispatcher stopped.")
}

// Tick processes everything due at now. Safe to call repeatedly: records
// leave the due set by status transition, so re-processing an already
// handled record is a no-op. A failure on one record never blocks the
// rest of the tick.
func (d *Dispatcher) Tick(now time.Time) {
	d.mu.Lock()
	defer d.mu.Unlock()

	due, err := database.GetDueSchedules(d.svc.db, now)
	if err != nil {
		log.Printf("Error getting due schedules: %v", err)
	}
	for _, record := range due {
		if err := d.fireSchedule(record, now); err != nil {
			log.Printf("Error firing schedule %s: %v", record.ID, err)
		}
	}

	expired, err := database.GetDueTempRoles(d.svc.db, now)
	if err != nil {
		log.Printf("Error getting expired temp roles: %v", err)
	}
	for _, record := range expired {
		d.expireTempRole(record)
	}
}

func (d *Dispatcher) fireSchedule(record model.ScheduleRecord, now time.Time) error {
	// Membership may have shifted since creation, so the target spec is
	// re-resolved against a fresh snapshot on every fire.
	ids, _, err := d.svc.resolveTargets(record.GuildID, record.TargetSpec, record.ActorID)
	switch {
	case errors.Is(err, targets.ErrNoTargets):
		// Nothing to mutate right now; the schedule still advances so it
		// does not re-fire every tick.
		log.Printf("Schedule %s resolved to no targets, skipping execution", record.ID)
	case err != nil:
		return err
	default:
		result := d.svc.exec.Execute(executor.Request{
			GuildID:   record.GuildID,
			Action:    record.Action,
			RoleID:    record.RoleID,
			TargetIDs: ids,
			Reason:    record.Reason,
		})
		log.Printf("Schedule %s fired: %d succeeded, %d failed",
			record.ID, result.SuccessCount, result.FailedCount)
	}

	completed := record.ScheduleType == model.ScheduleOneTime
	nextRunAt := record.NextRunAt
	if !completed {
		desc := schedule.Descriptor{
			Type:            record.ScheduleType,
			Hour:            record.Hour,
			Minute:          record.Minute,
			DayOfWeek:       record.DayOfWeek,
			DayOfMonth:      record.DayOfMonth,
			IntervalMinutes: record.IntervalMinutes,
		}
		// The wall-clock types compute from just past the fire instant so
		// the next run is strictly in the future even when the tick lands
		// exactly on the configured time. Custom intervals count from the
		// fire time itself.
		nextRunAt = schedule.ComputeNextRun(desc, now.Add(time.Minute), &now)
	}
	return database.MarkScheduleFired(d.svc.db, record.ID, now, nextRunAt, completed)
}

func (d *Dispatcher) expireTempRole(record model.TemporaryRoleRecord) {
	result := d.svc.exec.Execute(executor.Request{
		GuildID:             record.GuildID,
		Action:              model.ActionRevoke,
		RoleID:              record.RoleID,
		TargetIDs:           []string{record.UserID},
		Reason:              "temporary role expired",
		RequireActiveRecord: true,
		Notify:              record.NotifyOnExpiry,
		NotifyMessage:       "Your temporary role has expired and was removed.",
	})
	if result.FailedCount > 0 {
		log.Printf("Failed to expire temp role %d for user %s: %v",
			record.ID, record.UserID, result.PerTarget[0].Err)
	}
}
