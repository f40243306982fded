package executor

import (
	"fmt"
	"log"
	"sync"
	"time"

	"discord-role-scheduler/model"
	"discord-role-scheduler/utils/database"

	"github.com/jmoiron/sqlx"
)

// RoleMutator is the remote capability that performs the actual
// membership mutation.
type RoleMutator interface {
	GrantRole(guildID, userID, roleID, reason string) error
	RevokeRole(guildID, userID, roleID, reason string) error
}

// Notifier delivers best-effort direct notifications.
type Notifier interface {
	SendDirectNotification(userID, message string) error
}

// DefaultWorkers is the worker-pool width. The remote mutation endpoint is
// rate-limited, so the bound stays small.
const DefaultWorkers = 3

// BulkExecutor applies one role mutation to a list of targets under a
// fixed concurrency bound, collecting a per-target outcome.
type BulkExecutor struct {
	db       *sqlx.DB
	mutator  RoleMutator
	notifier Notifier
	workers  int
	now      func() time.Time
}

// New creates a BulkExecutor with the given worker-pool width.
func New(db *sqlx.DB, mutator RoleMutator, notifier Notifier, workers int) *BulkExecutor {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &BulkExecutor{
		db:       db,
		mutator:  mutator,
		notifier: notifier,
		workers:  workers,
		now:      time.Now,
	}
}

// Request describes one bulk mutation.
type Request struct {
	GuildID   string
	Action    model.RoleAction
	RoleID    string
	TargetIDs []string
	Reason    string
	// ExpiresAt, when set on an assign, records the grant as temporary.
	// A target that already holds an active temporary grant is renewed
	// (expiry extended, no duplicate remote call).
	ExpiresAt *time.Time
	// RequireActiveRecord makes a revoke report not-found for targets
	// without a matching active temporary record. Set by the expiry path
	// and by explicit temporary removal; scheduled revokes mutate
	// unconditionally.
	RequireActiveRecord bool
	Notify              bool
	NotifyOnExpiry      bool
	// NotifyMessage is the direct-notification body. Empty disables
	// notification regardless of Notify.
	NotifyMessage string
}

// TargetResult is the outcome for a single target.
type TargetResult struct {
	TargetID     string
	Success      bool
	WasUpdate    bool
	NotFound     bool
	NotifyFailed bool
	Err          error
}

// BulkResult aggregates per-target outcomes.
type BulkResult struct {
	SuccessCount int
	FailedCount  int
	PerTarget    []TargetResult
}

// Execute runs the request against every target. A failing target never
// aborts the batch; the result accounts for all targets.
func (e *BulkExecutor) Execute(req Request) BulkResult {
	results := make([]TargetResult, len(req.TargetIDs))

	var wg sync.WaitGroup
	guard := make(chan struct{}, e.workers)

	for i, targetID := range req.TargetIDs {
		wg.Add(1)
		guard <- struct{}{} // Acquire a worker slot

		go func(i int, targetID string) {
			defer func() {
				<-guard // Release the worker slot
				wg.Done()
			}()
			if req.Action == model.ActionAssign {
				results[i] = e.assignTarget(req, targetID)
			} else {
				results[i] = e.revokeTarget(req, targetID)
			}
		}(i, targetID)
	}

	wg.Wait()

	result := BulkResult{PerTarget: results}
	for _, r := range results {
		if r.Success {
			result.SuccessCount++
		} else {
			result.FailedCount++
		}
	}
	return result
}

func (e *BulkExecutor) assignTarget(req Request, targetID string) TargetResult {
	res := TargetResult{TargetID: targetID}

	if req.ExpiresAt != nil {
		existing, err := database.GetActiveTempRole(e.db, req.GuildID, targetID, req.RoleID)
		if err != nil {
			res.Err = err
			return res
		}
		if existing != nil {
			// Renewal: the user already holds the role, so only the
			// expiry moves. No remote call.
			if err := database.RenewTempRole(e.db, existing.ID, *req.ExpiresAt); err != nil {
				res.Err = err
				return res
			}
			res.Success = true
			res.WasUpdate = true
			e.notify(req, targetID, &res)
			return res
		}
	}

	if err := e.mutator.GrantRole(req.GuildID, targetID, req.RoleID, req.Reason); err != nil {
		res.Err = fmt.Errorf("failed to grant role %s to user %s: %w", req.RoleID, targetID, err)
		return res
	}

	if req.ExpiresAt != nil {
		record := model.TemporaryRoleRecord{
			GuildID:        req.GuildID,
			UserID:         targetID,
			RoleID:         req.RoleID,
			AssignedAt:     e.now(),
			ExpiresAt:      *req.ExpiresAt,
			NotifyOnAssign: req.Notify,
			NotifyOnExpiry: req.NotifyOnExpiry,
			Status:         model.TempRoleStatusActive,
		}
		if _, err := database.AddTempRole(e.db, record); err != nil {
			res.Err = err
			return res
		}
	}

	res.Success = true
	e.notify(req, targetID, &res)
	return res
}

func (e *BulkExecutor) revokeTarget(req Request, targetID string) TargetResult {
	res := TargetResult{TargetID: targetID}

	record, err := database.GetActiveTempRole(e.db, req.GuildID, targetID, req.RoleID)
	if err != nil {
		res.Err = err
		return res
	}

	if record == nil && req.RequireActiveRecord {
		res.NotFound = true
		res.Err = fmt.Errorf("no active temporary grant of role %s for user %s", req.RoleID, targetID)
		return res
	}

	if record != nil {
		claimed, err := database.MarkTempRoleRemoved(e.db, record.ID)
		if err != nil {
			res.Err = err
			return res
		}
		if !claimed {
			// Another pass already removed it. Nothing left to do.
			res.Success = true
			res.WasUpdate = true
			return res
		}
	}

	if err := e.mutator.RevokeRole(req.GuildID, targetID, req.RoleID, req.Reason); err != nil {
		res.Err = fmt.Errorf("failed to revoke role %s from user %s: %w", req.RoleID, targetID, err)
		return res
	}

	res.Success = true
	e.notify(req, targetID, &res)
	return res
}

// notify sends the direct notification for a successful mutation.
// Failures are logged and flagged, never turned into a target failure.
func (e *BulkExecutor) notify(req Request, targetID string, res *TargetResult) {
	if !req.Notify || req.NotifyMessage == "" || e.notifier == nil {
		return
	}
	if err := e.notifier.SendDirectNotification(targetID, req.NotifyMessage); err != nil {
		log.Printf("Failed to notify user %s: %v", targetID, err)
		res.NotifyFailed = true
	}
}
