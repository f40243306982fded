package targets

import (
	"errors"
	"fmt"

	"discord-role-scheduler/model"
)

// ErrNoTargets is returned when a resolution materializes to an empty
// member set.
var ErrNoTargets = errors.New("no targets found")

// TooManyTargetsError reports a materialized set over the effective cap.
// The set is never silently truncated.
type TooManyTargetsError struct {
	Count int
	Cap   int
}

func (e *TooManyTargetsError) Error() string {
	return fmt.Sprintf("resolved %d targets, cap is %d", e.Count, e.Cap)
}

// MaterializeOptions controls member-set materialization.
type MaterializeOptions struct {
	// SelfID is the executing bot account; it is the only bot account
	// not filtered out of the result.
	SelfID string
	// Cap is the effective target cap after any tier lookup.
	Cap int
}

// Materialize turns a resolution into a concrete, deduplicated member ID
// list: the union of all members holding any target role, combined with
// the explicit user IDs. Bot accounts other than SelfID are excluded.
// Explicit IDs unknown to the snapshot are kept; the remote mutation
// reports them individually if they turn out to be invalid.
func Materialize(res Resolution, snapshot *GuildSnapshot, opts MaterializeOptions) ([]string, error) {
	var ids []string
	seen := make(map[string]bool)

	add := func(id string) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}

	wantRole := make(map[string]bool, len(res.TargetRoleIDs))
	for _, roleID := range res.TargetRoleIDs {
		wantRole[roleID] = true
	}

	for _, member := range snapshot.Members {
		if member.Bot && member.ID != opts.SelfID {
			continue
		}
		if res.Kind == model.TargetEveryone {
			add(member.ID)
			continue
		}
		for _, roleID := range member.Roles {
			if wantRole[roleID] {
				add(member.ID)
				break
			}
		}
	}

	for _, userID := range res.ExplicitUserIDs {
		if isBot(snapshot, userID) && userID != opts.SelfID {
			continue
		}
		add(userID)
	}

	if len(ids) == 0 {
		return nil, ErrNoTargets
	}
	if opts.Cap > 0 && len(ids) > opts.Cap {
		return nil, &TooManyTargetsError{Count: len(ids), Cap: opts.Cap}
	}
	return ids, nil
}

func isBot(snapshot *GuildSnapshot, userID string) bool {
	for _, member := range snapshot.Members {
		if member.ID == userID {
			return member.Bot
		}
	}
	return false
}
