package scheduler

import (
	"fmt"
	"log"
	"sync"
	"time"

	"discord-role-scheduler/targets"
)

// SnapshotProvider fetches the current role catalogue and membership of a
// guild. Implementations may be slow; callers go through snapshotFetcher,
// which bounds the wait.
type SnapshotProvider interface {
	GetGuildSnapshot(guildID string) (*targets.GuildSnapshot, error)
}

// snapshotFetcher wraps a SnapshotProvider with a fetch timeout and a
// last-known-good cache per guild. Membership may have changed between
// schedule creation and fire time, so targets are re-resolved against a
// fresh snapshot on every fire; a stale cached snapshot beats failing the
// whole batch when the gateway is slow.
type snapshotFetcher struct {
	provider SnapshotProvider
	timeout  time.Duration

	mu    sync.Mutex
	cache map[string]*targets.GuildSnapshot
}

func newSnapshotFetcher(provider SnapshotProvider, timeout time.Duration) *snapshotFetcher {
	return &snapshotFetcher{
		provider: provider,
		timeout:  timeout,
		cache:    make(map[string]*targets.GuildSnapshot),
	}
}

type snapshotResult struct {
	snapshot *targets.GuildSnapshot
	err      error
}

// fetch returns a fresh snapshot, falling back to the cached one when the
// provider errors or exceeds the timeout. A late result still lands in
// the cache for the next fetch.
func (f *snapshotFetcher) fetch(guildID string) (*targets.GuildSnapshot, error) {
	resultCh := make(chan snapshotResult, 1)
	go func() {
		snapshot, err := f.provider.GetGuildSnapshot(guildID)
		if err == nil {
			f.store(guildID, snapshot)
		}
		resultCh <- snapshotResult{snapshot: snapshot, err: err}
	}()

	select {
	case result := <-resultCh:
		if result.err == nil {
			return result.snapshot, nil
		}
		log.Printf("Failed to fetch snapshot for guild %s: %v", guildID, result.err)
	case <-time.After(f.timeout):
		log.Printf("Snapshot fetch for guild %s timed out after %v", guildID, f.timeout)
	}

	if cached := f.load(guildID); cached != nil {
		return cached, nil
	}
	return nil, fmt.Errorf("no snapshot available for guild %s", guildID)
}

func (f *snapshotFetcher) store(guildID string, snapshot *targets.GuildSnapshot) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache[guildID] = snapshot
}

func (f *snapshotFetcher) load(guildID string) *targets.GuildSnapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cache[guildID]
}
