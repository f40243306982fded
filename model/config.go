package model

import "time"

// Config holds the application's runtime configuration.
type Config struct {
	BotToken        string
	AppID           string
	DBPath          string
	TickSpec        string
	ExecutorWorkers int
	BaseTargetCap   int
	SnapshotTimeout time.Duration
	// TierCaps maps actor user IDs to a raised target cap. Actors not
	// listed here get BaseTargetCap.
	TierCaps map[string]int
}
