package domain

import "time"

// SyncState is the reconciler's position in its two-state cycle.
type SyncState string

const (
	// SyncStateIdle means no reconcile cycle is running.
	SyncStateIdle SyncState = "idle"

	// SyncStateSyncing means a reconcile cycle is in flight.
	SyncStateSyncing SyncState = "syncing"
)

// SyncResult describes one completed reconcile cycle.
type SyncResult struct {
	// Added is the number of merged quotes whose key was not in the local snapshot.
	Added int `json:"added"`

	// Total is the size of the collection after the merge.
	Total int `json:"total"`

	// Remote is the number of records received from the feed.
	Remote int `json:"remote"`

	// PushFailed reports whether uploading the local set failed.
	PushFailed bool `json:"pushFailed"`

	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// Duration returns how long the cycle took.
func (r SyncResult) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}
