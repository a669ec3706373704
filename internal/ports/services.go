// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, etc.)
//   - Keep interfaces small and focused
package ports

import (
	"context"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
)

// Keys used by the application in the key-value store.
const (
	// KeyQuotes holds the full quote collection as a JSON array.
	KeyQuotes = "quotes"

	// KeySelectedCategory holds the last-selected category filter.
	KeySelectedCategory = "selectedCategory"
)

// KeyValueStore persists opaque values under string keys.
// Every Set replaces the previous value wholesale; implementations must
// make the replacement atomic per key.
//
// Adapters: memory, file, sqlite, redis (see internal/adapters/storage).
type KeyValueStore interface {
	// Get returns the value stored under key.
	// Returns domain.ErrNotFound if the key has never been set.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
}

// RemoteQuoteFeed is the remote endpoint the reconciler syncs against.
//
// Key considerations:
//   - Handle timeouts via context deadline
//   - Map transport failures to domain.ErrUnavailable
//   - Translate external records to domain.Quote
type RemoteQuoteFeed interface {
	// FetchQuotes returns the remote record set, already translated.
	FetchQuotes(ctx context.Context) ([]domain.Quote, error)

	// PushQuotes uploads the local record set. The response body is ignored.
	PushQuotes(ctx context.Context, quotes []domain.Quote) error
}

// SyncNotifier receives the outcome of every reconcile cycle.
// Implementations must not block for long; they run on the sync path.
type SyncNotifier interface {
	NotifySync(ctx context.Context, result domain.SyncResult)
}
