package app

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/platform/telemetry"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

const reconcileKey = "reconcile"

// Reconciler merges the local collection with a remote feed.
//
// A cycle pushes the local snapshot, fetches the remote set, merges it into
// the freshest persisted snapshot (remote wins on key collision) and
// installs the result. Concurrent callers share the in-flight cycle.
type Reconciler struct {
	store    *QuoteStore
	feed     ports.RemoteQuoteFeed
	notifier ports.SyncNotifier
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time

	group   singleflight.Group
	syncing atomic.Bool

	mu      sync.RWMutex
	last    *domain.SyncResult
	lastErr error
}

// ReconcilerConfig configures a Reconciler.
type ReconcilerConfig struct {
	Store *QuoteStore
	Feed  ports.RemoteQuoteFeed

	// Notifier receives every completed cycle. Optional.
	Notifier ports.SyncNotifier

	Logger *slog.Logger
}

// NewReconciler creates a reconciler. It panics if Store or Feed is nil.
func NewReconciler(cfg ReconcilerConfig) *Reconciler {
	if cfg.Store == nil {
		panic("app.NewReconciler: Store is required")
	}

	if cfg.Feed == nil {
		panic("app.NewReconciler: Feed is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Reconciler{
		store:    cfg.Store,
		feed:     cfg.Feed,
		notifier: cfg.Notifier,
		logger:   logger.With(slog.String("component", "app.Reconciler")),
		tracer:   telemetry.Tracer(),
		now:      time.Now,
	}
}

// FetchRemote returns the remote set, or an empty set on any failure.
func (r *Reconciler) FetchRemote(ctx context.Context) []domain.Quote {
	remote, err := r.feed.FetchQuotes(ctx)
	if err != nil {
		r.logger.WarnContext(ctx, "fetching remote quotes failed", slog.Any("error", err))
		return []domain.Quote{}
	}

	return remote
}

// PushLocal uploads quotes once and reports whether it succeeded.
// Failures are logged and never retried within the cycle.
func (r *Reconciler) PushLocal(ctx context.Context, quotes []domain.Quote) bool {
	if err := r.feed.PushQuotes(ctx, quotes); err != nil {
		r.logger.WarnContext(ctx, "pushing local quotes failed",
			slog.Int("count", len(quotes)),
			slog.Any("error", err),
		)
		return false
	}

	return true
}

// Merge combines local and remote with remote-wins precedence.
func (r *Reconciler) Merge(local, remote []domain.Quote) []domain.Quote {
	return domain.Merge(local, remote)
}

// Reconcile runs one cycle, or joins the cycle already in flight.
// The cycle is detached from ctx so one caller going away cannot spoil the
// result for the others; cancelling ctx only stops this caller waiting.
func (r *Reconciler) Reconcile(ctx context.Context) (domain.SyncResult, error) {
	ch := r.group.DoChan(reconcileKey, func() (any, error) {
		return r.reconcile(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return domain.SyncResult{}, ctx.Err()
	case res := <-ch:
		if res.Shared {
			r.logger.DebugContext(ctx, "joined in-flight reconcile")
		}

		return res.Val.(domain.SyncResult), res.Err
	}
}

func (r *Reconciler) reconcile(ctx context.Context) (domain.SyncResult, error) {
	ctx, span := r.tracer.Start(ctx, "Reconciler.Reconcile")
	defer span.End()

	r.syncing.Store(true)
	defer r.syncing.Store(false)

	result := domain.SyncResult{StartedAt: r.now()}

	local, err := r.store.Snapshot(ctx)
	if err != nil {
		return r.finish(ctx, span, result, err)
	}

	result.PushFailed = !r.PushLocal(ctx, local)

	remote := r.FetchRemote(ctx)
	result.Remote = len(remote)

	if len(remote) == 0 {
		result.Total = r.store.Len()
		return r.finish(ctx, span, result, nil)
	}

	before, after, err := r.store.Update(ctx, func(current []domain.Quote) []domain.Quote {
		return r.Merge(current, remote)
	})
	if err != nil {
		result.Total = r.store.Len()
		return r.finish(ctx, span, result, err)
	}

	result.Added = domain.CountAdded(before, after)
	result.Total = len(after)

	return r.finish(ctx, span, result, nil)
}

func (r *Reconciler) finish(ctx context.Context, span trace.Span, result domain.SyncResult, err error) (domain.SyncResult, error) {
	result.FinishedAt = r.now()

	span.SetAttributes(
		attribute.Int("sync.added", result.Added),
		attribute.Int("sync.total", result.Total),
		attribute.Int("sync.remote", result.Remote),
		attribute.Bool("sync.push_failed", result.PushFailed),
	)

	r.mu.Lock()
	r.last = &result
	r.lastErr = err
	r.mu.Unlock()

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.logger.ErrorContext(ctx, "reconcile failed", slog.Any("error", err))

		return result, err
	}

	if r.notifier != nil {
		r.notifier.NotifySync(ctx, result)
	}

	return result, nil
}

// Run reconciles every interval until ctx is cancelled.
// Cycle errors are logged; the next tick is the only retry.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	r.logger.InfoContext(ctx, "sync loop started", slog.Duration("interval", interval))

	for {
		select {
		case <-ctx.Done():
			r.logger.InfoContext(ctx, "sync loop stopped")
			return
		case <-ticker.C:
			_, _ = r.Reconcile(ctx)
		}
	}
}

// State reports whether a cycle is in flight.
func (r *Reconciler) State() domain.SyncState {
	if r.syncing.Load() {
		return domain.SyncStateSyncing
	}

	return domain.SyncStateIdle
}

// LastResult returns the most recent cycle and its error, or nil if no
// cycle has completed.
func (r *Reconciler) LastResult() (*domain.SyncResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.last == nil {
		return nil, nil
	}

	result := *r.last

	return &result, r.lastErr
}
