package app

import (
	"context"
	"log/slog"

	"github.com/jsamuelsen/quotekeeper/internal/domain"
	"github.com/jsamuelsen/quotekeeper/internal/platform/telemetry"
	"github.com/jsamuelsen/quotekeeper/internal/ports"
)

// LogNotifier reports sync results as "quotes synced" log lines.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a LogNotifier. A nil logger uses slog.Default.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogNotifier{logger: logger}
}

// NotifySync implements ports.SyncNotifier.
func (n *LogNotifier) NotifySync(ctx context.Context, result domain.SyncResult) {
	level := slog.LevelInfo
	if result.Added == 0 {
		level = slog.LevelDebug
	}

	n.logger.Log(ctx, level, "quotes synced",
		slog.Int("added", result.Added),
		slog.Int("total", result.Total),
		slog.Int("remote", result.Remote),
		slog.Bool("push_failed", result.PushFailed),
		slog.Duration("duration", result.Duration()),
	)
}

// MetricsNotifier records sync results in Prometheus.
type MetricsNotifier struct {
	metrics *telemetry.SyncMetrics
}

// NewMetricsNotifier wraps m, which may be nil.
func NewMetricsNotifier(m *telemetry.SyncMetrics) *MetricsNotifier {
	return &MetricsNotifier{metrics: m}
}

// NotifySync implements ports.SyncNotifier.
func (n *MetricsNotifier) NotifySync(_ context.Context, result domain.SyncResult) {
	n.metrics.ObserveCycle(result.Added, result.Total, result.PushFailed, result.Duration())
}

// Notifiers fans a result out to every notifier in order.
type Notifiers []ports.SyncNotifier

// NotifySync implements ports.SyncNotifier.
func (ns Notifiers) NotifySync(ctx context.Context, result domain.SyncResult) {
	for _, n := range ns {
		n.NotifySync(ctx, result)
	}
}
