package ports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubChecker fails with err; a nil err with delay > 0 waits on ctx first.
type stubChecker struct {
	name  string
	err   error
	delay time.Duration
}

func (s stubChecker) Name() string { return s.name }

func (s stubChecker) Check(ctx context.Context) error {
	if s.delay > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(s.delay):
		}
	}

	return s.err
}

func TestHealthRegistry_Register(t *testing.T) {
	registry := NewHealthRegistry()

	require.NoError(t, registry.Register(stubChecker{name: "storage"}))
	require.NoError(t, registry.Register(stubChecker{name: "quote-feed"}))

	err := registry.Register(stubChecker{name: "storage"})
	require.ErrorIs(t, err, ErrDuplicateChecker)
	assert.Contains(t, err.Error(), "storage")
	assert.Len(t, registry.checkers, 2)
}

func TestHealthRegistry_CheckAll(t *testing.T) {
	tests := []struct {
		name        string
		checkers    []stubChecker
		want        HealthStatus
		wantMessage map[string]string
	}{
		{
			name: "empty is healthy",
			want: HealthStatusHealthy,
		},
		{
			name:     "all healthy",
			checkers: []stubChecker{{name: "storage"}, {name: "quote-feed"}, {name: "redis"}},
			want:     HealthStatusHealthy,
			wantMessage: map[string]string{
				"storage": "", "quote-feed": "", "redis": "",
			},
		},
		{
			name: "one failing check",
			checkers: []stubChecker{
				{name: "storage"},
				{name: "quote-feed", err: errors.New("connection timeout")},
			},
			want: HealthStatusUnhealthy,
			wantMessage: map[string]string{
				"storage": "", "quote-feed": "connection timeout",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry := NewHealthRegistry()
			for _, c := range tt.checkers {
				require.NoError(t, registry.Register(c))
			}

			result := registry.CheckAll(t.Context())

			assert.Equal(t, tt.want, result.Status)
			assert.False(t, result.Timestamp.IsZero())
			require.Len(t, result.Checks, len(tt.checkers))
			for name, msg := range tt.wantMessage {
				assert.Equal(t, msg, result.Checks[name].Message, name)
				assert.Equal(t, msg == "", result.Checks[name].Status == HealthStatusHealthy, name)
			}
		})
	}
}

func TestHealthRegistry_CheckAllCancelled(t *testing.T) {
	registry := NewHealthRegistry()
	require.NoError(t, registry.Register(stubChecker{name: "redis", delay: time.Minute}))

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	result := registry.CheckAll(ctx)

	assert.Equal(t, HealthStatusUnhealthy, result.Status)
	assert.Contains(t, result.Checks["redis"].Message, "context canceled")
}

func TestHealthRegistry_ChecksRunConcurrently(t *testing.T) {
	registry := NewHealthRegistry()
	for _, name := range []string{"a", "b", "c", "d"} {
		require.NoError(t, registry.Register(stubChecker{name: name, delay: 50 * time.Millisecond}))
	}

	start := time.Now()
	result := registry.CheckAll(t.Context())

	assert.Equal(t, HealthStatusHealthy, result.Status)
	assert.Less(t, time.Since(start), 150*time.Millisecond)
}
