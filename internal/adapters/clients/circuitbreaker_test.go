package clients

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClockBreaker returns a breaker whose clock only moves when advance is called.
func fakeClockBreaker(cfg CircuitBreakerConfig) (*CircuitBreaker, func(time.Duration)) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(cfg)
	cb.now = func() time.Time { return now }

	return cb, func(d time.Duration) { now = now.Add(d) }
}

func TestCircuitBreaker_Transitions(t *testing.T) {
	// Each step is one of: "fail", "ok", "allow", "deny", "wait".
	// allow/deny call Allow and assert its result.
	tests := []struct {
		name  string
		steps []string
		want  State
	}{
		{"starts closed", []string{"allow"}, StateClosed},
		{"below threshold", []string{"fail", "fail"}, StateClosed},
		{"opens at threshold", []string{"fail", "fail", "fail", "deny"}, StateOpen},
		{"success resets count", []string{"fail", "fail", "ok", "fail", "fail"}, StateClosed},
		{"half-open after cool-down", []string{"fail", "fail", "fail", "wait", "allow"}, StateHalfOpen},
		{"probe limit", []string{"fail", "fail", "fail", "wait", "allow", "allow", "deny"}, StateHalfOpen},
		{"one probe success is not enough", []string{"fail", "fail", "fail", "wait", "allow", "ok"}, StateHalfOpen},
		{"closes after probe successes", []string{"fail", "fail", "fail", "wait", "allow", "ok", "allow", "ok"}, StateClosed},
		{"probe failure reopens", []string{"fail", "fail", "fail", "wait", "allow", "fail", "deny"}, StateOpen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cb, advance := fakeClockBreaker(CircuitBreakerConfig{MaxFailures: 3, Timeout: time.Minute, HalfOpenLimit: 2})

			for i, step := range tt.steps {
				switch step {
				case "fail":
					cb.RecordFailure()
				case "ok":
					cb.RecordSuccess()
				case "wait":
					advance(time.Minute)
				case "allow", "deny":
					require.Equal(t, step == "allow", cb.Allow(), "step %d", i)
				}
			}

			assert.Equal(t, tt.want, cb.State())
		})
	}
}

func TestCircuitBreaker_ZeroConfigDefaults(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})

	for range defaultCircuitMaxFailures - 1 {
		cb.RecordFailure()
	}
	assert.Equal(t, StateClosed, cb.State())

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.Equal(t, defaultCircuitTimeout, cb.cfg.Timeout)
	assert.Equal(t, defaultCircuitHalfOpenLimit, cb.cfg.HalfOpenLimit)
}

func TestCircuitBreaker_OnStateChange(t *testing.T) {
	changes := make(chan [2]State, 1)

	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 1})
	cb.OnStateChange(func(from, to State) { changes <- [2]State{from, to} })

	cb.RecordFailure()

	select {
	case got := <-changes:
		assert.Equal(t, [2]State{StateClosed, StateOpen}, got)
	case <-time.After(time.Second):
		t.Fatal("state change callback not invoked")
	}
}

func TestCircuitBreaker_ConcurrentUse(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{MaxFailures: 100, Timeout: time.Second, HalfOpenLimit: 10})

	var wg sync.WaitGroup
	for i := range 1000 {
		wg.Go(func() {
			if !cb.Allow() {
				return
			}
			if i%2 == 0 {
				cb.RecordSuccess()
			} else {
				cb.RecordFailure()
			}
		})
	}
	wg.Wait()

	assert.Contains(t, []State{StateClosed, StateOpen, StateHalfOpen}, cb.State())
}

func TestCircuitBreaker_Snapshot(t *testing.T) {
	cb, _ := fakeClockBreaker(CircuitBreakerConfig{MaxFailures: 3, Timeout: time.Minute})

	cb.RecordFailure()
	cb.RecordFailure()

	snap := cb.Snapshot()
	assert.Equal(t, StateClosed, snap.State)
	assert.Equal(t, 2, snap.Failures)
	assert.Equal(t, time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), snap.LastFailure)
}

func TestState_Text(t *testing.T) {
	for _, s := range []State{StateClosed, StateOpen, StateHalfOpen} {
		text, err := s.MarshalText()
		require.NoError(t, err)

		var back State
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, s, back)
	}

	assert.Equal(t, "unknown", State(99).String())
	assert.Equal(t, "unknown", State(-1).String())

	var s State
	assert.Error(t, s.UnmarshalText([]byte("sideways")))
}

func TestSnapshot_JSON(t *testing.T) {
	b, err := json.Marshal(Snapshot{State: StateHalfOpen})
	require.NoError(t, err)
	assert.JSONEq(t, `{"state":"half-open","failures":0}`, string(b))
}
