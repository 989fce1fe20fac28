package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// record replays outcomes ('f' failure, 's' success) and returns the state
// after each one.
func record(b *Breaker, outcomes string) []State {
	out := make([]State, 0, len(outcomes))
	for _, o := range outcomes {
		if o == 'f' {
			b.RecordFailure()
		} else {
			b.RecordSuccess()
		}
		out = append(out, b.State())
	}
	return out
}

func TestBreakerTransitions(t *testing.T) {
	const c, o = StateClosed, StateOpen
	tests := []struct {
		name     string
		failures int
		succ     int
		outcomes string
		want     []State
	}{
		{name: "opens on the threshold", failures: 3, succ: 1, outcomes: "fff", want: []State{c, c, o}},
		{name: "success clears the failure run", failures: 3, succ: 1, outcomes: "ffsfff", want: []State{c, c, c, c, c, o}},
		{name: "closes after consecutive successes", failures: 1, succ: 2, outcomes: "fss", want: []State{o, o, c}},
		{name: "failure while open restarts the success run", failures: 1, succ: 3, outcomes: "fssfsss", want: []State{o, o, o, o, o, o, c}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := New("backend", WithFailureThreshold(tt.failures), WithSuccessThreshold(tt.succ))
			assert.Equal(t, tt.want, record(b, tt.outcomes))
		})
	}
}

func TestBreakerChangeFlags(t *testing.T) {
	b := New("backend", WithFailureThreshold(1), WithSuccessThreshold(1))
	assert.Equal(t, "backend", b.Name())

	fallback, change := b.RecordFailure()
	assert.True(t, fallback)
	assert.True(t, change.Opened)

	fallback, change = b.RecordFailure()
	assert.True(t, fallback)
	assert.False(t, change.Opened, "already open")

	primary, change := b.RecordSuccess()
	assert.True(t, primary)
	assert.True(t, change.Closed)
	assert.Equal(t, "closed", b.State().String())
}

func TestBreakerReset(t *testing.T) {
	b := New("backend", WithFailureThreshold(1))
	b.RecordFailure()
	assert.True(t, b.IsOpen())

	b.Reset()
	assert.False(t, b.IsOpen())
	assert.True(t, b.Allow())
}

func TestBreakerAllowProbesAfterCooldown(t *testing.T) {
	now := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	b := New("backend", WithFailureThreshold(1), WithCooldown(time.Minute), WithClock(func() time.Time { return now }))

	assert.True(t, b.Allow(), "closed breaker allows")

	b.RecordFailure()
	assert.False(t, b.Allow(), "open breaker rejects inside cooldown")

	now = now.Add(time.Minute)
	assert.True(t, b.Allow(), "one probe after cooldown")
	assert.False(t, b.Allow(), "probe resets the window")
}
