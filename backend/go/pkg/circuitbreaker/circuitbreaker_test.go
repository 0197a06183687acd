package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

var errUpstream = errors.New("upstream failed")

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	b := New(Settings{FailureThreshold: 2, SuccessThreshold: 1, Timeout: time.Minute, Now: clock.Now})

	calls := 0
	failing := func() error { calls++; return errUpstream }

	assert.ErrorIs(t, b.Execute(failing), errUpstream)
	assert.Equal(t, Closed, b.State())
	assert.ErrorIs(t, b.Execute(failing), errUpstream)
	assert.Equal(t, Open, b.State())

	assert.ErrorIs(t, b.Execute(failing), ErrCircuitOpen)
	assert.Equal(t, 2, calls, "open circuit must not invoke the call")
}

func TestBreakerSuccessResetsFailureCount(t *testing.T) {
	b := New(Settings{FailureThreshold: 2, Timeout: time.Minute})

	require.Error(t, b.Execute(func() error { return errUpstream }))
	require.NoError(t, b.Execute(func() error { return nil }))
	require.Error(t, b.Execute(func() error { return errUpstream }))

	assert.Equal(t, Closed, b.State())
}

func TestBreakerHalfOpenRecovery(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	var transitions []string
	b := New(Settings{
		Name:             "gemini",
		FailureThreshold: 1,
		SuccessThreshold: 2,
		Timeout:          30 * time.Second,
		Now:              clock.Now,
		OnStateChange: func(name string, from, to State) {
			transitions = append(transitions, name+":"+from.String()+"->"+to.String())
		},
	})

	require.Error(t, b.Execute(func() error { return errUpstream }))
	clock.Advance(31 * time.Second)
	assert.Equal(t, HalfOpen, b.State())

	require.NoError(t, b.Execute(func() error { return nil }))
	assert.Equal(t, HalfOpen, b.State())
	require.NoError(t, b.Execute(func() error { return nil }))
	assert.Equal(t, Closed, b.State())

	assert.Equal(t, []string{
		"gemini:Closed->Open",
		"gemini:Open->Half-Open",
		"gemini:Half-Open->Closed",
	}, transitions)
}

func TestBreakerHalfOpenFailureReopens(t *testing.T) {
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	b := New(Settings{FailureThreshold: 1, Timeout: time.Second, Now: clock.Now})

	require.Error(t, b.Execute(func() error { return errUpstream }))
	clock.Advance(2 * time.Second)
	require.Error(t, b.Execute(func() error { return errUpstream }))

	assert.Equal(t, Open, b.State())
}

func TestBreakerIsFailureFilter(t *testing.T) {
	ignored := errors.New("client error")
	b := New(Settings{
		FailureThreshold: 1,
		Timeout:          time.Minute,
		IsFailure:        func(err error) bool { return err != nil && !errors.Is(err, ignored) },
	})

	assert.ErrorIs(t, b.Execute(func() error { return ignored }), ignored)
	assert.Equal(t, Closed, b.State())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "Closed", Closed.String())
	assert.Equal(t, "Open", Open.String())
	assert.Equal(t, "Half-Open", HalfOpen.String())
	assert.Equal(t, "Unknown", State(42).String())
}
