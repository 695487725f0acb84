package circuitbreaker

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripsAfterConsecutiveFailures(t *testing.T) {
	cb := NewCircuitBreaker(Settings{Name: "test", MaxRequests: 2, Timeout: time.Hour})
	boom := errors.New("boom")

	calls := 0
	fail := func() error { calls++; return boom }

	require.ErrorIs(t, cb.Execute(fail), boom)
	require.ErrorIs(t, cb.Execute(fail), boom)

	// Open: the call is rejected without being invoked.
	err := cb.Execute(fail)
	assert.ErrorIs(t, err, ErrOpen)
	assert.Equal(t, 2, calls)
}

func TestHalfOpenSuccessClosesAfterTimeout(t *testing.T) {
	// Zero timeout lets the very next call run half-open.
	cb := NewCircuitBreaker(Settings{Name: "test", MaxRequests: 1, Timeout: 0})
	require.Error(t, cb.Execute(func() error { return errors.New("boom") }))

	ran := false
	require.NoError(t, cb.Execute(func() error { ran = true; return nil }))
	assert.True(t, ran)

	// Closed again: calls flow normally.
	assert.NoError(t, cb.Execute(func() error { return nil }))
}
