package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateRoundTrip(t *testing.T) {
	sm := NewStateManager()

	state, err := sm.GenerateState("google", "test-agent")
	require.NoError(t, err)
	require.NotEmpty(t, state)

	require.NoError(t, sm.ValidateState(state, "google", "test-agent"))

	// One-time use: second validation must fail.
	assert.Error(t, sm.ValidateState(state, "google", "test-agent"))
}

func TestStateProviderMismatch(t *testing.T) {
	sm := NewStateManager()

	state, err := sm.GenerateState("google", "agent")
	require.NoError(t, err)

	assert.Error(t, sm.ValidateState(state, "github", "agent"))
}

func TestStateExpiry(t *testing.T) {
	sm := NewStateManager()

	state, err := sm.GenerateState("google", "agent")
	require.NoError(t, err)

	sm.mutex.Lock()
	entry := sm.states[state]
	entry.CreatedAt = time.Now().Add(-stateTTL - time.Minute)
	sm.states[state] = entry
	sm.mutex.Unlock()

	assert.Error(t, sm.ValidateState(state, "google", "agent"))
}

func TestStateEmptyAndUnknown(t *testing.T) {
	sm := NewStateManager()

	assert.Error(t, sm.ValidateState("", "google", "agent"))
	assert.Error(t, sm.ValidateState("unknown-token", "google", "agent"))
}
