package domain

import (
	"testing"

	"github.com/pulsecs/backend/pkg/constants"
	"github.com/stretchr/testify/assert"
)

func TestExecutionStateMachine_Transitions(t *testing.T) {
	sm := NewExecutionStateMachine()

	tests := []struct {
		name        string
		from        string
		to          string
		shouldError bool
	}{
		// Valid transitions
		{"not_started -> in_progress", constants.ExecutionStatusNotStarted, constants.ExecutionStatusInProgress, false},
		{"in_progress -> completed", constants.ExecutionStatusInProgress, constants.ExecutionStatusCompleted, false},
		{"in_progress -> abandoned", constants.ExecutionStatusInProgress, constants.ExecutionStatusAbandoned, false},

		// Invalid transitions
		{"not_started -> completed (skips in_progress)", constants.ExecutionStatusNotStarted, constants.ExecutionStatusCompleted, true},
		{"not_started -> abandoned (skips in_progress)", constants.ExecutionStatusNotStarted, constants.ExecutionStatusAbandoned, true},
		{"completed -> in_progress (terminal)", constants.ExecutionStatusCompleted, constants.ExecutionStatusInProgress, true},
		{"abandoned -> in_progress (terminal)", constants.ExecutionStatusAbandoned, constants.ExecutionStatusInProgress, true},
		{"in_progress -> not_started (backwards)", constants.ExecutionStatusInProgress, constants.ExecutionStatusNotStarted, true},
		{"unknown status", "archived", constants.ExecutionStatusInProgress, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := sm.Transition(tc.from, tc.to)
			if tc.shouldError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestExecutionStateMachine_ValidNext(t *testing.T) {
	sm := NewExecutionStateMachine()

	assert.Len(t, sm.ValidNext(constants.ExecutionStatusNotStarted), 1)
	assert.Len(t, sm.ValidNext(constants.ExecutionStatusInProgress), 2)
	assert.Len(t, sm.ValidNext(constants.ExecutionStatusCompleted), 0)
}

func TestExecutionStateMachine_IsTerminal(t *testing.T) {
	sm := NewExecutionStateMachine()

	assert.False(t, sm.IsTerminal(constants.ExecutionStatusNotStarted))
	assert.False(t, sm.IsTerminal(constants.ExecutionStatusInProgress))
	assert.True(t, sm.IsTerminal(constants.ExecutionStatusCompleted))
	assert.True(t, sm.IsTerminal(constants.ExecutionStatusAbandoned))
}
