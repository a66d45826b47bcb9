package domain

import (
	"fmt"

	"github.com/pulsecs/backend/pkg/constants"
)

// ExecutionStateMachine enforces valid status transitions for compiled
// workflow executions. The compiler only ever creates executions in
// not_started; every later move is driven by the execution runtime through
// this machine. Invalid transitions return an error (fail-fast approach).
//
// State diagram:
//
//	[not_started] ──► [in_progress] ──► [completed]
//	                        │
//	                        └─────────► [abandoned]
type ExecutionStateMachine struct {
	// transitions maps (current status) -> set of allowed next statuses
	transitions map[string]map[string]bool
}

// NewExecutionStateMachine creates a state machine with the execution
// lifecycle rules.
func NewExecutionStateMachine() *ExecutionStateMachine {
	sm := &ExecutionStateMachine{
		transitions: make(map[string]map[string]bool),
	}

	sm.addTransition(constants.ExecutionStatusNotStarted, constants.ExecutionStatusInProgress)
	sm.addTransition(constants.ExecutionStatusInProgress, constants.ExecutionStatusCompleted)
	sm.addTransition(constants.ExecutionStatusInProgress, constants.ExecutionStatusAbandoned)

	return sm
}

func (sm *ExecutionStateMachine) addTransition(from, to string) {
	if sm.transitions[from] == nil {
		sm.transitions[from] = make(map[string]bool)
	}
	sm.transitions[from][to] = true
}

// Transition validates a move from current to next.
// Returns an error if the transition is invalid.
func (sm *ExecutionStateMachine) Transition(current, next string) error {
	if !sm.CanTransition(current, next) {
		return fmt.Errorf("invalid status transition: %s -> %s", current, next)
	}
	return nil
}

// CanTransition checks if a transition is valid without performing it.
func (sm *ExecutionStateMachine) CanTransition(current, next string) bool {
	return sm.transitions[current][next]
}

// ValidNext returns all statuses reachable from the given status.
func (sm *ExecutionStateMachine) ValidNext(status string) []string {
	var result []string
	for next := range sm.transitions[status] {
		result = append(result, next)
	}
	return result
}

// IsTerminal returns true if no further transitions are possible.
func (sm *ExecutionStateMachine) IsTerminal(status string) bool {
	return len(sm.transitions[status]) == 0
}
