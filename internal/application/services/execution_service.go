package services

import (
	"context"
	"fmt"

	"github.com/pulsecs/backend/internal/domain"
	"github.com/pulsecs/backend/internal/domain/models"
	"github.com/pulsecs/backend/internal/infrastructure/persistence"
	"github.com/pulsecs/backend/pkg/errors"
)

// ExecutionService exposes compiled executions to the runtime layer.
// Compiled content is immutable; the only mutation allowed after creation
// is a state-machine-guarded status/current-step update.
type ExecutionService struct {
	repo         *persistence.ExecutionRepository
	stateMachine *domain.ExecutionStateMachine
}

// NewExecutionService creates an ExecutionService
func NewExecutionService(repo *persistence.ExecutionRepository) *ExecutionService {
	return &ExecutionService{
		repo:         repo,
		stateMachine: domain.NewExecutionStateMachine(),
	}
}

// Get returns an execution by id
func (s *ExecutionService) Get(ctx context.Context, executionID string) (*models.CompiledWorkflowExecution, error) {
	execution, err := s.repo.GetByID(ctx, executionID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load execution", err)
	}
	if execution == nil {
		return nil, errors.NewNotFoundError("CompiledWorkflowExecution", executionID)
	}
	return execution, nil
}

// ListByCustomer returns a customer's executions, newest first
func (s *ExecutionService) ListByCustomer(ctx context.Context, customerID string, limit int) ([]*models.CompiledWorkflowExecution, error) {
	executions, err := s.repo.ListByCustomer(ctx, customerID, limit)
	if err != nil {
		return nil, errors.NewInternalError("failed to list executions", err)
	}
	return executions, nil
}

// UpdateStatus transitions an execution to a new status, optionally moving
// the current step pointer. Invalid transitions are rejected.
func (s *ExecutionService) UpdateStatus(ctx context.Context, executionID, newStatus string, currentStepID *string) (*models.CompiledWorkflowExecution, error) {
	execution, err := s.Get(ctx, executionID)
	if err != nil {
		return nil, err
	}

	if err := s.stateMachine.Transition(execution.Status, newStatus); err != nil {
		return nil, errors.NewValidationError("status", err.Error())
	}

	if currentStepID != nil && *currentStepID != "" {
		if !stepExists(execution.CompiledSteps, *currentStepID) {
			return nil, errors.NewValidationError("current_step_id",
				fmt.Sprintf("step '%s' is not part of this execution", *currentStepID))
		}
		execution.CurrentStepID = currentStepID
	}

	execution.Status = newStatus
	if err := s.repo.UpdateStatus(ctx, executionID, newStatus, execution.CurrentStepID); err != nil {
		return nil, errors.NewInternalError("failed to update execution status", err)
	}
	return execution, nil
}

func stepExists(steps []models.Record, stepID string) bool {
	for _, step := range steps {
		if step.StepID() == stepID {
			return true
		}
	}
	return false
}
