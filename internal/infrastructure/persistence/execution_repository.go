package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pulsecs/backend/internal/domain/models"
	"github.com/pulsecs/backend/pkg/constants"
)

// ExecutionRepository persists compiled workflow executions. Compiled
// content and provenance are written once at insert and never updated;
// only status and current_step_id change afterwards.
type ExecutionRepository struct {
	db *sql.DB
}

// NewExecutionRepository creates a new ExecutionRepository
func NewExecutionRepository(db *sql.DB) *ExecutionRepository {
	return &ExecutionRepository{db: db}
}

var executionColumns = fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
	constants.FieldID, constants.FieldExecTemplateID, constants.FieldExecCustomerID,
	constants.FieldExecAppliedMods, constants.FieldExecSteps, constants.FieldExecArtifacts,
	constants.FieldExecWarnings, constants.FieldExecStatus, constants.FieldExecCurrentStepID,
	constants.FieldCreatedDate, constants.FieldLastModifiedDate)

// SaveExecution stores a new execution and returns its id
func (r *ExecutionRepository) SaveExecution(ctx context.Context, execution *models.CompiledWorkflowExecution) (string, error) {
	appliedJSON, err := json.Marshal(execution.AppliedModificationIDs)
	if err != nil {
		return "", fmt.Errorf("failed to marshal provenance: %w", err)
	}
	stepsJSON, err := json.Marshal(execution.CompiledSteps)
	if err != nil {
		return "", fmt.Errorf("failed to marshal compiled steps: %w", err)
	}
	artifactsJSON, err := json.Marshal(execution.CompiledArtifacts)
	if err != nil {
		return "", fmt.Errorf("failed to marshal compiled artifacts: %w", err)
	}
	warningsJSON, err := json.Marshal(execution.Warnings)
	if err != nil {
		return "", fmt.Errorf("failed to marshal warnings: %w", err)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		constants.TableExecution, executionColumns)

	_, err = r.db.ExecContext(ctx, query,
		execution.ID, execution.TemplateID, execution.CustomerID,
		appliedJSON, stepsJSON, artifactsJSON, warningsJSON,
		execution.Status, execution.CurrentStepID,
		execution.CreatedDate, execution.LastModified)
	if err != nil {
		return "", err
	}
	return execution.ID, nil
}

// GetByID returns an execution, or nil if absent
func (r *ExecutionRepository) GetByID(ctx context.Context, executionID string) (*models.CompiledWorkflowExecution, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ?",
		executionColumns, constants.TableExecution, constants.FieldID)

	execution, err := scanExecution(r.db.QueryRowContext(ctx, query, executionID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return execution, err
}

// ListByCustomer returns a customer's executions, newest first
func (r *ExecutionRepository) ListByCustomer(ctx context.Context, customerID string, limit int) ([]*models.CompiledWorkflowExecution, error) {
	if limit <= 0 {
		limit = constants.DefaultLimit
	}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? ORDER BY %s DESC LIMIT ?",
		executionColumns, constants.TableExecution, constants.FieldExecCustomerID, constants.FieldCreatedDate)

	rows, err := r.db.QueryContext(ctx, query, customerID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var executions []*models.CompiledWorkflowExecution
	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		executions = append(executions, execution)
	}
	return executions, rows.Err()
}

// UpdateStatus updates status and current step pointer.
// The caller validates the transition; compiled content stays untouched.
func (r *ExecutionRepository) UpdateStatus(ctx context.Context, executionID, status string, currentStepID *string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = ?, %s = ?, %s = ? WHERE %s = ?",
		constants.TableExecution, constants.FieldExecStatus,
		constants.FieldExecCurrentStepID, constants.FieldLastModifiedDate, constants.FieldID)
	_, err := r.db.ExecContext(ctx, query, status, currentStepID, time.Now().UTC(), executionID)
	return err
}

func scanExecution(row rowScanner) (*models.CompiledWorkflowExecution, error) {
	var execution models.CompiledWorkflowExecution
	var currentStepID sql.NullString
	var appliedJSON, stepsJSON, artifactsJSON, warningsJSON []byte

	err := row.Scan(&execution.ID, &execution.TemplateID, &execution.CustomerID,
		&appliedJSON, &stepsJSON, &artifactsJSON, &warningsJSON,
		&execution.Status, &currentStepID, &execution.CreatedDate, &execution.LastModified)
	if err != nil {
		return nil, err
	}

	if currentStepID.Valid {
		execution.CurrentStepID = &currentStepID.String
	}
	for _, col := range []struct {
		raw  []byte
		dest interface{}
		name string
	}{
		{appliedJSON, &execution.AppliedModificationIDs, "applied_modification_ids"},
		{stepsJSON, &execution.CompiledSteps, "compiled_steps"},
		{artifactsJSON, &execution.CompiledArtifacts, "compiled_artifacts"},
		{warningsJSON, &execution.Warnings, "warnings"},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dest); err != nil {
			return nil, fmt.Errorf("corrupt %s for execution %s: %w", col.name, execution.ID, err)
		}
	}
	return &execution, nil
}
