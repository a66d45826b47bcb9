package services

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pulsecs/backend/internal/infrastructure/persistence"
	"github.com/pulsecs/backend/pkg/constants"
	"github.com/pulsecs/backend/pkg/errors"
	"github.com/stretchr/testify/assert"
)

var executionRowColumns = []string{
	"id", "template_id", "customer_id", "applied_modification_ids",
	"compiled_steps", "compiled_artifacts", "warnings", "status",
	"current_step_id", "created_date", "last_modified_date",
}

func executionServiceFixture(t *testing.T) (*ExecutionService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	svc := NewExecutionService(persistence.NewExecutionRepository(db))
	return svc, mock, func() { db.Close() }
}

func expectExecutionRow(mock sqlmock.Sqlmock, status, currentStep string) {
	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("FROM workflow_executions WHERE id = ?")).
		WithArgs("exec-1").
		WillReturnRows(sqlmock.NewRows(executionRowColumns).
			AddRow("exec-1", "tmpl-1", "cust-123", `["mod-1"]`,
				`[{"step_id":"greeting"},{"step_id":"discuss-terms"}]`,
				nil, nil, status, currentStep, now, now))
}

func TestExecutionServiceGet(t *testing.T) {
	svc, mock, cleanup := executionServiceFixture(t)
	defer cleanup()

	expectExecutionRow(mock, constants.ExecutionStatusNotStarted, "greeting")

	execution, err := svc.Get(context.Background(), "exec-1")

	assert.NoError(t, err)
	assert.Equal(t, "exec-1", execution.ID)
	assert.Equal(t, []string{"mod-1"}, execution.AppliedModificationIDs)
}

func TestExecutionServiceGetMissing(t *testing.T) {
	svc, mock, cleanup := executionServiceFixture(t)
	defer cleanup()

	mock.ExpectQuery(regexp.QuoteMeta("FROM workflow_executions WHERE id = ?")).
		WithArgs("exec-1").
		WillReturnRows(sqlmock.NewRows(executionRowColumns))

	_, err := svc.Get(context.Background(), "exec-1")

	assert.True(t, errors.IsNotFound(err))
}

func TestExecutionServiceUpdateStatus(t *testing.T) {
	svc, mock, cleanup := executionServiceFixture(t)
	defer cleanup()

	expectExecutionRow(mock, constants.ExecutionStatusNotStarted, "greeting")
	mock.ExpectExec(regexp.QuoteMeta("UPDATE workflow_executions SET")).
		WithArgs(constants.ExecutionStatusInProgress, sqlmock.AnyArg(), sqlmock.AnyArg(), "exec-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	step := "discuss-terms"
	execution, err := svc.UpdateStatus(context.Background(), "exec-1", constants.ExecutionStatusInProgress, &step)

	assert.NoError(t, err)
	assert.Equal(t, constants.ExecutionStatusInProgress, execution.Status)
	assert.Equal(t, "discuss-terms", *execution.CurrentStepID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecutionServiceUpdateStatusInvalidTransition(t *testing.T) {
	svc, mock, cleanup := executionServiceFixture(t)
	defer cleanup()

	expectExecutionRow(mock, constants.ExecutionStatusCompleted, "discuss-terms")

	_, err := svc.UpdateStatus(context.Background(), "exec-1", constants.ExecutionStatusInProgress, nil)

	assert.True(t, errors.IsValidation(err))
}

func TestExecutionServiceUpdateStatusUnknownStep(t *testing.T) {
	svc, mock, cleanup := executionServiceFixture(t)
	defer cleanup()

	expectExecutionRow(mock, constants.ExecutionStatusNotStarted, "greeting")

	step := "no-such-step"
	_, err := svc.UpdateStatus(context.Background(), "exec-1", constants.ExecutionStatusInProgress, &step)

	assert.True(t, errors.IsValidation(err))
}
