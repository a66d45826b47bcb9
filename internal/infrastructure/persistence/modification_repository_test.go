package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pulsecs/backend/internal/domain/models"
	"github.com/pulsecs/backend/pkg/constants"
	"github.com/stretchr/testify/assert"
)

var modificationTestColumns = []string{
	"id", "template_id", "scope_type", "scope_id", "scope_criteria",
	"modification_type", "target_step_id", "target_position",
	"modification_data", "priority", "is_active", "created_date",
}

func TestModificationRepositoryListActive(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	criteriaJSON := `{"conditions":[{"field":"riskScore","op":"gt","value":60}]}`
	dataJSON := `{"step_id":"prepare-freebie","display_name":"Prepare Retention Offer"}`

	mock.ExpectQuery(regexp.QuoteMeta("FROM workflow_modifications WHERE template_id = ? AND is_active = TRUE ORDER BY priority ASC, id ASC")).
		WithArgs("tmpl-1").
		WillReturnRows(sqlmock.NewRows(modificationTestColumns).
			AddRow("mod-1", "tmpl-1", constants.ScopeGlobal, nil, criteriaJSON,
				constants.ModAddStep, nil, 2, dataJSON, constants.PriorityGlobal, true, now).
			AddRow("mod-2", "tmpl-1", constants.ScopeCompany, "comp-456", nil,
				constants.ModRemoveStep, "present-value", nil, `{}`, constants.PriorityCompany, true, now))

	repo := NewModificationRepository(db)
	mods, err := repo.ListActive(context.Background(), "tmpl-1")

	assert.NoError(t, err)
	assert.Len(t, mods, 2)

	first := mods[0]
	assert.Equal(t, constants.ScopeGlobal, first.ScopeType)
	assert.Nil(t, first.ScopeID)
	assert.Equal(t, 2, *first.TargetPosition)
	assert.Equal(t, "prepare-freebie", first.Data.StepID())
	assert.Len(t, first.ScopeCriteria.Conditions, 1)
	assert.Equal(t, "riskScore", first.ScopeCriteria.Conditions[0].Field)

	second := mods[1]
	assert.Equal(t, "comp-456", *second.ScopeID)
	assert.Equal(t, "present-value", second.TargetStepID)
	assert.Nil(t, second.TargetPosition)
	assert.Nil(t, second.ScopeCriteria)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModificationRepositoryInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO workflow_modifications")).
		WithArgs("mod-1", "tmpl-1", constants.ScopeCustomer, sqlmock.AnyArg(), sqlmock.AnyArg(),
			constants.ModModifyStep, "greeting", sqlmock.AnyArg(), sqlmock.AnyArg(),
			constants.PriorityCustomer, true, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	custID := "cust-123"
	repo := NewModificationRepository(db)
	err = repo.Insert(context.Background(), &models.Modification{
		ID:           "mod-1",
		TemplateID:   "tmpl-1",
		ScopeType:    constants.ScopeCustomer,
		ScopeID:      &custID,
		Type:         constants.ModModifyStep,
		TargetStepID: "greeting",
		Data:         models.Record{"description": "White-glove outreach"},
		Priority:     constants.PriorityCustomer,
		IsActive:     true,
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestModificationRepositoryDeactivate(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE workflow_modifications SET is_active = FALSE WHERE id = ?")).
		WithArgs("mod-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewModificationRepository(db)
	err = repo.Deactivate(context.Background(), "mod-1")

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
