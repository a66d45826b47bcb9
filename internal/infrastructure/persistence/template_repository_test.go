package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/pulsecs/backend/internal/domain/models"
	"github.com/stretchr/testify/assert"
)

var templateTestColumns = []string{
	"id", "name", "category", "is_active",
	"base_steps", "base_artifacts", "created_date", "last_modified_date",
}

func TestTemplateRepositoryGetByName(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	stepsJSON := `[{"step_id":"greeting","display_name":"Reach Out"}]`
	artifactsJSON := `{"arr-summary":{"component":"ArrSummaryCard"}}`

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, category, is_active, base_steps, base_artifacts, created_date, last_modified_date FROM workflow_templates WHERE name = ? AND is_active = TRUE")).
		WithArgs("renewal_base").
		WillReturnRows(sqlmock.NewRows(templateTestColumns).
			AddRow("tmpl-1", "renewal_base", "renewal", true, stepsJSON, artifactsJSON, now, now))

	repo := NewTemplateRepository(db)
	template, err := repo.GetByName(context.Background(), "renewal_base")

	assert.NoError(t, err)
	assert.Equal(t, "tmpl-1", template.ID)
	assert.True(t, template.IsActive)
	assert.Len(t, template.BaseSteps, 1)
	assert.Equal(t, "greeting", template.BaseSteps[0].StepID())
	assert.Equal(t, "ArrSummaryCard", template.BaseArtifacts["arr-summary"]["component"])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepositoryGetByNameMissing(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, category, is_active, base_steps, base_artifacts, created_date, last_modified_date FROM workflow_templates WHERE name = ? AND is_active = TRUE")).
		WithArgs("no_such_template").
		WillReturnRows(sqlmock.NewRows(templateTestColumns))

	repo := NewTemplateRepository(db)
	template, err := repo.GetByName(context.Background(), "no_such_template")

	// Absence is not an error
	assert.NoError(t, err)
	assert.Nil(t, template)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepositoryGetByNameCorruptJSON(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, category, is_active, base_steps, base_artifacts, created_date, last_modified_date FROM workflow_templates WHERE name = ? AND is_active = TRUE")).
		WithArgs("renewal_base").
		WillReturnRows(sqlmock.NewRows(templateTestColumns).
			AddRow("tmpl-1", "renewal_base", "renewal", true, "{not json", nil, now, now))

	repo := NewTemplateRepository(db)
	_, err = repo.GetByName(context.Background(), "renewal_base")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt base_steps")
}

func TestTemplateRepositoryList(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	now := time.Now().UTC()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, category, is_active, base_steps, base_artifacts, created_date, last_modified_date FROM workflow_templates ORDER BY created_date DESC")).
		WillReturnRows(sqlmock.NewRows(templateTestColumns).
			AddRow("tmpl-2", "expansion_base", "expansion", true, "[]", nil, now, now).
			AddRow("tmpl-1", "renewal_base", "renewal", false, "[]", nil, now, now))

	repo := NewTemplateRepository(db)
	templates, err := repo.List(context.Background())

	assert.NoError(t, err)
	assert.Len(t, templates, 2)
	assert.Equal(t, "expansion_base", templates[0].Name)
	assert.False(t, templates[1].IsActive)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTemplateRepositoryInsert(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO workflow_templates")).
		WithArgs("tmpl-1", "renewal_base", "renewal", true,
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	repo := NewTemplateRepository(db)
	err = repo.Insert(context.Background(), &models.WorkflowTemplate{
		ID:       "tmpl-1",
		Name:     "renewal_base",
		Category: "renewal",
		IsActive: true,
		BaseSteps: []models.Record{
			{models.KeyStepID: "greeting"},
		},
	})

	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
