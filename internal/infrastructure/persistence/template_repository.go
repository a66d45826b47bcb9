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

// TemplateRepository reads and writes base workflow templates.
// Nested step/artifact structures live in JSON columns.
type TemplateRepository struct {
	db *sql.DB
}

// NewTemplateRepository creates a new TemplateRepository
func NewTemplateRepository(db *sql.DB) *TemplateRepository {
	return &TemplateRepository{db: db}
}

var templateColumns = fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s",
	constants.FieldID, constants.FieldTemplateName, constants.FieldTemplateCategory,
	constants.FieldTemplateIsActive, constants.FieldTemplateSteps, constants.FieldTemplateArtifacts,
	constants.FieldCreatedDate, constants.FieldLastModifiedDate)

// GetByName returns the active template with the given unique name,
// or nil if it does not exist or is inactive.
func (r *TemplateRepository) GetByName(ctx context.Context, name string) (*models.WorkflowTemplate, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? AND %s = TRUE",
		templateColumns, constants.TableTemplate, constants.FieldTemplateName, constants.FieldTemplateIsActive)

	template, err := scanTemplate(r.db.QueryRowContext(ctx, query, name))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return template, err
}

// List returns all templates, active and inactive, newest first
func (r *TemplateRepository) List(ctx context.Context) ([]*models.WorkflowTemplate, error) {
	query := fmt.Sprintf("SELECT %s FROM %s ORDER BY %s DESC",
		templateColumns, constants.TableTemplate, constants.FieldCreatedDate)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []*models.WorkflowTemplate
	for rows.Next() {
		template, err := scanTemplate(rows)
		if err != nil {
			return nil, err
		}
		templates = append(templates, template)
	}
	return templates, rows.Err()
}

// Count returns the number of templates (used by bootstrap seeding)
func (r *TemplateRepository) Count(ctx context.Context) (int, error) {
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", constants.TableTemplate)
	err := r.db.QueryRowContext(ctx, query).Scan(&count)
	return count, err
}

// Insert stores a new template
func (r *TemplateRepository) Insert(ctx context.Context, template *models.WorkflowTemplate) error {
	stepsJSON, err := json.Marshal(template.BaseSteps)
	if err != nil {
		return fmt.Errorf("failed to marshal base steps: %w", err)
	}
	artifactsJSON, err := json.Marshal(template.BaseArtifacts)
	if err != nil {
		return fmt.Errorf("failed to marshal base artifacts: %w", err)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		constants.TableTemplate, templateColumns)

	now := time.Now().UTC()
	_, err = r.db.ExecContext(ctx, query,
		template.ID, template.Name, template.Category, template.IsActive,
		stepsJSON, artifactsJSON, now, now)
	return err
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTemplate(row rowScanner) (*models.WorkflowTemplate, error) {
	var template models.WorkflowTemplate
	var stepsJSON, artifactsJSON []byte

	err := row.Scan(&template.ID, &template.Name, &template.Category, &template.IsActive,
		&stepsJSON, &artifactsJSON, &template.CreatedDate, &template.LastModified)
	if err != nil {
		return nil, err
	}

	if len(stepsJSON) > 0 {
		if err := json.Unmarshal(stepsJSON, &template.BaseSteps); err != nil {
			return nil, fmt.Errorf("corrupt base_steps for template %s: %w", template.ID, err)
		}
	}
	if len(artifactsJSON) > 0 {
		if err := json.Unmarshal(artifactsJSON, &template.BaseArtifacts); err != nil {
			return nil, fmt.Errorf("corrupt base_artifacts for template %s: %w", template.ID, err)
		}
	}
	return &template, nil
}
