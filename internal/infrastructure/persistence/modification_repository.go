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

// ModificationRepository reads and writes modification records.
// Modifications referenced by a persisted execution are never edited in
// place; authors disable (is_active = false) and insert a replacement row.
type ModificationRepository struct {
	db *sql.DB
}

// NewModificationRepository creates a new ModificationRepository
func NewModificationRepository(db *sql.DB) *ModificationRepository {
	return &ModificationRepository{db: db}
}

var modificationColumns = fmt.Sprintf("%s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s, %s",
	constants.FieldID, constants.FieldModTemplateID, constants.FieldModScopeType,
	constants.FieldModScopeID, constants.FieldModScopeCriteria, constants.FieldModType,
	constants.FieldModTargetStepID, constants.FieldModTargetPosition, constants.FieldModData,
	constants.FieldModPriority, constants.FieldModIsActive, constants.FieldCreatedDate)

// ListActive returns the active modifications for a template ordered by
// priority then id, the order the merge engine applies them in.
func (r *ModificationRepository) ListActive(ctx context.Context, templateID string) ([]*models.Modification, error) {
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s = ? AND %s = TRUE ORDER BY %s ASC, %s ASC",
		modificationColumns, constants.TableModification,
		constants.FieldModTemplateID, constants.FieldModIsActive,
		constants.FieldModPriority, constants.FieldID)

	rows, err := r.db.QueryContext(ctx, query, templateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mods []*models.Modification
	for rows.Next() {
		mod, err := scanModification(rows)
		if err != nil {
			return nil, err
		}
		mods = append(mods, mod)
	}
	return mods, rows.Err()
}

// Insert stores a new modification
func (r *ModificationRepository) Insert(ctx context.Context, mod *models.Modification) error {
	var criteriaJSON []byte
	if mod.ScopeCriteria != nil {
		var err error
		criteriaJSON, err = json.Marshal(mod.ScopeCriteria)
		if err != nil {
			return fmt.Errorf("failed to marshal scope criteria: %w", err)
		}
	}
	dataJSON, err := json.Marshal(mod.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal modification data: %w", err)
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		constants.TableModification, modificationColumns)

	_, err = r.db.ExecContext(ctx, query,
		mod.ID, mod.TemplateID, mod.ScopeType, mod.ScopeID, criteriaJSON, mod.Type,
		nullableString(mod.TargetStepID), mod.TargetPosition, dataJSON,
		mod.Priority, mod.IsActive, time.Now().UTC())
	return err
}

// Deactivate soft-disables a modification so historical compilations that
// reference it remain reproducible.
func (r *ModificationRepository) Deactivate(ctx context.Context, modificationID string) error {
	query := fmt.Sprintf("UPDATE %s SET %s = FALSE WHERE %s = ?",
		constants.TableModification, constants.FieldModIsActive, constants.FieldID)
	_, err := r.db.ExecContext(ctx, query, modificationID)
	return err
}

func scanModification(row rowScanner) (*models.Modification, error) {
	var mod models.Modification
	var scopeID, targetStepID sql.NullString
	var targetPosition sql.NullInt64
	var criteriaJSON, dataJSON []byte

	err := row.Scan(&mod.ID, &mod.TemplateID, &mod.ScopeType, &scopeID, &criteriaJSON,
		&mod.Type, &targetStepID, &targetPosition, &dataJSON, &mod.Priority,
		&mod.IsActive, &mod.CreatedDate)
	if err != nil {
		return nil, err
	}

	if scopeID.Valid {
		mod.ScopeID = &scopeID.String
	}
	if targetStepID.Valid {
		mod.TargetStepID = targetStepID.String
	}
	if targetPosition.Valid {
		pos := int(targetPosition.Int64)
		mod.TargetPosition = &pos
	}
	if len(criteriaJSON) > 0 {
		if err := json.Unmarshal(criteriaJSON, &mod.ScopeCriteria); err != nil {
			return nil, fmt.Errorf("corrupt scope_criteria for modification %s: %w", mod.ID, err)
		}
	}
	if len(dataJSON) > 0 {
		if err := json.Unmarshal(dataJSON, &mod.Data); err != nil {
			return nil, fmt.Errorf("corrupt modification_data for modification %s: %w", mod.ID, err)
		}
	}
	return &mod, nil
}

func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
