package services

import (
	"context"
	"database/sql"

	"github.com/pulsecs/backend/internal/domain/models"
	"github.com/pulsecs/backend/internal/domain/ports"
	"github.com/pulsecs/backend/internal/infrastructure/persistence"
	"github.com/pulsecs/backend/pkg/expression"
)

// ServiceManager wires repositories and services together and is the single
// dependency handed to the REST layer.
type ServiceManager struct {
	Templates     *persistence.TemplateRepository
	Modifications *persistence.ModificationRepository
	ExecutionRepo *persistence.ExecutionRepository

	Compile    *CompileService
	Executions *ExecutionService
}

// NewServiceManager constructs the service graph. The context provider is
// injected because the customer system of record is an external collaborator.
func NewServiceManager(db *sql.DB, contexts ports.ContextProvider) *ServiceManager {
	templates := persistence.NewTemplateRepository(db)
	modifications := persistence.NewModificationRepository(db)
	executions := persistence.NewExecutionRepository(db)

	matcher := NewScopeMatcher(expression.NewEngine())
	compile := NewCompileService(
		templateProviderAdapter{templates},
		modificationProviderAdapter{modifications},
		contexts,
		executions,
		matcher,
	)

	return &ServiceManager{
		Templates:     templates,
		Modifications: modifications,
		ExecutionRepo: executions,
		Compile:       compile,
		Executions:    NewExecutionService(executions),
	}
}

// Thin adapters exposing repositories through the domain ports

type templateProviderAdapter struct {
	repo *persistence.TemplateRepository
}

func (a templateProviderAdapter) GetTemplate(ctx context.Context, name string) (*models.WorkflowTemplate, error) {
	return a.repo.GetByName(ctx, name)
}

type modificationProviderAdapter struct {
	repo *persistence.ModificationRepository
}

func (a modificationProviderAdapter) ListActiveModifications(ctx context.Context, templateID string) ([]*models.Modification, error) {
	return a.repo.ListActive(ctx, templateID)
}
