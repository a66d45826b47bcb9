package ports

import (
	"context"

	"github.com/pulsecs/backend/internal/domain/models"
)

// TemplateProvider is the read API for base workflow templates.
type TemplateProvider interface {
	// GetTemplate returns the template by its unique name, or nil if absent.
	// Inactive templates are treated as absent.
	GetTemplate(ctx context.Context, name string) (*models.WorkflowTemplate, error)
}

// ModificationProvider is the read API for modification records.
type ModificationProvider interface {
	// ListActiveModifications returns the active modifications for a
	// template, ordered by priority then id.
	ListActiveModifications(ctx context.Context, templateID string) ([]*models.Modification, error)
}

// ContextProvider fetches the customer/company data bundle from the external
// system of record. A failure here is fatal to the compilation attempt;
// retry policy belongs to the caller.
type ContextProvider interface {
	GetCompilationContext(ctx context.Context, customerID string) (*models.CompilationContext, error)
}

// ExecutionSink persists compiled executions.
type ExecutionSink interface {
	// SaveExecution stores a new execution and returns its id.
	SaveExecution(ctx context.Context, execution *models.CompiledWorkflowExecution) (string, error)
}

// RenewalSource lists customers whose contracts are approaching renewal.
// Used by the sweep scheduler to trigger proactive compilations.
type RenewalSource interface {
	ListCustomersDueForRenewal(ctx context.Context, withinDays int) ([]string, error)
}
