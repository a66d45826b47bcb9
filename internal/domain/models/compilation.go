package models

import (
	"time"
)

// Warning kinds recorded during compilation
const (
	WarningMissingTarget         = "missing_target"
	WarningUnresolvedPlaceholder = "unresolved_placeholder"
)

// CompilationWarning records a non-fatal data-quality issue encountered while
// compiling: a modification whose target step/artifact was absent, or a
// placeholder path the hydration context could not resolve.
type CompilationWarning struct {
	Kind           string `json:"kind"`
	ModificationID string `json:"modification_id,omitempty"`
	Detail         string `json:"detail"`
}

// CompilationRequest identifies the audience a compilation is for.
// The scope matcher evaluates modifications against it.
type CompilationRequest struct {
	CustomerID     string                 `json:"customer_id"`
	CompanyID      string                 `json:"company_id"`
	Industry       string                 `json:"industry"`
	SegmentContext map[string]interface{} `json:"segment_context,omitempty"`
}

// CompilationContext is the customer/company data bundle fetched from the
// external system of record. The compiler treats it as opaque key-value data.
type CompilationContext struct {
	Customer      Record                 `json:"customer"`
	Company       Record                 `json:"company"`
	Industry      string                 `json:"industry"`
	SegmentFields map[string]interface{} `json:"segment_fields,omitempty"`
}

// CompiledWorkflowExecution is the output of one compilation call: fully
// merged, fully hydrated, with the ordered provenance trail of every
// modification applied (including applied-as-no-op). Compiled content is
// immutable after creation; re-compilation produces a new execution.
type CompiledWorkflowExecution struct {
	ID                     string               `json:"id"`
	TemplateID             string               `json:"template_id"`
	CustomerID             string               `json:"customer_id"`
	AppliedModificationIDs []string             `json:"applied_modification_ids"`
	CompiledSteps          []Record             `json:"compiled_steps"`
	CompiledArtifacts      map[string]Record    `json:"compiled_artifacts,omitempty"`
	Warnings               []CompilationWarning `json:"warnings,omitempty"`
	Status                 string               `json:"status"`
	CurrentStepID          *string              `json:"current_step_id,omitempty"`
	CreatedDate            time.Time            `json:"created_date"`
	LastModified           time.Time            `json:"last_modified_date"`
}
