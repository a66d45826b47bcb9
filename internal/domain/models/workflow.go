package models

import (
	"time"
)

// WorkflowTemplate represents a reusable base workflow definition.
// Templates are authored by maintainers and are read-only to the compiler;
// compilation always works on copies (see Record.Clone).
type WorkflowTemplate struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"` // unique key
	Category      string            `json:"category"`
	IsActive      bool              `json:"is_active"`
	BaseSteps     []Record          `json:"base_steps"`
	BaseArtifacts map[string]Record `json:"base_artifacts,omitempty"`
	CreatedDate   time.Time         `json:"created_date"`
	LastModified  time.Time         `json:"last_modified_date"`
}

// FieldCondition is one comparison in a scope predicate,
// e.g. { "field": "riskScore", "op": "gt", "value": 60 }
type FieldCondition struct {
	Field string      `json:"field"`
	Op    string      `json:"op"`
	Value interface{} `json:"value"`
}

// ScopeCriteria is the predicate data attached to global, segment and
// industry scoped modifications. All populated parts must hold for a match.
type ScopeCriteria struct {
	Industry   string           `json:"industry,omitempty"`
	Conditions []FieldCondition `json:"conditions,omitempty"`
	// Expression is an optional free-form condition evaluated against the
	// segment context (e.g. `riskScore > 60 and daysToRenewal < 45`).
	Expression string `json:"expression,omitempty"`
}

// IsEmpty reports whether the criteria carries no predicate at all
func (c *ScopeCriteria) IsEmpty() bool {
	return c == nil || (c.Industry == "" && len(c.Conditions) == 0 && c.Expression == "")
}

// Modification is a scoped, prioritized patch applied to a template at
// compile time. Once referenced by a persisted execution a modification is
// immutable; authors disable and re-create rather than edit in place, so
// historical compilations stay reproducible.
type Modification struct {
	ID             string         `json:"id"`
	TemplateID     string         `json:"template_id"`
	ScopeType      string         `json:"scope_type"` // global, company, customer, industry, segment
	ScopeID        *string        `json:"scope_id,omitempty"`
	ScopeCriteria  *ScopeCriteria `json:"scope_criteria,omitempty"`
	Type           string         `json:"modification_type"`
	TargetStepID   string         `json:"target_step_id,omitempty"`
	TargetPosition *int           `json:"target_position,omitempty"`
	Data           Record         `json:"modification_data,omitempty"`
	Priority       int            `json:"priority"` // lower applies first
	IsActive       bool           `json:"is_active"`
	CreatedDate    time.Time      `json:"created_date"`
}
