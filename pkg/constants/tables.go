package constants

// Table names
const (
	TableTemplate     = "workflow_templates"
	TableModification = "workflow_modifications"
	TableExecution    = "workflow_executions"
)

// Common fields present on every table
const (
	FieldID               = "id"
	FieldCreatedDate      = "created_date"
	FieldLastModifiedDate = "last_modified_date"
)

// workflow_templates fields
const (
	FieldTemplateName      = "name"
	FieldTemplateCategory  = "category"
	FieldTemplateIsActive  = "is_active"
	FieldTemplateSteps     = "base_steps"
	FieldTemplateArtifacts = "base_artifacts"
)

// workflow_modifications fields
const (
	FieldModTemplateID     = "template_id"
	FieldModScopeType      = "scope_type"
	FieldModScopeID        = "scope_id"
	FieldModScopeCriteria  = "scope_criteria"
	FieldModType           = "modification_type"
	FieldModTargetStepID   = "target_step_id"
	FieldModTargetPosition = "target_position"
	FieldModData           = "modification_data"
	FieldModPriority       = "priority"
	FieldModIsActive       = "is_active"
)

// workflow_executions fields
const (
	FieldExecTemplateID    = "template_id"
	FieldExecCustomerID    = "customer_id"
	FieldExecAppliedMods   = "applied_modification_ids"
	FieldExecSteps         = "compiled_steps"
	FieldExecArtifacts     = "compiled_artifacts"
	FieldExecWarnings      = "warnings"
	FieldExecStatus        = "status"
	FieldExecCurrentStepID = "current_step_id"
)
