package constants

// Modification scope types
const (
	ScopeGlobal   = "global"
	ScopeCompany  = "company"
	ScopeCustomer = "customer"
	ScopeIndustry = "industry"
	ScopeSegment  = "segment"
)

// Modification verbs
const (
	ModAddStep        = "add_step"
	ModRemoveStep     = "remove_step"
	ModReplaceStep    = "replace_step"
	ModModifyStep     = "modify_step"
	ModAddArtifact    = "add_artifact"
	ModRemoveArtifact = "remove_artifact"
)

// Scope criteria comparison operators
const (
	OpEq  = "eq"
	OpGt  = "gt"
	OpLt  = "lt"
	OpGte = "gte"
	OpLte = "lte"
)

// Execution status constants
const (
	ExecutionStatusNotStarted = "not_started"
	ExecutionStatusInProgress = "in_progress"
	ExecutionStatusCompleted  = "completed"
	ExecutionStatusAbandoned  = "abandoned"
)

// Conventional modification priorities. The merge engine treats priority
// purely as a sort key; these are authoring defaults, never inferred.
const (
	PriorityGlobal   = 100
	PriorityCompany  = 200
	PriorityCustomer = 300
)

// Placeholder formatter names (the suffix in {{path|formatter}})
const (
	FormatterCurrency = "currency"
	FormatterPercent  = "percent"
	FormatterDate     = "date"
	FormatterNumber   = "number"
)

// Template categories
const (
	CategoryRenewal         = "renewal"
	CategoryExpansion       = "expansion"
	CategoryContactRecovery = "contact-recovery"
)
