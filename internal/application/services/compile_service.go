package services

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/pulsecs/backend/internal/domain/models"
	"github.com/pulsecs/backend/internal/domain/ports"
	"github.com/pulsecs/backend/pkg/constants"
	"github.com/pulsecs/backend/pkg/errors"
	"github.com/pulsecs/backend/pkg/hydrate"
)

// CompileService is the public entry point of the compilation engine.
// It loads the base template, filters and orders the modification layers,
// merges them, hydrates the result with customer/company data, and persists
// a new immutable execution with full provenance.
//
// Fatal errors (template not found, invalid modification, data provider
// unavailable) abort before any persistence call; nothing partial is ever
// stored. Non-fatal issues accumulate as warnings on the result.
type CompileService struct {
	templates ports.TemplateProvider
	mods      ports.ModificationProvider
	contexts  ports.ContextProvider
	sink      ports.ExecutionSink
	matcher   *ScopeMatcher
	merger    *MergeEngine
}

// NewCompileService creates a CompileService with interface dependencies.
func NewCompileService(
	templates ports.TemplateProvider,
	mods ports.ModificationProvider,
	contexts ports.ContextProvider,
	sink ports.ExecutionSink,
	matcher *ScopeMatcher,
) *CompileService {
	return &CompileService{
		templates: templates,
		mods:      mods,
		contexts:  contexts,
		sink:      sink,
		matcher:   matcher,
		merger:    NewMergeEngine(),
	}
}

// Compile runs the full pipeline and persists the resulting execution.
func (s *CompileService) Compile(ctx context.Context, templateName, customerID string, triggerContext map[string]interface{}) (*models.CompiledWorkflowExecution, error) {
	execution, err := s.build(ctx, templateName, customerID, triggerContext)
	if err != nil {
		return nil, err
	}

	if _, err := s.sink.SaveExecution(ctx, execution); err != nil {
		return nil, errors.NewInternalError("failed to persist compiled execution", err)
	}

	log.Printf("✅ Compiled '%s' for customer %s: %d steps, %d modifications, %d warnings",
		templateName, customerID, len(execution.CompiledSteps), len(execution.AppliedModificationIDs), len(execution.Warnings))
	return execution, nil
}

// Preview runs the same pipeline without persisting anything. Operators use
// it to audit what a compilation would produce.
func (s *CompileService) Preview(ctx context.Context, templateName, customerID string, triggerContext map[string]interface{}) (*models.CompiledWorkflowExecution, error) {
	return s.build(ctx, templateName, customerID, triggerContext)
}

func (s *CompileService) build(ctx context.Context, templateName, customerID string, triggerContext map[string]interface{}) (*models.CompiledWorkflowExecution, error) {
	// 1. Load template; inactive counts as absent
	template, err := s.templates.GetTemplate(ctx, templateName)
	if err != nil {
		return nil, errors.NewInternalError("failed to load template", err)
	}
	if template == nil || !template.IsActive {
		return nil, errors.NewNotFoundError("WorkflowTemplate", templateName)
	}

	// 2. Fetch customer/company data; needed both for scope matching
	// (company id, industry) and for the hydration context
	compCtx, err := s.contexts.GetCompilationContext(ctx, customerID)
	if err != nil {
		return nil, errors.NewDependencyError("compilation context provider", err)
	}

	// 3. Filter modifications through the scope matcher, then order by
	// priority and id so the merge is reproducible
	allMods, err := s.mods.ListActiveModifications(ctx, template.ID)
	if err != nil {
		return nil, errors.NewInternalError("failed to load modifications", err)
	}

	request := buildRequest(customerID, compCtx, triggerContext)
	applicable := make([]*models.Modification, 0, len(allMods))
	for _, mod := range allMods {
		if s.matcher.Matches(mod, request) {
			applicable = append(applicable, mod)
		}
	}
	SortModifications(applicable)

	// 4. Merge. Provenance records every applicable modification in applied
	// order, including the ones applied as no-ops.
	merged, err := s.merger.Merge(template.BaseSteps, template.BaseArtifacts, applicable)
	if err != nil {
		return nil, err
	}

	appliedIDs := make([]string, len(applicable))
	for i, mod := range applicable {
		appliedIDs[i] = mod.ID
	}

	// 5. Hydrate every string field against the customer/company context
	hydrationCtx := buildHydrationContext(compCtx, triggerContext)
	steps, artifacts, hydrationWarnings := hydrateResult(merged, hydrationCtx)

	warnings := merged.Warnings
	warnings = append(warnings, hydrationWarnings...)

	var currentStepID *string
	if len(steps) > 0 {
		first := steps[0].StepID()
		currentStepID = &first
	}

	now := time.Now().UTC()
	return &models.CompiledWorkflowExecution{
		ID:                     uuid.NewString(),
		TemplateID:             template.ID,
		CustomerID:             customerID,
		AppliedModificationIDs: appliedIDs,
		CompiledSteps:          steps,
		CompiledArtifacts:      artifacts,
		Warnings:               warnings,
		Status:                 constants.ExecutionStatusNotStarted,
		CurrentStepID:          currentStepID,
		CreatedDate:            now,
		LastModified:           now,
	}, nil
}

// buildRequest assembles the scope-matching request. The segment context is
// the provider's segment fields overlaid with the trigger context, so a
// caller-supplied value (e.g. a fresher risk score) wins.
func buildRequest(customerID string, compCtx *models.CompilationContext, triggerContext map[string]interface{}) *models.CompilationRequest {
	segment := make(map[string]interface{}, len(compCtx.SegmentFields)+len(triggerContext))
	for k, v := range compCtx.SegmentFields {
		segment[k] = v
	}
	for k, v := range triggerContext {
		segment[k] = v
	}

	return &models.CompilationRequest{
		CustomerID:     customerID,
		CompanyID:      compCtx.Company.GetString("id"),
		Industry:       compCtx.Industry,
		SegmentContext: segment,
	}
}

func buildHydrationContext(compCtx *models.CompilationContext, triggerContext map[string]interface{}) map[string]interface{} {
	segment := make(map[string]interface{}, len(compCtx.SegmentFields))
	for k, v := range compCtx.SegmentFields {
		segment[k] = v
	}
	return map[string]interface{}{
		"customer": map[string]interface{}(compCtx.Customer),
		"company":  map[string]interface{}(compCtx.Company),
		"industry": compCtx.Industry,
		"segment":  segment,
		"trigger":  triggerContext,
	}
}

func hydrateResult(merged *MergeResult, hydrationCtx map[string]interface{}) ([]models.Record, map[string]models.Record, []models.CompilationWarning) {
	var warnings []models.CompilationWarning
	record := func(paths []string) {
		for _, path := range paths {
			log.Printf("⚠️ Hydration: unresolved placeholder '%s'", path)
			warnings = append(warnings, models.CompilationWarning{
				Kind:   models.WarningUnresolvedPlaceholder,
				Detail: path,
			})
		}
	}

	steps := make([]models.Record, len(merged.Steps))
	for i, step := range merged.Steps {
		hydrated, paths := hydrate.Map(step, hydrationCtx)
		steps[i] = models.Record(hydrated)
		record(paths)
	}

	artifacts := make(map[string]models.Record, len(merged.Artifacts))
	for id, artifact := range merged.Artifacts {
		hydrated, paths := hydrate.Map(artifact, hydrationCtx)
		artifacts[id] = models.Record(hydrated)
		record(paths)
	}

	return steps, artifacts, warnings
}
