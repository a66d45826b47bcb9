package bootstrap

import (
	"context"
	"log"

	"github.com/google/uuid"
	"github.com/pulsecs/backend/internal/application/services"
	"github.com/pulsecs/backend/internal/domain/models"
	"github.com/pulsecs/backend/pkg/constants"
)

// SeedTemplates installs the starter renewal playbook when the template
// store is empty, so a fresh deployment can compile something immediately.
func SeedTemplates(svc *services.ServiceManager) error {
	ctx := context.Background()

	count, err := svc.Templates.Count(ctx)
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Println("🌱 Seeding starter renewal template...")

	template := renewalBaseTemplate()
	if err := svc.Templates.Insert(ctx, template); err != nil {
		return err
	}

	for _, mod := range starterModifications(template.ID) {
		if err := svc.Modifications.Insert(ctx, mod); err != nil {
			return err
		}
	}

	log.Printf("✅ Seeded template '%s' with %d steps", template.Name, len(template.BaseSteps))
	return nil
}

func renewalBaseTemplate() *models.WorkflowTemplate {
	step := func(id, name, description string) models.Record {
		return models.Record{
			models.KeyStepID:      id,
			models.KeyDisplayName: name,
			"description":         description,
		}
	}

	steps := []models.Record{
		step("review-account", "Review Account", "Review {{customer.name}}'s usage and support history."),
		step("check-health", "Check Health Score", "Current health score: {{segment.healthScore|number}}."),
		step("greeting", "Reach Out", "Open the renewal conversation with {{customer.name}}."),
		step("confirm-stakeholders", "Confirm Stakeholders", "Verify the decision makers are still in place."),
		step("present-value", "Present Value Summary", "Current ARR: {{customer.arr|currency}}."),
		step("discuss-terms", "Discuss Terms", "Walk through renewal terms and pricing."),
		step("handle-objections", "Handle Objections", "Address concerns raised during the terms discussion."),
		step("send-contract", "Send Contract", "Send the renewal contract for signature."),
		step("confirm-renewal", "Confirm Renewal", "Confirm signature and hand off to onboarding."),
	}

	steps[4][models.KeyArtifacts] = []interface{}{
		map[string]interface{}{
			models.KeyRefID:      "value-summary-card",
			models.KeyArtifactID: "arr-summary",
			"props": map[string]interface{}{
				"title": "{{customer.name}} Value Summary",
			},
		},
	}

	return &models.WorkflowTemplate{
		ID:        uuid.NewString(),
		Name:      "renewal_base",
		Category:  constants.CategoryRenewal,
		IsActive:  true,
		BaseSteps: steps,
		BaseArtifacts: map[string]models.Record{
			"arr-summary": {
				"component": "ArrSummaryCard",
				"layout":    "card",
			},
		},
	}
}

func starterModifications(templateID string) []*models.Modification {
	position := 2
	return []*models.Modification{
		{
			ID:         uuid.NewString(),
			TemplateID: templateID,
			ScopeType:  constants.ScopeGlobal,
			ScopeCriteria: &models.ScopeCriteria{
				Conditions: []models.FieldCondition{
					{Field: "riskScore", Op: constants.OpGt, Value: 60},
				},
			},
			Type:           constants.ModAddStep,
			TargetPosition: &position,
			Data: models.Record{
				models.KeyStepID:      "prepare-freebie",
				models.KeyDisplayName: "Prepare Retention Offer",
				"description":         "High churn risk: prepare a retention incentive before reaching out.",
			},
			Priority: constants.PriorityGlobal,
			IsActive: true,
		},
	}
}
