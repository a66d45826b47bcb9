package services

import (
	"testing"

	"github.com/pulsecs/backend/internal/domain/models"
	"github.com/pulsecs/backend/pkg/constants"
	"github.com/pulsecs/backend/pkg/expression"
	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func matchRequest() *models.CompilationRequest {
	return &models.CompilationRequest{
		CustomerID: "cust-123",
		CompanyID:  "comp-456",
		Industry:   "healthcare",
		SegmentContext: map[string]interface{}{
			"riskScore":   float64(75),
			"healthScore": float64(40),
			"tier":        "enterprise",
		},
	}
}

func TestScopeMatcherGlobal(t *testing.T) {
	matcher := NewScopeMatcher(expression.NewEngine())

	assert.True(t, matcher.Matches(&models.Modification{
		ID:        "mod-1",
		ScopeType: constants.ScopeGlobal,
	}, matchRequest()))

	// Conditional global applies only when criteria hold
	conditional := &models.Modification{
		ID:        "mod-2",
		ScopeType: constants.ScopeGlobal,
		ScopeCriteria: &models.ScopeCriteria{
			Conditions: []models.FieldCondition{
				{Field: "riskScore", Op: constants.OpGt, Value: 60},
			},
		},
	}
	assert.True(t, matcher.Matches(conditional, matchRequest()))

	conditional.ScopeCriteria.Conditions[0].Value = 90
	assert.False(t, matcher.Matches(conditional, matchRequest()))
}

func TestScopeMatcherCompanyAndCustomer(t *testing.T) {
	matcher := NewScopeMatcher(expression.NewEngine())

	tests := []struct {
		name string
		mod  *models.Modification
		want bool
	}{
		{"company match", &models.Modification{ScopeType: constants.ScopeCompany, ScopeID: strPtr("comp-456")}, true},
		{"company mismatch", &models.Modification{ScopeType: constants.ScopeCompany, ScopeID: strPtr("comp-999")}, false},
		{"company nil scope id", &models.Modification{ScopeType: constants.ScopeCompany}, false},
		{"customer match", &models.Modification{ScopeType: constants.ScopeCustomer, ScopeID: strPtr("cust-123")}, true},
		{"customer mismatch", &models.Modification{ScopeType: constants.ScopeCustomer, ScopeID: strPtr("cust-999")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matcher.Matches(tt.mod, matchRequest()))
		})
	}
}

func TestScopeMatcherIndustry(t *testing.T) {
	matcher := NewScopeMatcher(expression.NewEngine())

	tests := []struct {
		name     string
		criteria *models.ScopeCriteria
		want     bool
	}{
		{"match", &models.ScopeCriteria{Industry: "healthcare"}, true},
		{"mismatch", &models.ScopeCriteria{Industry: "fintech"}, false},
		{"empty industry fails closed", &models.ScopeCriteria{}, false},
		{"nil criteria fails closed", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := &models.Modification{ScopeType: constants.ScopeIndustry, ScopeCriteria: tt.criteria}
			assert.Equal(t, tt.want, matcher.Matches(mod, matchRequest()))
		})
	}
}

func TestScopeMatcherSegmentConditions(t *testing.T) {
	matcher := NewScopeMatcher(expression.NewEngine())

	tests := []struct {
		name       string
		conditions []models.FieldCondition
		want       bool
	}{
		{
			"numeric gt holds",
			[]models.FieldCondition{{Field: "riskScore", Op: constants.OpGt, Value: 60}},
			true,
		},
		{
			"numeric lt fails",
			[]models.FieldCondition{{Field: "riskScore", Op: constants.OpLt, Value: 60}},
			false,
		},
		{
			"all conditions must hold",
			[]models.FieldCondition{
				{Field: "riskScore", Op: constants.OpGt, Value: 60},
				{Field: "healthScore", Op: constants.OpGte, Value: 50},
			},
			false,
		},
		{
			"string equality",
			[]models.FieldCondition{{Field: "tier", Op: constants.OpEq, Value: "enterprise"}},
			true,
		},
		{
			"symbolic operator spelling",
			[]models.FieldCondition{{Field: "riskScore", Op: ">=", Value: 75}},
			true,
		},
		{
			"unknown field fails closed",
			[]models.FieldCondition{{Field: "missing", Op: constants.OpEq, Value: 1}},
			false,
		},
		{
			"unknown operator fails closed",
			[]models.FieldCondition{{Field: "riskScore", Op: "between", Value: 1}},
			false,
		},
		{
			"non-numeric comparison fails closed",
			[]models.FieldCondition{{Field: "tier", Op: constants.OpGt, Value: 5}},
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := &models.Modification{
				ScopeType:     constants.ScopeSegment,
				ScopeCriteria: &models.ScopeCriteria{Conditions: tt.conditions},
			}
			assert.Equal(t, tt.want, matcher.Matches(mod, matchRequest()))
		})
	}
}

func TestScopeMatcherSegmentExpression(t *testing.T) {
	matcher := NewScopeMatcher(expression.NewEngine())

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{"expression holds", "riskScore > 60 && tier == 'enterprise'", true},
		{"expression false", "riskScore > 90", false},
		{"non-boolean result fails closed", "riskScore + 1", false},
		{"evaluation error fails closed", "undefinedField.child > 1", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := &models.Modification{
				ScopeType:     constants.ScopeSegment,
				ScopeCriteria: &models.ScopeCriteria{Expression: tt.expr},
			}
			assert.Equal(t, tt.want, matcher.Matches(mod, matchRequest()))
		})
	}
}

func TestScopeMatcherSegmentEmptyCriteriaFailsClosed(t *testing.T) {
	matcher := NewScopeMatcher(expression.NewEngine())

	assert.False(t, matcher.Matches(&models.Modification{
		ScopeType:     constants.ScopeSegment,
		ScopeCriteria: &models.ScopeCriteria{},
	}, matchRequest()))
	assert.False(t, matcher.Matches(&models.Modification{
		ScopeType: constants.ScopeSegment,
	}, matchRequest()))
}

func TestScopeMatcherConditionsAndExpressionBothRequired(t *testing.T) {
	matcher := NewScopeMatcher(expression.NewEngine())

	mod := &models.Modification{
		ScopeType: constants.ScopeSegment,
		ScopeCriteria: &models.ScopeCriteria{
			Conditions: []models.FieldCondition{
				{Field: "riskScore", Op: constants.OpGt, Value: 60},
			},
			Expression: "tier == 'smb'",
		},
	}

	// Conditions hold but the expression does not
	assert.False(t, matcher.Matches(mod, matchRequest()))

	mod.ScopeCriteria.Expression = "tier == 'enterprise'"
	assert.True(t, matcher.Matches(mod, matchRequest()))
}

func TestScopeMatcherUnknownScopeFailsClosed(t *testing.T) {
	matcher := NewScopeMatcher(expression.NewEngine())

	assert.False(t, matcher.Matches(&models.Modification{
		ScopeType: "region",
	}, matchRequest()))
}

func TestScopeMatcherNilEvaluator(t *testing.T) {
	matcher := NewScopeMatcher(nil)

	assert.False(t, matcher.Matches(&models.Modification{
		ScopeType:     constants.ScopeSegment,
		ScopeCriteria: &models.ScopeCriteria{Expression: "riskScore > 1"},
	}, matchRequest()))
}
