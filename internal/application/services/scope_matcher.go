package services

import (
	"encoding/json"
	"log"

	"github.com/pulsecs/backend/internal/domain/models"
	"github.com/pulsecs/backend/internal/domain/ports"
	"github.com/pulsecs/backend/pkg/constants"
)

// ScopeMatcher decides whether a modification applies to a compilation
// request. Pure predicate evaluation: no side effects, and anything
// malformed or unknown fails closed (does not match) rather than erroring.
type ScopeMatcher struct {
	evaluator ports.ConditionEvaluator
}

// NewScopeMatcher creates a ScopeMatcher. The evaluator handles optional
// free-form expression criteria; it may be nil, in which case expression
// criteria never match.
func NewScopeMatcher(evaluator ports.ConditionEvaluator) *ScopeMatcher {
	return &ScopeMatcher{evaluator: evaluator}
}

// Matches reports whether the modification applies to the request.
func (m *ScopeMatcher) Matches(mod *models.Modification, request *models.CompilationRequest) bool {
	switch mod.ScopeType {
	case constants.ScopeGlobal:
		// An unconditional global modification always applies
		if mod.ScopeCriteria.IsEmpty() {
			return true
		}
		return m.criteriaMatch(mod, request.SegmentContext)

	case constants.ScopeCompany:
		return mod.ScopeID != nil && *mod.ScopeID == request.CompanyID

	case constants.ScopeCustomer:
		return mod.ScopeID != nil && *mod.ScopeID == request.CustomerID

	case constants.ScopeIndustry:
		return mod.ScopeCriteria != nil && mod.ScopeCriteria.Industry != "" &&
			mod.ScopeCriteria.Industry == request.Industry

	case constants.ScopeSegment:
		if mod.ScopeCriteria.IsEmpty() {
			return false
		}
		return m.criteriaMatch(mod, request.SegmentContext)

	default:
		log.Printf("⚠️ ScopeMatcher: unknown scope type '%s' on modification %s", mod.ScopeType, mod.ID)
		return false
	}
}

// criteriaMatch evaluates structured conditions and the optional expression.
// Both must hold when both are present.
func (m *ScopeMatcher) criteriaMatch(mod *models.Modification, segmentContext map[string]interface{}) bool {
	criteria := mod.ScopeCriteria

	for _, cond := range criteria.Conditions {
		if !conditionHolds(cond, segmentContext) {
			return false
		}
	}

	if criteria.Expression != "" {
		if m.evaluator == nil {
			return false
		}
		result, err := m.evaluator.Evaluate(criteria.Expression, segmentContext)
		if err != nil {
			log.Printf("⚠️ ScopeMatcher: expression on modification %s failed, not matching: %v", mod.ID, err)
			return false
		}
		matched, ok := result.(bool)
		return ok && matched
	}

	return true
}

// conditionHolds compares one field of the segment context.
// Unknown fields and non-comparable values fail closed.
func conditionHolds(cond models.FieldCondition, segmentContext map[string]interface{}) bool {
	actual, ok := segmentContext[cond.Field]
	if !ok {
		return false
	}

	switch normalizeOp(cond.Op) {
	case constants.OpEq:
		if an, aok := toNumber(actual); aok {
			if en, eok := toNumber(cond.Value); eok {
				return an == en
			}
			return false
		}
		return actual == cond.Value
	case constants.OpGt:
		return compareNumbers(actual, cond.Value, func(a, b float64) bool { return a > b })
	case constants.OpLt:
		return compareNumbers(actual, cond.Value, func(a, b float64) bool { return a < b })
	case constants.OpGte:
		return compareNumbers(actual, cond.Value, func(a, b float64) bool { return a >= b })
	case constants.OpLte:
		return compareNumbers(actual, cond.Value, func(a, b float64) bool { return a <= b })
	default:
		return false
	}
}

// normalizeOp accepts the symbolic spellings authors tend to write
func normalizeOp(op string) string {
	switch op {
	case "=", "==":
		return constants.OpEq
	case ">":
		return constants.OpGt
	case "<":
		return constants.OpLt
	case ">=":
		return constants.OpGte
	case "<=":
		return constants.OpLte
	}
	return op
}

func compareNumbers(a, b interface{}, cmp func(a, b float64) bool) bool {
	af, aok := toNumber(a)
	bf, bok := toNumber(b)
	if !aok || !bok {
		return false
	}
	return cmp(af, bf)
}

func toNumber(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	}
	return 0, false
}
