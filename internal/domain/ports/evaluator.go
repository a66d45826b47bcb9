package ports

// ConditionEvaluator evaluates a free-form condition expression against an
// environment. The scope matcher uses it for expression-based criteria;
// evaluation errors fail closed (the modification does not match).
type ConditionEvaluator interface {
	Evaluate(expression string, env map[string]interface{}) (interface{}, error)
}
