package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEngine_Evaluate(t *testing.T) {
	engine := NewEngine()

	env := map[string]interface{}{
		"riskScore":     64,
		"daysToRenewal": 30,
		"tier":          "enterprise",
	}

	t.Run("Boolean condition", func(t *testing.T) {
		result, err := engine.Evaluate(`riskScore > 60 and daysToRenewal < 45`, env)
		assert.NoError(t, err)
		assert.Equal(t, true, result)
	})

	t.Run("String comparison with helper", func(t *testing.T) {
		result, err := engine.Evaluate(`UPPER(tier) == "ENTERPRISE"`, env)
		assert.NoError(t, err)
		assert.Equal(t, true, result)
	})

	t.Run("Unknown identifier fails", func(t *testing.T) {
		_, err := engine.Evaluate(`nonexistent > 5`, env)
		assert.Error(t, err)
	})

	t.Run("Program cache returns same result", func(t *testing.T) {
		for i := 0; i < 3; i++ {
			result, err := engine.Evaluate(`riskScore > 60`, env)
			assert.NoError(t, err)
			assert.Equal(t, true, result)
		}
	})
}

func TestEngine_RegisterFunction(t *testing.T) {
	engine := NewEngine()

	engine.RegisterFunction("DOUBLE", func(params ...interface{}) (interface{}, error) {
		return params[0].(int) * 2, nil
	})

	result, err := engine.Evaluate(`DOUBLE(21)`, map[string]interface{}{})
	assert.NoError(t, err)
	assert.Equal(t, 42, result)
}
