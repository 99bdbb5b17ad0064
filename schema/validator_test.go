package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewValidator(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)
	require.NotNil(t, v)
}

func TestValidateAcceptsMinimalConfig(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	cfg := map[string]interface{}{
		"keypad": map[string]interface{}{
			"pages": []interface{}{
				map[string]interface{}{
					"name": "core",
					"slots": []interface{}{
						map[string]interface{}{"prompt_id": "ship"},
						map[string]interface{}{}, map[string]interface{}{},
						map[string]interface{}{}, map[string]interface{}{},
						map[string]interface{}{}, map[string]interface{}{},
						map[string]interface{}{}, map[string]interface{}{},
					},
				},
			},
		},
		"prompts": map[string]interface{}{
			"ship": map[string]interface{}{"label": "SHIP", "claude_command": "/runbook:ship"},
		},
	}
	assert.NoError(t, v.Validate(cfg))
}

func TestValidateRejectsUnknownTopLevelKey(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	cfg := map[string]interface{}{
		"keypad":  map[string]interface{}{"pages": []interface{}{}},
		"keypads": true,
	}
	err = v.Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestValidateRejectsWrongSlotCount(t *testing.T) {
	v, err := NewValidator()
	require.NoError(t, err)

	cfg := map[string]interface{}{
		"keypad": map[string]interface{}{
			"pages": []interface{}{
				map[string]interface{}{
					"name":  "core",
					"slots": []interface{}{map[string]interface{}{}},
				},
			},
		},
	}
	assert.Error(t, v.Validate(cfg))
}
