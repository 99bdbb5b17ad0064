package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateSchema generates the base JSON Schema for the runbook
// configuration. It reflects the Config struct from types.go but excludes
// the 'Extensions' field, which is handled by schema composition.
func GenerateSchema() ([]byte, error) {
	r := &jsonschema.Reflector{
		// Do not allow unknown fields; extensions are added explicitly during composition.
		AllowAdditionalProperties: false,
		// Expand struct references instead of using $ref for cleaner base schema.
		ExpandedStruct: true,
		// Use YAML field names for property names
		FieldNameTag: "yaml",
	}

	// A temporary struct that omits the Extensions field so it's not
	// included in the base schema.
	type BaseConfig struct {
		Daemon         *DaemonConfig           `yaml:"daemon,omitempty" jsonschema:"description=Daemon transport settings"`
		Keypad         KeypadConfig            `yaml:"keypad" jsonschema:"required,description=Keypad page/slot layout (9 slots per page)"`
		Prompts        map[string]PromptConfig `yaml:"prompts,omitempty" jsonschema:"description=Named armable prompts"`
		Gates          map[string]GateConfig   `yaml:"gates,omitempty" jsonschema:"description=Named navigation gates (immediate dispatch)"`
		PrimaryTooling string                  `yaml:"primary_tooling,omitempty" jsonschema:"enum=claude,enum=generic,description=Which command text prompts dispatch"`
	}

	schema := r.Reflect(&BaseConfig{})
	schema.Title = "Runbook Configuration"
	schema.Description = "Base schema for core runbook.yml properties."
	schema.Version = "http://json-schema.org/draft-07/schema#"

	return json.MarshalIndent(schema, "", "  ")
}
