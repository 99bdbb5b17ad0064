package main

import (
	"fmt"
	"path/filepath"

	"github.com/grovetools/tend/pkg/assert"
	"github.com/grovetools/tend/pkg/fs"
	"github.com/grovetools/tend/pkg/harness"
)

// ConfigValidateScenario verifies that a valid configuration passes.
func ConfigValidateScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "runbook-config-validate",
		Description: "Verifies that `runbook config validate` accepts a valid runbook.yml.",
		Tags:        []string{"runbook", "config"},
		Steps: []harness.Step{
			{
				Name: "Validate a well-formed config",
				Func: func(ctx *harness.Context) error {
					projectDir := ctx.NewDir("valid-config")
					if err := fs.WriteString(filepath.Join(projectDir, "runbook.yml"), sampleConfigYAML); err != nil {
						return err
					}

					binary, err := findRunbookBinary()
					if err != nil {
						return err
					}

					cmd := ctx.Command(binary, "config", "validate").Dir(projectDir)
					result := cmd.Run()
					ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
					if result.Error != nil {
						return fmt.Errorf("`runbook config validate` failed: %w", result.Error)
					}

					return assert.Contains(result.Stdout, "is valid", "valid config should be accepted")
				},
			},
		},
	}
}

// ConfigValidateRejectsScenario verifies that broken configurations fail.
func ConfigValidateRejectsScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "runbook-config-validate-rejects",
		Description: "Verifies that `runbook config validate` rejects a page with the wrong slot count.",
		Tags:        []string{"runbook", "config"},
		Steps: []harness.Step{
			{
				Name: "Reject a page with too few slots",
				Func: func(ctx *harness.Context) error {
					projectDir := ctx.NewDir("broken-config")
					brokenYAML := `keypad:
  pages:
    - name: main
      slots:
        - prompt_id: missing_prompt
`
					if err := fs.WriteString(filepath.Join(projectDir, "runbook.yml"), brokenYAML); err != nil {
						return err
					}

					binary, err := findRunbookBinary()
					if err != nil {
						return err
					}

					cmd := ctx.Command(binary, "config", "validate").Dir(projectDir)
					result := cmd.Run()
					ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
					if result.Error == nil {
						return fmt.Errorf("expected `runbook config validate` to fail for a 1-slot page")
					}

					return assert.Contains(result.Stderr, "Invalid", "failure reason should be printed")
				},
			},
		},
	}
}

// ConfigShowScenario verifies the effective-config dump.
func ConfigShowScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "runbook-config-show",
		Description: "Verifies that `runbook config show` prints the config with defaults applied.",
		Tags:        []string{"runbook", "config"},
		Steps: []harness.Step{
			{
				Name: "Show the effective config",
				Func: func(ctx *harness.Context) error {
					projectDir := ctx.NewDir("show-config")
					if err := fs.WriteString(filepath.Join(projectDir, "runbook.yml"), sampleConfigYAML); err != nil {
						return err
					}

					binary, err := findRunbookBinary()
					if err != nil {
						return err
					}

					cmd := ctx.Command(binary, "config", "show").Dir(projectDir)
					result := cmd.Run()
					ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
					if result.Error != nil {
						return fmt.Errorf("`runbook config show` failed: %w", result.Error)
					}

					if err := assert.Contains(result.Stdout, "prep_pr", "prompt ids should appear"); err != nil {
						return err
					}
					// The default listen address is applied on load.
					return assert.Contains(result.Stdout, "127.0.0.1:29381", "daemon defaults should be applied")
				},
			},
		},
	}
}
