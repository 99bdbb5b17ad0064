package main

import (
	"fmt"

	"github.com/grovetools/tend/pkg/assert"
	"github.com/grovetools/tend/pkg/harness"
)

// VersionScenario verifies the version command output.
func VersionScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "runbook-version",
		Description: "Verifies that `runbook version` prints version information.",
		Tags:        []string{"runbook", "basic"},
		Steps: []harness.Step{
			{
				Name: "Run version and check output",
				Func: func(ctx *harness.Context) error {
					binary, err := findRunbookBinary()
					if err != nil {
						return err
					}

					cmd := ctx.Command(binary, "version")
					result := cmd.Run()
					ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
					if result.Error != nil {
						return fmt.Errorf("`runbook version` failed: %w", result.Error)
					}

					if err := assert.Contains(result.Stdout, "Version:", "version field should be printed"); err != nil {
						return err
					}
					if err := assert.Contains(result.Stdout, "Go Version:", "go version field should be printed"); err != nil {
						return err
					}
					return nil
				},
			},
			{
				Name: "Run version --json and check output",
				Func: func(ctx *harness.Context) error {
					binary, err := findRunbookBinary()
					if err != nil {
						return err
					}

					cmd := ctx.Command(binary, "version", "--json")
					result := cmd.Run()
					ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
					if result.Error != nil {
						return fmt.Errorf("`runbook version --json` failed: %w", result.Error)
					}

					return assert.Contains(result.Stdout, `"goVersion"`, "JSON output should carry goVersion")
				},
			},
		},
	}
}

// PathsScenario verifies the paths command respects RUNBOOK_HOME.
func PathsScenario() *harness.Scenario {
	return &harness.Scenario{
		Name:        "runbook-paths",
		Description: "Verifies that `runbook paths` resolves under RUNBOOK_HOME.",
		Tags:        []string{"runbook", "basic"},
		Steps: []harness.Step{
			{
				Name: "Run paths in the sandboxed home",
				Func: func(ctx *harness.Context) error {
					binary, err := findRunbookBinary()
					if err != nil {
						return err
					}

					// ctx.Command runs with a sandboxed HOME, so the XDG
					// fallbacks resolve inside the sandbox.
					cmd := ctx.Command(binary, "paths")
					result := cmd.Run()
					ctx.ShowCommandOutput(cmd.String(), result.Stdout, result.Stderr)
					if result.Error != nil {
						return fmt.Errorf("`runbook paths` failed: %w", result.Error)
					}

					if err := assert.Contains(result.Stdout, `"config_dir"`, "config dir should be printed"); err != nil {
						return err
					}
					return assert.Contains(result.Stdout, "runbookd.pid", "pid file path should be printed")
				},
			},
		},
	}
}
