package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/runbooktools/runbook/version"
)

// SetVersionTemplate wires the build-time version info into cobra's
// --version flag handling.
func SetVersionTemplate(cmd *cobra.Command) {
	info := version.GetInfo()
	cmd.Version = info.Version
	cmd.SetVersionTemplate(fmt.Sprintf(`{{.Name}} {{.Version}}
  Commit:    %s
  Built:     %s
  Platform:  %s
`, info.Commit, info.BuildDate, info.Platform))
}
