package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hpcloud/tail"
	"github.com/spf13/cobra"

	"github.com/runbooktools/runbook/pkg/paths"
)

// NewLogsCmd creates the `logs` command.
func NewLogsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display logs from the runbook components",
		Long: `Prints or follows the per-component log files under the runbook log
directory. By default shows every component; use --component to filter.

Examples:
  # Follow the daemon log
  runbook logs -f --component runbookd

  # Print all recent log files
  runbook logs
`,
		RunE: runLogsE,
	}

	cmd.Flags().BoolP("follow", "f", false, "Follow log output")
	cmd.Flags().StringP("component", "C", "", "Only show logs for this component")

	return cmd
}

func runLogsE(cmd *cobra.Command, args []string) error {
	follow, _ := cmd.Flags().GetBool("follow")
	component, _ := cmd.Flags().GetString("component")

	files, err := findLogFiles(component)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(os.Stderr, "No log files found in %s\n", paths.LogDir())
		return nil
	}

	if !follow {
		for _, file := range files {
			data, err := os.ReadFile(file)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Failed to read %s: %v\n", file, err)
				continue
			}
			os.Stdout.Write(data)
		}
		return nil
	}

	// Follow mode: tail every matching file concurrently, newest data wins
	// the terminal. Each tailer starts at the end of its file.
	var wg sync.WaitGroup
	for _, file := range files {
		t, err := tail.TailFile(file, tail.Config{
			Follow:    true,
			ReOpen:    true,
			MustExist: true,
			Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
			Logger:    tail.DiscardingLogger,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to tail %s: %v\n", file, err)
			continue
		}

		wg.Add(1)
		go func(t *tail.Tail) {
			defer wg.Done()
			for line := range t.Lines {
				if line.Err != nil {
					continue
				}
				fmt.Println(line.Text)
			}
		}(t)
	}

	wg.Wait()
	return nil
}

// findLogFiles lists log files in the runbook log dir, newest first.
// Component filtering matches the <component>-<date>.log naming produced by
// the logging package.
func findLogFiles(component string) ([]string, error) {
	dir := paths.LogDir()
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read log directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".log") {
			continue
		}
		if component != "" && !strings.HasPrefix(entry.Name(), component+"-") {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(files)
	return files, nil
}
