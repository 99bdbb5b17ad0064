package daemon

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/runbooktools/runbook/testutil"
)

func TestConfigWatcherFiresOnWrite(t *testing.T) {
	path := testutil.WriteConfig(t, testutil.SampleConfigYAML)

	changed := make(chan string, 1)
	w, err := NewConfigWatcher(path, time.Millisecond, func(file string) {
		select {
		case changed <- file:
		default:
		}
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	// Give the watcher a moment to register before touching the file.
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(testutil.SampleConfigYAML+"\n"), 0644))

	select {
	case file := <-changed:
		require.Equal(t, "runbook.yml", file)
	case <-time.After(3 * time.Second):
		t.Fatal("expected a change notification for runbook.yml")
	}
}

func TestConfigWatcherIgnoresSiblingFiles(t *testing.T) {
	path := testutil.WriteConfig(t, testutil.SampleConfigYAML)

	changed := make(chan string, 1)
	w, err := NewConfigWatcher(path, time.Millisecond, func(file string) {
		select {
		case changed <- file:
		default:
		}
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	time.Sleep(50 * time.Millisecond)
	sibling := path[:len(path)-len("runbook.yml")] + "notes.txt"
	require.NoError(t, os.WriteFile(sibling, []byte("unrelated"), 0644))

	select {
	case file := <-changed:
		t.Fatalf("unexpected notification for %s", file)
	case <-time.After(300 * time.Millisecond):
	}
}
