package logging

import (
	"bytes"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLoggerIsSingletonPerComponent(t *testing.T) {
	t.Setenv("RUNBOOK_HOME", t.TempDir())

	a := NewLogger("test-component")
	b := NewLogger("test-component")
	assert.Same(t, a, b)

	c := NewLogger("other-component")
	assert.NotSame(t, a, c)
}

func TestNewLoggerLevelFromEnv(t *testing.T) {
	t.Setenv("RUNBOOK_HOME", t.TempDir())
	t.Setenv("RUNBOOK_LOG_LEVEL", "debug")

	entry := NewLogger("env-level-component")
	assert.Equal(t, logrus.DebugLevel, entry.Logger.GetLevel())
}

func TestTextFormatter(t *testing.T) {
	f := &TextFormatter{}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC),
		Level:   logrus.WarnLevel,
		Message: "something happened",
		Data:    logrus.Fields{"component": "daemon", "addr": "127.0.0.1:29381"},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)

	assert.Contains(t, string(out), "[WARN]")
	assert.Contains(t, string(out), "something happened")
	assert.Contains(t, string(out), "addr=127.0.0.1:29381")
	assert.True(t, bytes.HasSuffix(out, []byte("\n")))
}

func TestTextFormatterSimplePreset(t *testing.T) {
	f := &TextFormatter{Config: FormatConfig{DisableTimestamp: true, DisableComponent: true}}
	entry := &logrus.Entry{
		Logger:  logrus.New(),
		Time:    time.Now(),
		Level:   logrus.InfoLevel,
		Message: "hello",
		Data:    logrus.Fields{"component": "daemon"},
	}

	out, err := f.Format(entry)
	require.NoError(t, err)
	assert.NotContains(t, string(out), "daemon")
	assert.Contains(t, string(out), "[INFO] hello")
}
