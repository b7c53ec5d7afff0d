package logging

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setupTestDir points the package at a temporary log directory and resets
// the per-process globals. They are reset again on cleanup.
func setupTestDir(t *testing.T) {
	t.Helper()

	reset := func(dir string) {
		logDir = dir
		initErr = nil
		initOnce = sync.Once{}
		sessionID = ""
		sessionIDOnce = sync.Once{}
	}

	reset(t.TempDir())
	t.Cleanup(func() { reset("") })
}

func readLog(t *testing.T, l *Logger) string {
	t.Helper()
	require.NoError(t, l.sugar.Sync())
	content, err := os.ReadFile(l.logPath)
	require.NoError(t, err)
	return string(content)
}

func TestNewLogger(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test-component")
	require.NoError(t, err)
	defer logger.Close()

	assert.Equal(t, "test-component", logger.component)
	assert.NotEmpty(t, logger.sessionID)
	assert.NotEmpty(t, logger.logPath)
	assert.FileExists(t, logger.logPath)
}

func TestLoggerFormatting(t *testing.T) {
	setupTestDir(t)
	require.NoError(t, SetLevel("debug"))
	t.Cleanup(func() { _ = SetLevel("info") })

	logger, err := NewLogger("test")
	require.NoError(t, err)
	defer logger.Close()

	logger.Debugf("Debug message")
	logger.Infof("Info message %d", 123)
	logger.Warnf("Warning message")
	logger.Errorf("Error message")

	content := readLog(t, logger)
	for _, pattern := range []string{
		"[DEBUG] [test] Debug message",
		"[INFO] [test] Info message 123",
		"[WARN] [test] Warning message",
		"[ERROR] [test] Error message",
	} {
		assert.Contains(t, content, pattern)
	}
}

func TestLevelFiltering(t *testing.T) {
	setupTestDir(t)
	require.NoError(t, SetLevel("warn"))
	t.Cleanup(func() { _ = SetLevel("info") })

	logger, err := NewLogger("filtered")
	require.NoError(t, err)
	defer logger.Close()

	logger.Infof("hidden")
	logger.Warnf("shown")

	content := readLog(t, logger)
	assert.NotContains(t, content, "hidden")
	assert.Contains(t, content, "shown")
}

func TestSetLevelRejectsUnknown(t *testing.T) {
	assert.Error(t, SetLevel("chatty"))
}

func TestMultipleComponents(t *testing.T) {
	setupTestDir(t)

	logger1, err := NewLogger("component1")
	require.NoError(t, err)
	defer logger1.Close()

	logger2, err := NewLogger("component2")
	require.NoError(t, err)
	defer logger2.Close()

	// They share the session ID and the log file
	assert.Equal(t, logger1.sessionID, logger2.sessionID)
	assert.Equal(t, logger1.logPath, logger2.logPath)

	logger1.Infof("Message from component1")
	logger2.Infof("Message from component2")
	require.NoError(t, logger2.sugar.Sync())

	content := readLog(t, logger1)
	assert.Contains(t, content, "[component1]")
	assert.Contains(t, content, "[component2]")
}

func TestWithAddsFields(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("fields")
	require.NoError(t, err)
	defer logger.Close()

	logger.With("user", 42).Infof("hello")

	assert.Contains(t, readLog(t, logger), `{"user": 42}`)
}

func TestGetSessionID(t *testing.T) {
	setupTestDir(t)

	id1 := GetSessionID()
	id2 := GetSessionID()
	assert.Equal(t, id1, id2)
	assert.NotEmpty(t, id1)
}

func TestGetLogDirectory(t *testing.T) {
	setupTestDir(t)

	dir, err := GetLogDirectory()
	require.NoError(t, err)
	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoggerClose(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	require.NoError(t, err)

	assert.NoError(t, logger.Close())
	assert.NoError(t, logger.Close())
}

func TestLogPathFormat(t *testing.T) {
	setupTestDir(t)

	logger, err := NewLogger("test")
	require.NoError(t, err)
	defer logger.Close()

	fileName := filepath.Base(logger.logPath)
	require.True(t, strings.HasSuffix(fileName, "-modelbot.log"), fileName)
	assert.Contains(t, strings.TrimSuffix(fileName, "-modelbot.log"), "-")
}

func TestNopDiscards(t *testing.T) {
	l := Nop()
	l.Infof("nothing %s", "here")
	assert.Empty(t, l.LogPath())
	assert.NoError(t, l.Close())
}
