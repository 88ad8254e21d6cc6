package logger_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NamanBalaji/uploadsim/internal/logger"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logger.LevelDebug, logger.ParseLevel("DEBUG"))
	assert.Equal(t, logger.LevelWarn, logger.ParseLevel("warning"))
	assert.Equal(t, logger.LevelError, logger.ParseLevel(" error "))
	assert.Equal(t, logger.LevelInfo, logger.ParseLevel(""))
	assert.Equal(t, logger.LevelInfo, logger.ParseLevel("verbose"))
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf, logger.LevelWarn)
	defer logger.Close()

	logger.Debugf("debug %d", 1)
	logger.Infof("info %d", 2)
	logger.Warnf("warn %d", 3)
	logger.Errorf("error %d", 4)

	out := buf.String()
	assert.NotContains(t, out, "debug 1")
	assert.NotContains(t, out, "info 2")
	assert.Contains(t, out, "[WARNING] warn 3")
	assert.Contains(t, out, "[ERROR] error 4")
}

func TestInitLoggingToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "uploadsim.log")

	require.NoError(t, logger.InitLogging(logger.LevelDebug, path))
	logger.Debugf("tick for %s", "task")
	logger.Close()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), "[DEBUG] tick for task")
}

func TestCloseDiscardsOutput(t *testing.T) {
	var buf bytes.Buffer
	logger.SetOutput(&buf, logger.LevelDebug)
	logger.Close()

	logger.Errorf("after close")
	assert.Empty(t, buf.String())
}
