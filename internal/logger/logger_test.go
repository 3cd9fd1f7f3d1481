// internal/logger/logger_test.go
package logger

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newFileLogger(t *testing.T) (*Logger, string) {
	t.Helper()

	logFile := filepath.Join(t.TempDir(), "test.log")
	log, err := New(&Config{
		LogFile:    logFile,
		MaxSize:    1,
		MaxAge:     1,
		MaxBackups: 1,
	})
	require.NoError(t, err)
	return log, logFile
}

func TestLogErrorAttachesCause(t *testing.T) {
	log, logFile := newFileLogger(t)

	log.LogError("resolve failed", errors.New("curve unavailable"), zap.String("token", "abc"))
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(logFile)
	require.NoError(t, err)
	line := string(raw)
	assert.Contains(t, line, "resolve failed")
	assert.Contains(t, line, "curve unavailable")
	assert.Contains(t, line, `"token":"abc"`)
}

func TestLogErrorNilError(t *testing.T) {
	log, logFile := newFileLogger(t)

	log.LogError("upload skipped", nil)
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(logFile)
	require.NoError(t, err)
	line := string(raw)
	assert.Contains(t, line, "upload skipped")
	assert.NotContains(t, line, `"error"`)
}

func TestWithRequestAddsCorrelationID(t *testing.T) {
	log, logFile := newFileLogger(t)

	log.WithRequest("POST", "/actions/abc").Info("handled")
	require.NoError(t, log.Sync())

	raw, err := os.ReadFile(logFile)
	require.NoError(t, err)
	line := string(raw)
	assert.Contains(t, line, `"method":"POST"`)
	assert.Contains(t, line, `"path":"/actions/abc"`)
	assert.True(t, strings.Contains(line, "correlation_id"))
}
