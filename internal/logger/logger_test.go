package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, Level("DEBUG").Level())
	assert.Equal(t, zapcore.WarnLevel, Level("warn").Level())
	assert.Equal(t, zapcore.InfoLevel, Level("").Level())
	assert.Equal(t, zapcore.InfoLevel, Level("loud").Level())
}

func TestNewLoggerWritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "epo-mcp.log")
	log := NewLogger(path, "warn")
	log.Infow("dropped", "k", 1)
	log.Warnw("kept", "tool", "get_legal")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 1)

	var entry map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &entry))
	assert.Equal(t, "kept", entry["msg"])
	assert.Equal(t, "get_legal", entry["tool"])
	assert.Contains(t, entry, "timestamp")
}

func TestNewLoggerWithoutPathIsNop(t *testing.T) {
	log := NewLogger("", "debug")
	log.Infow("nothing happens")
	assert.NotNil(t, log)
}
