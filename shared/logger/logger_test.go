package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesJSONWithServiceField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	log, err := New(Config{Level: "debug", Encoding: "json", OutputPath: path, ServiceName: "edu-game-server"})
	require.NoError(t, err)

	log.Debug("hello", zap.String("player_id", "p1"))
	_ = log.Sync()

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(raw))), &entry))
	assert.Equal(t, "DEBUG", entry["level"])
	assert.Equal(t, "edu-game-server", entry["service"])
	assert.Equal(t, "p1", entry["player_id"])
	assert.Contains(t, entry, "timestamp")
}

func TestNew_InvalidLevelFallsBackToInfo(t *testing.T) {
	log, err := New(Config{Level: "loud"})
	require.NoError(t, err)
	assert.False(t, log.Core().Enabled(zap.DebugLevel))
	assert.True(t, log.Core().Enabled(zap.InfoLevel))
}
