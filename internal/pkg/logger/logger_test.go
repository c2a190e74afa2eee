package logger

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewZapLogger_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "dispatch.log")

	l, err := NewZapLogger(ZapConfig{Level: "debug", FilePath: path})
	require.NoError(t, err)

	l.Info("driver connected", String("connection_id", "c-1"))
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"message":"driver connected"`)
	assert.Contains(t, string(data), `"connection_id":"c-1"`)
	assert.Contains(t, string(data), `"service":"evgo-dispatch"`)
	assert.Equal(t, path, l.GetFilePath())
}

func TestNewZapLogger_InvalidLevelFallsBackToInfo(t *testing.T) {
	l, err := NewZapLogger(ZapConfig{Level: "loud"})
	require.NoError(t, err)
	defer l.Close()

	assert.False(t, l.Core().Enabled(-1)) // debug
	assert.True(t, l.Core().Enabled(0))   // info
}

func TestGetGlobalLogger_DefaultsWhenUnset(t *testing.T) {
	SetGlobalLogger(nil)
	defer SetGlobalLogger(nil)

	assert.NotNil(t, GetGlobalLogger())

	nop := NewNopLogger()
	SetGlobalLogger(nop)
	assert.Same(t, nop, GetGlobalLogger())
}
