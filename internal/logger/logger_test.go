package logger

import (
	"testing"

	"lesson-byte/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestGet_BeforeInitializeIsNop(t *testing.T) {
	log = nil

	assert.NotNil(t, Get())
	assert.NoError(t, Sync())
}

func TestInitialize_Level(t *testing.T) {
	t.Cleanup(func() { log = nil })

	require.NoError(t, Initialize(config.LoggerConfig{Level: "warn", Env: "production", Output: "stderr"}))
	assert.False(t, Get().Core().Enabled(zapcore.InfoLevel))
	assert.True(t, Get().Core().Enabled(zapcore.WarnLevel))

	require.NoError(t, Initialize(config.LoggerConfig{Level: "bogus"}))
	assert.True(t, Get().Core().Enabled(zapcore.InfoLevel))
	assert.False(t, Get().Core().Enabled(zapcore.DebugLevel))
}
