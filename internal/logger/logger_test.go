package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWithCarriesFields(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	base := wrap(zap.New(core))

	child := base.With(String("component", "reminder"))
	child.Info("sweep done", Int("notified", 2))
	base.Info("plain")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "reminder", entries[0].ContextMap()["component"])
	assert.EqualValues(t, 2, entries[0].ContextMap()["notified"])
	assert.NotContains(t, entries[1].ContextMap(), "component")
}

func TestParseLevel(t *testing.T) {
	require.NotNil(t, parseLevel("warn"))
	assert.Equal(t, zapcore.WarnLevel, *parseLevel("warn"))
	assert.Nil(t, parseLevel("loud"))
}
