package zaplogger

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func observe(t *testing.T, level zapcore.Level) *observer.ObservedLogs {
	t.Helper()
	core, logs := observer.New(level)
	prev := log
	log = zap.New(core)
	t.Cleanup(func() { log = prev })
	return logs
}

func TestTimeTrackLogsDuration(t *testing.T) {
	logs := observe(t, zap.InfoLevel)

	TimeTrack(time.Now().Add(-50*time.Millisecond), "crawl")

	entries := logs.All()
	require.Len(t, entries, 1)
	assert.Equal(t, zap.InfoLevel, entries[0].Level)
	assert.True(t, strings.HasPrefix(entries[0].Message, "crawl took "), entries[0].Message)

	elapsed, ok := entries[0].ContextMap()["duration"].(time.Duration)
	require.True(t, ok)
	assert.GreaterOrEqual(t, elapsed, 50*time.Millisecond)
}

func TestLevelsCarryFields(t *testing.T) {
	logs := observe(t, zap.DebugLevel)

	Debug("d")
	Warn("w", Fields{"issue": "2024001"})
	Error("e", Fields{"count": 3})

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Empty(t, entries[0].Context)
	assert.Equal(t, "2024001", entries[1].ContextMap()["issue"])
	assert.EqualValues(t, 3, entries[2].ContextMap()["count"])
}
