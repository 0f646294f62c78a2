package logger

import (
	"log"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"gradebook/internal/core/config"
)

func TestRedirectStdLog(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	undo := RedirectStdLog(zap.New(core), zapcore.InfoLevel)
	log.Print("hello from std log")
	undo()

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "hello from std log", logs.All()[0].Message)
}

func TestToStdLogger(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	std, err := ToStdLogger(zap.New(core), zapcore.ErrorLevel)
	require.NoError(t, err)
	std.Print("tls handshake error")
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, zapcore.ErrorLevel, logs.All()[0].Level)
}

func TestNewWritesRotatedFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.log")
	l, cleanup := New(config.Log{
		Level: "info",
		File:  config.LogFile{Enable: true, Filename: file, MaxSizeMB: 1},
	}, zap.String("app", "gradebook"))
	l.Debug("below level")
	l.Info("written to file")
	cleanup()

	b, err := os.ReadFile(file)
	require.NoError(t, err)
	out := string(b)
	assert.Contains(t, out, "written to file")
	assert.Contains(t, out, `"app":"gradebook"`)
	assert.NotContains(t, out, "below level")
}

func TestNewFallsBackToInfo(t *testing.T) {
	l, cleanup := New(config.Log{Level: "nonsense"})
	defer cleanup()
	assert.False(t, l.Core().Enabled(zapcore.DebugLevel))
	assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
}
