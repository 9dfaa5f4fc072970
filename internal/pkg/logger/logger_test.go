package logger

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"project-tracker/internal/pkg/config"
)

func reset(t *testing.T) {
	t.Cleanup(func() {
		Log = zap.NewNop()
		log = Log
		logWriter = &LogWriter{WriteSyncer: zapcore.AddSync(io.Discard)}
	})
}

func TestInit_FileOutputIsJSON(t *testing.T) {
	reset(t)
	path := filepath.Join(t.TempDir(), "logs", "tracker.log")

	require.NoError(t, Init(&config.LogConfig{Level: "debug", Output: "file", FilePath: path, MaxSize: 1}))
	Info("项目已创建", zap.Int64("project_id", 7))
	GetWriter().Printf("[%.3fms] [rows:%v] %s\n", 1.5, 1, "SELECT 1")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)
	assert.Contains(t, out, `"msg":"项目已创建"`)
	assert.Contains(t, out, `"project_id":7`)
	assert.Contains(t, out, `"logger":"gorm"`)
	assert.Contains(t, out, "SELECT 1")
	assert.Contains(t, out, `"caller":"internal/pkg/logger/logger_test.go:`)
}

func TestInit_UnknownLevelFallsBackToInfo(t *testing.T) {
	reset(t)
	path := filepath.Join(t.TempDir(), "tracker.log")

	require.NoError(t, Init(&config.LogConfig{Level: "loud", Output: "file", FilePath: path}))
	Debug("hidden")
	Warn("shown")
	require.NoError(t, Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "hidden")
	assert.Contains(t, string(data), "shown")
}

func TestCallerEncoder_Undefined(t *testing.T) {
	enc := &sliceEncoder{}
	customCallerEncoder(zapcore.EntryCaller{}, enc)
	assert.Equal(t, []string{"undefined"}, enc.items)
}

type sliceEncoder struct {
	zapcore.PrimitiveArrayEncoder
	items []string
}

func (s *sliceEncoder) AppendString(v string) { s.items = append(s.items, v) }
