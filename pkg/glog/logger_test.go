package glog

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestInitWithWriter(t *testing.T) {
	defer Init(consoleConfig())
	var buf bytes.Buffer
	InitWithWriter(&buf, "warn")

	Info("hidden")
	Warn("visible", zap.String("pool", "io"))
	Errorf("n=%d", 3)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "visible", entry["M"])
	assert.Equal(t, "warn", entry["L"])
	assert.Equal(t, "io", entry["pool"])
	assert.Contains(t, entry["C"], "logger_test.go", "caller 应该指向调用方而不是 glog")
	require.NoError(t, json.Unmarshal(lines[1], &entry))
	assert.Equal(t, "n=3", entry["M"])
}

func TestReplace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := Replace(zap.New(core))
	Debug("debug message", zap.Int("n", 1))
	Infof("hello %s", "world")
	restore()
	Info("after restore")

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "debug message", entries[0].Message)
	assert.Equal(t, int64(1), entries[0].ContextMap()["n"])
	assert.Equal(t, "hello world", entries[1].Message)
}

func TestSetLogLevel(t *testing.T) {
	defer SetLogLevel(GetLevel())
	SetLogLevel(zapcore.ErrorLevel)
	assert.Equal(t, zapcore.ErrorLevel, GetLevel())
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel("bogus"))
}

func TestInitFile(t *testing.T) {
	defer Init(consoleConfig())
	cfg := DefaultConfig()
	cfg.Path = filepath.Join(t.TempDir(), "gconc.log")
	cfg.PrintConsole = false
	Init(cfg)
	Info("to file")
	assert.NoError(t, Stop())
	assert.FileExists(t, cfg.Path)
}
