package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/dzm2020/gconc/pkg/config"
	"github.com/dzm2020/gconc/pkg/glog"
	"github.com/dzm2020/gconc/pkg/lib/grs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestComponent(t *testing.T) {
	cfg := config.Default()
	cfg.Glog.Path = filepath.Join(t.TempDir(), "gconc.log")
	cfg.Glog.PrintConsole = false
	cfg.Glog.Level = "debug"

	var hooked []string
	c := NewComponent(func(entry zapcore.Entry) { hooked = append(hooked, entry.Message) })
	assert.Equal(t, ComponentName, c.Name())
	require.NoError(t, c.Start(context.Background(), cfg))
	defer glog.Init(&glog.Config{Level: "info", PrintConsole: true})

	assert.Equal(t, zapcore.DebugLevel, glog.GetLevel())
	glog.Info("ordinary")
	assert.Empty(t, hooked)
	require.Error(t, grs.Try(func() error { panic("boom in task") }))
	require.NoError(t, c.Stop(context.Background()))

	data, err := os.ReadFile(cfg.Glog.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "recovered panic", "grs 恢复的 panic 应该写入日志")
	assert.Contains(t, string(data), "boom in task")
}
