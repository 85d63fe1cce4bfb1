// Package logger 运行时的日志组件
package logger

import (
	"context"

	"github.com/dzm2020/gconc/pkg/config"
	"github.com/dzm2020/gconc/pkg/glog"
	"github.com/dzm2020/gconc/pkg/lib/component"
	"github.com/dzm2020/gconc/pkg/lib/grs"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const ComponentName = "logger"

// Component 按配置初始化 glog
type Component struct {
	component.BaseComponent[*config.Config]
	panicHook func(entry zapcore.Entry)
}

// NewComponent panicHook 在 DPanic 及以上级别的日志写出时调用
func NewComponent(panicHook func(entry zapcore.Entry)) *Component {
	return &Component{panicHook: panicHook}
}

func (c *Component) Name() string {
	return ComponentName
}

func (c *Component) Start(ctx context.Context, cfg *config.Config) error {
	glog.Init(&cfg.Glog)
	glog.WithOptions(zap.Hooks(func(entry zapcore.Entry) error {
		if entry.Level >= zap.DPanicLevel && c.panicHook != nil {
			c.panicHook(entry)
		}
		return nil
	}))
	grs.SetPanicHandler(logPanic)
	glog.Info("logger started", zap.String("level", cfg.Glog.Level), zap.String("path", cfg.Glog.Path))
	return nil
}

func (c *Component) Stop(ctx context.Context) error {
	grs.SetPanicHandler(nil)
	// 输出到 stderr 时 Sync 会返回 EINVAL
	if err := glog.Stop(); err != nil {
		glog.Debug("logger sync", zap.Error(err))
	}
	return nil
}

// logPanic 所有经 grs 恢复的 panic 都带调用栈写入日志
func logPanic(pe *grs.PanicError) {
	glog.Error("recovered panic", zap.Any("value", pe.Value), zap.ByteString("stack", pe.Stack))
}
