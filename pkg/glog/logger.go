// Package glog 全局结构化日志，基于 zap + lumberjack
package glog

import (
	"io"
	"os"
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	loggerValue  atomic.Value // *zap.Logger
	sugaredValue atomic.Value // *zap.SugaredLogger
	atomicLevel  = zap.NewAtomicLevel()
)

func init() {
	Init(consoleConfig())
}

// Init 根据配置初始化全局 logger，cfg 为 nil 时保持不变
func Init(cfg *Config) {
	if cfg == nil {
		return
	}
	atomicLevel.SetLevel(parseLevel(cfg.Level))
	encoderConfig := encoderConfig()

	cores := make([]zapcore.Core, 0, 2)
	if cfg.Path != "" {
		writer := newWriter(cfg.Path, cfg.File)
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig), zapcore.AddSync(writer), atomicLevel))
	}
	if cfg.PrintConsole {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(encoderConfig), zapcore.Lock(os.Stderr), atomicLevel))
	}
	logger := zap.New(zapcore.NewTee(cores...),
		zap.AddCaller(),
		zap.AddStacktrace(zap.ErrorLevel),
		zap.AddCallerSkip(1),
	)
	store(logger)
}

// InitWithWriter 输出 json 到 w，测试中用来检查日志内容
func InitWithWriter(w io.Writer, level string) {
	atomicLevel.SetLevel(parseLevel(level))
	core := zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(w), atomicLevel)
	store(zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)))
}

// Replace 替换全局 logger，返回恢复函数，测试中配合 zaptest/observer 使用
func Replace(logger *zap.Logger) func() {
	prev := getLogger()
	store(logger.WithOptions(zap.AddCallerSkip(1)))
	return func() {
		if prev != nil {
			store(prev)
		}
	}
}

// WithOptions 在当前 logger 上追加 zap.Option
func WithOptions(opts ...zap.Option) {
	if l := getLogger(); l != nil {
		store(l.WithOptions(opts...))
	}
}

// Stop 同步所有缓冲的日志
func Stop() error {
	if l := getLogger(); l != nil {
		return l.Sync()
	}
	return nil
}

// SetLogLevel 设置日志级别
func SetLogLevel(level zapcore.Level) {
	atomicLevel.SetLevel(level)
}

// GetLevel 获取当前日志级别
func GetLevel() zapcore.Level {
	return atomicLevel.Level()
}

func encoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		MessageKey:     "M",
		LevelKey:       "L",
		TimeKey:        "T",
		CallerKey:      "C",
		NameKey:        "N",
		StacktraceKey:  "S",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.TimeEncoderOfLayout("2006/01/02 15:04:05.000000Z0700"),
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
}

func store(logger *zap.Logger) {
	loggerValue.Store(logger)
	sugaredValue.Store(logger.Sugar())
}

func getLogger() *zap.Logger {
	if l, ok := loggerValue.Load().(*zap.Logger); ok {
		return l
	}
	return nil
}

func getSugaredLogger() *zap.SugaredLogger {
	if sl, ok := sugaredValue.Load().(*zap.SugaredLogger); ok {
		return sl
	}
	return nil
}

func Debug(msg string, fields ...zap.Field) {
	if l := getLogger(); l != nil {
		l.Debug(msg, fields...)
	}
}

func Info(msg string, fields ...zap.Field) {
	if l := getLogger(); l != nil {
		l.Info(msg, fields...)
	}
}

func Warn(msg string, fields ...zap.Field) {
	if l := getLogger(); l != nil {
		l.Warn(msg, fields...)
	}
}

func Error(msg string, fields ...zap.Field) {
	if l := getLogger(); l != nil {
		l.Error(msg, fields...)
	}
}

func Debugf(template string, args ...interface{}) {
	if sl := getSugaredLogger(); sl != nil {
		sl.Debugf(template, args...)
	}
}

func Infof(template string, args ...interface{}) {
	if sl := getSugaredLogger(); sl != nil {
		sl.Infof(template, args...)
	}
}

func Warnf(template string, args ...interface{}) {
	if sl := getSugaredLogger(); sl != nil {
		sl.Warnf(template, args...)
	}
}

func Errorf(template string, args ...interface{}) {
	if sl := getSugaredLogger(); sl != nil {
		sl.Errorf(template, args...)
	}
}
