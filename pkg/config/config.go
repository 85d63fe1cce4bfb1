// Package config 运行时配置
package config

import (
	"time"

	"github.com/dzm2020/gconc/internal/profile"
	"github.com/dzm2020/gconc/pkg/actor"
	"github.com/dzm2020/gconc/pkg/atomicx"
	"github.com/dzm2020/gconc/pkg/executor"
	"github.com/dzm2020/gconc/pkg/glog"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	DispatcherExecutor     = "executor"
	DispatcherGoroutine    = "goroutine"
	DispatcherAnts         = "ants"
	DispatcherSynchronized = "synchronized"
)

type Config struct {
	Glog     glog.Config     `yaml:"glog"`
	Atomic   Atomic          `yaml:"atomic"`
	Executor executor.Config `yaml:"executor"`
	Actor    Actor           `yaml:"actor"`
	Metrics  Metrics         `yaml:"metrics"`
}

// Atomic Strategy 取值 auto|hardware|mutex，auto 时按平台探测
type Atomic struct {
	Strategy string `yaml:"strategy" mapstructure:"strategy"`
}

type Actor struct {
	AskTimeout time.Duration `yaml:"askTimeout" mapstructure:"askTimeout"`
	// Dispatcher executor|goroutine|ants|synchronized
	Dispatcher   string `yaml:"dispatcher" mapstructure:"dispatcher"`
	AntsPoolSize int    `yaml:"antsPoolSize" mapstructure:"antsPoolSize"`
}

type Metrics struct {
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
}

// Default 生成默认配置
func Default() *Config {
	exec := executor.DefaultConfig()
	exec.MinSize = 4
	return &Config{
		Glog:     *glog.DefaultConfig(),
		Atomic:   Atomic{Strategy: "auto"},
		Executor: exec,
		Actor: Actor{
			AskTimeout:   actor.DefaultAskTimeout,
			Dispatcher:   DispatcherExecutor,
			AntsPoolSize: 1024,
		},
	}
}

// Load 在默认配置上覆盖文件中出现的字段
func Load(path string) (*Config, error) {
	if err := profile.Init(path); err != nil {
		return nil, err
	}
	cfg := Default()
	sections := []struct {
		key    string
		target interface{}
	}{
		{"glog", &cfg.Glog},
		{"atomic", &cfg.Atomic},
		{"executor", &cfg.Executor},
		{"actor", &cfg.Actor},
		{"metrics", &cfg.Metrics},
	}
	for _, section := range sections {
		if err := profile.Get(section.key, section.target); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if _, _, err := atomicx.ParseStrategy(c.Atomic.Strategy); err != nil {
		return err
	}
	switch c.Actor.Dispatcher {
	case "", DispatcherExecutor, DispatcherGoroutine, DispatcherSynchronized:
	case DispatcherAnts:
		if c.Actor.AntsPoolSize <= 0 {
			return errors.Errorf("config: ants pool size %d", c.Actor.AntsPoolSize)
		}
	default:
		return errors.Errorf("config: unknown dispatcher %q", c.Actor.Dispatcher)
	}
	return nil
}

// Marshal 输出生效的配置
func Marshal(c *Config) ([]byte, error) {
	data, err := yaml.Marshal(c)
	return data, errors.Wrap(err, "config: marshal")
}
