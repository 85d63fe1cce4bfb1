// Package profile 读取 yaml 配置文件
package profile

import (
	"sync"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var (
	mu sync.RWMutex
	vp = viper.New()
)

// Init 读取配置文件，重复调用会替换之前的内容
func Init(path string) error {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrapf(err, "read config %s", path)
	}
	mu.Lock()
	vp = v
	mu.Unlock()
	return nil
}

// Get 把 key 对应的配置解析到 cfg，key 不存在时 cfg 保持不变
func Get(key string, cfg interface{}) error {
	mu.RLock()
	v := vp
	mu.RUnlock()
	if !v.IsSet(key) {
		return nil
	}
	return errors.Wrapf(v.UnmarshalKey(key, cfg), "unmarshal config %s", key)
}

func IsSet(key string) bool {
	mu.RLock()
	defer mu.RUnlock()
	return vp.IsSet(key)
}
