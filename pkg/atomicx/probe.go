package atomicx

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/cpu"
)

// Strategy Reference 的底层实现
type Strategy int32

const (
	// StrategyHardware 使用硬件原子指令
	StrategyHardware Strategy = iota
	// StrategyMutex 使用互斥锁模拟
	StrategyMutex
)

func (s Strategy) String() string {
	switch s {
	case StrategyHardware:
		return "hardware"
	case StrategyMutex:
		return "mutex"
	default:
		return fmt.Sprintf("Strategy(%d)", int32(s))
	}
}

// ParseStrategy 解析配置中的策略名，空串表示自动探测
func ParseStrategy(name string) (Strategy, bool, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "auto":
		return 0, false, nil
	case "hardware":
		return StrategyHardware, true, nil
	case "mutex":
		return StrategyMutex, true, nil
	default:
		return 0, false, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// EnvStrategy 环境变量，取值 mutex|hardware
const EnvStrategy = "GCONC_ATOMIC"

// Capability 平台原子能力探测结果
type Capability struct {
	Strategy Strategy
	Arch     string
	Detail   string
}

// 原生支持字长 CAS 的架构
var nativeCAS = map[string]bool{
	"amd64":    true,
	"arm64":    true,
	"386":      true,
	"arm":      true,
	"ppc64":    true,
	"ppc64le":  true,
	"s390x":    true,
	"riscv64":  true,
	"loong64":  true,
	"mips":     true,
	"mipsle":   true,
	"mips64":   true,
	"mips64le": true,
}

var (
	probeOnce sync.Once
	probed    Capability
	override  atomic.Pointer[Strategy]
)

// Probe 进程内只执行一次的能力探测
func Probe() Capability {
	probeOnce.Do(func() {
		probed = probe(runtime.GOARCH, os.Getenv(EnvStrategy))
	})
	return probed
}

func probe(arch, env string) Capability {
	c := Capability{Arch: arch}
	if s, ok, err := ParseStrategy(env); err == nil && ok {
		c.Strategy = s
		c.Detail = EnvStrategy + "=" + env
		return c
	}
	if !nativeCAS[arch] {
		c.Strategy = StrategyMutex
		c.Detail = "no native compare-and-swap on " + arch
		return c
	}
	c.Strategy = StrategyHardware
	switch arch {
	case "amd64", "386":
		c.Detail = fmt.Sprintf("cmpxchg sse2=%t", cpu.X86.HasSSE2)
	case "arm64":
		c.Detail = fmt.Sprintf("lse=%t", cpu.ARM64.HasATOMICS)
	default:
		c.Detail = "native"
	}
	return c
}

// SetDefaultStrategy 覆盖探测结果，只影响之后创建的 Reference
func SetDefaultStrategy(s Strategy) {
	override.Store(&s)
}

// ResetDefaultStrategy 取消 SetDefaultStrategy 的覆盖
func ResetDefaultStrategy() {
	override.Store(nil)
}

// DefaultStrategy 新建 Reference 时使用的策略
func DefaultStrategy() Strategy {
	if s := override.Load(); s != nil {
		return *s
	}
	return Probe().Strategy
}
