package runner

import (
	"context"

	"combgen/enumerator"
	"combgen/logging"
	"combgen/seenset"
	"combgen/tuple"
	"combgen/validation"
)

// Recorder 记录每轮产出的用例，catalog.Catalog 实现了该接口
type Recorder interface {
	Start(ctx context.Context, suite string, strategy enumerator.Strategy, arity int) (runID string, err error)
	Append(ctx context.Context, runID string, index int, t tuple.Tuple) error
	Finish(ctx context.Context, runID string, count int, cause error) error
}

// Dispatcher 把用例转发给远端执行者，dispatch.Dispatcher 实现了该接口
type Dispatcher interface {
	Dispatch(ctx context.Context, runID, suite string, index int, t tuple.Tuple) error
}

// Config 运行配置
type Config struct {
	// Suite 套件名，用于记录和分发主题
	Suite string

	Strategy enumerator.Strategy

	// Dedup 为 true 时用去重装饰器包装策略
	Dedup bool

	// SeenSet 去重使用的已见集合，nil 时使用内存集合
	SeenSet seenset.Set

	Recorder   Recorder
	Dispatcher Dispatcher

	// StopOnFailure 第一个失败的用例后停止
	StopOnFailure bool

	// MaxCases 最多执行的用例数，0 表示不限
	MaxCases int

	Logger logging.Logger
}

// DefaultConfig 穷举、不去重、失败后继续
func DefaultConfig() Config {
	return Config{
		Suite:    "default",
		Strategy: enumerator.StrategyCombinatorial,
	}
}

// Validate 校验配置
func (c Config) Validate() error {
	strategies := make([]string, 0, len(enumerator.Strategies()))
	for _, s := range enumerator.Strategies() {
		strategies = append(strategies, string(s))
	}
	return validation.First(
		validation.ValidateRequired(c.Suite, "套件名"),
		validation.ValidateStringLength(c.Suite, "套件名", 1, 200),
		validation.ValidateEnum(string(c.Strategy), "组合策略", strategies),
		validation.ValidateNonNegative(c.MaxCases, "最大用例数"),
	)
}
