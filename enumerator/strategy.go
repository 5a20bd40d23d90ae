package enumerator

import (
	"fmt"
	"iter"

	"combgen/domain"
	"combgen/errors"
	"combgen/tuple"
)

// Strategy 组合策略名称
type Strategy string

const (
	StrategyCombinatorial Strategy = "combinatorial"
	StrategyPairwise      Strategy = "pairwise"
	StrategySequential    Strategy = "sequential"
)

// Strategies 全部内置策略
func Strategies() []Strategy {
	return []Strategy{StrategyCombinatorial, StrategyPairwise, StrategySequential}
}

// Validate 检查策略名称是否受支持
func (s Strategy) Validate() error {
	for _, known := range Strategies() {
		if s == known {
			return nil
		}
	}
	return errors.NewError(errors.ErrCodeInvalidArgument,
		fmt.Sprintf("未知的组合策略 %q", string(s)))
}

// New 按策略在集合上创建枚举器
func New(s Strategy, c *domain.Collection) (Enumerator, error) {
	var (
		e   Enumerator
		err error
	)
	switch s {
	case StrategyCombinatorial:
		e, err = NewCartesian(c)
	case StrategyPairwise:
		e, err = NewPairwise(c)
	case StrategySequential:
		e, err = NewSequential(c)
	default:
		return nil, s.Validate()
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Collect 从当前位置取出剩余全部元组
func Collect(e Enumerator) ([]tuple.Tuple, error) {
	var out []tuple.Tuple
	for e.MoveNext() {
		t, err := e.Current()
		if err != nil {
			return out, err
		}
		out = append(out, t)
	}
	return out, e.Err()
}

// All 以 range-over-func 的形式遍历，结束后调用方应检查 e.Err()
func All(e Enumerator) iter.Seq[tuple.Tuple] {
	return func(yield func(tuple.Tuple) bool) {
		for e.MoveNext() {
			t, err := e.Current()
			if err != nil || !yield(t) {
				return
			}
		}
	}
}
