package enumerator

import (
	"context"

	"combgen/errors"
	"combgen/seenset"
	"combgen/tuple"
)

// Greedy 包装另一个枚举器，跳过本轮已经产出过的元组。
//
// 已见集合随产出的不同元组个数增长，内层是穷举策略时就是整个笛卡尔积，
// 不适合没有上限的巨大取值域。Reset 会清空已见集合。
type Greedy struct {
	inner Enumerator
	seen  seenset.Set
	ctx   context.Context
	state State
	err   error
}

// GreedyOption 去重装饰器选项
type GreedyOption func(*Greedy)

// WithSeenSet 使用指定的已见集合，例如跨进程共享的 redis 集合
func WithSeenSet(s seenset.Set) GreedyOption {
	return func(g *Greedy) {
		if s != nil {
			g.seen = s
		}
	}
}

// WithContext 访问已见集合时使用的上下文
func WithContext(ctx context.Context) GreedyOption {
	return func(g *Greedy) {
		if ctx != nil {
			g.ctx = ctx
		}
	}
}

// NewGreedy 创建去重装饰器
func NewGreedy(inner Enumerator, opts ...GreedyOption) (*Greedy, error) {
	if inner == nil {
		return nil, errors.NewArgumentNullError("inner")
	}
	g := &Greedy{
		inner: inner,
		seen:  seenset.NewMemory(),
		ctx:   context.Background(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Reset 清空已见集合并重置内层枚举器
func (g *Greedy) Reset() {
	g.state = NotStarted
	g.err = nil
	if err := g.seen.Clear(g.ctx); err != nil {
		g.err = err
	}
	g.inner.Reset()
}

// MoveNext 从内层取元组直到遇到未见过的元组或内层耗尽
func (g *Greedy) MoveNext() bool {
	if g.state == Exhausted || g.err != nil {
		g.state = Exhausted
		return false
	}

	for g.inner.MoveNext() {
		t, err := g.inner.Current()
		if err != nil {
			return g.fail(err)
		}
		added, err := g.seen.Add(g.ctx, t)
		if err != nil {
			return g.fail(err)
		}
		if added {
			g.state = Positioned
			return true
		}
	}

	if err := g.inner.Err(); err != nil {
		return g.fail(err)
	}
	g.state = Exhausted
	return false
}

func (g *Greedy) fail(err error) bool {
	g.err = err
	g.state = Exhausted
	return false
}

// Current 委托给内层枚举器
func (g *Greedy) Current() (tuple.Tuple, error) {
	if g.state != Positioned {
		return tuple.Tuple{}, errors.NewInvalidCursorStateError(g.state)
	}
	return g.inner.Current()
}

func (g *Greedy) Err() error {
	return g.err
}

// State 当前游标状态
func (g *Greedy) State() State {
	return g.state
}

// SeenCount 本轮已产出的不同元组个数
func (g *Greedy) SeenCount() (int, error) {
	return g.seen.Len(g.ctx)
}
