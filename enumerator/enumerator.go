// Package enumerator 按不同策略在取值域集合上惰性地产生元组。
//
// 所有枚举器遵循同一个只进、可重置的游标契约：
//
//	for e.MoveNext() {
//	    t, _ := e.Current()
//	    invoke(t)
//	}
//	if err := e.Err(); err != nil { ... }
//
// 枚举器不是并发安全的，同一时刻只能由一个调用方驱动。
package enumerator

import (
	"fmt"

	"combgen/errors"
	"combgen/tuple"
)

// Enumerator 元组游标
type Enumerator interface {
	// Reset 回到 NotStarted
	Reset()

	// MoveNext 前进一步，返回是否有新的元组
	MoveNext() bool

	// Current 当前元组，只在 Positioned 状态下有效，否则返回 InvalidCursorState 错误
	Current() (tuple.Tuple, error)

	// Err 导致 MoveNext 返回 false 的后端错误，纯内存策略始终为 nil
	Err() error
}

// State 游标状态
type State int

const (
	NotStarted State = iota
	Positioned
	Exhausted
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "NotStarted"
	case Positioned:
		return "Positioned"
	case Exhausted:
		return "Exhausted"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// cursor 各策略共用的游标状态
type cursor struct {
	state   State
	current tuple.Tuple
}

func (c *cursor) position(t tuple.Tuple) {
	c.state = Positioned
	c.current = t
}

func (c *cursor) exhaust() {
	c.state = Exhausted
	c.current = tuple.Tuple{}
}

func (c *cursor) rewind() {
	c.state = NotStarted
	c.current = tuple.Tuple{}
}

// State 当前游标状态
func (c *cursor) State() State {
	return c.state
}

func (c *cursor) Current() (tuple.Tuple, error) {
	if c.state != Positioned {
		return tuple.Tuple{}, errors.NewInvalidCursorStateError(c.state)
	}
	return c.current, nil
}
