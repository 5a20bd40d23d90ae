package enumerator

import "combgen/tuple"

// Literal 依次产出给定的元组，用于回放已记录的枚举
type Literal struct {
	cursor
	tuples []tuple.Tuple
	next   int
}

// NewLiteral 创建字面枚举器，复制传入的切片
func NewLiteral(tuples ...tuple.Tuple) *Literal {
	copied := make([]tuple.Tuple, len(tuples))
	copy(copied, tuples)
	return &Literal{tuples: copied}
}

func (e *Literal) Reset() {
	e.rewind()
	e.next = 0
}

func (e *Literal) MoveNext() bool {
	if e.state == Exhausted {
		return false
	}
	if e.next >= len(e.tuples) {
		e.exhaust()
		return false
	}
	e.position(e.tuples[e.next])
	e.next++
	return true
}

func (e *Literal) Err() error {
	return nil
}

// Len 元组个数
func (e *Literal) Len() int {
	return len(e.tuples)
}
