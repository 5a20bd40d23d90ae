package enumerator

import "combgen/domain"

// Sequential 第 i 个元组取每个取值域的第 i 个值。
// 较短的取值域用尽后以 nil 填充，共产生最大取值域大小个元组。
type Sequential struct {
	domainBase
	length  int
	row     int
	indices []int
}

// NewSequential 创建顺序枚举器
func NewSequential(c *domain.Collection) (*Sequential, error) {
	base, err := newDomainBase(c)
	if err != nil {
		return nil, err
	}
	length := 0
	for _, n := range c.Counts() {
		length = max(length, n)
	}
	return &Sequential{
		domainBase: base,
		length:     length,
		indices:    make([]int, c.Len()),
	}, nil
}

func (e *Sequential) Reset() {
	e.rewind()
	e.row = 0
}

func (e *Sequential) MoveNext() bool {
	switch e.state {
	case Exhausted:
		return false
	case NotStarted:
		e.row = 0
	default:
		e.row++
	}

	if e.row >= e.length {
		e.exhaust()
		return false
	}
	for i := range e.indices {
		if e.row < e.domains.At(i).Count() {
			e.indices[i] = e.row
		} else {
			e.indices[i] = -1
		}
	}
	e.position(e.tupleAt(e.indices))
	return true
}
