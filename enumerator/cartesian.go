package enumerator

import "combgen/domain"

// Cartesian 穷举全部组合。
//
// 按多进制计数器推进：最后一个取值域变化最快，即按取值域顺序的字典序。
// 恰好产生各取值域大小之积个元组；没有取值域时产生一个空元组。
type Cartesian struct {
	domainBase
	counts  []int
	indices []int
}

// NewCartesian 创建穷举枚举器
func NewCartesian(c *domain.Collection) (*Cartesian, error) {
	base, err := newDomainBase(c)
	if err != nil {
		return nil, err
	}
	return &Cartesian{
		domainBase: base,
		counts:     c.Counts(),
		indices:    make([]int, c.Len()),
	}, nil
}

func (e *Cartesian) Reset() {
	e.rewind()
	clear(e.indices)
}

func (e *Cartesian) MoveNext() bool {
	switch e.state {
	case Exhausted:
		return false
	case NotStarted:
		clear(e.indices)
		e.position(e.tupleAt(e.indices))
		return true
	}

	for k := len(e.indices) - 1; k >= 0; k-- {
		e.indices[k]++
		if e.indices[k] < e.counts[k] {
			e.position(e.tupleAt(e.indices))
			return true
		}
		e.indices[k] = 0
	}
	e.exhaust()
	return false
}
