package enumerator

import (
	"combgen/domain"
	"combgen/errors"
	"combgen/permutation"
	"combgen/tuple"
)

// Permutations 按字典序产生一个取值域全部值的所有排列，
// 每个元组的元数等于取值域大小，共 n! 个。
type Permutations struct {
	cursor
	domain domain.Domain
	perm   permutation.Permutation
}

// NewPermutations 创建排列枚举器
func NewPermutations(d domain.Domain) (*Permutations, error) {
	if domain.IsNil(d) {
		return nil, errors.NewArgumentNullError("domain")
	}
	if d.Count() == 0 {
		return nil, errors.NewInvalidDomainError(0, d.Name())
	}
	return &Permutations{domain: d}, nil
}

func (e *Permutations) Reset() {
	e.rewind()
}

func (e *Permutations) MoveNext() bool {
	switch e.state {
	case Exhausted:
		return false
	case NotStarted:
		// Count() > 0 已在构造时保证
		e.perm, _ = permutation.Identity(e.domain.Count())
	default:
		next, ok := e.perm.Successor()
		if !ok {
			e.exhaust()
			return false
		}
		e.perm = next
	}

	values := make([]any, e.perm.Order())
	for i := range values {
		values[i] = e.domain.At(e.perm.At(i))
	}
	e.position(tuple.New(values...))
	return true
}

func (e *Permutations) Err() error {
	return nil
}
