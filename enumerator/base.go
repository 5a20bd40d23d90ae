package enumerator

import (
	"combgen/domain"
	"combgen/errors"
	"combgen/tuple"
)

// domainBase 遍历固定取值域集合的策略的公共部分。
// 构造时立即校验，保证在产生任何元组之前失败。
type domainBase struct {
	cursor
	domains *domain.Collection
}

func newDomainBase(c *domain.Collection) (domainBase, error) {
	if c == nil {
		return domainBase{}, errors.NewArgumentNullError("domains")
	}
	if err := validateDomains(c); err != nil {
		return domainBase{}, err
	}
	return domainBase{domains: c}, nil
}

// validateDomains 集合中不允许出现 nil 或空的取值域
func validateDomains(c *domain.Collection) error {
	for i := 0; i < c.Len(); i++ {
		d := c.At(i)
		if domain.IsNil(d) {
			return errors.NewArgumentNullError("domains").WithContext("index", i)
		}
		if d.Count() == 0 {
			return errors.NewInvalidDomainError(i, d.Name())
		}
	}
	return nil
}

// Domains 被遍历的取值域集合
func (b *domainBase) Domains() *domain.Collection {
	return b.domains
}

func (b *domainBase) Err() error {
	return nil
}

// tupleAt 按下标组合取值，下标为 -1 的位置取 nil
func (b *domainBase) tupleAt(indices []int) tuple.Tuple {
	values := make([]any, len(indices))
	for i, idx := range indices {
		if idx >= 0 {
			values[i] = b.domains.At(i).At(idx)
		}
	}
	return tuple.New(values...)
}
