package domain

// Collection 一个测试方法所有参数的取值域，插入顺序即参数顺序，
// 决定元组中各分量的顺序。构造后只读。
type Collection struct {
	domains []Domain
}

// NewCollection 按参数顺序创建集合，不做校验
func NewCollection(domains ...Domain) *Collection {
	copied := make([]Domain, len(domains))
	copy(copied, domains)
	return &Collection{domains: copied}
}

// Len 取值域个数，即元组的元数
func (c *Collection) Len() int {
	return len(c.domains)
}

// At 第 i 个参数的取值域
func (c *Collection) At(i int) Domain {
	return c.domains[i]
}

// Domains 返回取值域副本
func (c *Collection) Domains() []Domain {
	out := make([]Domain, len(c.domains))
	copy(out, c.domains)
	return out
}

// Counts 各取值域的大小，nil 取值域记为 0
func (c *Collection) Counts() []int {
	counts := make([]int, len(c.domains))
	for i, d := range c.domains {
		if !IsNil(d) {
			counts[i] = d.Count()
		}
	}
	return counts
}

// Size 笛卡尔积的大小。空集合的积为 1。
func (c *Collection) Size() int {
	size := 1
	for _, n := range c.Counts() {
		size *= n
	}
	return size
}
