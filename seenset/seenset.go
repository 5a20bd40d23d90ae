// Package seenset 保存一次枚举中已经产出过的元组。
//
// 集合按元组的值相等（tuple.Tuple.Equal）去重。内存实现会增长到本轮
// 产出的不同元组个数，对巨大的笛卡尔积没有上限，这是用内存换取唯一性。
package seenset

import (
	"context"

	"combgen/tuple"
)

// Set 已见元组集合
type Set interface {
	// Add 加入元组，added 为 false 表示此前已经见过
	Add(ctx context.Context, t tuple.Tuple) (added bool, err error)

	// Len 已见的不同元组个数
	Len(ctx context.Context) (int, error)

	// Clear 清空集合
	Clear(ctx context.Context) error
}

// Memory 基于哈希桶的内存集合，非并发安全
type Memory struct {
	buckets map[uint64][]tuple.Tuple
	size    int
}

// NewMemory 创建内存集合
func NewMemory() *Memory {
	return &Memory{buckets: make(map[uint64][]tuple.Tuple)}
}

func (m *Memory) Add(_ context.Context, t tuple.Tuple) (bool, error) {
	h := t.Hash()
	for _, existing := range m.buckets[h] {
		if existing.Equal(t) {
			return false, nil
		}
	}
	m.buckets[h] = append(m.buckets[h], t)
	m.size++
	return true, nil
}

// Contains 是否已经见过
func (m *Memory) Contains(t tuple.Tuple) bool {
	for _, existing := range m.buckets[t.Hash()] {
		if existing.Equal(t) {
			return true
		}
	}
	return false
}

func (m *Memory) Len(context.Context) (int, error) {
	return m.size, nil
}

func (m *Memory) Clear(context.Context) error {
	m.buckets = make(map[uint64][]tuple.Tuple)
	m.size = 0
	return nil
}
