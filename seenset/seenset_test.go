package seenset

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combgen/tuple"
)

func TestMemory_AddByValue(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	added, err := s.Add(ctx, tuple.New(1, "a"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Add(ctx, tuple.New(1, "a"))
	require.NoError(t, err)
	assert.False(t, added, "值相等的元组只记录一次")

	added, _ = s.Add(ctx, tuple.New([]int{1}))
	assert.True(t, added)
	added, _ = s.Add(ctx, tuple.New([]int{1}))
	assert.False(t, added, "不可比较的值按 DeepEqual 去重")

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, s.Contains(tuple.New(1, "a")))
	assert.False(t, s.Contains(tuple.New(2, "a")))
}

// TestMemory_NaN 含 NaN 的元组只记录一次
func TestMemory_NaN(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()

	added, err := s.Add(ctx, tuple.New(math.NaN(), "a"))
	require.NoError(t, err)
	assert.True(t, added)

	added, err = s.Add(ctx, tuple.New(math.NaN(), "a"))
	require.NoError(t, err)
	assert.False(t, added)

	n, err := s.Len(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMemory_Clear(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	_, _ = s.Add(ctx, tuple.New(1))

	require.NoError(t, s.Clear(ctx))

	n, _ := s.Len(ctx)
	assert.Zero(t, n)
	added, _ := s.Add(ctx, tuple.New(1))
	assert.True(t, added)
}

// TestMemory_GrowsWithDistinctTuples 内存占用随不同元组个数增长
func TestMemory_GrowsWithDistinctTuples(t *testing.T) {
	ctx := context.Background()
	s := NewMemory()
	for i := 0; i < 1000; i++ {
		_, _ = s.Add(ctx, tuple.New(i%250, "x"))
	}
	n, _ := s.Len(ctx)
	assert.Equal(t, 250, n)
}
