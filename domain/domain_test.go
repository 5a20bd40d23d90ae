package domain

import (
	"context"
	stdErrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combgen/errors"
	"combgen/logging"
)

func TestArray(t *testing.T) {
	values := []any{1, 2}
	d := NewArray("x", values...)
	values[0] = 9

	assert.Equal(t, "x", d.Name())
	assert.Equal(t, 2, d.Count())
	assert.Equal(t, 1, d.At(0))
	assert.Equal(t, "x[2]", d.String())

	typed := Of("colours", []string{"red", "green"})
	assert.Equal(t, "green", typed.At(1))

	assert.Equal(t, "<anonymous>[0]", NewArray("").String())
}

func TestRange(t *testing.T) {
	tests := []struct {
		name              string
		start, count, step int
		want              []any
	}{
		{"递增", 1, 3, 1, []any{1, 2, 3}},
		{"步长", 0, 3, 5, []any{0, 5, 10}},
		{"递减", 3, 3, -1, []any{3, 2, 1}},
		{"零步长取一", 7, 2, 0, []any{7, 8}},
		{"负数个数", 0, -2, 1, []any{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewRange("r", tt.start, tt.count, tt.step)
			got := make([]any, 0, r.Count())
			for i := 0; i < r.Count(); i++ {
				got = append(got, r.At(i))
			}
			assert.Equal(t, tt.want, got)
		})
	}

	assert.Panics(t, func() { NewRange("r", 0, 1, 1).At(1) })
}

func TestBools(t *testing.T) {
	b := Bools("flag")
	require.Equal(t, 2, b.Count())
	assert.Equal(t, false, b.At(0))
	assert.Equal(t, true, b.At(1))
}

func TestCollection(t *testing.T) {
	d1 := NewArray("d1", 1, 2)
	d2 := NewArray("d2", "a", "b", "c")
	c := NewCollection(d1, d2)

	assert.Equal(t, 2, c.Len())
	assert.Same(t, d2, c.At(1))
	assert.Equal(t, []int{2, 3}, c.Counts())
	assert.Equal(t, 6, c.Size())

	domains := c.Domains()
	domains[0] = nil
	assert.Same(t, d1, c.At(0), "Domains 返回副本")

	assert.Equal(t, 1, NewCollection().Size())
	assert.Equal(t, []int{0}, NewCollection(nil).Counts())
	assert.Equal(t, []int{2, 0}, NewCollection(d1, (*Array)(nil)).Counts())
}

// TestIsNil 接口里的 nil 指针也算 nil
func TestIsNil(t *testing.T) {
	assert.True(t, IsNil(nil))
	assert.True(t, IsNil((*Array)(nil)))
	assert.True(t, IsNil((*Range)(nil)))
	assert.False(t, IsNil(NewArray("empty")))
	assert.False(t, IsNil(NewRange("r", 0, 3, 1)))
}

func TestProvider_Resolve(t *testing.T) {
	p := NewProvider(ProviderConfig{Logger: logging.NewNoopLogger()})
	calls := 0
	require.NoError(t, p.Register("sizes", func(ctx context.Context) ([]any, error) {
		calls++
		return []any{"S", "M", "L"}, nil
	}))

	d, err := p.Resolve(context.Background(), "sizes")
	require.NoError(t, err)
	assert.Equal(t, 3, d.Count())
	assert.Equal(t, "sizes", d.Name())

	_, err = p.Resolve(context.Background(), "sizes")
	require.NoError(t, err)
	assert.Equal(t, 1, calls, "工厂结果应被缓存")

	p.Invalidate("sizes")
	_, err = p.Resolve(context.Background(), "sizes")
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestProvider_Errors(t *testing.T) {
	p := NewProvider(DefaultProviderConfig())

	assert.True(t, errors.IsArgumentNull(p.Register("x", nil)))
	assert.Equal(t, errors.ErrCodeInvalidArgument,
		errors.GetErrorCode(p.Register("", func(context.Context) ([]any, error) { return nil, nil })))

	boom := stdErrors.New("boom")
	require.NoError(t, p.Register("broken", func(context.Context) ([]any, error) { return nil, boom }))
	assert.Equal(t, errors.ErrCodeInvalidArgument,
		errors.GetErrorCode(p.Register("broken", func(context.Context) ([]any, error) { return nil, nil })))

	_, err := p.Resolve(context.Background(), "broken")
	assert.ErrorIs(t, err, boom)

	_, err = p.Resolve(context.Background(), "missing")
	assert.True(t, errors.IsNotFound(err))
}

func TestProvider_Collection(t *testing.T) {
	p := NewProvider(DefaultProviderConfig())
	require.NoError(t, p.Register("a", func(context.Context) ([]any, error) { return []any{1, 2}, nil }))
	require.NoError(t, p.Register("b", func(context.Context) ([]any, error) { return []any{}, nil }))

	c, err := p.Collection(context.Background(), "b", "a")
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, c.Counts(), "空取值域由枚举器拒绝，而不是由提供者拒绝")

	_, err = p.Collection(context.Background(), "a", "nope")
	assert.Error(t, err)
}
