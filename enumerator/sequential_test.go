package enumerator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"combgen/domain"
	"combgen/tuple"
)

// TestSequential_Padding 较短的取值域用尽后以 nil 填充
func TestSequential_Padding(t *testing.T) {
	c := domain.NewCollection(
		domain.NewArray("a", 1, 2, 3),
		domain.NewArray("b", "x"),
		domain.Bools("c"),
	)
	e, err := NewSequential(c)
	require.NoError(t, err)

	assert.Equal(t, [][]any{
		{1, "x", false},
		{2, nil, true},
		{3, nil, nil},
	}, rows(drain(t, e)))

	e.Reset()
	assert.Len(t, drain(t, e), 3)
}

func TestSequential_NoDomains(t *testing.T) {
	e, err := NewSequential(domain.NewCollection())
	require.NoError(t, err)

	assert.Empty(t, drain(t, e))
}

func TestLiteral(t *testing.T) {
	src := []tuple.Tuple{tuple.New(1), tuple.New(2)}
	e := NewLiteral(src...)
	src[0] = tuple.New(9)

	assert.Equal(t, 2, e.Len())
	assert.Equal(t, [][]any{{1}, {2}}, rows(drain(t, e)))

	empty := NewLiteral()
	assert.Empty(t, drain(t, empty))
}
