package tuple

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestTuple_Equal 测试逐位置相等语义
func TestTuple_Equal(t *testing.T) {
	tests := []struct {
		name  string
		a, b  Tuple
		equal bool
	}{
		{"相同值", New(1, "a"), New(1, "a"), true},
		{"顺序不同", New(1, "a"), New("a", 1), false},
		{"元数不同", New(1), New(1, nil), false},
		{"类型不同", New(1), New(int64(1)), false},
		{"nil 值", New(nil, 2), New(nil, 2), true},
		{"不可比较值", New([]int{1, 2}), New([]int{1, 2}), true},
		{"不可比较值不同", New([]int{1, 2}), New([]int{2, 1}), false},
		{"空元组", New(), New(), true},
		{"正负零", New(0.0), New(math.Copysign(0, -1)), true},
		{"NaN", New(math.NaN(), "a"), New(math.NaN(), "a"), true},
		{"不同位模式的 NaN", New(math.NaN()), New(math.Float64frombits(0x7ff8000000000001)), true},
		{"float32 NaN", New(float32(math.NaN())), New(float32(math.NaN())), true},
		{"NaN 与数值", New(math.NaN()), New(1.0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.equal, tt.a.Equal(tt.b))
			assert.Equal(t, tt.equal, tt.b.Equal(tt.a))
			if tt.equal {
				assert.Equal(t, tt.a.Hash(), tt.b.Hash(), "相等的元组哈希必须相同")
			}
		})
	}
}

// TestTuple_HashDiffers 常见标量组合的哈希应当不同
func TestTuple_HashDiffers(t *testing.T) {
	seen := make(map[uint64]Tuple)
	for _, tp := range []Tuple{
		New(1, "a"), New(1, "b"), New(2, "a"), New(2, "b"),
		New("1", "a"), New(true), New(false), New(nil), New(),
	} {
		h := tp.Hash()
		if prev, ok := seen[h]; ok {
			t.Fatalf("%s 与 %s 哈希冲突", prev, tp)
		}
		seen[h] = tp
	}
}

// TestTuple_NaNKeyMatchesEqual NaN 的编码与相等语义一致
func TestTuple_NaNKeyMatchesEqual(t *testing.T) {
	a, err := New(math.NaN(), 1).Key()
	require.NoError(t, err)
	b, err := New(math.Float64frombits(0x7ff8000000000001), 1).Key()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.True(t, New(math.NaN(), 1).Equal(New(math.NaN(), 1)))
}

// TestTuple_CopySemantics 构造与取值都复制底层数据
func TestTuple_CopySemantics(t *testing.T) {
	values := []any{1, 2}
	tp := New(values...)
	values[0] = 99

	assert.Equal(t, 1, tp.At(0))

	out := tp.Values()
	out[1] = 42
	assert.Equal(t, 2, tp.At(1))
	assert.Equal(t, 2, tp.Len())
}

func TestTuple_String(t *testing.T) {
	assert.Equal(t, `(1, "a", true, <nil>)`, New(1, "a", true, nil).String())
	assert.Equal(t, "()", New().String())
}

// TestCodec_RoundTrip 解码结果与原元组相等
func TestCodec_RoundTrip(t *testing.T) {
	original := New(nil, true, "x", int(-3), int8(4), int16(5), int32(6), int64(7),
		uint(8), uint8(9), uint16(10), uint32(11), uint64(12), float32(1.5), 2.25)

	data, err := Marshal(original)
	require.NoError(t, err)

	decoded, err := Unmarshal(data)
	require.NoError(t, err)
	assert.True(t, original.Equal(decoded), "%s != %s", original, decoded)
}

func TestCodec_Key(t *testing.T) {
	k1, err := New(1, "a").Key()
	require.NoError(t, err)
	k2, err := New(1, "a").Key()
	require.NoError(t, err)
	k3, err := New(int64(1), "a").Key()
	require.NoError(t, err)

	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func TestCodec_Unsupported(t *testing.T) {
	_, err := Marshal(New(1, []int{1}))

	var unsupported *ErrUnsupportedValue
	require.ErrorAs(t, err, &unsupported)
	assert.Equal(t, 1, unsupported.Index)
	assert.Equal(t, "[]int", unsupported.Type)
}

func TestCodec_BadInput(t *testing.T) {
	_, err := Unmarshal([]byte("not json"))
	assert.Error(t, err)

	_, err = Unmarshal([]byte(`[{"t":"complex","v":"1"}]`))
	assert.Error(t, err)
}
