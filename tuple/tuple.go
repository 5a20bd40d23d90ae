// Package tuple 定义一次测试调用所使用的参数组合。
//
// Tuple 按参数顺序保存每个取值域中选出的一个值。两个元组相等当且仅当
// 元数相同且逐个位置的值相等，去重装饰器依赖这一相等语义。
package tuple

import (
	"encoding/binary"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// Tuple 不可变的有序值组合
type Tuple struct {
	values []any
}

// New 创建元组，复制传入的值
func New(values ...any) Tuple {
	copied := make([]any, len(values))
	copy(copied, values)
	return Tuple{values: copied}
}

// Len 元组的元数
func (t Tuple) Len() int {
	return len(t.values)
}

// At 第 i 个位置的值
func (t Tuple) At(i int) any {
	return t.values[i]
}

// Values 返回值的副本
func (t Tuple) Values() []any {
	out := make([]any, len(t.values))
	copy(out, t.values)
	return out
}

// Equal 元数相同且逐位置值相等
func (t Tuple) Equal(other Tuple) bool {
	if len(t.values) != len(other.values) {
		return false
	}
	for i := range t.values {
		if !valueEqual(t.values[i], other.values[i]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb {
		return false
	}
	if isNaN(a) {
		// NaN 与 NaN 视为相等，和 Key 的编码保持一致
		return isNaN(b)
	}
	if ta.Comparable() {
		// 含不可比较字段的接口值在运行时仍可能 panic，交给 DeepEqual
		if ok, eq := safeCompare(a, b); ok {
			return eq
		}
	}
	return reflect.DeepEqual(a, b)
}

func isNaN(v any) bool {
	switch f := v.(type) {
	case float32:
		return math.IsNaN(float64(f))
	case float64:
		return math.IsNaN(f)
	}
	return false
}

func safeCompare(a, b any) (ok bool, eq bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	return true, a == b
}

// Hash 与 Equal 一致的哈希：相等的元组一定得到相同的哈希值。
// 标量按值参与哈希，其他类型只按类型名参与，冲突由 Equal 解决。
func (t Tuple) Hash() uint64 {
	d := xxhash.New()
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], uint64(len(t.values)))
	_, _ = d.Write(buf[:])
	for _, v := range t.values {
		writeValue(d, v)
	}
	return d.Sum64()
}

func writeValue(d *xxhash.Digest, v any) {
	var buf [8]byte
	put := func(tag byte, bits uint64) {
		_, _ = d.Write([]byte{tag})
		binary.LittleEndian.PutUint64(buf[:], bits)
		_, _ = d.Write(buf[:])
	}
	switch val := v.(type) {
	case nil:
		_, _ = d.Write([]byte{0})
	case bool:
		if val {
			put(1, 1)
		} else {
			put(1, 0)
		}
	case string:
		_, _ = d.Write([]byte{2})
		_, _ = d.WriteString(val)
		_, _ = d.Write([]byte{0xff})
	case int:
		put(3, uint64(val))
	case int8:
		put(4, uint64(val))
	case int16:
		put(5, uint64(val))
	case int32:
		put(6, uint64(val))
	case int64:
		put(7, uint64(val))
	case uint:
		put(8, uint64(val))
	case uint8:
		put(9, uint64(val))
	case uint16:
		put(10, uint64(val))
	case uint32:
		put(11, uint64(val))
	case uint64:
		put(12, val)
	case float32:
		put(13, floatBits(float64(val)))
	case float64:
		put(14, floatBits(val))
	default:
		_, _ = d.Write([]byte{0xfe})
		_, _ = d.WriteString(reflect.TypeOf(v).String())
	}
}

var canonicalNaN = math.Float64bits(math.NaN())

// floatBits +0 与 -0 相等，各种 NaN 也相等，需要得到相同的位模式
func floatBits(f float64) uint64 {
	if f == 0 {
		return 0
	}
	if math.IsNaN(f) {
		return canonicalNaN
	}
	return math.Float64bits(f)
}

// String 形如 (1, "a", true)
func (t Tuple) String() string {
	parts := make([]string, len(t.values))
	for i, v := range t.values {
		if s, ok := v.(string); ok {
			parts[i] = fmt.Sprintf("%q", s)
			continue
		}
		parts[i] = fmt.Sprint(v)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
