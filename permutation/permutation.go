// Package permutation 表示 0..n-1 的排列，支持按字典序遍历、求第 k 个排列、
// 求逆以及作用到切片上。
package permutation

import (
	"fmt"
	"strings"

	"combgen/errors"
)

// maxKthOrder n! 在 int64 范围内的最大 n
const maxKthOrder = 20

// Permutation 不可变排列
type Permutation struct {
	data []int
}

// Identity 阶为 n 的恒等排列
func Identity(n int) (Permutation, error) {
	if n <= 0 {
		return Permutation{}, errors.NewError(errors.ErrCodeInvalidArgument,
			fmt.Sprintf("排列的阶必须为正数（当前%d）", n))
	}
	data := make([]int, n)
	for i := range data {
		data[i] = i
	}
	return Permutation{data: data}, nil
}

// Kth 阶为 n 的排列中按字典序的第 k 个（从 0 开始），基于阶乘进制展开
func Kth(n, k int) (Permutation, error) {
	if n <= 0 || n > maxKthOrder {
		return Permutation{}, errors.NewError(errors.ErrCodeInvalidArgument,
			fmt.Sprintf("排列的阶必须在 1..%d 之间（当前%d）", maxKthOrder, n))
	}
	total := Factorial(n)
	if k < 0 || k >= total {
		return Permutation{}, errors.NewError(errors.ErrCodeInvalidArgument,
			fmt.Sprintf("k 必须在 0..%d 之间（当前%d）", total-1, k))
	}

	available := make([]int, n)
	for i := range available {
		available[i] = i
	}
	data := make([]int, 0, n)
	for i := n - 1; i >= 0; i-- {
		f := Factorial(i)
		idx := k / f
		k %= f
		data = append(data, available[idx])
		available = append(available[:idx], available[idx+1:]...)
	}
	return Permutation{data: data}, nil
}

// FromSlice 校验并复制给定的排列
func FromSlice(a []int) (Permutation, error) {
	if len(a) == 0 {
		return Permutation{}, errors.NewError(errors.ErrCodeInvalidArgument, "排列的阶不能为 0")
	}
	checks := make([]bool, len(a))
	for i, v := range a {
		if v < 0 || v >= len(a) {
			return Permutation{}, errors.NewError(errors.ErrCodeInvalidArgument,
				fmt.Sprintf("第 %d 个值越界", i))
		}
		if checks[v] {
			return Permutation{}, errors.NewError(errors.ErrCodeInvalidArgument,
				fmt.Sprintf("第 %d 个值重复", i))
		}
		checks[v] = true
	}
	data := make([]int, len(a))
	copy(data, a)
	return Permutation{data: data}, nil
}

// Factorial n!，n <= 20
func Factorial(n int) int {
	result := 1
	for i := 2; i <= n; i++ {
		result *= i
	}
	return result
}

// Order 排列的阶
func (p Permutation) Order() int {
	return len(p.data)
}

// At 位置 i 上的值
func (p Permutation) At(i int) int {
	return p.data[i]
}

// Slice 返回副本
func (p Permutation) Slice() []int {
	out := make([]int, len(p.data))
	copy(out, p.data)
	return out
}

// Successor 字典序的下一个排列，已是最后一个时 ok 为 false
func (p Permutation) Successor() (next Permutation, ok bool) {
	n := len(p.data)
	data := p.Slice()

	left := n - 2
	for left >= 0 && data[left] > data[left+1] {
		left--
	}
	if left < 0 {
		return Permutation{}, false
	}

	right := n - 1
	for data[left] > data[right] {
		right--
	}
	data[left], data[right] = data[right], data[left]

	for i, j := left+1, n-1; i < j; i, j = i+1, j-1 {
		data[i], data[j] = data[j], data[i]
	}
	return Permutation{data: data}, true
}

// Inverse 逆排列
func (p Permutation) Inverse() Permutation {
	inverse := make([]int, len(p.data))
	for i, v := range p.data {
		inverse[v] = i
	}
	return Permutation{data: inverse}
}

// ApplyTo 返回新切片，result[i] = s[p[i]]
func ApplyTo[T any](p Permutation, s []T) ([]T, error) {
	if len(s) != len(p.data) {
		return nil, errors.NewError(errors.ErrCodeInvalidArgument,
			fmt.Sprintf("切片长度 %d 与排列的阶 %d 不一致", len(s), len(p.data)))
	}
	result := make([]T, len(s))
	for i, v := range p.data {
		result[i] = s[v]
	}
	return result, nil
}

// String 形如 (2 0 1)
func (p Permutation) String() string {
	parts := make([]string, len(p.data))
	for i, v := range p.data {
		parts[i] = fmt.Sprint(v)
	}
	return "(" + strings.Join(parts, " ") + ")"
}
