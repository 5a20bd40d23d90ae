// Package domain 定义参数位置的取值域以及按参数顺序组织的取值域集合。
//
// 取值域是有限、有序、可按下标访问的值序列。一次枚举期间取值域不可变。
// 取值域非空的约束由枚举器在构造时检查，而不是由 Collection 本身检查。
package domain

import (
	"fmt"
	"reflect"
)

// Domain 一个参数位置的候选值
type Domain interface {
	// Name 取值域名称，用于错误信息与日志，可以为空
	Name() string

	// Count 候选值个数
	Count() int

	// At 第 i 个候选值，0 <= i < Count()
	At(i int) any
}

// IsNil 判断取值域是否为 nil，包括装在接口里的 nil 指针
func IsNil(d Domain) bool {
	if d == nil {
		return true
	}
	v := reflect.ValueOf(d)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

// Array 由字面值构成的取值域
type Array struct {
	name   string
	values []any
}

// NewArray 创建字面值取值域，复制传入的值
func NewArray(name string, values ...any) *Array {
	copied := make([]any, len(values))
	copy(copied, values)
	return &Array{name: name, values: copied}
}

// Of 把任意类型的切片转换为取值域
func Of[T any](name string, values []T) *Array {
	converted := make([]any, len(values))
	for i, v := range values {
		converted[i] = v
	}
	return &Array{name: name, values: converted}
}

func (a *Array) Name() string   { return a.name }
func (a *Array) Count() int     { return len(a.values) }
func (a *Array) At(i int) any   { return a.values[i] }
func (a *Array) String() string { return describe(a) }

// Range 等差整数序列 start, start+step, ... 共 count 个
type Range struct {
	name  string
	start int
	count int
	step  int
}

// NewRange 创建整数区间取值域，count < 0 视为 0，step 为 0 时取 1
func NewRange(name string, start, count, step int) *Range {
	if count < 0 {
		count = 0
	}
	if step == 0 {
		step = 1
	}
	return &Range{name: name, start: start, count: count, step: step}
}

func (r *Range) Name() string   { return r.name }
func (r *Range) Count() int     { return r.count }
func (r *Range) String() string { return describe(r) }

func (r *Range) At(i int) any {
	if i < 0 || i >= r.count {
		panic(fmt.Sprintf("domain: index %d out of range [0,%d)", i, r.count))
	}
	return r.start + i*r.step
}

// Bools 取值 false, true
func Bools(name string) *Array {
	return NewArray(name, false, true)
}

func describe(d Domain) string {
	name := d.Name()
	if name == "" {
		name = "<anonymous>"
	}
	return fmt.Sprintf("%s[%d]", name, d.Count())
}
