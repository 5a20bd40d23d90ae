// Package validation 提供配置校验使用的字段级检查函数，
// 失败时统一返回 VALIDATION_ERROR。
package validation

import (
	"fmt"
	"strings"
	"time"

	"combgen/errors"
)

// IValidator 定义通用验证器接口
type IValidator interface {
	Validate() error
}

// NewValidationError 创建验证错误
func NewValidationError(message string) error {
	return errors.NewValidationError(message)
}

// ValidateStringLength 验证字符串长度，max 为 0 表示不限
func ValidateStringLength(value, fieldName string, min, max int) error {
	length := len(value)
	if length < min {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s长度不能少于%d个字符（当前%d）", fieldName, min, length))
	}
	if max > 0 && length > max {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s长度不能超过%d个字符（当前%d）", fieldName, max, length))
	}
	return nil
}

// ValidateRequired 验证必填字段
func ValidateRequired(value, fieldName string) error {
	if strings.TrimSpace(value) == "" {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s不能为空", fieldName))
	}
	return nil
}

// ValidateIntRange 验证整数范围
func ValidateIntRange(value int, fieldName string, min, max int) error {
	if value < min {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s不能小于%d（当前%d）", fieldName, min, value))
	}
	if value > max {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s不能大于%d（当前%d）", fieldName, max, value))
	}
	return nil
}

// ValidatePositive 验证正数
func ValidatePositive(value int, fieldName string) error {
	if value <= 0 {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s必须为正数（当前%d）", fieldName, value))
	}
	return nil
}

// ValidateNonNegative 验证非负数
func ValidateNonNegative(value int, fieldName string) error {
	if value < 0 {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s不能为负数（当前%d）", fieldName, value))
	}
	return nil
}

// ValidateDuration 验证时长不为负
func ValidateDuration(value time.Duration, fieldName string) error {
	if value < 0 {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s不能为负（当前%s）", fieldName, value))
	}
	return nil
}

// ValidateEnum 验证枚举值
func ValidateEnum(value, fieldName string, validValues []string) error {
	for _, valid := range validValues {
		if value == valid {
			return nil
		}
	}
	return errors.NewError(errors.ErrCodeValidation,
		fmt.Sprintf("%s的值无效，必须是以下之一: %v", fieldName, validValues))
}

// ValidateSubject 验证 NATS 主题：非空，不含空白和通配符，各段不为空
func ValidateSubject(subject, fieldName string) error {
	if err := ValidateRequired(subject, fieldName); err != nil {
		return err
	}
	if strings.ContainsAny(subject, " \t\r\n*>") {
		return errors.NewError(errors.ErrCodeValidation,
			fmt.Sprintf("%s不能包含空白或通配符: %q", fieldName, subject))
	}
	for _, token := range strings.Split(subject, ".") {
		if token == "" {
			return errors.NewError(errors.ErrCodeValidation,
				fmt.Sprintf("%s包含空的主题段: %q", fieldName, subject))
		}
	}
	return nil
}

// First 返回第一个非 nil 的错误，用于串联多个字段检查
func First(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
