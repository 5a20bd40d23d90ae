package errors

import (
	stdErrors "errors"
	"fmt"
	"runtime"
	"strings"
)

// ErrorCode 错误代码类型
type ErrorCode string

// 预定义错误代码
const (
	// 通用错误代码
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeInvalidArgument ErrorCode = "INVALID_ARGUMENT"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeTimeout         ErrorCode = "TIMEOUT"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"

	// 枚举相关错误代码
	ErrCodeArgumentNull       ErrorCode = "ARGUMENT_NULL"
	ErrCodeInvalidDomain      ErrorCode = "INVALID_DOMAIN"
	ErrCodeInvalidCursorState ErrorCode = "INVALID_CURSOR_STATE"

	// 基础设施错误代码
	ErrCodeStore    ErrorCode = "STORE_ERROR"
	ErrCodeDispatch ErrorCode = "DISPATCH_ERROR"
)

// IError 错误接口
type IError interface {
	error

	// 获取错误代码
	Code() ErrorCode

	// 获取错误消息
	Message() string

	// 获取原始错误
	Cause() error

	// 获取错误详情
	Details() map[string]any

	// 获取堆栈信息
	Stack() string

	// 是否为指定类型的错误
	Is(target error) bool

	// 包装错误
	Wrap(msg string) IError

	// 添加上下文
	WithContext(key string, value any) IError
}

// AppError 应用错误实现
type AppError struct {
	code    ErrorCode
	message string
	cause   error
	details map[string]any
	stack   string
}

// NewError 创建新错误
func NewError(code ErrorCode, message string) IError {
	return &AppError{
		code:    code,
		message: message,
		details: make(map[string]any),
		stack:   captureStack(),
	}
}

// WrapError 包装错误，err 为 nil 时返回 nil
func WrapError(err error, code ErrorCode, message string) IError {
	if err == nil {
		return nil
	}

	return &AppError{
		code:    code,
		message: message,
		cause:   err,
		details: make(map[string]any),
		stack:   captureStack(),
	}
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.code, e.message)
}

// Code 获取错误代码
func (e *AppError) Code() ErrorCode {
	return e.code
}

// Message 获取错误消息
func (e *AppError) Message() string {
	return e.message
}

// Cause 获取原始错误
func (e *AppError) Cause() error {
	return e.cause
}

// Details 获取错误详情
func (e *AppError) Details() map[string]any {
	if e.details == nil {
		e.details = make(map[string]any)
	}
	return e.details
}

// Stack 获取堆栈信息
func (e *AppError) Stack() string {
	return e.stack
}

// Is 同错误代码的 AppError 视为相等，否则沿 cause 继续比较
func (e *AppError) Is(target error) bool {
	if target == nil {
		return false
	}

	if appErr, ok := target.(*AppError); ok {
		return e.code == appErr.code
	}

	if e.cause != nil {
		return stdErrors.Is(e.cause, target)
	}

	return false
}

// Unwrap 解包错误（支持 errors.Unwrap）
func (e *AppError) Unwrap() error {
	return e.cause
}

// Wrap 包装错误，保留错误代码
func (e *AppError) Wrap(msg string) IError {
	return &AppError{
		code:    e.code,
		message: fmt.Sprintf("%s: %s", msg, e.message),
		cause:   e,
		details: copyMap(e.details),
		stack:   captureStack(),
	}
}

// WithContext 添加上下文
func (e *AppError) WithContext(key string, value any) IError {
	newDetails := copyMap(e.details)
	newDetails[key] = value

	return &AppError{
		code:    e.code,
		message: e.message,
		cause:   e.cause,
		details: newDetails,
		stack:   e.stack,
	}
}

// 预定义错误变量，用于 errors.Is 按错误代码匹配
var (
	ErrInternal           = NewError(ErrCodeInternal, "内部错误")
	ErrInvalidArgument    = NewError(ErrCodeInvalidArgument, "无效的参数")
	ErrNotFound           = NewError(ErrCodeNotFound, "资源未找到")
	ErrTimeout            = NewError(ErrCodeTimeout, "操作超时")
	ErrValidation         = NewError(ErrCodeValidation, "数据验证失败")
	ErrArgumentNull       = NewError(ErrCodeArgumentNull, "必需参数为空")
	ErrInvalidDomain      = NewError(ErrCodeInvalidDomain, "无效的取值域")
	ErrInvalidCursorState = NewError(ErrCodeInvalidCursorState, "游标状态无效")
	ErrStore              = NewError(ErrCodeStore, "存储错误")
	ErrDispatch           = NewError(ErrCodeDispatch, "分发错误")
)

// NewArgumentNullError 必需参数缺失
func NewArgumentNullError(param string) IError {
	return NewError(ErrCodeArgumentNull, fmt.Sprintf("参数 %s 不能为空", param)).
		WithContext("param", param)
}

// NewInvalidDomainError 第 index 个取值域为空
func NewInvalidDomainError(index int, name string) IError {
	msg := fmt.Sprintf("第 %d 个取值域为空", index)
	if name != "" {
		msg = fmt.Sprintf("第 %d 个取值域 %q 为空", index, name)
	}
	return NewError(ErrCodeInvalidDomain, msg).
		WithContext("index", index).
		WithContext("domain", name)
}

// NewInvalidCursorStateError 在非 Positioned 状态下读取 Current
func NewInvalidCursorStateError(state fmt.Stringer) IError {
	return NewError(ErrCodeInvalidCursorState,
		fmt.Sprintf("当前游标状态 %s 下无法读取元组", state)).
		WithContext("state", state.String())
}

// IsArgumentNull 检查是否为参数为空错误
func IsArgumentNull(err error) bool {
	return IsErrorCode(err, ErrCodeArgumentNull)
}

// IsInvalidDomain 检查是否为空取值域错误
func IsInvalidDomain(err error) bool {
	return IsErrorCode(err, ErrCodeInvalidDomain)
}

// IsInvalidCursorState 检查是否为游标状态错误
func IsInvalidCursorState(err error) bool {
	return IsErrorCode(err, ErrCodeInvalidCursorState)
}

// IsNotFound 检查是否为未找到错误
func IsNotFound(err error) bool {
	return IsErrorCode(err, ErrCodeNotFound)
}

// IsValidation 检查是否为验证错误
func IsValidation(err error) bool {
	return IsErrorCode(err, ErrCodeValidation)
}

// IsErrorCode 检查错误链上最外层 AppError 的错误代码
func IsErrorCode(err error, code ErrorCode) bool {
	if err == nil {
		return false
	}

	var appErr *AppError
	if stdErrors.As(err, &appErr) {
		return appErr.code == code
	}

	return false
}

// GetErrorCode 获取错误代码，非 AppError 视为内部错误
func GetErrorCode(err error) ErrorCode {
	if err == nil {
		return ""
	}

	var appErr *AppError
	if stdErrors.As(err, &appErr) {
		return appErr.code
	}

	return ErrCodeInternal
}

// captureStack 捕获堆栈信息
func captureStack() string {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])

	var builder strings.Builder
	frames := runtime.CallersFrames(pcs[:n])

	for {
		frame, more := frames.Next()
		builder.WriteString(fmt.Sprintf("%s:%d %s\n", frame.File, frame.Line, frame.Function))

		if !more {
			break
		}
	}

	return builder.String()
}

// copyMap 复制映射
func copyMap(original map[string]any) map[string]any {
	if original == nil {
		return make(map[string]any)
	}

	copied := make(map[string]any, len(original))
	for k, v := range original {
		copied[k] = v
	}

	return copied
}
