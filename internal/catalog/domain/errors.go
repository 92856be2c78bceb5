package domain

import (
	"errors"
	"fmt"
)

// ErrorKind 错误类别，供调用方做机器可判定的分支
type ErrorKind int

const (
	// KindInternal 存储或传输层的其他失败
	KindInternal ErrorKind = iota
	// KindUnauthorized 管理员凭证缺失、不匹配或未配置
	KindUnauthorized
	// KindInvalidInput 请求体缺少必填字段或字段非法
	KindInvalidInput
	// KindForbidden 存储在自身鉴权层拒绝了写入
	KindForbidden
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalidInput:
		return "invalid_input"
	case KindForbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// ErrPermissionDenied 存储适配器在权限被拒绝时包装此错误
var ErrPermissionDenied = errors.New("store permission denied")

// Error 商品目录错误
type Error struct {
	Kind    ErrorKind
	Field   string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Cause }

// KindOf 返回错误类别，非 *Error 一律视为 KindInternal
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

func NewUnauthorizedError() *Error {
	return &Error{Kind: KindUnauthorized, Message: "Unauthorized: Invalid admin token"}
}

func NewMissingFieldError(field string) *Error {
	return &Error{Kind: KindInvalidInput, Field: field, Message: "Missing required field: " + field}
}

func NewInvalidPriceError() *Error {
	return &Error{Kind: KindInvalidInput, Field: "price", Message: "Price must be a positive number"}
}

func NewFieldTypeError(field string) *Error {
	return &Error{Kind: KindInvalidInput, Field: field, Message: "Invalid field type: " + field}
}

func NewInvalidBodyError(cause error) *Error {
	return &Error{Kind: KindInvalidInput, Message: "Invalid request body", Cause: cause}
}

func NewForbiddenError(cause error) *Error {
	return &Error{Kind: KindForbidden, Message: "Permission denied", Cause: cause}
}

func NewInternalError(msg string, cause error) *Error {
	return &Error{Kind: KindInternal, Message: msg, Cause: cause}
}
