package domain

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageSizePolicy 分页大小策略
type PageSizePolicy struct {
	Default int
	Max     int
}

// DefaultPageSizePolicy 默认 20，上限 100
func DefaultPageSizePolicy() PageSizePolicy {
	return PageSizePolicy{Default: DefaultPageSize, Max: MaxPageSize}
}

// ListQuery 商品列表查询：按 createdAt 倒序，可选分类等值过滤
type ListQuery struct {
	Category string
	Limit    int
}

// HasCategory 是否需要按分类过滤
func (q ListQuery) HasCategory() bool { return q.Category != "" }

// NewListQuery 从请求参数构造查询
// rawLimit 取开头的整数部分；缺失、无法解析或非正数时取默认值，超过上限时截断
func NewListQuery(category, rawLimit string, policy PageSizePolicy) ListQuery {
	if policy.Default <= 0 {
		policy.Default = DefaultPageSize
	}
	limit := policy.Default
	if n, ok := leadingInt(rawLimit); ok && n > 0 {
		limit = n
	}
	if policy.Max > 0 && limit > policy.Max {
		limit = policy.Max
	}
	return ListQuery{Category: category, Limit: limit}
}

// leadingInt 解析开头的十进制整数前缀，如 "10abc" 得 10，"5.7" 得 5
func leadingInt(raw string) (int, bool) {
	s := strings.TrimSpace(raw)
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	start := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == start {
		return 0, false
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) && s[0] != '-' {
			return math.MaxInt, true
		}
		return 0, false
	}
	return n, true
}
