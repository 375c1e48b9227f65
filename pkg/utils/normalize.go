package utils

import "strings"

// NormalizeAttr 归一化变体属性字符串：去首尾空白 + 小写
// 匹配器所有字符串比较都先过这里；SKU 映射刻意不用（精确匹配防串货）
func NormalizeAttr(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// AttrEquals 归一化后相等
func AttrEquals(a, b string) bool {
	return NormalizeAttr(a) == NormalizeAttr(b)
}

// AttrEmpty 归一化后为空
func AttrEmpty(s string) bool {
	return NormalizeAttr(s) == ""
}
