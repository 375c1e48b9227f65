package dto

import "time"

// ==================== 异常列表 ====================

// ListExceptionsRequest 异常列表请求
type ListExceptionsRequest struct {
	StoreID  int64  `form:"store_id"`
	Kind     string `form:"kind"`     // sku_not_mapped, product_has_no_variants, variant_not_found
	Category string `form:"category"` // Add SKU Mapping / Add Variant
	Resolved *bool  `form:"resolved"` // 缺省为全部
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// ListExceptionsResponse 异常列表响应
type ListExceptionsResponse struct {
	Total int64         `json:"total"`
	List  []ExceptionVO `json:"list"`
}

// ExceptionVO 异常视图对象
type ExceptionVO struct {
	ID         int64      `json:"id"`
	OrderID    int64      `json:"order_id"`
	StoreID    int64      `json:"store_id"`
	RawSKU     string     `json:"raw_sku"`
	RawColor   string     `json:"raw_color"`
	RawSize    string     `json:"raw_size"`
	Kind       string     `json:"kind"`
	Issue      string     `json:"issue"`
	Category   string     `json:"category"`
	Resolved   bool       `json:"resolved"`
	ResolvedBy string     `json:"resolved_by,omitempty"`
	ResolvedAt *time.Time `json:"resolved_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// ==================== 异常处理 ====================

// ResolveExceptionRequest 关闭异常
type ResolveExceptionRequest struct {
	ResolvedBy string `json:"resolved_by" binding:"required"`
}
