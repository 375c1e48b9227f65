package dto

import "time"

// ==================== 订单导入 ====================

// ImportOrdersRequest 导入方提交的归一化订单行
type ImportOrdersRequest struct {
	Orders []ImportOrderRow `json:"orders" binding:"required,min=1,dive"`
}

// ImportOrderRow 单条归一化订单行
type ImportOrderRow struct {
	PlatformOrderID string  `json:"platform_order_id" binding:"required"`
	OrderLineID     string  `json:"order_line_id" binding:"required"`
	StoreID         int64   `json:"store_id" binding:"required"`
	RawSKU          string  `json:"raw_sku" binding:"required"`
	RawColor        string  `json:"raw_color"`
	RawSize         string  `json:"raw_size"`
	Quantity        int     `json:"quantity" binding:"required,min=1"`
	UnitPrice       float64 `json:"unit_price" binding:"min=0"`
	Currency        string  `json:"currency"`
	OrderDate       string  `json:"order_date"` // 2026-01-02
	Status          string  `json:"status"`     // ok / cancelled / refunded，缺省 ok
}

// ImportOrdersResponse 导入结果
type ImportOrdersResponse struct {
	Received int   `json:"received"`
	Inserted int64 `json:"inserted"`
	Skipped  int64 `json:"skipped"` // 已存在的重复行
}

// ==================== 订单列表查询 ====================

// ListOrdersRequest 订单列表请求
type ListOrdersRequest struct {
	StoreID          int64  `form:"store_id"`
	Status           string `form:"status"`            // ok, cancelled, refunded
	ResolutionStatus string `form:"resolution_status"` // unresolved, resolved, needs_fix
	StartDate        string `form:"start_date"`        // 2026-01-01
	EndDate          string `form:"end_date"`
	Keyword          string `form:"keyword"` // 平台订单号 / 原始 SKU
	Page             int    `form:"page,default=1"`
	PageSize         int    `form:"page_size,default=20"`
}

// ListOrdersResponse 订单列表响应
type ListOrdersResponse struct {
	Total int64           `json:"total"`
	List  []OrderListItem `json:"list"`
}

// OrderListItem 订单列表项
type OrderListItem struct {
	ID               int64      `json:"id"`
	PlatformOrderID  string     `json:"platform_order_id"`
	OrderLineID      string     `json:"order_line_id"`
	StoreID          int64      `json:"store_id"`
	RawSKU           string     `json:"raw_sku"`
	RawColor         string     `json:"raw_color"`
	RawSize          string     `json:"raw_size"`
	Quantity         int        `json:"quantity"`
	UnitPrice        float64    `json:"unit_price"`
	Currency         string     `json:"currency"`
	OrderDate        time.Time  `json:"order_date"`
	Status           string     `json:"status"`
	ResolutionStatus string     `json:"resolution_status"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
}

// ==================== 订单详情 ====================

// OrderDetailResponse 订单详情响应
type OrderDetailResponse struct {
	Order      *OrderVO          `json:"order"`
	Store      *StoreVO          `json:"store,omitempty"`
	Resolution *OrderResolvedRef `json:"resolution,omitempty"`
}

// OrderVO 订单视图对象
type OrderVO struct {
	ID               int64      `json:"id"`
	PlatformOrderID  string     `json:"platform_order_id"`
	OrderLineID      string     `json:"order_line_id"`
	StoreID          int64      `json:"store_id"`
	RawSKU           string     `json:"raw_sku"`
	RawColor         string     `json:"raw_color"`
	RawSize          string     `json:"raw_size"`
	Quantity         int        `json:"quantity"`
	UnitPrice        float64    `json:"unit_price"`
	Currency         string     `json:"currency"`
	OrderDate        time.Time  `json:"order_date"`
	Status           string     `json:"status"`
	ResolutionStatus string     `json:"resolution_status"`
	CreatedAt        time.Time  `json:"created_at"`
	ResolvedAt       *time.Time `json:"resolved_at,omitempty"`
}

// OrderResolvedRef 解析到的目录引用（下游发货/报表消费）
type OrderResolvedRef struct {
	ProductID         int64   `json:"product_id"`
	GPID              string  `json:"gp_id,omitempty"`
	ProductName       string  `json:"product_name,omitempty"`
	VariantID         int64   `json:"variant_id"`
	VarID             string  `json:"var_id,omitempty"`
	SupplierVariation string  `json:"supplier_variation"`
	UnitCostUSD       float64 `json:"unit_cost_usd"`
	UnitShippingUSD   float64 `json:"unit_shipping_usd"`
}

// ==================== 状态变更 ====================

// UpdateOrderStatusRequest 外部生命周期变更（取消/退款回传）
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ==================== 解析统计 ====================

// OrderStatsResponse 解析状态分布
type OrderStatsResponse struct {
	Unresolved int64 `json:"unresolved"`
	Resolved   int64 `json:"resolved"`
	NeedsFix   int64 `json:"needs_fix"`
}
