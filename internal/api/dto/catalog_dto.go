package dto

// ==================== 目录查询（异常处理界面参照用）====================

// ListProductsRequest 商品列表请求
type ListProductsRequest struct {
	Keyword  string `form:"keyword"` // GP id / 名称
	Page     int    `form:"page,default=1"`
	PageSize int    `form:"page_size,default=20"`
}

// ProductVO 商品视图对象
type ProductVO struct {
	ID        int64       `json:"id"`
	GPID      string      `json:"gp_id"`
	Name      string      `json:"name"`
	SourceURL string      `json:"source_url,omitempty"`
	Variants  []VariantVO `json:"variants"`
}

// VariantVO 变体视图对象
type VariantVO struct {
	ID                int64   `json:"id"`
	VarID             string  `json:"var_id"`
	Color             string  `json:"color"`
	Size              string  `json:"size"`
	SupplierVariation string  `json:"supplier_variation"`
	UnitCostUSD       float64 `json:"unit_cost_usd"`
	UnitShippingUSD   float64 `json:"unit_shipping_usd"`
}

// ListStoreSkusRequest SKU 映射列表请求
type ListStoreSkusRequest struct {
	StoreID  int64 `form:"store_id"`
	Page     int   `form:"page,default=1"`
	PageSize int   `form:"page_size,default=50"`
}

// StoreSkuVO SKU 映射视图对象
type StoreSkuVO struct {
	ID        int64  `json:"id"`
	StoreID   int64  `json:"store_id"`
	RawSKU    string `json:"raw_sku"`
	ProductID int64  `json:"product_id"`
}

// StoreVO 店铺视图对象
type StoreVO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Platform string `json:"platform"`
}
