package model

// 目录侧数据（Product / Variant / StoreSku）由目录维护方写入，
// 解析引擎对这些表只读。

// ==================== Store 店铺 ====================

// Store 店铺（多店铺隔离核心）
type Store struct {
	BaseModel
	Name     string `gorm:"size:255;not null"`
	Platform string `gorm:"size:32;index"` // etsy, amazon, shopify...
	Status   int    `gorm:"default:1"`     // 1:启用 0:停用
}

func (Store) TableName() string {
	return "stores"
}

// ==================== Product 商品 ====================

// Product 规范商品（GP id 为目录侧稳定标识）
type Product struct {
	BaseModel
	GPID      string `gorm:"column:gp_id;size:32;uniqueIndex;not null"` // 如 GP-000001
	Name      string `gorm:"size:255"`
	SourceURL string `gorm:"size:500"` // 采购链接，可为空

	Variants []Variant `gorm:"foreignKey:ProductID"`
}

func (Product) TableName() string {
	return "products"
}

// ==================== Variant 变体 ====================

// Variant 商品变体，VAR id 在商品内唯一
// Color/Size 入库时已归一化（trim + 小写）；成本为最新值，不留历史
type Variant struct {
	BaseModel
	ProductID int64  `gorm:"index;not null;uniqueIndex:idx_product_var"`
	VarID     string `gorm:"size:32;not null;uniqueIndex:idx_product_var"` // 如 VAR-01

	Color string `gorm:"size:100"`
	Size  string `gorm:"size:100"`

	SupplierVariation string  `gorm:"size:255"` // 供应商侧变体名，发货用
	UnitCostUSD       float64 `gorm:"default:0"`
	UnitShippingUSD   float64 `gorm:"default:0"`
}

func (Variant) TableName() string {
	return "variants"
}

// ==================== StoreSku SKU 映射 ====================

// StoreSku (店铺, 原始 SKU) → 商品 的映射表
// (store_id, raw_sku) 唯一性由目录维护方保证，解析器依赖但不强制
type StoreSku struct {
	BaseModel
	StoreID   int64  `gorm:"not null;uniqueIndex:idx_store_sku"`
	RawSKU    string `gorm:"size:100;not null;uniqueIndex:idx_store_sku"`
	ProductID int64  `gorm:"index;not null"`
}

func (StoreSku) TableName() string {
	return "store_skus"
}
