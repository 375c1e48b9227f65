package model

import (
	"time"

	"gorm.io/datatypes"
)

// ==================== 订单状态常量 ====================

// OrderStatus 订单生命周期状态（由导入方/平台侧维护）
type OrderStatus string

const (
	OrderStatusOK        OrderStatus = "ok"        // 正常
	OrderStatusCancelled OrderStatus = "cancelled" // 已取消
	OrderStatusRefunded  OrderStatus = "refunded"  // 已退款
)

// ResolutionStatus 订单解析状态
// 只允许从 unresolved 出发的单向迁移；重试需要外部显式重置回 unresolved
type ResolutionStatus string

const (
	ResolutionUnresolved ResolutionStatus = "unresolved" // 未解析
	ResolutionResolved   ResolutionStatus = "resolved"   // 已解析
	ResolutionNeedsFix   ResolutionStatus = "needs_fix"  // 待人工修复
)

// ==================== Order 订单行 ====================

// Order 平台订单行（导入方写入，解析引擎只改写解析字段）
type Order struct {
	BaseModel

	// 平台身份：平台订单号 + 行号 联合唯一，保证一行只被处理一次
	PlatformOrderID string `gorm:"size:64;not null;uniqueIndex:idx_platform_line"`
	OrderLineID     string `gorm:"size:64;not null;uniqueIndex:idx_platform_line"`

	StoreID int64  `gorm:"index;not null"`
	Store   *Store `gorm:"foreignKey:StoreID"`

	// 原始行数据（匹配输入）
	RawSKU   string `gorm:"size:100;index;not null"`
	RawColor string `gorm:"size:100"`
	RawSize  string `gorm:"size:100"`

	// 数量与售价（售价为下单币种单价）
	Quantity  int     `gorm:"default:1"`
	UnitPrice float64 `gorm:"default:0"`
	Currency  string  `gorm:"size:10;default:USD"`
	OrderDate time.Time

	// 状态
	Status           OrderStatus      `gorm:"size:16;index;default:ok"`
	ResolutionStatus ResolutionStatus `gorm:"size:16;index;default:unresolved"`

	// 解析结果（仅编排器通过 CAS 写入）
	ProductID         int64   `gorm:"index;default:0"`
	VariantID         int64   `gorm:"default:0"`
	SupplierVariation string  `gorm:"size:255"`
	UnitCostUSD       float64 `gorm:"default:0"`
	UnitShippingUSD   float64 `gorm:"default:0"`
	ResolvedAt        *time.Time

	// 导入方保留的平台原始行（审计用）
	RawData datatypes.JSON
}

func (*Order) TableName() string {
	return "orders"
}

// IsResolvable 是否允许进入解析流程
// 取消/退款订单永远不解析，已出过结果的订单也不再处理
func (o *Order) IsResolvable() bool {
	return o.Status == OrderStatusOK && o.ResolutionStatus == ResolutionUnresolved
}

// SaleAmount 原币种销售额
func (o *Order) SaleAmount() float64 {
	return float64(o.Quantity) * o.UnitPrice
}
