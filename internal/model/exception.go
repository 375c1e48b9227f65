package model

import "time"

// ==================== 解析失败类型 ====================

// FailureKind 解析失败分类（全部可通过修目录恢复，均不致命）
type FailureKind string

const (
	FailureSkuNotMapped         FailureKind = "sku_not_mapped"          // 无 (店铺, SKU) 映射
	FailureProductHasNoVariants FailureKind = "product_has_no_variants" // 商品下无变体
	FailureVariantNotFound      FailureKind = "variant_not_found"       // 所有回退档位都未命中
)

// 建议处理分类
const (
	CategoryAddSkuMapping = "Add SKU Mapping"
	CategoryAddVariant    = "Add Variant"
)

// SuggestedCategory 失败类型 → 建议处理分类
func (k FailureKind) SuggestedCategory() string {
	if k == FailureSkuNotMapped {
		return CategoryAddSkuMapping
	}
	return CategoryAddVariant
}

// ==================== Exception 解析异常 ====================

// Exception 待人工处理的解析异常
// 由编排器在解析失败时创建；关闭/删除只能由外部操作人触发
type Exception struct {
	BaseModel
	OrderID int64 `gorm:"index;not null"`

	// 冗余上下文，处理界面免 join
	StoreID  int64  `gorm:"index"`
	RawSKU   string `gorm:"size:100"`
	RawColor string `gorm:"size:100"`
	RawSize  string `gorm:"size:100"`

	Kind     FailureKind `gorm:"size:32;index"`
	Issue    string      `gorm:"type:text"` // 人类可读的问题描述
	Category string      `gorm:"size:64;index"`

	Resolved   bool   `gorm:"default:false;index"`
	ResolvedBy string `gorm:"size:64"`
	ResolvedAt *time.Time
}

func (Exception) TableName() string {
	return "exceptions"
}
