package model

import "time"

// ==================== FxRate 汇率 ====================

// FxRate 币种 → 美元 的换算系数，由外部供给（汇率获取不在本系统范围内）
type FxRate struct {
	Currency  string  `gorm:"primaryKey;size:10"` // ISO 币种代码，如 GBP
	RateToUSD float64 `gorm:"not null"`           // 1 单位该币种折合美元
	UpdatedAt time.Time
}

func (FxRate) TableName() string {
	return "fx_rates"
}
