package dto

// ==================== 损益查询 ====================

// PnLRequest 损益查询请求
type PnLRequest struct {
	StoreID   int64  `form:"store_id"`
	StartDate string `form:"start_date"` // 2026-01-01
	EndDate   string `form:"end_date"`
	WithRows  bool   `form:"with_rows,default=true"` // false 时只要汇总
}

// ==================== 汇率维护 ====================

// UpsertFxRatesRequest 外部供给方写入汇率表
type UpsertFxRatesRequest struct {
	Rates []FxRateRow `json:"rates" binding:"required,min=1,dive"`
}

// FxRateRow 单条汇率
type FxRateRow struct {
	Currency  string  `json:"currency" binding:"required"`
	RateToUSD float64 `json:"rate_to_usd" binding:"required,gt=0"`
}
