package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"seller_ops_v1_202608/internal/model"
	"seller_ops_v1_202608/internal/repository"
	"seller_ops_v1_202608/pkg/utils"

	"gorm.io/gorm"
)

// PlatformFeeRate 平台佣金估算系数
// 这是统一的近似值，不是各市场的合同费率表；接了真实账单数据后再替换
const PlatformFeeRate = 0.12

// 汇率缓存 TTL；汇率表被改写时主动失效
const fxCacheTTL = 5 * time.Minute

// ==================== 损益视图 ====================

// OrderPnL 单订单行损益
type OrderPnL struct {
	OrderID         int64     `json:"order_id"`
	PlatformOrderID string    `json:"platform_order_id"`
	OrderLineID     string    `json:"order_line_id"`
	StoreID         int64     `json:"store_id"`
	OrderDate       time.Time `json:"order_date"`
	Quantity        int       `json:"quantity"`
	Currency        string    `json:"currency"`
	FxRate          float64   `json:"fx_rate"`

	SaleUSD        float64 `json:"sale_usd"`
	TotalCostUSD   float64 `json:"total_cost_usd"`
	PlatformFeeUSD float64 `json:"platform_fee_usd"`
	ProfitUSD      float64 `json:"profit_usd"`
}

// PnLSummary 组合损益汇总
type PnLSummary struct {
	Rows []OrderPnL `json:"rows"`

	OrderCount     int     `json:"order_count"`
	TotalSaleUSD   float64 `json:"total_sale_usd"`
	TotalCostUSD   float64 `json:"total_cost_usd"`
	TotalFeeUSD    float64 `json:"total_fee_usd"`
	TotalProfitUSD float64 `json:"total_profit_usd"`
	Margin         float64 `json:"margin"` // 利润率，营收为 0 时为 0
}

// ==================== FinanceService 财务对账 ====================

// FinanceService 从解析成功的订单构建损益账本
// 只读、无状态，可与解析批次并发运行（只会读到 resolved 订单）
type FinanceService struct {
	orderRepo repository.OrderRepository
	fxRepo    repository.FxRateRepository
}

// NewFinanceService 创建财务对账服务
func NewFinanceService(orderRepo repository.OrderRepository, fxRepo repository.FxRateRepository) *FinanceService {
	return &FinanceService{orderRepo: orderRepo, fxRepo: fxRepo}
}

// ==================== 对账 ====================

// Reconcile 计算逐单损益与组合汇总
// 输入只取 生命周期正常 + 解析成功 的订单；未解析/待修复订单不参与财务口径
func (s *FinanceService) Reconcile(ctx context.Context, storeID int64, startDate, endDate *time.Time) (*PnLSummary, error) {
	orders, err := s.orderRepo.ListResolved(ctx, storeID, startDate, endDate)
	if err != nil {
		return nil, fmt.Errorf("查询已解析订单失败: %w", err)
	}

	summary := &PnLSummary{
		Rows:       make([]OrderPnL, 0, len(orders)),
		OrderCount: len(orders),
	}

	for i := range orders {
		row, err := s.buildRow(ctx, &orders[i])
		if err != nil {
			return nil, err
		}

		summary.Rows = append(summary.Rows, row)
		summary.TotalSaleUSD += row.SaleUSD
		summary.TotalCostUSD += row.TotalCostUSD
		summary.TotalFeeUSD += row.PlatformFeeUSD
		summary.TotalProfitUSD += row.ProfitUSD
	}

	if summary.TotalSaleUSD != 0 {
		summary.Margin = summary.TotalProfitUSD / summary.TotalSaleUSD
	}

	return summary, nil
}

// buildRow 单行损益：
//
//	sale   = qty * 单价 * 汇率
//	cost   = qty * (单件成本 + 单件运费)
//	fee    = sale * PlatformFeeRate
//	profit = sale - cost - fee
func (s *FinanceService) buildRow(ctx context.Context, order *model.Order) (OrderPnL, error) {
	rate, err := s.fxRate(ctx, order.Currency)
	if err != nil {
		return OrderPnL{}, err
	}

	qty := float64(order.Quantity)
	sale := qty * order.UnitPrice * rate
	cost := qty * (order.UnitCostUSD + order.UnitShippingUSD)
	fee := sale * PlatformFeeRate

	return OrderPnL{
		OrderID:         order.ID,
		PlatformOrderID: order.PlatformOrderID,
		OrderLineID:     order.OrderLineID,
		StoreID:         order.StoreID,
		OrderDate:       order.OrderDate,
		Quantity:        order.Quantity,
		Currency:        order.Currency,
		FxRate:          rate,
		SaleUSD:         sale,
		TotalCostUSD:    cost,
		PlatformFeeUSD:  fee,
		ProfitUSD:       sale - cost - fee,
	}, nil
}

// fxRate 查币种汇率，带进程内缓存
// 汇率表里没有的币种按 1 处理（美元直通兜底，不算错误）
func (s *FinanceService) fxRate(ctx context.Context, currency string) (float64, error) {
	key := "fx:" + currency
	if rate, ok := utils.GetRateCache(key); ok {
		return rate, nil
	}

	record, err := s.fxRepo.Get(ctx, currency)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.SetRateCache(key, 1, fxCacheTTL)
			return 1, nil
		}
		return 0, fmt.Errorf("查询汇率失败: %w", err)
	}

	utils.SetRateCache(key, record.RateToUSD, fxCacheTTL)
	return record.RateToUSD, nil
}

// ==================== 汇率维护 ====================

// UpsertRates 外部供给方写入/覆盖汇率表
func (s *FinanceService) UpsertRates(ctx context.Context, rates []model.FxRate) error {
	if err := s.fxRepo.BatchUpsert(ctx, rates); err != nil {
		return fmt.Errorf("写入汇率失败: %w", err)
	}
	for _, r := range rates {
		utils.DeleteRateCache("fx:" + r.Currency)
	}
	return nil
}

// ListRates 汇率表
func (s *FinanceService) ListRates(ctx context.Context) ([]model.FxRate, error) {
	return s.fxRepo.ListAll(ctx)
}
