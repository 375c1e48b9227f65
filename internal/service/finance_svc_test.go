package service

import (
	"context"
	"testing"
	"time"

	"seller_ops_v1_202608/internal/model"
	"seller_ops_v1_202608/internal/repository"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// ==================== 测试辅助 ====================

func setupFinance(t *testing.T) (*gorm.DB, *FinanceService) {
	db := setupTestDB(t)
	svc := NewFinanceService(
		repository.NewOrderRepository(db),
		repository.NewFxRateRepository(db),
	)
	return db, svc
}

// seedResolvedOrder 直接落一条解析完成的订单
func seedResolvedOrder(t *testing.T, db *gorm.DB, o model.Order) {
	o.Status = model.OrderStatusOK
	o.ResolutionStatus = model.ResolutionResolved
	if o.OrderDate.IsZero() {
		o.OrderDate = time.Date(2026, 8, 15, 0, 0, 0, 0, time.UTC)
	}
	if o.StoreID == 0 {
		o.StoreID = 1
	}
	if err := db.Create(&o).Error; err != nil {
		t.Fatalf("建订单失败: %v", err)
	}
}

// ==================== 单行损益 ====================

func TestReconcile_SingleOrder(t *testing.T) {
	db, svc := setupFinance(t)
	ctx := context.Background()

	db.Create(&model.FxRate{Currency: "GBP", RateToUSD: 1.27})
	seedResolvedOrder(t, db, model.Order{
		PlatformOrderID: "2001", OrderLineID: "1",
		Quantity: 2, UnitPrice: 10, Currency: "GBP",
		UnitCostUSD: 5, UnitShippingUSD: 2,
	})

	summary, err := svc.Reconcile(ctx, 0, nil, nil)
	if err != nil {
		t.Fatalf("对账失败: %v", err)
	}
	if len(summary.Rows) != 1 {
		t.Fatalf("期望 1 行损益, got %d", len(summary.Rows))
	}

	row := summary.Rows[0]
	// sale = 2 * 10 * 1.27, cost = 2 * (5+2), fee = sale * 0.12
	assert.InDelta(t, 25.4, row.SaleUSD, 1e-9)
	assert.InDelta(t, 14.0, row.TotalCostUSD, 1e-9)
	assert.InDelta(t, 3.048, row.PlatformFeeUSD, 1e-9)
	assert.InDelta(t, 8.352, row.ProfitUSD, 1e-9)
	assert.InDelta(t, 1.27, row.FxRate, 1e-9)
}

// ==================== 汇率兜底 ====================

func TestReconcile_UnknownCurrencyDefaultsToOne(t *testing.T) {
	db, svc := setupFinance(t)

	// 汇率表里没有这个币种：按 1 直通，不报错
	seedResolvedOrder(t, db, model.Order{
		PlatformOrderID: "2002", OrderLineID: "1",
		Quantity: 3, UnitPrice: 4, Currency: "XTEST1",
		UnitCostUSD: 1, UnitShippingUSD: 0.5,
	})

	summary, err := svc.Reconcile(context.Background(), 0, nil, nil)
	if err != nil {
		t.Fatalf("对账失败: %v", err)
	}
	row := summary.Rows[0]
	assert.InDelta(t, 1.0, row.FxRate, 1e-9)
	assert.InDelta(t, 12.0, row.SaleUSD, 1e-9)
	assert.InDelta(t, 4.5, row.TotalCostUSD, 1e-9)
}

func TestUpsertRates_InvalidatesCache(t *testing.T) {
	db, svc := setupFinance(t)
	ctx := context.Background()

	db.Create(&model.FxRate{Currency: "XTEST2", RateToUSD: 2})
	seedResolvedOrder(t, db, model.Order{
		PlatformOrderID: "2003", OrderLineID: "1",
		Quantity: 1, UnitPrice: 10, Currency: "XTEST2",
	})

	summary, err := svc.Reconcile(ctx, 0, nil, nil)
	if err != nil {
		t.Fatalf("对账失败: %v", err)
	}
	assert.InDelta(t, 20.0, summary.Rows[0].SaleUSD, 1e-9)

	// 覆盖汇率后缓存必须失效，下一次对账用新汇率
	err = svc.UpsertRates(ctx, []model.FxRate{{Currency: "XTEST2", RateToUSD: 3}})
	if err != nil {
		t.Fatalf("写汇率失败: %v", err)
	}
	summary, err = svc.Reconcile(ctx, 0, nil, nil)
	if err != nil {
		t.Fatalf("对账失败: %v", err)
	}
	assert.InDelta(t, 30.0, summary.Rows[0].SaleUSD, 1e-9)
}

// ==================== 汇总与口径 ====================

func TestReconcile_Aggregates(t *testing.T) {
	db, svc := setupFinance(t)

	seedResolvedOrder(t, db, model.Order{
		PlatformOrderID: "2004", OrderLineID: "1",
		Quantity: 1, UnitPrice: 100, Currency: "XTEST3",
		UnitCostUSD: 30, UnitShippingUSD: 10,
	})
	seedResolvedOrder(t, db, model.Order{
		PlatformOrderID: "2004", OrderLineID: "2",
		Quantity: 2, UnitPrice: 50, Currency: "XTEST3",
		UnitCostUSD: 20, UnitShippingUSD: 5,
	})
	// 未解析订单不进财务口径
	db.Create(&model.Order{
		PlatformOrderID: "2004", OrderLineID: "3", StoreID: 1,
		Quantity: 9, UnitPrice: 999, Currency: "XTEST3",
		Status: model.OrderStatusOK, ResolutionStatus: model.ResolutionUnresolved,
		OrderDate: time.Now(),
	})

	summary, err := svc.Reconcile(context.Background(), 0, nil, nil)
	if err != nil {
		t.Fatalf("对账失败: %v", err)
	}
	assert.Equal(t, 2, summary.OrderCount)
	// sale: 100 + 100 = 200; cost: 40 + 50 = 90; fee: 24; profit: 86
	assert.InDelta(t, 200.0, summary.TotalSaleUSD, 1e-9)
	assert.InDelta(t, 90.0, summary.TotalCostUSD, 1e-9)
	assert.InDelta(t, 24.0, summary.TotalFeeUSD, 1e-9)
	assert.InDelta(t, 86.0, summary.TotalProfitUSD, 1e-9)
	assert.InDelta(t, 0.43, summary.Margin, 1e-9)
}

func TestReconcile_EmptyPortfolioZeroMargin(t *testing.T) {
	_, svc := setupFinance(t)

	summary, err := svc.Reconcile(context.Background(), 0, nil, nil)
	if err != nil {
		t.Fatalf("对账失败: %v", err)
	}
	assert.Equal(t, 0, summary.OrderCount)
	assert.Equal(t, 0.0, summary.Margin)
}

func TestReconcile_Filters(t *testing.T) {
	db, svc := setupFinance(t)
	ctx := context.Background()

	seedResolvedOrder(t, db, model.Order{
		PlatformOrderID: "2005", OrderLineID: "1", StoreID: 1,
		Quantity: 1, UnitPrice: 10, Currency: "XTEST4",
		OrderDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
	})
	seedResolvedOrder(t, db, model.Order{
		PlatformOrderID: "2006", OrderLineID: "1", StoreID: 2,
		Quantity: 1, UnitPrice: 20, Currency: "XTEST4",
		OrderDate: time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC),
	})

	// 按店铺过滤
	summary, err := svc.Reconcile(ctx, 2, nil, nil)
	if err != nil {
		t.Fatalf("对账失败: %v", err)
	}
	assert.Equal(t, 1, summary.OrderCount)
	assert.InDelta(t, 20.0, summary.TotalSaleUSD, 1e-9)

	// 按日期过滤
	start := time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC)
	summary, err = svc.Reconcile(ctx, 0, &start, nil)
	if err != nil {
		t.Fatalf("对账失败: %v", err)
	}
	assert.Equal(t, 1, summary.OrderCount)
	assert.Equal(t, "2006", summary.Rows[0].PlatformOrderID)
}
