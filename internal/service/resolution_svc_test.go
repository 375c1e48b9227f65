package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"seller_ops_v1_202608/internal/model"
	"seller_ops_v1_202608/internal/repository"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

// ==================== 测试辅助 ====================

type resolutionFixture struct {
	db         *gorm.DB
	orderRepo  repository.OrderRepository
	excRepo    repository.ExceptionRepository
	resolution *ResolutionService
}

func setupResolution(t *testing.T) *resolutionFixture {
	db := setupTestDB(t)

	orderRepo := repository.NewOrderRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	excRepo := repository.NewExceptionRepository(db)

	resolution := NewResolutionService(
		orderRepo, catalogRepo, NewResolverService(), NewExceptionService(excRepo),
	)
	// 内存 sqlite 串行跑，避免表锁干扰断言
	resolution.SetConcurrency(1)

	return &resolutionFixture{
		db:         db,
		orderRepo:  orderRepo,
		excRepo:    excRepo,
		resolution: resolution,
	}
}

// seedCatalog 标准目录：ABC123 → GP-000001，红色 M 码变体成本 5 运费 2
func (f *resolutionFixture) seedCatalog(t *testing.T) {
	if err := f.db.Create(&model.Product{
		BaseModel: model.BaseModel{ID: 1}, GPID: "GP-000001", Name: "Ceramic Mug",
	}).Error; err != nil {
		t.Fatalf("建商品失败: %v", err)
	}
	f.db.Create(&model.Variant{
		BaseModel: model.BaseModel{ID: 1}, ProductID: 1, VarID: "VAR-01",
		Color: "red", Size: "m",
		SupplierVariation: "红色-M", UnitCostUSD: 5, UnitShippingUSD: 2,
	})
	f.db.Create(&model.StoreSku{StoreID: 1, RawSKU: "ABC123", ProductID: 1})
}

func (f *resolutionFixture) seedOrder(t *testing.T, o model.Order) int64 {
	if o.Quantity == 0 {
		o.Quantity = 1
	}
	if o.Currency == "" {
		o.Currency = "USD"
	}
	if o.Status == "" {
		o.Status = model.OrderStatusOK
	}
	if o.ResolutionStatus == "" {
		o.ResolutionStatus = model.ResolutionUnresolved
	}
	if o.StoreID == 0 {
		o.StoreID = 1
	}
	o.OrderDate = time.Now()
	if err := f.db.Create(&o).Error; err != nil {
		t.Fatalf("建订单失败: %v", err)
	}
	return o.ID
}

// ==================== 成功解析 ====================

func TestResolveAll_Success(t *testing.T) {
	f := setupResolution(t)
	f.seedCatalog(t)
	orderID := f.seedOrder(t, model.Order{
		PlatformOrderID: "1001", OrderLineID: "1",
		RawSKU: "ABC123", RawColor: "red", RawSize: "M",
		Quantity: 2, UnitPrice: 10, Currency: "GBP",
	})

	result, err := f.resolution.ResolveAll(context.Background())
	if err != nil {
		t.Fatalf("批次执行失败: %v", err)
	}
	assert.EqualValues(t, 1, result.Processed)
	assert.EqualValues(t, 1, result.Resolved)
	assert.EqualValues(t, 0, result.Failed)

	order, _ := f.orderRepo.GetByID(context.Background(), orderID)
	assert.Equal(t, model.ResolutionResolved, order.ResolutionStatus)
	assert.EqualValues(t, 1, order.ProductID)
	assert.EqualValues(t, 1, order.VariantID)
	assert.Equal(t, "红色-M", order.SupplierVariation)
	assert.Equal(t, 5.0, order.UnitCostUSD)
	assert.Equal(t, 2.0, order.UnitShippingUSD)
	assert.NotNil(t, order.ResolvedAt)
}

// ==================== 失败路径 ====================

func TestResolveAll_VariantNotFound(t *testing.T) {
	f := setupResolution(t)
	f.seedCatalog(t)
	orderID := f.seedOrder(t, model.Order{
		PlatformOrderID: "1002", OrderLineID: "1",
		RawSKU: "ABC123", RawColor: "Blue", RawSize: "M",
	})

	result, err := f.resolution.ResolveAll(context.Background())
	if err != nil {
		t.Fatalf("批次执行失败: %v", err)
	}
	assert.EqualValues(t, 1, result.Failed)

	order, _ := f.orderRepo.GetByID(context.Background(), orderID)
	assert.Equal(t, model.ResolutionNeedsFix, order.ResolutionStatus)

	exc, err := f.excRepo.GetOpenByOrderID(context.Background(), orderID)
	if err != nil {
		t.Fatalf("期望已建异常: %v", err)
	}
	assert.Equal(t, model.FailureVariantNotFound, exc.Kind)
	assert.Equal(t, model.CategoryAddVariant, exc.Category)
}

func TestResolveAll_SkuNotMapped(t *testing.T) {
	f := setupResolution(t)
	f.seedCatalog(t)
	orderID := f.seedOrder(t, model.Order{
		PlatformOrderID: "1003", OrderLineID: "1",
		RawSKU: "UNKNOWN-SKU", RawColor: "red", RawSize: "M",
	})

	_, err := f.resolution.ResolveAll(context.Background())
	if err != nil {
		t.Fatalf("批次执行失败: %v", err)
	}

	order, _ := f.orderRepo.GetByID(context.Background(), orderID)
	assert.Equal(t, model.ResolutionNeedsFix, order.ResolutionStatus)

	exc, err := f.excRepo.GetOpenByOrderID(context.Background(), orderID)
	if err != nil {
		t.Fatalf("期望已建异常: %v", err)
	}
	assert.Equal(t, model.FailureSkuNotMapped, exc.Kind)
	assert.Equal(t, model.CategoryAddSkuMapping, exc.Category)
}

func TestResolveAll_ProductHasNoVariants(t *testing.T) {
	f := setupResolution(t)
	// 商品存在但没有任何变体
	f.db.Create(&model.Product{BaseModel: model.BaseModel{ID: 7}, GPID: "GP-000007"})
	f.db.Create(&model.StoreSku{StoreID: 1, RawSKU: "EMPTY", ProductID: 7})
	orderID := f.seedOrder(t, model.Order{
		PlatformOrderID: "1004", OrderLineID: "1", RawSKU: "EMPTY",
	})

	_, err := f.resolution.ResolveAll(context.Background())
	if err != nil {
		t.Fatalf("批次执行失败: %v", err)
	}

	exc, err := f.excRepo.GetOpenByOrderID(context.Background(), orderID)
	if err != nil {
		t.Fatalf("期望已建异常: %v", err)
	}
	assert.Equal(t, model.FailureProductHasNoVariants, exc.Kind)
	assert.Equal(t, model.CategoryAddVariant, exc.Category)
}

// ==================== 生命周期守护 ====================

func TestResolveAll_SkipsCancelledOrders(t *testing.T) {
	f := setupResolution(t)
	f.seedCatalog(t)
	cancelledID := f.seedOrder(t, model.Order{
		PlatformOrderID: "1005", OrderLineID: "1",
		RawSKU: "ABC123", RawColor: "red", RawSize: "M",
		Status: model.OrderStatusCancelled,
	})
	refundedID := f.seedOrder(t, model.Order{
		PlatformOrderID: "1005", OrderLineID: "2",
		RawSKU: "ABC123", RawColor: "red", RawSize: "M",
		Status: model.OrderStatusRefunded,
	})

	result, err := f.resolution.ResolveAll(context.Background())
	if err != nil {
		t.Fatalf("批次执行失败: %v", err)
	}
	assert.EqualValues(t, 0, result.Processed)

	for _, id := range []int64{cancelledID, refundedID} {
		order, _ := f.orderRepo.GetByID(context.Background(), id)
		assert.Equal(t, model.ResolutionUnresolved, order.ResolutionStatus)
	}
}

// ==================== 幂等与重试 ====================

func TestResolveAll_Idempotent(t *testing.T) {
	f := setupResolution(t)
	f.seedCatalog(t)
	f.seedOrder(t, model.Order{
		PlatformOrderID: "1006", OrderLineID: "1",
		RawSKU: "ABC123", RawColor: "red", RawSize: "M",
	})
	f.seedOrder(t, model.Order{
		PlatformOrderID: "1006", OrderLineID: "2",
		RawSKU: "NOPE",
	})

	first, err := f.resolution.ResolveAll(context.Background())
	if err != nil {
		t.Fatalf("第一次批次失败: %v", err)
	}
	assert.EqualValues(t, 2, first.Processed)

	// 目录没变化时重跑必须是空转
	second, err := f.resolution.ResolveAll(context.Background())
	if err != nil {
		t.Fatalf("第二次批次失败: %v", err)
	}
	assert.EqualValues(t, 0, second.Processed)
}

func TestResolveAll_NeedsFixRequiresExplicitRetry(t *testing.T) {
	f := setupResolution(t)
	f.seedCatalog(t)
	orderID := f.seedOrder(t, model.Order{
		PlatformOrderID: "1007", OrderLineID: "1",
		RawSKU: "ABC123", RawColor: "Blue", RawSize: "M",
	})
	ctx := context.Background()

	if _, err := f.resolution.ResolveAll(ctx); err != nil {
		t.Fatalf("批次执行失败: %v", err)
	}

	// 补上蓝色变体后直接重跑：没重置状态，订单保持 needs_fix
	f.db.Create(&model.Variant{
		BaseModel: model.BaseModel{ID: 2}, ProductID: 1, VarID: "VAR-02",
		Color: "blue", Size: "m", SupplierVariation: "蓝色-M", UnitCostUSD: 4,
	})
	if _, err := f.resolution.ResolveAll(ctx); err != nil {
		t.Fatalf("批次执行失败: %v", err)
	}
	order, _ := f.orderRepo.GetByID(ctx, orderID)
	assert.Equal(t, model.ResolutionNeedsFix, order.ResolutionStatus)

	// 显式重试后才会被下个批次解析
	if err := f.resolution.RetryOrder(ctx, orderID); err != nil {
		t.Fatalf("重试失败: %v", err)
	}
	if _, err := f.resolution.ResolveAll(ctx); err != nil {
		t.Fatalf("批次执行失败: %v", err)
	}
	order, _ = f.orderRepo.GetByID(ctx, orderID)
	assert.Equal(t, model.ResolutionResolved, order.ResolutionStatus)
	assert.Equal(t, "蓝色-M", order.SupplierVariation)
}

func TestRetryOrder_Guards(t *testing.T) {
	f := setupResolution(t)
	ctx := context.Background()

	unresolvedID := f.seedOrder(t, model.Order{
		PlatformOrderID: "1008", OrderLineID: "1", RawSKU: "X",
	})
	cancelledID := f.seedOrder(t, model.Order{
		PlatformOrderID: "1008", OrderLineID: "2", RawSKU: "X",
		Status: model.OrderStatusCancelled, ResolutionStatus: model.ResolutionNeedsFix,
	})

	// 未解析过的订单没有可重试的结果
	assert.Error(t, f.resolution.RetryOrder(ctx, unresolvedID))
	// 已取消的订单不允许重试
	assert.Error(t, f.resolution.RetryOrder(ctx, cancelledID))
}

// ==================== 取消与故障 ====================

func TestResolveAll_CancelledContextDispatchesNothing(t *testing.T) {
	f := setupResolution(t)
	f.seedCatalog(t)
	ids := []int64{
		f.seedOrder(t, model.Order{
			PlatformOrderID: "1010", OrderLineID: "1",
			RawSKU: "ABC123", RawColor: "red", RawSize: "M",
		}),
		f.seedOrder(t, model.Order{
			PlatformOrderID: "1010", OrderLineID: "2",
			RawSKU: "ABC123", RawColor: "red", RawSize: "M",
		}),
		f.seedOrder(t, model.Order{
			PlatformOrderID: "1010", OrderLineID: "3",
			RawSKU: "NOPE",
		}),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// 已取消的 context：一条都不派发，汇总如实报 0
	result, err := f.resolution.ResolveAll(ctx)
	if err != nil {
		t.Fatalf("批次执行失败: %v", err)
	}
	assert.EqualValues(t, 0, result.Processed)
	assert.EqualValues(t, 0, result.Resolved)
	assert.EqualValues(t, 0, result.Failed)

	for _, id := range ids {
		order, _ := f.orderRepo.GetByID(context.Background(), id)
		assert.Equal(t, model.ResolutionUnresolved, order.ResolutionStatus)
	}
}

// brokenWriteOrderRepo 指定订单写入解析结果时报错，模拟存储故障
type brokenWriteOrderRepo struct {
	repository.OrderRepository
	failID int64
}

func (r *brokenWriteOrderRepo) MarkResolved(ctx context.Context, id int64, fields repository.ResolvedFields) error {
	if id == r.failID {
		return fmt.Errorf("数据库连接中断")
	}
	return r.OrderRepository.MarkResolved(ctx, id, fields)
}

func TestResolveAll_StorageErrorDoesNotAbortBatch(t *testing.T) {
	f := setupResolution(t)
	f.seedCatalog(t)
	failedID := f.seedOrder(t, model.Order{
		PlatformOrderID: "1011", OrderLineID: "1",
		RawSKU: "ABC123", RawColor: "red", RawSize: "M",
	})
	okID := f.seedOrder(t, model.Order{
		PlatformOrderID: "1011", OrderLineID: "2",
		RawSKU: "ABC123", RawColor: "red", RawSize: "M",
	})

	resolution := NewResolutionService(
		&brokenWriteOrderRepo{OrderRepository: f.orderRepo, failID: failedID},
		repository.NewCatalogRepository(f.db),
		NewResolverService(),
		NewExceptionService(f.excRepo),
	)
	resolution.SetConcurrency(1)

	result, err := resolution.ResolveAll(context.Background())
	if err != nil {
		t.Fatalf("存储故障不应让批次整体报错: %v", err)
	}
	assert.EqualValues(t, 2, result.Processed)
	assert.EqualValues(t, 1, result.Resolved)
	assert.EqualValues(t, 1, result.Failed)

	// 故障订单保持 unresolved，其余订单正常落库
	broken, _ := f.orderRepo.GetByID(context.Background(), failedID)
	assert.Equal(t, model.ResolutionUnresolved, broken.ResolutionStatus)
	ok, _ := f.orderRepo.GetByID(context.Background(), okID)
	assert.Equal(t, model.ResolutionResolved, ok.ResolutionStatus)
}

// ==================== 异常去重 ====================

func TestResolveAll_NoDuplicateOpenException(t *testing.T) {
	f := setupResolution(t)
	f.seedCatalog(t)
	orderID := f.seedOrder(t, model.Order{
		PlatformOrderID: "1009", OrderLineID: "1",
		RawSKU: "ABC123", RawColor: "Blue", RawSize: "M",
	})
	ctx := context.Background()

	if _, err := f.resolution.ResolveAll(ctx); err != nil {
		t.Fatalf("批次执行失败: %v", err)
	}

	// 连续两轮 重试 → 失败，开着的异常始终只有一单
	for i := 0; i < 2; i++ {
		if err := f.resolution.RetryOrder(ctx, orderID); err != nil {
			t.Fatalf("重试失败: %v", err)
		}
		if _, err := f.resolution.ResolveAll(ctx); err != nil {
			t.Fatalf("批次执行失败: %v", err)
		}
	}

	var count int64
	f.db.Model(&model.Exception{}).
		Where("order_id = ? AND resolved = ?", orderID, false).
		Count(&count)
	assert.EqualValues(t, 1, count)
}
