package service

import (
	"context"
	"testing"

	"seller_ops_v1_202608/internal/model"
	"seller_ops_v1_202608/internal/repository"

	"github.com/stretchr/testify/assert"
)

// ==================== 建单与去重 ====================

func TestExceptionFile_CreatesWithCategory(t *testing.T) {
	db := setupTestDB(t)
	svc := NewExceptionService(repository.NewExceptionRepository(db))

	order := &model.Order{
		BaseModel: model.BaseModel{ID: 10},
		StoreID:   1, RawSKU: "ABC123", RawColor: "Blue", RawSize: "M",
	}

	exc, err := svc.File(context.Background(), order, &ResolveError{
		Kind:    model.FailureSkuNotMapped,
		Message: "店铺 1 的 SKU ABC123 未配置映射",
	})
	if err != nil {
		t.Fatalf("建单失败: %v", err)
	}
	assert.Equal(t, model.CategoryAddSkuMapping, exc.Category)
	assert.Equal(t, "ABC123", exc.RawSKU)
	assert.False(t, exc.Resolved)
}

func TestExceptionFile_UpdatesExistingOpen(t *testing.T) {
	db := setupTestDB(t)
	svc := NewExceptionService(repository.NewExceptionRepository(db))
	ctx := context.Background()

	order := &model.Order{
		BaseModel: model.BaseModel{ID: 11},
		StoreID:   1, RawSKU: "ABC123", RawColor: "Blue", RawSize: "M",
	}

	first, err := svc.File(ctx, order, &ResolveError{
		Kind: model.FailureSkuNotMapped, Message: "未配置映射",
	})
	if err != nil {
		t.Fatalf("建单失败: %v", err)
	}

	// 映射补好之后再次失败：失败类型变了，仍复用同一张单
	order.RawColor = "Chartreuse"
	second, err := svc.File(ctx, order, &ResolveError{
		Kind: model.FailureVariantNotFound, Message: "变体未匹配",
	})
	if err != nil {
		t.Fatalf("建单失败: %v", err)
	}
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, model.FailureVariantNotFound, second.Kind)
	assert.Equal(t, model.CategoryAddVariant, second.Category)
	assert.Equal(t, "Chartreuse", second.RawColor)

	var count int64
	db.Model(&model.Exception{}).Where("order_id = ?", order.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestExceptionFile_NewRecordAfterResolved(t *testing.T) {
	db := setupTestDB(t)
	svc := NewExceptionService(repository.NewExceptionRepository(db))
	ctx := context.Background()

	order := &model.Order{BaseModel: model.BaseModel{ID: 12}, StoreID: 1, RawSKU: "X"}

	first, err := svc.File(ctx, order, &ResolveError{
		Kind: model.FailureVariantNotFound, Message: "变体未匹配",
	})
	if err != nil {
		t.Fatalf("建单失败: %v", err)
	}
	if err := svc.Resolve(ctx, first.ID, "ops@example.com"); err != nil {
		t.Fatalf("关单失败: %v", err)
	}

	// 旧单已关闭，再失败时开新单
	second, err := svc.File(ctx, order, &ResolveError{
		Kind: model.FailureVariantNotFound, Message: "变体仍未匹配",
	})
	if err != nil {
		t.Fatalf("建单失败: %v", err)
	}
	assert.NotEqual(t, first.ID, second.ID)
}

// ==================== 人工处理 ====================

func TestExceptionResolveAndReopen(t *testing.T) {
	db := setupTestDB(t)
	repo := repository.NewExceptionRepository(db)
	svc := NewExceptionService(repo)
	ctx := context.Background()

	order := &model.Order{BaseModel: model.BaseModel{ID: 13}, StoreID: 1, RawSKU: "X"}
	exc, err := svc.File(ctx, order, &ResolveError{
		Kind: model.FailureVariantNotFound, Message: "变体未匹配",
	})
	if err != nil {
		t.Fatalf("建单失败: %v", err)
	}

	if err := svc.Resolve(ctx, exc.ID, "ops@example.com"); err != nil {
		t.Fatalf("关单失败: %v", err)
	}
	got, _ := repo.GetByID(ctx, exc.ID)
	assert.True(t, got.Resolved)
	assert.Equal(t, "ops@example.com", got.ResolvedBy)
	assert.NotNil(t, got.ResolvedAt)

	// 已关闭的单不允许重复关
	assert.Error(t, svc.Resolve(ctx, exc.ID, "ops2@example.com"))

	if err := svc.Reopen(ctx, exc.ID); err != nil {
		t.Fatalf("重开失败: %v", err)
	}
	got, _ = repo.GetByID(ctx, exc.ID)
	assert.False(t, got.Resolved)
}

func TestExceptionCountOpen(t *testing.T) {
	db := setupTestDB(t)
	svc := NewExceptionService(repository.NewExceptionRepository(db))
	ctx := context.Background()

	for i := int64(21); i <= 23; i++ {
		order := &model.Order{BaseModel: model.BaseModel{ID: i}, StoreID: 1, RawSKU: "X"}
		exc, err := svc.File(ctx, order, &ResolveError{
			Kind: model.FailureVariantNotFound, Message: "变体未匹配",
		})
		if err != nil {
			t.Fatalf("建单失败: %v", err)
		}
		if i == 23 {
			if err := svc.Resolve(ctx, exc.ID, "ops@example.com"); err != nil {
				t.Fatalf("关单失败: %v", err)
			}
		}
	}

	count, err := svc.CountOpen(ctx)
	if err != nil {
		t.Fatalf("统计失败: %v", err)
	}
	assert.EqualValues(t, 2, count)
}
