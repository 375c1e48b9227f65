package service

import (
	"context"

	"seller_ops_v1_202608/internal/model"
	"seller_ops_v1_202608/internal/repository"
)

// ==================== CatalogService 目录查询 ====================

// CatalogService 目录只读查询，给异常处理界面做参照
// （建商品/变体/SKU 映射在目录维护系统里做，不在本服务范围）
type CatalogService struct {
	catalogRepo repository.CatalogRepository
}

// NewCatalogService 创建目录查询服务
func NewCatalogService(catalogRepo repository.CatalogRepository) *CatalogService {
	return &CatalogService{catalogRepo: catalogRepo}
}

// ListProducts 商品列表（带变体）
func (s *CatalogService) ListProducts(ctx context.Context, keyword string, page, pageSize int) ([]model.Product, int64, error) {
	return s.catalogRepo.ListProducts(ctx, keyword, page, pageSize)
}

// ListStoreSkus SKU 映射列表
func (s *CatalogService) ListStoreSkus(ctx context.Context, storeID int64, page, pageSize int) ([]model.StoreSku, int64, error) {
	return s.catalogRepo.ListStoreSkus(ctx, storeID, page, pageSize)
}

// ListStores 店铺列表
func (s *CatalogService) ListStores(ctx context.Context) ([]model.Store, error) {
	return s.catalogRepo.ListStores(ctx)
}
