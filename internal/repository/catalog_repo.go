package repository

import (
	"context"

	"seller_ops_v1_202608/internal/model"

	"gorm.io/gorm"
)

// 目录数据（商品/变体/SKU 映射）由目录维护方写入，本仓库只读。

// ==================== 接口定义 ====================

// CatalogReader 目录只读视图
// 单个订单解析期间拿到的 reader 必须观察同一份目录快照
type CatalogReader interface {
	GetStoreSku(ctx context.Context, storeID int64, rawSku string) (*model.StoreSku, error)
	GetProduct(ctx context.Context, id int64) (*model.Product, error)
	GetProductByGPID(ctx context.Context, gpid string) (*model.Product, error)
	ListVariants(ctx context.Context, productID int64) ([]model.Variant, error)
}

// CatalogRepository 目录仓库接口
type CatalogRepository interface {
	CatalogReader

	// Snapshot 在一个数据库事务内执行 fn，fn 看到的目录内部一致，
	// 不会读到并发目录编辑改了一半的变体集合
	Snapshot(ctx context.Context, fn func(CatalogReader) error) error

	// 处理界面用的列表查询
	ListProducts(ctx context.Context, keyword string, page, pageSize int) ([]model.Product, int64, error)
	ListStoreSkus(ctx context.Context, storeID int64, page, pageSize int) ([]model.StoreSku, int64, error)
	GetStore(ctx context.Context, id int64) (*model.Store, error)
	ListStores(ctx context.Context) ([]model.Store, error)
}

// ==================== 实现 ====================

type catalogRepo struct {
	db *gorm.DB
}

// NewCatalogRepository 创建目录仓库
func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepo{db: db}
}

func (r *catalogRepo) Snapshot(ctx context.Context, fn func(CatalogReader) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&catalogRepo{db: tx})
	})
}

// GetStoreSku 精确查 (店铺, 原始 SKU) 映射，刻意不做任何归一化
func (r *catalogRepo) GetStoreSku(ctx context.Context, storeID int64, rawSku string) (*model.StoreSku, error) {
	var mapping model.StoreSku
	err := r.db.WithContext(ctx).
		Where("store_id = ? AND raw_sku = ?", storeID, rawSku).
		First(&mapping).Error
	if err != nil {
		return nil, err
	}
	return &mapping, nil
}

func (r *catalogRepo) GetProduct(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *catalogRepo) GetProductByGPID(ctx context.Context, gpid string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Where("gp_id = ?", gpid).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// ListVariants 按 var_id 升序返回，给匹配器一个稳定的遍历顺序
func (r *catalogRepo) ListVariants(ctx context.Context, productID int64) ([]model.Variant, error) {
	var variants []model.Variant
	err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("var_id ASC").
		Find(&variants).Error
	return variants, err
}

// ==================== 列表查询 ====================

func (r *catalogRepo) ListProducts(ctx context.Context, keyword string, page, pageSize int) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Product{})
	if keyword != "" {
		kw := "%" + keyword + "%"
		db = db.Where("gp_id LIKE ? OR name LIKE ?", kw, kw)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	err := db.Preload("Variants").
		Order("gp_id ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&products).Error
	return products, total, err
}

func (r *catalogRepo) ListStoreSkus(ctx context.Context, storeID int64, page, pageSize int) ([]model.StoreSku, int64, error) {
	var mappings []model.StoreSku
	var total int64

	db := r.db.WithContext(ctx).Model(&model.StoreSku{})
	if storeID > 0 {
		db = db.Where("store_id = ?", storeID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}

	err := db.Order("store_id ASC, raw_sku ASC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&mappings).Error
	return mappings, total, err
}

func (r *catalogRepo) GetStore(ctx context.Context, id int64) (*model.Store, error) {
	var store model.Store
	if err := r.db.WithContext(ctx).First(&store, id).Error; err != nil {
		return nil, err
	}
	return &store, nil
}

func (r *catalogRepo) ListStores(ctx context.Context) ([]model.Store, error) {
	var stores []model.Store
	err := r.db.WithContext(ctx).Order("id ASC").Find(&stores).Error
	return stores, err
}
