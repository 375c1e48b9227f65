package repository

import (
	"context"
	"time"

	"seller_ops_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ==================== 过滤条件 ====================

// ExceptionFilter 异常列表过滤条件
type ExceptionFilter struct {
	StoreID  int64
	Kind     model.FailureKind
	Category string
	Resolved *bool
	Page     int
	PageSize int
}

// ==================== ExceptionRepository 异常仓库 ====================

// ExceptionRepository 解析异常仓库接口
type ExceptionRepository interface {
	Create(ctx context.Context, exc *model.Exception) error
	GetByID(ctx context.Context, id int64) (*model.Exception, error)
	// GetOpenByOrderID 查订单当前未关闭的异常，防重复建单用
	GetOpenByOrderID(ctx context.Context, orderID int64) (*model.Exception, error)
	Update(ctx context.Context, exc *model.Exception) error
	List(ctx context.Context, filter ExceptionFilter) ([]model.Exception, int64, error)
	MarkResolved(ctx context.Context, id int64, resolvedBy string) error
	Reopen(ctx context.Context, id int64) error
	Delete(ctx context.Context, id int64) error
	CountOpen(ctx context.Context) (int64, error)
}

// ==================== 实现 ====================

type exceptionRepo struct {
	db *gorm.DB
}

// NewExceptionRepository 创建异常仓库
func NewExceptionRepository(db *gorm.DB) ExceptionRepository {
	return &exceptionRepo{db: db}
}

func (r *exceptionRepo) Create(ctx context.Context, exc *model.Exception) error {
	return r.db.WithContext(ctx).Create(exc).Error
}

func (r *exceptionRepo) GetByID(ctx context.Context, id int64) (*model.Exception, error) {
	var exc model.Exception
	if err := r.db.WithContext(ctx).First(&exc, id).Error; err != nil {
		return nil, err
	}
	return &exc, nil
}

func (r *exceptionRepo) GetOpenByOrderID(ctx context.Context, orderID int64) (*model.Exception, error) {
	var exc model.Exception
	err := r.db.WithContext(ctx).
		Where("order_id = ? AND resolved = ?", orderID, false).
		Order("id ASC").
		First(&exc).Error
	if err != nil {
		return nil, err
	}
	return &exc, nil
}

func (r *exceptionRepo) Update(ctx context.Context, exc *model.Exception) error {
	return r.db.WithContext(ctx).Save(exc).Error
}

func (r *exceptionRepo) List(ctx context.Context, filter ExceptionFilter) ([]model.Exception, int64, error) {
	var excs []model.Exception
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Exception{})

	if filter.StoreID > 0 {
		db = db.Where("store_id = ?", filter.StoreID)
	}
	if filter.Kind != "" {
		db = db.Where("kind = ?", filter.Kind)
	}
	if filter.Category != "" {
		db = db.Where("category = ?", filter.Category)
	}
	if filter.Resolved != nil {
		db = db.Where("resolved = ?", *filter.Resolved)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	err := db.Order("resolved ASC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&excs).Error
	if err != nil {
		return nil, 0, err
	}

	return excs, total, nil
}

func (r *exceptionRepo) MarkResolved(ctx context.Context, id int64, resolvedBy string) error {
	now := time.Now()
	return r.db.WithContext(ctx).Model(&model.Exception{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"resolved":    true,
			"resolved_by": resolvedBy,
			"resolved_at": now,
		}).Error
}

func (r *exceptionRepo) Reopen(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Model(&model.Exception{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"resolved":    false,
			"resolved_by": "",
			"resolved_at": nil,
		}).Error
}

func (r *exceptionRepo) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Delete(&model.Exception{}, id).Error
}

func (r *exceptionRepo) CountOpen(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&model.Exception{}).
		Where("resolved = ?", false).
		Count(&total).Error
	return total, err
}
