package repository

import (
	"context"

	"seller_ops_v1_202608/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ==================== FxRateRepository 汇率仓库 ====================

// FxRateRepository 汇率表仓库接口
// 汇率由外部供给，这里只做存取；缺失币种的兜底逻辑在对账服务里
type FxRateRepository interface {
	Get(ctx context.Context, currency string) (*model.FxRate, error)
	ListAll(ctx context.Context) ([]model.FxRate, error)
	Upsert(ctx context.Context, rate *model.FxRate) error
	BatchUpsert(ctx context.Context, rates []model.FxRate) error
	Delete(ctx context.Context, currency string) error
}

// ==================== 实现 ====================

type fxRateRepo struct {
	db *gorm.DB
}

// NewFxRateRepository 创建汇率仓库
func NewFxRateRepository(db *gorm.DB) FxRateRepository {
	return &fxRateRepo{db: db}
}

func (r *fxRateRepo) Get(ctx context.Context, currency string) (*model.FxRate, error) {
	var rate model.FxRate
	err := r.db.WithContext(ctx).Where("currency = ?", currency).First(&rate).Error
	if err != nil {
		return nil, err
	}
	return &rate, nil
}

func (r *fxRateRepo) ListAll(ctx context.Context) ([]model.FxRate, error) {
	var rates []model.FxRate
	err := r.db.WithContext(ctx).Order("currency ASC").Find(&rates).Error
	return rates, err
}

func (r *fxRateRepo) Upsert(ctx context.Context, rate *model.FxRate) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "currency"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate_to_usd", "updated_at"}),
	}).Create(rate).Error
}

func (r *fxRateRepo) BatchUpsert(ctx context.Context, rates []model.FxRate) error {
	if len(rates) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "currency"}},
		DoUpdates: clause.AssignmentColumns([]string{"rate_to_usd", "updated_at"}),
	}).Create(&rates).Error
}

func (r *fxRateRepo) Delete(ctx context.Context, currency string) error {
	return r.db.WithContext(ctx).Where("currency = ?", currency).Delete(&model.FxRate{}).Error
}
