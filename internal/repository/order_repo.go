package repository

import (
	"context"
	"errors"
	"time"

	"seller_ops_v1_202608/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrStaleResolution CAS 写入未命中：订单已不在期望的解析状态
var ErrStaleResolution = errors.New("订单解析状态已变更，写入被拒绝")

// ==================== 过滤条件 ====================

// OrderFilter 订单过滤条件
type OrderFilter struct {
	StoreID          int64
	Status           model.OrderStatus
	ResolutionStatus model.ResolutionStatus
	StartDate        *time.Time
	EndDate          *time.Time
	Keyword          string // 平台订单号 / 原始 SKU
	Page             int
	PageSize         int
}

// ResolvedFields 解析成功后落库的字段组
type ResolvedFields struct {
	ProductID         int64
	VariantID         int64
	SupplierVariation string
	UnitCostUSD       float64
	UnitShippingUSD   float64
}

// ==================== OrderRepository 订单仓库 ====================

// OrderRepository 订单仓库接口
// 解析字段的写入全部走 CAS（WHERE resolution_status = 'unresolved'），
// 保证并发编排器抢跑时至多一次落库
type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	// BatchImport 导入方写入归一化订单行；(平台订单号, 行号) 已存在的行静默跳过
	BatchImport(ctx context.Context, orders []model.Order) (int64, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByPlatformLine(ctx context.Context, platformOrderID, lineID string) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error

	// 解析流程
	ListResolvable(ctx context.Context) ([]model.Order, error)
	MarkResolved(ctx context.Context, id int64, fields ResolvedFields) error
	MarkNeedsFix(ctx context.Context, id int64) error
	ResetResolution(ctx context.Context, id int64) error

	// 对账读取
	ListResolved(ctx context.Context, storeID int64, startDate, endDate *time.Time) ([]model.Order, error)

	// 统计
	CountByResolution(ctx context.Context) (map[model.ResolutionStatus]int64, error)
}

// ==================== 实现 ====================

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *orderRepository) BatchImport(ctx context.Context, orders []model.Order) (int64, error) {
	if len(orders) == 0 {
		return 0, nil
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "platform_order_id"}, {Name: "order_line_id"}},
		DoNothing: true,
	}).CreateInBatches(&orders, 200)
	return res.RowsAffected, res.Error
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByPlatformLine(ctx context.Context, platformOrderID, lineID string) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).
		Where("platform_order_id = ? AND order_line_id = ?", platformOrderID, lineID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Order{})

	// 应用过滤条件
	if filter.StoreID > 0 {
		db = db.Where("store_id = ?", filter.StoreID)
	}
	if filter.Status != "" {
		db = db.Where("status = ?", filter.Status)
	}
	if filter.ResolutionStatus != "" {
		db = db.Where("resolution_status = ?", filter.ResolutionStatus)
	}
	if filter.StartDate != nil {
		db = db.Where("order_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		db = db.Where("order_date <= ?", *filter.EndDate)
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		db = db.Where("platform_order_id LIKE ? OR raw_sku LIKE ?", kw, kw)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	// 分页
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 || pageSize > 200 {
		pageSize = 20
	}

	err := db.Order("order_date DESC, id DESC").
		Offset((page - 1) * pageSize).
		Limit(pageSize).
		Find(&orders).Error
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status model.OrderStatus) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// ==================== 解析流程 ====================

// ListResolvable 取出所有待解析订单：生命周期正常 且 从未出过解析结果
func (r *orderRepository) ListResolvable(ctx context.Context) ([]model.Order, error) {
	var orders []model.Order
	err := r.db.WithContext(ctx).
		Where("status = ? AND resolution_status = ?", model.OrderStatusOK, model.ResolutionUnresolved).
		Order("id ASC").
		Find(&orders).Error
	return orders, err
}

// MarkResolved CAS 写入解析结果
// 只有仍处于 unresolved 的 ok 订单会被命中；未命中返回 ErrStaleResolution
func (r *orderRepository) MarkResolved(ctx context.Context, id int64, fields ResolvedFields) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ? AND resolution_status = ?",
			id, model.OrderStatusOK, model.ResolutionUnresolved).
		Updates(map[string]interface{}{
			"resolution_status":  model.ResolutionResolved,
			"product_id":         fields.ProductID,
			"variant_id":         fields.VariantID,
			"supplier_variation": fields.SupplierVariation,
			"unit_cost_usd":      fields.UnitCostUSD,
			"unit_shipping_usd":  fields.UnitShippingUSD,
			"resolved_at":        now,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleResolution
	}
	return nil
}

// MarkNeedsFix CAS 标记待修复，同样只从 unresolved 出发
func (r *orderRepository) MarkNeedsFix(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND status = ? AND resolution_status = ?",
			id, model.OrderStatusOK, model.ResolutionUnresolved).
		Update("resolution_status", model.ResolutionNeedsFix)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleResolution
	}
	return nil
}

// ResetResolution 外部显式重试：把已出结果的订单拉回 unresolved 并清空解析字段
func (r *orderRepository) ResetResolution(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND resolution_status <> ?", id, model.ResolutionUnresolved).
		Updates(map[string]interface{}{
			"resolution_status":  model.ResolutionUnresolved,
			"product_id":         0,
			"variant_id":         0,
			"supplier_variation": "",
			"unit_cost_usd":      0,
			"unit_shipping_usd":  0,
			"resolved_at":        nil,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStaleResolution
	}
	return nil
}

// ==================== 对账读取 ====================

// ListResolved 对账器输入：生命周期正常且解析成功的订单
func (r *orderRepository) ListResolved(ctx context.Context, storeID int64, startDate, endDate *time.Time) ([]model.Order, error) {
	db := r.db.WithContext(ctx).
		Where("status = ? AND resolution_status = ?", model.OrderStatusOK, model.ResolutionResolved)

	if storeID > 0 {
		db = db.Where("store_id = ?", storeID)
	}
	if startDate != nil {
		db = db.Where("order_date >= ?", *startDate)
	}
	if endDate != nil {
		db = db.Where("order_date <= ?", *endDate)
	}

	var orders []model.Order
	err := db.Order("order_date ASC, id ASC").Find(&orders).Error
	return orders, err
}

// ==================== 统计 ====================

func (r *orderRepository) CountByResolution(ctx context.Context) (map[model.ResolutionStatus]int64, error) {
	type row struct {
		ResolutionStatus model.ResolutionStatus
		Cnt              int64
	}
	var rows []row
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("resolution_status, COUNT(*) as cnt").
		Group("resolution_status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[model.ResolutionStatus]int64, len(rows))
	for _, r := range rows {
		counts[r.ResolutionStatus] = r.Cnt
	}
	return counts, nil
}
