package service

import (
	"context"
	"errors"
	"fmt"

	"seller_ops_v1_202608/internal/model"
	"seller_ops_v1_202608/internal/repository"

	"gorm.io/gorm"
)

// ==================== OrderService 订单服务 ====================

// OrderService 订单查询与生命周期维护
// 订单行由导入方创建；这里不改解析字段（那是编排器通过 CAS 独占的）
type OrderService struct {
	orderRepo   repository.OrderRepository
	catalogRepo repository.CatalogRepository
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo repository.OrderRepository, catalogRepo repository.CatalogRepository) *OrderService {
	return &OrderService{orderRepo: orderRepo, catalogRepo: catalogRepo}
}

// ==================== 导入 ====================

// Import 接收导入方给的归一化订单行
// (平台订单号, 行号) 联合唯一，重复行静默跳过，保证一行不会被处理两次
func (s *OrderService) Import(ctx context.Context, orders []model.Order) (int64, error) {
	for i := range orders {
		o := &orders[i]
		if o.PlatformOrderID == "" || o.OrderLineID == "" {
			return 0, fmt.Errorf("第 %d 行缺少平台订单号/行号", i+1)
		}
		if o.Status == "" {
			o.Status = model.OrderStatusOK
		}
		// 导入行一律从未解析开始，忽略外部塞进来的解析字段
		o.ResolutionStatus = model.ResolutionUnresolved
		o.ProductID = 0
		o.VariantID = 0
		o.SupplierVariation = ""
		o.UnitCostUSD = 0
		o.UnitShippingUSD = 0
		o.ResolvedAt = nil
	}

	inserted, err := s.orderRepo.BatchImport(ctx, orders)
	if err != nil {
		return 0, fmt.Errorf("导入订单失败: %w", err)
	}
	return inserted, nil
}

// ==================== 查询 ====================

// List 订单列表
func (s *OrderService) List(ctx context.Context, filter repository.OrderFilter) ([]model.Order, int64, error) {
	return s.orderRepo.List(ctx, filter)
}

// OrderDetail 订单详情（带解析到的目录信息）
type OrderDetail struct {
	Order   *model.Order
	Store   *model.Store
	Product *model.Product
	Variant *model.Variant
}

// GetDetail 订单详情
// 目录引用悬挂（解析后商品被删）不视为错误，前端按未知商品展示
func (s *OrderService) GetDetail(ctx context.Context, orderID int64) (*OrderDetail, error) {
	order, err := s.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("订单不存在: %w", err)
	}

	detail := &OrderDetail{Order: order}

	if store, err := s.catalogRepo.GetStore(ctx, order.StoreID); err == nil {
		detail.Store = store
	}

	if order.ResolutionStatus == model.ResolutionResolved && order.ProductID > 0 {
		if product, err := s.catalogRepo.GetProduct(ctx, order.ProductID); err == nil {
			detail.Product = product
		}
		variants, err := s.catalogRepo.ListVariants(ctx, order.ProductID)
		if err == nil {
			for i := range variants {
				if variants[i].ID == order.VariantID {
					detail.Variant = &variants[i]
					break
				}
			}
		}
	}

	return detail, nil
}

// Stats 解析状态分布
func (s *OrderService) Stats(ctx context.Context) (map[model.ResolutionStatus]int64, error) {
	return s.orderRepo.CountByResolution(ctx)
}

// ==================== 生命周期变更 ====================

// UpdateStatus 外部生命周期变更（取消/退款回传）
func (s *OrderService) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus) error {
	switch status {
	case model.OrderStatusOK, model.OrderStatusCancelled, model.OrderStatusRefunded:
	default:
		return fmt.Errorf("非法的订单状态: %s", status)
	}

	if _, err := s.orderRepo.GetByID(ctx, orderID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("订单 %d 不存在", orderID)
		}
		return err
	}

	return s.orderRepo.UpdateStatus(ctx, orderID, status)
}
