package controller

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"seller_ops_v1_202608/internal/api/dto"
	"seller_ops_v1_202608/internal/model"
	"seller_ops_v1_202608/internal/repository"
	"seller_ops_v1_202608/internal/service"
)

// OrderController 订单控制器
type OrderController struct {
	svc *service.OrderService
}

// NewOrderController 创建订单控制器
func NewOrderController(svc *service.OrderService) *OrderController {
	return &OrderController{svc: svc}
}

// ==================== 导入 ====================

// Import 接收归一化订单行
// POST /api/orders/import
func (c *OrderController) Import(ctx *gin.Context) {
	var req dto.ImportOrdersRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	orders := make([]model.Order, len(req.Orders))
	for i, row := range req.Orders {
		orders[i] = model.Order{
			PlatformOrderID: row.PlatformOrderID,
			OrderLineID:     row.OrderLineID,
			StoreID:         row.StoreID,
			RawSKU:          row.RawSKU,
			RawColor:        row.RawColor,
			RawSize:         row.RawSize,
			Quantity:        row.Quantity,
			UnitPrice:       row.UnitPrice,
			Currency:        row.Currency,
			Status:          model.OrderStatus(row.Status),
		}
		if row.Currency == "" {
			orders[i].Currency = "USD"
		}
		// 日期串错会把订单算进错误的对账区间，拒绝整批让导入方改数据
		if row.OrderDate == "" {
			orders[i].OrderDate = time.Now()
		} else {
			t, err := time.Parse("2006-01-02", row.OrderDate)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{
					"error": fmt.Sprintf("第 %d 行 order_date %q 无法解析，期望 2006-01-02", i+1, row.OrderDate),
				})
				return
			}
			orders[i].OrderDate = t
		}
	}

	inserted, err := c.svc.Import(ctx, orders)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.ImportOrdersResponse{
		Received: len(req.Orders),
		Inserted: inserted,
		Skipped:  int64(len(req.Orders)) - inserted,
	}})
}

// ==================== 列表与详情 ====================

// List 订单列表
// GET /api/orders
func (c *OrderController) List(ctx *gin.Context) {
	var req dto.ListOrdersRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filter := repository.OrderFilter{
		StoreID:          req.StoreID,
		Status:           model.OrderStatus(req.Status),
		ResolutionStatus: model.ResolutionStatus(req.ResolutionStatus),
		Keyword:          req.Keyword,
		Page:             req.Page,
		PageSize:         req.PageSize,
	}
	if t, err := time.Parse("2006-01-02", req.StartDate); err == nil {
		filter.StartDate = &t
	}
	if t, err := time.Parse("2006-01-02", req.EndDate); err == nil {
		endOfDay := t.Add(24*time.Hour - time.Second)
		filter.EndDate = &endOfDay
	}

	orders, total, err := c.svc.List(ctx, filter)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	list := make([]dto.OrderListItem, len(orders))
	for i, o := range orders {
		list[i] = dto.OrderListItem{
			ID:               o.ID,
			PlatformOrderID:  o.PlatformOrderID,
			OrderLineID:      o.OrderLineID,
			StoreID:          o.StoreID,
			RawSKU:           o.RawSKU,
			RawColor:         o.RawColor,
			RawSize:          o.RawSize,
			Quantity:         o.Quantity,
			UnitPrice:        o.UnitPrice,
			Currency:         o.Currency,
			OrderDate:        o.OrderDate,
			Status:           string(o.Status),
			ResolutionStatus: string(o.ResolutionStatus),
			ResolvedAt:       o.ResolvedAt,
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.ListOrdersResponse{Total: total, List: list}})
}

// Detail 订单详情
// GET /api/orders/:id
func (c *OrderController) Detail(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的订单 ID"})
		return
	}

	detail, err := c.svc.GetDetail(ctx, id)
	if err != nil {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	resp := dto.OrderDetailResponse{Order: toOrderVO(detail.Order)}
	if detail.Store != nil {
		resp.Store = &dto.StoreVO{
			ID:       detail.Store.ID,
			Name:     detail.Store.Name,
			Platform: detail.Store.Platform,
		}
	}
	if detail.Order.ResolutionStatus == model.ResolutionResolved {
		ref := &dto.OrderResolvedRef{
			ProductID:         detail.Order.ProductID,
			VariantID:         detail.Order.VariantID,
			SupplierVariation: detail.Order.SupplierVariation,
			UnitCostUSD:       detail.Order.UnitCostUSD,
			UnitShippingUSD:   detail.Order.UnitShippingUSD,
		}
		if detail.Product != nil {
			ref.GPID = detail.Product.GPID
			ref.ProductName = detail.Product.Name
		}
		if detail.Variant != nil {
			ref.VarID = detail.Variant.VarID
		}
		resp.Resolution = ref
	}

	ctx.JSON(http.StatusOK, gin.H{"data": resp})
}

func toOrderVO(o *model.Order) *dto.OrderVO {
	return &dto.OrderVO{
		ID:               o.ID,
		PlatformOrderID:  o.PlatformOrderID,
		OrderLineID:      o.OrderLineID,
		StoreID:          o.StoreID,
		RawSKU:           o.RawSKU,
		RawColor:         o.RawColor,
		RawSize:          o.RawSize,
		Quantity:         o.Quantity,
		UnitPrice:        o.UnitPrice,
		Currency:         o.Currency,
		OrderDate:        o.OrderDate,
		Status:           string(o.Status),
		ResolutionStatus: string(o.ResolutionStatus),
		CreatedAt:        o.CreatedAt,
		ResolvedAt:       o.ResolvedAt,
	}
}

// ==================== 状态与统计 ====================

// UpdateStatus 外部生命周期变更
// PUT /api/orders/:id/status
func (c *OrderController) UpdateStatus(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的订单 ID"})
		return
	}

	var req dto.UpdateOrderStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.svc.UpdateStatus(ctx, id, model.OrderStatus(req.Status)); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "状态已更新"})
}

// Stats 解析状态分布
// GET /api/orders/stats
func (c *OrderController) Stats(ctx *gin.Context) {
	counts, err := c.svc.Stats(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.OrderStatsResponse{
		Unresolved: counts[model.ResolutionUnresolved],
		Resolved:   counts[model.ResolutionResolved],
		NeedsFix:   counts[model.ResolutionNeedsFix],
	}})
}
