package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"seller_ops_v1_202608/internal/api/dto"
	"seller_ops_v1_202608/internal/model"
	"seller_ops_v1_202608/internal/service"
)

// FinanceController 财务对账控制器
type FinanceController struct {
	svc *service.FinanceService
}

// NewFinanceController 创建财务对账控制器
func NewFinanceController(svc *service.FinanceService) *FinanceController {
	return &FinanceController{svc: svc}
}

// PnL 损益视图：逐单明细 + 组合汇总
// GET /api/finance/pnl
func (c *FinanceController) PnL(ctx *gin.Context) {
	var req dto.PnLRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var startDate, endDate *time.Time
	if t, err := time.Parse("2006-01-02", req.StartDate); err == nil {
		startDate = &t
	}
	if t, err := time.Parse("2006-01-02", req.EndDate); err == nil {
		endOfDay := t.Add(24*time.Hour - time.Second)
		endDate = &endOfDay
	}

	summary, err := c.svc.Reconcile(ctx, req.StoreID, startDate, endDate)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if !req.WithRows {
		summary.Rows = nil
	}

	ctx.JSON(http.StatusOK, gin.H{"data": summary})
}

// ==================== 汇率维护 ====================

// UpsertFxRates 外部供给方写入汇率表
// PUT /api/finance/fx-rates
func (c *FinanceController) UpsertFxRates(ctx *gin.Context) {
	var req dto.UpsertFxRatesRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rates := make([]model.FxRate, len(req.Rates))
	for i, r := range req.Rates {
		rates[i] = model.FxRate{Currency: r.Currency, RateToUSD: r.RateToUSD}
	}

	if err := c.svc.UpsertRates(ctx, rates); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "汇率已更新"})
}

// ListFxRates 汇率表
// GET /api/finance/fx-rates
func (c *FinanceController) ListFxRates(ctx *gin.Context) {
	rates, err := c.svc.ListRates(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": rates})
}
