package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"seller_ops_v1_202608/internal/service"
)

// ResolutionController 解析批次控制器
type ResolutionController struct {
	svc *service.ResolutionService
}

// NewResolutionController 创建解析批次控制器
func NewResolutionController(svc *service.ResolutionService) *ResolutionController {
	return &ResolutionController{svc: svc}
}

// Run 手动触发一次解析批次（导入完成后由导入方或运营触发）
// POST /api/resolution/run
func (c *ResolutionController) Run(ctx *gin.Context) {
	// 用请求自身的 context，客户端断开即停止派发剩余订单
	result, err := c.svc.ResolveAll(ctx.Request.Context())
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": result})
}

// Retry 单订单显式重试：目录修复后把订单拉回待解析
// POST /api/orders/:id/retry
func (c *ResolutionController) Retry(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的订单 ID"})
		return
	}

	if err := c.svc.RetryOrder(ctx, id); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "已重置为待解析，下个批次生效"})
}
