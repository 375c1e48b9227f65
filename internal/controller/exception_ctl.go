package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"seller_ops_v1_202608/internal/api/dto"
	"seller_ops_v1_202608/internal/model"
	"seller_ops_v1_202608/internal/repository"
	"seller_ops_v1_202608/internal/service"
)

// ExceptionController 异常处理控制器
type ExceptionController struct {
	svc *service.ExceptionService
}

// NewExceptionController 创建异常处理控制器
func NewExceptionController(svc *service.ExceptionService) *ExceptionController {
	return &ExceptionController{svc: svc}
}

// List 异常列表
// GET /api/exceptions
func (c *ExceptionController) List(ctx *gin.Context) {
	var req dto.ListExceptionsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	excs, total, err := c.svc.List(ctx, repository.ExceptionFilter{
		StoreID:  req.StoreID,
		Kind:     model.FailureKind(req.Kind),
		Category: req.Category,
		Resolved: req.Resolved,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	list := make([]dto.ExceptionVO, len(excs))
	for i, e := range excs {
		list[i] = dto.ExceptionVO{
			ID:         e.ID,
			OrderID:    e.OrderID,
			StoreID:    e.StoreID,
			RawSKU:     e.RawSKU,
			RawColor:   e.RawColor,
			RawSize:    e.RawSize,
			Kind:       string(e.Kind),
			Issue:      e.Issue,
			Category:   e.Category,
			Resolved:   e.Resolved,
			ResolvedBy: e.ResolvedBy,
			ResolvedAt: e.ResolvedAt,
			CreatedAt:  e.CreatedAt,
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"data": dto.ListExceptionsResponse{Total: total, List: list}})
}

// Resolve 关闭异常
// PUT /api/exceptions/:id/resolve
func (c *ExceptionController) Resolve(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的异常 ID"})
		return
	}

	var req dto.ResolveExceptionRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.svc.Resolve(ctx, id, req.ResolvedBy); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "异常已关闭"})
}

// Reopen 重新打开异常
// PUT /api/exceptions/:id/reopen
func (c *ExceptionController) Reopen(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的异常 ID"})
		return
	}

	if err := c.svc.Reopen(ctx, id); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "异常已重新打开"})
}

// Delete 删除异常
// DELETE /api/exceptions/:id
func (c *ExceptionController) Delete(ctx *gin.Context) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "无效的异常 ID"})
		return
	}

	if err := c.svc.Delete(ctx, id); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "异常已删除"})
}

// CountOpen 未关闭异常数
// GET /api/exceptions/open-count
func (c *ExceptionController) CountOpen(ctx *gin.Context) {
	total, err := c.svc.CountOpen(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"open": total}})
}
