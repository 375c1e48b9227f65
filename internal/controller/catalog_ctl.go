package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"seller_ops_v1_202608/internal/api/dto"
	"seller_ops_v1_202608/internal/service"
)

// CatalogController 目录只读查询控制器
type CatalogController struct {
	svc *service.CatalogService
}

// NewCatalogController 创建目录查询控制器
func NewCatalogController(svc *service.CatalogService) *CatalogController {
	return &CatalogController{svc: svc}
}

// ListProducts 商品列表（带变体）
// GET /api/catalog/products
func (c *CatalogController) ListProducts(ctx *gin.Context) {
	var req dto.ListProductsRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	products, total, err := c.svc.ListProducts(ctx, req.Keyword, req.Page, req.PageSize)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	list := make([]dto.ProductVO, len(products))
	for i, p := range products {
		vo := dto.ProductVO{
			ID:        p.ID,
			GPID:      p.GPID,
			Name:      p.Name,
			SourceURL: p.SourceURL,
			Variants:  make([]dto.VariantVO, len(p.Variants)),
		}
		for j, v := range p.Variants {
			vo.Variants[j] = dto.VariantVO{
				ID:                v.ID,
				VarID:             v.VarID,
				Color:             v.Color,
				Size:              v.Size,
				SupplierVariation: v.SupplierVariation,
				UnitCostUSD:       v.UnitCostUSD,
				UnitShippingUSD:   v.UnitShippingUSD,
			}
		}
		list[i] = vo
	}

	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"total": total, "list": list}})
}

// ListStoreSkus SKU 映射列表
// GET /api/catalog/store-skus
func (c *CatalogController) ListStoreSkus(ctx *gin.Context) {
	var req dto.ListStoreSkusRequest
	if err := ctx.ShouldBindQuery(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	mappings, total, err := c.svc.ListStoreSkus(ctx, req.StoreID, req.Page, req.PageSize)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	list := make([]dto.StoreSkuVO, len(mappings))
	for i, m := range mappings {
		list[i] = dto.StoreSkuVO{
			ID:        m.ID,
			StoreID:   m.StoreID,
			RawSKU:    m.RawSKU,
			ProductID: m.ProductID,
		}
	}

	ctx.JSON(http.StatusOK, gin.H{"data": gin.H{"total": total, "list": list}})
}

// ListStores 店铺列表
// GET /api/catalog/stores
func (c *CatalogController) ListStores(ctx *gin.Context) {
	stores, err := c.svc.ListStores(ctx)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	list := make([]dto.StoreVO, len(stores))
	for i, s := range stores {
		list[i] = dto.StoreVO{ID: s.ID, Name: s.Name, Platform: s.Platform}
	}

	ctx.JSON(http.StatusOK, gin.H{"data": list})
}
