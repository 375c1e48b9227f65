package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"seller_ops_v1_202608/internal/controller"
	"seller_ops_v1_202608/internal/middleware"
)

// Controllers 控制器集合
type Controllers struct {
	Order      *controller.OrderController
	Resolution *controller.ResolutionController
	Exception  *controller.ExceptionController
	Finance    *controller.FinanceController
	Catalog    *controller.CatalogController
}

// SetupRouter 注册所有路由
func SetupRouter(ctls *Controllers) *gin.Engine {
	r := gin.Default()

	// 健康检查（网关探活用，不走认证）
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// API 路由组，统一过网关 Token 校验
	api := r.Group("/api")
	api.Use(middleware.JWTAuth())
	{
		// orders 订单
		orders := api.Group("/orders")
		{
			orders.POST("/import", ctls.Order.Import)
			orders.GET("", ctls.Order.List)
			orders.GET("/stats", ctls.Order.Stats)
			orders.GET("/:id", ctls.Order.Detail)
			orders.PUT("/:id/status", ctls.Order.UpdateStatus)
			// 目录修复后的显式重试
			orders.POST("/:id/retry", ctls.Resolution.Retry)
		}

		// resolution 解析批次
		resolution := api.Group("/resolution")
		{
			// 连点保护：批次幂等，冷却只是挡无意义的重复触发
			resolution.POST("/run",
				middleware.RunGuard(middleware.ResolutionRunKey, 30*time.Second),
				ctls.Resolution.Run,
			)
		}

		// exceptions 异常处理队列
		exceptions := api.Group("/exceptions")
		{
			exceptions.GET("", ctls.Exception.List)
			exceptions.GET("/open-count", ctls.Exception.CountOpen)
			exceptions.PUT("/:id/resolve", ctls.Exception.Resolve)
			exceptions.PUT("/:id/reopen", ctls.Exception.Reopen)
			exceptions.DELETE("/:id", ctls.Exception.Delete)
		}

		// finance 财务对账
		finance := api.Group("/finance")
		{
			finance.GET("/pnl", ctls.Finance.PnL)
			finance.GET("/fx-rates", ctls.Finance.ListFxRates)
			finance.PUT("/fx-rates", ctls.Finance.UpsertFxRates)
		}

		// catalog 目录参照（只读）
		catalog := api.Group("/catalog")
		{
			catalog.GET("/products", ctls.Catalog.ListProducts)
			catalog.GET("/store-skus", ctls.Catalog.ListStoreSkus)
			catalog.GET("/stores", ctls.Catalog.ListStores)
		}
	}

	return r
}
