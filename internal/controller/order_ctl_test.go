package controller

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"seller_ops_v1_202608/internal/model"
	"seller_ops_v1_202608/internal/repository"
	"seller_ops_v1_202608/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// ==================== 测试辅助 ====================

func setupImportRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Order{}, &model.Store{}, &model.Product{}, &model.Variant{}); err != nil {
		t.Fatalf("建表失败: %v", err)
	}

	svc := service.NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewCatalogRepository(db),
	)
	ctl := NewOrderController(svc)

	r := gin.New()
	r.POST("/api/orders/import", ctl.Import)
	return r, db
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

// ==================== 订单导入 ====================

func TestImport_AcceptsValidRows(t *testing.T) {
	r, db := setupImportRouter(t)

	w := postJSON(r, "/api/orders/import", `{
		"orders": [
			{"platform_order_id": "4001", "order_line_id": "1", "store_id": 1,
			 "raw_sku": "ABC123", "quantity": 2, "unit_price": 10,
			 "currency": "GBP", "order_date": "2026-08-15"},
			{"platform_order_id": "4001", "order_line_id": "2", "store_id": 1,
			 "raw_sku": "ABC124", "quantity": 1}
		]
	}`)
	assert.Equal(t, http.StatusOK, w.Code)

	var count int64
	db.Model(&model.Order{}).Count(&count)
	assert.EqualValues(t, 2, count)

	var order model.Order
	db.Where("platform_order_id = ? AND order_line_id = ?", "4001", "1").First(&order)
	assert.Equal(t, "2026-08-15", order.OrderDate.Format("2006-01-02"))
	// 没给币种的行默认 USD
	db.Where("platform_order_id = ? AND order_line_id = ?", "4001", "2").First(&order)
	assert.Equal(t, "USD", order.Currency)
}

func TestImport_RejectsBadOrderDate(t *testing.T) {
	r, db := setupImportRouter(t)

	// 日期串错会污染对账区间，必须整批拒绝而不是悄悄用当前时间顶上
	w := postJSON(r, "/api/orders/import", `{
		"orders": [
			{"platform_order_id": "4002", "order_line_id": "1", "store_id": 1,
			 "raw_sku": "ABC123", "quantity": 1, "order_date": "15/08/2026"}
		]
	}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "order_date")

	var count int64
	db.Model(&model.Order{}).Count(&count)
	assert.EqualValues(t, 0, count)
}
