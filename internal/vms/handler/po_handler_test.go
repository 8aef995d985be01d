package handler

import (
	"net/http"
	"testing"
	"time"

	"github.com/bitfantasy/vms/internal/vms/entity"
	"github.com/bitfantasy/vms/internal/vms/repository"
	"github.com/bitfantasy/vms/internal/vms/service"
	"github.com/bitfantasy/vms/internal/vms/testutil"
	"gorm.io/gorm"
)

func setupPOTest(t *testing.T) (*testutil.TestEnv, *service.PerformanceService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	router := testutil.SetupRouter()

	repos := repository.NewRepositories(db)
	perfSvc := service.NewPerformanceService(repos.Vendor, repos.PO, repos.Performance, db)
	orderSvc := service.NewOrderService(repos.PO, repos.Vendor, repos.Buyer, repos.Item, repos.ActivityLog, perfSvc, db)

	h := NewPOHandler(orderSvc)
	ph := NewPerformanceHandler(perfSvc)

	api := testutil.AuthGroup(router, "/api/v1")
	api.GET("/purchase-orders", h.List)
	api.GET("/purchase-orders/:id", h.Get)
	api.POST("/purchase-orders", h.Create)
	api.POST("/purchase-orders/:id/acknowledge", h.Acknowledge)
	api.POST("/purchase-orders/:id/issue", h.Issue)
	api.POST("/purchase-orders/:id/complete", h.Complete)
	api.POST("/purchase-orders/:id/cancel", h.Cancel)
	api.GET("/purchase-orders/:id/activity", h.Activity)
	api.GET("/vendors/:id/performance", ph.Latest)
	api.GET("/vendors/:id/performance/history", ph.History)
	api.POST("/vendors/:id/performance/recompute", ph.Recompute)

	return &testutil.TestEnv{DB: db, Router: router, T: t}, perfSvc
}

func seedPOFixture(t *testing.T, db *gorm.DB) (*entity.Vendor, *entity.Buyer, *entity.Item) {
	t.Helper()
	vendor := testutil.SeedTestVendor(t, db, "vnd-h01", "VND-0001")
	buyer := testutil.SeedTestBuyer(t, db, "byr-h01", "BYR-0001")
	item := testutil.SeedTestItem(t, db, "item-h01", vendor.ID, 50)
	return vendor, buyer, item
}

func buyerToken(buyer *entity.Buyer) string {
	return testutil.GenerateTestToken(buyer.UserID, "Test Buyer", "buyer@test.com", entity.UserTypeBuyer)
}

func TestPOCreateAndGet(t *testing.T) {
	env, _ := setupPOTest(t)
	vendor, buyer, item := seedPOFixture(t, env.DB)
	token := buyerToken(buyer)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/purchase-orders",
		map[string]interface{}{
			"vendor_code":   vendor.Code,
			"item_id":       item.ID,
			"quantity":      5,
			"delivery_date": time.Now().Add(48 * time.Hour).Format(time.RFC3339),
		}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}

	resp := testutil.ParseResponse(w)
	data := resp["data"].(map[string]interface{})
	if data["status"] != "pending" {
		t.Errorf("Expected pending, got %v", data["status"])
	}
	poID := data["id"].(string)

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/purchase-orders/"+poID, nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", w.Code, w.Body.String())
	}
}

func TestPOTransitionFlow(t *testing.T) {
	env, _ := setupPOTest(t)
	vendor, buyer, item := seedPOFixture(t, env.DB)
	token := buyerToken(buyer)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/purchase-orders",
		map[string]interface{}{"vendor_code": vendor.Code, "item_id": item.ID, "quantity": 5}, token)
	if w.Code != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", w.Code, w.Body.String())
	}
	poID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	w = testutil.DoRequest(env.Router, "POST", "/api/v1/purchase-orders/"+poID+"/acknowledge", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("acknowledge: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["status"] != "acknowledged" {
		t.Errorf("Expected acknowledged, got %v", data["status"])
	}
	if data["acknowledgment_date"] == nil {
		t.Error("acknowledgment_date should be set")
	}

	w = testutil.DoRequest(env.Router, "POST", "/api/v1/purchase-orders/"+poID+"/issue", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("issue: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, "POST", "/api/v1/purchase-orders/"+poID+"/complete",
		map[string]interface{}{"quality_rating": 4.0}, token)
	if w.Code != http.StatusOK {
		t.Fatalf("complete: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	data = testutil.ParseResponse(w)["data"].(map[string]interface{})
	if data["status"] != "completed" {
		t.Errorf("Expected completed, got %v", data["status"])
	}
}

func TestPOInvalidTransitionConflict(t *testing.T) {
	env, _ := setupPOTest(t)
	vendor, buyer, item := seedPOFixture(t, env.DB)
	token := buyerToken(buyer)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/purchase-orders",
		map[string]interface{}{"vendor_code": vendor.Code, "item_id": item.ID, "quantity": 5}, token)
	poID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)

	// pending不能直接完成
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/purchase-orders/"+poID+"/complete",
		map[string]interface{}{}, token)
	if w.Code != http.StatusConflict {
		t.Fatalf("Expected 409, got %d: %s", w.Code, w.Body.String())
	}
	resp := testutil.ParseResponse(w)
	if resp["code"].(float64) != 40900 {
		t.Errorf("Expected code 40900, got %v", resp["code"])
	}
}

func TestPerformanceEndpoints(t *testing.T) {
	env, _ := setupPOTest(t)
	vendor, buyer, item := seedPOFixture(t, env.DB)
	token := buyerToken(buyer)

	// 从未重算过的供应商没有最新快照
	w := testutil.DoRequest(env.Router, "GET", "/api/v1/vendors/"+vendor.ID+"/performance", nil, token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("Expected 404 before any recompute, got %d: %s", w.Code, w.Body.String())
	}

	// 手动重算产生快照
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/vendors/"+vendor.ID+"/performance/recompute", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("recompute: expected 200, got %d: %s", w.Code, w.Body.String())
	}

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/vendors/"+vendor.ID+"/performance", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected 200 after recompute, got %d: %s", w.Code, w.Body.String())
	}
	data := testutil.ParseResponse(w)["data"].(map[string]interface{})
	// 无订单的供应商所有指标为0
	for _, k := range []string{"on_time_delivery_rate", "quality_rating_avg", "average_response_time", "fulfillment_rate"} {
		if data[k].(float64) != 0 {
			t.Errorf("Expected %s = 0 for vendor with no orders, got %v", k, data[k])
		}
	}

	// 下单+确认后历史增长
	w = testutil.DoRequest(env.Router, "POST", "/api/v1/purchase-orders",
		map[string]interface{}{"vendor_code": vendor.Code, "item_id": item.ID, "quantity": 2}, token)
	poID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)
	testutil.DoRequest(env.Router, "POST", "/api/v1/purchase-orders/"+poID+"/acknowledge", nil, token)

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/vendors/"+vendor.ID+"/performance/history", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("history: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	pagination := testutil.ParseResponse(w)["data"].(map[string]interface{})["pagination"].(map[string]interface{})
	if pagination["total"].(float64) != 2 {
		t.Errorf("Expected 2 history rows, got %v", pagination["total"])
	}

	// 无权限（未带Token）
	w = testutil.DoRequest(env.Router, "GET", "/api/v1/vendors/"+vendor.ID+"/performance", nil, "")
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("Expected 401 without token, got %d", w.Code)
	}
}

func TestPOActivityLog(t *testing.T) {
	env, _ := setupPOTest(t)
	vendor, buyer, item := seedPOFixture(t, env.DB)
	token := buyerToken(buyer)

	w := testutil.DoRequest(env.Router, "POST", "/api/v1/purchase-orders",
		map[string]interface{}{"vendor_code": vendor.Code, "item_id": item.ID, "quantity": 1}, token)
	poID := testutil.ParseResponse(w)["data"].(map[string]interface{})["id"].(string)
	testutil.DoRequest(env.Router, "POST", "/api/v1/purchase-orders/"+poID+"/cancel", nil, token)

	w = testutil.DoRequest(env.Router, "GET", "/api/v1/purchase-orders/"+poID+"/activity", nil, token)
	if w.Code != http.StatusOK {
		t.Fatalf("activity: expected 200, got %d: %s", w.Code, w.Body.String())
	}
	pagination := testutil.ParseResponse(w)["data"].(map[string]interface{})["pagination"].(map[string]interface{})
	if pagination["total"].(float64) != 2 {
		t.Errorf("Expected 2 activity entries (create + cancel), got %v", pagination["total"])
	}
}
