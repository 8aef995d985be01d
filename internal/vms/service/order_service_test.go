package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bitfantasy/vms/internal/vms/entity"
	"github.com/bitfantasy/vms/internal/vms/repository"
	"github.com/bitfantasy/vms/internal/vms/testutil"
	"gorm.io/gorm"
)

func setupOrderTest(t *testing.T) (*gorm.DB, *repository.Repositories, *OrderService, *PerformanceService) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	repos := repository.NewRepositories(db)
	perfSvc := NewPerformanceService(repos.Vendor, repos.PO, repos.Performance, db)
	orderSvc := NewOrderService(repos.PO, repos.Vendor, repos.Buyer, repos.Item, repos.ActivityLog, perfSvc, db)
	return db, repos, orderSvc, perfSvc
}

func seedOrderFixture(t *testing.T, db *gorm.DB) (*entity.Vendor, *entity.Buyer, *entity.Item) {
	t.Helper()
	vendor := testutil.SeedTestVendor(t, db, "vnd-001", "VND-0001")
	buyer := testutil.SeedTestBuyer(t, db, "byr-001", "BYR-0001")
	item := testutil.SeedTestItem(t, db, "item-001", vendor.ID, 100)
	return vendor, buyer, item
}

func historyCount(t *testing.T, db *gorm.DB, vendorID string) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&entity.PerformanceRecord{}).Where("vendor_id = ?", vendorID).Count(&n).Error; err != nil {
		t.Fatalf("count history: %v", err)
	}
	return n
}

func TestCreateOrder(t *testing.T) {
	db, repos, orderSvc, _ := setupOrderTest(t)
	vendor, buyer, item := seedOrderFixture(t, db)
	ctx := context.Background()

	promised := time.Now().Add(72 * time.Hour)
	po, err := orderSvc.Create(ctx, buyer.UserID, &CreateOrderRequest{
		VendorCode:   vendor.Code,
		ItemID:       item.ID,
		Quantity:     10,
		DeliveryDate: &promised,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if po.Status != entity.POStatusPending {
		t.Errorf("expected pending, got %s", po.Status)
	}
	if po.IssueDate == nil {
		t.Error("issue date should be stamped at creation")
	}
	if po.PONumber == "" {
		t.Error("po number should be generated")
	}

	// 下单扣减库存
	gotItem, err := repos.Item.FindByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("find item: %v", err)
	}
	if gotItem.AvailableQuantity != 90 {
		t.Errorf("expected quantity 90, got %d", gotItem.AvailableQuantity)
	}

	// 采购方统计更新
	gotBuyer, err := repos.Buyer.FindByID(ctx, buyer.ID)
	if err != nil {
		t.Fatalf("find buyer: %v", err)
	}
	if gotBuyer.TotalOrders != 1 {
		t.Errorf("expected total_orders 1, got %d", gotBuyer.TotalOrders)
	}

	// 下单本身不产生绩效快照
	if n := historyCount(t, db, vendor.ID); n != 0 {
		t.Errorf("expected 0 history rows after create, got %d", n)
	}
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	db, _, orderSvc, _ := setupOrderTest(t)
	vendor, buyer, item := seedOrderFixture(t, db)

	_, err := orderSvc.Create(context.Background(), buyer.UserID, &CreateOrderRequest{
		VendorCode: vendor.Code,
		ItemID:     item.ID,
		Quantity:   101,
	})
	if err == nil {
		t.Fatal("expected error on insufficient stock")
	}
}

func TestAcknowledgeRecordsHistory(t *testing.T) {
	db, _, orderSvc, _ := setupOrderTest(t)
	vendor, buyer, item := seedOrderFixture(t, db)
	ctx := context.Background()

	po, err := orderSvc.Create(ctx, buyer.UserID, &CreateOrderRequest{
		VendorCode: vendor.Code, ItemID: item.ID, Quantity: 5,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	got, err := orderSvc.Acknowledge(ctx, po.ID, buyer.UserID)
	if err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if got.Status != entity.POStatusAcknowledged {
		t.Errorf("expected acknowledged, got %s", got.Status)
	}
	if got.AcknowledgmentDate == nil {
		t.Error("acknowledgment date should be set")
	}

	// 每次状态流转追加恰好一条绩效快照
	if n := historyCount(t, db, vendor.ID); n != 1 {
		t.Errorf("expected 1 history row after acknowledge, got %d", n)
	}
}

func TestInvalidTransitionLeavesNoTrace(t *testing.T) {
	db, repos, orderSvc, _ := setupOrderTest(t)
	vendor, buyer, item := seedOrderFixture(t, db)
	ctx := context.Background()

	po, err := orderSvc.Create(ctx, buyer.UserID, &CreateOrderRequest{
		VendorCode: vendor.Code, ItemID: item.ID, Quantity: 5,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	// pending不能直接完成
	_, err = orderSvc.Complete(ctx, po.ID, buyer.UserID, nil)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}

	// 失败的流转不落历史、不改状态
	if n := historyCount(t, db, vendor.ID); n != 0 {
		t.Errorf("expected 0 history rows after rejected transition, got %d", n)
	}
	got, err := repos.PO.FindByID(ctx, po.ID)
	if err != nil {
		t.Fatalf("find po: %v", err)
	}
	if got.Status != entity.POStatusPending {
		t.Errorf("status should stay pending, got %s", got.Status)
	}
}

func TestTerminalStatusRejectsTransitions(t *testing.T) {
	db, _, orderSvc, _ := setupOrderTest(t)
	vendor, buyer, item := seedOrderFixture(t, db)
	ctx := context.Background()

	po, err := orderSvc.Create(ctx, buyer.UserID, &CreateOrderRequest{
		VendorCode: vendor.Code, ItemID: item.ID, Quantity: 5,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if _, err := orderSvc.Cancel(ctx, po.ID, buyer.UserID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	if _, err := orderSvc.Acknowledge(ctx, po.ID, buyer.UserID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition after cancel, got %v", err)
	}
	if _, err := orderSvc.Cancel(ctx, po.ID, buyer.UserID); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("canceled order should not cancel again, got %v", err)
	}

	// 只有成功的那次取消落了历史
	if n := historyCount(t, db, vendor.ID); n != 1 {
		t.Errorf("expected 1 history row, got %d", n)
	}
}

func TestCancelRestoresStockAndRecomputes(t *testing.T) {
	db, repos, orderSvc, _ := setupOrderTest(t)
	vendor, buyer, item := seedOrderFixture(t, db)
	ctx := context.Background()

	po, err := orderSvc.Create(ctx, buyer.UserID, &CreateOrderRequest{
		VendorCode: vendor.Code, ItemID: item.ID, Quantity: 30,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if _, err := orderSvc.Cancel(ctx, po.ID, buyer.UserID); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	gotItem, err := repos.Item.FindByID(ctx, item.ID)
	if err != nil {
		t.Fatalf("find item: %v", err)
	}
	if gotItem.AvailableQuantity != 100 {
		t.Errorf("expected stock restored to 100, got %d", gotItem.AvailableQuantity)
	}

	// 取消订单也触发重算：取消的订单不计入完成，履约率为0
	gotVendor, err := repos.Vendor.FindByID(ctx, vendor.ID)
	if err != nil {
		t.Fatalf("find vendor: %v", err)
	}
	if gotVendor.FulfillmentRate != 0 {
		t.Errorf("expected fulfillment rate 0, got %f", gotVendor.FulfillmentRate)
	}
}

func TestFullLifecycleUpdatesMetrics(t *testing.T) {
	db, repos, orderSvc, _ := setupOrderTest(t)
	vendor, buyer, item := seedOrderFixture(t, db)
	ctx := context.Background()

	promised := time.Now().Add(24 * time.Hour)
	po, err := orderSvc.Create(ctx, buyer.UserID, &CreateOrderRequest{
		VendorCode: vendor.Code, ItemID: item.ID, Quantity: 5, DeliveryDate: &promised,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	if _, err := orderSvc.Acknowledge(ctx, po.ID, buyer.UserID); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}
	if _, err := orderSvc.Issue(ctx, po.ID, buyer.UserID); err != nil {
		t.Fatalf("issue: %v", err)
	}

	rating := 4.5
	got, err := orderSvc.Complete(ctx, po.ID, buyer.UserID, &CompleteOrderRequest{QualityRating: &rating})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if got.Status != entity.POStatusCompleted {
		t.Errorf("expected completed, got %s", got.Status)
	}
	if got.DeliveredAt == nil {
		t.Error("delivered_at should be set on completion")
	}

	gotVendor, err := repos.Vendor.FindByID(ctx, vendor.ID)
	if err != nil {
		t.Fatalf("find vendor: %v", err)
	}
	// 准时送达（早于承诺交期），唯一订单完成
	if gotVendor.OnTimeDeliveryRate != 100 {
		t.Errorf("expected on-time rate 100, got %f", gotVendor.OnTimeDeliveryRate)
	}
	if gotVendor.FulfillmentRate != 100 {
		t.Errorf("expected fulfillment rate 100, got %f", gotVendor.FulfillmentRate)
	}
	if gotVendor.QualityRatingAvg != 4.5 {
		t.Errorf("expected quality avg 4.5, got %f", gotVendor.QualityRatingAvg)
	}

	// 三次流转三条快照
	if n := historyCount(t, db, vendor.ID); n != 3 {
		t.Errorf("expected 3 history rows, got %d", n)
	}
}

func TestCurrentMetricsMatchLatestHistory(t *testing.T) {
	db, repos, orderSvc, perfSvc := setupOrderTest(t)
	vendor, buyer, item := seedOrderFixture(t, db)
	ctx := context.Background()

	po, err := orderSvc.Create(ctx, buyer.UserID, &CreateOrderRequest{
		VendorCode: vendor.Code, ItemID: item.ID, Quantity: 5,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := orderSvc.Acknowledge(ctx, po.ID, buyer.UserID); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	latest, err := perfSvc.GetLatest(ctx, vendor.ID)
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	gotVendor, err := repos.Vendor.FindByID(ctx, vendor.ID)
	if err != nil {
		t.Fatalf("find vendor: %v", err)
	}

	if gotVendor.OnTimeDeliveryRate != latest.OnTimeDeliveryRate ||
		gotVendor.QualityRatingAvg != latest.QualityRatingAvg ||
		gotVendor.AverageResponseTime != latest.AverageResponseTime ||
		gotVendor.FulfillmentRate != latest.FulfillmentRate {
		t.Errorf("vendor current metrics diverge from latest snapshot: vendor=%+v latest=%+v",
			gotVendor, latest)
	}
}

func TestRecomputeIsIdempotent(t *testing.T) {
	db, _, orderSvc, perfSvc := setupOrderTest(t)
	vendor, buyer, item := seedOrderFixture(t, db)
	ctx := context.Background()

	po, err := orderSvc.Create(ctx, buyer.UserID, &CreateOrderRequest{
		VendorCode: vendor.Code, ItemID: item.ID, Quantity: 5,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if _, err := orderSvc.Acknowledge(ctx, po.ID, buyer.UserID); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	// 订单集不变，重复重算得到相同指标，但每次都追加一条历史
	first, err := perfSvc.RecomputeAndRecord(ctx, vendor.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	second, err := perfSvc.RecomputeAndRecord(ctx, vendor.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}

	if first.OnTimeDeliveryRate != second.OnTimeDeliveryRate ||
		first.QualityRatingAvg != second.QualityRatingAvg ||
		first.AverageResponseTime != second.AverageResponseTime ||
		first.FulfillmentRate != second.FulfillmentRate {
		t.Errorf("idempotent recompute produced different metrics: %+v vs %+v", first, second)
	}
	if n := historyCount(t, db, vendor.ID); n != 3 {
		t.Errorf("expected 3 history rows (1 transition + 2 manual), got %d", n)
	}

	// 最新快照取后写入的一条
	latest, err := perfSvc.GetLatest(ctx, vendor.ID)
	if err != nil {
		t.Fatalf("get latest: %v", err)
	}
	if latest.ID != second.ID {
		t.Errorf("expected latest snapshot id %d, got %d", second.ID, latest.ID)
	}
}

func TestUpdateOrderOnlyWhilePending(t *testing.T) {
	db, repos, orderSvc, _ := setupOrderTest(t)
	vendor, buyer, item := seedOrderFixture(t, db)
	ctx := context.Background()

	po, err := orderSvc.Create(ctx, buyer.UserID, &CreateOrderRequest{
		VendorCode: vendor.Code, ItemID: item.ID, Quantity: 10,
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}

	// pending可改数量，库存同步调整
	newQty := 4
	updated, err := orderSvc.Update(ctx, po.ID, &UpdateOrderRequest{Quantity: &newQty})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Quantity != 4 {
		t.Errorf("expected quantity 4, got %d", updated.Quantity)
	}
	gotItem, _ := repos.Item.FindByID(ctx, item.ID)
	if gotItem.AvailableQuantity != 96 {
		t.Errorf("expected stock 96 after downsizing order, got %d", gotItem.AvailableQuantity)
	}

	if _, err := orderSvc.Acknowledge(ctx, po.ID, buyer.UserID); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	_, err = orderSvc.Update(ctx, po.ID, &UpdateOrderRequest{Quantity: &newQty})
	if !errors.Is(err, ErrOrderNotEditable) {
		t.Fatalf("expected ErrOrderNotEditable, got %v", err)
	}
}

func TestItemVendorMismatch(t *testing.T) {
	db, _, orderSvc, _ := setupOrderTest(t)
	vendor, buyer, _ := seedOrderFixture(t, db)

	other := testutil.SeedTestVendor(t, db, "vnd-002", "VND-0002")
	otherItem := testutil.SeedTestItem(t, db, "item-002", other.ID, 10)

	_, err := orderSvc.Create(context.Background(), buyer.UserID, &CreateOrderRequest{
		VendorCode: vendor.Code,
		ItemID:     otherItem.ID,
		Quantity:   1,
	})
	if !errors.Is(err, ErrItemVendorMismatch) {
		t.Fatalf("expected ErrItemVendorMismatch, got %v", err)
	}
}
