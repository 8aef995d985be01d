package performance

import (
	"math"
	"testing"
	"time"

	"github.com/bitfantasy/vms/internal/vms/entity"
)

func floatPtr(f float64) *float64 { return &f }

func timePtr(t time.Time) *time.Time { return &t }

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// TestComputeEmptyOrderSet verifies all four metrics degrade to zero
// when the vendor has no orders at all.
func TestComputeEmptyOrderSet(t *testing.T) {
	m := Compute(nil)
	if m.OnTimeDeliveryRate != 0 || m.QualityRatingAvg != 0 ||
		m.AverageResponseTime != 0 || m.FulfillmentRate != 0 {
		t.Fatalf("expected all-zero metrics for empty order set, got %+v", m)
	}
}

// TestComputeNoCompletedOrders verifies completed-based metrics stay zero
// while pending orders exist.
func TestComputeNoCompletedOrders(t *testing.T) {
	now := time.Now()
	orders := []entity.PurchaseOrder{
		{Status: entity.POStatusPending, OrderDate: now},
		{Status: entity.POStatusAcknowledged, OrderDate: now},
	}

	if got := QualityRatingAvg(orders); got != 0 {
		t.Fatalf("expected quality_rating_avg 0, got %v", got)
	}
	if got := OnTimeDeliveryRate(orders); got != 0 {
		t.Fatalf("expected on_time_delivery_rate 0, got %v", got)
	}
	if got := FulfillmentRate(orders); got != 0 {
		t.Fatalf("expected fulfillment_rate 0, got %v", got)
	}
}

// TestSingleCompletedOrderOnTime covers the one-completed-order scenario:
// rated 4.0, delivered on time.
func TestSingleCompletedOrderOnTime(t *testing.T) {
	now := time.Now()
	promised := now.Add(72 * time.Hour)
	orders := []entity.PurchaseOrder{
		{
			Status:        entity.POStatusCompleted,
			OrderDate:     now,
			DeliveryDate:  timePtr(promised),
			DeliveredAt:   timePtr(promised.Add(-2 * time.Hour)),
			QualityRating: floatPtr(4.0),
		},
	}

	m := Compute(orders)
	if !almostEqual(m.QualityRatingAvg, 4.0) {
		t.Fatalf("expected quality_rating_avg 4.0, got %v", m.QualityRatingAvg)
	}
	if !almostEqual(m.OnTimeDeliveryRate, 100.0) {
		t.Fatalf("expected on_time_delivery_rate 100.0, got %v", m.OnTimeDeliveryRate)
	}
	if !almostEqual(m.FulfillmentRate, 100.0) {
		t.Fatalf("expected fulfillment_rate 100.0, got %v", m.FulfillmentRate)
	}
}

// TestMixedStatusFulfillment covers one completed (rated 3.0) plus one
// pending order: fulfillment 50, quality avg computed over completed only.
func TestMixedStatusFulfillment(t *testing.T) {
	now := time.Now()
	orders := []entity.PurchaseOrder{
		{Status: entity.POStatusCompleted, OrderDate: now, QualityRating: floatPtr(3.0)},
		{Status: entity.POStatusPending, OrderDate: now},
	}

	m := Compute(orders)
	if !almostEqual(m.FulfillmentRate, 50.0) {
		t.Fatalf("expected fulfillment_rate 50.0, got %v", m.FulfillmentRate)
	}
	if !almostEqual(m.QualityRatingAvg, 3.0) {
		t.Fatalf("expected quality_rating_avg 3.0, got %v", m.QualityRatingAvg)
	}
}

// TestAverageResponseTimeOneHour: acknowledged exactly 3600s after issue.
func TestAverageResponseTimeOneHour(t *testing.T) {
	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	orders := []entity.PurchaseOrder{
		{
			Status:             entity.POStatusAcknowledged,
			OrderDate:          issued,
			IssueDate:          timePtr(issued),
			AcknowledgmentDate: timePtr(issued.Add(3600 * time.Second)),
		},
	}

	if got := AverageResponseTime(orders); !almostEqual(got, 1.0) {
		t.Fatalf("expected average_response_time 1.0, got %v", got)
	}
}

// TestAverageResponseTimeNegativeNotClamped: acknowledgment before issue
// yields a negative mean and must pass through unmodified.
func TestAverageResponseTimeNegativeNotClamped(t *testing.T) {
	issued := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	orders := []entity.PurchaseOrder{
		{
			Status:             entity.POStatusAcknowledged,
			OrderDate:          issued,
			IssueDate:          timePtr(issued),
			AcknowledgmentDate: timePtr(issued.Add(-2 * time.Hour)),
		},
	}

	if got := AverageResponseTime(orders); !almostEqual(got, -2.0) {
		t.Fatalf("expected average_response_time -2.0, got %v", got)
	}
}

// TestAverageResponseTimeFallsBackToOrderDate: orders without an issue_date
// measure response from order_date.
func TestAverageResponseTimeFallsBackToOrderDate(t *testing.T) {
	placed := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	orders := []entity.PurchaseOrder{
		{
			Status:             entity.POStatusAcknowledged,
			OrderDate:          placed,
			AcknowledgmentDate: timePtr(placed.Add(30 * time.Minute)),
		},
	}

	if got := AverageResponseTime(orders); !almostEqual(got, 0.5) {
		t.Fatalf("expected average_response_time 0.5, got %v", got)
	}
}

// TestOnTimeDeliveryBoundary: delivery exactly at the promised instant counts
// as on time, one second later does not.
func TestOnTimeDeliveryBoundary(t *testing.T) {
	promised := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	orders := []entity.PurchaseOrder{
		{
			Status:       entity.POStatusCompleted,
			DeliveryDate: timePtr(promised),
			DeliveredAt:  timePtr(promised),
		},
		{
			Status:       entity.POStatusCompleted,
			DeliveryDate: timePtr(promised),
			DeliveredAt:  timePtr(promised.Add(time.Second)),
		},
	}

	if got := OnTimeDeliveryRate(orders); !almostEqual(got, 50.0) {
		t.Fatalf("expected on_time_delivery_rate 50.0, got %v", got)
	}
}

// TestOnTimeDeliveryMissingTimestamps: completed orders with no recorded
// delivery timestamps count toward the denominator only.
func TestOnTimeDeliveryMissingTimestamps(t *testing.T) {
	promised := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	orders := []entity.PurchaseOrder{
		{Status: entity.POStatusCompleted},
		{
			Status:       entity.POStatusCompleted,
			DeliveryDate: timePtr(promised),
			DeliveredAt:  timePtr(promised.Add(-time.Hour)),
		},
	}

	if got := OnTimeDeliveryRate(orders); !almostEqual(got, 50.0) {
		t.Fatalf("expected on_time_delivery_rate 50.0, got %v", got)
	}
}

// TestQualityAvgUnratedCountsInDenominator: an unrated completed order
// contributes 0 to the sum but still dilutes the average.
func TestQualityAvgUnratedCountsInDenominator(t *testing.T) {
	orders := []entity.PurchaseOrder{
		{Status: entity.POStatusCompleted, QualityRating: floatPtr(4.0)},
		{Status: entity.POStatusCompleted},
	}

	if got := QualityRatingAvg(orders); !almostEqual(got, 2.0) {
		t.Fatalf("expected quality_rating_avg 2.0, got %v", got)
	}
}

// TestFulfillmentIgnoresCanceledAsCompleted: canceled orders stay in the
// denominator but never count as fulfilled.
func TestFulfillmentIgnoresCanceledAsCompleted(t *testing.T) {
	orders := []entity.PurchaseOrder{
		{Status: entity.POStatusCompleted},
		{Status: entity.POStatusCanceled},
		{Status: entity.POStatusPending},
		{Status: entity.POStatusIssued},
	}

	if got := FulfillmentRate(orders); !almostEqual(got, 25.0) {
		t.Fatalf("expected fulfillment_rate 25.0, got %v", got)
	}
}

// TestComputeIsPureOverSnapshot: calling Compute twice over the same slice
// yields identical values.
func TestComputeIsPureOverSnapshot(t *testing.T) {
	now := time.Now()
	orders := []entity.PurchaseOrder{
		{Status: entity.POStatusCompleted, OrderDate: now, QualityRating: floatPtr(4.5)},
		{Status: entity.POStatusPending, OrderDate: now},
	}

	first := Compute(orders)
	second := Compute(orders)
	if first != second {
		t.Fatalf("expected identical metrics, got %+v vs %+v", first, second)
	}
}
