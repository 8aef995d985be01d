package performance

import (
	"github.com/bitfantasy/vms/internal/vms/entity"
)

// Metrics 供应商四项绩效指标
type Metrics struct {
	OnTimeDeliveryRate  float64 `json:"on_time_delivery_rate"`
	QualityRatingAvg    float64 `json:"quality_rating_avg"`
	AverageResponseTime float64 `json:"average_response_time"` // 小时
	FulfillmentRate     float64 `json:"fulfillment_rate"`
}

// Compute 基于订单快照计算四项指标。
// 四项指标相互独立，分母为零时各自退化为 0，永不报错。
// 入参是一次性读出的快照，计算过程中不再访问存储。
func Compute(orders []entity.PurchaseOrder) Metrics {
	return Metrics{
		OnTimeDeliveryRate:  OnTimeDeliveryRate(orders),
		QualityRatingAvg:    QualityRatingAvg(orders),
		AverageResponseTime: AverageResponseTime(orders),
		FulfillmentRate:     FulfillmentRate(orders),
	}
}

// OnTimeDeliveryRate 准时交付率 = 按期送达的已完成订单数 / 已完成订单数 × 100。
// 按期 = 实际送达时间不晚于承诺交期。缺少任一时间的完成单计入分母但不计入分子。
func OnTimeDeliveryRate(orders []entity.PurchaseOrder) float64 {
	var completed, onTime int
	for _, po := range orders {
		if po.Status != entity.POStatusCompleted {
			continue
		}
		completed++
		if po.DeliveredAt != nil && po.DeliveryDate != nil && !po.DeliveredAt.After(*po.DeliveryDate) {
			onTime++
		}
	}
	if completed == 0 {
		return 0
	}
	return float64(onTime) / float64(completed) * 100
}

// QualityRatingAvg 质量评分均值 = 已完成订单评分之和 / 已完成订单数。
// 未评分的完成单按 0 计入分子、正常计入分母。
func QualityRatingAvg(orders []entity.PurchaseOrder) float64 {
	var completed int
	var total float64
	for _, po := range orders {
		if po.Status != entity.POStatusCompleted {
			continue
		}
		completed++
		if po.QualityRating != nil {
			total += *po.QualityRating
		}
	}
	if completed == 0 {
		return 0
	}
	return total / float64(completed)
}

// AverageResponseTime 平均响应时长（小时）= 所有已确认订单
// (acknowledgment_date − issue_date) 的均值。issue_date 缺失时退回 order_date。
// 负值说明数据有问题，由上游校验处理，这里不做截断。
func AverageResponseTime(orders []entity.PurchaseOrder) float64 {
	var acknowledged int
	var totalSeconds float64
	for _, po := range orders {
		if po.AcknowledgmentDate == nil {
			continue
		}
		issued := po.OrderDate
		if po.IssueDate != nil {
			issued = *po.IssueDate
		}
		acknowledged++
		totalSeconds += po.AcknowledgmentDate.Sub(issued).Seconds()
	}
	if acknowledged == 0 {
		return 0
	}
	return totalSeconds / float64(acknowledged) / 3600
}

// FulfillmentRate 履约率 = 已完成订单数 / 全部订单数 × 100
func FulfillmentRate(orders []entity.PurchaseOrder) float64 {
	if len(orders) == 0 {
		return 0
	}
	var completed int
	for _, po := range orders {
		if po.Status == entity.POStatusCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(orders)) * 100
}
