package entity

import "time"

// PerformanceRecord 供应商绩效历史快照，只增不改。
// 自增主键保证同一时间戳的两次重算也有确定的先后次序。
type PerformanceRecord struct {
	ID         uint64    `json:"id" gorm:"primaryKey;autoIncrement"`
	VendorID   string    `json:"vendor_id" gorm:"size:32;not null;index"`
	RecordedAt time.Time `json:"recorded_at" gorm:"not null;index"`

	OnTimeDeliveryRate  float64 `json:"on_time_delivery_rate" gorm:"default:0"`
	QualityRatingAvg    float64 `json:"quality_rating_avg" gorm:"default:0"`
	AverageResponseTime float64 `json:"average_response_time" gorm:"default:0"`
	FulfillmentRate     float64 `json:"fulfillment_rate" gorm:"default:0"`

	// 关联
	Vendor *Vendor `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
}

func (PerformanceRecord) TableName() string {
	return "vms_vendor_performance_history"
}
