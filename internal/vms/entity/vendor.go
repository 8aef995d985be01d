package entity

import "time"

// Vendor 供应商档案，四项绩效指标为当前值，历史值见 PerformanceRecord
type Vendor struct {
	ID     string `json:"id" gorm:"primaryKey;size:32"`
	Code   string `json:"code" gorm:"size:32;uniqueIndex;not null"`
	UserID string `json:"user_id" gorm:"size:32;uniqueIndex;not null"`

	// 绩效指标（仅由绩效重算写入）
	OnTimeDeliveryRate  float64 `json:"on_time_delivery_rate" gorm:"default:0"`
	QualityRatingAvg    float64 `json:"quality_rating_avg" gorm:"default:0"`
	AverageResponseTime float64 `json:"average_response_time" gorm:"default:0"` // 小时
	FulfillmentRate     float64 `json:"fulfillment_rate" gorm:"default:0"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	User  *User  `json:"user,omitempty" gorm:"foreignKey:UserID"`
	Items []Item `json:"items,omitempty" gorm:"foreignKey:VendorID"`
}

func (Vendor) TableName() string {
	return "vms_vendors"
}
