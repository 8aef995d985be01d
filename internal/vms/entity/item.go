package entity

import "time"

// Item 供应商在售商品
type Item struct {
	ID                string    `json:"id" gorm:"primaryKey;size:32"`
	Name              string    `json:"name" gorm:"size:255;not null;index"`
	VendorID          string    `json:"vendor_id" gorm:"size:32;not null;index"`
	AvailableQuantity int64     `json:"available_quantity" gorm:"not null;default:0"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`

	// 关联
	Vendor *Vendor `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
}

func (Item) TableName() string {
	return "vms_items"
}
