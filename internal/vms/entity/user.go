package entity

import "time"

// User 平台用户（采购方/供应商/管理员共用一张表）
type User struct {
	ID             string    `json:"id" gorm:"primaryKey;size:32"`
	Type           string    `json:"type" gorm:"size:20;not null;index"` // buyer/vendor/admin
	Name           string    `json:"name" gorm:"size:250;index"`
	Email          string    `json:"email" gorm:"size:100;uniqueIndex;not null"`
	Password       string    `json:"-" gorm:"size:100;not null"`
	Address        string    `json:"address" gorm:"size:250"`
	ContactDetails string    `json:"contact_details" gorm:"size:250"`
	IsActive       bool      `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "vms_users"
}

// 用户类型
const (
	UserTypeBuyer  = "buyer"
	UserTypeVendor = "vendor"
	UserTypeAdmin  = "admin"
)
