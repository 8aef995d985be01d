package entity

import "time"

// Buyer 采购方档案
type Buyer struct {
	ID     string `json:"id" gorm:"primaryKey;size:32"`
	Code   string `json:"code" gorm:"size:32;uniqueIndex;not null"`
	UserID string `json:"user_id" gorm:"size:32;uniqueIndex;not null"`

	PreferredPaymentMethod string     `json:"preferred_payment_method" gorm:"size:50"`
	TotalOrders            int        `json:"total_orders" gorm:"default:0"`
	LastOrderDate          *time.Time `json:"last_order_date"`
	Notes                  string     `json:"notes" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}

func (Buyer) TableName() string {
	return "vms_buyers"
}

// 付款方式
const (
	PaymentMethodCreditCard     = "credit_card"
	PaymentMethodPaypal         = "paypal"
	PaymentMethodBankTransfer   = "bank_transfer"
	PaymentMethodCashOnDelivery = "cash_on_delivery"
)
