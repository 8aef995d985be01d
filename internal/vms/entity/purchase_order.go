package entity

import "time"

// PurchaseOrder 采购订单
type PurchaseOrder struct {
	ID       string `json:"id" gorm:"primaryKey;size:32"`
	PONumber string `json:"po_number" gorm:"size:32;uniqueIndex;not null"`
	VendorID string `json:"vendor_id" gorm:"size:32;not null;index"`
	BuyerID  string `json:"buyer_id" gorm:"size:32;not null;index"`
	ItemID   string `json:"item_id" gorm:"size:32;not null"`
	Quantity int    `json:"quantity" gorm:"not null"`

	Status    string    `json:"status" gorm:"size:20;not null;default:pending;index"`
	OrderDate time.Time `json:"order_date" gorm:"not null"`

	// 交付
	DeliveryDate *time.Time `json:"delivery_date"` // 承诺交期
	DeliveredAt  *time.Time `json:"delivered_at"`  // 实际送达时间，完成时记录

	// 响应
	IssueDate          *time.Time `json:"issue_date"`
	AcknowledgmentDate *time.Time `json:"acknowledgment_date"`

	QualityRating *float64 `json:"quality_rating" gorm:"type:decimal(3,1)"` // 完成时评分

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 关联
	Vendor *Vendor `json:"vendor,omitempty" gorm:"foreignKey:VendorID"`
	Buyer  *Buyer  `json:"buyer,omitempty" gorm:"foreignKey:BuyerID"`
	Item   *Item   `json:"item,omitempty" gorm:"foreignKey:ItemID"`
}

func (PurchaseOrder) TableName() string {
	return "vms_purchase_orders"
}

// 订单状态
const (
	POStatusPending      = "pending"
	POStatusAcknowledged = "acknowledged"
	POStatusIssued       = "issued"
	POStatusCompleted    = "completed"
	POStatusCanceled     = "canceled"
)

// poTransitions 状态机转移表，completed/canceled 为终态
var poTransitions = map[string][]string{
	POStatusPending:      {POStatusAcknowledged, POStatusCanceled},
	POStatusAcknowledged: {POStatusIssued, POStatusCanceled},
	POStatusIssued:       {POStatusCompleted, POStatusCanceled},
	POStatusCompleted:    {},
	POStatusCanceled:     {},
}

// CanTransition 判断订单状态能否从 from 转移到 to
func CanTransition(from, to string) bool {
	for _, next := range poTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// IsTerminalStatus 判断是否终态
func IsTerminalStatus(status string) bool {
	return status == POStatusCompleted || status == POStatusCanceled
}
