package repository

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrNotFound = errors.New("record not found")
)

// Repositories 仓库集合
type Repositories struct {
	User        *UserRepository
	Vendor      *VendorRepository
	Buyer       *BuyerRepository
	Item        *ItemRepository
	PO          *PORepository
	Performance *PerformanceRepository
	ActivityLog *ActivityLogRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		User:        NewUserRepository(db),
		Vendor:      NewVendorRepository(db),
		Buyer:       NewBuyerRepository(db),
		Item:        NewItemRepository(db),
		PO:          NewPORepository(db),
		Performance: NewPerformanceRepository(db),
		ActivityLog: NewActivityLogRepository(db),
	}
}
