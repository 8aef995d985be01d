package service

import (
	"github.com/bitfantasy/vms/internal/config"
	"github.com/bitfantasy/vms/internal/vms/repository"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Services 服务集合
type Services struct {
	Auth        *AuthService
	Vendor      *VendorService
	Buyer       *BuyerService
	Item        *ItemService
	Order       *OrderService
	Performance *PerformanceService
}

// NewServices 创建服务集合
func NewServices(repos *repository.Repositories, db *gorm.DB, rdb *redis.Client, cfg *config.Config) *Services {
	perfSvc := NewPerformanceService(repos.Vendor, repos.PO, repos.Performance, db)

	return &Services{
		Auth:        NewAuthService(repos.User, repos.Vendor, repos.Buyer, rdb, cfg, db),
		Vendor:      NewVendorService(repos.Vendor, repos.User, db),
		Buyer:       NewBuyerService(repos.Buyer, repos.User),
		Item:        NewItemService(repos.Item, repos.Vendor),
		Order:       NewOrderService(repos.PO, repos.Vendor, repos.Buyer, repos.Item, repos.ActivityLog, perfSvc, db),
		Performance: perfSvc,
	}
}
