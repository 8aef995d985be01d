package service

import (
	"context"
	"time"

	"github.com/bitfantasy/vms/internal/vms/entity"
	"github.com/bitfantasy/vms/internal/vms/repository"
)

// BuyerService 采购方服务
type BuyerService struct {
	buyerRepo *repository.BuyerRepository
	userRepo  *repository.UserRepository
}

func NewBuyerService(buyerRepo *repository.BuyerRepository, userRepo *repository.UserRepository) *BuyerService {
	return &BuyerService{buyerRepo: buyerRepo, userRepo: userRepo}
}

// List 获取采购方列表
func (s *BuyerService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Buyer, int64, error) {
	return s.buyerRepo.FindAll(ctx, page, pageSize, filters)
}

// Get 获取采购方详情
func (s *BuyerService) Get(ctx context.Context, id string) (*entity.Buyer, error) {
	return s.buyerRepo.FindByID(ctx, id)
}

// GetByUserID 根据用户获取采购方档案
func (s *BuyerService) GetByUserID(ctx context.Context, userID string) (*entity.Buyer, error) {
	return s.buyerRepo.FindByUserID(ctx, userID)
}

// UpdateBuyerRequest 更新采购方请求
type UpdateBuyerRequest struct {
	Name                   *string `json:"name"`
	Address                *string `json:"address"`
	ContactDetails         *string `json:"contact_details"`
	PreferredPaymentMethod *string `json:"preferred_payment_method"`
	Notes                  *string `json:"notes"`
}

// Update 更新采购方档案信息
func (s *BuyerService) Update(ctx context.Context, id string, req *UpdateBuyerRequest) (*entity.Buyer, error) {
	buyer, err := s.buyerRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.PreferredPaymentMethod != nil {
		buyer.PreferredPaymentMethod = *req.PreferredPaymentMethod
	}
	if req.Notes != nil {
		buyer.Notes = *req.Notes
	}
	if err := s.buyerRepo.Update(ctx, buyer); err != nil {
		return nil, err
	}

	if req.Name != nil || req.Address != nil || req.ContactDetails != nil {
		user, err := s.userRepo.FindByID(ctx, buyer.UserID)
		if err != nil {
			return nil, err
		}
		if req.Name != nil {
			user.Name = *req.Name
		}
		if req.Address != nil {
			user.Address = *req.Address
		}
		if req.ContactDetails != nil {
			user.ContactDetails = *req.ContactDetails
		}
		user.UpdatedAt = time.Now()
		if err := s.userRepo.Update(ctx, user); err != nil {
			return nil, err
		}
	}

	return s.buyerRepo.FindByID(ctx, id)
}
