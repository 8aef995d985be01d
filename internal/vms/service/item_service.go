package service

import (
	"context"
	"errors"

	"github.com/bitfantasy/vms/internal/vms/entity"
	"github.com/bitfantasy/vms/internal/vms/repository"
	"github.com/google/uuid"
)

var ErrNotItemOwner = errors.New("item belongs to another vendor")

// ItemService 商品服务
type ItemService struct {
	itemRepo   *repository.ItemRepository
	vendorRepo *repository.VendorRepository
}

func NewItemService(itemRepo *repository.ItemRepository, vendorRepo *repository.VendorRepository) *ItemService {
	return &ItemService{itemRepo: itemRepo, vendorRepo: vendorRepo}
}

// ListByVendor 获取供应商商品列表
func (s *ItemService) ListByVendor(ctx context.Context, vendorID string, page, pageSize int, filters map[string]string) ([]entity.Item, int64, error) {
	if _, err := s.vendorRepo.FindByID(ctx, vendorID); err != nil {
		return nil, 0, err
	}
	return s.itemRepo.FindByVendor(ctx, vendorID, page, pageSize, filters)
}

// Get 获取商品详情
func (s *ItemService) Get(ctx context.Context, id string) (*entity.Item, error) {
	return s.itemRepo.FindByID(ctx, id)
}

// CreateItemRequest 创建商品请求
type CreateItemRequest struct {
	Name              string `json:"name" binding:"required"`
	AvailableQuantity int64  `json:"available_quantity" binding:"gte=0"`
}

// Create 供应商上架商品
func (s *ItemService) Create(ctx context.Context, userID string, req *CreateItemRequest) (*entity.Item, error) {
	vendor, err := s.vendorRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.createForVendor(ctx, vendor, req)
}

// CreateForVendor 为指定供应商上架商品。非管理员只能操作自己的档案。
func (s *ItemService) CreateForVendor(ctx context.Context, userID, userType, vendorID string, req *CreateItemRequest) (*entity.Item, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, vendorID)
	if err != nil {
		return nil, err
	}
	if userType != entity.UserTypeAdmin && vendor.UserID != userID {
		return nil, ErrNotItemOwner
	}
	return s.createForVendor(ctx, vendor, req)
}

func (s *ItemService) createForVendor(ctx context.Context, vendor *entity.Vendor, req *CreateItemRequest) (*entity.Item, error) {
	item := &entity.Item{
		ID:                uuid.New().String()[:32],
		Name:              req.Name,
		VendorID:          vendor.ID,
		AvailableQuantity: req.AvailableQuantity,
	}
	if err := s.itemRepo.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// UpdateItemRequest 更新商品请求
type UpdateItemRequest struct {
	Name              *string `json:"name"`
	AvailableQuantity *int64  `json:"available_quantity"`
}

// Update 更新商品，仅限本供应商的商品
func (s *ItemService) Update(ctx context.Context, userID, id string, req *UpdateItemRequest) (*entity.Item, error) {
	vendor, err := s.vendorRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.VendorID != vendor.ID {
		return nil, ErrNotItemOwner
	}

	if req.Name != nil {
		item.Name = *req.Name
	}
	if req.AvailableQuantity != nil {
		if *req.AvailableQuantity < 0 {
			return nil, errors.New("库存不能为负数")
		}
		item.AvailableQuantity = *req.AvailableQuantity
	}
	if err := s.itemRepo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete 下架商品，仅限本供应商的商品
func (s *ItemService) Delete(ctx context.Context, userID, id string) error {
	vendor, err := s.vendorRepo.FindByUserID(ctx, userID)
	if err != nil {
		return err
	}

	item, err := s.itemRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if item.VendorID != vendor.ID {
		return ErrNotItemOwner
	}

	return s.itemRepo.Delete(ctx, id)
}
