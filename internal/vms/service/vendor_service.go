package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/vms/internal/vms/entity"
	"github.com/bitfantasy/vms/internal/vms/repository"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// VendorService 供应商服务
type VendorService struct {
	vendorRepo *repository.VendorRepository
	userRepo   *repository.UserRepository
	db         *gorm.DB
}

func NewVendorService(vendorRepo *repository.VendorRepository, userRepo *repository.UserRepository, db *gorm.DB) *VendorService {
	return &VendorService{vendorRepo: vendorRepo, userRepo: userRepo, db: db}
}

// List 获取供应商列表
func (s *VendorService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Vendor, int64, error) {
	return s.vendorRepo.FindAll(ctx, page, pageSize, filters)
}

// Get 获取供应商详情
func (s *VendorService) Get(ctx context.Context, id string) (*entity.Vendor, error) {
	return s.vendorRepo.FindByID(ctx, id)
}

// GetByUserID 根据用户获取供应商档案
func (s *VendorService) GetByUserID(ctx context.Context, userID string) (*entity.Vendor, error) {
	return s.vendorRepo.FindByUserID(ctx, userID)
}

// CreateVendorRequest 管理员直建供应商请求
type CreateVendorRequest struct {
	Name           string `json:"name" binding:"required"`
	Email          string `json:"email" binding:"required,email"`
	Password       string `json:"password" binding:"required,min=8"`
	Address        string `json:"address"`
	ContactDetails string `json:"contact_details"`
}

// Create 管理员直建供应商：用户与档案在同一事务内创建
func (s *VendorService) Create(ctx context.Context, req *CreateVendorRequest) (*entity.Vendor, error) {
	exists, err := s.userRepo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	code, err := s.vendorRepo.GenerateCode(ctx)
	if err != nil {
		return nil, fmt.Errorf("生成供应商编码失败: %w", err)
	}

	user := &entity.User{
		ID:             uuid.New().String()[:32],
		Type:           entity.UserTypeVendor,
		Name:           req.Name,
		Email:          req.Email,
		Password:       string(hashed),
		Address:        req.Address,
		ContactDetails: req.ContactDetails,
		IsActive:       true,
	}
	vendor := &entity.Vendor{
		ID:     uuid.New().String()[:32],
		Code:   code,
		UserID: user.ID,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		return tx.Create(vendor).Error
	})
	if err != nil {
		return nil, err
	}

	return s.vendorRepo.FindByID(ctx, vendor.ID)
}

// UpdateVendorRequest 更新供应商请求，档案信息落在用户表
type UpdateVendorRequest struct {
	Name           *string `json:"name"`
	Address        *string `json:"address"`
	ContactDetails *string `json:"contact_details"`
}

// Update 更新供应商档案信息。绩效指标不接受外部写入。
func (s *VendorService) Update(ctx context.Context, id string, req *UpdateVendorRequest) (*entity.Vendor, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(ctx, vendor.UserID)
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

	return s.vendorRepo.FindByID(ctx, id)
}

// Delete 删除供应商（软删除用户，档案保留历史）
func (s *VendorService) Delete(ctx context.Context, id string) error {
	vendor, err := s.vendorRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	user, err := s.userRepo.FindByID(ctx, vendor.UserID)
	if err != nil {
		return err
	}
	user.IsActive = false
	return s.userRepo.Update(ctx, user)
}
