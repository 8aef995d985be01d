package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/bitfantasy/vms/internal/vms/entity"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VendorRepository 供应商仓库
type VendorRepository struct {
	db *gorm.DB
}

func NewVendorRepository(db *gorm.DB) *VendorRepository {
	return &VendorRepository{db: db}
}

// FindAll 查询供应商列表
func (r *VendorRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Vendor, int64, error) {
	var items []entity.Vendor
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Vendor{})

	if search := filters["search"]; search != "" {
		query = query.
			Joins("JOIN vms_users ON vms_users.id = vms_vendors.user_id").
			Where("vms_users.name ILIKE ? OR vms_vendors.code ILIKE ?",
				"%"+search+"%", "%"+search+"%")
	}
	if code := filters["code"]; code != "" {
		query = query.Where("vms_vendors.code = ?", code)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("User").
		Order("vms_vendors.created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找供应商
func (r *VendorRepository) FindByID(ctx context.Context, id string) (*entity.Vendor, error) {
	var vendor entity.Vendor
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&vendor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vendor, nil
}

// FindByCode 根据编码查找供应商
func (r *VendorRepository) FindByCode(ctx context.Context, code string) (*entity.Vendor, error) {
	var vendor entity.Vendor
	err := r.db.WithContext(ctx).Where("code = ?", code).First(&vendor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vendor, nil
}

// FindByUserID 根据用户ID查找供应商档案
func (r *VendorRepository) FindByUserID(ctx context.Context, userID string) (*entity.Vendor, error) {
	var vendor entity.Vendor
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&vendor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vendor, nil
}

// LockByID 行锁读取供应商，必须在事务内调用。
// 同一供应商的绩效重算靠这把锁串行化。
func (r *VendorRepository) LockByID(ctx context.Context, tx *gorm.DB, id string) (*entity.Vendor, error) {
	var vendor entity.Vendor
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&vendor).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &vendor, nil
}

// Create 创建供应商
func (r *VendorRepository) Create(ctx context.Context, vendor *entity.Vendor) error {
	return r.db.WithContext(ctx).Create(vendor).Error
}

// Update 更新供应商
func (r *VendorRepository) Update(ctx context.Context, vendor *entity.Vendor) error {
	return r.db.WithContext(ctx).Save(vendor).Error
}

// Delete 删除供应商
func (r *VendorRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Vendor{}).Error
}

// UpdateMetrics 一次写入四项绩效指标
func (r *VendorRepository) UpdateMetrics(ctx context.Context, tx *gorm.DB, id string, onTime, quality, response, fulfillment float64) error {
	return tx.WithContext(ctx).
		Model(&entity.Vendor{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"on_time_delivery_rate": onTime,
			"quality_rating_avg":    quality,
			"average_response_time": response,
			"fulfillment_rate":      fulfillment,
		}).Error
}

// GenerateCode 生成供应商编码 VND-{4位}
func (r *VendorRepository) GenerateCode(ctx context.Context) (string, error) {
	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.Vendor{}).
		Select("COALESCE(MAX(code), 'VND-0000')").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	fmt.Sscanf(maxCode, "VND-%04d", &seq)
	seq++
	return fmt.Sprintf("VND-%04d", seq), nil
}
