package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/vms/internal/vms/entity"
	"gorm.io/gorm"
)

// ItemRepository 商品仓库
type ItemRepository struct {
	db *gorm.DB
}

func NewItemRepository(db *gorm.DB) *ItemRepository {
	return &ItemRepository{db: db}
}

// FindByVendor 查询供应商的商品列表
func (r *ItemRepository) FindByVendor(ctx context.Context, vendorID string, page, pageSize int, filters map[string]string) ([]entity.Item, int64, error) {
	var items []entity.Item
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Item{}).Where("vendor_id = ?", vendorID)

	if search := filters["search"]; search != "" {
		query = query.Where("name ILIKE ?", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找商品
func (r *ItemRepository) FindByID(ctx context.Context, id string) (*entity.Item, error) {
	var item entity.Item
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create 创建商品
func (r *ItemRepository) Create(ctx context.Context, item *entity.Item) error {
	return r.db.WithContext(ctx).Create(item).Error
}

// Update 更新商品
func (r *ItemRepository) Update(ctx context.Context, item *entity.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete 删除商品
func (r *ItemRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Item{}).Error
}

// AdjustQuantity 调整库存数量，delta 可为负。
// 扣减不允许把库存打成负数，违反时报错回滚。
func (r *ItemRepository) AdjustQuantity(ctx context.Context, tx *gorm.DB, id string, delta int64) error {
	result := tx.WithContext(ctx).
		Model(&entity.Item{}).
		Where("id = ? AND available_quantity + ? >= 0", id, delta).
		Update("available_quantity", gorm.Expr("available_quantity + ?", delta))
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errors.New("insufficient available quantity")
	}
	return nil
}
