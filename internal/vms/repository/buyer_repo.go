package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/vms/internal/vms/entity"
	"gorm.io/gorm"
)

// BuyerRepository 采购方仓库
type BuyerRepository struct {
	db *gorm.DB
}

func NewBuyerRepository(db *gorm.DB) *BuyerRepository {
	return &BuyerRepository{db: db}
}

// FindAll 查询采购方列表
func (r *BuyerRepository) FindAll(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.Buyer, int64, error) {
	var items []entity.Buyer
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Buyer{})

	if search := filters["search"]; search != "" {
		query = query.
			Joins("JOIN vms_users ON vms_users.id = vms_buyers.user_id").
			Where("vms_users.name ILIKE ? OR vms_buyers.code ILIKE ?",
				"%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Preload("User").
		Order("vms_buyers.created_at DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindByID 根据ID查找采购方
func (r *BuyerRepository) FindByID(ctx context.Context, id string) (*entity.Buyer, error) {
	var buyer entity.Buyer
	err := r.db.WithContext(ctx).
		Preload("User").
		Where("id = ?", id).
		First(&buyer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &buyer, nil
}

// FindByUserID 根据用户ID查找采购方档案
func (r *BuyerRepository) FindByUserID(ctx context.Context, userID string) (*entity.Buyer, error) {
	var buyer entity.Buyer
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&buyer).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &buyer, nil
}

// Create 创建采购方
func (r *BuyerRepository) Create(ctx context.Context, buyer *entity.Buyer) error {
	return r.db.WithContext(ctx).Create(buyer).Error
}

// Update 更新采购方
func (r *BuyerRepository) Update(ctx context.Context, buyer *entity.Buyer) error {
	return r.db.WithContext(ctx).Save(buyer).Error
}

// IncrementOrders 下单后累加订单数并刷新最近下单时间
func (r *BuyerRepository) IncrementOrders(ctx context.Context, tx *gorm.DB, id string, orderedAt time.Time) error {
	return tx.WithContext(ctx).
		Model(&entity.Buyer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_orders":    gorm.Expr("total_orders + 1"),
			"last_order_date": orderedAt,
		}).Error
}

// GenerateCode 生成采购方编码 BYR-{4位}
func (r *BuyerRepository) GenerateCode(ctx context.Context) (string, error) {
	var maxCode string
	err := r.db.WithContext(ctx).
		Model(&entity.Buyer{}).
		Select("COALESCE(MAX(code), 'BYR-0000')").
		Scan(&maxCode).Error
	if err != nil {
		return "", err
	}

	var seq int
	fmt.Sscanf(maxCode, "BYR-%04d", &seq)
	seq++
	return fmt.Sprintf("BYR-%04d", seq), nil
}
