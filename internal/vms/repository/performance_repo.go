package repository

import (
	"context"
	"errors"

	"github.com/bitfantasy/vms/internal/vms/entity"
	"gorm.io/gorm"
)

// PerformanceRepository 绩效历史仓库，只插入不修改
type PerformanceRepository struct {
	db *gorm.DB
}

func NewPerformanceRepository(db *gorm.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

// CreateTx 事务内追加一条绩效快照
func (r *PerformanceRepository) CreateTx(ctx context.Context, tx *gorm.DB, record *entity.PerformanceRecord) error {
	return tx.WithContext(ctx).Create(record).Error
}

// FindLatest 查询供应商最新一条绩效快照。
// recorded_at 相同时按自增主键取后写入的一条。
func (r *PerformanceRepository) FindLatest(ctx context.Context, vendorID string) (*entity.PerformanceRecord, error) {
	var record entity.PerformanceRecord
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("recorded_at DESC, id DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByVendor 查询供应商绩效历史，按时间倒序
func (r *PerformanceRepository) FindByVendor(ctx context.Context, vendorID string, page, pageSize int) ([]entity.PerformanceRecord, int64, error) {
	var items []entity.PerformanceRecord
	var total int64

	query := r.db.WithContext(ctx).
		Model(&entity.PerformanceRecord{}).
		Where("vendor_id = ?", vendorID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * pageSize
	err := query.
		Order("recorded_at DESC, id DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&items).Error

	return items, total, err
}

// FindAllByVendor 查询供应商全部绩效历史，导出用，按时间正序
func (r *PerformanceRepository) FindAllByVendor(ctx context.Context, vendorID string) ([]entity.PerformanceRecord, error) {
	var items []entity.PerformanceRecord
	err := r.db.WithContext(ctx).
		Where("vendor_id = ?", vendorID).
		Order("recorded_at ASC, id ASC").
		Find(&items).Error
	return items, err
}
