package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bitfantasy/vms/internal/vms/entity"
	"github.com/bitfantasy/vms/internal/vms/repository"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrInvalidTransition  = errors.New("invalid status transition")
	ErrOrderNotEditable   = errors.New("order can no longer be edited")
	ErrItemVendorMismatch = errors.New("item does not belong to vendor")
)

// OrderService 采购订单服务，状态流转与绩效重算在同一事务内完成
type OrderService struct {
	poRepo      *repository.PORepository
	vendorRepo  *repository.VendorRepository
	buyerRepo   *repository.BuyerRepository
	itemRepo    *repository.ItemRepository
	activityLog *repository.ActivityLogRepository
	perfSvc     *PerformanceService
	db          *gorm.DB
	now         func() time.Time
}

func NewOrderService(
	poRepo *repository.PORepository,
	vendorRepo *repository.VendorRepository,
	buyerRepo *repository.BuyerRepository,
	itemRepo *repository.ItemRepository,
	activityLog *repository.ActivityLogRepository,
	perfSvc *PerformanceService,
	db *gorm.DB,
) *OrderService {
	return &OrderService{
		poRepo:      poRepo,
		vendorRepo:  vendorRepo,
		buyerRepo:   buyerRepo,
		itemRepo:    itemRepo,
		activityLog: activityLog,
		perfSvc:     perfSvc,
		db:          db,
		now:         time.Now,
	}
}

// List 获取订单列表
func (s *OrderService) List(ctx context.Context, page, pageSize int, filters map[string]string) ([]entity.PurchaseOrder, int64, error) {
	return s.poRepo.FindAll(ctx, page, pageSize, filters)
}

// Get 获取订单详情
func (s *OrderService) Get(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return s.poRepo.FindByID(ctx, id)
}

// CreateOrderRequest 创建订单请求
type CreateOrderRequest struct {
	VendorCode   string     `json:"vendor_code" binding:"required"`
	ItemID       string     `json:"item_id" binding:"required"`
	Quantity     int        `json:"quantity" binding:"required,gt=0"`
	DeliveryDate *time.Time `json:"delivery_date"`
}

// Create 采购方下单。
// 下单本身不触发绩效重算，首次重算发生在第一次状态流转时。
func (s *OrderService) Create(ctx context.Context, userID string, req *CreateOrderRequest) (*entity.PurchaseOrder, error) {
	buyer, err := s.buyerRepo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("采购方档案不存在: %w", err)
	}

	vendor, err := s.vendorRepo.FindByCode(ctx, req.VendorCode)
	if err != nil {
		return nil, fmt.Errorf("供应商编码无法解析: %w", err)
	}

	item, err := s.itemRepo.FindByID(ctx, req.ItemID)
	if err != nil {
		return nil, fmt.Errorf("商品不存在: %w", err)
	}
	if item.VendorID != vendor.ID {
		return nil, ErrItemVendorMismatch
	}

	number, err := s.poRepo.GenerateNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("生成订单号失败: %w", err)
	}

	now := s.now()
	po := &entity.PurchaseOrder{
		ID:           uuid.New().String()[:32],
		PONumber:     number,
		VendorID:     vendor.ID,
		BuyerID:      buyer.ID,
		ItemID:       item.ID,
		Quantity:     req.Quantity,
		Status:       entity.POStatusPending,
		OrderDate:    now,
		IssueDate:    &now,
		DeliveryDate: req.DeliveryDate,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.itemRepo.AdjustQuantity(ctx, tx, item.ID, -int64(req.Quantity)); err != nil {
			return fmt.Errorf("扣减库存失败: %w", err)
		}
		if err := tx.Create(po).Error; err != nil {
			return err
		}
		return s.buyerRepo.IncrementOrders(ctx, tx, buyer.ID, now)
	})
	if err != nil {
		return nil, err
	}

	s.activityLog.LogActivity(ctx, "purchase_order", po.ID, po.PONumber,
		"create", "", entity.POStatusPending, "", userID, "")

	return s.poRepo.FindByID(ctx, po.ID)
}

// UpdateOrderRequest 更新订单请求，仅 pending 状态可改
type UpdateOrderRequest struct {
	Quantity     *int       `json:"quantity"`
	DeliveryDate *time.Time `json:"delivery_date"`
}

// Update 修改订单，供应商确认后不再允许
func (s *OrderService) Update(ctx context.Context, id string, req *UpdateOrderRequest) (*entity.PurchaseOrder, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, err := s.poRepo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if po.Status != entity.POStatusPending {
			return ErrOrderNotEditable
		}

		if req.Quantity != nil && *req.Quantity != po.Quantity {
			if *req.Quantity <= 0 {
				return errors.New("数量必须大于0")
			}
			delta := int64(po.Quantity - *req.Quantity)
			if err := s.itemRepo.AdjustQuantity(ctx, tx, po.ItemID, delta); err != nil {
				return fmt.Errorf("调整库存失败: %w", err)
			}
			po.Quantity = *req.Quantity
		}
		if req.DeliveryDate != nil {
			po.DeliveryDate = req.DeliveryDate
		}

		return s.poRepo.UpdateTx(ctx, tx, po)
	})
	if err != nil {
		return nil, err
	}
	return s.poRepo.FindByID(ctx, id)
}

// Acknowledge 供应商确认订单
func (s *OrderService) Acknowledge(ctx context.Context, id, operatorID string) (*entity.PurchaseOrder, error) {
	return s.transition(ctx, id, entity.POStatusAcknowledged, operatorID, "acknowledge",
		func(po *entity.PurchaseOrder, now time.Time) error {
			po.AcknowledgmentDate = &now
			return nil
		})
}

// Issue 订单正式下发
func (s *OrderService) Issue(ctx context.Context, id, operatorID string) (*entity.PurchaseOrder, error) {
	return s.transition(ctx, id, entity.POStatusIssued, operatorID, "issue",
		func(po *entity.PurchaseOrder, now time.Time) error {
			// issue_date 已在下单时落值，这里只补缺失的历史数据
			if po.IssueDate == nil {
				po.IssueDate = &now
			}
			return nil
		})
}

// CompleteOrderRequest 完成订单请求
type CompleteOrderRequest struct {
	QualityRating *float64   `json:"quality_rating"`
	DeliveredAt   *time.Time `json:"delivered_at"`
}

// Complete 订单完成，记录实际送达时间与质量评分
func (s *OrderService) Complete(ctx context.Context, id, operatorID string, req *CompleteOrderRequest) (*entity.PurchaseOrder, error) {
	return s.transition(ctx, id, entity.POStatusCompleted, operatorID, "complete",
		func(po *entity.PurchaseOrder, now time.Time) error {
			deliveredAt := now
			if req != nil && req.DeliveredAt != nil {
				deliveredAt = *req.DeliveredAt
			}
			po.DeliveredAt = &deliveredAt
			if req != nil && req.QualityRating != nil {
				po.QualityRating = req.QualityRating
			}
			return nil
		})
}

// Cancel 取消订单并回补库存，已完成的订单不可取消
func (s *OrderService) Cancel(ctx context.Context, id, operatorID string) (*entity.PurchaseOrder, error) {
	return s.transition(ctx, id, entity.POStatusCanceled, operatorID, "cancel",
		func(po *entity.PurchaseOrder, now time.Time) error {
			return nil
		})
}

// transition 执行一次状态流转。整个序列在单个事务内：
// 锁订单行 → 锁供应商行 → 校验转移表 → 落订单 → 重算绩效并记录快照。
// 任何一步失败整体回滚，订单状态与绩效数据保持一致。
func (s *OrderService) transition(ctx context.Context, id, to, operatorID, action string,
	apply func(po *entity.PurchaseOrder, now time.Time) error) (*entity.PurchaseOrder, error) {

	var fromStatus, poNumber string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		po, err := s.poRepo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if _, err := s.vendorRepo.LockByID(ctx, tx, po.VendorID); err != nil {
			return err
		}

		if !entity.CanTransition(po.Status, to) {
			return ErrInvalidTransition
		}

		fromStatus = po.Status
		poNumber = po.PONumber
		now := s.now()
		po.Status = to
		if apply != nil {
			if err := apply(po, now); err != nil {
				return err
			}
		}

		if to == entity.POStatusCanceled {
			if err := s.itemRepo.AdjustQuantity(ctx, tx, po.ItemID, int64(po.Quantity)); err != nil {
				return fmt.Errorf("回补库存失败: %w", err)
			}
		}

		if err := s.poRepo.UpdateTx(ctx, tx, po); err != nil {
			return err
		}

		if _, err := s.perfSvc.RecomputeTx(ctx, tx, po.VendorID); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.activityLog.LogActivity(ctx, "purchase_order", id, poNumber,
		action, fromStatus, to, "", operatorID, "")

	return s.poRepo.FindByID(ctx, id)
}

// GetActivity 获取订单操作日志
func (s *OrderService) GetActivity(ctx context.Context, id string, page, pageSize int) ([]entity.ActivityLog, int64, error) {
	if _, err := s.poRepo.FindByID(ctx, id); err != nil {
		return nil, 0, err
	}
	return s.activityLog.FindByEntity(ctx, "purchase_order", id, page, pageSize)
}
