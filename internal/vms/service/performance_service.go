package service

import (
	"context"
	"fmt"
	"time"

	"github.com/bitfantasy/vms/internal/vms/entity"
	"github.com/bitfantasy/vms/internal/vms/performance"
	"github.com/bitfantasy/vms/internal/vms/repository"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"
)

// PerformanceService 绩效服务：重算四项指标并落当前值+历史快照
type PerformanceService struct {
	vendorRepo *repository.VendorRepository
	poRepo     *repository.PORepository
	perfRepo   *repository.PerformanceRepository
	db         *gorm.DB
	now        func() time.Time
}

func NewPerformanceService(vendorRepo *repository.VendorRepository, poRepo *repository.PORepository, perfRepo *repository.PerformanceRepository, db *gorm.DB) *PerformanceService {
	return &PerformanceService{
		vendorRepo: vendorRepo,
		poRepo:     poRepo,
		perfRepo:   perfRepo,
		db:         db,
		now:        time.Now,
	}
}

// RecomputeAndRecord 重算指定供应商绩效并记录快照。
// 自带事务与供应商行锁；订单集不变时重复调用得到相同指标（幂等）。
func (s *PerformanceService) RecomputeAndRecord(ctx context.Context, vendorID string) (*entity.PerformanceRecord, error) {
	var record *entity.PerformanceRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var txErr error
		record, txErr = s.RecomputeTx(ctx, tx, vendorID)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}

// RecomputeTx 在调用方事务内执行重算：
// 锁供应商行 → 读订单快照 → 计算 → 写当前值 → 追加历史。
// 行锁保证同一供应商的重算串行，不同供应商互不阻塞。
func (s *PerformanceService) RecomputeTx(ctx context.Context, tx *gorm.DB, vendorID string) (*entity.PerformanceRecord, error) {
	vendor, err := s.vendorRepo.LockByID(ctx, tx, vendorID)
	if err != nil {
		return nil, err
	}

	orders, err := s.poRepo.FindByVendorTx(ctx, tx, vendor.ID)
	if err != nil {
		return nil, fmt.Errorf("读取订单快照失败: %w", err)
	}

	m := performance.Compute(orders)

	if err := s.vendorRepo.UpdateMetrics(ctx, tx, vendor.ID,
		m.OnTimeDeliveryRate, m.QualityRatingAvg, m.AverageResponseTime, m.FulfillmentRate); err != nil {
		return nil, fmt.Errorf("更新供应商当前绩效失败: %w", err)
	}

	record := &entity.PerformanceRecord{
		VendorID:            vendor.ID,
		RecordedAt:          s.now(),
		OnTimeDeliveryRate:  m.OnTimeDeliveryRate,
		QualityRatingAvg:    m.QualityRatingAvg,
		AverageResponseTime: m.AverageResponseTime,
		FulfillmentRate:     m.FulfillmentRate,
	}
	if err := s.perfRepo.CreateTx(ctx, tx, record); err != nil {
		return nil, fmt.Errorf("追加绩效历史失败: %w", err)
	}

	return record, nil
}

// GetLatest 获取供应商最新绩效快照
func (s *PerformanceService) GetLatest(ctx context.Context, vendorID string) (*entity.PerformanceRecord, error) {
	if _, err := s.vendorRepo.FindByID(ctx, vendorID); err != nil {
		return nil, err
	}
	return s.perfRepo.FindLatest(ctx, vendorID)
}

// GetHistory 获取供应商绩效历史
func (s *PerformanceService) GetHistory(ctx context.Context, vendorID string, page, pageSize int) ([]entity.PerformanceRecord, int64, error) {
	if _, err := s.vendorRepo.FindByID(ctx, vendorID); err != nil {
		return nil, 0, err
	}
	return s.perfRepo.FindByVendor(ctx, vendorID, page, pageSize)
}

var perfExportHeaders = []string{
	"记录时间", "准时交付率(%)", "质量评分均值", "平均响应时长(小时)", "履约率(%)",
}

// ExportHistory 导出供应商绩效历史为xlsx
func (s *PerformanceService) ExportHistory(ctx context.Context, vendorID string) (*excelize.File, string, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, vendorID)
	if err != nil {
		return nil, "", err
	}

	records, err := s.perfRepo.FindAllByVendor(ctx, vendorID)
	if err != nil {
		return nil, "", fmt.Errorf("读取绩效历史失败: %w", err)
	}

	f := excelize.NewFile()
	sheet := "Performance"
	f.SetSheetName("Sheet1", sheet)

	boldStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})

	for i, h := range perfExportHeaders {
		col, _ := excelize.ColumnNumberToName(i + 1)
		cell := col + "1"
		f.SetCellValue(sheet, cell, h)
		f.SetCellStyle(sheet, cell, cell, boldStyle)
	}

	for rowIdx, rec := range records {
		row := rowIdx + 2
		f.SetCellValue(sheet, fmt.Sprintf("A%d", row), rec.RecordedAt.Format("2006-01-02 15:04:05"))
		f.SetCellValue(sheet, fmt.Sprintf("B%d", row), rec.OnTimeDeliveryRate)
		f.SetCellValue(sheet, fmt.Sprintf("C%d", row), rec.QualityRatingAvg)
		f.SetCellValue(sheet, fmt.Sprintf("D%d", row), rec.AverageResponseTime)
		f.SetCellValue(sheet, fmt.Sprintf("E%d", row), rec.FulfillmentRate)
	}

	colWidths := []float64{20, 16, 14, 20, 12}
	for i, w := range colWidths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	filename := fmt.Sprintf("Performance_%s.xlsx", vendor.Code)
	return f, filename, nil
}
