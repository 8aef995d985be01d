package handler

import (
	"errors"

	"github.com/bitfantasy/vms/internal/vms/repository"
	"github.com/bitfantasy/vms/internal/vms/service"
	"github.com/gin-gonic/gin"
)

// PerformanceHandler 绩效处理器
type PerformanceHandler struct {
	svc *service.PerformanceService
}

func NewPerformanceHandler(svc *service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{svc: svc}
}

// Latest 供应商最新绩效
// GET /api/v1/vendors/:id/performance
func (h *PerformanceHandler) Latest(c *gin.Context) {
	record, err := h.svc.GetLatest(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// 从未重算过的供应商没有历史快照
			NotFound(c, "暂无绩效记录")
			return
		}
		RespondError(c, err, "获取绩效失败")
		return
	}
	Success(c, record)
}

// History 供应商绩效历史
// GET /api/v1/vendors/:id/performance/history
func (h *PerformanceHandler) History(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.GetHistory(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		RespondError(c, err, "获取绩效历史失败")
		return
	}
	Success(c, paginate(items, page, pageSize, total))
}

// Recompute 手动触发绩效重算
// POST /api/v1/vendors/:id/performance/recompute
func (h *PerformanceHandler) Recompute(c *gin.Context) {
	record, err := h.svc.RecomputeAndRecord(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err, "绩效重算失败")
		return
	}
	Success(c, record)
}

// Export 导出绩效历史
// GET /api/v1/vendors/:id/performance/export
func (h *PerformanceHandler) Export(c *gin.Context) {
	f, filename, err := h.svc.ExportHistory(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err, "导出绩效历史失败")
		return
	}
	defer f.Close()

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}
