package handler

import (
	"github.com/bitfantasy/vms/internal/vms/service"
	"github.com/gin-gonic/gin"
)

// BuyerHandler 采购方处理器
type BuyerHandler struct {
	svc *service.BuyerService
}

func NewBuyerHandler(svc *service.BuyerService) *BuyerHandler {
	return &BuyerHandler{svc: svc}
}

// List 采购方列表
// GET /api/v1/buyers?search=xxx
func (h *BuyerHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"search": c.Query("search"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取采购方列表失败: "+err.Error())
		return
	}

	Success(c, paginate(items, page, pageSize, total))
}

// Get 采购方详情
// GET /api/v1/buyers/:id
func (h *BuyerHandler) Get(c *gin.Context) {
	buyer, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err, "获取采购方失败")
		return
	}
	Success(c, buyer)
}

// Update 更新采购方
// PUT /api/v1/buyers/:id
func (h *BuyerHandler) Update(c *gin.Context) {
	var req service.UpdateBuyerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	buyer, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		RespondError(c, err, "更新采购方失败")
		return
	}
	Success(c, buyer)
}
