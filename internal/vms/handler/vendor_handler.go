package handler

import (
	"github.com/bitfantasy/vms/internal/vms/service"
	"github.com/gin-gonic/gin"
)

// VendorHandler 供应商处理器
type VendorHandler struct {
	svc *service.VendorService
}

func NewVendorHandler(svc *service.VendorService) *VendorHandler {
	return &VendorHandler{svc: svc}
}

// List 供应商列表
// GET /api/v1/vendors?search=xxx&code=xxx
func (h *VendorHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"search": c.Query("search"),
		"code":   c.Query("code"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取供应商列表失败: "+err.Error())
		return
	}

	Success(c, paginate(items, page, pageSize, total))
}

// Get 供应商详情
// GET /api/v1/vendors/:id
func (h *VendorHandler) Get(c *gin.Context) {
	vendor, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err, "获取供应商失败")
		return
	}
	Success(c, vendor)
}

// Create 管理员直建供应商
// POST /api/v1/vendors
func (h *VendorHandler) Create(c *gin.Context) {
	var req service.CreateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	vendor, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		RespondError(c, err, "创建供应商失败")
		return
	}
	Created(c, vendor)
}

// Update 更新供应商
// PUT /api/v1/vendors/:id
func (h *VendorHandler) Update(c *gin.Context) {
	var req service.UpdateVendorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	vendor, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		RespondError(c, err, "更新供应商失败")
		return
	}
	Success(c, vendor)
}

// Delete 停用供应商
// DELETE /api/v1/vendors/:id
func (h *VendorHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, err, "停用供应商失败")
		return
	}
	Success(c, nil)
}
