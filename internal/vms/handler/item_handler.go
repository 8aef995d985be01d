package handler

import (
	"github.com/bitfantasy/vms/internal/vms/service"
	"github.com/gin-gonic/gin"
)

// ItemHandler 商品处理器
type ItemHandler struct {
	svc *service.ItemService
}

func NewItemHandler(svc *service.ItemService) *ItemHandler {
	return &ItemHandler{svc: svc}
}

// ListByVendor 供应商商品列表
// GET /api/v1/vendors/:id/items?search=xxx
func (h *ItemHandler) ListByVendor(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"search": c.Query("search"),
	}

	items, total, err := h.svc.ListByVendor(c.Request.Context(), c.Param("id"), page, pageSize, filters)
	if err != nil {
		RespondError(c, err, "获取商品列表失败")
		return
	}

	Success(c, paginate(items, page, pageSize, total))
}

// Get 商品详情
// GET /api/v1/items/:id
func (h *ItemHandler) Get(c *gin.Context) {
	item, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err, "获取商品失败")
		return
	}
	Success(c, item)
}

// Create 上架商品
// POST /api/v1/items
func (h *ItemHandler) Create(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	item, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err, "创建商品失败")
		return
	}

	Created(c, item)
}

// CreateForVendor 为指定供应商上架商品
// POST /api/v1/vendors/:id/items
func (h *ItemHandler) CreateForVendor(c *gin.Context) {
	var req service.CreateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	item, err := h.svc.CreateForVendor(c.Request.Context(), GetUserID(c), GetUserType(c), c.Param("id"), &req)
	if err != nil {
		RespondError(c, err, "创建商品失败")
		return
	}

	Created(c, item)
}

// Update 更新商品
// PUT /api/v1/items/:id
func (h *ItemHandler) Update(c *gin.Context) {
	var req service.UpdateItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	item, err := h.svc.Update(c.Request.Context(), GetUserID(c), c.Param("id"), &req)
	if err != nil {
		RespondError(c, err, "更新商品失败")
		return
	}
	Success(c, item)
}

// Delete 下架商品
// DELETE /api/v1/items/:id
func (h *ItemHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), GetUserID(c), c.Param("id")); err != nil {
		RespondError(c, err, "删除商品失败")
		return
	}
	Success(c, nil)
}
