package handler

import (
	"github.com/bitfantasy/vms/internal/vms/service"
	"github.com/gin-gonic/gin"
)

// POHandler 采购订单处理器
type POHandler struct {
	svc *service.OrderService
}

func NewPOHandler(svc *service.OrderService) *POHandler {
	return &POHandler{svc: svc}
}

// List 采购订单列表
// GET /api/v1/purchase-orders?vendor_id=xxx&buyer_id=xxx&status=xxx&search=xxx
func (h *POHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"vendor_id": c.Query("vendor_id"),
		"buyer_id":  c.Query("buyer_id"),
		"status":    c.Query("status"),
		"search":    c.Query("search"),
	}

	items, total, err := h.svc.List(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "获取采购订单列表失败: "+err.Error())
		return
	}

	Success(c, paginate(items, page, pageSize, total))
}

// Get 采购订单详情
// GET /api/v1/purchase-orders/:id
func (h *POHandler) Get(c *gin.Context) {
	po, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err, "获取采购订单失败")
		return
	}
	Success(c, po)
}

// Create 创建采购订单
// POST /api/v1/purchase-orders
func (h *POHandler) Create(c *gin.Context) {
	var req service.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	po, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err, "创建采购订单失败")
		return
	}

	Created(c, po)
}

// Update 更新采购订单
// PUT /api/v1/purchase-orders/:id
func (h *POHandler) Update(c *gin.Context) {
	var req service.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	po, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		RespondError(c, err, "更新采购订单失败")
		return
	}
	Success(c, po)
}

// Acknowledge 供应商确认订单
// POST /api/v1/purchase-orders/:id/acknowledge
func (h *POHandler) Acknowledge(c *gin.Context) {
	po, err := h.svc.Acknowledge(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		RespondError(c, err, "确认订单失败")
		return
	}
	Success(c, po)
}

// Issue 订单下发
// POST /api/v1/purchase-orders/:id/issue
func (h *POHandler) Issue(c *gin.Context) {
	po, err := h.svc.Issue(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		RespondError(c, err, "下发订单失败")
		return
	}
	Success(c, po)
}

// Complete 完成订单
// POST /api/v1/purchase-orders/:id/complete
func (h *POHandler) Complete(c *gin.Context) {
	var req service.CompleteOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil && err.Error() != "EOF" {
		BadRequest(c, "参数错误: "+err.Error())
		return
	}

	po, err := h.svc.Complete(c.Request.Context(), c.Param("id"), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err, "完成订单失败")
		return
	}
	Success(c, po)
}

// Cancel 取消订单
// POST /api/v1/purchase-orders/:id/cancel
func (h *POHandler) Cancel(c *gin.Context) {
	po, err := h.svc.Cancel(c.Request.Context(), c.Param("id"), GetUserID(c))
	if err != nil {
		RespondError(c, err, "取消订单失败")
		return
	}
	Success(c, po)
}

// Activity 订单操作日志
// GET /api/v1/purchase-orders/:id/activity
func (h *POHandler) Activity(c *gin.Context) {
	page, pageSize := GetPagination(c)
	items, total, err := h.svc.GetActivity(c.Request.Context(), c.Param("id"), page, pageSize)
	if err != nil {
		RespondError(c, err, "获取操作日志失败")
		return
	}
	Success(c, paginate(items, page, pageSize, total))
}
