package handler

import (
	"errors"
	"strconv"

	"github.com/bitfantasy/vms/internal/vms/repository"
	"github.com/bitfantasy/vms/internal/vms/service"
	"github.com/gin-gonic/gin"
)

// Handlers 处理器集合
type Handlers struct {
	Auth        *AuthHandler
	Vendor      *VendorHandler
	Buyer       *BuyerHandler
	Item        *ItemHandler
	PO          *POHandler
	Performance *PerformanceHandler
}

// NewHandlers 创建处理器集合
func NewHandlers(svcs *service.Services) *Handlers {
	return &Handlers{
		Auth:        NewAuthHandler(svcs.Auth),
		Vendor:      NewVendorHandler(svcs.Vendor),
		Buyer:       NewBuyerHandler(svcs.Buyer),
		Item:        NewItemHandler(svcs.Item),
		PO:          NewPOHandler(svcs.Order),
		Performance: NewPerformanceHandler(svcs.Performance),
	}
}

// === 响应辅助函数 ===

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type ListResponse struct {
	Items      interface{} `json:"items"`
	Pagination *Pagination `json:"pagination"`
}

type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

func Conflict(c *gin.Context, message string) {
	Error(c, 40900, message)
}

func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// RespondError 按错误类型映射响应码
func RespondError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		NotFound(c, "资源不存在")
	case errors.Is(err, service.ErrInvalidTransition):
		Conflict(c, "订单状态不允许该操作")
	case errors.Is(err, service.ErrOrderNotEditable):
		Conflict(c, "订单已确认，不可修改")
	case errors.Is(err, service.ErrEmailTaken):
		Conflict(c, "邮箱已被注册")
	case errors.Is(err, service.ErrInvalidCredentials):
		Unauthorized(c, "邮箱或密码错误")
	case errors.Is(err, service.ErrInvalidRefresh):
		Unauthorized(c, "登录已失效，请重新登录")
	case errors.Is(err, service.ErrNotItemOwner), errors.Is(err, service.ErrItemVendorMismatch):
		Forbidden(c, "无权操作该资源")
	default:
		InternalError(c, fallback+": "+err.Error())
	}
}

func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

func GetUserType(c *gin.Context) string {
	userType, _ := c.Get("user_type")
	if t, ok := userType.(string); ok {
		return t
	}
	return ""
}

func GetPagination(c *gin.Context) (page, pageSize int) {
	page = 1
	pageSize = 20

	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}

	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}

	return page, pageSize
}

func paginate(items interface{}, page, pageSize int, total int64) ListResponse {
	totalPages := int(total) / pageSize
	if int(total)%pageSize > 0 {
		totalPages++
	}
	return ListResponse{
		Items: items,
		Pagination: &Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      int(total),
			TotalPages: totalPages,
		},
	}
}
