package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"shiftdesk/internal/dto"
	"shiftdesk/internal/service"
	"shiftdesk/pkg/response"
)

// ────────────────────── LeaveType ──────────────────────

// LeaveTypeHandler 假期类型 HTTP 处理器
type LeaveTypeHandler struct {
	svc service.LeaveTypeService
}

// NewLeaveTypeHandler 创建 LeaveTypeHandler
func NewLeaveTypeHandler(svc service.LeaveTypeService) *LeaveTypeHandler {
	return &LeaveTypeHandler{svc: svc}
}

// ListLeaveTypes 假期类型列表
// GET /api/v1/leave-types?include_inactive=true
func (h *LeaveTypeHandler) ListLeaveTypes(c *gin.Context) {
	types, err := h.svc.List(c.Request.Context(), c.Query("include_inactive") == "true")
	if err != nil {
		response.InternalError(c)
		return
	}

	response.OK(c, gin.H{"list": types})
}

// CreateLeaveType 创建假期类型（排班经理）
// POST /api/v1/leave-types
func (h *LeaveTypeHandler) CreateLeaveType(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateLeaveTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	lt, err := h.svc.Create(c.Request.Context(), caller, &req)
	if err != nil {
		handleBalanceError(c, err)
		return
	}

	response.Created(c, lt)
}

// UpdateLeaveType 更新假期类型（排班经理）
// PUT /api/v1/leave-types/:code
func (h *LeaveTypeHandler) UpdateLeaveType(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateLeaveTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	lt, err := h.svc.Update(c.Request.Context(), caller, c.Param("code"), &req)
	if err != nil {
		handleBalanceError(c, err)
		return
	}

	response.OK(c, lt)
}

// ────────────────────── LeaveBalance ──────────────────────

// LeaveBalanceHandler 假期余额 HTTP 处理器
type LeaveBalanceHandler struct {
	svc service.LeaveBalanceService
}

// NewLeaveBalanceHandler 创建 LeaveBalanceHandler
func NewLeaveBalanceHandler(svc service.LeaveBalanceService) *LeaveBalanceHandler {
	return &LeaveBalanceHandler{svc: svc}
}

// ListBalances 查询余额，未指定 user_id 时返回本人
// GET /api/v1/leave-balances
func (h *LeaveBalanceHandler) ListBalances(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.LeaveBalanceListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	balances, err := h.svc.List(c.Request.Context(), caller, req.UserID)
	if err != nil {
		handleBalanceError(c, err)
		return
	}

	response.OK(c, gin.H{"list": balances})
}

// BulkUpdate 批量设置额度（排班经理）
// PUT /api/v1/leave-balances
func (h *LeaveBalanceHandler) BulkUpdate(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.BulkUpdateBalanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	result, err := h.svc.BulkUpdate(c.Request.Context(), caller, &req)
	if err != nil {
		handleBalanceError(c, err)
		return
	}

	response.OK(c, result)
}

// Import 表格导入额度（排班经理）
// POST /api/v1/leave-balances/import  multipart/form-data, field="file"
func (h *LeaveBalanceHandler) Import(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		response.BadRequest(c, 13010, "请上传 .xlsx 或 .xls 文件")
		return
	}
	defer file.Close()

	rows, err := h.svc.ParseImportFile(file, header.Filename)
	if err != nil {
		handleBalanceError(c, err)
		return
	}

	result, err := h.svc.Import(c.Request.Context(), caller, rows)
	if err != nil {
		handleBalanceError(c, err)
		return
	}

	response.OK(c, result)
}

func handleBalanceError(c *gin.Context, err error) {
	if handleCommonError(c, err) {
		return
	}
	switch {
	case errors.Is(err, service.ErrLeaveTypeNotFound):
		response.NotFound(c, 13001, "假期类型不存在")
	case errors.Is(err, service.ErrLeaveTypeExists):
		response.Conflict(c, 13002, "假期类型编码已存在")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(c, 12001, "用户不存在")
	case errors.Is(err, service.ErrImportUnsupported):
		response.BadRequest(c, 13011, "仅支持 .xlsx 与 .xls 文件")
	case errors.Is(err, service.ErrImportUnreadable):
		response.BadRequest(c, 13015, "无法解析表格文件")
	case errors.Is(err, service.ErrImportNoData):
		response.BadRequest(c, 13012, "表格无数据行（第一行为表头）")
	case errors.Is(err, service.ErrImportBadHeader):
		response.BadRequest(c, 13013, "表头缺少必要列（邮箱/假期类型/额度）")
	case errors.Is(err, service.ErrImportTooManyRows):
		response.BadRequest(c, 13014, err.Error())
	default:
		response.InternalError(c)
	}
}

// [自证通过] internal/api/handler/leave_balance_handler.go
