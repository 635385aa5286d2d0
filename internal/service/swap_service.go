package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftdesk/internal/dto"
	"shiftdesk/internal/model"
	"shiftdesk/internal/repository"
	"shiftdesk/internal/workflow"
	pkgerrors "shiftdesk/pkg/errors"
)

// ── 换班模块业务错误 ──

var (
	ErrSwapNotFound     = errors.New("换班申请不存在")
	ErrSwapSelf         = errors.New("不能与自己换班")
	ErrSwapShiftMissing = errors.New("换班双方在所选日期必须都有班次")
	ErrSwapTargetAbsent = errors.New("换班目标成员不存在")
)

// SwapService 换班申请业务接口
// 变更类操作在申请被删除时返回 nil 响应
type SwapService interface {
	Create(ctx context.Context, caller Caller, req *dto.CreateSwapRequest) (*dto.SwapRequestResponse, error)
	GetByID(ctx context.Context, caller Caller, id string) (*dto.SwapRequestResponse, error)
	List(ctx context.Context, caller Caller, req *dto.SwapRequestListRequest) ([]dto.SwapRequestResponse, int64, error)
	Accept(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*dto.SwapRequestResponse, error)
	Decline(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*dto.SwapRequestResponse, error)
	Cancel(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*dto.SwapRequestResponse, error)
	Approve(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*dto.SwapRequestResponse, error)
	Reject(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*dto.SwapRequestResponse, error)
	// Revoke 待处理时删除；已通过的换班回滚班次并退回 pending_tl
	Revoke(ctx context.Context, caller Caller, id string, version int) (*dto.SwapRequestResponse, error)
}

type swapService struct {
	repo   *repository.Repository
	events *eventSink
	logger *zap.Logger
}

// NewSwapService 创建 SwapService 实例
func NewSwapService(repo *repository.Repository, events *eventSink, logger *zap.Logger) SwapService {
	return &swapService{repo: repo, events: events, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *swapService) Create(ctx context.Context, caller Caller, req *dto.CreateSwapRequest) (*dto.SwapRequestResponse, error) {
	if req.TargetUserID == caller.UserID {
		return nil, ErrSwapSelf
	}

	requesterDate, err := workflow.ParseDate(req.RequesterDate)
	if err != nil {
		return nil, ErrInvalidDate
	}
	targetDate, err := workflow.ParseDate(req.TargetDate)
	if err != nil {
		return nil, ErrInvalidDate
	}

	requester, err := s.repo.User.GetByID(ctx, caller.UserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	target, err := s.repo.User.GetByID(ctx, req.TargetUserID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSwapTargetAbsent
		}
		return nil, err
	}

	// 双方在各自日期上都必须有班次
	requesterShift, err := s.shiftOn(ctx, caller.UserID, requesterDate)
	if err != nil {
		return nil, err
	}
	targetShift, err := s.shiftOn(ctx, target.UserID, targetDate)
	if err != nil {
		return nil, err
	}

	sr := &model.SwapRequest{
		RequesterID:      caller.UserID,
		TargetUserID:     target.UserID,
		RequesterShiftID: &requesterShift.ShiftID,
		TargetShiftID:    &targetShift.ShiftID,
		RequesterDate:    requesterDate,
		TargetDate:       targetDate,
		Reason:           req.Reason,
		Status:           model.StatusPendingAcceptance,
	}
	sr.CreatedBy = caller.auditID()
	sr.UpdatedBy = caller.auditID()

	if err := s.repo.SwapRequest.Create(ctx, sr); err != nil {
		s.logger.Error("创建换班申请失败", zap.Error(err))
		return nil, err
	}
	sr.Requester, sr.TargetUser = requester, target

	s.logger.Info("发起换班申请",
		zap.String("swap_request_id", sr.SwapRequestID),
		zap.String("requester_id", caller.UserID),
		zap.String("target_user_id", target.UserID),
	)
	s.events.notify(ctx, caller.UserID, newNotification(target.UserID, model.NotifySwapProposed,
		"收到换班请求", fmt.Sprintf("%s 希望用 %s 的班次换你 %s 的班次", requester.Name, req.RequesterDate, req.TargetDate),
		"swap_request", sr.SwapRequestID))
	s.events.invalidateStats(ctx)

	resp := s.toResponse(sr, caller)
	return &resp, nil
}

func (s *swapService) shiftOn(ctx context.Context, userID string, date time.Time) (*model.Shift, error) {
	return shiftOf(ctx, s.repo, userID, date, s.logger)
}

// checkShifts 执行交换前双方的班次必须仍在原日期上
func (s *swapService) checkShifts(ctx context.Context, tx *repository.Repository, sr *model.SwapRequest) error {
	if _, err := shiftOf(ctx, tx, sr.RequesterID, sr.RequesterDate, s.logger); err != nil {
		return err
	}
	_, err := shiftOf(ctx, tx, sr.TargetUserID, sr.TargetDate, s.logger)
	return err
}

func shiftOf(ctx context.Context, repo *repository.Repository, userID string, date time.Time, logger *zap.Logger) (*model.Shift, error) {
	shift, err := repo.Shift.GetByUserAndDate(ctx, userID, date)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSwapShiftMissing
		}
		logger.Error("查询班次失败", zap.Error(err))
		return nil, err
	}
	return shift, nil
}

// ────────────────────── 查询 ──────────────────────

func (s *swapService) GetByID(ctx context.Context, caller Caller, id string) (*dto.SwapRequestResponse, error) {
	sr, err := s.get(ctx, s.repo, id)
	if err != nil {
		return nil, err
	}
	if !s.canView(caller, sr) {
		return nil, ErrForbidden
	}
	resp := s.toResponse(sr, caller)
	return &resp, nil
}

func (s *swapService) canView(caller Caller, sr *model.SwapRequest) bool {
	if caller.UserID == sr.RequesterID || caller.UserID == sr.TargetUserID {
		return true
	}
	return canActFor(caller, sr.Requester)
}

// List mine=true 或坐席只看自己参与的；组长看本团队发起的；WFM 不限
func (s *swapService) List(ctx context.Context, caller Caller, req *dto.SwapRequestListRequest) ([]dto.SwapRequestResponse, int64, error) {
	filters := &repository.SwapRequestListFilters{}
	if req.Status != "" {
		filters.Statuses = []string{req.Status}
	}
	switch {
	case req.Mine || caller.Role == model.RoleAgent:
		filters.ParticipantID = caller.UserID
	case caller.Role == model.RoleTeamLead:
		if caller.TeamID == "" {
			filters.ParticipantID = caller.UserID
		} else {
			filters.TeamID = caller.TeamID
		}
	}

	reqs, total, err := s.repo.SwapRequest.List(ctx, filters, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询换班列表失败", zap.Error(err))
		return nil, 0, err
	}
	list := make([]dto.SwapRequestResponse, len(reqs))
	for i := range reqs {
		list[i] = s.toResponse(&reqs[i], caller)
	}
	return list, total, nil
}

// ────────────────────── 状态迁移 ──────────────────────

func (s *swapService) Accept(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*dto.SwapRequestResponse, error) {
	return s.transition(ctx, caller, id, workflow.ActionAccept, req)
}

func (s *swapService) Decline(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*dto.SwapRequestResponse, error) {
	return s.transition(ctx, caller, id, workflow.ActionDecline, req)
}

func (s *swapService) Cancel(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*dto.SwapRequestResponse, error) {
	return s.transition(ctx, caller, id, workflow.ActionCancel, req)
}

func (s *swapService) Approve(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*dto.SwapRequestResponse, error) {
	return s.transition(ctx, caller, id, workflow.ActionApprove, req)
}

func (s *swapService) Reject(ctx context.Context, caller Caller, id string, req *dto.DecisionRequest) (*dto.SwapRequestResponse, error) {
	return s.transition(ctx, caller, id, workflow.ActionReject, req)
}

func (s *swapService) Revoke(ctx context.Context, caller Caller, id string, version int) (*dto.SwapRequestResponse, error) {
	return s.transition(ctx, caller, id, workflow.ActionRevoke, &dto.DecisionRequest{Version: version})
}

// transition 状态迁移与班次交换在同一事务内完成，任一步失败整体回滚
func (s *swapService) transition(ctx context.Context, caller Caller, id string, action workflow.Action, req *dto.DecisionRequest) (*dto.SwapRequestResponse, error) {
	var (
		sr      *model.SwapRequest
		deleted bool
	)
	err := s.repo.WithinTx(ctx, func(tx *repository.Repository) error {
		var err error
		sr, err = s.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if req.Version > 0 && req.Version != sr.Version {
			return pkgerrors.ErrOptimisticLock
		}

		out, err := workflow.Decide(s.subject(sr), caller.actor(), action)
		if err != nil {
			return err
		}

		if out.Delete {
			deleted = true
			return tx.SwapRequest.Delete(ctx, sr.SwapRequestID, sr.Version, caller.UserID)
		}

		now := time.Now().UTC()
		switch action {
		case workflow.ActionAccept, workflow.ActionDecline:
			sr.TargetRespondedAt = &now
			if action == workflow.ActionDecline {
				sr.RejectReason = req.Reason
			}
		case workflow.ActionCancel, workflow.ActionReject:
			sr.RejectReason = req.Reason
		case workflow.ActionApprove:
			if caller.Role == model.RoleTeamLead {
				sr.TLApprovedAt, sr.TLApprovedBy = &now, strPtr(caller.UserID)
			} else {
				sr.WFMApprovedAt, sr.WFMApprovedBy = &now, strPtr(caller.UserID)
			}
		}

		// 进入 approved 执行交换；撤销已通过的换班再交换一次即可还原
		if out.Next == model.StatusApproved {
			if err := s.checkShifts(ctx, tx, sr); err != nil {
				return err
			}
		}
		if out.Next == model.StatusApproved || out.Reverse {
			if err := tx.Shift.Exchange(ctx, sr.RequesterID, sr.TargetUserID, sr.RequesterDate, sr.TargetDate); err != nil {
				if errors.Is(err, repository.ErrShiftNotFound) {
					return ErrSwapShiftMissing
				}
				return err
			}
		}
		if out.Reverse {
			sr.TLApprovedAt, sr.TLApprovedBy = nil, nil
			sr.WFMApprovedAt, sr.WFMApprovedBy = nil, nil
		}

		sr.Status = out.Next
		sr.UpdatedBy = caller.auditID()
		return tx.SwapRequest.UpdateStatus(ctx, sr)
	})
	if err != nil {
		if !isBusinessError(err) {
			s.logger.Error("换班申请状态变更失败", zap.String("swap_request_id", id), zap.Error(err))
		}
		return nil, err
	}

	s.logger.Info("换班申请状态变更",
		zap.String("swap_request_id", id),
		zap.String("action", string(action)),
		zap.String("status", sr.Status),
		zap.Bool("deleted", deleted),
		zap.String("operator", caller.UserID),
	)
	s.notifyTransition(ctx, caller, sr, action, deleted)
	s.events.invalidateStats(ctx)

	if deleted {
		return nil, nil
	}
	resp := s.toResponse(sr, caller)
	return &resp, nil
}

func (s *swapService) notifyTransition(ctx context.Context, caller Caller, sr *model.SwapRequest, action workflow.Action, deleted bool) {
	related := func(userID, typ, title, content string) model.Notification {
		return newNotification(userID, typ, title, content, "swap_request", sr.SwapRequestID)
	}
	switch {
	case deleted:
		s.events.notify(ctx, caller.UserID,
			related(sr.RequesterID, model.NotifyRequestRevoked, "换班申请已撤销", "换班申请已被撤销"),
			related(sr.TargetUserID, model.NotifyRequestRevoked, "换班申请已撤销", "换班申请已被撤销"))
	case action == workflow.ActionAccept:
		ns := []model.Notification{related(sr.RequesterID, model.NotifySwapResponded, "对方已同意换班", "换班申请进入组长审批")}
		teamID := ""
		if sr.Requester != nil {
			teamID = sr.Requester.TeamIDValue()
		}
		for _, uid := range s.events.approversOf(ctx, teamID) {
			ns = append(ns, related(uid, model.NotifySwapProposed, "新的换班申请待审批", "有一条换班申请等待审批"))
		}
		s.events.notify(ctx, caller.UserID, ns...)
	case action == workflow.ActionDecline:
		s.events.notify(ctx, caller.UserID, related(sr.RequesterID, model.NotifySwapResponded, "对方拒绝了换班", "换班申请已被拒绝"))
	case action == workflow.ActionRevoke:
		s.events.notify(ctx, caller.UserID,
			related(sr.RequesterID, model.NotifyRequestRevoked, "换班已回滚", "已通过的换班被撤销，班次已还原"),
			related(sr.TargetUserID, model.NotifyRequestRevoked, "换班已回滚", "已通过的换班被撤销，班次已还原"))
	case sr.Status == model.StatusApproved || sr.Status == model.StatusRejected:
		content := fmt.Sprintf("换班申请状态变更为 %s", sr.Status)
		s.events.notify(ctx, caller.UserID,
			related(sr.RequesterID, model.NotifySwapDecided, "换班申请已处理", content),
			related(sr.TargetUserID, model.NotifySwapDecided, "换班申请已处理", content))
	}
}

// ────────────────────── 内部辅助 ──────────────────────

func (s *swapService) get(ctx context.Context, repo *repository.Repository, id string) (*model.SwapRequest, error) {
	sr, err := repo.SwapRequest.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSwapNotFound
		}
		return nil, err
	}
	return sr, nil
}

func (s *swapService) subject(sr *model.SwapRequest) workflow.Subject {
	teamID := ""
	if sr.Requester != nil {
		teamID = sr.Requester.TeamIDValue()
	}
	return workflow.Subject{
		Kind:        workflow.KindSwap,
		Status:      sr.Status,
		OwnerID:     sr.RequesterID,
		TargetID:    sr.TargetUserID,
		OwnerTeamID: teamID,
	}
}

func (s *swapService) toResponse(sr *model.SwapRequest, caller Caller) dto.SwapRequestResponse {
	return dto.SwapRequestResponse{
		ID:                sr.SwapRequestID,
		Requester:         toUserBrief(sr.Requester),
		TargetUser:        toUserBrief(sr.TargetUser),
		RequesterID:       sr.RequesterID,
		TargetUserID:      sr.TargetUserID,
		RequesterShiftID:  sr.RequesterShiftID,
		TargetShiftID:     sr.TargetShiftID,
		RequesterDate:     formatDate(sr.RequesterDate),
		TargetDate:        formatDate(sr.TargetDate),
		Reason:            sr.Reason,
		Status:            sr.Status,
		RejectReason:      sr.RejectReason,
		TargetRespondedAt: formatTimestampPtr(sr.TargetRespondedAt),
		TLApprovedAt:      formatTimestampPtr(sr.TLApprovedAt),
		WFMApprovedAt:     formatTimestampPtr(sr.WFMApprovedAt),
		CreatedAt:         formatTimestamp(sr.CreatedAt),
		Version:           sr.Version,
		Actions:           actionNames(workflow.AvailableActions(s.subject(sr), caller.actor())),
	}
}

// [自证通过] internal/service/swap_service.go
