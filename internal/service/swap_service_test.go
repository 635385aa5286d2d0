package service

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"shiftdesk/internal/dto"
	"shiftdesk/internal/model"
)

// setupTestSwapService agent 在 03-01 上早班；peer 在 03-01 上晚班、03-02 上夜班
func setupTestSwapService(t *testing.T) (SwapService, *fixture) {
	t.Helper()
	f := newFixture(t)
	f.m.shift.add(f.agent.UserID, "2024-03-01", "morning")
	f.m.shift.add(f.peer.UserID, "2024-03-01", "evening")
	f.m.shift.add(f.peer.UserID, "2024-03-02", "night")
	return NewSwapService(f.repo, f.events, f.logger), f
}

func proposeSwap(t *testing.T, svc SwapService, f *fixture) *dto.SwapRequestResponse {
	t.Helper()
	resp, err := svc.Create(context.Background(), callerOf(f.agent), &dto.CreateSwapRequest{
		TargetUserID:  f.peer.UserID,
		RequesterDate: "2024-03-01",
		TargetDate:    "2024-03-02",
		Reason:        "家里有事",
	})
	if err != nil {
		t.Fatalf("发起换班应成功: %v", err)
	}
	return resp
}

// ═══════════════════════════════════════════════════════════
// Test: Create
// ═══════════════════════════════════════════════════════════

func TestSwap_CreatePendingAcceptance(t *testing.T) {
	svc, f := setupTestSwapService(t)
	resp := proposeSwap(t, svc, f)

	if resp.Status != model.StatusPendingAcceptance {
		t.Errorf("期望 pending_acceptance，实际=%s", resp.Status)
	}
	if resp.RequesterShiftID == nil || resp.TargetShiftID == nil {
		t.Error("应记录双方班次 ID")
	}
	if n := f.m.notification.countFor(f.peer.UserID, model.NotifySwapProposed); n != 1 {
		t.Errorf("目标成员应收到换班请求通知，实际=%d", n)
	}
}

func TestSwap_CreateValidation(t *testing.T) {
	svc, f := setupTestSwapService(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  dto.CreateSwapRequest
		want error
	}{
		{"与自己换班", dto.CreateSwapRequest{TargetUserID: f.agent.UserID, RequesterDate: "2024-03-01", TargetDate: "2024-03-02"}, ErrSwapSelf},
		{"日期格式错误", dto.CreateSwapRequest{TargetUserID: f.peer.UserID, RequesterDate: "03/01", TargetDate: "2024-03-02"}, ErrInvalidDate},
		{"目标不存在", dto.CreateSwapRequest{TargetUserID: "missing", RequesterDate: "2024-03-01", TargetDate: "2024-03-02"}, ErrSwapTargetAbsent},
		{"申请人当天无班", dto.CreateSwapRequest{TargetUserID: f.peer.UserID, RequesterDate: "2024-03-02", TargetDate: "2024-03-02"}, ErrSwapShiftMissing},
		{"目标当天无班", dto.CreateSwapRequest{TargetUserID: f.peer.UserID, RequesterDate: "2024-03-01", TargetDate: "2024-03-03"}, ErrSwapShiftMissing},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			if _, err := svc.Create(ctx, callerOf(f.agent), &req); !errors.Is(err, tt.want) {
				t.Errorf("期望 %v，实际: %v", tt.want, err)
			}
		})
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 可用操作
// ═══════════════════════════════════════════════════════════

func TestSwap_PendingAcceptanceActions(t *testing.T) {
	svc, f := setupTestSwapService(t)
	created := proposeSwap(t, svc, f)
	ctx := context.Background()

	cases := []struct {
		name   string
		caller Caller
		want   []string
	}{
		{"目标成员", callerOf(f.peer), []string{"accept", "decline"}},
		{"申请人", callerOf(f.agent), []string{"cancel", "revoke"}},
		{"组长", callerOf(f.lead), []string{}},
		{"WFM", callerOf(f.wfm), []string{"revoke"}},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.GetByID(ctx, tt.caller, created.ID)
			if err != nil {
				t.Fatalf("查询应成功: %v", err)
			}
			if !reflect.DeepEqual(resp.Actions, tt.want) {
				t.Errorf("期望 %v，实际=%v", tt.want, resp.Actions)
			}
		})
	}

	if _, err := svc.GetByID(ctx, callerOf(f.otherLead), created.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("其他团队组长不能查看，实际: %v", err)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 完整链路
// ═══════════════════════════════════════════════════════════

func TestSwap_DeclineLeavesShiftsUntouched(t *testing.T) {
	svc, f := setupTestSwapService(t)
	before := f.m.shift.snapshot()
	created := proposeSwap(t, svc, f)

	resp, err := svc.Decline(context.Background(), callerOf(f.peer), created.ID, &dto.DecisionRequest{Reason: "当天有安排"})
	if err != nil {
		t.Fatalf("拒绝应成功: %v", err)
	}
	if resp.Status != model.StatusRejected || resp.TargetRespondedAt == nil {
		t.Errorf("期望 rejected 且记录响应时间，实际 status=%s", resp.Status)
	}
	if !reflect.DeepEqual(before, f.m.shift.snapshot()) {
		t.Error("拒绝换班不应改动班次")
	}
	if n := f.m.notification.countFor(f.agent.UserID, model.NotifySwapResponded); n != 1 {
		t.Errorf("申请人应收到拒绝通知，实际=%d", n)
	}
}

func TestSwap_ApproveExchangesShifts(t *testing.T) {
	svc, f := setupTestSwapService(t)
	ctx := context.Background()
	created := proposeSwap(t, svc, f)

	accepted, err := svc.Accept(ctx, callerOf(f.peer), created.ID, &dto.DecisionRequest{Version: created.Version})
	if err != nil {
		t.Fatalf("同意应成功: %v", err)
	}
	if accepted.Status != model.StatusPendingTL {
		t.Fatalf("期望 pending_tl，实际=%s", accepted.Status)
	}
	if n := f.m.notification.countFor(f.lead.UserID, model.NotifySwapProposed); n != 1 {
		t.Errorf("组长应收到待审批通知，实际=%d", n)
	}

	tl, err := svc.Approve(ctx, callerOf(f.lead), created.ID, &dto.DecisionRequest{Version: accepted.Version})
	if err != nil {
		t.Fatalf("组长审批应成功: %v", err)
	}
	if tl.Status != model.StatusPendingWFM {
		t.Fatalf("期望 pending_wfm，实际=%s", tl.Status)
	}
	if snap := f.m.shift.snapshot(); snap["u-agent|2024-03-01"] != "morning" {
		t.Error("终审前不应交换班次")
	}

	final, err := svc.Approve(ctx, callerOf(f.wfm), created.ID, &dto.DecisionRequest{Version: tl.Version})
	if err != nil {
		t.Fatalf("WFM 审批应成功: %v", err)
	}
	if final.Status != model.StatusApproved || final.WFMApprovedAt == nil {
		t.Errorf("期望 approved，实际=%s", final.Status)
	}

	want := map[string]string{
		"u-agent|2024-03-01": "evening",
		"u-peer|2024-03-01":  "morning",
		"u-agent|2024-03-02": "night",
	}
	if got := f.m.shift.snapshot(); !reflect.DeepEqual(got, want) {
		t.Errorf("交换结果不正确\n期望 %v\n实际 %v", want, got)
	}
}

func TestSwap_WFMRevokeRestoresShifts(t *testing.T) {
	svc, f := setupTestSwapService(t)
	ctx := context.Background()
	before := f.m.shift.snapshot()

	created := proposeSwap(t, svc, f)
	if _, err := svc.Accept(ctx, callerOf(f.peer), created.ID, &dto.DecisionRequest{}); err != nil {
		t.Fatalf("同意应成功: %v", err)
	}
	approved, err := svc.Approve(ctx, callerOf(f.wfm), created.ID, &dto.DecisionRequest{})
	if err != nil {
		t.Fatalf("WFM 审批应成功: %v", err)
	}

	if _, err := svc.Revoke(ctx, callerOf(f.agent), created.ID, approved.Version); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("申请人不能撤销已通过的换班，实际: %v", err)
	}

	reverted, err := svc.Revoke(ctx, callerOf(f.wfm), created.ID, approved.Version)
	if err != nil {
		t.Fatalf("WFM 撤销应成功: %v", err)
	}
	if reverted == nil || reverted.Status != model.StatusPendingTL {
		t.Fatalf("撤销已通过的换班应退回 pending_tl，实际=%+v", reverted)
	}
	if reverted.TLApprovedAt != nil || reverted.WFMApprovedAt != nil {
		t.Error("撤销后应清空审批时间")
	}
	if !reflect.DeepEqual(before, f.m.shift.snapshot()) {
		t.Errorf("撤销后班次应还原\n期望 %v\n实际 %v", before, f.m.shift.snapshot())
	}
	if n := f.m.notification.countFor(f.peer.UserID, model.NotifyRequestRevoked); n != 1 {
		t.Errorf("目标成员应收到回滚通知，实际=%d", n)
	}
}

func TestSwap_ApproveFailsWhenShiftRemoved(t *testing.T) {
	svc, f := setupTestSwapService(t)
	ctx := context.Background()

	created := proposeSwap(t, svc, f)
	if _, err := svc.Accept(ctx, callerOf(f.peer), created.ID, &dto.DecisionRequest{}); err != nil {
		t.Fatalf("同意应成功: %v", err)
	}
	delete(f.m.shift.shifts, *created.RequesterShiftID)
	before := f.m.shift.snapshot()

	if _, err := svc.Approve(ctx, callerOf(f.wfm), created.ID, &dto.DecisionRequest{}); !errors.Is(err, ErrSwapShiftMissing) {
		t.Fatalf("期望 ErrSwapShiftMissing，实际: %v", err)
	}
	if got := f.m.swap.reqs[created.ID].Status; got != model.StatusPendingTL {
		t.Errorf("失败后状态应保持 pending_tl，实际=%s", got)
	}
	if !reflect.DeepEqual(before, f.m.shift.snapshot()) {
		t.Error("失败后不应改动班次")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: 取消
// ═══════════════════════════════════════════════════════════

func TestSwap_CancelBeforeAcceptanceRejects(t *testing.T) {
	svc, f := setupTestSwapService(t)
	created := proposeSwap(t, svc, f)

	resp, err := svc.Cancel(context.Background(), callerOf(f.agent), created.ID, &dto.DecisionRequest{})
	if err != nil {
		t.Fatalf("取消应成功: %v", err)
	}
	if resp == nil || resp.Status != model.StatusRejected {
		t.Errorf("目标未响应前取消应变为 rejected，实际=%+v", resp)
	}
}

func TestSwap_CancelAfterAcceptanceDeletes(t *testing.T) {
	svc, f := setupTestSwapService(t)
	ctx := context.Background()
	created := proposeSwap(t, svc, f)

	if _, err := svc.Cancel(ctx, callerOf(f.peer), created.ID, &dto.DecisionRequest{}); !errors.Is(err, ErrForbidden) {
		t.Errorf("只有申请人可以取消，实际: %v", err)
	}
	if _, err := svc.Accept(ctx, callerOf(f.peer), created.ID, &dto.DecisionRequest{}); err != nil {
		t.Fatalf("同意应成功: %v", err)
	}

	resp, err := svc.Cancel(ctx, callerOf(f.agent), created.ID, &dto.DecisionRequest{})
	if err != nil {
		t.Fatalf("取消应成功: %v", err)
	}
	if resp != nil {
		t.Errorf("审批中取消应删除申请并返回空响应，实际=%+v", resp)
	}
	if _, ok := f.m.swap.reqs[created.ID]; ok {
		t.Error("申请应已删除")
	}
}

func TestSwap_ListScopes(t *testing.T) {
	svc, f := setupTestSwapService(t)
	ctx := context.Background()
	proposeSwap(t, svc, f)

	_, total, _ := svc.List(ctx, callerOf(f.peer), &dto.SwapRequestListRequest{})
	if total != 1 {
		t.Errorf("目标成员应看到参与的申请，实际=%d", total)
	}
	_, total, _ = svc.List(ctx, callerOf(f.otherLead), &dto.SwapRequestListRequest{})
	if total != 0 {
		t.Errorf("其他团队组长不应看到，实际=%d", total)
	}
	_, total, _ = svc.List(ctx, callerOf(f.lead), &dto.SwapRequestListRequest{Mine: true})
	if total != 0 {
		t.Errorf("mine=true 时组长只看本人参与的，实际=%d", total)
	}
}
