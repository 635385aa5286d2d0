package service

import (
	"context"
	"errors"
	"testing"

	"shiftdesk/internal/dto"
	"shiftdesk/internal/model"
	pkgerrors "shiftdesk/pkg/errors"
)

func intPtr(v int) *int { return &v }

func TestUpdateOvertime(t *testing.T) {
	f := newFixture(t)
	svc := NewSettingsService(f.repo, f.events, f.logger)
	ctx := context.Background()
	f.m.overtime.setting = &model.OvertimeSetting{MaxWeeklyHours: 10, MaxMonthlyHours: 36, RateMultiplier: 1.5, Version: 1}

	resp, err := svc.UpdateOvertime(ctx, callerOf(f.wfm), &dto.UpdateOvertimeRequest{MaxWeeklyHours: intPtr(12), Version: 1})
	if err != nil {
		t.Fatalf("更新应成功: %v", err)
	}
	if resp.MaxWeeklyHours != 12 || resp.MaxMonthlyHours != 36 || resp.Version != 2 {
		t.Errorf("仅应更新传入的字段，实际: %+v", resp)
	}

	if _, err := svc.UpdateOvertime(ctx, callerOf(f.wfm), &dto.UpdateOvertimeRequest{MaxMonthlyHours: intPtr(5)}); !errors.Is(err, ErrOvertimeLimitInvalid) {
		t.Errorf("期望 ErrOvertimeLimitInvalid，实际: %v", err)
	}
	if _, err := svc.UpdateOvertime(ctx, callerOf(f.wfm), &dto.UpdateOvertimeRequest{MaxWeeklyHours: intPtr(8), Version: 1}); !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际: %v", err)
	}
}

func TestReplaceDistribution(t *testing.T) {
	f := newFixture(t)
	cache := newFakeCache()
	cache.data["dashboard::2024-03-04:2024-03-10"] = []byte("{}")
	svc := NewSettingsService(f.repo, newEventSink(f.repo, cache, f.logger), f.logger)
	ctx := context.Background()

	list, err := svc.ReplaceDistribution(ctx, callerOf(f.wfm), &dto.ReplaceDistributionRequest{Items: []dto.DistributionItem{
		{DayOfWeek: 1, ShiftType: "morning", RequiredHeadcount: 3},
		{DayOfWeek: 1, ShiftType: "night", RequiredHeadcount: 1},
	}})
	if err != nil {
		t.Fatalf("替换应成功: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("期望 2 条配置，实际=%d", len(list))
	}
	if len(cache.data) != 0 {
		t.Error("替换后应失效仪表盘缓存")
	}

	_, err = svc.ReplaceDistribution(ctx, callerOf(f.wfm), &dto.ReplaceDistributionRequest{Items: []dto.DistributionItem{
		{DayOfWeek: 2, ShiftType: "morning", RequiredHeadcount: 1},
		{DayOfWeek: 2, ShiftType: "morning", RequiredHeadcount: 2},
	}})
	if !errors.Is(err, ErrDistributionDuplicated) {
		t.Errorf("期望 ErrDistributionDuplicated，实际: %v", err)
	}

	_, err = svc.ReplaceDistribution(ctx, callerOf(f.wfm), &dto.ReplaceDistributionRequest{Items: []dto.DistributionItem{
		{DayOfWeek: 2, ShiftType: "holiday", RequiredHeadcount: 1},
	}})
	if !errors.Is(err, ErrShiftTypeInvalid) {
		t.Errorf("期望 ErrShiftTypeInvalid，实际: %v", err)
	}
	if len(f.m.distribution.settings) != 2 {
		t.Error("校验失败时不应改动已有配置")
	}
}

func TestSetUserSkills(t *testing.T) {
	f := newFixture(t)
	svc := NewSkillService(f.repo, f.logger)
	ctx := context.Background()

	skill, err := svc.Create(ctx, callerOf(f.wfm), &dto.CreateSkillRequest{Name: "英语"})
	if err != nil {
		t.Fatalf("创建技能应成功: %v", err)
	}
	if _, err := svc.Create(ctx, callerOf(f.wfm), &dto.CreateSkillRequest{Name: "英语"}); !errors.Is(err, ErrSkillExists) {
		t.Errorf("期望 ErrSkillExists，实际: %v", err)
	}

	list, err := svc.SetUserSkills(ctx, callerOf(f.lead), f.agent.UserID, &dto.SetUserSkillsRequest{
		Skills: []dto.UserSkillItem{{SkillID: skill.ID, Proficiency: 3}},
	})
	if err != nil {
		t.Fatalf("设置成员技能应成功: %v", err)
	}
	if len(list) != 1 || list[0].Name != "英语" || list[0].Proficiency != 3 {
		t.Errorf("成员技能不正确: %+v", list)
	}

	_, err = svc.SetUserSkills(ctx, callerOf(f.lead), f.agent.UserID, &dto.SetUserSkillsRequest{
		Skills: []dto.UserSkillItem{{SkillID: "missing", Proficiency: 1}},
	})
	if !errors.Is(err, ErrSkillNotFound) {
		t.Errorf("期望 ErrSkillNotFound，实际: %v", err)
	}

	_, err = svc.SetUserSkills(ctx, callerOf(f.otherLead), f.agent.UserID, &dto.SetUserSkillsRequest{})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("其他团队组长无权设置，实际: %v", err)
	}
}

func TestNotifications_MarkReadOwnOnly(t *testing.T) {
	f := newFixture(t)
	svc := NewNotificationService(f.repo, f.logger)
	ctx := context.Background()

	f.events.notify(ctx, f.lead.UserID,
		newNotification(f.agent.UserID, model.NotifyLeaveDecided, "标题", "内容", "leave_request", "l-1"),
		newNotification(f.agent.UserID, model.NotifyLeaveDecided, "重复", "内容", "leave_request", "l-1"),
		newNotification(f.lead.UserID, model.NotifyLeaveDecided, "本人", "内容", "leave_request", "l-1"),
	)
	list, total, err := svc.List(ctx, callerOf(f.agent), &dto.NotificationListRequest{UnreadOnly: true})
	if err != nil {
		t.Fatalf("查询应成功: %v", err)
	}
	if total != 1 {
		t.Fatalf("重复接收人与操作人本人应被过滤，期望 1 条，实际=%d", total)
	}

	if err := svc.MarkRead(ctx, callerOf(f.peer), list[0].ID); !errors.Is(err, ErrNotificationNotFound) {
		t.Errorf("不能标记他人的通知，实际: %v", err)
	}
	if err := svc.MarkRead(ctx, callerOf(f.agent), list[0].ID); err != nil {
		t.Fatalf("标记已读应成功: %v", err)
	}
	if _, total, _ := svc.List(ctx, callerOf(f.agent), &dto.NotificationListRequest{UnreadOnly: true}); total != 0 {
		t.Errorf("标记后未读应为 0，实际=%d", total)
	}
}
