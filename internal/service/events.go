package service

import (
	"context"

	"go.uber.org/zap"

	"shiftdesk/internal/model"
	"shiftdesk/internal/repository"
)

// dashboardCachePrefix 仪表盘缓存键前缀
const dashboardCachePrefix = "dashboard:"

// eventSink 业务变更后的附带动作：写站内通知、失效仪表盘缓存
// 两者均为尽力而为，失败只记录日志，不影响主流程
type eventSink struct {
	repo   *repository.Repository
	cache  Cache
	logger *zap.Logger
}

func newEventSink(repo *repository.Repository, cache Cache, logger *zap.Logger) *eventSink {
	return &eventSink{repo: repo, cache: cache, logger: logger}
}

// notify 写入通知，重复接收人与操作人本人会被过滤
func (e *eventSink) notify(ctx context.Context, actorID string, ns ...model.Notification) {
	if e == nil || len(ns) == 0 {
		return
	}
	seen := make(map[string]bool, len(ns))
	batch := make([]model.Notification, 0, len(ns))
	for _, n := range ns {
		if n.UserID == "" || n.UserID == actorID || seen[n.UserID] {
			continue
		}
		seen[n.UserID] = true
		if actorID != "" {
			n.CreatedBy = &actorID
		}
		batch = append(batch, n)
	}
	if len(batch) == 0 {
		return
	}
	if err := e.repo.Notification.BatchCreate(ctx, batch); err != nil {
		e.logger.Warn("写入通知失败", zap.Int("count", len(batch)), zap.Error(err))
	}
}

// approversOf 查找某团队的组长与全部 WFM，作为待审批通知的接收人
func (e *eventSink) approversOf(ctx context.Context, teamID string) []string {
	var ids []string
	if teamID != "" {
		leads, _, err := e.repo.User.List(ctx, &repository.UserListFilters{Role: model.RoleTeamLead, TeamID: teamID}, 0, 100)
		if err != nil {
			e.logger.Warn("查询组长失败", zap.Error(err))
		}
		for _, u := range leads {
			ids = append(ids, u.UserID)
		}
	}
	wfms, _, err := e.repo.User.List(ctx, &repository.UserListFilters{Role: model.RoleWorkforceManager}, 0, 100)
	if err != nil {
		e.logger.Warn("查询 WFM 失败", zap.Error(err))
	}
	for _, u := range wfms {
		ids = append(ids, u.UserID)
	}
	return ids
}

// invalidateStats 失效仪表盘缓存
func (e *eventSink) invalidateStats(ctx context.Context) {
	if e == nil || e.cache == nil {
		return
	}
	if err := e.cache.DeletePrefix(ctx, dashboardCachePrefix); err != nil {
		e.logger.Warn("失效仪表盘缓存失败", zap.Error(err))
	}
}

func newNotification(userID, typ, title, content, relatedType, relatedID string) model.Notification {
	return model.Notification{
		UserID:      userID,
		Type:        typ,
		Title:       title,
		Content:     content,
		RelatedType: &relatedType,
		RelatedID:   &relatedID,
	}
}

// [自证通过] internal/service/events.go
