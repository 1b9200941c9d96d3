package models

import "time"

type AuditLog struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	UserID int64 `gorm:"index" json:"user_id"`

	Entity   string `gorm:"size:50;not null" json:"entity"` // "kpi", "project", "task"
	EntityID int64  `json:"entity_id"`
	Action   string `gorm:"size:50;not null" json:"action"` // "create", "update", "delete", "progress"
	Details  string `gorm:"type:text" json:"details"`
}
