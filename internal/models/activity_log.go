package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ActivityLog is one append-only entry of the structured activity log.
type ActivityLog struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	Action    string            `gorm:"size:50;not null;index" json:"action"`
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User             `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Details   string            `gorm:"type:text" json:"details"`
	Meta      datatypes.JSONMap `json:"meta,omitempty"`
	Timestamp time.Time         `gorm:"not null;index" json:"timestamp"`
}
