package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending    = "Pending"
	StatusInProgress = "In Progress"
	StatusResolved   = "Resolved"
	StatusRejected   = "Rejected"
)

// Statuses lists every complaint status in lifecycle order.
var Statuses = []string{StatusPending, StatusInProgress, StatusResolved, StatusRejected}

func IsValidStatus(s string) bool {
	for _, status := range Statuses {
		if s == status {
			return true
		}
	}
	return false
}

// Complaint timestamps are written by the store clock, not by GORM.
type Complaint struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"size:1000;not null" json:"description"`
	Department  string    `gorm:"size:100;not null;index;index:idx_complaints_department_status,priority:1" json:"department"`
	Status      string    `gorm:"size:20;not null;default:'Pending';index:idx_complaints_department_status,priority:2" json:"status"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime:false;index" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

func (c *Complaint) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (c *Complaint) OwnedBy(userID uuid.UUID) bool {
	return c.UserID == userID
}
