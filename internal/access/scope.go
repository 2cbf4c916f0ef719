package access

import (
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Scope narrows complaint queries. The zero value matches nothing.
type Scope struct {
	all     bool
	ownerID uuid.UUID
}

func AllScope() Scope { return Scope{all: true} }

func OwnerScope(ownerID uuid.UUID) Scope { return Scope{ownerID: ownerID} }

func (s Scope) All() bool { return s.all }

func (s Scope) OwnerID() (uuid.UUID, bool) {
	return s.ownerID, !s.all && s.ownerID != uuid.Nil
}

func (s Scope) Contains(c *models.Complaint) bool {
	if s.all {
		return true
	}
	return s.ownerID != uuid.Nil && c.UserID == s.ownerID
}

// Apply returns a GORM scope that filters complaints to s.
func (s Scope) Apply() func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if s.all {
			return db
		}
		if s.ownerID == uuid.Nil {
			return db.Where("1 = 0")
		}
		return db.Where("complaints.user_id = ?", s.ownerID)
	}
}
