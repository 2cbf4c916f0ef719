package audit

import (
	"context"
	"sync"
	"time"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ActivityStore is the structured activity log. Entries are append-only and
// their timestamps never decrease in insertion order.
type ActivityStore struct {
	db  *gorm.DB
	now func() time.Time

	mu   sync.Mutex
	last time.Time
}

func NewActivityStore(db *gorm.DB) *ActivityStore {
	return &ActivityStore{db: db, now: time.Now}
}

// WithClock replaces the clock. Used by tests.
func (s *ActivityStore) WithClock(now func() time.Time) *ActivityStore {
	s.now = now
	return s
}

// Record appends e unless it is operational-only or has no actor.
func (s *ActivityStore) Record(ctx context.Context, e Event) error {
	if e.OpsOnly || e.ActorID == nil {
		return nil
	}

	meta := datatypes.JSONMap{}
	for k, v := range e.Meta {
		meta[k] = v
	}
	if origin := OriginFrom(ctx); origin != "" {
		meta["origin"] = origin
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ts := s.now().UTC()
	if ts.Before(s.last) {
		ts = s.last
	}

	entry := models.ActivityLog{
		Action:    e.Action,
		UserID:    *e.ActorID,
		Details:   e.Details,
		Meta:      meta,
		Timestamp: ts,
	}
	if err := s.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return err
	}
	s.last = ts
	return nil
}

// List returns one page of entries, newest first, with the actor loaded.
func (s *ActivityStore) List(ctx context.Context, page, limit int) ([]models.ActivityLog, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.ActivityLog{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("failed to count activity", err)
	}

	logs := []models.ActivityLog{}
	err := s.db.WithContext(ctx).
		Preload("User").
		Order(clause.OrderByColumn{Column: clause.Column{Name: "timestamp"}, Desc: true}).
		Order(clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: true}).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&logs).Error
	if err != nil {
		return nil, 0, apperr.Internal("failed to list activity", err)
	}
	return logs, total, nil
}
