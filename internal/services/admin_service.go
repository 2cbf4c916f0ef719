package services

import (
	"context"
	"math"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/access"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/audit"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/models"
	"gorm.io/gorm"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// AdminService serves the admin read views: activity log, users and the
// operational event log.
type AdminService struct {
	db         *gorm.DB
	activities *audit.ActivityStore
	events     *audit.FileSink
	sink       audit.Sink
}

func NewAdminService(db *gorm.DB, activities *audit.ActivityStore, events *audit.FileSink, sink audit.Sink) *AdminService {
	return &AdminService{db: db, activities: activities, events: events, sink: sink}
}

func (s *AdminService) Activities(ctx context.Context, id access.Identity, page, limit int) (*dto.ActivityListResponse, error) {
	if _, err := access.Authorize(id, access.OpViewActivity, nil); err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = defaultActivityLimit
	}
	limit = min(limit, maxActivityLimit)

	logs, total, err := s.activities.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}

	audit.Emit(ctx, s.sink, audit.Event{
		Action:  audit.ActionAdminViewActivities,
		ActorID: audit.Actor(id.SubjectID()),
		Details: "Viewed activity log",
	})
	return &dto.ActivityListResponse{
		Logs:  logs,
		Total: total,
		Page:  page,
		Pages: int(math.Ceil(float64(total) / float64(limit))),
	}, nil
}

func (s *AdminService) Users(ctx context.Context, id access.Identity) ([]dto.UserResponse, error) {
	if _, err := access.Authorize(id, access.OpViewUsers, nil); err != nil {
		return nil, err
	}

	var users []models.User
	if err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error; err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}
	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, dto.NewUserResponse(&users[i]))
	}

	audit.Emit(ctx, s.sink, audit.Event{
		Action:  audit.ActionAdminViewUsers,
		ActorID: audit.Actor(id.SubjectID()),
		Details: "Viewed user list",
	})
	return out, nil
}

// Logs reads the operational event log, newest first.
func (s *AdminService) Logs(ctx context.Context, id access.Identity, f audit.Filter) (*dto.LogsResponse, error) {
	if _, err := access.Authorize(id, access.OpViewLogs, nil); err != nil {
		return nil, err
	}

	lines, err := s.events.Read(f)
	if err != nil {
		return nil, apperr.Internal("failed to read event log", err)
	}

	audit.Emit(ctx, s.sink, audit.Event{
		Action:  audit.ActionAdminViewLogs,
		ActorID: audit.Actor(id.SubjectID()),
		Details: "Viewed event log",
	})
	return &dto.LogsResponse{Lines: lines, Count: len(lines)}, nil
}

// RawLog returns the current event log file for download.
func (s *AdminService) RawLog() ([]byte, error) {
	raw, err := s.events.Raw()
	if err != nil {
		return nil, apperr.Internal("failed to read event log", err)
	}
	return raw, nil
}
