package dto

import (
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/models"
	"github.com/google/uuid"
)

// Bucket is one group of a count aggregation.
type Bucket struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

type StatsResponse struct {
	Total              int64    `json:"total"`
	CountsByStatus     []Bucket `json:"counts_by_status"`
	CountsByDepartment []Bucket `json:"counts_by_department"`
}

type ActiveUser struct {
	UserID uuid.UUID `json:"user_id"`
	Name   string    `json:"name"`
	Email  string    `json:"email"`
	Count  int64     `json:"count"`
}

type ReportsResponse struct {
	ByDepartment       []Bucket     `json:"by_department"`
	TopActiveUsers     []ActiveUser `json:"top_active_users"`
	Trend              []Bucket     `json:"trend"`
	AvgResolutionHours int64        `json:"avg_resolution_hours"`
}

type ActivityListResponse struct {
	Logs  []models.ActivityLog `json:"logs"`
	Total int64                `json:"total"`
	Page  int                  `json:"page"`
	Pages int                  `json:"pages"`
}

type LogsResponse struct {
	Lines []string `json:"lines"`
	Count int      `json:"count"`
}
