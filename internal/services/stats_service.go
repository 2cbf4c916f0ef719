package services

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/access"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/audit"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/cache"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	statsCacheKey   = "admin_stats"
	reportsCacheKey = "admin_reports"

	trendDays      = 30
	topActiveUsers = 5
)

// StatsService computes admin aggregates over all complaints. Results are
// cached per endpoint and may lag writes by up to one TTL.
type StatsService struct {
	db      *gorm.DB
	sink    audit.Sink
	now     func() time.Time
	stats   *cache.TTL[*dto.StatsResponse]
	reports *cache.TTL[*dto.ReportsResponse]
}

func NewStatsService(db *gorm.DB, sink audit.Sink, ttl time.Duration) *StatsService {
	return &StatsService{
		db:      db,
		sink:    sink,
		now:     time.Now,
		stats:   cache.NewTTL[*dto.StatsResponse](ttl),
		reports: cache.NewTTL[*dto.ReportsResponse](ttl),
	}
}

// WithClock drives both the caches and the trend window. Used by tests.
func (s *StatsService) WithClock(now func() time.Time) *StatsService {
	s.now = now
	s.stats.WithClock(now)
	s.reports.WithClock(now)
	return s
}

func (s *StatsService) Stats(ctx context.Context, id access.Identity) (*dto.StatsResponse, error) {
	if _, err := access.Authorize(id, access.OpViewStats, nil); err != nil {
		return nil, err
	}

	resp, hit, err := s.stats.GetOrLoad(ctx, statsCacheKey, s.computeStats)
	if err != nil {
		return nil, err
	}
	recordLookup(statsCacheKey, hit)

	audit.Emit(ctx, s.sink, audit.Event{
		Action:  audit.ActionAdminViewStats,
		ActorID: audit.Actor(id.SubjectID()),
		Details: "Viewed dashboard stats",
	})
	return resp, nil
}

func (s *StatsService) Reports(ctx context.Context, id access.Identity) (*dto.ReportsResponse, error) {
	if _, err := access.Authorize(id, access.OpViewReports, nil); err != nil {
		return nil, err
	}

	resp, hit, err := s.reports.GetOrLoad(ctx, reportsCacheKey, s.computeReports)
	if err != nil {
		return nil, err
	}
	recordLookup(reportsCacheKey, hit)

	audit.Emit(ctx, s.sink, audit.Event{
		Action:  audit.ActionAdminViewReports,
		ActorID: audit.Actor(id.SubjectID()),
		Details: "Viewed reports",
	})
	return resp, nil
}

func recordLookup(key string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	metrics.CacheLookups.WithLabelValues(key, result).Inc()
}

type groupRow struct {
	GroupKey string
	Total    int64
}

func (s *StatsService) groupBy(ctx context.Context, column string) ([]dto.Bucket, error) {
	var rows []groupRow
	err := s.db.WithContext(ctx).Model(&models.Complaint{}).
		Select(column + " AS group_key, COUNT(*) AS total").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Internal("failed to aggregate complaints", err)
	}

	buckets := make([]dto.Bucket, 0, len(rows))
	for _, r := range rows {
		buckets = append(buckets, dto.Bucket{Key: r.GroupKey, Count: r.Total})
	}
	return buckets, nil
}

func (s *StatsService) computeStats(ctx context.Context) (*dto.StatsResponse, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.Complaint{}).Count(&total).Error; err != nil {
		return nil, apperr.Internal("failed to count complaints", err)
	}

	byStatus, err := s.groupBy(ctx, "status")
	if err != nil {
		return nil, err
	}
	byDept, err := s.groupBy(ctx, "department")
	if err != nil {
		return nil, err
	}

	// Every status is listed, zero counts included, in lifecycle order.
	counts := make(map[string]int64, len(byStatus))
	for _, b := range byStatus {
		counts[b.Key] = b.Count
	}
	statuses := make([]dto.Bucket, 0, len(models.Statuses))
	for _, st := range models.Statuses {
		statuses = append(statuses, dto.Bucket{Key: st, Count: counts[st]})
	}

	return &dto.StatsResponse{
		Total:              total,
		CountsByStatus:     statuses,
		CountsByDepartment: sortBuckets(byDept),
	}, nil
}

func (s *StatsService) computeReports(ctx context.Context) (*dto.ReportsResponse, error) {
	byDept, err := s.groupBy(ctx, "department")
	if err != nil {
		return nil, err
	}

	top, err := s.topActiveUsers(ctx)
	if err != nil {
		return nil, err
	}

	trend, err := s.trend(ctx)
	if err != nil {
		return nil, err
	}

	avg, err := s.avgResolutionHours(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.ReportsResponse{
		ByDepartment:       sortBuckets(byDept),
		TopActiveUsers:     top,
		Trend:              trend,
		AvgResolutionHours: avg,
	}, nil
}

// sortBuckets orders by count descending, then key ascending.
func sortBuckets(b []dto.Bucket) []dto.Bucket {
	sort.SliceStable(b, func(i, j int) bool {
		if b[i].Count != b[j].Count {
			return b[i].Count > b[j].Count
		}
		return b[i].Key < b[j].Key
	})
	return b
}

type ownerRow struct {
	UserID uuid.UUID
	Total  int64
}

// topActiveUsers skips owners whose user record no longer exists.
func (s *StatsService) topActiveUsers(ctx context.Context) ([]dto.ActiveUser, error) {
	var rows []ownerRow
	err := s.db.WithContext(ctx).Model(&models.Complaint{}).
		Select("user_id, COUNT(*) AS total").
		Group("user_id").
		Order("total DESC").
		Order("user_id").
		Limit(topActiveUsers).
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Internal("failed to rank users", err)
	}
	if len(rows) == 0 {
		return []dto.ActiveUser{}, nil
	}

	ids := make([]uuid.UUID, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.UserID)
	}
	var users []models.User
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, apperr.Internal("failed to load users", err)
	}
	byID := make(map[uuid.UUID]models.User, len(users))
	for _, u := range users {
		byID[u.ID] = u
	}

	out := make([]dto.ActiveUser, 0, len(rows))
	for _, r := range rows {
		u, ok := byID[r.UserID]
		if !ok {
			continue
		}
		out = append(out, dto.ActiveUser{UserID: u.ID, Name: u.Name, Email: u.Email, Count: r.Total})
	}
	return out, nil
}

// trend counts complaints per UTC day over the last 30 days, oldest first.
// Days without complaints are omitted.
func (s *StatsService) trend(ctx context.Context) ([]dto.Bucket, error) {
	since := s.now().UTC().AddDate(0, 0, -trendDays)

	var created []time.Time
	err := s.db.WithContext(ctx).Model(&models.Complaint{}).
		Where("created_at >= ?", since).
		Pluck("created_at", &created).Error
	if err != nil {
		return nil, apperr.Internal("failed to load trend", err)
	}

	counts := map[string]int64{}
	for _, t := range created {
		counts[t.UTC().Format(time.DateOnly)]++
	}
	out := make([]dto.Bucket, 0, len(counts))
	for day, n := range counts {
		out = append(out, dto.Bucket{Key: day, Count: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

type spanRow struct {
	CreatedAt time.Time
	UpdatedAt time.Time
}

// avgResolutionHours is the mean of updated_at - created_at over resolved
// complaints, rounded to the nearest hour. 0 when nothing is resolved.
func (s *StatsService) avgResolutionHours(ctx context.Context) (int64, error) {
	var rows []spanRow
	err := s.db.WithContext(ctx).Model(&models.Complaint{}).
		Select("created_at, updated_at").
		Where("status = ?", models.StatusResolved).
		Scan(&rows).Error
	if err != nil {
		return 0, apperr.Internal("failed to load resolution times", err)
	}
	if len(rows) == 0 {
		return 0, nil
	}

	var sum time.Duration
	for _, r := range rows {
		sum += r.UpdatedAt.Sub(r.CreatedAt)
	}
	mean := sum / time.Duration(len(rows))
	return int64(math.Round(mean.Hours())), nil
}
