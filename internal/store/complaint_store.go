// Package store persists complaints and answers scoped, filtered queries.
package store

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/models"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/query"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/validation"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrComplaintNotFound = apperr.NotFound("complaint")

// NewComplaint holds the caller-supplied fields of a complaint.
type NewComplaint struct {
	Title       string `json:"title" validate:"required,min=5,max=100"`
	Description string `json:"description" validate:"required,min=10,max=1000"`
	Department  string `json:"department" validate:"required,max=100"`
}

// ContentPatch holds optional content updates. Empty fields are left as they are.
type ContentPatch struct {
	Title       string `json:"title" validate:"omitempty,min=5,max=100"`
	Description string `json:"description" validate:"omitempty,min=10,max=1000"`
	Department  string `json:"department" validate:"omitempty,max=100"`
}

func (p ContentPatch) Empty() bool {
	return p.Title == "" && p.Description == "" && p.Department == ""
}

type ComplaintStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewComplaintStore(db *gorm.DB) *ComplaintStore {
	return &ComplaintStore{db: db, now: time.Now}
}

// WithClock replaces the store clock. Used by tests.
func (s *ComplaintStore) WithClock(now func() time.Time) *ComplaintStore {
	s.now = now
	return s
}

func (s *ComplaintStore) DB() *gorm.DB { return s.db }

func (s *ComplaintStore) Create(ctx context.Context, ownerID uuid.UUID, in NewComplaint) (*models.Complaint, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Department = strings.TrimSpace(in.Department)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	c := &models.Complaint{
		ID:          uuid.New(),
		Title:       in.Title,
		Description: in.Description,
		Department:  in.Department,
		Status:      models.StatusPending,
		UserID:      ownerID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, apperr.Internal("failed to create complaint", err)
	}
	return c, nil
}

func (s *ComplaintStore) Get(ctx context.Context, id uuid.UUID) (*models.Complaint, error) {
	var c models.Complaint
	if err := s.db.WithContext(ctx).First(&c, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrComplaintNotFound
		}
		return nil, apperr.Internal("failed to load complaint", err)
	}
	return &c, nil
}

// UpdateStatus sets status and updated_at only.
func (s *ComplaintStore) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*models.Complaint, error) {
	if !models.IsValidStatus(status) {
		return nil, apperr.Validation(apperr.FieldError{
			Field:   "status",
			Message: "status must be one of " + strings.Join(models.Statuses, ", "),
		})
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updatedAt := s.touch(c)
	res := s.db.WithContext(ctx).Model(&models.Complaint{}).Where("id = ?", id).Updates(map[string]any{
		"status":     status,
		"updated_at": updatedAt,
	})
	if res.Error != nil {
		return nil, apperr.Internal("failed to update complaint status", res.Error)
	}
	// Deleted between the read and the write.
	if res.RowsAffected == 0 {
		return nil, ErrComplaintNotFound
	}
	c.Status = status
	c.UpdatedAt = updatedAt
	return c, nil
}

// UpdateContent applies the non-empty fields of patch.
func (s *ComplaintStore) UpdateContent(ctx context.Context, id uuid.UUID, patch ContentPatch) (*models.Complaint, error) {
	patch.Title = strings.TrimSpace(patch.Title)
	patch.Department = strings.TrimSpace(patch.Department)
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}

	c, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if patch.Title != "" {
		updates["title"] = patch.Title
		c.Title = patch.Title
	}
	if patch.Description != "" {
		updates["description"] = patch.Description
		c.Description = patch.Description
	}
	if patch.Department != "" {
		updates["department"] = patch.Department
		c.Department = patch.Department
	}
	c.UpdatedAt = s.touch(c)
	updates["updated_at"] = c.UpdatedAt

	res := s.db.WithContext(ctx).Model(&models.Complaint{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return nil, apperr.Internal("failed to update complaint", res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrComplaintNotFound
	}
	return c, nil
}

func (s *ComplaintStore) Delete(ctx context.Context, id uuid.UUID) error {
	res := s.db.WithContext(ctx).Delete(&models.Complaint{}, "id = ?", id)
	if res.Error != nil {
		return apperr.Internal("failed to delete complaint", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrComplaintNotFound
	}
	return nil
}

// Query returns one page of complaints matching crit and the total match count.
func (s *ComplaintStore) Query(ctx context.Context, crit query.Criteria) ([]models.Complaint, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.Complaint{}).Scopes(crit.Scope.Apply(), filters(crit)).Session(&gorm.Session{})

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, apperr.Internal("failed to count complaints", err)
	}

	order := "complaints." + crit.SortColumn
	tie := "complaints.id"
	if crit.SortDesc {
		order += " DESC"
		tie += " DESC"
	}

	q := base.Order(order).Order(tie).Offset(crit.Offset()).Limit(crit.Limit)
	if crit.WithOwner {
		q = q.Preload("User")
	}

	complaints := []models.Complaint{}
	if err := q.Find(&complaints).Error; err != nil {
		return nil, 0, apperr.Internal("failed to list complaints", err)
	}
	return complaints, total, nil
}

func (s *ComplaintStore) touch(c *models.Complaint) time.Time {
	now := s.now().UTC()
	if now.Before(c.CreatedAt) {
		return c.CreatedAt
	}
	return now
}

func filters(crit query.Criteria) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if crit.Status != "" {
			db = db.Where("complaints.status = ?", crit.Status)
		}
		if crit.Department != "" {
			db = db.Where("complaints.department = ?", crit.Department)
		}
		if crit.From != nil {
			db = db.Where("complaints.created_at >= ?", *crit.From)
		}
		if crit.To != nil {
			db = db.Where("complaints.created_at <= ?", *crit.To)
		}
		if crit.Search != "" {
			pattern := "%" + escapeLike(strings.ToLower(crit.Search)) + "%"
			db = db.Where(`(LOWER(complaints.title) LIKE ? ESCAPE '\' OR LOWER(complaints.description) LIKE ? ESCAPE '\')`, pattern, pattern)
		}
		return db
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
