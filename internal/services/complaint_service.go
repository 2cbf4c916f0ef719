package services

import (
	"context"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/access"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/audit"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/models"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/query"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/store"
	"github.com/google/uuid"
)

// ComplaintService runs every complaint operation as authorize, mutate, then emit.
type ComplaintService struct {
	store *store.ComplaintStore
	sink  audit.Sink
}

func NewComplaintService(store *store.ComplaintStore, sink audit.Sink) *ComplaintService {
	return &ComplaintService{store: store, sink: sink}
}

func (s *ComplaintService) List(ctx context.Context, id access.Identity, p query.Params) (*dto.ComplaintListResponse, error) {
	crit, err := query.Build(id, p)
	if err != nil {
		return nil, err
	}
	return s.list(ctx, crit)
}

// AdminList is the unscoped list with owner details.
func (s *ComplaintService) AdminList(ctx context.Context, id access.Identity, p query.Params) (*dto.ComplaintListResponse, error) {
	if err := access.AdminOnly(id); err != nil {
		return nil, err
	}
	crit, err := query.Build(id, p)
	if err != nil {
		return nil, err
	}
	crit.WithOwner = true

	resp, err := s.list(ctx, crit)
	if err != nil {
		return nil, err
	}
	audit.Emit(ctx, s.sink, audit.Event{
		Action:  audit.ActionAdminViewComplaints,
		ActorID: audit.Actor(id.SubjectID()),
		Details: "Viewed complaints list",
	})
	return resp, nil
}

func (s *ComplaintService) list(ctx context.Context, crit query.Criteria) (*dto.ComplaintListResponse, error) {
	items, total, err := s.store.Query(ctx, crit)
	if err != nil {
		return nil, err
	}
	return &dto.ComplaintListResponse{
		Complaints: items,
		Total:      total,
		Page:       crit.Page,
		Pages:      crit.Pages(total),
	}, nil
}

func (s *ComplaintService) Get(ctx context.Context, id access.Identity, complaintID uuid.UUID) (*models.Complaint, error) {
	c, err := s.store.Get(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if _, err := access.Authorize(id, access.OpReadComplaint, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Create always assigns the complaint to the caller.
func (s *ComplaintService) Create(ctx context.Context, id access.Identity, in store.NewComplaint) (*models.Complaint, error) {
	if _, err := access.Authorize(id, access.OpCreateComplaint, nil); err != nil {
		return nil, err
	}

	c, err := s.store.Create(ctx, access.Owner(id), in)
	if err != nil {
		audit.Emit(ctx, s.sink, audit.Event{
			Action:  audit.ActionComplaintCreateFail,
			ActorID: audit.Actor(id.SubjectID()),
			Details: "Complaint rejected: " + err.Error(),
			OpsOnly: true,
		})
		return nil, err
	}

	metrics.ComplaintMutations.WithLabelValues(audit.ActionComplaintCreate).Inc()
	audit.Emit(ctx, s.sink, audit.Event{
		Action:  audit.ActionComplaintCreate,
		ActorID: audit.Actor(id.SubjectID()),
		Details: "Created complaint: " + c.Title,
		Meta:    map[string]any{"complaint_id": c.ID.String(), "department": c.Department},
	})
	return c, nil
}

func (s *ComplaintService) UpdateContent(ctx context.Context, id access.Identity, complaintID uuid.UUID, patch store.ContentPatch) (*models.Complaint, error) {
	c, err := s.store.Get(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	if _, err := access.Authorize(id, access.OpUpdateContent, c); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateContent(ctx, complaintID, patch)
	if err != nil {
		return nil, err
	}

	metrics.ComplaintMutations.WithLabelValues(audit.ActionComplaintEdit).Inc()
	audit.Emit(ctx, s.sink, audit.Event{
		Action:  audit.ActionComplaintEdit,
		ActorID: audit.Actor(id.SubjectID()),
		Details: "Edited complaint: " + updated.Title,
		Meta:    map[string]any{"complaint_id": updated.ID.String()},
	})
	return updated, nil
}

// UpdateStatus is the status change reached through the complaints routes.
func (s *ComplaintService) UpdateStatus(ctx context.Context, id access.Identity, complaintID uuid.UUID, status string) (*models.Complaint, error) {
	return s.updateStatus(ctx, id, complaintID, status, audit.ActionComplaintUpdate)
}

// AdminUpdateStatus is the same change reached through the admin routes.
func (s *ComplaintService) AdminUpdateStatus(ctx context.Context, id access.Identity, complaintID uuid.UUID, status string) (*models.Complaint, error) {
	return s.updateStatus(ctx, id, complaintID, status, audit.ActionAdminUpdateStatus)
}

func (s *ComplaintService) updateStatus(ctx context.Context, id access.Identity, complaintID uuid.UUID, status, action string) (*models.Complaint, error) {
	if _, err := access.Authorize(id, access.OpUpdateStatus, nil); err != nil {
		return nil, err
	}

	prev, err := s.store.Get(ctx, complaintID)
	if err != nil {
		return nil, err
	}
	updated, err := s.store.UpdateStatus(ctx, complaintID, status)
	if err != nil {
		return nil, err
	}

	metrics.ComplaintMutations.WithLabelValues(action).Inc()
	audit.Emit(ctx, s.sink, audit.Event{
		Action:  action,
		ActorID: audit.Actor(id.SubjectID()),
		Details: "Updated status of " + updated.Title + " to " + updated.Status,
		Meta: map[string]any{
			"complaint_id": updated.ID.String(),
			"from":         prev.Status,
			"status":       updated.Status,
		},
	})
	return updated, nil
}

// Delete removes the caller's own complaint.
func (s *ComplaintService) Delete(ctx context.Context, id access.Identity, complaintID uuid.UUID) error {
	c, err := s.store.Get(ctx, complaintID)
	if err != nil {
		return err
	}
	if _, err := access.Authorize(id, access.OpDeleteOwnComplaint, c); err != nil {
		return err
	}
	return s.delete(ctx, id, c, audit.ActionComplaintDelete)
}

// AdminDelete removes any complaint.
func (s *ComplaintService) AdminDelete(ctx context.Context, id access.Identity, complaintID uuid.UUID) error {
	if _, err := access.Authorize(id, access.OpAdminDeleteComplaint, nil); err != nil {
		return err
	}
	c, err := s.store.Get(ctx, complaintID)
	if err != nil {
		return err
	}
	return s.delete(ctx, id, c, audit.ActionAdminDeleteComplaint)
}

func (s *ComplaintService) delete(ctx context.Context, id access.Identity, c *models.Complaint, action string) error {
	if err := s.store.Delete(ctx, c.ID); err != nil {
		return err
	}

	metrics.ComplaintMutations.WithLabelValues(action).Inc()
	audit.Emit(ctx, s.sink, audit.Event{
		Action:  action,
		ActorID: audit.Actor(id.SubjectID()),
		Details: "Deleted complaint: " + c.Title,
		Meta:    map[string]any{"complaint_id": c.ID.String(), "owner_id": c.UserID.String()},
	})
	return nil
}
