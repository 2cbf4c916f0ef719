package access

import (
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/models"
	"github.com/google/uuid"
)

type Operation string

const (
	OpListComplaints       Operation = "list_complaints"
	OpReadComplaint        Operation = "read_complaint"
	OpCreateComplaint      Operation = "create_complaint"
	OpUpdateStatus         Operation = "update_status"
	OpUpdateContent        Operation = "update_content"
	OpDeleteOwnComplaint   Operation = "delete_own_complaint"
	OpAdminDeleteComplaint Operation = "admin_delete_complaint"
	OpViewStats            Operation = "view_stats"
	OpViewReports          Operation = "view_reports"
	OpViewUsers            Operation = "view_users"
	OpViewActivity         Operation = "view_activity"
	OpViewLogs             Operation = "view_logs"
)

var (
	ErrAccessDenied  = apperr.Forbidden("Access denied")
	ErrAdminRequired = apperr.Forbidden("Admin access required")
	ErrNotOwner      = apperr.Forbidden("Not authorized to modify this complaint")
	ErrNoIdentity    = apperr.New(apperr.KindUnauthenticated, "Unauthorized")
)

// Authorize checks op for the caller. target is the complaint acted on for
// read, update and delete operations and may be nil otherwise. The returned
// Scope is the set of complaints the caller may observe.
func Authorize(id Identity, op Operation, target *models.Complaint) (Scope, error) {
	if id == nil {
		return Scope{}, ErrNoIdentity
	}
	scope := ScopeFor(id)

	switch op {
	case OpListComplaints, OpCreateComplaint:
		return scope, nil

	case OpReadComplaint:
		if target == nil || !scope.Contains(target) {
			return Scope{}, ErrAccessDenied
		}
		return scope, nil

	case OpUpdateContent, OpDeleteOwnComplaint:
		// Owner only, admins included.
		if target == nil || !target.OwnedBy(id.SubjectID()) {
			return Scope{}, ErrNotOwner
		}
		return OwnerScope(id.SubjectID()), nil

	case OpUpdateStatus, OpAdminDeleteComplaint,
		OpViewStats, OpViewReports, OpViewUsers, OpViewActivity, OpViewLogs:
		if err := AdminOnly(id); err != nil {
			return Scope{}, err
		}
		return AllScope(), nil
	}

	return Scope{}, ErrAccessDenied
}

// AdminOnly returns nil for admins and a FORBIDDEN error for everyone else.
func AdminOnly(id Identity) error {
	if id == nil {
		return ErrNoIdentity
	}
	if !IsAdmin(id) {
		return ErrAdminRequired
	}
	return nil
}

// ScopeFor is the complaint scope of a list or read by id.
func ScopeFor(id Identity) Scope {
	if IsAdmin(id) {
		return AllScope()
	}
	return OwnerScope(id.SubjectID())
}

// Owner returns the owner assigned to a complaint created by id.
func Owner(id Identity) uuid.UUID {
	return id.SubjectID()
}
