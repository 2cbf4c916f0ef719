// Package audit records security and mutation events through a single Sink.
package audit

import (
	"context"
	"log/slog"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/metrics"
	"github.com/google/uuid"
)

const (
	ActionRegister             = "REGISTER"
	ActionRegisterFail         = "REGISTER_FAIL"
	ActionLogin                = "LOGIN"
	ActionLoginFail            = "LOGIN_FAIL"
	ActionAdminLogin           = "ADMIN_LOGIN"
	ActionAdminLoginFail       = "ADMIN_LOGIN_FAIL"
	ActionComplaintCreate      = "COMPLAINT_CREATE"
	ActionComplaintCreateFail  = "COMPLAINT_CREATE_FAIL"
	ActionComplaintEdit        = "COMPLAINT_EDIT"
	ActionComplaintUpdate      = "COMPLAINT_UPDATE"
	ActionComplaintDelete      = "COMPLAINT_DELETE"
	ActionAdminUpdateStatus    = "ADMIN_UPDATE_STATUS"
	ActionAdminDeleteComplaint = "ADMIN_DELETE_COMPLAINT"
	ActionAdminViewComplaints  = "ADMIN_VIEW_COMPLAINTS"
	ActionAdminViewStats       = "ADMIN_VIEW_STATS"
	ActionAdminViewReports     = "ADMIN_VIEW_REPORTS"
	ActionAdminViewActivities  = "ADMIN_VIEW_ACTIVITIES"
	ActionAdminViewUsers       = "ADMIN_VIEW_USERS"
	ActionAdminViewLogs        = "ADMIN_VIEW_LOGS"
)

// Event is one auditable occurrence. OpsOnly events skip the activity log
// and only reach operational sinks.
type Event struct {
	Action    string
	ActorID   *uuid.UUID
	ActorName string
	Details   string
	Meta      map[string]any
	OpsOnly   bool
}

// Sink records events.
type Sink interface {
	Record(ctx context.Context, e Event) error
}

type originKey struct{}

// WithOrigin attaches the client origin (IP) to ctx.
func WithOrigin(ctx context.Context, origin string) context.Context {
	return context.WithValue(ctx, originKey{}, origin)
}

func OriginFrom(ctx context.Context) string {
	origin, _ := ctx.Value(originKey{}).(string)
	return origin
}

// Actor is a convenience for Event.ActorID.
func Actor(id uuid.UUID) *uuid.UUID {
	return &id
}

// Emit records e and never fails the caller. Sink failures are logged and counted.
func Emit(ctx context.Context, sink Sink, e Event) {
	if sink == nil {
		return
	}
	if err := sink.Record(ctx, e); err != nil {
		// MultiSink counts its failing children itself.
		if _, multi := sink.(*MultiSink); !multi {
			metrics.AuditSinkFailures.WithLabelValues(sinkName(sink)).Inc()
		}
		slog.ErrorContext(ctx, "audit event not recorded", "action", e.Action, "error", err)
	}
}

func sinkName(s Sink) string {
	switch s.(type) {
	case *MultiSink:
		return "multi"
	case *ActivityStore:
		return "activity"
	case *FileSink:
		return "file"
	case *SlogSink:
		return "slog"
	default:
		return "other"
	}
}
