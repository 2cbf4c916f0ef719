package access

import (
	"testing"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIdentity(t *testing.T) {
	id := uuid.New()

	u, err := NewIdentity(id, "user")
	require.NoError(t, err)
	assert.Equal(t, User{ID: id}, u)

	a, err := NewIdentity(id, "admin")
	require.NoError(t, err)
	assert.Equal(t, Admin{ID: id}, a)

	_, err = NewIdentity(id, "root")
	assert.Error(t, err)

	_, err = NewIdentity(uuid.Nil, "user")
	assert.Error(t, err)
}

func TestAuthorize_ListScope(t *testing.T) {
	userID := uuid.New()

	scope, err := Authorize(User{ID: userID}, OpListComplaints, nil)
	require.NoError(t, err)
	owner, ok := scope.OwnerID()
	assert.True(t, ok)
	assert.Equal(t, userID, owner)
	assert.False(t, scope.All())

	scope, err = Authorize(Admin{ID: uuid.New()}, OpListComplaints, nil)
	require.NoError(t, err)
	assert.True(t, scope.All())
}

func TestAuthorize_Read(t *testing.T) {
	owner := uuid.New()
	c := &models.Complaint{ID: uuid.New(), UserID: owner}

	_, err := Authorize(User{ID: owner}, OpReadComplaint, c)
	assert.NoError(t, err)

	_, err = Authorize(User{ID: uuid.New()}, OpReadComplaint, c)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = Authorize(Admin{ID: uuid.New()}, OpReadComplaint, c)
	assert.NoError(t, err)
}

func TestAuthorize_UpdateStatusAdminOnly(t *testing.T) {
	owner := uuid.New()
	c := &models.Complaint{ID: uuid.New(), UserID: owner}

	// Owning the complaint does not help.
	_, err := Authorize(User{ID: owner}, OpUpdateStatus, c)
	assert.ErrorIs(t, err, ErrAdminRequired)

	_, err = Authorize(Admin{ID: uuid.New()}, OpUpdateStatus, c)
	assert.NoError(t, err)
}

func TestAuthorize_ContentAndDeleteOwnerOnly(t *testing.T) {
	owner := uuid.New()
	c := &models.Complaint{ID: uuid.New(), UserID: owner}

	for _, op := range []Operation{OpUpdateContent, OpDeleteOwnComplaint} {
		_, err := Authorize(User{ID: owner}, op, c)
		assert.NoError(t, err, op)

		_, err = Authorize(User{ID: uuid.New()}, op, c)
		assert.ErrorIs(t, err, ErrNotOwner, op)

		_, err = Authorize(Admin{ID: uuid.New()}, op, c)
		assert.ErrorIs(t, err, ErrNotOwner, op)
	}
}

func TestAuthorize_AdminViews(t *testing.T) {
	ops := []Operation{OpAdminDeleteComplaint, OpViewStats, OpViewReports, OpViewUsers, OpViewActivity, OpViewLogs}
	for _, op := range ops {
		_, err := Authorize(User{ID: uuid.New()}, op, nil)
		assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err), op)

		scope, err := Authorize(Admin{ID: uuid.New()}, op, nil)
		assert.NoError(t, err, op)
		assert.True(t, scope.All())
	}
}

func TestAuthorize_NoIdentity(t *testing.T) {
	_, err := Authorize(nil, OpListComplaints, nil)
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(err))
	assert.Equal(t, apperr.KindUnauthenticated, apperr.KindOf(AdminOnly(nil)))
}

func TestScope_ZeroMatchesNothing(t *testing.T) {
	var s Scope
	assert.False(t, s.Contains(&models.Complaint{UserID: uuid.New()}))
	_, ok := s.OwnerID()
	assert.False(t, ok)
}
