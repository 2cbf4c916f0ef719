package services

import (
	"context"
	"testing"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/access"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/audit"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/models"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/query"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/store"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newComplaint() store.NewComplaint {
	return store.NewComplaint{Title: "Broken AC", Description: "Air conditioning is broken in lab 3", Department: "Facilities"}
}

func TestComplaintService_CreateForcesOwner(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.db, "Alice", "alice@example.com", models.RoleUser)

	c, err := f.complaints.Create(context.Background(), access.User{ID: alice.ID}, newComplaint())
	require.NoError(t, err)
	assert.Equal(t, alice.ID, c.UserID)
	assert.Equal(t, models.StatusPending, c.Status)

	e := f.sink.last()
	assert.Equal(t, audit.ActionComplaintCreate, e.Action)
	assert.Equal(t, alice.ID, *e.ActorID)
	assert.Equal(t, c.ID.String(), e.Meta["complaint_id"])
}

func TestComplaintService_CreateInvalidEmitsFailure(t *testing.T) {
	f := newFixture(t)
	alice := testutil.CreateUser(t, f.db, "Alice", "alice@example.com", models.RoleUser)

	in := newComplaint()
	in.Title = "Four"
	_, err := f.complaints.Create(context.Background(), access.User{ID: alice.ID}, in)
	assert.True(t, apperr.HasField(err, "title"))

	e := f.sink.last()
	assert.Equal(t, audit.ActionComplaintCreateFail, e.Action)
	assert.True(t, e.OpsOnly)
}

func TestComplaintService_ListScoped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := access.User{ID: testutil.CreateUser(t, f.db, "Alice", "alice@example.com", models.RoleUser).ID}
	bob := access.User{ID: testutil.CreateUser(t, f.db, "Bob", "bob@example.com", models.RoleUser).ID}

	for i := 0; i < 3; i++ {
		_, err := f.complaints.Create(ctx, alice, newComplaint())
		require.NoError(t, err)
	}
	_, err := f.complaints.Create(ctx, bob, newComplaint())
	require.NoError(t, err)

	resp, err := f.complaints.List(ctx, alice, query.Params{})
	require.NoError(t, err)
	assert.EqualValues(t, 3, resp.Total)
	assert.Equal(t, 1, resp.Pages)
	for _, c := range resp.Complaints {
		assert.Equal(t, alice.ID, c.UserID)
	}

	_, err = f.complaints.AdminList(ctx, alice, query.Params{})
	assert.ErrorIs(t, err, access.ErrAdminRequired)

	admin := access.Admin{ID: testutil.CreateUser(t, f.db, "Root", "root@example.com", models.RoleAdmin).ID}
	all, err := f.complaints.AdminList(ctx, admin, query.Params{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, all.Total)
	require.NotNil(t, all.Complaints[0].User)
	assert.Equal(t, audit.ActionAdminViewComplaints, f.sink.last().Action)
}

func TestComplaintService_GetOwnership(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := access.User{ID: testutil.CreateUser(t, f.db, "Alice", "alice@example.com", models.RoleUser).ID}
	bob := access.User{ID: testutil.CreateUser(t, f.db, "Bob", "bob@example.com", models.RoleUser).ID}

	c, err := f.complaints.Create(ctx, alice, newComplaint())
	require.NoError(t, err)

	_, err = f.complaints.Get(ctx, alice, c.ID)
	assert.NoError(t, err)

	_, err = f.complaints.Get(ctx, bob, c.ID)
	assert.ErrorIs(t, err, access.ErrAccessDenied)

	_, err = f.complaints.Get(ctx, access.Admin{ID: bob.ID}, c.ID)
	assert.NoError(t, err)
}

func TestComplaintService_NonOwnerEditForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := access.User{ID: testutil.CreateUser(t, f.db, "Alice", "alice@example.com", models.RoleUser).ID}
	bob := access.User{ID: testutil.CreateUser(t, f.db, "Bob", "bob@example.com", models.RoleUser).ID}

	c, err := f.complaints.Create(ctx, alice, newComplaint())
	require.NoError(t, err)
	before := len(f.sink.actions())

	_, err = f.complaints.UpdateContent(ctx, bob, c.ID, store.ContentPatch{Title: "Hijacked title"})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// Admins have no bypass either.
	_, err = f.complaints.UpdateContent(ctx, access.Admin{ID: bob.ID}, c.ID, store.ContentPatch{Title: "Hijacked title"})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	got, err := f.store.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, c.Title, got.Title)
	assert.Len(t, f.sink.actions(), before)

	edited, err := f.complaints.UpdateContent(ctx, alice, c.ID, store.ContentPatch{Title: "Broken AC again"})
	require.NoError(t, err)
	assert.Equal(t, "Broken AC again", edited.Title)
	assert.Equal(t, audit.ActionComplaintEdit, f.sink.last().Action)
}

func TestComplaintService_StatusAdminOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := access.User{ID: testutil.CreateUser(t, f.db, "Alice", "alice@example.com", models.RoleUser).ID}
	admin := access.Admin{ID: testutil.CreateUser(t, f.db, "Root", "root@example.com", models.RoleAdmin).ID}

	c, err := f.complaints.Create(ctx, alice, newComplaint())
	require.NoError(t, err)

	_, err = f.complaints.UpdateStatus(ctx, alice, c.ID, models.StatusResolved)
	assert.ErrorIs(t, err, access.ErrAdminRequired)

	_, err = f.complaints.AdminUpdateStatus(ctx, admin, c.ID, "Done")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	updated, err := f.complaints.AdminUpdateStatus(ctx, admin, c.ID, models.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInProgress, updated.Status)

	e := f.sink.last()
	assert.Equal(t, audit.ActionAdminUpdateStatus, e.Action)
	assert.Equal(t, models.StatusPending, e.Meta["from"])
	assert.Equal(t, models.StatusInProgress, e.Meta["status"])

	_, err = f.complaints.UpdateStatus(ctx, admin, c.ID, models.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, audit.ActionComplaintUpdate, f.sink.last().Action)
}

func TestComplaintService_Delete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	alice := access.User{ID: testutil.CreateUser(t, f.db, "Alice", "alice@example.com", models.RoleUser).ID}
	bob := access.User{ID: testutil.CreateUser(t, f.db, "Bob", "bob@example.com", models.RoleUser).ID}
	admin := access.Admin{ID: testutil.CreateUser(t, f.db, "Root", "root@example.com", models.RoleAdmin).ID}

	c1, err := f.complaints.Create(ctx, alice, newComplaint())
	require.NoError(t, err)
	c2, err := f.complaints.Create(ctx, alice, newComplaint())
	require.NoError(t, err)

	assert.ErrorIs(t, f.complaints.Delete(ctx, bob, c1.ID), access.ErrNotOwner)
	assert.ErrorIs(t, f.complaints.Delete(ctx, admin, c1.ID), access.ErrNotOwner)
	assert.ErrorIs(t, f.complaints.AdminDelete(ctx, bob, c1.ID), access.ErrAdminRequired)

	require.NoError(t, f.complaints.Delete(ctx, alice, c1.ID))
	assert.Equal(t, audit.ActionComplaintDelete, f.sink.last().Action)
	assert.ErrorIs(t, f.complaints.Delete(ctx, alice, c1.ID), store.ErrComplaintNotFound)

	require.NoError(t, f.complaints.AdminDelete(ctx, admin, c2.ID))
	assert.Equal(t, audit.ActionAdminDeleteComplaint, f.sink.last().Action)
	assert.ErrorIs(t, f.complaints.AdminDelete(ctx, admin, c2.ID), store.ErrComplaintNotFound)
}
