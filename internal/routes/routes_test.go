package routes

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/audit"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/config"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/handlers"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/models"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/services"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/store"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/testutil"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()

	cfg := &config.Config{
		JWTSecret:     "test-secret",
		JWTIssuer:     "test",
		JWTExpiry:     time.Hour,
		AdminTokenTTL: 2 * time.Hour,
		AdminEmail:    "admin@example.com",
		AdminPassword: "admin-pass",
		AdminName:     "Admin",
		StatsCacheTTL: time.Minute,
		CORSOrigins:   "*",
	}
	db := testutil.NewDB(t)

	activities := audit.NewActivityStore(db)
	events := audit.NewFileSink(filepath.Join(t.TempDir(), "log.txt"), 0)
	sink := audit.NewMultiSink(activities, events)

	tokens := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer)
	authService := services.NewAuthService(db, cfg, tokens, sink).WithHashCost(bcrypt.MinCost)
	complaintService := services.NewComplaintService(store.NewComplaintStore(db), sink)
	statsService := services.NewStatsService(db, sink, cfg.StatsCacheTTL)
	adminService := services.NewAdminService(db, activities, events, sink)

	app := NewApp(cfg, false)
	Setup(app, cfg, tokens, Handlers{
		Auth:      handlers.NewAuthHandler(authService),
		Complaint: handlers.NewComplaintHandler(complaintService),
		Admin:     handlers.NewAdminHandler(statsService, adminService),
		Health:    handlers.NewHealthHandler(db),
	}, nil)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, token string, body any) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

func register(t *testing.T, app *fiber.App, name, email string) dto.AuthResponse {
	t.Helper()
	resp, raw := do(t, app, http.MethodPost, "/api/auth/register", "", dto.RegisterRequest{Name: name, Email: email, Password: "secret1"})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var out dto.AuthResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func adminToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp, raw := do(t, app, http.MethodPost, "/api/admin/login", "", dto.LoginRequest{Email: "admin@example.com", Password: "admin-pass"})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))

	var out dto.AuthResponse
	require.NoError(t, json.Unmarshal(raw, &out))
	return out.Token
}

func createComplaint(t *testing.T, app *fiber.App, token string) models.Complaint {
	t.Helper()
	resp, raw := do(t, app, http.MethodPost, "/api/complaints", token, map[string]string{
		"title":       "Broken chair",
		"description": "The chair in room 12 is broken",
		"department":  "Facilities",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	var c models.Complaint
	require.NoError(t, json.Unmarshal(raw, &c))
	return c
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	resp, raw := do(t, app, http.MethodGet, "/api/health", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"db":"ok"`)
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
}

func TestComplaints_RequireToken(t *testing.T) {
	app := newTestApp(t)

	resp, raw := do(t, app, http.MethodGet, "/api/complaints", "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Contains(t, string(raw), "UNAUTHENTICATED")

	resp, _ = do(t, app, http.MethodGet, "/api/complaints", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestComplaintLifecycle(t *testing.T) {
	app := newTestApp(t)
	alice := register(t, app, "Alice", "alice@example.com")
	bob := register(t, app, "Bob", "bob@example.com")

	c := createComplaint(t, app, alice.Token)
	assert.Equal(t, models.StatusPending, c.Status)
	assert.Equal(t, alice.User.ID, c.UserID)

	// Scoped list.
	resp, raw := do(t, app, http.MethodGet, "/api/complaints?page=1&limit=10", bob.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list dto.ComplaintListResponse
	require.NoError(t, json.Unmarshal(raw, &list))
	assert.EqualValues(t, 0, list.Total)

	// Bob cannot read, edit, delete or change status.
	resp, _ = do(t, app, http.MethodGet, "/api/complaints/"+c.ID.String(), bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = do(t, app, http.MethodPut, "/api/complaints/"+c.ID.String(), bob.Token, map[string]string{"title": "Hijacked"})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = do(t, app, http.MethodDelete, "/api/complaints/"+c.ID.String(), bob.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	resp, _ = do(t, app, http.MethodPut, "/api/complaints/admin/"+c.ID.String(), alice.Token, dto.UpdateStatusRequest{Status: models.StatusResolved})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Owner edits.
	resp, raw = do(t, app, http.MethodPut, "/api/complaints/"+c.ID.String(), alice.Token, map[string]string{"title": "Broken chairs", "description": ""})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	assert.Contains(t, string(raw), "Broken chairs")
	assert.Contains(t, string(raw), "room 12")

	// Admin changes status through both routes.
	admin := adminToken(t, app)
	resp, raw = do(t, app, http.MethodPut, "/api/complaints/admin/"+c.ID.String(), admin, dto.UpdateStatusRequest{Status: models.StatusInProgress})
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	resp, raw = do(t, app, http.MethodPut, "/api/admin/complaints/"+c.ID.String()+"/status", admin, dto.UpdateStatusRequest{Status: "Closed"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, string(raw), `"field":"status"`)
	resp, _ = do(t, app, http.MethodPut, "/api/admin/complaints/"+c.ID.String()+"/status", admin, dto.UpdateStatusRequest{Status: models.StatusResolved})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, raw = do(t, app, http.MethodGet, "/api/complaints/"+c.ID.String(), alice.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), models.StatusResolved)

	// Owner deletes, then the id is gone.
	resp, _ = do(t, app, http.MethodDelete, "/api/complaints/"+c.ID.String(), alice.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp, _ = do(t, app, http.MethodDelete, "/api/complaints/"+c.ID.String(), alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = do(t, app, http.MethodGet, "/api/complaints/not-a-uuid", alice.Token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestCreateComplaint_Validation(t *testing.T) {
	app := newTestApp(t)
	alice := register(t, app, "Alice", "alice@example.com")

	resp, raw := do(t, app, http.MethodPost, "/api/complaints", alice.Token, map[string]string{
		"title":       "Four",
		"description": "Long enough description",
		"department":  "IT",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.True(t, body.Error)
	assert.Equal(t, "VALIDATION_ERROR", body.Code)
	require.Len(t, body.Fields, 1)
	assert.Equal(t, "title", body.Fields[0].Field)
}

func TestAdminRoutes(t *testing.T) {
	app := newTestApp(t)
	alice := register(t, app, "Alice", "alice@example.com")
	createComplaint(t, app, alice.Token)

	for _, path := range []string{"/api/admin/stats", "/api/admin/reports", "/api/admin/users", "/api/admin/activities", "/api/admin/logs", "/api/admin/complaints"} {
		resp, _ := do(t, app, http.MethodGet, path, alice.Token, nil)
		assert.Equal(t, http.StatusForbidden, resp.StatusCode, path)
	}

	admin := adminToken(t, app)

	resp, raw := do(t, app, http.MethodGet, "/api/admin/stats", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(raw))
	var stats dto.StatsResponse
	require.NoError(t, json.Unmarshal(raw, &stats))
	assert.EqualValues(t, 1, stats.Total)

	resp, raw = do(t, app, http.MethodGet, "/api/admin/complaints", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), `"name":"Alice"`)

	resp, raw = do(t, app, http.MethodGet, "/api/admin/activities?limit=5", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var acts dto.ActivityListResponse
	require.NoError(t, json.Unmarshal(raw, &acts))
	assert.NotEmpty(t, acts.Logs)

	resp, raw = do(t, app, http.MethodGet, "/api/admin/logs?action=COMPLAINT_CREATE", admin, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var logs dto.LogsResponse
	require.NoError(t, json.Unmarshal(raw, &logs))
	assert.Equal(t, 1, logs.Count)

	resp, raw = do(t, app, http.MethodGet, "/log.txt", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "[REGISTER]")
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/plain")

	resp, _ = do(t, app, http.MethodPost, "/api/admin/login", "", dto.LoginRequest{Email: "admin@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestMetricsEndpoint(t *testing.T) {
	app := newTestApp(t)
	resp, raw := do(t, app, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(raw), "go_goroutines")
}
