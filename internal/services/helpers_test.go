package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/audit"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/config"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/store"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/testutil"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type recordingSink struct {
	mu     sync.Mutex
	events []audit.Event
}

func (r *recordingSink) Record(_ context.Context, e audit.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingSink) actions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.Action)
	}
	return out
}

func (r *recordingSink) last() audit.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.events[len(r.events)-1]
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:     "test-secret",
		JWTIssuer:     "test",
		JWTExpiry:     24 * time.Hour,
		AdminTokenTTL: 2 * time.Hour,
		AdminEmail:    "admin@example.com",
		AdminPassword: "bootstrap-pass",
		AdminName:     "Admin",
		StatsCacheTTL: time.Minute,
	}
}

type fixture struct {
	db         *gorm.DB
	cfg        *config.Config
	sink       *recordingSink
	tokens     *TokenService
	auth       *AuthService
	complaints *ComplaintService
	store      *store.ComplaintStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewDB(t)
	cfg := testConfig()
	sink := &recordingSink{}
	tokens := NewTokenService(cfg.JWTSecret, cfg.JWTIssuer)
	cs := store.NewComplaintStore(db)
	return &fixture{
		db:         db,
		cfg:        cfg,
		sink:       sink,
		tokens:     tokens,
		auth:       NewAuthService(db, cfg, tokens, sink).WithHashCost(bcrypt.MinCost),
		complaints: NewComplaintService(cs, sink),
		store:      cs,
	}
}
