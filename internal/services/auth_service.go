package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/access"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/apperr"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/audit"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/config"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/dto"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/metrics"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/models"
	"github.com/ahmetcoskunkizilkaya/complaint-desk/internal/validation"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	ErrEmailTaken         = apperr.New(apperr.KindConflict, "email already registered")
	ErrInvalidCredentials = apperr.New(apperr.KindUnauthenticated, "invalid email or password")
	ErrUserNotFound       = apperr.NotFound("user")
	ErrBootstrapConflict  = apperr.New(apperr.KindConflict, "admin email belongs to a regular account, run createadmin to promote it")
)

type AuthService struct {
	db     *gorm.DB
	cfg    *config.Config
	tokens *TokenService
	sink   audit.Sink
	cost   int
}

func NewAuthService(db *gorm.DB, cfg *config.Config, tokens *TokenService, sink audit.Sink) *AuthService {
	return &AuthService{db: db, cfg: cfg, tokens: tokens, sink: sink, cost: bcrypt.DefaultCost}
}

// WithHashCost lowers the bcrypt cost. Used by tests.
func (s *AuthService) WithHashCost(cost int) *AuthService {
	s.cost = cost
	return s
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		s.fail(ctx, audit.ActionRegisterFail, "register", "Registration rejected for "+req.Email)
		return nil, err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		return nil, apperr.Internal("failed to check email", err)
	}
	if count > 0 {
		s.fail(ctx, audit.ActionRegisterFail, "register", "Email already registered: "+req.Email)
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}

	user := models.User{
		ID:       uuid.New(),
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hash),
		Role:     models.RoleUser,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrEmailTaken
		}
		return nil, apperr.Internal("failed to create user", err)
	}

	metrics.AuthAttempts.WithLabelValues("register", "success").Inc()
	audit.Emit(ctx, s.sink, audit.Event{
		Action:    audit.ActionRegister,
		ActorID:   audit.Actor(user.ID),
		ActorName: user.Name,
		Details:   "User registered: " + user.Email,
	})
	return s.respond(&user, s.cfg.JWTExpiry)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.checkPassword(ctx, req)
	if err != nil {
		s.fail(ctx, audit.ActionLoginFail, "login", "Failed login for "+normalizeEmail(req.Email))
		return nil, err
	}

	metrics.AuthAttempts.WithLabelValues("login", "success").Inc()
	audit.Emit(ctx, s.sink, audit.Event{
		Action:    audit.ActionLogin,
		ActorID:   audit.Actor(user.ID),
		ActorName: user.Name,
		Details:   "User logged in",
	})
	return s.respond(user, s.cfg.JWTExpiry)
}

// AdminLogin accepts the bootstrap credential pair from configuration or
// the password of an existing admin user. Tokens last AdminTokenTTL.
func (s *AuthService) AdminLogin(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	var user *models.User
	if s.isBootstrapCredential(email, req.Password) {
		u, err := s.provisionAdmin(ctx, email, req.Password, s.cfg.AdminName, false)
		if err != nil {
			s.fail(ctx, audit.ActionAdminLoginFail, "admin_login", "Bootstrap admin login refused for "+email)
			return nil, err
		}
		user = u
	} else {
		u, err := s.checkPassword(ctx, req)
		if err == nil && !u.IsAdmin() {
			err = ErrInvalidCredentials
		}
		if err != nil {
			s.fail(ctx, audit.ActionAdminLoginFail, "admin_login", "Failed admin login for "+email)
			return nil, err
		}
		user = u
	}

	metrics.AuthAttempts.WithLabelValues("admin_login", "success").Inc()
	audit.Emit(ctx, s.sink, audit.Event{
		Action:    audit.ActionAdminLogin,
		ActorID:   audit.Actor(user.ID),
		ActorName: user.Name,
		Details:   "Admin logged in",
	})
	return s.respond(user, s.cfg.AdminTokenTTL)
}

func (s *AuthService) Profile(ctx context.Context, id access.Identity) (*dto.UserResponse, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id.SubjectID()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, apperr.Internal("failed to load profile", err)
	}
	resp := dto.NewUserResponse(&user)
	return &resp, nil
}

// ProvisionAdmin creates an admin user, or promotes an existing user and
// resets their password.
func (s *AuthService) ProvisionAdmin(ctx context.Context, email, password, name string) (*models.User, error) {
	if len(password) < 6 {
		return nil, apperr.Validation(apperr.FieldError{Field: "password", Message: "password must be at least 6 characters"})
	}
	return s.provisionAdmin(ctx, normalizeEmail(email), password, name, true)
}

// provisionAdmin returns the admin user for email, creating it when missing.
// Only promote may turn an existing regular account into an admin, and it
// always replaces that account's password.
func (s *AuthService) provisionAdmin(ctx context.Context, email, password, name string, promote bool) (*models.User, error) {
	if email == "" {
		return nil, apperr.Validation(apperr.FieldError{Field: "email", Message: "email is required"})
	}

	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
		if err != nil {
			return nil, apperr.Internal("failed to hash password", err)
		}
		if name == "" {
			name = "Administrator"
		}
		user = models.User{ID: uuid.New(), Name: name, Email: email, Password: string(hash), Role: models.RoleAdmin}
		if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
			return nil, apperr.Internal("failed to create admin", err)
		}
		return &user, nil
	case err != nil:
		return nil, apperr.Internal("failed to load admin", err)
	}

	if !promote {
		if !user.IsAdmin() {
			return nil, ErrBootstrapConflict
		}
		return &user, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperr.Internal("failed to hash password", err)
	}
	updates := map[string]any{"role": models.RoleAdmin, "password": string(hash)}
	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, apperr.Internal("failed to promote admin", err)
	}
	user.Role = models.RoleAdmin
	user.Password = string(hash)
	return &user, nil
}

func (s *AuthService) isBootstrapCredential(email, password string) bool {
	if s.cfg.AdminPassword == "" || email == "" {
		return false
	}
	emailOK := subtle.ConstantTimeCompare([]byte(email), []byte(normalizeEmail(s.cfg.AdminEmail))) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(s.cfg.AdminPassword)) == 1
	return emailOK && passOK
}

func (s *AuthService) checkPassword(ctx context.Context, req *dto.LoginRequest) (*models.User, error) {
	email := normalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return nil, ErrInvalidCredentials
	}

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return &user, nil
}

func (s *AuthService) respond(user *models.User, ttl time.Duration) (*dto.AuthResponse, error) {
	token, err := s.tokens.Issue(user.ID, access.Role(user.Role), ttl)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponse{Token: token, User: dto.NewUserResponse(user)}, nil
}

func (s *AuthService) fail(ctx context.Context, action, kind, details string) {
	metrics.AuthAttempts.WithLabelValues(kind, "failure").Inc()
	audit.Emit(ctx, s.sink, audit.Event{Action: action, Details: details, OpsOnly: true})
}
