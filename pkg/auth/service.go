package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/platinummonkey/teamboard/pkg/observability"
	"github.com/platinummonkey/teamboard/pkg/storage"
	"github.com/platinummonkey/teamboard/pkg/validation"
)

// UserStore persists users. Implementations return storage.ErrNotFound for a
// missing user and storage.ErrConflict for a duplicate NIP or email.
type UserStore interface {
	Create(ctx context.Context, user *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByNIP(ctx context.Context, nip string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, nip, passwordHash string) error
}

// LoginRequest is the login payload. Username carries the email address.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// SignupRequest is the account creation payload
type SignupRequest struct {
	NIP        string `json:"nip" validate:"required,min=15"`
	Name       string `json:"name" validate:"required"`
	Email      string `json:"email" validate:"required,email"`
	Phone      string `json:"nohp" validate:"required,min=12"`
	Password   string `json:"password" validate:"required,min=6,max=72"`
	RePassword string `json:"repassword" validate:"required"`
	Role       Role   `json:"role,omitempty" validate:"omitempty,oneof='Super Admin' Admin User"`
}

// UpdatePasswordRequest changes a user's password
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=6,max=72"`
}

// UpdateUserRequest changes profile fields. Nil fields are left unchanged.
type UpdateUserRequest struct {
	Name   *string `json:"name,omitempty" validate:"omitempty,min=1"`
	Email  *string `json:"email,omitempty" validate:"omitempty,email"`
	Phone  *string `json:"nohp,omitempty" validate:"omitempty,min=12"`
	Role   *Role   `json:"role,omitempty" validate:"omitempty,oneof='Super Admin' Admin User"`
	Status *Status `json:"status,omitempty" validate:"omitempty,oneof=Active InActive"`
}

// Service implements login, signup and account management
type Service struct {
	store    UserStore
	hasher   PasswordHasher
	tokens   TokenIssuer
	throttle Throttle
	metrics  *observability.Metrics
	logger   *observability.Logger
}

// NewService creates an authentication service. metrics may be nil.
func NewService(store UserStore, hasher PasswordHasher, tokens TokenIssuer, throttle Throttle, metrics *observability.Metrics, logger *observability.Logger) *Service {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Service{
		store:    store,
		hasher:   hasher,
		tokens:   tokens,
		throttle: throttle,
		metrics:  metrics,
		logger:   logger,
	}
}

// Login authenticates an email/password pair.
//
// A throttled identifier is refused before any lookup. Unknown emails and wrong
// passwords both return ErrInvalidCredentials; only the wrong password counts
// toward the throttle. An inactive account gets a LoginInactive result without a
// token. A successful login clears the identifier's failures.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	identifier := NormalizeIdentifier(req.Username)
	logger := s.logger.WithField("identifier", identifier)

	throttled, err := s.throttle.IsThrottled(ctx, identifier)
	if err != nil {
		s.metrics.RecordLogin(observability.LoginOutcomeError)
		return nil, fmt.Errorf("failed to check throttle: %w", err)
	}
	if throttled {
		s.metrics.RecordLogin(observability.LoginOutcomeThrottled)
		logger.Warn("login refused: throttled")
		return nil, ErrThrottled
	}

	user, err := s.store.GetByEmail(ctx, identifier)
	if errors.Is(err, storage.ErrNotFound) {
		s.metrics.RecordLogin(observability.LoginOutcomeInvalid)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		s.metrics.RecordLogin(observability.LoginOutcomeError)
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := s.hasher.Verify(req.Password, user.PasswordHash)
	if err != nil {
		s.metrics.RecordLogin(observability.LoginOutcomeError)
		return nil, err
	}
	if !ok {
		if err := s.throttle.RecordFailure(ctx, identifier); err != nil {
			s.metrics.RecordLogin(observability.LoginOutcomeError)
			return nil, fmt.Errorf("failed to record login failure: %w", err)
		}
		s.metrics.RecordThrottleFailure()
		s.metrics.RecordLogin(observability.LoginOutcomeInvalid)
		logger.Info("login failed: wrong password")
		return nil, ErrInvalidCredentials
	}

	if user.Status != StatusActive {
		s.metrics.RecordLogin(observability.LoginOutcomeInactive)
		logger.Info("login refused: account inactive")
		return &LoginResult{Outcome: LoginInactive, User: user.Public()}, nil
	}

	public := user.Public()
	token, err := s.tokens.Issue(public)
	if err != nil {
		s.metrics.RecordLogin(observability.LoginOutcomeError)
		return nil, err
	}

	if err := s.throttle.Reset(ctx, identifier); err != nil {
		logger.WithError(err).Warn("failed to reset throttle after login")
	}

	s.metrics.RecordLogin(observability.LoginOutcomeSuccess)
	logger.WithField("nip", user.NIP).Info("login succeeded")
	return &LoginResult{Outcome: LoginSucceeded, User: public, Token: token}, nil
}

// Signup validates and creates an active account, then issues its first token.
// Nothing is written when validation fails.
func (s *Service) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	req.Email = NormalizeIdentifier(req.Email)
	req.NIP = strings.TrimSpace(req.NIP)

	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.Password != req.RePassword {
		return nil, ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = RoleUser
	}

	user := &User{
		NIP:          req.NIP,
		Name:         strings.TrimSpace(req.Name),
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: hash,
		Role:         role,
		Status:       StatusActive,
	}
	if err := s.store.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user %s: %w", user.NIP, err)
	}

	public := user.Public()
	token, err := s.tokens.Issue(public)
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(map[string]interface{}{"nip": user.NIP, "role": user.Role}).Info("user signed up")
	return &AuthResult{User: public, Token: token}, nil
}

// ListUsers returns every user, sanitized
func (s *Service) ListUsers(ctx context.Context) ([]PublicUser, error) {
	users, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	out := make([]PublicUser, 0, len(users))
	for _, u := range users {
		out = append(out, u.Public())
	}
	return out, nil
}

// GetUser returns the sanitized user with the given NIP
func (s *Service) GetUser(ctx context.Context, nip string) (*PublicUser, error) {
	user, err := s.store.GetByNIP(ctx, nip)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", nip, err)
	}
	public := user.Public()
	return &public, nil
}

// UpdatePassword replaces a user's password after checking the current one
func (s *Service) UpdatePassword(ctx context.Context, nip string, req UpdatePasswordRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}

	user, err := s.store.GetByNIP(ctx, nip)
	if err != nil {
		return fmt.Errorf("failed to get user %s: %w", nip, err)
	}

	ok, err := s.hasher.Verify(req.CurrentPassword, user.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		return ErrIncorrectPassword
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}
	if err := s.store.UpdatePassword(ctx, nip, hash); err != nil {
		return fmt.Errorf("failed to update password for %s: %w", nip, err)
	}

	s.logger.WithField("nip", nip).Info("password updated")
	return nil
}

// UpdateUser applies profile changes. The stored password hash is never touched.
// Moving to an email held by another user is a conflict.
func (s *Service) UpdateUser(ctx context.Context, nip string, req UpdateUserRequest) (*PublicUser, error) {
	if req.Email != nil {
		normalized := NormalizeIdentifier(*req.Email)
		req.Email = &normalized
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetByNIP(ctx, nip)
	if err != nil {
		return nil, fmt.Errorf("failed to get user %s: %w", nip, err)
	}

	if req.Email != nil && *req.Email != user.Email {
		owner, err := s.store.GetByEmail(ctx, *req.Email)
		switch {
		case err == nil && owner.NIP != user.NIP:
			return nil, fmt.Errorf("email %s: %w", *req.Email, storage.ErrConflict)
		case err != nil && !errors.Is(err, storage.ErrNotFound):
			return nil, fmt.Errorf("failed to check email owner: %w", err)
		}
		user.Email = *req.Email
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if req.Phone != nil {
		user.Phone = strings.TrimSpace(*req.Phone)
	}
	if req.Role != nil {
		user.Role = *req.Role
	}
	if req.Status != nil {
		user.Status = *req.Status
	}

	if err := s.store.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user %s: %w", nip, err)
	}

	public := user.Public()
	return &public, nil
}

// VerifyToken checks a bearer token and records rejections
func (s *Service) VerifyToken(token string) (*Claims, error) {
	claims, err := s.tokens.Verify(token)
	if err != nil {
		s.metrics.RecordTokenRejection()
		return nil, err
	}
	return claims, nil
}
