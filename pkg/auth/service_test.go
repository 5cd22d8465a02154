package auth

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/platinummonkey/teamboard/pkg/observability"
	"github.com/platinummonkey/teamboard/pkg/storage"
)

// memoryStore is a UserStore backed by a map, counting writes
type memoryStore struct {
	mu     sync.Mutex
	users  map[string]*User
	writes int
}

func newMemoryStore() *memoryStore {
	return &memoryStore{users: make(map[string]*User)}
}

func (m *memoryStore) Create(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	for _, u := range m.users {
		if u.NIP == user.NIP || u.Email == user.Email {
			return storage.ErrConflict
		}
	}
	cp := *user
	m.users[user.NIP] = &cp
	return nil
}

func (m *memoryStore) GetByEmail(_ context.Context, email string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (m *memoryStore) GetByNIP(_ context.Context, nip string) (*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[nip]
	if !ok {
		return nil, storage.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memoryStore) List(_ context.Context) ([]*User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*User, 0, len(m.users))
	for _, u := range m.users {
		cp := *u
		out = append(out, &cp)
	}
	return out, nil
}

func (m *memoryStore) Update(_ context.Context, user *User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	if _, ok := m.users[user.NIP]; !ok {
		return storage.ErrNotFound
	}
	cp := *user
	m.users[user.NIP] = &cp
	return nil
}

func (m *memoryStore) UpdatePassword(_ context.Context, nip, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	u, ok := m.users[nip]
	if !ok {
		return storage.ErrNotFound
	}
	u.PasswordHash = hash
	return nil
}

type serviceFixture struct {
	svc      *Service
	store    *memoryStore
	hasher   *BcryptHasher
	tokens   *JWTIssuer
	throttle *MemoryThrottle
	clock    *clockwork.FakeClock
	metrics  *observability.Metrics
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	clock := clockwork.NewFakeClock()
	tokens, err := NewJWTIssuer(testSecret, WithClock(clock))
	require.NoError(t, err)

	f := &serviceFixture{
		store:    newMemoryStore(),
		hasher:   NewBcryptHasher(bcrypt.MinCost),
		tokens:   tokens,
		throttle: NewMemoryThrottle(3, time.Minute, clock),
		clock:    clock,
		metrics:  observability.NewMetrics(prometheus.NewRegistry()),
	}
	f.svc = NewService(f.store, f.hasher, f.tokens, f.throttle, f.metrics, observability.NewNopLogger())
	return f
}

func (f *serviceFixture) seed(t *testing.T, nip, email, password string, status Status) {
	t.Helper()
	hash, err := f.hasher.Hash(password)
	require.NoError(t, err)
	f.store.users[nip] = &User{
		NIP:          nip,
		Name:         "Seeded",
		Email:        email,
		Phone:        "081234567890",
		PasswordHash: hash,
		Role:         RoleUser,
		Status:       status,
	}
}

const (
	aliceNIP = "198001012000011001"
	bobNIP   = "198202022000012002"
)

func TestLogin_Success(t *testing.T) {
	f := newServiceFixture(t)
	f.seed(t, aliceNIP, "alice@example.com", "secret123", StatusActive)

	res, err := f.svc.Login(context.Background(), LoginRequest{Username: "Alice@Example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, LoginSucceeded, res.Outcome)
	assert.Equal(t, aliceNIP, res.User.NIP)
	require.NotEmpty(t, res.Token)

	claims, err := f.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, aliceNIP, claims.Subject)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.LoginAttemptsTotal.WithLabelValues(observability.LoginOutcomeSuccess)))
}

func TestLogin_UnknownEmailIsGeneric(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.Login(context.Background(), LoginRequest{Username: "ghost@example.com", Password: "x"})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	assert.Equal(t, 0, f.throttle.Len(), "unknown email does not count")
}

func TestLogin_ThrottledEvenWithCorrectPassword(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	f.seed(t, aliceNIP, "alice@example.com", "secret123", StatusActive)

	for i := 0; i < 3; i++ {
		_, err := f.svc.Login(ctx, LoginRequest{Username: "alice@example.com", Password: "wrong"})
		require.ErrorIs(t, err, ErrInvalidCredentials)
	}

	_, err := f.svc.Login(ctx, LoginRequest{Username: "alice@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, ErrThrottled)
	assert.Equal(t, float64(3), testutil.ToFloat64(f.metrics.ThrottleFailuresTotal))

	f.clock.Advance(time.Minute)
	res, err := f.svc.Login(ctx, LoginRequest{Username: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, LoginSucceeded, res.Outcome)
}

func TestLogin_SuccessResetsFailures(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	f.seed(t, aliceNIP, "alice@example.com", "secret123", StatusActive)

	for i := 0; i < 2; i++ {
		_, _ = f.svc.Login(ctx, LoginRequest{Username: "alice@example.com", Password: "wrong"})
	}
	_, err := f.svc.Login(ctx, LoginRequest{Username: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)

	_, _ = f.svc.Login(ctx, LoginRequest{Username: "alice@example.com", Password: "wrong"})
	throttled, err := f.throttle.IsThrottled(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.False(t, throttled)
}

func TestLogin_InactiveGetsNoToken(t *testing.T) {
	f := newServiceFixture(t)
	f.seed(t, aliceNIP, "alice@example.com", "secret123", StatusInactive)

	res, err := f.svc.Login(context.Background(), LoginRequest{Username: "alice@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, LoginInactive, res.Outcome)
	assert.Empty(t, res.Token)
	assert.Equal(t, 0, f.throttle.Len(), "inactive login is not a failure")
}

func TestLogin_LogsWithoutPassword(t *testing.T) {
	f := newServiceFixture(t)
	f.seed(t, aliceNIP, "alice@example.com", "secret123", StatusActive)

	var buf bytes.Buffer
	f.svc.logger = observability.NewLogger(observability.DebugLevel, &buf)

	_, _ = f.svc.Login(context.Background(), LoginRequest{Username: "alice@example.com", Password: "hunter2-wrong"})
	_, _ = f.svc.Login(context.Background(), LoginRequest{Username: "alice@example.com", Password: "secret123"})
	assert.NotContains(t, buf.String(), "hunter2-wrong")
	assert.NotContains(t, buf.String(), "secret123")
}

func validSignup() SignupRequest {
	return SignupRequest{
		NIP:        aliceNIP,
		Name:       "Alice",
		Email:      "alice@example.com",
		Phone:      "081234567890",
		Password:   "secret123",
		RePassword: "secret123",
	}
}

func TestSignup_ForcesActiveAndDefaultRole(t *testing.T) {
	f := newServiceFixture(t)

	res, err := f.svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)
	assert.Equal(t, StatusActive, res.User.Status)
	assert.Equal(t, RoleUser, res.User.Role)
	assert.NotEmpty(t, res.Token)

	stored := f.store.users[aliceNIP]
	require.NotNil(t, stored)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	ok, err := f.hasher.Verify("secret123", stored.PasswordHash)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignup_RejectsBeforeWriting(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*SignupRequest)
		check  func(t *testing.T, err error)
	}{
		{
			name:   "password mismatch",
			mutate: func(r *SignupRequest) { r.RePassword = "different" },
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrPasswordMismatch) },
		},
		{
			name:   "short nip",
			mutate: func(r *SignupRequest) { r.NIP = "123" },
			check: func(t *testing.T, err error) {
				var verrs ValidationErrors
				require.True(t, errors.As(err, &verrs))
				assert.Contains(t, verrs, "nip")
			},
		},
		{
			name:   "bad email",
			mutate: func(r *SignupRequest) { r.Email = "not-an-email" },
			check: func(t *testing.T, err error) {
				var verrs ValidationErrors
				require.True(t, errors.As(err, &verrs))
				assert.Contains(t, verrs, "email")
			},
		},
		{
			name:   "short phone",
			mutate: func(r *SignupRequest) { r.Phone = "0812" },
			check: func(t *testing.T, err error) {
				var verrs ValidationErrors
				require.True(t, errors.As(err, &verrs))
				assert.Contains(t, verrs, "nohp")
			},
		},
		{
			name:   "password over 72 characters",
			mutate: func(r *SignupRequest) { r.Password = strings.Repeat("a", 73); r.RePassword = r.Password },
			check: func(t *testing.T, err error) {
				var verrs ValidationErrors
				require.True(t, errors.As(err, &verrs))
				assert.Contains(t, verrs, "password")
			},
		},
		{
			name:   "password over 72 bytes",
			mutate: func(r *SignupRequest) { r.Password = strings.Repeat("é", 40); r.RePassword = r.Password },
			check:  func(t *testing.T, err error) { assert.ErrorIs(t, err, ErrPasswordTooLong) },
		},
		{
			name:   "short password",
			mutate: func(r *SignupRequest) { r.Password, r.RePassword = "abc", "abc" },
			check: func(t *testing.T, err error) {
				var verrs ValidationErrors
				require.True(t, errors.As(err, &verrs))
				assert.Contains(t, verrs, "password")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newServiceFixture(t)
			req := validSignup()
			tt.mutate(&req)

			_, err := f.svc.Signup(context.Background(), req)
			tt.check(t, err)
			assert.True(t, IsValidationError(err))
			assert.Equal(t, 0, f.store.writes)
		})
	}
}

func TestSignup_Duplicate(t *testing.T) {
	f := newServiceFixture(t)
	_, err := f.svc.Signup(context.Background(), validSignup())
	require.NoError(t, err)

	_, err = f.svc.Signup(context.Background(), validSignup())
	assert.ErrorIs(t, err, storage.ErrConflict)
}

func TestUpdatePassword(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	f.seed(t, aliceNIP, "alice@example.com", "secret123", StatusActive)

	err := f.svc.UpdatePassword(ctx, aliceNIP, UpdatePasswordRequest{CurrentPassword: "wrong", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, ErrIncorrectPassword)

	err = f.svc.UpdatePassword(ctx, "000000000000000000", UpdatePasswordRequest{CurrentPassword: "x", NewPassword: "newsecret"})
	assert.ErrorIs(t, err, storage.ErrNotFound)

	err = f.svc.UpdatePassword(ctx, aliceNIP, UpdatePasswordRequest{CurrentPassword: "secret123", NewPassword: "abc"})
	assert.True(t, IsValidationError(err))

	err = f.svc.UpdatePassword(ctx, aliceNIP, UpdatePasswordRequest{CurrentPassword: "secret123", NewPassword: strings.Repeat("a", 73)})
	assert.True(t, IsValidationError(err))

	require.NoError(t, f.svc.UpdatePassword(ctx, aliceNIP, UpdatePasswordRequest{CurrentPassword: "secret123", NewPassword: "newsecret"}))
	res, err := f.svc.Login(ctx, LoginRequest{Username: "alice@example.com", Password: "newsecret"})
	require.NoError(t, err)
	assert.Equal(t, LoginSucceeded, res.Outcome)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	strPtr := func(s string) *string { return &s }

	t.Run("email owned by another user conflicts", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seed(t, aliceNIP, "alice@example.com", "secret123", StatusActive)
		f.seed(t, bobNIP, "bob@example.com", "secret123", StatusActive)

		_, err := f.svc.UpdateUser(ctx, aliceNIP, UpdateUserRequest{Email: strPtr("bob@example.com")})
		assert.ErrorIs(t, err, storage.ErrConflict)
	})

	t.Run("own email is fine and hash is kept", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seed(t, aliceNIP, "alice@example.com", "secret123", StatusActive)
		before := f.store.users[aliceNIP].PasswordHash

		status := StatusInactive
		got, err := f.svc.UpdateUser(ctx, aliceNIP, UpdateUserRequest{
			Email:  strPtr("ALICE@example.com"),
			Name:   strPtr("Alice Renamed"),
			Status: &status,
		})
		require.NoError(t, err)
		assert.Equal(t, "Alice Renamed", got.Name)
		assert.Equal(t, StatusInactive, got.Status)
		assert.Equal(t, before, f.store.users[aliceNIP].PasswordHash)
	})

	t.Run("new unused email", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seed(t, aliceNIP, "alice@example.com", "secret123", StatusActive)

		got, err := f.svc.UpdateUser(ctx, aliceNIP, UpdateUserRequest{Email: strPtr("alice@new.example.com")})
		require.NoError(t, err)
		assert.Equal(t, "alice@new.example.com", got.Email)
	})

	t.Run("missing user", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.svc.UpdateUser(ctx, aliceNIP, UpdateUserRequest{Name: strPtr("x")})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("invalid role", func(t *testing.T) {
		f := newServiceFixture(t)
		f.seed(t, aliceNIP, "alice@example.com", "secret123", StatusActive)
		role := Role("Root")
		_, err := f.svc.UpdateUser(ctx, aliceNIP, UpdateUserRequest{Role: &role})
		assert.True(t, IsValidationError(err))
	})
}

func TestListAndGetUsers(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)
	f.seed(t, aliceNIP, "alice@example.com", "secret123", StatusActive)
	f.seed(t, bobNIP, "bob@example.com", "secret123", StatusActive)

	users, err := f.svc.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 2)

	got, err := f.svc.GetUser(ctx, bobNIP)
	require.NoError(t, err)
	assert.Equal(t, "bob@example.com", got.Email)

	_, err = f.svc.GetUser(ctx, "nobody")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestVerifyToken_CountsRejections(t *testing.T) {
	f := newServiceFixture(t)

	_, err := f.svc.VerifyToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.Equal(t, float64(1), testutil.ToFloat64(f.metrics.TokenRejectionsTotal))
}
