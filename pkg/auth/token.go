package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"
)

const (
	// DefaultTokenTTL is how long an issued token stays valid
	DefaultTokenTTL = 24 * time.Hour
	// DefaultIssuer is the iss claim written into tokens
	DefaultIssuer = "teamboard"
	// MinSecretLength is the shortest accepted HMAC signing secret
	MinSecretLength = 32
)

// Claims is the token payload: the sanitized user plus registered claims.
// Subject carries the NIP.
type Claims struct {
	Name   string `json:"name"`
	Email  string `json:"email"`
	Phone  string `json:"nohp"`
	Role   Role   `json:"role"`
	Status Status `json:"status"`
	jwt.RegisteredClaims
}

// TokenIssuer signs and verifies identity tokens
type TokenIssuer interface {
	Issue(user PublicUser) (string, error)
	Verify(token string) (*Claims, error)
}

// JWTIssuer implements TokenIssuer with HS256 JWTs
type JWTIssuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  clockwork.Clock
}

// JWTOption configures a JWTIssuer
type JWTOption func(*JWTIssuer)

// WithIssuer overrides the iss claim
func WithIssuer(issuer string) JWTOption {
	return func(j *JWTIssuer) { j.issuer = issuer }
}

// WithTTL overrides the token lifetime
func WithTTL(ttl time.Duration) JWTOption {
	return func(j *JWTIssuer) { j.ttl = ttl }
}

// WithClock sets the clock used for iat, exp and verification
func WithClock(clock clockwork.Clock) JWTOption {
	return func(j *JWTIssuer) { j.clock = clock }
}

// NewJWTIssuer creates an issuer. The secret must be at least MinSecretLength bytes.
func NewJWTIssuer(secret []byte, opts ...JWTOption) (*JWTIssuer, error) {
	if len(secret) < MinSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d bytes, got %d", MinSecretLength, len(secret))
	}
	j := &JWTIssuer{
		secret: secret,
		issuer: DefaultIssuer,
		ttl:    DefaultTokenTTL,
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(j)
	}
	if j.ttl <= 0 {
		j.ttl = DefaultTokenTTL
	}
	return j, nil
}

// Issue signs a token for user
func (j *JWTIssuer) Issue(user PublicUser) (string, error) {
	if user.NIP == "" {
		return "", errors.New("cannot issue token without a subject")
	}
	now := j.clock.Now()
	claims := Claims{
		Name:   user.Name,
		Email:  user.Email,
		Phone:  user.Phone,
		Role:   user.Role,
		Status: user.Status,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.NIP,
			Issuer:    j.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks signature, algorithm, issuer and expiry. Every failure is ErrInvalidToken.
func (j *JWTIssuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(j.issuer),
		jwt.WithTimeFunc(j.clock.Now),
	)
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Subject == "" || !claims.Role.Valid() {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// User rebuilds the sanitized user the token was issued for
func (c *Claims) User() PublicUser {
	return PublicUser{
		NIP:    c.Subject,
		Name:   c.Name,
		Email:  c.Email,
		Phone:  c.Phone,
		Role:   c.Role,
		Status: c.Status,
	}
}
