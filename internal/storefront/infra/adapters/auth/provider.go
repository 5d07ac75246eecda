// Package auth issues and validates storefront sessions: bcrypt password
// hashes, HS256 access tokens, and sign-out revocation kept in the cache.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jcmexdev/storefront/internal/pkg/cache"
	"github.com/jcmexdev/storefront/internal/pkg/constants"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/core/ports"
)

const (
	issuer            = "storefront"
	minPasswordLength = 6
)

var _ ports.SessionProvider = (*Provider)(nil)

type Provider struct {
	users  ports.UserStore
	cache  cache.Cache
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

type Option func(*Provider)

// WithBcryptCost overrides bcrypt.DefaultCost.
func WithBcryptCost(cost int) Option {
	return func(p *Provider) { p.cost = cost }
}

func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

// NewProvider builds a Provider. Without a cache, SignOut cannot revoke
// tokens and they stay valid until they expire.
func NewProvider(users ports.UserStore, c cache.Cache, secret string, ttl time.Duration, opts ...Option) *Provider {
	p := &Provider{
		users:  users,
		cache:  c,
		secret: []byte(secret),
		ttl:    ttl,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (p *Provider) SignUp(ctx context.Context, email, password string) (*entity.Session, error) {
	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("email %q: %w", email, entity.ErrInvalidInput)
	}
	if len(password) < minPasswordLength {
		return nil, fmt.Errorf("password must be at least %d characters: %w", minPasswordLength, entity.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.cost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{ID: uuid.NewString(), Email: email, PasswordHash: string(hash)}
	if err := p.users.InsertUser(ctx, user); err != nil {
		return nil, err
	}
	return p.issue(user)
}

func (p *Provider) SignIn(ctx context.Context, email, password string) (*entity.Session, error) {
	user, err := p.users.GetUserByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, entity.ErrNotFound) {
		return nil, entity.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, entity.ErrInvalidCredentials
	}
	return p.issue(user)
}

// SignOut revokes the session's token until it would have expired anyway.
func (p *Provider) SignOut(ctx context.Context, sess *entity.Session) error {
	if !sess.Valid() {
		return entity.ErrUnauthenticated
	}
	if p.cache == nil || sess.TokenID == "" {
		return nil
	}
	ttl := sess.ExpiresAt.Sub(p.now())
	if ttl <= 0 {
		return nil
	}
	if err := p.cache.Set(ctx, p.revokedKey(sess.TokenID), "1", ttl); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (p *Provider) CurrentUser(ctx context.Context, token string) (*entity.Session, error) {
	if token == "" {
		return nil, entity.ErrUnauthenticated
	}

	parsed, err := jwt.ParseWithClaims(token, &claims{}, func(*jwt.Token) (any, error) {
		return p.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(p.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", entity.ErrUnauthenticated, err)
	}
	c, ok := parsed.Claims.(*claims)
	if !ok || !parsed.Valid || c.Subject == "" {
		return nil, entity.ErrUnauthenticated
	}

	if p.cache != nil && c.ID != "" {
		revoked, err := p.cache.Get(ctx, p.revokedKey(c.ID))
		if err != nil {
			return nil, fmt.Errorf("check revocation: %w", err)
		}
		if revoked != "" {
			return nil, fmt.Errorf("%w: token revoked", entity.ErrUnauthenticated)
		}
	}

	return &entity.Session{
		UserID:    c.Subject,
		Email:     c.Email,
		Token:     token,
		TokenID:   c.ID,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}

func (p *Provider) issue(user *entity.User) (*entity.Session, error) {
	now := p.now()
	exp := now.Add(p.ttl)
	tokenID := uuid.NewString()

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		Email: user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Issuer:    issuer,
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	signed, err := t.SignedString(p.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &entity.Session{
		UserID:    user.ID,
		Email:     user.Email,
		Token:     signed,
		TokenID:   tokenID,
		ExpiresAt: exp,
	}, nil
}

func (p *Provider) revokedKey(tokenID string) string {
	return p.cache.GenerateKey(constants.CacheOpRevoked, tokenID)
}
