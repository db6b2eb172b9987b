package security

import (
	"errors"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt/v5"

	"github.com/gestion-comercial/backoffice/internal/core/domain"
)

const defaultTokenTTL = 24 * time.Hour

// Claims is the JWT payload: the registered claims plus a single role.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTCodec issues and validates HS256 bearer tokens. It holds no mutable
// state and is safe for concurrent use.
type JWTCodec struct {
	secret []byte
	issuer string
	ttl    time.Duration
	clock  clock.Clock
}

// JWTOption customises a JWTCodec.
type JWTOption func(*JWTCodec)

// WithIssuer sets the "iss" claim written and required by the codec.
func WithIssuer(issuer string) JWTOption {
	return func(c *JWTCodec) { c.issuer = issuer }
}

// WithTokenClock overrides the clock used for iat/exp and for expiry checks.
func WithTokenClock(clk clock.Clock) JWTOption {
	return func(c *JWTCodec) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// NewJWTCodec returns a codec signing with secret. A non-positive ttl falls
// back to 24h.
func NewJWTCodec(secret string, ttl time.Duration, opts ...JWTOption) (*JWTCodec, error) {
	if secret == "" {
		return nil, errors.New("jwt: empty signing secret")
	}
	if ttl <= 0 {
		ttl = defaultTokenTTL
	}
	c := &JWTCodec{secret: []byte(secret), ttl: ttl, clock: clock.New()}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Issue signs a token for p, valid from now until now+ttl.
func (c *JWTCodec) Issue(p domain.Principal) (string, time.Time, error) {
	if p.IsZero() {
		return "", time.Time{}, errors.New("jwt: issue for empty principal")
	}
	now := c.clock.Now()
	exp := now.Add(c.ttl)

	claims := Claims{
		Role: string(p.Role()),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.LoginID(),
			Issuer:    c.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwt: sign: %w", err)
	}
	return signed, exp, nil
}

// Validate checks structure, signature, issuer and expiry, and returns the
// identity the token asserts.
func (c *JWTCodec) Validate(token string) (domain.Identity, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(c.clock.Now),
	}
	if c.issuer != "" {
		opts = append(opts, jwt.WithIssuer(c.issuer))
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return c.secret, nil
	}, opts...)
	if err != nil {
		return domain.Identity{}, classify(err)
	}

	role, ok := domain.ParseRole(claims.Role)
	if !ok || claims.Subject == "" {
		return domain.Identity{}, fmt.Errorf("%w: missing subject or role claim", domain.ErrInvalidToken)
	}
	return domain.Identity{LoginID: claims.Subject, Role: role}, nil
}

// classify maps jwt parser errors onto the domain failure kinds.
func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenMalformed):
		return fmt.Errorf("%w: %v", domain.ErrMalformedToken, err)
	case errors.Is(err, jwt.ErrTokenExpired):
		return fmt.Errorf("%w: %v", domain.ErrExpiredToken, err)
	default:
		return fmt.Errorf("%w: %v", domain.ErrInvalidToken, err)
	}
}
