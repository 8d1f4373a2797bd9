package security

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Token type discriminators. All kinds share one signing key, so callers must
// check the type claim before trusting a token's purpose.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
	TokenTypeReset   = "reset_password"
)

var (
	// ErrTokenInvalid indicates the token is malformed, its signature does not
	// verify, or the subject does not match expectations.
	ErrTokenInvalid = errors.New("token invalid")
	// ErrTokenExpired indicates the token elapsed its validity window.
	ErrTokenExpired = errors.New("token expired")
)

// TokenClaims is the decoded view of an issued token.
type TokenClaims struct {
	Subject   string
	TokenType string
	IssuedAt  time.Time
	ExpiresAt time.Time
	Extra     map[string]any
}

// TokenService mints and validates compact signed bearer tokens. The signing
// key is injected at construction; there is no ambient key state.
type TokenService struct {
	key    []byte
	issuer string
	now    func() time.Time
}

// NewTokenService validates the key and returns a service. HS512 requires a
// key of at least 32 bytes to be worth signing with at all.
func NewTokenService(signingKey []byte, issuer string) (*TokenService, error) {
	if len(signingKey) < 32 {
		return nil, fmt.Errorf("signing key must be at least 32 bytes, got %d", len(signingKey))
	}
	return &TokenService{key: signingKey, issuer: issuer, now: time.Now}, nil
}

// WithClock overrides the internal clock, used in tests.
func (s *TokenService) WithClock(clock func() time.Time) {
	if clock != nil {
		s.now = clock
	}
}

// Issue produces a signed, URL-safe token with the subject, the type
// discriminator, and any caller-supplied claims.
func (s *TokenService) Issue(subject, tokenType string, extra map[string]any, ttl time.Duration) (string, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", fmt.Errorf("subject is required")
	}
	if tokenType == "" {
		return "", fmt.Errorf("token type is required")
	}
	if ttl <= 0 {
		return "", fmt.Errorf("ttl must be positive")
	}

	now := s.now().UTC()
	claims := jwt.MapClaims{
		"sub":  subject,
		"iss":  s.issuer,
		"iat":  jwt.NewNumericDate(now),
		"exp":  jwt.NewNumericDate(now.Add(ttl)),
		"type": tokenType,
	}
	for k, v := range extra {
		if _, reserved := claims[k]; !reserved {
			claims[k] = v
		}
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS512, claims)
	signed, err := token.SignedString(s.key)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	return signed, nil
}

// Validate verifies signature and expiry and returns the decoded claims.
// When expectedSubject is non-empty the subject claim must match it.
func (s *TokenService) Validate(token, expectedSubject string) (*TokenClaims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrTokenInvalid
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.key, nil
	}, jwt.WithTimeFunc(func() time.Time { return s.now() }))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if parsed == nil || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	subject, _ := claims.GetSubject()
	if subject == "" {
		return nil, ErrTokenInvalid
	}
	if expectedSubject != "" && subject != expectedSubject {
		return nil, ErrTokenInvalid
	}

	decoded := &TokenClaims{
		Subject: subject,
		Extra:   make(map[string]any),
	}

	if tokenType, ok := claims["type"].(string); ok {
		decoded.TokenType = tokenType
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		decoded.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		decoded.ExpiresAt = exp.Time
	}

	for k, v := range claims {
		switch k {
		case "sub", "iss", "iat", "exp", "type":
		default:
			decoded.Extra[k] = v
		}
	}

	return decoded, nil
}
