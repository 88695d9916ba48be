package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email,omitempty"`
	TokenType string `json:"token_type"`

	jwt.RegisteredClaims
}

type JWT struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// TokenPair is returned on login. Refresh yields a pair with an empty Refresh.
type TokenPair struct {
	Access           string    `json:"access"`
	Refresh          string    `json:"refresh,omitempty"`
	AccessExpiresAt  time.Time `json:"access_expires_at"`
	RefreshExpiresAt time.Time `json:"refresh_expires_at,omitempty"`
}

func (j JWT) Sign(claims Claims) (token string, expiresAt time.Time, err error) {
	now := time.Now().UTC()
	ttl := j.AccessTTL
	if claims.TokenType == TokenRefresh {
		ttl = j.RefreshTTL
	}
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.NotBefore == nil {
		claims.NotBefore = jwt.NewNumericDate(now.Add(-5 * time.Second))
	}
	if claims.ExpiresAt == nil {
		expiresAt = now.Add(ttl)
		claims.ExpiresAt = jwt.NewNumericDate(expiresAt)
	} else {
		expiresAt = claims.ExpiresAt.Time
	}
	if claims.Issuer == "" {
		claims.Issuer = j.Issuer
	}
	if claims.Subject == "" {
		claims.Subject = claims.UserID
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	s, err := t.SignedString(j.Secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return s, expiresAt, nil
}

// IssuePair signs a fresh access and refresh token for the user.
func (j JWT) IssuePair(userID, email string) (TokenPair, error) {
	access, accessExp, err := j.Sign(Claims{UserID: userID, Email: email, TokenType: TokenAccess})
	if err != nil {
		return TokenPair{}, err
	}
	refresh, refreshExp, err := j.Sign(Claims{UserID: userID, Email: email, TokenType: TokenRefresh})
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{
		Access:           access,
		Refresh:          refresh,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// Verify parses token and checks that it is of the wanted type.
func (j JWT) Verify(token, wantType string) (Claims, error) {
	parsed, err := jwt.ParseWithClaims(token, &Claims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("unexpected signing method")
		}
		return j.Secret, nil
	})
	if err != nil {
		return Claims{}, err
	}
	c, ok := parsed.Claims.(*Claims)
	if !ok || !parsed.Valid {
		return Claims{}, errors.New("invalid token")
	}
	if c.TokenType != wantType {
		return Claims{}, errors.New("wrong token type")
	}
	if c.UserID == "" {
		return Claims{}, errors.New("token has no user")
	}
	return *c, nil
}

type ctxKey int

const claimsKey ctxKey = 1

func ClaimsFromContext(ctx context.Context) (Claims, bool) {
	c, ok := ctx.Value(claimsKey).(Claims)
	return c, ok
}

func WithClaims(ctx context.Context, c Claims) context.Context {
	return context.WithValue(ctx, claimsKey, c)
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(v string) string {
	v = strings.TrimSpace(v)
	parts := strings.SplitN(v, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
