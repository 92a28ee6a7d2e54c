package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenInfo is what can be read from an access token without verifying it.
// It is informational only; expiry is discovered from the API, not from here.
type TokenInfo struct {
	UserID    string
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Inspect decodes the claims of a JWT access token without checking its signature.
func Inspect(accessToken string) (*TokenInfo, error) {
	token, _, err := jwt.NewParser().ParseUnverified(accessToken, jwt.MapClaims{})
	if err != nil {
		return nil, fmt.Errorf("parse access token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("parse access token: unexpected claims type %T", token.Claims)
	}

	info := &TokenInfo{}
	if sub, _ := claims.GetSubject(); sub != "" {
		info.UserID = sub
	}
	switch v := claims["user_id"].(type) {
	case string:
		info.UserID = v
	case float64:
		info.UserID = fmt.Sprintf("%.0f", v)
	}
	if jti, ok := claims["jti"].(string); ok {
		info.TokenID = jti
	}
	if iat, _ := claims.GetIssuedAt(); iat != nil {
		info.IssuedAt = iat.Time
	}
	if exp, _ := claims.GetExpirationTime(); exp != nil {
		info.ExpiresAt = exp.Time
	}

	return info, nil
}

// ExpiresIn returns how long until the token's exp claim, or 0 if unknown or past.
func (t *TokenInfo) ExpiresIn(now time.Time) time.Duration {
	if t == nil || t.ExpiresAt.IsZero() || !t.ExpiresAt.After(now) {
		return 0
	}
	return t.ExpiresAt.Sub(now)
}
