// Package session carries the signed-in patient's identity through request
// contexts. Handlers and services receive it explicitly; nothing reads it from
// global state.
package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Role identifiers issued by the clinic identity service.
const (
	RoleAdmin   = "ROLE_1"
	RoleDoctor  = "ROLE_2"
	RolePatient = "ROLE_3"
)

// Identity is the signed-in user.
type Identity struct {
	UserID   string `json:"userId"`
	FullName string `json:"fullName"`
	RoleID   string `json:"roleId"`
	RoleName string `json:"roleName"`
	Email    string `json:"email,omitempty"`
	// Token is the raw bearer token, forwarded to the clinic backend.
	Token string `json:"-"`
}

// Claims is the JWT payload of a session token. The subject is the user id.
type Claims struct {
	FullName string `json:"fullName"`
	RoleID   string `json:"roleId"`
	RoleName string `json:"roleName"`
	Email    string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

var ErrInvalidToken = errors.New("session: invalid token")

type ctxKey string

const identityKey ctxKey = "portal.identity"

// WithIdentity stores the identity in context.
func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityKey, id)
}

// FromContext extracts the identity if present.
func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(identityKey).(Identity)
	return id, ok && id.UserID != ""
}

// ParseToken validates an HS256 session token and returns the identity it names.
func ParseToken(tokenString, secret string) (Identity, error) {
	if secret == "" || strings.TrimSpace(tokenString) == "" {
		return Identity{}, ErrInvalidToken
	}
	claims := Claims{}
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return Identity{}, ErrInvalidToken
	}
	if strings.TrimSpace(claims.Subject) == "" {
		return Identity{}, ErrInvalidToken
	}
	return Identity{
		UserID:   claims.Subject,
		FullName: claims.FullName,
		RoleID:   claims.RoleID,
		RoleName: claims.RoleName,
		Email:    claims.Email,
		Token:    tokenString,
	}, nil
}

// IssueToken signs a session token for id. Used by tooling and tests; the
// production tokens come from the clinic identity service.
func IssueToken(id Identity, secret string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		FullName: id.FullName,
		RoleID:   id.RoleID,
		RoleName: id.RoleName,
		Email:    id.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
