package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/google/uuid"
	"github.com/tendant/media-catalog/pkg/catalog"
)

// Claim names carried by bearer tokens
const (
	ClaimSubject = "sub"
	ClaimRole    = "role"
)

var errNoIdentity = errors.New("no authenticated user")

// Auth verifies HS256 bearer tokens. Identity is issued elsewhere; the
// catalog only reads the subject and role claims.
type Auth struct {
	tokens *jwtauth.JWTAuth
}

// NewAuth creates an Auth for secret
func NewAuth(secret string) *Auth {
	return &Auth{tokens: jwtauth.New("HS256", []byte(secret), nil)}
}

// IssueToken signs a token for userID with role. A zero ttl means no expiry.
func (a *Auth) IssueToken(userID uuid.UUID, role catalog.UserRole, ttl time.Duration) (string, error) {
	claims := map[string]interface{}{
		ClaimSubject: userID.String(),
		ClaimRole:    string(role),
	}
	jwtauth.SetIssuedNow(claims)
	if ttl > 0 {
		jwtauth.SetExpiryIn(claims, ttl)
	}
	_, token, err := a.tokens.Encode(claims)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return token, nil
}

// Verifier extracts and validates the bearer token, then rejects
// requests without a valid one
func (a *Auth) Verifier() func(http.Handler) http.Handler {
	verify := jwtauth.Verifier(a.tokens)
	return func(next http.Handler) http.Handler {
		return verify(jwtauth.Authenticator(next))
	}
}

// RequireAdmin must run after Verifier
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if RoleFromContext(r.Context()) != catalog.RoleAdmin {
			writeMessage(w, r, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserIDFromContext returns the subject of the verified token
func UserIDFromContext(ctx context.Context) (uuid.UUID, error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return uuid.Nil, err
	}
	sub, ok := claims[ClaimSubject].(string)
	if !ok || sub == "" {
		return uuid.Nil, errNoIdentity
	}
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid subject claim: %w", err)
	}
	return id, nil
}

// RoleFromContext returns the role claim, defaulting to user
func RoleFromContext(ctx context.Context) catalog.UserRole {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return ""
	}
	if role, ok := claims[ClaimRole].(string); ok && role != "" {
		return catalog.UserRole(role)
	}
	return catalog.RoleUser
}
