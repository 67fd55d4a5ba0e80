package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/pageza/foodgram/backend/internal/logging"
	"github.com/pageza/foodgram/backend/internal/types"
)

// Keys set on the gin context by the auth middleware.
const (
	ContextKeyUserID   = "user_id"
	ContextKeyUsername = "username"
	ContextKeyClaims   = "token_claims"
)

// TokenValidator is an interface for validating JWT tokens
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
}

// bearerToken extracts the token from "Bearer <t>" or "Token <t>".
func bearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || token == "" {
		return "", false
	}
	if !strings.EqualFold(scheme, "Bearer") && !strings.EqualFold(scheme, "Token") {
		return "", false
	}
	return strings.TrimSpace(token), true
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": []string{message}})
}

// authenticate validates the Authorization header, if any, and stores the
// claims. It reports false after aborting the request.
func authenticate(c *gin.Context, validator TokenValidator, required bool) bool {
	header := c.GetHeader("Authorization")
	if header == "" {
		if required {
			unauthorized(c, "Authentication credentials were not provided.")
			return false
		}
		return true
	}

	token, ok := bearerToken(header)
	if !ok {
		unauthorized(c, "Invalid authorization header format.")
		return false
	}
	claims, err := validator.ValidateToken(c.Request.Context(), token)
	if err != nil {
		logging.Ctx(c.Request.Context()).Debug().Err(err).Msg("token rejected")
		unauthorized(c, "Invalid token.")
		return false
	}

	c.Set(ContextKeyUserID, claims.UserID)
	c.Set(ContextKeyUsername, claims.Username)
	c.Set(ContextKeyClaims, claims)
	c.Request = c.Request.WithContext(logging.ContextWithUserID(c.Request.Context(), claims.UserID.String()))
	return true
}

// RequireAuth rejects requests without a valid token.
func RequireAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authenticate(c, validator, true) {
			c.Next()
		}
	}
}

// OptionalAuth lets anonymous requests through but still rejects a token
// that is present and invalid.
func OptionalAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if authenticate(c, validator, false) {
			c.Next()
		}
	}
}

// UserID returns the authenticated user's id, or uuid.Nil for anonymous
// requests.
func UserID(c *gin.Context) uuid.UUID {
	if v, ok := c.Get(ContextKeyUserID); ok {
		if id, ok := v.(uuid.UUID); ok {
			return id
		}
	}
	return uuid.Nil
}

// Claims returns the validated token claims of the request, if any.
func Claims(c *gin.Context) (*types.TokenClaims, bool) {
	v, ok := c.Get(ContextKeyClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*types.TokenClaims)
	return claims, ok
}
