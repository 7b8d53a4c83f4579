package middlewares

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"civicreporter-be/apperror"
	"civicreporter-be/policy"
)

// CallerKey is the gin context key holding the resolved policy.Caller.
const CallerKey = "caller"

// Authenticator turns a bearer token into the caller behind it.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (policy.Caller, error)
}

// AuthMiddleware requires a valid bearer token from an active account.
func AuthMiddleware(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Error(apperror.Unauthorized("no authorization token provided"))
			c.Abort()
			return
		}
		if !authenticate(c, auth, token) {
			return
		}
		c.Next()
	}
}

// OptionalAuth resolves the caller when a token is sent and lets the request
// through as anonymous when none is. A token that is sent but invalid is
// still rejected.
func OptionalAuth(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.Set(CallerKey, policy.Anonymous)
			c.Next()
			return
		}
		if !authenticate(c, auth, token) {
			return
		}
		c.Next()
	}
}

func authenticate(c *gin.Context, auth Authenticator, token string) bool {
	caller, err := auth.Authenticate(c.Request.Context(), token)
	if err != nil {
		c.Error(err)
		c.Abort()
		return false
	}
	c.Set(CallerKey, caller)
	return true
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", false
	}
	// Extracting token from "Bearer <token>" format
	token := header
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		token = header[7:]
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// CallerFrom returns the caller set by the auth middlewares, or the
// anonymous caller.
func CallerFrom(c *gin.Context) policy.Caller {
	if v, ok := c.Get(CallerKey); ok {
		if caller, ok := v.(policy.Caller); ok {
			return caller
		}
	}
	return policy.Anonymous
}
