package middleware

import (
	"context"
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/dwnGnL/adminConsole/models"
	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

var (
	ErrMissingToken = errors.New("missing Authorization header")
	ErrInvalidToken = errors.New("invalid token")
)

// Verifier checks a bearer credential and names the caller.
type Verifier interface {
	Verify(ctx context.Context, token string) (models.Principal, error)
}

// VerifierFunc adapts a plain function to Verifier.
type VerifierFunc func(ctx context.Context, token string) (models.Principal, error)

func (f VerifierFunc) Verify(ctx context.Context, token string) (models.Principal, error) {
	return f(ctx, token)
}

// StaticVerifier accepts exactly one configured token and treats its holder
// as the console admin.
type StaticVerifier struct {
	Token string
}

func (s StaticVerifier) Verify(_ context.Context, token string) (models.Principal, error) {
	if s.Token == "" || subtle.ConstantTimeCompare([]byte(s.Token), []byte(token)) != 1 {
		return models.Principal{}, ErrInvalidToken
	}
	return models.Principal{UserName: "admin", IsAdmin: true}, nil
}

// TokenFromHeader accepts "Bearer <token>" as well as a bare token.
func TokenFromHeader(header string) string {
	header = strings.TrimSpace(header)
	parts := strings.Fields(header)
	switch len(parts) {
	case 0:
		return ""
	case 1:
		return parts[0]
	}
	if strings.EqualFold(parts[0], "Bearer") {
		return parts[1]
	}
	return ""
}

// RequireAuth rejects requests whose Authorization header v does not accept.
func RequireAuth(v Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Unauthorized - " + ErrMissingToken.Error()})
			return
		}
		principal, err := v.Verify(c.Request.Context(), TokenFromHeader(header))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"code": "UNAUTHORIZED", "message": "Unauthorized"})
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

func GetUserFromContext(c *gin.Context) models.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}
	}
	principal, _ := v.(models.Principal)
	return principal
}

//CORSMiddleware solve cors problem by adding headers
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Content-Type", "application/json")
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,PUT,POST,DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, Refresh-Authorization, X-Request-ID")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}

		c.Next()
	}
}
