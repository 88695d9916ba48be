package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"journal-backend/internal/auth"
)

// TokenVerifier resolves a bearer token to its claims.
type TokenVerifier interface {
	Verify(token, wantType string) (auth.Claims, error)
}

// RequireAuth rejects requests without a valid access token and stores the
// claims on the request context.
func RequireAuth(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok := auth.BearerToken(c.GetHeader("Authorization"))
		if tok == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		claims, err := v.Verify(tok, auth.TokenAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Request = c.Request.WithContext(auth.WithClaims(c.Request.Context(), claims))
		c.Next()
	}
}

func userID(c *gin.Context) string {
	claims, _ := auth.ClaimsFromContext(c.Request.Context())
	return claims.UserID
}

func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if id := userID(c); id != "" {
			fields = append(fields, zap.String("user_id", id))
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			logger.Error("request", fields...)
		case len(c.Errors) > 0:
			logger.Warn("request", append(fields, zap.String("errors", c.Errors.String()))...)
		default:
			logger.Info("request", fields...)
		}
	}
}

func corsMiddleware(allowed []string) gin.HandlerFunc {
	anyOrigin := len(allowed) == 0
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		if o == "*" {
			anyOrigin = true
		}
		set[o] = struct{}{}
	}

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := set[origin]; ok {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
			c.Writer.Header().Set("Vary", "Origin")
		} else if anyOrigin {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PATCH,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
