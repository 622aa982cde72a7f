package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"keyshop/internal/pkg/jwt"

	"github.com/gin-gonic/gin"
)

const (
	ctxSubjectKey = "auth_subject"
	ctxRoleKey    = "auth_role"
)

// AuthMiddleware guards the admin surface. Tokens are minted by the
// back-office service; this only verifies the shared-secret signature.
type AuthMiddleware struct {
	jwtService *jwt.Service
}

func NewAuthMiddleware(jwtService *jwt.Service) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService}
}

func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Access token required",
			})
			c.Abort()
			return
		}
		token := strings.TrimSpace(authHeader[len("Bearer "):])

		claims, err := m.jwtService.ValidateToken(token)
		if err != nil {
			slog.Warn("Token validation failed in auth middleware", "error", err.Error())
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid or expired token",
			})
			c.Abort()
			return
		}

		if claims.Role != jwt.RoleAdmin && claims.Role != jwt.RoleOperator {
			c.JSON(http.StatusForbidden, gin.H{
				"error": "Insufficient permissions",
			})
			c.Abort()
			return
		}

		c.Set(ctxSubjectKey, claims.Subject)
		c.Set(ctxRoleKey, claims.Role)
		c.Next()
	}
}

func GetSubject(c *gin.Context) (string, bool) {
	if v, exists := c.Get(ctxSubjectKey); exists {
		if s, ok := v.(string); ok {
			return s, true
		}
	}
	return "", false
}
