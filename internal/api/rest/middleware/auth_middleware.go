package middleware

import (
	"net/http"
	"strings"

	"github.com/Dhoini/customer-service/internal/auth"
	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/Dhoini/customer-service/pkg/res"
	"github.com/gin-gonic/gin"
)

const (
	// ContextPrincipalKey ключ вызывающего в gin.Context
	ContextPrincipalKey = "principal"
	authHeaderPrefix    = "Bearer "
)

type JWTMiddleware struct {
	log       *logger.Logger
	validator auth.TokenValidator
}

func NewJWTMiddleware(log *logger.Logger, validator auth.TokenValidator) *JWTMiddleware {
	return &JWTMiddleware{
		log:       log,
		validator: validator,
	}
}

// Authenticate разбирает заголовок Authorization, если он есть.
// Запрос без заголовка проходит анонимно, с неверным токеном получает 401.
func (m *JWTMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		if !strings.HasPrefix(authHeader, authHeaderPrefix) {
			m.handleAuthError(c, http.StatusUnauthorized, "Unsupported authorization scheme")
			return
		}

		claims, err := m.validator.Validate(strings.TrimPrefix(authHeader, authHeaderPrefix))
		if err != nil {
			m.handleAuthError(c, http.StatusUnauthorized, "Token validation failed: "+err.Error())
			return
		}

		principal := claims.Principal()
		c.Set(ContextPrincipalKey, principal)
		c.Request = c.Request.WithContext(auth.WithPrincipal(c.Request.Context(), principal))

		m.log.Debugw("User authenticated", "username", principal.Username)
		c.Next()
	}
}

// RequireAuth требует аутентифицированного вызывающего с одной из ролей
func (m *JWTMiddleware) RequireAuth(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := auth.PrincipalFromContext(c.Request.Context())
		if !ok {
			m.handleAuthError(c, http.StatusUnauthorized, "Missing authorization token")
			return
		}
		if len(roles) > 0 && !hasAnyRole(principal, roles) {
			m.handleAuthError(c, http.StatusForbidden, "Insufficient permissions")
			return
		}
		c.Next()
	}
}

func hasAnyRole(p domain.Principal, roles []domain.Role) bool {
	for _, r := range roles {
		if p.HasRole(r) {
			return true
		}
	}
	return false
}

func (m *JWTMiddleware) handleAuthError(c *gin.Context, status int, message string) {
	m.log.Warnw("HTTP authentication failed", "path", c.Request.URL.Path, "error", message)
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", `Bearer realm="customer-service"`)
	}
	res.JsonResponse(c.Writer, res.ErrorResponse{
		Error:     message,
		ErrorCode: status,
	}, status)
	c.Abort()
}
