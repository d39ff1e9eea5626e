package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dhoini/customer-service/internal/auth"
	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newRouter(tokens *auth.TokenService, roles ...domain.Role) *gin.Engine {
	m := NewJWTMiddleware(logger.NewNop(), tokens)
	r := gin.New()
	r.Use(m.Authenticate())
	r.GET("/open", func(c *gin.Context) {
		_, ok := auth.PrincipalFromContext(c.Request.Context())
		c.JSON(http.StatusOK, gin.H{"authenticated": ok})
	})
	r.GET("/secure", m.RequireAuth(roles...), func(c *gin.Context) {
		p, _ := c.Get(ContextPrincipalKey)
		c.JSON(http.StatusOK, gin.H{"user": p.(domain.Principal).Username})
	})
	return r
}

func bearer(t *testing.T, tokens *auth.TokenService, roles ...domain.Role) string {
	token, _, err := tokens.Issue(domain.Account{Username: "alice", Roles: roles})
	require.NoError(t, err)
	return "Bearer " + token
}

func TestAuthenticate_AnonymousPassesThrough(t *testing.T) {
	r := newRouter(auth.NewTokenService("s", time.Hour))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/open", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated":false}`, w.Body.String())
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	r := newRouter(auth.NewTokenService("s", time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
}

func TestAuthenticate_WrongScheme(t *testing.T) {
	r := newRouter(auth.NewTokenService("s", time.Hour))
	req := httptest.NewRequest(http.MethodGet, "/open", nil)
	req.Header.Set("Authorization", "Basic abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth(t *testing.T) {
	tokens := auth.NewTokenService("s", time.Hour)
	r := newRouter(tokens, domain.RoleAdmin)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"no token", "", http.StatusUnauthorized},
		{"wrong role", bearer(t, tokens, domain.RoleCustomer), http.StatusForbidden},
		{"admin", bearer(t, tokens, domain.RoleAdmin), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/secure", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestRequestLogger_LevelByStatus(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	r := gin.New()
	r.Use(RequestLogger(logger.NewWithCore(core)))
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/missing", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusInternalServerError) })

	for _, p := range []string{"/ok?x=1", "/missing", "/fail"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}

	require.Equal(t, 3, logs.Len())
	all := logs.All()
	assert.Equal(t, zap.InfoLevel, all[0].Level)
	assert.Equal(t, "/ok?x=1", all[0].ContextMap()["path"])
	assert.Equal(t, zap.WarnLevel, all[1].Level)
	assert.Equal(t, zap.ErrorLevel, all[2].Level)
}
