package handlers

import (
	"net/http"
	"time"

	"github.com/Dhoini/customer-service/internal/auth"
	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/internal/service"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/Dhoini/customer-service/pkg/req"
	"github.com/gin-gonic/gin"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// AuthHandler вход и роли вызывающего
type AuthHandler struct {
	accounts service.AccountService
	tokens   *auth.TokenService
	log      *logger.Logger
}

func NewAuthHandler(accounts service.AccountService, tokens *auth.TokenService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{accounts: accounts, tokens: tokens, log: log}
}

// Login выдает JWT по имени и паролю
func (h *AuthHandler) Login(c *gin.Context) {
	body, err := req.HandleBody[loginRequest](c.Writer, c.Request, h.log)
	if err != nil {
		c.Abort()
		return
	}

	account, err := h.accounts.Authenticate(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	token, expiresAt, err := h.tokens.Issue(account)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Infow("User logged in", "username", account.Username)
	c.JSON(http.StatusOK, loginResponse{Token: token, ExpiresAt: expiresAt})
}

// Roles роли текущего пользователя
func (h *AuthHandler) Roles(c *gin.Context) {
	principal, ok := auth.PrincipalFromContext(c.Request.Context())
	if !ok {
		respondError(c, h.log, domain.ErrUnauthenticated)
		return
	}
	roles := principal.Roles
	if roles == nil {
		roles = []domain.Role{}
	}
	c.JSON(http.StatusOK, roles)
}
