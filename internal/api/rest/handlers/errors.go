package handlers

import (
	"errors"
	"net/http"

	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/Dhoini/customer-service/pkg/res"
	"github.com/gin-gonic/gin"
)

// statusFor сопоставляет ошибку сервиса с HTTP статусом
func statusFor(err error) int {
	var violations domain.ValidationErrors
	switch {
	case errors.As(err, &violations):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidVersion):
		return http.StatusPreconditionFailed
	case errors.Is(err, domain.ErrEmailExists),
		errors.Is(err, domain.ErrUsernameExists),
		errors.Is(err, domain.ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidAccount),
		errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrUnauthorized):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError пишет JSON ошибки. Детали 5xx клиенту не отдаются.
func respondError(c *gin.Context, log *logger.Logger, err error) {
	status := statusFor(err)
	body := res.ErrorResponse{Error: err.Error(), ErrorCode: status}

	var violations domain.ValidationErrors
	if errors.As(err, &violations) {
		body.Error = "validation failed"
		body.Details = violations
	}
	if status == http.StatusInternalServerError {
		log.Errorw("Request failed", "path", c.Request.URL.Path, "error", err)
		body.Error = http.StatusText(status)
	}

	_ = c.Error(err)
	res.JsonErrorResponse(c.Writer, body, status, log)
	c.Abort()
}

func respondNotFound(c *gin.Context, log *logger.Logger) {
	res.JsonErrorResponse(c.Writer, res.ErrorResponse{Error: "not found"}, http.StatusNotFound, log)
	c.Abort()
}
