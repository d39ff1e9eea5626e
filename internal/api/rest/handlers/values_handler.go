package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/Dhoini/customer-service/internal/service"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ValuesHandler отдает отдельные значения клиентов
type ValuesHandler struct {
	service service.ValuesService
	log     *logger.Logger
}

func NewValuesHandler(svc service.ValuesService, log *logger.Logger) *ValuesHandler {
	return &ValuesHandler{service: svc, log: log}
}

// GetLastNames фамилии по префиксу
func (h *ValuesHandler) GetLastNames(c *gin.Context) {
	h.writeList(c, h.service.FindLastNamesByPrefix)
}

// GetEmails email адреса по префиксу
func (h *ValuesHandler) GetEmails(c *gin.Context) {
	h.writeList(c, h.service.FindEmailsByPrefix)
}

func (h *ValuesHandler) writeList(c *gin.Context, find func(context.Context, string) ([]string, error)) {
	values, err := find(c.Request.Context(), c.Param("prefix"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if len(values) == 0 {
		respondNotFound(c, h.log)
		return
	}
	c.JSON(http.StatusOK, values)
}

// GetVersion текущая версия клиента в виде строки
func (h *ValuesHandler) GetVersion(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondNotFound(c, h.log)
		return
	}

	version, err := h.service.FindVersionByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if version == nil {
		respondNotFound(c, h.log)
		return
	}
	c.String(http.StatusOK, strconv.Itoa(*version))
}
