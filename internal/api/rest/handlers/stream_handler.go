package handlers

import (
	"net/http"

	"github.com/Dhoini/customer-service/internal/service"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/gin-gonic/gin"
)

const eventCustomer = "customer"

// StreamHandler отдает клиентов потоком server-sent events
type StreamHandler struct {
	service service.CustomerService
	log     *logger.Logger
}

func NewStreamHandler(svc service.CustomerService, log *logger.Logger) *StreamHandler {
	return &StreamHandler{service: svc, log: log}
}

// StreamCustomers одно событие customer на запись; фильтры как у GET /customers
func (h *StreamHandler) StreamCustomers(c *gin.Context) {
	customers, err := h.service.Find(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	base := baseURL(c)
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Status(http.StatusOK)

	for _, customer := range customers {
		select {
		case <-c.Request.Context().Done():
			h.log.Debugw("Stream client disconnected")
			return
		default:
		}
		c.SSEvent(eventCustomer, toModel(customer, base, false))
		c.Writer.Flush()
	}
	h.log.Debug("Streamed %d customers", len(customers))
}
