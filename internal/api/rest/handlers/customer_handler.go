package handlers

import (
	"net/http"

	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/internal/service"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/Dhoini/customer-service/pkg/req"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const customersPath = "/api/v1/customers"

// CustomerHandler обработчик для клиентов
type CustomerHandler struct {
	service service.CustomerService
	log     *logger.Logger
}

// NewCustomerHandler создает новый обработчик клиентов
func NewCustomerHandler(svc service.CustomerService, log *logger.Logger) *CustomerHandler {
	return &CustomerHandler{
		service: svc,
		log:     log,
	}
}

// GetCustomers возвращает клиентов по параметрам запроса, 404 если список пуст
func (h *CustomerHandler) GetCustomers(c *gin.Context) {
	customers, err := h.service.Find(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if len(customers) == 0 {
		respondNotFound(c, h.log)
		return
	}

	h.log.Debug("Returned %d customers", len(customers))
	c.JSON(http.StatusOK, toListModel(customers, baseURL(c)))
}

// GetCustomer возвращает клиента по ID с ETag
func (h *CustomerHandler) GetCustomer(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	customer, err := h.service.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if customer == nil {
		respondNotFound(c, h.log)
		return
	}

	tag := etag(customer.Version)
	if inm := c.GetHeader("If-None-Match"); inm != "" && versionFromHeader(inm) == versionFromHeader(tag) {
		c.Header("ETag", tag)
		c.Status(http.StatusNotModified)
		return
	}

	c.Header("ETag", tag)
	c.JSON(http.StatusOK, toModel(*customer, baseURL(c), true))
}

// CreateCustomer создает клиента вместе с аккаунтом
func (h *CustomerHandler) CreateCustomer(c *gin.Context) {
	body, err := req.HandleBody[createCustomerRequest](c.Writer, c.Request, h.log)
	if err != nil {
		c.Abort()
		return
	}

	customer, err := h.service.Create(c.Request.Context(), body.Customer.toDomain(), body.Account)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	h.log.Info("Created customer with ID: %s", customer.ID)
	c.Header("Location", baseURL(c)+"/"+customer.ID.String())
	c.Status(http.StatusCreated)
}

// UpdateCustomer перезаписывает клиента, версия берется из If-Match
func (h *CustomerHandler) UpdateCustomer(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	body, err := req.HandleBody[customerBody](c.Writer, c.Request, h.log)
	if err != nil {
		c.Abort()
		return
	}

	updated, err := h.service.Update(c.Request.Context(), id, body.toDomain(), versionFromHeader(c.GetHeader("If-Match")))
	h.writeUpdated(c, updated, err)
}

// PatchCustomer применяет список операций к клиенту
func (h *CustomerHandler) PatchCustomer(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	ops, err := req.HandleBody[[]domain.PatchOperation](c.Writer, c.Request, h.log)
	if err != nil {
		c.Abort()
		return
	}

	updated, err := h.service.Patch(c.Request.Context(), id, *ops, versionFromHeader(c.GetHeader("If-Match")))
	h.writeUpdated(c, updated, err)
}

func (h *CustomerHandler) writeUpdated(c *gin.Context, updated *domain.Customer, err error) {
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if updated == nil {
		respondNotFound(c, h.log)
		return
	}

	h.log.Info("Updated customer %s to version %d", updated.ID, updated.Version)
	c.Header("ETag", etag(updated.Version))
	c.Status(http.StatusNoContent)
}

// DeleteCustomer удаляет клиента по ID
func (h *CustomerHandler) DeleteCustomer(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	deleted, err := h.service.DeleteByID(c.Request.Context(), id)
	h.writeDeleted(c, deleted, err)
}

// DeleteCustomerByEmail удаляет клиента по параметру email
func (h *CustomerHandler) DeleteCustomerByEmail(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		respondError(c, h.log, domain.ErrInvalidInput)
		return
	}

	deleted, err := h.service.DeleteByEmail(c.Request.Context(), email)
	h.writeDeleted(c, deleted, err)
}

func (h *CustomerHandler) writeDeleted(c *gin.Context, deleted bool, err error) {
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if !deleted {
		respondNotFound(c, h.log)
		return
	}
	c.Status(http.StatusNoContent)
}

// parseID разбирает :id. Неверный формат означает отсутствующий ресурс.
func (h *CustomerHandler) parseID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.log.Warn("Invalid UUID format: %s", c.Param("id"))
		respondNotFound(c, h.log)
		return uuid.Nil, false
	}
	return id, true
}
