package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/Dhoini/customer-service/internal/domain"
	"github.com/Dhoini/customer-service/internal/service"
	"github.com/Dhoini/customer-service/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const formFieldFile = "file"

// MediaHandler загрузка и выдача мультимедиа клиента
type MediaHandler struct {
	service service.MediaService
	log     *logger.Logger
}

func NewMediaHandler(svc service.MediaService, log *logger.Logger) *MediaHandler {
	return &MediaHandler{service: svc, log: log}
}

// Upload принимает тело запроса как есть или поле file из multipart формы
func (h *MediaHandler) Upload(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondNotFound(c, h.log)
		return
	}

	contentType := c.GetHeader("Content-Type")
	if contentType == "" {
		respondError(c, h.log, fmt.Errorf("%w: Content-Type header is required", domain.ErrInvalidInput))
		return
	}

	var (
		body io.Reader = c.Request.Body
		size           = c.Request.ContentLength
	)
	if mediaType, _, _ := mime.ParseMediaType(contentType); strings.HasPrefix(mediaType, "multipart/") {
		fh, err := c.FormFile(formFieldFile)
		if err != nil {
			respondError(c, h.log, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
			return
		}
		f, err := fh.Open()
		if err != nil {
			respondError(c, h.log, err)
			return
		}
		defer f.Close()

		body, size = f, fh.Size
		contentType = fh.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/octet-stream"
		}
	}

	if err := h.service.Upload(c.Request.Context(), id, contentType, body, size); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Download отдает сохраненное вложение
func (h *MediaHandler) Download(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondNotFound(c, h.log)
		return
	}

	obj, err := h.service.Download(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	if obj == nil {
		respondNotFound(c, h.log)
		return
	}
	defer obj.Body.Close()

	c.DataFromReader(http.StatusOK, obj.Size, obj.ContentType, obj.Body, nil)
}
