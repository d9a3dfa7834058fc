package handler

import (
	"errors"
	"io"

	"github.com/gin-gonic/gin"

	"github.com/greenfordkang-boop/ssep/internal/sample/service"
	"github.com/greenfordkang-boop/ssep/internal/sample/store"
)

// AttachmentHandler 첨부 파일 핸들러
type AttachmentHandler struct {
	svc *service.AttachmentService
}

func NewAttachmentHandler(svc *service.AttachmentService) *AttachmentHandler {
	return &AttachmentHandler{svc: svc}
}

// Upload POST /requests/:id/attachments
func (h *AttachmentHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "첨부 파일을 업로드해 주세요")
		return
	}
	defer file.Close()

	objectName, err := h.svc.Upload(c.Request.Context(), GetViewer(c), c.Param("id"), header.Filename, header.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			NotFound(c, err.Error())
		case errors.Is(err, service.ErrValidation):
			BadRequest(c, err.Error())
		default:
			InternalError(c, err.Error())
		}
		return
	}
	Created(c, gin.H{"object_name": objectName})
}

// Download GET /requests/:id/attachments/:name
func (h *AttachmentHandler) Download(c *gin.Context) {
	name := c.Param("name")
	reader, err := h.svc.Download(c.Request.Context(), GetViewer(c), c.Param("id"), name)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, err.Error())
			return
		}
		InternalError(c, err.Error())
		return
	}
	defer reader.Close()

	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", "attachment; filename=\""+name+"\"")
	if _, err := io.Copy(c.Writer, reader); err != nil {
		InternalError(c, "write attachment: "+err.Error())
	}
}
