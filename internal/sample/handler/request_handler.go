package handler

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/greenfordkang-boop/ssep/internal/sample/service"
	"github.com/greenfordkang-boop/ssep/internal/sample/store"
)

// RequestHandler 샘플 요청 핸들러
type RequestHandler struct {
	svc *service.RequestService
}

func NewRequestHandler(svc *service.RequestService) *RequestHandler {
	return &RequestHandler{svc: svc}
}

// List GET /requests
func (h *RequestHandler) List(c *gin.Context) {
	items := h.svc.List(GetViewer(c))
	Success(c, gin.H{
		"items": items,
		"total": len(items),
	})
}

// Get GET /requests/:id
func (h *RequestHandler) Get(c *gin.Context) {
	view, err := h.svc.Get(GetViewer(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			NotFound(c, err.Error())
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, view)
}

// Create POST /requests
func (h *RequestHandler) Create(c *gin.Context) {
	var req service.CreateRequestInput
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	view, err := h.svc.Create(GetViewer(c), req)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			BadRequest(c, err.Error())
			return
		}
		InternalError(c, err.Error())
		return
	}
	Created(c, view)
}

// Update PUT /requests/:id (관리자 전용)
func (h *RequestHandler) Update(c *gin.Context) {
	var patch map[string]string
	if err := c.ShouldBindJSON(&patch); err != nil {
		BadRequest(c, err.Error())
		return
	}

	view, err := h.svc.Update(c.Param("id"), patch)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			BadRequest(c, err.Error())
		case errors.Is(err, store.ErrNotFound):
			NotFound(c, err.Error())
		default:
			InternalError(c, err.Error())
		}
		return
	}
	Success(c, view)
}

// DeleteRequest 삭제 요청 본문
type DeleteRequest struct {
	IDs []string `json:"ids" binding:"required"`
}

// Delete DELETE /requests (관리자 전용)
func (h *RequestHandler) Delete(c *gin.Context) {
	var req DeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err.Error())
		return
	}

	removed, err := h.svc.Delete(req.IDs)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			BadRequest(c, err.Error())
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, gin.H{"removed": removed})
}

// Import POST /requests/import (관리자 전용)
func (h *RequestHandler) Import(c *gin.Context) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		BadRequest(c, "엑셀 파일을 업로드해 주세요")
		return
	}
	defer file.Close()

	result, err := h.svc.Import(file)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			BadRequest(c, err.Error())
			return
		}
		InternalError(c, err.Error())
		return
	}
	Success(c, result)
}

// Export GET /requests/export (관리자 전용)
func (h *RequestHandler) Export(c *gin.Context) {
	f, err := h.svc.Export()
	if err != nil {
		InternalError(c, err.Error())
		return
	}
	defer f.Close()

	filename := "sample_requests_" + time.Now().Format("20060102") + ".xlsx"
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", "attachment; filename=\""+filename+"\"")
	c.Header("Content-Transfer-Encoding", "binary")

	if err := f.Write(c.Writer); err != nil {
		InternalError(c, "write excel: "+err.Error())
	}
}
