package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/greenfordkang-boop/ssep/internal/sample/service"
)

// DashboardHandler 현황 집계 핸들러
type DashboardHandler struct {
	svc *service.DashboardService
}

func NewDashboardHandler(svc *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

// Summary GET /dashboard/summary (관리자 전용)
func (h *DashboardHandler) Summary(c *gin.Context) {
	Success(c, h.svc.Summarize())
}
