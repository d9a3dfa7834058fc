// Package handler HTTP 핸들러 계층
package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/greenfordkang-boop/ssep/internal/config"
	"github.com/greenfordkang-boop/ssep/internal/sample/entity"
	"github.com/greenfordkang-boop/ssep/internal/sample/service"
)

// Handlers 핸들러 묶음
type Handlers struct {
	Auth       *AuthHandler
	Request    *RequestHandler
	Attachment *AttachmentHandler
	Dashboard  *DashboardHandler
}

// NewHandlers 핸들러 묶음을 만든다.
func NewHandlers(svc *service.Services, cfg *config.Config) *Handlers {
	return &Handlers{
		Auth:       NewAuthHandler(svc.Auth),
		Request:    NewRequestHandler(svc.Request),
		Attachment: NewAttachmentHandler(svc.Attachment),
		Dashboard:  NewDashboardHandler(svc.Dashboard),
	}
}

// Response 공통 응답 구조
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success 성공 응답
func Success(c *gin.Context, data interface{}) {
	c.JSON(200, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created 생성 성공 응답
func Created(c *gin.Context, data interface{}) {
	c.JSON(201, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Error 에러 응답. 업무 코드의 앞 세 자리가 HTTP 상태가 된다.
func Error(c *gin.Context, code int, message string) {
	statusCode := code / 100
	if statusCode < 100 || statusCode > 599 {
		statusCode = 500
	}
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// BadRequest 파라미터 오류 응답
func BadRequest(c *gin.Context, message string) {
	Error(c, 40000, message)
}

// Unauthorized 인증 실패 응답
func Unauthorized(c *gin.Context, message string) {
	Error(c, 40100, message)
}

// Forbidden 권한 없음 응답
func Forbidden(c *gin.Context, message string) {
	Error(c, 40300, message)
}

// NotFound 대상 없음 응답
func NotFound(c *gin.Context, message string) {
	Error(c, 40400, message)
}

// InternalError 서버 오류 응답
func InternalError(c *gin.Context, message string) {
	Error(c, 50000, message)
}

// GetUserID 컨텍스트에서 사용자 ID를 꺼낸다.
func GetUserID(c *gin.Context) string {
	userID, _ := c.Get("user_id")
	if id, ok := userID.(string); ok {
		return id
	}
	return ""
}

// GetViewer 토큰 클레임에서 열람 주체를 만든다.
func GetViewer(c *gin.Context) entity.Viewer {
	return entity.Viewer{
		Role:    c.GetString("role"),
		Company: c.GetString("company"),
	}
}
