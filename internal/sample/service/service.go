// Package service 업무 로직 계층
package service

import (
	"errors"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/greenfordkang-boop/ssep/internal/config"
	"github.com/greenfordkang-boop/ssep/internal/sample/repository"
	"github.com/greenfordkang-boop/ssep/internal/sample/store"
)

// ErrValidation 입력 검증 실패. 핸들러는 400으로 내려보낸다.
var ErrValidation = errors.New("validation failed")

// ErrInvalidCredentials 아이디 또는 비밀번호 불일치
var ErrInvalidCredentials = errors.New("invalid credentials")

// Services 서비스 묶음
type Services struct {
	Auth       *AuthService
	Request    *RequestService
	Attachment *AttachmentService
	Dashboard  *DashboardService
}

// NewServices 서비스 묶음을 만든다.
func NewServices(repos *repository.Repositories, st *store.Store, rdb *redis.Client, cfg *config.Config, logger *zap.Logger) *Services {
	// MinIO 클라이언트 초기화. 설정이 없으면 로컬 디렉터리 저장으로 대체한다.
	var minioClient *minio.Client
	if cfg.MinIO.Endpoint != "" {
		var err error
		minioClient, err = minio.New(cfg.MinIO.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.MinIO.AccessKey, cfg.MinIO.SecretKey, ""),
			Secure: cfg.MinIO.UseSSL,
		})
		if err != nil {
			logger.Warn("MinIO 초기화 실패, 로컬 저장으로 대체", zap.Error(err))
			minioClient = nil
		}
	}

	requestSvc := NewRequestService(st, logger)

	return &Services{
		Auth:       NewAuthService(repos.User, rdb, cfg, logger),
		Request:    requestSvc,
		Attachment: NewAttachmentService(st, minioClient, cfg.MinIO.Bucket, cfg.Attachment.LocalDir, logger),
		Dashboard:  NewDashboardService(st),
	}
}
