package service

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/greenfordkang-boop/ssep/internal/sample/entity"
	"github.com/greenfordkang-boop/ssep/internal/sample/store"
)

// AttachmentService 첨부 파일 서비스. MinIO가 설정돼 있으면 객체 저장소에,
// 아니면 로컬 디렉터리에 저장한다. 저장명은 요청 레코드의 attachment
// 컬럼에 쉼표로 이어 붙는다.
type AttachmentService struct {
	store       *store.Store
	minioClient *minio.Client
	bucket      string
	localDir    string
	logger      *zap.Logger
	now         func() time.Time
}

// NewAttachmentService 첨부 서비스 생성
func NewAttachmentService(st *store.Store, minioClient *minio.Client, bucket, localDir string, logger *zap.Logger) *AttachmentService {
	return &AttachmentService{
		store:       st,
		minioClient: minioClient,
		bucket:      bucket,
		localDir:    localDir,
		logger:      logger,
		now:         time.Now,
	}
}

// sanitizeFilename 파일명에서 문자, 숫자, "._- " 외의 문자를 제거한다.
func sanitizeFilename(name string) string {
	var b strings.Builder
	for _, c := range name {
		if unicode.IsLetter(c) || unicode.IsDigit(c) || strings.ContainsRune("._- ", c) {
			b.WriteRune(c)
		}
	}
	return b.String()
}

// Upload 요청에 파일을 첨부한다. 고객사 계정은 자사 요청에만 첨부할 수 있다.
func (s *AttachmentService) Upload(ctx context.Context, viewer entity.Viewer, id, filename string, size int64, reader io.Reader) (string, error) {
	r, ok := s.store.Get(id)
	if !ok {
		return "", fmt.Errorf("request %s: %w", id, store.ErrNotFound)
	}
	if !viewer.IsAdmin() && strings.TrimSpace(r.Company) != strings.TrimSpace(viewer.Company) {
		return "", fmt.Errorf("request %s: %w", id, store.ErrNotFound)
	}

	clean := sanitizeFilename(filepath.Base(filename))
	if clean == "" {
		return "", fmt.Errorf("%w: empty filename", ErrValidation)
	}
	objectName := fmt.Sprintf("%s_%s", s.now().Format("20060102_150405"), clean)

	if s.minioClient != nil {
		_, err := s.minioClient.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{})
		if err != nil {
			return "", fmt.Errorf("upload to minio: %w", err)
		}
	} else {
		if err := os.MkdirAll(s.localDir, 0o755); err != nil {
			return "", fmt.Errorf("create attachment dir: %w", err)
		}
		dst, err := os.Create(filepath.Join(s.localDir, objectName))
		if err != nil {
			return "", fmt.Errorf("create attachment file: %w", err)
		}
		defer dst.Close()
		if _, err := io.Copy(dst, reader); err != nil {
			return "", fmt.Errorf("write attachment file: %w", err)
		}
	}

	_, err := s.store.Update(id, func(r *entity.Record) error {
		if r.Attachment == "" {
			r.Attachment = objectName
		} else {
			r.Attachment = r.Attachment + "," + objectName
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("record attachment: %w", err)
	}

	s.logger.Info("첨부 업로드", zap.String("id", id), zap.String("object", objectName))
	return objectName, nil
}

// Download 저장명으로 첨부 파일을 연다. 호출측이 닫아야 한다.
func (s *AttachmentService) Download(ctx context.Context, viewer entity.Viewer, id, objectName string) (io.ReadCloser, error) {
	r, ok := s.store.Get(id)
	if !ok {
		return nil, fmt.Errorf("request %s: %w", id, store.ErrNotFound)
	}
	if !viewer.IsAdmin() && strings.TrimSpace(r.Company) != strings.TrimSpace(viewer.Company) {
		return nil, fmt.Errorf("request %s: %w", id, store.ErrNotFound)
	}

	// 레코드에 기록된 첨부만 내려준다. 경로 조작 차단을 겸한다.
	found := false
	for _, name := range strings.Split(r.Attachment, ",") {
		if strings.TrimSpace(name) == objectName {
			found = true
			break
		}
	}
	if !found {
		return nil, fmt.Errorf("attachment %s: %w", objectName, store.ErrNotFound)
	}

	if s.minioClient != nil {
		obj, err := s.minioClient.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
		if err != nil {
			return nil, fmt.Errorf("fetch from minio: %w", err)
		}
		return obj, nil
	}

	f, err := os.Open(filepath.Join(s.localDir, objectName))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("attachment %s: %w", objectName, store.ErrNotFound)
		}
		return nil, fmt.Errorf("open attachment: %w", err)
	}
	return f, nil
}
