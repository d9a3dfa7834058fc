package service

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/greenfordkang-boop/ssep/internal/sample/entity"
	"github.com/greenfordkang-boop/ssep/internal/sample/schema"
	"github.com/greenfordkang-boop/ssep/internal/sample/store"
)

// 진행 일자 컬럼. 한 번 기록되면 수정 화면에서 바꿀 수 없다.
// 일괄 병합(엑셀 업로드) 경로는 이 제약을 받지 않는다.
var pipelineDateFields = map[string]bool{
	entity.FieldDrawingReceivedDate: true,
	entity.FieldMaterialRequestDate: true,
	entity.FieldMaterialArrivalDate: true,
	entity.FieldSampleCompletedDate: true,
	entity.FieldShippedDate:         true,
}

// RequestService 샘플 요청 서비스
type RequestService struct {
	store  *store.Store
	logger *zap.Logger
	now    func() time.Time
}

// NewRequestService 샘플 요청 서비스 생성
func NewRequestService(st *store.Store, logger *zap.Logger) *RequestService {
	return &RequestService{store: st, logger: logger, now: time.Now}
}

// RequestView 조회용 레코드. 진행 단계와 납기 경과는 저장하지 않고
// 조회 시점에 파생한다.
type RequestView struct {
	entity.Record
	Stage   entity.Stage `json:"stage"`
	Overdue bool         `json:"overdue"`
}

func (s *RequestService) view(r entity.Record) RequestView {
	return RequestView{
		Record:  r,
		Stage:   entity.DeriveStage(&r),
		Overdue: entity.Overdue(&r, s.now()),
	}
}

// CreateRequestInput 요청 등록 입력. 관리 항목(진행 일자, 관리자 비고)은
// 받지 않는다.
type CreateRequestInput struct {
	Requester     string `json:"requester"`
	Department    string `json:"department"`
	Company       string `json:"company"`
	Model         string `json:"model" binding:"required"`
	PartName      string `json:"part_name" binding:"required"`
	PartNo        string `json:"part_no"`
	DeliveryPlace string `json:"delivery_place"`
	Quantity      int    `json:"quantity" binding:"required"`
	DueDate       string `json:"due_date"`
	RequestNotes  string `json:"request_notes"`
}

// List 호출자 가시 범위의 요청 목록
func (s *RequestService) List(viewer entity.Viewer) []RequestView {
	records := s.store.FilteredBy(viewer)
	out := make([]RequestView, 0, len(records))
	for _, r := range records {
		out = append(out, s.view(r))
	}
	return out
}

// Get 관리번호로 1건 조회. 고객사 계정은 타사 레코드를 볼 수 없다.
func (s *RequestService) Get(viewer entity.Viewer, id string) (RequestView, error) {
	r, ok := s.store.Get(id)
	if !ok {
		return RequestView{}, fmt.Errorf("request %s: %w", id, store.ErrNotFound)
	}
	if !viewer.IsAdmin() && strings.TrimSpace(r.Company) != strings.TrimSpace(viewer.Company) {
		return RequestView{}, fmt.Errorf("request %s: %w", id, store.ErrNotFound)
	}
	return s.view(r), nil
}

// Create 신규 요청을 등록한다. 고객사 계정의 소속 회사는 항상 토큰에서
// 가져오며 본문 값으로 바꿀 수 없다.
func (s *RequestService) Create(viewer entity.Viewer, in CreateRequestInput) (RequestView, error) {
	if strings.TrimSpace(in.Model) == "" {
		return RequestView{}, fmt.Errorf("%w: model is required", ErrValidation)
	}
	if strings.TrimSpace(in.PartName) == "" {
		return RequestView{}, fmt.Errorf("%w: part_name is required", ErrValidation)
	}
	if in.Quantity <= 0 {
		return RequestView{}, fmt.Errorf("%w: quantity must be positive", ErrValidation)
	}

	company := strings.TrimSpace(in.Company)
	if !viewer.IsAdmin() {
		company = strings.TrimSpace(viewer.Company)
	}
	if company == "" {
		return RequestView{}, fmt.Errorf("%w: company is required", ErrValidation)
	}

	r := entity.Record{
		Requester:     strings.TrimSpace(in.Requester),
		Department:    strings.TrimSpace(in.Department),
		Company:       company,
		Model:         strings.TrimSpace(in.Model),
		PartName:      strings.TrimSpace(in.PartName),
		PartNo:        strings.TrimSpace(in.PartNo),
		DeliveryPlace: strings.TrimSpace(in.DeliveryPlace),
		Quantity:      in.Quantity,
		DueDate:       entity.ParseDate(in.DueDate),
		RequestNotes:  in.RequestNotes,
	}

	saved, err := s.store.Add(r)
	if err != nil {
		return RequestView{}, fmt.Errorf("add request: %w", err)
	}
	s.logger.Info("샘플 요청 등록", zap.String("id", saved.ID), zap.String("company", saved.Company))
	return s.view(saved), nil
}

// Update 컬럼 단위 수정. 관리번호는 바꿀 수 없고, 이미 기록된 진행 일자는
// 수정하거나 지울 수 없다.
func (s *RequestService) Update(id string, patch map[string]string) (RequestView, error) {
	if len(patch) == 0 {
		return RequestView{}, fmt.Errorf("%w: empty patch", ErrValidation)
	}

	known := make(map[string]bool, len(schema.Fields()))
	for _, f := range schema.Fields() {
		known[f] = true
	}
	for field := range patch {
		if field == entity.FieldID {
			return RequestView{}, fmt.Errorf("%w: id is immutable", ErrValidation)
		}
		if !known[field] {
			return RequestView{}, fmt.Errorf("%w: unknown field %q", ErrValidation, field)
		}
	}

	updated, err := s.store.Update(id, func(r *entity.Record) error {
		for field, val := range patch {
			// 표기만 다른 같은 날짜는 변경이 아니다.
			if pipelineDateFields[field] && r.Get(field) != "" && r.Get(field) != entity.ParseDate(val).String() {
				return fmt.Errorf("%w: %s already recorded", ErrValidation, field)
			}
		}
		for field, val := range patch {
			r.Set(field, val)
		}
		return nil
	})
	if err != nil {
		return RequestView{}, err
	}
	s.logger.Info("샘플 요청 수정", zap.String("id", id))
	return s.view(updated), nil
}

// Delete 관리번호 목록 삭제. 빈 목록은 실수로 보고 거절한다.
func (s *RequestService) Delete(ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: empty id list", ErrValidation)
	}
	removed, err := s.store.DeleteByIDs(ids)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("샘플 요청 삭제", zap.Int("removed", removed))
	}
	return removed, nil
}

// Import 엑셀 업로드를 대장에 병합한다. 레거시 컬럼명은 정식명으로
// 정합한 뒤 병합된다.
func (s *RequestService) Import(reader io.Reader) (store.MergeResult, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return store.MergeResult{}, fmt.Errorf("%w: not a valid xlsx file", ErrValidation)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return store.MergeResult{}, fmt.Errorf("%w: read sheet: %v", ErrValidation, err)
	}
	if len(rows) < 2 {
		return store.MergeResult{}, fmt.Errorf("%w: sheet has no data rows", ErrValidation)
	}

	res, err := s.store.Merge(schema.NormalizeBatch(rows[0], rows[1:]))
	if err != nil {
		return store.MergeResult{}, fmt.Errorf("merge: %w", err)
	}
	s.logger.Info("엑셀 병합 완료", zap.Int("updated", res.Updated), zap.Int("added", res.Added))
	return res, nil
}

// Export 현재 대장을 엑셀 파일로 내린다.
func (s *RequestService) Export() (*excelize.File, error) {
	return s.store.Export()
}
