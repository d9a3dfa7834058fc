// Package store 엑셀 대장 파일을 단일 쓰기 지점으로 감싸는 저장소.
// 모든 변경은 메모리 복사본에 적용한 뒤 파일 전체를 다시 쓴다.
package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/greenfordkang-boop/ssep/internal/sample/entity"
	"github.com/greenfordkang-boop/ssep/internal/sample/schema"
)

// ErrWrite 대장 파일 쓰기 실패. 호출측은 이 경우 메모리 상태와 파일이
// 어긋났을 수 있음을 전제로 처리한다.
var ErrWrite = errors.New("ledger write failed")

// ErrNotFound 관리번호에 해당하는 레코드 없음
var ErrNotFound = errors.New("record not found")

const idPrefix = "REQ"

// Store 대장 저장소. 내부 잠금으로 동시 요청을 직렬화한다.
type Store struct {
	path   string
	sheet  string
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	records []entity.Record
	index   map[string]int // id → records 위치
}

// MergeResult 병합 결과 집계
type MergeResult struct {
	Updated int `json:"updated"`
	Added   int `json:"added"`
}

// New path의 대장 파일을 다루는 Store를 만든다. Load 전에는 비어 있다.
func New(path, sheet string, logger *zap.Logger) *Store {
	return &Store{
		path:   path,
		sheet:  sheet,
		logger: logger,
		now:    time.Now,
		index:  make(map[string]int),
	}
}

// Load 대장 파일을 읽어 메모리에 올린다. 파일이 없으면 예시 1건으로
// 초기 대장을 만들어 저장한다. 파일이 깨져 있으면 빈 상태로 시작하되
// 기존 파일은 건드리지 않는다.
func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.logger.Info("대장 파일이 없어 새로 생성", zap.String("path", s.path))
			s.records = []entity.Record{s.seedRecord()}
			s.rebuildIndex()
			return s.flushLocked()
		}
		s.logger.Error("대장 파일 읽기 실패, 빈 상태로 시작", zap.String("path", s.path), zap.Error(err))
		s.records = nil
		s.rebuildIndex()
		return nil
	}
	defer f.Close()

	rows, err := f.GetRows(s.sheet)
	if err != nil || len(rows) == 0 {
		s.logger.Error("대장 시트 파싱 실패, 빈 상태로 시작", zap.String("sheet", s.sheet), zap.Error(err))
		s.records = nil
		s.rebuildIndex()
		return nil
	}

	s.records = schema.Reconcile(rows[0], rows[1:])
	s.rebuildIndex()
	s.logger.Info("대장 로드 완료", zap.Int("records", len(s.records)))
	return nil
}

// seedRecord 초기 대장에 넣는 예시 1건
func (s *Store) seedRecord() entity.Record {
	now := s.now()
	return entity.Record{
		ID:         fmt.Sprintf("%s-%s-%03d", idPrefix, now.Format("20060102"), 1),
		IntakeDate: entity.DateOf(now),
		Requester:  "홍길동",
		Department: "개발팀",
		Company:    "INFAC",
		Model:      "PJ-DEMO",
		PartName:   "샘플 커넥터",
		PartNo:     "SC-1000",
		Quantity:   100,
		DueDate:    entity.DateOf(now.AddDate(0, 0, 14)),
	}
}

func (s *Store) rebuildIndex() {
	s.index = make(map[string]int, len(s.records))
	for i := range s.records {
		if id := s.records[i].ID; id != "" {
			s.index[id] = i
		}
	}
}

// nextSeq 해당 날짜 접두사의 기존 최대 일련번호를 찾는다. 삭제 이력이
// 있어도 관리번호가 재사용되지 않도록 건수가 아니라 최댓값 기준이다.
func (s *Store) nextSeq(datePart string) int {
	prefix := fmt.Sprintf("%s-%s-", idPrefix, datePart)
	max := 0
	for id := range s.index {
		if !strings.HasPrefix(id, prefix) {
			continue
		}
		if n, err := strconv.Atoi(id[len(prefix):]); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}

// Add 레코드에 관리번호를 부여하고 대장에 추가한다. 접수일이 비어 있으면
// 오늘 날짜를 찍는다.
func (s *Store) Add(r entity.Record) (entity.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	datePart := now.Format("20060102")
	r.ID = fmt.Sprintf("%s-%s-%03d", idPrefix, datePart, s.nextSeq(datePart))
	if !r.IntakeDate.Valid() {
		r.IntakeDate = entity.DateOf(now)
	}

	s.records = append(s.records, r)
	s.index[r.ID] = len(s.records) - 1
	if err := s.flushLocked(); err != nil {
		return entity.Record{}, err
	}
	return r, nil
}

// Merge 행 맵 묶음을 병합한다. 관리번호가 일치하는 행은 들어 있는 컬럼을
// 빈 값 포함 그대로 덮어쓰고(묶음에 없는 컬럼만 보존), 나머지는 신규로
// 추가한다. 신규 행의 번호는 같은 묶음 안에서 연속으로 부여된다.
func (s *Store) Merge(rows []map[string]string) (MergeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res MergeResult
	now := s.now()
	datePart := now.Format("20060102")
	seq := s.nextSeq(datePart)

	for _, row := range rows {
		id := strings.TrimSpace(row[entity.FieldID])
		if idx, ok := s.index[id]; id != "" && ok {
			rec := &s.records[idx]
			for field, val := range row {
				if field == entity.FieldID {
					continue
				}
				rec.Set(field, val)
			}
			res.Updated++
			continue
		}

		var rec entity.Record
		for _, f := range schema.Fields() {
			rec.Set(f, row[f])
		}
		if rec.ID == "" {
			// 같은 묶음의 번호 지참 행과 겹치지 않을 때까지 번호를 올린다.
			for {
				candidate := fmt.Sprintf("%s-%s-%03d", idPrefix, datePart, seq)
				seq++
				if _, taken := s.index[candidate]; !taken {
					rec.ID = candidate
					break
				}
			}
		}
		if !rec.IntakeDate.Valid() {
			rec.IntakeDate = entity.DateOf(now)
		}
		s.records = append(s.records, rec)
		s.index[rec.ID] = len(s.records) - 1
		res.Added++
	}

	if err := s.flushLocked(); err != nil {
		return MergeResult{}, err
	}
	return res, nil
}

// Update 관리번호로 레코드를 찾아 mutate를 적용하고 저장한다.
// mutate가 에러를 돌려주면 아무것도 바뀌지 않는다.
func (s *Store) Update(id string, mutate func(*entity.Record) error) (entity.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.index[id]
	if !ok {
		return entity.Record{}, fmt.Errorf("record %s: %w", id, ErrNotFound)
	}
	updated := s.records[idx]
	if err := mutate(&updated); err != nil {
		return entity.Record{}, err
	}
	updated.ID = id // 관리번호는 불변
	s.records[idx] = updated
	if err := s.flushLocked(); err != nil {
		return entity.Record{}, err
	}
	return updated, nil
}

// DeleteByIDs 관리번호 목록에 해당하는 레코드를 지운다. 없는 번호는
// 무시한다(멱등). 빈 목록이면 파일을 건드리지 않는다.
func (s *Store) DeleteByIDs(ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	target := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			target[id] = true
		}
	}

	kept := s.records[:0]
	removed := 0
	for _, r := range s.records {
		if target[r.ID] {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	if removed == 0 {
		return 0, nil
	}
	s.records = kept
	s.rebuildIndex()
	if err := s.flushLocked(); err != nil {
		return 0, err
	}
	return removed, nil
}

// Get 관리번호로 1건 조회
func (s *Store) Get(id string) (entity.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.index[id]
	if !ok {
		return entity.Record{}, false
	}
	return s.records[idx], true
}

// All 전체 레코드의 복사본
func (s *Store) All() []entity.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.Record, len(s.records))
	copy(out, s.records)
	return out
}

// FilteredBy 호출자 신원에 따른 가시 범위. 관리자는 전체, 그 외에는
// 소속 회사가 일치하는 레코드만 본다.
func (s *Store) FilteredBy(v entity.Viewer) []entity.Record {
	if v.IsAdmin() {
		return s.All()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	company := strings.TrimSpace(v.Company)
	out := make([]entity.Record, 0)
	for _, r := range s.records {
		if strings.TrimSpace(r.Company) == company {
			out = append(out, r)
		}
	}
	return out
}

// Count 전체 건수
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Export 현재 대장을 엑셀 파일로 만들어 돌려준다. path에는 쓰지 않는다.
func (s *Store) Export() (*excelize.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buildFile()
}

// buildFile 메모리 상태를 엑셀 파일 객체로 직렬화한다. 잠금 상태에서 호출.
func (s *Store) buildFile() (*excelize.File, error) {
	f := excelize.NewFile()
	defaultSheet := f.GetSheetName(0)
	if defaultSheet != s.sheet {
		f.SetSheetName(defaultSheet, s.sheet)
	}

	fields := schema.Fields()
	header := make([]interface{}, len(fields))
	for i, name := range fields {
		header[i] = name
	}
	if err := f.SetSheetRow(s.sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	for i := range s.records {
		row := make([]interface{}, len(fields))
		for j, name := range fields {
			row[j] = s.records[i].Get(name)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(s.sheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return f, nil
}

// flushLocked 메모리 상태를 파일에 통째로 다시 쓴다. 잠금 상태에서 호출.
func (s *Store) flushLocked() error {
	f, err := s.buildFile()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	defer f.Close()

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrWrite, err)
		}
	}
	if err := f.SaveAs(s.path); err != nil {
		s.logger.Error("대장 저장 실패", zap.String("path", s.path), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrWrite, err)
	}
	return nil
}
