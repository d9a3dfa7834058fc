// Package schema 정식 컬럼 집합과 레거시 시트 형상의 정합(reconcile)을 담당한다.
// 대장 파일은 과거 버전들이 남긴 컬럼명을 섞어 들고 올 수 있으므로,
// 읽기 경로는 반드시 여기를 거쳐 정식 형상으로 수렴한 뒤에만 사용된다.
package schema

import (
	"strings"

	"github.com/greenfordkang-boop/ssep/internal/sample/entity"
)

// canonicalFields 정식 컬럼 순서. 표시 순서이자 저장 순서다.
var canonicalFields = []string{
	entity.FieldID,
	entity.FieldIntakeDate,
	entity.FieldRequester,
	entity.FieldDepartment,
	entity.FieldCompany,
	entity.FieldModel,
	entity.FieldPartName,
	entity.FieldPartNo,
	entity.FieldDeliveryPlace,
	entity.FieldQuantity,
	entity.FieldDueDate,
	entity.FieldRequestNotes,
	entity.FieldDrawingReceivedDate,
	entity.FieldMaterialRequestDate,
	entity.FieldExpectedCompletionDate,
	entity.FieldMaterialArrivalDate,
	entity.FieldSampleCompletedDate,
	entity.FieldShippedDate,
	entity.FieldAdminNotes,
	entity.FieldAttachment,
}

// legacyFields 구 컬럼명 → 정식 컬럼명.
// 양쪽이 모두 존재하면 정식 컬럼 값이 이기고, 정식 값이 비어 있을 때만
// 레거시 값으로 메운다(first-non-empty, canonical 우선).
var legacyFields = map[string]string{
	"request_date":       entity.FieldIntakeDate,
	"requested_by":       entity.FieldRequester,
	"request_department": entity.FieldDepartment,
	"model_project":      entity.FieldModel,
	"spec":               entity.FieldPartNo,
	"qty":                entity.FieldQuantity,
	"target_date":        entity.FieldDueDate,
	"remarks":            entity.FieldRequestNotes,
}

// Fields 정식 컬럼 목록의 복사본
func Fields() []string {
	out := make([]string, len(canonicalFields))
	copy(out, canonicalFields)
	return out
}

// Legacy 레거시 매핑의 복사본
func Legacy() map[string]string {
	out := make(map[string]string, len(legacyFields))
	for k, v := range legacyFields {
		out[k] = v
	}
	return out
}

// normalizeName 헤더 셀을 키로 정규화한다. "Part Name" → "part_name".
func normalizeName(h string) string {
	s := strings.ToLower(strings.TrimSpace(h))
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, "-", "_")
	return s
}

// NormalizeBatch 임의 컬럼 부분집합을 가진 표를 정식 컬럼만 남긴 행 맵으로 바꾼다.
// 레거시 컬럼명은 정식명으로 치환하되 정식 컬럼이 이미 값을 갖고 있으면
// 빈칸 메움에만 쓴다. 정식 집합 밖의 컬럼은 버린다. 결측 컬럼은 채우지
// 않는다 — 병합(upsert) 경로에서는 "들어있는 컬럼"만이 의미를 갖기 때문이다.
func NormalizeBatch(header []string, rows [][]string) []map[string]string {
	canonical := make(map[string]bool, len(canonicalFields))
	for _, f := range canonicalFields {
		canonical[f] = true
	}

	// 헤더 위치 → 정식 컬럼명 (레거시는 별도 표시)
	type column struct {
		name   string
		legacy bool
	}
	cols := make([]column, len(header))
	for i, h := range header {
		name := normalizeName(h)
		if canonical[name] {
			cols[i] = column{name: name}
		} else if target, ok := legacyFields[name]; ok {
			cols[i] = column{name: target, legacy: true}
		}
	}

	out := make([]map[string]string, 0, len(rows))
	for _, row := range rows {
		m := make(map[string]string, len(cols))
		for i, col := range cols {
			if col.name == "" || i >= len(row) {
				continue
			}
			val := row[i]
			if col.legacy {
				// canonical 우선: 이미 값이 있으면 레거시는 빈칸 메움용
				if existing, ok := m[col.name]; ok && strings.TrimSpace(existing) != "" {
					continue
				}
				if strings.TrimSpace(val) == "" {
					if _, ok := m[col.name]; ok {
						continue
					}
				}
			} else if strings.TrimSpace(val) == "" {
				// 정식 컬럼이 비어 있으면 이미 레거시로 메운 값을 지우지 않는다
				if existing, ok := m[col.name]; ok && strings.TrimSpace(existing) != "" {
					continue
				}
			}
			m[col.name] = val
		}
		out = append(out, m)
	}
	return out
}

// Reconcile 원시 표를 정식 레코드 집합으로 정합한다. 결측 정식 컬럼은 빈
// 문자열로 채우고 컬럼 순서를 정식 순서로 맞춘다. 멱등하다: 정합 결과를
// 다시 정합해도 동일하다.
func Reconcile(header []string, rows [][]string) []entity.Record {
	maps := NormalizeBatch(header, rows)
	records := make([]entity.Record, 0, len(maps))
	for _, m := range maps {
		var r entity.Record
		for _, f := range canonicalFields {
			r.Set(f, m[f])
		}
		records = append(records, r)
	}
	return records
}
