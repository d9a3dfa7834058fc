package entity

import (
	"strconv"
	"strings"
)

// 정식 컬럼명. 시트 헤더와 Record 접근자(Get/Set)가 공유한다.
const (
	FieldID                     = "id"
	FieldIntakeDate             = "intake_date"
	FieldRequester              = "requester"
	FieldDepartment             = "department"
	FieldCompany                = "company"
	FieldModel                  = "model"
	FieldPartName               = "part_name"
	FieldPartNo                 = "part_no"
	FieldDeliveryPlace          = "delivery_place"
	FieldQuantity               = "quantity"
	FieldDueDate                = "due_date"
	FieldRequestNotes           = "request_notes"
	FieldDrawingReceivedDate    = "drawing_received_date"
	FieldMaterialRequestDate    = "material_request_date"
	FieldExpectedCompletionDate = "expected_completion_date"
	FieldMaterialArrivalDate    = "material_arrival_date"
	FieldSampleCompletedDate    = "sample_completed_date"
	FieldShippedDate            = "shipped_date"
	FieldAdminNotes             = "admin_notes"
	FieldAttachment             = "attachment"
)

// Record 샘플 개발 요청 1건. 관리번호(id)는 부여 후 불변이다.
type Record struct {
	ID                     string `json:"id"`
	IntakeDate             Date   `json:"intake_date"`
	Requester              string `json:"requester"`
	Department             string `json:"department"`
	Company                string `json:"company"`
	Model                  string `json:"model"`
	PartName               string `json:"part_name"`
	PartNo                 string `json:"part_no"`
	DeliveryPlace          string `json:"delivery_place"`
	Quantity               int    `json:"quantity"`
	DueDate                Date   `json:"due_date"`
	RequestNotes           string `json:"request_notes"`
	DrawingReceivedDate    Date   `json:"drawing_received_date"`
	MaterialRequestDate    Date   `json:"material_request_date"`
	ExpectedCompletionDate Date   `json:"expected_completion_date"`
	MaterialArrivalDate    Date   `json:"material_arrival_date"`
	SampleCompletedDate    Date   `json:"sample_completed_date"`
	ShippedDate            Date   `json:"shipped_date"`
	AdminNotes             string `json:"admin_notes"`
	Attachment             string `json:"attachment"`
}

// Get 컬럼명으로 문자열 값을 읽는다. 시트 직렬화와 병합이 공유하는 단일 경로.
func (r *Record) Get(field string) string {
	switch field {
	case FieldID:
		return r.ID
	case FieldIntakeDate:
		return r.IntakeDate.String()
	case FieldRequester:
		return r.Requester
	case FieldDepartment:
		return r.Department
	case FieldCompany:
		return r.Company
	case FieldModel:
		return r.Model
	case FieldPartName:
		return r.PartName
	case FieldPartNo:
		return r.PartNo
	case FieldDeliveryPlace:
		return r.DeliveryPlace
	case FieldQuantity:
		if r.Quantity == 0 {
			return ""
		}
		return strconv.Itoa(r.Quantity)
	case FieldDueDate:
		return r.DueDate.String()
	case FieldRequestNotes:
		return r.RequestNotes
	case FieldDrawingReceivedDate:
		return r.DrawingReceivedDate.String()
	case FieldMaterialRequestDate:
		return r.MaterialRequestDate.String()
	case FieldExpectedCompletionDate:
		return r.ExpectedCompletionDate.String()
	case FieldMaterialArrivalDate:
		return r.MaterialArrivalDate.String()
	case FieldSampleCompletedDate:
		return r.SampleCompletedDate.String()
	case FieldShippedDate:
		return r.ShippedDate.String()
	case FieldAdminNotes:
		return r.AdminNotes
	case FieldAttachment:
		return r.Attachment
	}
	return ""
}

// Set 컬럼명으로 원시 문자열 값을 쓴다. 날짜/수량은 여기서 타입으로 수렴한다.
func (r *Record) Set(field, raw string) {
	switch field {
	case FieldID:
		r.ID = strings.TrimSpace(raw)
	case FieldIntakeDate:
		r.IntakeDate = ParseDate(raw)
	case FieldRequester:
		r.Requester = raw
	case FieldDepartment:
		r.Department = raw
	case FieldCompany:
		r.Company = strings.TrimSpace(raw)
	case FieldModel:
		r.Model = strings.TrimSpace(raw)
	case FieldPartName:
		r.PartName = strings.TrimSpace(raw)
	case FieldPartNo:
		r.PartNo = raw
	case FieldDeliveryPlace:
		r.DeliveryPlace = raw
	case FieldQuantity:
		r.Quantity = parseQuantity(raw)
	case FieldDueDate:
		r.DueDate = ParseDate(raw)
	case FieldRequestNotes:
		r.RequestNotes = raw
	case FieldDrawingReceivedDate:
		r.DrawingReceivedDate = ParseDate(raw)
	case FieldMaterialRequestDate:
		r.MaterialRequestDate = ParseDate(raw)
	case FieldExpectedCompletionDate:
		r.ExpectedCompletionDate = ParseDate(raw)
	case FieldMaterialArrivalDate:
		r.MaterialArrivalDate = ParseDate(raw)
	case FieldSampleCompletedDate:
		r.SampleCompletedDate = ParseDate(raw)
	case FieldShippedDate:
		r.ShippedDate = ParseDate(raw)
	case FieldAdminNotes:
		r.AdminNotes = raw
	case FieldAttachment:
		r.Attachment = raw
	}
}

// parseQuantity 시트에서 넘어오는 "100", "100.0" 류를 관대하게 받는다.
func parseQuantity(raw string) int {
	s := strings.TrimSpace(raw)
	if s == "" || s == "nan" {
		return 0
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	return 0
}

// Viewer 요청 단위로 전달되는 호출자 신원. 스토어 필터링이 소비하는 전부다.
type Viewer struct {
	Role    string
	Company string
}

func (v Viewer) IsAdmin() bool {
	return v.Role == RoleAdmin
}
