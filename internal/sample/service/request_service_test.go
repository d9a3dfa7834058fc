package service

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/greenfordkang-boop/ssep/internal/sample/entity"
	"github.com/greenfordkang-boop/ssep/internal/sample/store"
)

func newTestService(t *testing.T) *RequestService {
	t.Helper()
	st := store.New(filepath.Join(t.TempDir(), "ledger.xlsx"), "Sheet1", zap.NewNop())
	if err := st.Load(); err != nil {
		t.Fatalf("Failed to load ledger: %v", err)
	}
	return NewRequestService(st, zap.NewNop())
}

func adminViewer() entity.Viewer {
	return entity.Viewer{Role: entity.RoleAdmin, Company: "신성EP"}
}

func clientViewer(company string) entity.Viewer {
	return entity.Viewer{Role: entity.RoleClient, Company: company}
}

func TestCreateValidation(t *testing.T) {
	svc := newTestService(t)

	cases := []struct {
		name string
		in   CreateRequestInput
	}{
		{"missing model", CreateRequestInput{PartName: "커넥터", Quantity: 10, Company: "INFAC"}},
		{"missing part name", CreateRequestInput{Model: "PJ-1", Quantity: 10, Company: "INFAC"}},
		{"zero quantity", CreateRequestInput{Model: "PJ-1", PartName: "커넥터", Company: "INFAC"}},
		{"negative quantity", CreateRequestInput{Model: "PJ-1", PartName: "커넥터", Quantity: -5, Company: "INFAC"}},
	}
	for _, tc := range cases {
		if _, err := svc.Create(adminViewer(), tc.in); !errors.Is(err, ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", tc.name, err)
		}
	}
}

func TestCreateForcesClientCompany(t *testing.T) {
	svc := newTestService(t)

	view, err := svc.Create(clientViewer("Client A"), CreateRequestInput{
		Model:    "PJ-1",
		PartName: "커넥터",
		Quantity: 10,
		Company:  "신성EP", // must be ignored for client accounts
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if view.Company != "Client A" {
		t.Errorf("client company must come from the token, got %q", view.Company)
	}
	if view.Stage != entity.StageIntake {
		t.Errorf("new request should start at %s, got %s", entity.StageIntake, view.Stage)
	}
}

func TestUpdateRejectsRecordedPipelineDates(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(adminViewer(), CreateRequestInput{
		Model: "PJ-1", PartName: "커넥터", Quantity: 10, Company: "INFAC",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// First write of a pipeline date goes through.
	view, err := svc.Update(created.ID, map[string]string{
		entity.FieldShippedDate: "2024-03-01",
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if view.Stage != entity.StageShipped {
		t.Errorf("stage should derive to %s, got %s", entity.StageShipped, view.Stage)
	}

	// Changing the recorded date is refused.
	if _, err := svc.Update(created.ID, map[string]string{
		entity.FieldShippedDate: "2024-04-01",
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("changing a recorded pipeline date should fail, got %v", err)
	}

	// Re-sending the identical value stays allowed.
	if _, err := svc.Update(created.ID, map[string]string{
		entity.FieldShippedDate: "2024-03-01",
		entity.FieldAdminNotes:  "출하 완료",
	}); err != nil {
		t.Errorf("idempotent resend should succeed, got %v", err)
	}

	// The same date in another accepted layout is not a change either.
	if _, err := svc.Update(created.ID, map[string]string{
		entity.FieldShippedDate: "2024-03-01 00:00:00",
	}); err != nil {
		t.Errorf("same date in a different layout should succeed, got %v", err)
	}

	// Clearing a recorded date is a change and stays refused.
	if _, err := svc.Update(created.ID, map[string]string{
		entity.FieldShippedDate: "",
	}); !errors.Is(err, ErrValidation) {
		t.Errorf("clearing a recorded pipeline date should fail, got %v", err)
	}
}

func TestDeleteRejectsEmptyIDList(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.Delete(nil); !errors.Is(err, ErrValidation) {
		t.Errorf("nil id list should be a validation error, got %v", err)
	}
	if _, err := svc.Delete([]string{}); !errors.Is(err, ErrValidation) {
		t.Errorf("empty id list should be a validation error, got %v", err)
	}
}

func TestUpdateRejectsUnknownFieldAndID(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(adminViewer(), CreateRequestInput{
		Model: "PJ-1", PartName: "커넥터", Quantity: 10, Company: "INFAC",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Update(created.ID, map[string]string{"email": "a@b.com"}); !errors.Is(err, ErrValidation) {
		t.Errorf("unknown field should fail, got %v", err)
	}
	if _, err := svc.Update(created.ID, map[string]string{entity.FieldID: "REQ-X"}); !errors.Is(err, ErrValidation) {
		t.Errorf("id change should fail, got %v", err)
	}
	if _, err := svc.Update("REQ-19990101-001", map[string]string{entity.FieldAdminNotes: "x"}); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("missing record should be not found, got %v", err)
	}
}

func TestGetHidesOtherCompanies(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(adminViewer(), CreateRequestInput{
		Model: "PJ-1", PartName: "커넥터", Quantity: 10, Company: "INFAC",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if _, err := svc.Get(clientViewer("Client A"), created.ID); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("other company record should look absent, got %v", err)
	}
	if _, err := svc.Get(clientViewer("INFAC"), created.ID); err != nil {
		t.Errorf("own company record should be visible, got %v", err)
	}
}

func TestImportMergesLegacyWorkbook(t *testing.T) {
	svc := newTestService(t)
	created, err := svc.Create(adminViewer(), CreateRequestInput{
		Model: "PJ-1", PartName: "커넥터", Quantity: 10, Company: "INFAC",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Legacy headers on purpose: the batch must be reconciled before merge.
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	f.SetSheetRow(sheet, "A1", &[]interface{}{"id", "qty", "remarks"})
	f.SetSheetRow(sheet, "A2", &[]interface{}{created.ID, "99", "수량 정정"})
	f.SetSheetRow(sheet, "A3", &[]interface{}{"", "5", "신규 행"})

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Failed to build workbook: %v", err)
	}

	res, err := svc.Import(&buf)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if res.Updated != 1 || res.Added != 1 {
		t.Fatalf("expected 1 updated / 1 added, got %+v", res)
	}

	got, err := svc.Get(adminViewer(), created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Quantity != 99 {
		t.Errorf("legacy qty column should update quantity, got %d", got.Quantity)
	}
	if got.RequestNotes != "수량 정정" {
		t.Errorf("legacy remarks column should update request notes, got %q", got.RequestNotes)
	}
}

func TestImportRejectsGarbage(t *testing.T) {
	svc := newTestService(t)
	if _, err := svc.Import(bytes.NewBufferString("not an xlsx")); !errors.Is(err, ErrValidation) {
		t.Errorf("garbage upload should be a validation error, got %v", err)
	}
}
