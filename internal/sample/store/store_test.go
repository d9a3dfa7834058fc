package store

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/greenfordkang-boop/ssep/internal/sample/entity"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st := New(filepath.Join(t.TempDir(), "ledger.xlsx"), "Sheet1", zap.NewNop())
	if err := st.Load(); err != nil {
		t.Fatalf("Failed to load ledger: %v", err)
	}
	return st
}

func addRecord(t *testing.T, st *Store, company, model string) entity.Record {
	t.Helper()
	saved, err := st.Add(entity.Record{Company: company, Model: model, PartName: "부품", Quantity: 10})
	if err != nil {
		t.Fatalf("Failed to add record: %v", err)
	}
	return saved
}

func TestLoadSeedsMissingFile(t *testing.T) {
	st := newTestStore(t)
	if st.Count() != 1 {
		t.Fatalf("missing file should seed one record, got %d", st.Count())
	}

	// The seed must survive a reload from the file just written.
	st2 := New(st.path, st.sheet, zap.NewNop())
	if err := st2.Load(); err != nil {
		t.Fatalf("Failed to reload ledger: %v", err)
	}
	if st2.Count() != 1 {
		t.Fatalf("reload should find the seeded record, got %d", st2.Count())
	}
}

func TestLoadCorruptFileStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ledger.xlsx")
	if err := writeGarbage(path); err != nil {
		t.Fatalf("Failed to write garbage file: %v", err)
	}

	st := New(path, "Sheet1", zap.NewNop())
	if err := st.Load(); err != nil {
		t.Fatalf("corrupt file should not fail Load: %v", err)
	}
	if st.Count() != 0 {
		t.Fatalf("corrupt file should start empty, got %d", st.Count())
	}
}

func TestAddAssignsSequentialIDs(t *testing.T) {
	st := newTestStore(t)

	a := addRecord(t, st, "INFAC", "PJ-1")
	b := addRecord(t, st, "INFAC", "PJ-2")

	prefix := "REQ-" + time.Now().Format("20060102") + "-"
	if !strings.HasPrefix(a.ID, prefix) || !strings.HasPrefix(b.ID, prefix) {
		t.Fatalf("ids should carry today's prefix: %s, %s", a.ID, b.ID)
	}
	if a.ID == b.ID {
		t.Fatalf("ids must be unique, both %s", a.ID)
	}
	if !a.IntakeDate.Valid() {
		t.Error("intake date should be stamped on add")
	}
}

func TestAddAfterDeleteDoesNotCollide(t *testing.T) {
	st := newTestStore(t)

	a := addRecord(t, st, "INFAC", "PJ-1")
	b := addRecord(t, st, "INFAC", "PJ-2")

	// Remove an earlier record; the next id must not collide with the
	// surviving one.
	if _, err := st.DeleteByIDs([]string{a.ID}); err != nil {
		t.Fatalf("Failed to delete: %v", err)
	}
	c := addRecord(t, st, "INFAC", "PJ-3")
	if c.ID == b.ID {
		t.Fatalf("new id %s collides with surviving record", c.ID)
	}
}

func TestMergeUpdatesAndAppends(t *testing.T) {
	st := newTestStore(t)
	existing, err := st.Add(entity.Record{
		Company: "INFAC", Model: "PJ-1", PartName: "부품", Quantity: 10, Requester: "김담당",
	})
	if err != nil {
		t.Fatalf("Failed to add record: %v", err)
	}

	res, err := st.Merge([]map[string]string{
		{
			entity.FieldID:          existing.ID,
			entity.FieldShippedDate: "2024-03-01",
			entity.FieldRequester:   "", // present-but-empty cell clears the value
		},
		{
			entity.FieldCompany:  "Client A",
			entity.FieldModel:    "PJ-2",
			entity.FieldPartName: "하우징",
		},
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if res.Updated != 1 || res.Added != 1 {
		t.Fatalf("expected 1 updated / 1 added, got %+v", res)
	}

	got, ok := st.Get(existing.ID)
	if !ok {
		t.Fatalf("existing record disappeared")
	}
	if got.ShippedDate.String() != "2024-03-01" {
		t.Errorf("shipped date should be overwritten, got %q", got.ShippedDate)
	}
	if got.Requester != "" {
		t.Errorf("empty cell in a present column should clear the value, got %q", got.Requester)
	}
	if got.Model != "PJ-1" {
		t.Errorf("columns absent from the batch must keep their value, got %q", got.Model)
	}
}

func TestMergeSuppliedIDDoesNotCollideWithFreshIDs(t *testing.T) {
	st := newTestStore(t)
	for _, r := range st.All() {
		if _, err := st.DeleteByIDs([]string{r.ID}); err != nil {
			t.Fatalf("Failed to clear seed: %v", err)
		}
	}

	// A row arriving with today's lowest sequence number must not be
	// reissued to the id-less row in the same batch.
	supplied := "REQ-" + time.Now().Format("20060102") + "-001"
	res, err := st.Merge([]map[string]string{
		{entity.FieldID: supplied, entity.FieldModel: "PJ-1", entity.FieldPartName: "A"},
		{entity.FieldModel: "PJ-2", entity.FieldPartName: "B"},
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if res.Added != 2 {
		t.Fatalf("expected 2 added, got %+v", res)
	}

	seen := make(map[string]int)
	for _, r := range st.All() {
		seen[r.ID]++
	}
	for id, n := range seen {
		if n > 1 {
			t.Fatalf("id %s issued %d times in one batch", id, n)
		}
	}
	if seen[supplied] != 1 {
		t.Errorf("supplied id %s should survive as-is, got %v", supplied, seen)
	}
}

func TestMergeAssignsConsecutiveIDsToNewRows(t *testing.T) {
	st := newTestStore(t)

	res, err := st.Merge([]map[string]string{
		{entity.FieldModel: "PJ-1", entity.FieldPartName: "A"},
		{entity.FieldModel: "PJ-2", entity.FieldPartName: "B"},
		{entity.FieldModel: "PJ-3", entity.FieldPartName: "C"},
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if res.Added != 3 {
		t.Fatalf("expected 3 added, got %+v", res)
	}

	seen := make(map[string]bool)
	for _, r := range st.All() {
		if seen[r.ID] {
			t.Fatalf("duplicate id %s after merge", r.ID)
		}
		seen[r.ID] = true
	}
}

func TestMergeKeepsUnknownIDsAsNewRows(t *testing.T) {
	st := newTestStore(t)

	res, err := st.Merge([]map[string]string{
		{entity.FieldID: "REQ-20200101-007", entity.FieldModel: "PJ-OLD", entity.FieldPartName: "이관분"},
	})
	if err != nil {
		t.Fatalf("Merge failed: %v", err)
	}
	if res.Added != 1 || res.Updated != 0 {
		t.Fatalf("unknown id should append, got %+v", res)
	}
	if _, ok := st.Get("REQ-20200101-007"); !ok {
		t.Error("row with unknown id should keep its id")
	}
}

func TestDeleteByIDsIsIdempotent(t *testing.T) {
	st := newTestStore(t)
	a := addRecord(t, st, "INFAC", "PJ-1")

	removed, err := st.DeleteByIDs([]string{a.ID, "REQ-19990101-999"})
	if err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if removed != 1 {
		t.Fatalf("expected 1 removed, got %d", removed)
	}

	// Second delete of the same ids is a no-op.
	removed, err = st.DeleteByIDs([]string{a.ID})
	if err != nil {
		t.Fatalf("Second delete failed: %v", err)
	}
	if removed != 0 {
		t.Fatalf("expected 0 removed on repeat, got %d", removed)
	}

	if removed, _ := st.DeleteByIDs(nil); removed != 0 {
		t.Fatalf("empty id list should remove nothing, got %d", removed)
	}
}

func TestFilteredByCompany(t *testing.T) {
	st := newTestStore(t)
	addRecord(t, st, "INFAC", "PJ-1")
	addRecord(t, st, "Client A", "PJ-2")

	admin := st.FilteredBy(entity.Viewer{Role: entity.RoleAdmin})
	if len(admin) != st.Count() {
		t.Errorf("admin should see all records, got %d of %d", len(admin), st.Count())
	}

	client := st.FilteredBy(entity.Viewer{Role: entity.RoleClient, Company: "Client A"})
	if len(client) != 1 {
		t.Fatalf("client should see only own company, got %d", len(client))
	}
	if client[0].Company != "Client A" {
		t.Errorf("filter returned wrong company %q", client[0].Company)
	}
}

func TestUpdateKeepsIDImmutable(t *testing.T) {
	st := newTestStore(t)
	a := addRecord(t, st, "INFAC", "PJ-1")

	updated, err := st.Update(a.ID, func(r *entity.Record) error {
		r.ID = "REQ-HACKED"
		r.Model = "PJ-9"
		return nil
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if updated.ID != a.ID {
		t.Errorf("id must survive mutation, got %s", updated.ID)
	}
	if updated.Model != "PJ-9" {
		t.Errorf("mutation should apply, got %q", updated.Model)
	}
}

func writeGarbage(path string) error {
	return os.WriteFile(path, []byte("definitely not a zip archive"), 0o644)
}
