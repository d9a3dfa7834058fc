package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/greenfordkang-boop/ssep/internal/sample/entity"
	"github.com/greenfordkang-boop/ssep/internal/sample/store"
)

func newAttachmentTest(t *testing.T) (*AttachmentService, *store.Store, entity.Record) {
	t.Helper()
	dir := t.TempDir()
	st := store.New(filepath.Join(dir, "ledger.xlsx"), "Sheet1", zap.NewNop())
	if err := st.Load(); err != nil {
		t.Fatalf("Failed to load ledger: %v", err)
	}
	rec, err := st.Add(entity.Record{Company: "INFAC", Model: "PJ-1", PartName: "커넥터", Quantity: 1})
	if err != nil {
		t.Fatalf("Failed to add record: %v", err)
	}
	svc := NewAttachmentService(st, nil, "", filepath.Join(dir, "attachments"), zap.NewNop())
	return svc, st, rec
}

func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"도면 v2.pdf", "도면 v2.pdf"},
		{"a/b\\c:d.txt", "abcd.txt"},
		{"report?<>|.xlsx", "report.xlsx"},
		{"part_no-001.dwg", "part_no-001.dwg"},
	}
	for _, tc := range cases {
		if got := sanitizeFilename(tc.in); got != tc.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestUploadAndDownloadLocal(t *testing.T) {
	svc, st, rec := newAttachmentTest(t)
	admin := entity.Viewer{Role: entity.RoleAdmin}
	content := []byte("drawing bytes")

	name, err := svc.Upload(context.Background(), admin, rec.ID, "도면.pdf", int64(len(content)), bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Upload failed: %v", err)
	}
	if !strings.HasSuffix(name, "_도면.pdf") {
		t.Errorf("object name should end with sanitized filename, got %q", name)
	}

	got, ok := st.Get(rec.ID)
	if !ok || got.Attachment != name {
		t.Errorf("attachment column should record %q, got %q", name, got.Attachment)
	}

	reader, err := svc.Download(context.Background(), admin, rec.ID, name)
	if err != nil {
		t.Fatalf("Download failed: %v", err)
	}
	defer reader.Close()
	data, _ := io.ReadAll(reader)
	if !bytes.Equal(data, content) {
		t.Errorf("downloaded content mismatch")
	}
}

func TestUploadAppendsCommaSeparated(t *testing.T) {
	svc, st, rec := newAttachmentTest(t)
	admin := entity.Viewer{Role: entity.RoleAdmin}

	first, err := svc.Upload(context.Background(), admin, rec.ID, "a.txt", 1, strings.NewReader("a"))
	if err != nil {
		t.Fatalf("First upload failed: %v", err)
	}
	second, err := svc.Upload(context.Background(), admin, rec.ID, "b.txt", 1, strings.NewReader("b"))
	if err != nil {
		t.Fatalf("Second upload failed: %v", err)
	}

	got, _ := st.Get(rec.ID)
	if got.Attachment != first+","+second {
		t.Errorf("attachments should be comma separated, got %q", got.Attachment)
	}
}

func TestDownloadRefusesUnlistedObject(t *testing.T) {
	svc, _, rec := newAttachmentTest(t)
	admin := entity.Viewer{Role: entity.RoleAdmin}

	if _, err := svc.Download(context.Background(), admin, rec.ID, "../../etc/passwd"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("unlisted object should be not found, got %v", err)
	}
}

func TestUploadForeignCompanyIs404(t *testing.T) {
	svc, _, rec := newAttachmentTest(t)
	client := entity.Viewer{Role: entity.RoleClient, Company: "Client A"}

	_, err := svc.Upload(context.Background(), client, rec.ID, "a.txt", 1, strings.NewReader("a"))
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("foreign company upload should look absent, got %v", err)
	}
}
