package entity

import (
	"testing"
	"time"
)

func TestParseDateSentinels(t *testing.T) {
	for _, raw := range []string{"", "  ", "nan", "NaT", "None"} {
		if d := ParseDate(raw); d.Valid() {
			t.Errorf("ParseDate(%q) should be absent, got %s", raw, d)
		}
	}
}

func TestParseDateLayouts(t *testing.T) {
	cases := map[string]string{
		"2024-03-05":          "2024-03-05",
		"2024-03-05 14:30:00": "2024-03-05",
		"2024/03/05":          "2024-03-05",
	}
	for raw, want := range cases {
		d := ParseDate(raw)
		if !d.Valid() {
			t.Errorf("ParseDate(%q) should be valid", raw)
			continue
		}
		if got := d.String(); got != want {
			t.Errorf("ParseDate(%q) = %s, want %s", raw, got, want)
		}
	}

	if d := ParseDate("not-a-date"); d.Valid() {
		t.Errorf("unparseable input should be absent, got %s", d)
	}
}

func TestRecordGetSetRoundTrip(t *testing.T) {
	var r Record
	r.Set(FieldModel, "  PJ-100 ")
	r.Set(FieldQuantity, "50.0")
	r.Set(FieldDueDate, "2024-06-01")
	r.Set(FieldShippedDate, "nan")

	if r.Model != "PJ-100" {
		t.Errorf("model should be trimmed, got %q", r.Model)
	}
	if r.Quantity != 50 {
		t.Errorf("quantity should parse float cell, got %d", r.Quantity)
	}
	if got := r.Get(FieldDueDate); got != "2024-06-01" {
		t.Errorf("due date roundtrip got %q", got)
	}
	if got := r.Get(FieldShippedDate); got != "" {
		t.Errorf("sentinel date should serialize empty, got %q", got)
	}
}

func TestRecordQuantityZeroSerializesEmpty(t *testing.T) {
	var r Record
	if got := r.Get(FieldQuantity); got != "" {
		t.Errorf("zero quantity should serialize empty, got %q", got)
	}
}

func TestDateOfTruncates(t *testing.T) {
	d := DateOf(time.Date(2024, 5, 1, 23, 59, 0, 0, time.UTC))
	if d.String() != "2024-05-01" {
		t.Errorf("DateOf should keep only the date part, got %s", d)
	}
}
