package audit

import (
	"PortalServer/internal/events"
	"encoding/csv"
	"os"
	"testing"
	"time"
)

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func TestSpoolWriteAndRotate(t *testing.T) {
	s, err := NewSpool(t.TempDir())
	if err != nil {
		t.Fatalf("NewSpool: %v", err)
	}

	e := events.Event{
		ID:      "6f1c2a4e-0000-4000-8000-000000000001",
		Type:    events.TypeCheckInSubmitted,
		Actor:   "patient",
		Subject: "c-9",
		Payload: []byte(`{"summary":"slept well, \"great\" energy"}`),
		At:      time.Date(2026, 10, 18, 9, 30, 0, 0, time.UTC),
	}
	if err := s.Write(e); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if s.Rows() != 1 {
		t.Fatalf("Rows = %d, want 1", s.Rows())
	}

	old, err := s.Rotate()
	if err != nil {
		t.Fatalf("Rotate: %v", err)
	}
	if old == s.Path() {
		t.Fatal("Rotate kept the same file")
	}
	if s.Rows() != 0 {
		t.Errorf("Rows after rotate = %d, want 0", s.Rows())
	}

	records := readCSV(t, old)
	if len(records) != 2 {
		t.Fatalf("records = %d, want header + 1", len(records))
	}
	row := records[1]
	if row[0] != e.ID || row[1] != e.Type || row[4] != "" {
		t.Errorf("row = %q", row)
	}
	if row[5] != string(e.Payload) {
		t.Errorf("payload = %q, want %q", row[5], e.Payload)
	}
	if row[6] != "2026-10-18T09:30:00Z" {
		t.Errorf("at = %q", row[6])
	}

	path, err := s.Close()
	if err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := readCSV(t, path); len(got) != 1 {
		t.Errorf("fresh file has %d records, want header only", len(got))
	}
}
