package audit

import (
	"PortalServer/internal/events"
	"encoding/csv"
	"fmt"
	"os"
	"time"
)

// Columns is both the spool header and the COPY column list.
var Columns = []string{"id", "type", "actor", "subject", "patient_id", "payload", "at"}

// Spool appends events to a temp CSV file until it is rotated out for
// import.
type Spool struct {
	Dir  string
	file *os.File
	w    *csv.Writer
	rows int
}

func NewSpool(dir string) (*Spool, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create spool dir, dir = %s: %w", dir, err)
	}
	s := &Spool{Dir: dir}
	if err := s.createNewFile(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Spool) createNewFile() error {
	f, err := os.CreateTemp(s.Dir, "events-*.csv")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if err := os.Chmod(f.Name(), 0o644); err != nil {
		f.Close()
		return fmt.Errorf("failed to change file mode: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(Columns); err != nil {
		f.Close()
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	s.file, s.w, s.rows = f, w, 0
	return nil
}

func (s *Spool) Write(e events.Event) error {
	record := []string{
		e.ID, e.Type, e.Actor, e.Subject, e.PatientID,
		string(e.Payload), e.At.UTC().Format(time.RFC3339Nano),
	}
	if err := s.w.Write(record); err != nil {
		return fmt.Errorf("failed to write to csv file: %w", err)
	}
	s.rows++
	return nil
}

// Rows is the number of events written since the last rotation.
func (s *Spool) Rows() int {
	return s.rows
}

func (s *Spool) Path() string {
	return s.file.Name()
}

// Rotate closes the current file, starts a new one and returns the
// closed file's path. The caller owns the old file from then on.
func (s *Spool) Rotate() (string, error) {
	old := s.file.Name()
	if err := s.closeFile(); err != nil {
		return "", err
	}
	if err := s.createNewFile(); err != nil {
		return "", err
	}
	return old, nil
}

func (s *Spool) closeFile() error {
	s.w.Flush()
	if err := s.w.Error(); err != nil {
		s.file.Close()
		return fmt.Errorf("failed to flush csv file: %w", err)
	}
	if err := s.file.Close(); err != nil {
		return fmt.Errorf("failed to close csv file: %w", err)
	}
	return nil
}

// Close flushes and closes the current file and returns its path.
func (s *Spool) Close() (string, error) {
	return s.file.Name(), s.closeFile()
}
