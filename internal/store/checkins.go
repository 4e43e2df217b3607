package store

import (
	"PortalServer/internal/entities"
	"fmt"
	"strings"
	"time"
)

type CheckIns struct {
	c   *Collection[entities.CheckIn]
	now func() time.Time
}

func checkInStatus(c entities.CheckIn) string  { return string(c.Status) }
func checkInPatient(c entities.CheckIn) string { return c.PatientID }
func checkInSummary(c entities.CheckIn) string { return c.Summary }
func checkInName(c entities.CheckIn) string    { return c.PatientName }

// Add appends a check-in. Missing id, timestamp and status are filled
// in; a blank summary is rejected.
func (s *CheckIns) Add(c entities.CheckIn) (entities.CheckIn, error) {
	op := "CheckIns.Add"
	if !c.Type.Valid() {
		return entities.CheckIn{}, fmt.Errorf("%s: type %q: %w", op, c.Type, ErrInvalidStatus)
	}
	if strings.TrimSpace(c.Summary) == "" {
		return entities.CheckIn{}, fmt.Errorf("%s: empty summary: %w", op, ErrInvalidInput)
	}
	if c.ID == "" {
		c.ID = newID()
	}
	if c.Timestamp.IsZero() {
		c.Timestamp = s.now()
	}
	if c.Status == "" {
		c.Status = entities.CheckInPending
	}
	if err := s.c.Insert(c); err != nil {
		return entities.CheckIn{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (s *CheckIns) List(status, q string) []entities.CheckIn {
	return s.c.Filter(All(
		Equals(status, checkInStatus),
		Search(q, checkInName, checkInSummary),
	))
}

func (s *CheckIns) ForPatient(patientID string) []entities.CheckIn {
	return s.c.Filter(Equals(patientID, checkInPatient))
}

func (s *CheckIns) MarkReviewed(id string) (entities.CheckIn, error) {
	c, err := s.c.Update(id, func(c *entities.CheckIn) error {
		c.Status = entities.CheckInReviewed
		return nil
	})
	if err != nil {
		return entities.CheckIn{}, fmt.Errorf("CheckIns.MarkReviewed: %w", err)
	}
	return c, nil
}
