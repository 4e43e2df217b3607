package store

import (
	"PortalServer/internal/entities"
	"fmt"
	"time"
)

// Patient-scoped records. Every action takes the owning patient id and
// treats a record owned by someone else as missing.

type Medications struct {
	c *Collection[entities.Medication]
}

func (s *Medications) ForPatient(patientID, status string) []entities.Medication {
	return s.c.Filter(All(
		Equals(patientID, func(m entities.Medication) string { return m.PatientID }),
		Equals(status, func(m entities.Medication) string { return string(m.Status) }),
	))
}

func (s *Medications) Add(m entities.Medication) (entities.Medication, error) {
	op := "Medications.Add"
	if m.Status == "" {
		m.Status = entities.MedicationActive
	}
	if !m.Status.Valid() {
		return entities.Medication{}, fmt.Errorf("%s: status %q: %w", op, m.Status, ErrInvalidStatus)
	}
	if m.ID == "" {
		m.ID = newID()
	}
	if err := s.c.Insert(m); err != nil {
		return entities.Medication{}, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

func (s *Medications) SetStatus(id, patientID string, status entities.MedicationStatus) (entities.Medication, error) {
	op := "Medications.SetStatus"
	if !status.Valid() {
		return entities.Medication{}, fmt.Errorf("%s: status %q: %w", op, status, ErrInvalidStatus)
	}
	m, err := s.c.Update(id, func(m *entities.Medication) error {
		if m.PatientID != patientID {
			return fmt.Errorf("id %q: %w", id, ErrNotFound)
		}
		m.Status = status
		return nil
	})
	if err != nil {
		return entities.Medication{}, fmt.Errorf("%s: %w", op, err)
	}
	return m, nil
}

type Conditions struct {
	c *Collection[entities.Condition]
}

func (s *Conditions) ForPatient(patientID, status string) []entities.Condition {
	return s.c.Filter(All(
		Equals(patientID, func(c entities.Condition) string { return c.PatientID }),
		Equals(status, func(c entities.Condition) string { return string(c.Status) }),
	))
}

func (s *Conditions) Add(c entities.Condition) (entities.Condition, error) {
	op := "Conditions.Add"
	if c.Status == "" {
		c.Status = entities.ConditionActive
	}
	if !c.Status.Valid() {
		return entities.Condition{}, fmt.Errorf("%s: status %q: %w", op, c.Status, ErrInvalidStatus)
	}
	if c.ID == "" {
		c.ID = newID()
	}
	if err := s.c.Insert(c); err != nil {
		return entities.Condition{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (s *Conditions) SetStatus(id, patientID string, status entities.ConditionStatus) (entities.Condition, error) {
	op := "Conditions.SetStatus"
	if !status.Valid() {
		return entities.Condition{}, fmt.Errorf("%s: status %q: %w", op, status, ErrInvalidStatus)
	}
	c, err := s.c.Update(id, func(c *entities.Condition) error {
		if c.PatientID != patientID {
			return fmt.Errorf("id %q: %w", id, ErrNotFound)
		}
		c.Status = status
		return nil
	})
	if err != nil {
		return entities.Condition{}, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

type Symptoms struct {
	c   *Collection[entities.Symptom]
	now func() time.Time
}

func (s *Symptoms) ForPatient(patientID, status string) []entities.Symptom {
	return s.c.Filter(All(
		Equals(patientID, func(v entities.Symptom) string { return v.PatientID }),
		Equals(status, func(v entities.Symptom) string { return string(v.Status) }),
	))
}

func (s *Symptoms) Add(v entities.Symptom) (entities.Symptom, error) {
	op := "Symptoms.Add"
	if v.Severity == "" {
		v.Severity = entities.SeverityMild
	}
	if !v.Severity.Valid() {
		return entities.Symptom{}, fmt.Errorf("%s: severity %q: %w", op, v.Severity, ErrInvalidStatus)
	}
	if v.ID == "" {
		v.ID = newID()
	}
	if v.Status == "" {
		v.Status = entities.SymptomActive
	}
	if !v.Status.Valid() {
		return entities.Symptom{}, fmt.Errorf("%s: status %q: %w", op, v.Status, ErrInvalidStatus)
	}
	if v.ReportedAt.IsZero() {
		v.ReportedAt = s.now()
	}
	if err := s.c.Insert(v); err != nil {
		return entities.Symptom{}, fmt.Errorf("%s: %w", op, err)
	}
	return v, nil
}

func (s *Symptoms) Resolve(id, patientID string) (entities.Symptom, error) {
	v, err := s.c.Update(id, func(v *entities.Symptom) error {
		if v.PatientID != patientID {
			return fmt.Errorf("id %q: %w", id, ErrNotFound)
		}
		v.Status = entities.SymptomResolved
		return nil
	})
	if err != nil {
		return entities.Symptom{}, fmt.Errorf("Symptoms.Resolve: %w", err)
	}
	return v, nil
}

type DataSources struct {
	c *Collection[entities.DataSource]
}

func (s *DataSources) Insert(d entities.DataSource) error {
	return s.c.Insert(d)
}

func (s *DataSources) ForPatient(patientID string) []entities.DataSource {
	return s.c.Filter(Equals(patientID, func(d entities.DataSource) string { return d.PatientID }))
}

// Toggle flips the connection and refreshes the last-sync display text.
func (s *DataSources) Toggle(id, patientID string) (entities.DataSource, error) {
	d, err := s.c.Update(id, func(d *entities.DataSource) error {
		if d.PatientID != patientID {
			return fmt.Errorf("id %q: %w", id, ErrNotFound)
		}
		d.Connected = !d.Connected
		if d.Connected {
			d.LastSync = entities.LastSyncJustNow
		} else {
			d.LastSync = entities.LastSyncDisconnected
		}
		return nil
	})
	if err != nil {
		return entities.DataSource{}, fmt.Errorf("DataSources.Toggle: %w", err)
	}
	return d, nil
}

func removeOwned[T Record](c *Collection[T], id, patientID string, owner func(T) string) error {
	rec, err := c.Get(id)
	if err != nil {
		return err
	}
	if owner(rec) != patientID {
		return fmt.Errorf("id %q: %w", id, ErrNotFound)
	}
	return c.Remove(id)
}

func (s *Medications) Remove(id, patientID string) error {
	if err := removeOwned(s.c, id, patientID, func(m entities.Medication) string { return m.PatientID }); err != nil {
		return fmt.Errorf("Medications.Remove: %w", err)
	}
	return nil
}

func (s *Conditions) Remove(id, patientID string) error {
	if err := removeOwned(s.c, id, patientID, func(c entities.Condition) string { return c.PatientID }); err != nil {
		return fmt.Errorf("Conditions.Remove: %w", err)
	}
	return nil
}

func (s *Symptoms) Remove(id, patientID string) error {
	if err := removeOwned(s.c, id, patientID, func(v entities.Symptom) string { return v.PatientID }); err != nil {
		return fmt.Errorf("Symptoms.Remove: %w", err)
	}
	return nil
}
