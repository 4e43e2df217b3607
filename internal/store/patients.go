package store

import (
	"PortalServer/internal/entities"
	"PortalServer/internal/health"
	"fmt"
)

type Patients struct {
	c *Collection[entities.Patient]
}

func patientStatus(p entities.Patient) string { return string(p.Status) }
func patientName(p entities.Patient) string   { return p.Name }
func patientEmail(p entities.Patient) string  { return p.Email }

// List filters by exact status and a case-insensitive search over name
// and email. Empty arguments do not filter.
func (s *Patients) List(status, q string) []entities.Patient {
	return s.c.Filter(All(
		Equals(status, patientStatus),
		Search(q, patientName, patientEmail),
	))
}

func (s *Patients) All() []entities.Patient {
	return s.c.List()
}

func (s *Patients) Get(id string) (entities.Patient, error) {
	return s.c.Get(id)
}

func (s *Patients) Len() int {
	return s.c.Len()
}

// Create stores a new patient. A missing id is generated; a missing
// status defaults to Pending.
func (s *Patients) Create(p entities.Patient) (entities.Patient, error) {
	op := "Patients.Create"
	p = p.Clone()
	if p.ID == "" {
		p.ID = newID()
	}
	if p.Status == "" {
		p.Status = entities.PatientPending
	}
	if !p.Status.Valid() {
		return entities.Patient{}, fmt.Errorf("%s: status %q: %w", op, p.Status, ErrInvalidStatus)
	}
	if p.Biomarkers == nil {
		p.Biomarkers = map[string]entities.Biomarker{}
	}
	for name, b := range p.Biomarkers {
		b.Name = name
		p.Biomarkers[name] = health.Reading(b)
	}
	if err := s.c.Insert(p); err != nil {
		return entities.Patient{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.c.Get(p.ID)
}

// PatientPatch carries the editable profile fields; nil means unchanged.
type PatientPatch struct {
	Name           *string                 `json:"name"`
	Email          *string                 `json:"email"`
	Age            *int                    `json:"age"`
	Gender         *string                 `json:"gender"`
	Status         *entities.PatientStatus `json:"status"`
	BiologicalAge  *float64                `json:"biological_age"`
	LongevityScore *float64                `json:"longevity_score"`
	LastVisit      *string                 `json:"last_visit"`
}

func (s *Patients) Update(id string, patch PatientPatch) (entities.Patient, error) {
	op := "Patients.Update"
	p, err := s.c.Update(id, func(p *entities.Patient) error {
		if patch.Status != nil {
			if !patch.Status.Valid() {
				return fmt.Errorf("status %q: %w", *patch.Status, ErrInvalidStatus)
			}
			p.Status = *patch.Status
		}
		if patch.Name != nil {
			p.Name = *patch.Name
		}
		if patch.Email != nil {
			p.Email = *patch.Email
		}
		if patch.Age != nil {
			p.Age = *patch.Age
		}
		if patch.Gender != nil {
			p.Gender = *patch.Gender
		}
		if patch.BiologicalAge != nil {
			p.BiologicalAge = *patch.BiologicalAge
		}
		if patch.LongevityScore != nil {
			p.LongevityScore = *patch.LongevityScore
		}
		if patch.LastVisit != nil {
			p.LastVisit = *patch.LastVisit
		}
		return nil
	})
	if err != nil {
		return entities.Patient{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// RecordBiomarker replaces the named reading and reclassifies it.
func (s *Patients) RecordBiomarker(id string, b entities.Biomarker) (entities.Biomarker, error) {
	op := "Patients.RecordBiomarker"
	b = health.Reading(b)
	_, err := s.c.Update(id, func(p *entities.Patient) error {
		if p.Biomarkers == nil {
			p.Biomarkers = map[string]entities.Biomarker{}
		}
		p.Biomarkers[b.Name] = b
		return nil
	})
	if err != nil {
		return entities.Biomarker{}, fmt.Errorf("%s: %w", op, err)
	}
	return b, nil
}

// AddProtocol enrols a patient in a protocol; enrolling twice is a no-op.
func (s *Patients) AddProtocol(id, protocolID string) error {
	_, err := s.c.Update(id, func(p *entities.Patient) error {
		if !p.HasProtocol(protocolID) {
			p.ProtocolIDs = append(p.ProtocolIDs, protocolID)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("Patients.AddProtocol: %w", err)
	}
	return nil
}
