// Package store holds the portal's in-memory state containers. Each
// feature wraps a Collection and exposes derived views plus the handful
// of mutating actions the portal offers. Nothing is persisted.
package store

import (
	"PortalServer/internal/entities"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Store struct {
	Patients         *Patients
	Protocols        *Protocols
	ProtocolRequests *ProtocolRequests
	CheckIns         *CheckIns
	Medications      *Medications
	Conditions       *Conditions
	Symptoms         *Symptoms
	DataSources      *DataSources
	Appointments     *Appointments
	Notifications    *Notifications

	now func() time.Time
}

// New returns an empty store. now may be nil, in which case time.Now is
// used.
func New(now func() time.Time) *Store {
	if now == nil {
		now = time.Now
	}
	return &Store{
		Patients:         &Patients{c: NewCollection[entities.Patient](entities.Patient.Clone)},
		Protocols:        &Protocols{c: NewCollection[entities.TreatmentProtocol](cloneProtocol)},
		ProtocolRequests: &ProtocolRequests{c: NewCollection[entities.ProtocolRequest](nil), now: now},
		CheckIns:         &CheckIns{c: NewCollection[entities.CheckIn](nil), now: now},
		Medications:      &Medications{c: NewCollection[entities.Medication](nil)},
		Conditions:       &Conditions{c: NewCollection[entities.Condition](nil)},
		Symptoms:         &Symptoms{c: NewCollection[entities.Symptom](nil), now: now},
		DataSources:      &DataSources{c: NewCollection[entities.DataSource](nil)},
		Appointments:     &Appointments{c: NewCollection[entities.Appointment](nil)},
		Notifications:    &Notifications{c: NewCollection[entities.Notification](nil), now: now},
		now:              now,
	}
}

func (s *Store) Now() time.Time {
	return s.now()
}

func newID() string {
	return uuid.New().String()
}

func cloneProtocol(p entities.TreatmentProtocol) entities.TreatmentProtocol {
	if p.Targets != nil {
		p.Targets = append([]string(nil), p.Targets...)
	}
	return p
}

// RequestProtocol files a pending request after checking both ends
// exist and no identical request is still open.
func (s *Store) RequestProtocol(patientID, protocolID, reason string) (entities.ProtocolRequest, error) {
	op := "Store.RequestProtocol"
	patient, err := s.Patients.Get(patientID)
	if err != nil {
		return entities.ProtocolRequest{}, fmt.Errorf("%s: patient: %w", op, err)
	}
	protocol, err := s.Protocols.Get(protocolID)
	if err != nil {
		return entities.ProtocolRequest{}, fmt.Errorf("%s: protocol: %w", op, err)
	}
	r, err := s.ProtocolRequests.Create(patient, protocol, reason)
	if err != nil {
		return entities.ProtocolRequest{}, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}

// ApproveRequest approves a pending request and enrols the patient in
// the protocol.
func (s *Store) ApproveRequest(id, note string) (entities.ProtocolRequest, error) {
	r, err := s.ProtocolRequests.Approve(id, note)
	if err != nil {
		return entities.ProtocolRequest{}, err
	}
	if err := s.Patients.AddProtocol(r.PatientID, r.ProtocolID); err != nil {
		return r, fmt.Errorf("Store.ApproveRequest: %w", err)
	}
	return r, nil
}
