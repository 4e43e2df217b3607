package store

import (
	"PortalServer/internal/entities"
	"fmt"
	"time"
)

type ProtocolRequests struct {
	c   *Collection[entities.ProtocolRequest]
	now func() time.Time
}

func requestStatus(r entities.ProtocolRequest) string  { return string(r.Status) }
func requestPatient(r entities.ProtocolRequest) string { return r.PatientID }
func requestPatientName(r entities.ProtocolRequest) string {
	return r.PatientName
}
func requestProtocolName(r entities.ProtocolRequest) string {
	return r.ProtocolName
}

func (s *ProtocolRequests) Insert(r entities.ProtocolRequest) error {
	return s.c.Insert(r)
}

// Create files a pending request for protocol on behalf of patient. A
// patient holds at most one pending request per protocol.
func (s *ProtocolRequests) Create(patient entities.Patient, protocol entities.TreatmentProtocol, reason string) (entities.ProtocolRequest, error) {
	r := entities.ProtocolRequest{
		ID:           newID(),
		ProtocolID:   protocol.ID,
		ProtocolName: protocol.Name,
		PatientID:    patient.ID,
		PatientName:  patient.Name,
		Status:       entities.RequestPending,
		Reason:       reason,
		RequestedAt:  s.now(),
	}
	open := func(e entities.ProtocolRequest) bool {
		return e.PatientID == r.PatientID && e.ProtocolID == r.ProtocolID && e.Status == entities.RequestPending
	}
	if err := s.c.InsertUnless(r, open, ErrAlreadyRequested); err != nil {
		return entities.ProtocolRequest{}, fmt.Errorf("ProtocolRequests.Create: %w", err)
	}
	return r, nil
}

func (s *ProtocolRequests) Get(id string) (entities.ProtocolRequest, error) {
	return s.c.Get(id)
}

// List filters by status and searches patient and protocol names.
func (s *ProtocolRequests) List(status, q string) ([]entities.ProtocolRequest, error) {
	if status != "" && !entities.RequestStatus(status).Valid() {
		return nil, fmt.Errorf("ProtocolRequests.List: status %q: %w", status, ErrInvalidStatus)
	}
	return s.c.Filter(All(
		Equals(status, requestStatus),
		Search(q, requestPatientName, requestProtocolName),
	)), nil
}

func (s *ProtocolRequests) Pending() []entities.ProtocolRequest {
	return s.c.Filter(Equals(string(entities.RequestPending), requestStatus))
}

func (s *ProtocolRequests) ForPatient(patientID string) []entities.ProtocolRequest {
	return s.c.Filter(Equals(patientID, requestPatient))
}

func (s *ProtocolRequests) Approve(id, note string) (entities.ProtocolRequest, error) {
	return s.decide(id, entities.RequestApproved, note)
}

func (s *ProtocolRequests) Reject(id, note string) (entities.ProtocolRequest, error) {
	return s.decide(id, entities.RequestRejected, note)
}

func (s *ProtocolRequests) decide(id string, status entities.RequestStatus, note string) (entities.ProtocolRequest, error) {
	op := "ProtocolRequests.decide"
	r, err := s.c.Update(id, func(r *entities.ProtocolRequest) error {
		if r.Status != entities.RequestPending {
			return fmt.Errorf("request %s is %s: %w", r.ID, r.Status, ErrAlreadyDecided)
		}
		now := s.now()
		r.Status = status
		r.ReviewNote = note
		r.DecidedAt = &now
		return nil
	})
	if err != nil {
		return entities.ProtocolRequest{}, fmt.Errorf("%s: %w", op, err)
	}
	return r, nil
}
