package entities

import "time"

type TreatmentProtocol struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Category    string   `json:"category" yaml:"category"`
	Duration    string   `json:"duration" yaml:"duration"`
	Frequency   string   `json:"frequency" yaml:"frequency"`
	Targets     []string `json:"targets" yaml:"targets"`
	Description string   `json:"description" yaml:"description"`
}

func (p TreatmentProtocol) GetID() string { return p.ID }

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

type ProtocolRequest struct {
	ID           string        `json:"id" yaml:"id"`
	ProtocolID   string        `json:"protocol_id" yaml:"protocol_id"`
	ProtocolName string        `json:"protocol_name" yaml:"protocol_name"`
	PatientID    string        `json:"patient_id" yaml:"patient_id"`
	PatientName  string        `json:"patient_name" yaml:"patient_name"`
	Status       RequestStatus `json:"status" yaml:"status"`
	Reason       string        `json:"reason" yaml:"reason"`
	ReviewNote   string        `json:"review_note,omitempty" yaml:"review_note"`
	RequestedAt  time.Time     `json:"requested_at" yaml:"requested_at"`
	DecidedAt    *time.Time    `json:"decided_at,omitempty" yaml:"decided_at"`
}

func (r ProtocolRequest) GetID() string { return r.ID }
