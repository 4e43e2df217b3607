package entities

import "time"

type CheckInType string

const (
	CheckInVoice CheckInType = "voice"
	CheckInText  CheckInType = "text"
	CheckInCall  CheckInType = "call"
)

func (t CheckInType) Valid() bool {
	switch t {
	case CheckInVoice, CheckInText, CheckInCall:
		return true
	}
	return false
}

type CheckInStatus string

const (
	CheckInPending  CheckInStatus = "pending"
	CheckInReviewed CheckInStatus = "reviewed"
)

type CheckIn struct {
	ID          string        `json:"id" yaml:"id"`
	PatientID   string        `json:"patient_id" yaml:"patient_id"`
	PatientName string        `json:"patient_name" yaml:"patient_name"`
	Type        CheckInType   `json:"type" yaml:"type"`
	Summary     string        `json:"summary" yaml:"summary"`
	Transcript  string        `json:"transcript,omitempty" yaml:"transcript"`
	Mood        string        `json:"mood,omitempty" yaml:"mood"`
	Timestamp   time.Time     `json:"timestamp" yaml:"timestamp"`
	Status      CheckInStatus `json:"status" yaml:"status"`
}

func (c CheckIn) GetID() string { return c.ID }
