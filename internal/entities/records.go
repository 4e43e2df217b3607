package entities

import "time"

type MedicationStatus string

const (
	MedicationActive       MedicationStatus = "active"
	MedicationPaused       MedicationStatus = "paused"
	MedicationDiscontinued MedicationStatus = "discontinued"
)

func (s MedicationStatus) Valid() bool {
	switch s {
	case MedicationActive, MedicationPaused, MedicationDiscontinued:
		return true
	}
	return false
}

type Medication struct {
	ID           string           `json:"id" yaml:"id"`
	PatientID    string           `json:"patient_id" yaml:"patient_id"`
	Name         string           `json:"name" yaml:"name"`
	Dosage       string           `json:"dosage" yaml:"dosage"`
	Frequency    string           `json:"frequency" yaml:"frequency"`
	Status       MedicationStatus `json:"status" yaml:"status"`
	PrescribedBy string           `json:"prescribed_by" yaml:"prescribed_by"`
	StartedAt    string           `json:"started_at" yaml:"started_at"`
}

func (m Medication) GetID() string { return m.ID }

type ConditionStatus string

const (
	ConditionActive   ConditionStatus = "active"
	ConditionManaged  ConditionStatus = "managed"
	ConditionResolved ConditionStatus = "resolved"
)

func (s ConditionStatus) Valid() bool {
	switch s {
	case ConditionActive, ConditionManaged, ConditionResolved:
		return true
	}
	return false
}

type Condition struct {
	ID          string          `json:"id" yaml:"id"`
	PatientID   string          `json:"patient_id" yaml:"patient_id"`
	Name        string          `json:"name" yaml:"name"`
	DiagnosedAt string          `json:"diagnosed_at" yaml:"diagnosed_at"`
	Status      ConditionStatus `json:"status" yaml:"status"`
	Notes       string          `json:"notes,omitempty" yaml:"notes"`
}

func (c Condition) GetID() string { return c.ID }

type Severity string

const (
	SeverityMild     Severity = "mild"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

func (s Severity) Valid() bool {
	switch s {
	case SeverityMild, SeverityModerate, SeveritySevere:
		return true
	}
	return false
}

type SymptomStatus string

const (
	SymptomActive   SymptomStatus = "active"
	SymptomResolved SymptomStatus = "resolved"
)

func (s SymptomStatus) Valid() bool {
	return s == SymptomActive || s == SymptomResolved
}

type Symptom struct {
	ID         string        `json:"id" yaml:"id"`
	PatientID  string        `json:"patient_id" yaml:"patient_id"`
	Name       string        `json:"name" yaml:"name"`
	Severity   Severity      `json:"severity" yaml:"severity"`
	Status     SymptomStatus `json:"status" yaml:"status"`
	ReportedAt time.Time     `json:"reported_at" yaml:"reported_at"`
	Notes      string        `json:"notes,omitempty" yaml:"notes"`
}

func (s Symptom) GetID() string { return s.ID }

const (
	LastSyncJustNow      = "Just now"
	LastSyncDisconnected = "Disconnected"
)

type DataSource struct {
	ID        string `json:"id" yaml:"id"`
	PatientID string `json:"patient_id" yaml:"patient_id"`
	Name      string `json:"name" yaml:"name"`
	Kind      string `json:"kind" yaml:"kind"`
	Connected bool   `json:"connected" yaml:"connected"`
	LastSync  string `json:"last_sync" yaml:"last_sync"`
}

func (d DataSource) GetID() string { return d.ID }
