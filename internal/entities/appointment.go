package entities

import (
	"fmt"
	"time"
)

// Appointment dates and times are kept in the display layouts the
// portal uses; StartsAt parses them in a given location.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

type AppointmentStatus string

const (
	AppointmentScheduled AppointmentStatus = "scheduled"
	AppointmentCompleted AppointmentStatus = "completed"
	AppointmentCancelled AppointmentStatus = "cancelled"
)

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentScheduled, AppointmentCompleted, AppointmentCancelled:
		return true
	}
	return false
}

type Appointment struct {
	ID           string            `json:"id" yaml:"id"`
	PatientID    string            `json:"patient_id" yaml:"patient_id"`
	PatientName  string            `json:"patient_name" yaml:"patient_name"`
	Provider     string            `json:"provider" yaml:"provider"`
	Date         string            `json:"date" yaml:"date"`
	Time         string            `json:"time" yaml:"time"`
	Type         string            `json:"type" yaml:"type"`
	Status       AppointmentStatus `json:"status" yaml:"status"`
	Notes        string            `json:"notes,omitempty" yaml:"notes"`
	ReminderSent bool              `json:"reminder_sent" yaml:"reminder_sent"`
}

func (a Appointment) GetID() string { return a.ID }

func (a Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, a.Date+" "+a.Time, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("appointment %s: bad date/time: %w", a.ID, err)
	}
	return t, nil
}
