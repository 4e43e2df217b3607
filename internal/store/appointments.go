package store

import (
	"PortalServer/internal/entities"
	"fmt"
	"strings"
	"time"
)

type Appointments struct {
	c *Collection[entities.Appointment]
}

func appointmentStatus(a entities.Appointment) string  { return string(a.Status) }
func appointmentPatient(a entities.Appointment) string { return a.PatientID }
func appointmentName(a entities.Appointment) string    { return a.PatientName }
func appointmentProvider(a entities.Appointment) string {
	return a.Provider
}

func (s *Appointments) List(status, q string) []entities.Appointment {
	return s.c.Filter(All(
		Equals(status, appointmentStatus),
		Search(q, appointmentName, appointmentProvider),
	))
}

func (s *Appointments) ForPatient(patientID, status string) []entities.Appointment {
	return s.c.Filter(All(
		Equals(patientID, appointmentPatient),
		Equals(status, appointmentStatus),
	))
}

func (s *Appointments) Get(id string) (entities.Appointment, error) {
	return s.c.Get(id)
}

func validSlot(date, clock string) error {
	if _, err := time.Parse(entities.DateLayout, date); err != nil {
		return fmt.Errorf("date %q: %w: %v", date, ErrInvalidInput, err)
	}
	if _, err := time.Parse(entities.TimeLayout, clock); err != nil {
		return fmt.Errorf("time %q: %w: %v", clock, ErrInvalidInput, err)
	}
	return nil
}

func (s *Appointments) Create(a entities.Appointment) (entities.Appointment, error) {
	op := "Appointments.Create"
	if err := validSlot(a.Date, a.Time); err != nil {
		return entities.Appointment{}, fmt.Errorf("%s: %w", op, err)
	}
	if a.Status == "" {
		a.Status = entities.AppointmentScheduled
	}
	if !a.Status.Valid() {
		return entities.Appointment{}, fmt.Errorf("%s: status %q: %w", op, a.Status, ErrInvalidStatus)
	}
	if a.ID == "" {
		a.ID = newID()
	}
	a.Provider = strings.TrimSpace(a.Provider)
	if err := s.c.Insert(a); err != nil {
		return entities.Appointment{}, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// Only scheduled appointments can move; completed and cancelled ones
// are final.
func (s *Appointments) transition(id string, fn func(*entities.Appointment) error) (entities.Appointment, error) {
	return s.c.Update(id, func(a *entities.Appointment) error {
		if a.Status != entities.AppointmentScheduled {
			return fmt.Errorf("appointment %s is %s: %w", a.ID, a.Status, ErrInvalidTransition)
		}
		return fn(a)
	})
}

func (s *Appointments) Cancel(id string) (entities.Appointment, error) {
	a, err := s.transition(id, func(a *entities.Appointment) error {
		a.Status = entities.AppointmentCancelled
		return nil
	})
	if err != nil {
		return entities.Appointment{}, fmt.Errorf("Appointments.Cancel: %w", err)
	}
	return a, nil
}

func (s *Appointments) Complete(id string) (entities.Appointment, error) {
	a, err := s.transition(id, func(a *entities.Appointment) error {
		a.Status = entities.AppointmentCompleted
		return nil
	})
	if err != nil {
		return entities.Appointment{}, fmt.Errorf("Appointments.Complete: %w", err)
	}
	return a, nil
}

// Reschedule moves the slot and re-arms the reminder.
func (s *Appointments) Reschedule(id, date, clock string) (entities.Appointment, error) {
	op := "Appointments.Reschedule"
	if err := validSlot(date, clock); err != nil {
		return entities.Appointment{}, fmt.Errorf("%s: %w", op, err)
	}
	a, err := s.transition(id, func(a *entities.Appointment) error {
		a.Date = date
		a.Time = clock
		a.ReminderSent = false
		return nil
	})
	if err != nil {
		return entities.Appointment{}, fmt.Errorf("%s: %w", op, err)
	}
	return a, nil
}

// Upcoming returns scheduled appointments starting in [now, now+window].
func (s *Appointments) Upcoming(now time.Time, window time.Duration) []entities.Appointment {
	end := now.Add(window)
	return s.c.Filter(func(a entities.Appointment) bool {
		if a.Status != entities.AppointmentScheduled {
			return false
		}
		start, err := a.StartsAt(now.Location())
		if err != nil {
			return false
		}
		return !start.Before(now) && !start.After(end)
	})
}

// DueForReminder is Upcoming minus the ones already reminded.
func (s *Appointments) DueForReminder(now time.Time, window time.Duration) []entities.Appointment {
	var out []entities.Appointment
	for _, a := range s.Upcoming(now, window) {
		if !a.ReminderSent {
			out = append(out, a)
		}
	}
	return out
}

func (s *Appointments) MarkReminderSent(id string) error {
	_, err := s.c.Update(id, func(a *entities.Appointment) error {
		a.ReminderSent = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("Appointments.MarkReminderSent: %w", err)
	}
	return nil
}
