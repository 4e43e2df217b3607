// Package seed loads the bundled demo dataset into the portal's
// in-memory stores.
package seed

import (
	"PortalServer/internal/auth"
	"PortalServer/internal/entities"
	"PortalServer/internal/store"
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed demo.yaml
var demoYAML []byte

type user struct {
	entities.User `yaml:",inline"`
	Password      string `yaml:"password"`
}

type appointment struct {
	entities.Appointment `yaml:",inline"`
	InDays               *int `yaml:"in_days"`
}

type Dataset struct {
	Users            []user                       `yaml:"users"`
	Patients         []entities.Patient           `yaml:"patients"`
	Protocols        []entities.TreatmentProtocol `yaml:"protocols"`
	ProtocolRequests []entities.ProtocolRequest   `yaml:"protocol_requests"`
	CheckIns         []entities.CheckIn           `yaml:"checkins"`
	Medications      []entities.Medication        `yaml:"medications"`
	Conditions       []entities.Condition         `yaml:"conditions"`
	Symptoms         []entities.Symptom           `yaml:"symptoms"`
	DataSources      []entities.DataSource        `yaml:"data_sources"`
	Appointments     []appointment                `yaml:"appointments"`
	Notifications    []entities.Notification      `yaml:"notifications"`
}

func Parse(data []byte) (*Dataset, error) {
	var ds Dataset
	if err := yaml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("seed.Parse: %w", err)
	}
	return &ds, nil
}

// Demo returns the bundled dataset.
func Demo() (*Dataset, error) {
	return Parse(demoYAML)
}

// Load inserts the dataset into s and registers the demo users with a.
// Relative appointment days are resolved against s.Now().
func (ds *Dataset) Load(s *store.Store, a *auth.Authenticator) error {
	op := "seed.Load"

	for _, u := range ds.Users {
		if err := a.AddUser(u.User, u.Password); err != nil {
			return fmt.Errorf("%s: user %s: %w", op, u.Username, err)
		}
	}
	for _, p := range ds.Patients {
		if _, err := s.Patients.Create(p); err != nil {
			return fmt.Errorf("%s: patient %s: %w", op, p.ID, err)
		}
	}
	for _, p := range ds.Protocols {
		if _, err := s.Protocols.Create(p); err != nil {
			return fmt.Errorf("%s: protocol %s: %w", op, p.ID, err)
		}
	}
	for _, r := range ds.ProtocolRequests {
		if !r.Status.Valid() {
			return fmt.Errorf("%s: request %s: status %q: %w", op, r.ID, r.Status, store.ErrInvalidStatus)
		}
		if err := s.ProtocolRequests.Insert(r); err != nil {
			return fmt.Errorf("%s: request %s: %w", op, r.ID, err)
		}
	}
	for _, c := range ds.CheckIns {
		if _, err := s.CheckIns.Add(c); err != nil {
			return fmt.Errorf("%s: checkin %s: %w", op, c.ID, err)
		}
	}
	for _, m := range ds.Medications {
		if _, err := s.Medications.Add(m); err != nil {
			return fmt.Errorf("%s: medication %s: %w", op, m.ID, err)
		}
	}
	for _, c := range ds.Conditions {
		if _, err := s.Conditions.Add(c); err != nil {
			return fmt.Errorf("%s: condition %s: %w", op, c.ID, err)
		}
	}
	for _, v := range ds.Symptoms {
		if _, err := s.Symptoms.Add(v); err != nil {
			return fmt.Errorf("%s: symptom %s: %w", op, v.ID, err)
		}
	}
	for _, d := range ds.DataSources {
		if err := s.DataSources.Insert(d); err != nil {
			return fmt.Errorf("%s: data source %s: %w", op, d.ID, err)
		}
	}

	today := s.Now()
	for _, apt := range ds.Appointments {
		a := apt.Appointment
		if apt.InDays != nil {
			a.Date = today.AddDate(0, 0, *apt.InDays).Format(entities.DateLayout)
		}
		if _, err := s.Appointments.Create(a); err != nil {
			return fmt.Errorf("%s: appointment %s: %w", op, a.ID, err)
		}
	}
	for _, n := range ds.Notifications {
		if _, err := s.Notifications.Add(n); err != nil {
			return fmt.Errorf("%s: notification %s: %w", op, n.ID, err)
		}
	}
	return nil
}

// Bootstrap builds a store and authenticator populated with the demo
// dataset.
func Bootstrap(secret string, ttl time.Duration, now func() time.Time) (*store.Store, *auth.Authenticator, error) {
	ds, err := Demo()
	if err != nil {
		return nil, nil, err
	}
	s := store.New(now)
	a := auth.New(secret, ttl, now)
	if err := ds.Load(s, a); err != nil {
		return nil, nil, err
	}
	return s, a, nil
}
