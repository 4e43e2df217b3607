package seed

import (
	"PortalServer/internal/entities"
	"testing"
	"time"
)

func TestBootstrapLoadsDemoData(t *testing.T) {
	now := time.Date(2026, 10, 18, 8, 0, 0, 0, time.UTC)
	s, a, err := Bootstrap("secret", time.Hour, func() time.Time { return now })
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	if s.Patients.Len() != 5 {
		t.Errorf("patients = %d, want 5", s.Patients.Len())
	}
	if got := s.Patients.List("Active", ""); len(got) != 3 {
		t.Errorf("active patients = %d, want 3", len(got))
	}
	if got := s.ProtocolRequests.Pending(); len(got) != 2 {
		t.Errorf("pending requests = %d, want 2", len(got))
	}

	elena, err := s.Patients.Get("p-001")
	if err != nil {
		t.Fatal(err)
	}
	if b := elena.Biomarkers["NAD+"]; b.Status != entities.BiomarkerOptimal || b.Name != "NAD+" {
		t.Errorf("NAD+ = %+v", b)
	}
	if b := elena.Biomarkers["ApoB"]; b.Status != entities.BiomarkerNormal {
		t.Errorf("ApoB 92 status = %s, want normal", b.Status)
	}

	apt, err := s.Appointments.Get("apt-001")
	if err != nil {
		t.Fatal(err)
	}
	if apt.Date != "2026-10-18" {
		t.Errorf("relative appointment date = %s", apt.Date)
	}
	if apt2, _ := s.Appointments.Get("apt-002"); apt2.Date != "2026-10-21" {
		t.Errorf("in_days 3 date = %s", apt2.Date)
	}

	for _, cred := range [][2]string{{"admin", "admin"}, {"patient", "patient"}} {
		if _, err := a.Login(cred[0], cred[1]); err != nil {
			t.Errorf("Login(%s): %v", cred[0], err)
		}
	}
	if u, _ := a.User("patient"); u.PatientID != "p-001" || u.Role != entities.RolePatient {
		t.Errorf("patient user = %+v", u)
	}
}

func TestParseRejectsMalformedYAML(t *testing.T) {
	if _, err := Parse([]byte("patients: [")); err == nil {
		t.Fatal("expected parse error")
	}
}
