package entities

type PatientStatus string

const (
	PatientActive   PatientStatus = "Active"
	PatientInactive PatientStatus = "Inactive"
	PatientPending  PatientStatus = "Pending"
)

func (s PatientStatus) Valid() bool {
	switch s {
	case PatientActive, PatientInactive, PatientPending:
		return true
	}
	return false
}

type Patient struct {
	ID             string               `json:"id" yaml:"id"`
	Name           string               `json:"name" yaml:"name"`
	Email          string               `json:"email" yaml:"email"`
	Age            int                  `json:"age" yaml:"age"`
	Gender         string               `json:"gender" yaml:"gender"`
	Status         PatientStatus        `json:"status" yaml:"status"`
	BiologicalAge  float64              `json:"biological_age" yaml:"biological_age"`
	LongevityScore float64              `json:"longevity_score" yaml:"longevity_score"`
	Biomarkers     map[string]Biomarker `json:"biomarkers" yaml:"biomarkers"`
	ProtocolIDs    []string             `json:"protocol_ids" yaml:"protocol_ids"`
	LastVisit      string               `json:"last_visit" yaml:"last_visit"`
}

func (p Patient) GetID() string { return p.ID }

// Clone copies the biomarker map and protocol list so callers can
// mutate the result without touching stored state.
func (p Patient) Clone() Patient {
	out := p
	if p.Biomarkers != nil {
		out.Biomarkers = make(map[string]Biomarker, len(p.Biomarkers))
		for k, v := range p.Biomarkers {
			out.Biomarkers[k] = v
		}
	}
	if p.ProtocolIDs != nil {
		out.ProtocolIDs = append([]string(nil), p.ProtocolIDs...)
	}
	return out
}

func (p Patient) HasProtocol(id string) bool {
	for _, pid := range p.ProtocolIDs {
		if pid == id {
			return true
		}
	}
	return false
}
