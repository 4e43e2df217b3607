package entities

import "time"

type BiomarkerStatus string

const (
	BiomarkerOptimal   BiomarkerStatus = "optimal"
	BiomarkerNormal    BiomarkerStatus = "normal"
	BiomarkerAttention BiomarkerStatus = "attention"
	BiomarkerCritical  BiomarkerStatus = "critical"
)

// Range bounds are inclusive; a nil bound is open.
type Range struct {
	Min        *float64 `json:"min,omitempty" yaml:"min"`
	Max        *float64 `json:"max,omitempty" yaml:"max"`
	OptimalMin *float64 `json:"optimal_min,omitempty" yaml:"optimal_min"`
	OptimalMax *float64 `json:"optimal_max,omitempty" yaml:"optimal_max"`
}

type Biomarker struct {
	Name       string          `json:"name" yaml:"name"`
	Value      float64         `json:"value" yaml:"value"`
	Unit       string          `json:"unit" yaml:"unit"`
	Status     BiomarkerStatus `json:"status" yaml:"status"`
	Range      Range           `json:"range" yaml:"range"`
	MeasuredAt time.Time       `json:"measured_at" yaml:"measured_at"`
}
