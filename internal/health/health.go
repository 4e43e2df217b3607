// Package health classifies biomarker readings against reference
// ranges and aggregates the scores shown on the dashboards.
package health

import (
	"PortalServer/internal/entities"
	"math"
)

// attentionBand is the fraction of the reference width a value may sit
// outside the range before it is critical.
const attentionBand = 0.2

func ptr(f float64) *float64 { return &f }

// DefaultRanges holds adult reference and optimal ranges for the
// biomarkers the portal tracks, keyed by biomarker name.
var DefaultRanges = map[string]entities.Range{
	"NAD+":         {Min: ptr(20), Max: ptr(60), OptimalMin: ptr(40), OptimalMax: ptr(60)},
	"hs-CRP":       {Min: ptr(0), Max: ptr(3.0), OptimalMin: ptr(0), OptimalMax: ptr(1.0)},
	"HbA1c":        {Min: ptr(4.0), Max: ptr(5.6), OptimalMin: ptr(4.6), OptimalMax: ptr(5.3)},
	"Vitamin D":    {Min: ptr(30), Max: ptr(100), OptimalMin: ptr(50), OptimalMax: ptr(80)},
	"ApoB":         {Min: ptr(40), Max: ptr(100), OptimalMin: ptr(40), OptimalMax: ptr(80)},
	"Testosterone": {Min: ptr(264), Max: ptr(916), OptimalMin: ptr(500), OptimalMax: ptr(900)},
	"Homocysteine": {Min: ptr(5), Max: ptr(15), OptimalMin: ptr(5), OptimalMax: ptr(9)},
}

func within(v float64, lo, hi *float64) bool {
	if lo != nil && v < *lo {
		return false
	}
	if hi != nil && v > *hi {
		return false
	}
	return true
}

// Classify maps a reading onto a status. Optimal wins over normal; a
// reading outside the reference range is attention while it stays
// within attentionBand of the range width, critical beyond that.
func Classify(value float64, r entities.Range) entities.BiomarkerStatus {
	if (r.OptimalMin != nil || r.OptimalMax != nil) && within(value, r.OptimalMin, r.OptimalMax) {
		return entities.BiomarkerOptimal
	}
	if within(value, r.Min, r.Max) {
		return entities.BiomarkerNormal
	}

	var width float64
	switch {
	case r.Min != nil && r.Max != nil:
		width = *r.Max - *r.Min
	case r.Min != nil:
		width = math.Abs(*r.Min)
	case r.Max != nil:
		width = math.Abs(*r.Max)
	}

	var distance float64
	if r.Min != nil && value < *r.Min {
		distance = *r.Min - value
	} else if r.Max != nil {
		distance = value - *r.Max
	}

	if distance <= width*attentionBand {
		return entities.BiomarkerAttention
	}
	return entities.BiomarkerCritical
}

// Reading builds a classified biomarker, falling back to DefaultRanges
// when the caller supplies no bounds.
func Reading(b entities.Biomarker) entities.Biomarker {
	r := b.Range
	if r.Min == nil && r.Max == nil && r.OptimalMin == nil && r.OptimalMax == nil {
		if def, ok := DefaultRanges[b.Name]; ok {
			r = def
		}
	}
	b.Range = r
	b.Status = Classify(b.Value, r)
	return b
}

func Sum(values []float64) float64 {
	var total float64
	for _, v := range values {
		total += v
	}
	return total
}

// Average returns 0 for an empty list.
func Average(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return Sum(values) / float64(len(values))
}

func AverageLongevityScore(patients []entities.Patient) float64 {
	scores := make([]float64, 0, len(patients))
	for _, p := range patients {
		scores = append(scores, p.LongevityScore)
	}
	return math.Round(Average(scores)*10) / 10
}

// StatusCounts tallies a patient's biomarkers per status.
func StatusCounts(biomarkers map[string]entities.Biomarker) map[entities.BiomarkerStatus]int {
	out := map[entities.BiomarkerStatus]int{
		entities.BiomarkerOptimal:   0,
		entities.BiomarkerNormal:    0,
		entities.BiomarkerAttention: 0,
		entities.BiomarkerCritical:  0,
	}
	for _, b := range biomarkers {
		out[b.Status]++
	}
	return out
}

// AgeGap is chronological minus biological age; positive means the
// patient is ageing slower than the calendar.
func AgeGap(p entities.Patient) float64 {
	return math.Round((float64(p.Age)-p.BiologicalAge)*10) / 10
}
