package health

import (
	"PortalServer/internal/entities"
	"testing"
)

func TestClassify(t *testing.T) {
	crp := DefaultRanges["hs-CRP"]
	tests := []struct {
		name  string
		value float64
		r     entities.Range
		want  entities.BiomarkerStatus
	}{
		{"optimal", 0.6, crp, entities.BiomarkerOptimal},
		{"normal", 2.1, crp, entities.BiomarkerNormal},
		{"attention just above", 3.5, crp, entities.BiomarkerAttention},
		{"critical far above", 8, crp, entities.BiomarkerCritical},
		{"attention below", 18, DefaultRanges["NAD+"], entities.BiomarkerAttention},
		{"critical below", 5, DefaultRanges["NAD+"], entities.BiomarkerCritical},
		{"open upper bound", 500, entities.Range{Min: ptr(10)}, entities.BiomarkerNormal},
		{"no optimal band", 12, entities.Range{Min: ptr(10), Max: ptr(20)}, entities.BiomarkerNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.value, tt.r); got != tt.want {
				t.Errorf("Classify(%v) = %s, want %s", tt.value, got, tt.want)
			}
		})
	}
}

func TestReadingUsesDefaultRange(t *testing.T) {
	b := Reading(entities.Biomarker{Name: "Vitamin D", Value: 62, Unit: "ng/mL"})
	if b.Status != entities.BiomarkerOptimal {
		t.Errorf("status = %s, want optimal", b.Status)
	}
	if b.Range.Min == nil || *b.Range.Min != 30 {
		t.Errorf("default range not applied: %+v", b.Range)
	}

	unknown := Reading(entities.Biomarker{Name: "Unknown", Value: 1})
	if unknown.Status != entities.BiomarkerNormal {
		t.Errorf("unbounded reading status = %s, want normal", unknown.Status)
	}
}

func TestAggregates(t *testing.T) {
	if got := Sum([]float64{1, 2, 3.5}); got != 6.5 {
		t.Errorf("Sum = %v", got)
	}
	if got := Average(nil); got != 0 {
		t.Errorf("Average(nil) = %v", got)
	}
	patients := []entities.Patient{{LongevityScore: 80}, {LongevityScore: 91}, {LongevityScore: 75}}
	if got := AverageLongevityScore(patients); got != 82 {
		t.Errorf("AverageLongevityScore = %v, want 82", got)
	}
	if got := AgeGap(entities.Patient{Age: 52, BiologicalAge: 46.5}); got != 5.5 {
		t.Errorf("AgeGap = %v", got)
	}
}

func TestStatusCounts(t *testing.T) {
	counts := StatusCounts(map[string]entities.Biomarker{
		"a": {Status: entities.BiomarkerOptimal},
		"b": {Status: entities.BiomarkerOptimal},
		"c": {Status: entities.BiomarkerCritical},
	})
	if counts[entities.BiomarkerOptimal] != 2 || counts[entities.BiomarkerCritical] != 1 || counts[entities.BiomarkerNormal] != 0 {
		t.Errorf("counts = %v", counts)
	}
}
