// Package export renders portal data as spreadsheets for staff.
package export

import (
	"PortalServer/internal/entities"
	"fmt"
	"io"

	"github.com/360EntSecGroup-Skylar/excelize"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const PatientsSheet = "Patients"

var patientHeaders = []string{
	"ID", "Name", "Email", "Age", "Gender", "Status",
	"Biological Age", "Longevity Score", "Protocols", "Last Visit",
}

// Patients writes one row per patient, followed by a column for every
// biomarker any of them has on file.
func Patients(w io.Writer, patients []entities.Patient) error {
	file := excelize.NewFile()
	file.NewSheet(PatientsSheet)
	file.DeleteSheet("Sheet1")

	markers := biomarkerNames(patients)
	headers := append(append([]string(nil), patientHeaders...), markers...)
	for col, h := range headers {
		file.SetCellValue(PatientsSheet, cell(col, 1), h)
	}

	for i, p := range patients {
		appendPatientRow(file, i+2, p, markers)
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("export.Patients: %w", err)
	}
	return nil
}

func appendPatientRow(file *excelize.File, row int, p entities.Patient, markers []string) {
	values := []interface{}{
		p.ID, p.Name, p.Email, p.Age, p.Gender, string(p.Status),
		p.BiologicalAge, p.LongevityScore, len(p.ProtocolIDs), p.LastVisit,
	}
	for col, v := range values {
		file.SetCellValue(PatientsSheet, cell(col, row), v)
	}
	for i, name := range markers {
		b, ok := p.Biomarkers[name]
		if !ok {
			continue
		}
		file.SetCellValue(PatientsSheet, cell(len(values)+i, row), fmt.Sprintf("%g %s", b.Value, b.Unit))
	}
}

func biomarkerNames(patients []entities.Patient) []string {
	seen := make(map[string]struct{})
	for _, p := range patients {
		for name := range p.Biomarkers {
			seen[name] = struct{}{}
		}
	}
	names := maps.Keys(seen)
	slices.Sort(names)
	return names
}

func cell(col, row int) string {
	return fmt.Sprintf("%s%d", excelize.ToAlphaString(col), row)
}
