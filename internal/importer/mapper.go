package importer

import (
	"fmt"

	"github.com/caresynapse/healthsummary/internal/record"
)

// PatientSheet is the sheet holding demographics in its first row
const PatientSheet = "PatientInfo"

// Column binds a spreadsheet header to a record field (JSON name)
type Column struct {
	Header string
	Field  string
}

// SheetSpec describes how one sheet maps onto a record section
type SheetSpec struct {
	Sheet   string
	Section record.Section
	Columns []Column
}

// PatientColumns are the demographic headers in export order
var PatientColumns = []Column{
	{Header: "Name", Field: "name"},
	{Header: "DOB", Field: "dob"},
	{Header: "Gender", Field: "gender"},
}

// DefaultSheets returns the sheet layout in record order
func DefaultSheets() []SheetSpec {
	return []SheetSpec{
		{Sheet: "LabResults", Section: record.SectionLabResults, Columns: []Column{
			{"Test Name", "name"}, {"LOINC Code", "loincCode"}, {"Value", "value"}, {"Unit", "unit"},
			{"Reference Range", "referenceRange"}, {"Date", "date"}, {"Interpretation", "interpretation"},
		}},
		{Sheet: "Diagnoses", Section: record.SectionDiagnoses, Columns: []Column{
			{"Description", "description"}, {"ICD-10 Code", "icd10Code"}, {"SNOMED Code", "snomedCode"},
			{"Date", "date"}, {"Status", "status"},
		}},
		{Sheet: "Vitals", Section: record.SectionVitals, Columns: []Column{
			{"Type", "type"}, {"Value", "value"}, {"Unit", "unit"}, {"Date", "date"},
		}},
		{Sheet: "Medications", Section: record.SectionMedications, Columns: []Column{
			{"Name", "name"}, {"RxNorm ID", "rxNormId"}, {"Dose", "dose"}, {"Route", "route"},
			{"Frequency", "frequency"}, {"Start Date", "startDate"}, {"Status", "status"},
		}},
		{Sheet: "ImagingReports", Section: record.SectionImagingReports, Columns: []Column{
			{"Type", "type"}, {"Date", "date"}, {"Report Text", "reportText"},
		}},
		{Sheet: "Allergies", Section: record.SectionAllergies, Columns: []Column{
			{"Substance", "substance"}, {"Reaction", "reaction"}, {"Severity", "severity"}, {"Onset Date", "onsetDate"},
		}},
		{Sheet: "PastMedicalHistory", Section: record.SectionPastMedicalHistory, Columns: []Column{
			{"Description", "description"}, {"Date", "date"},
		}},
		{Sheet: "SurgicalHistory", Section: record.SectionSurgicalHistory, Columns: []Column{
			{"Description", "description"}, {"Date", "date"},
		}},
		{Sheet: "DentalRecords", Section: record.SectionDentalRecords, Columns: []Column{
			{"Procedure Code", "procedureCode"}, {"Description", "description"}, {"Date", "date"}, {"Notes", "notes"},
		}},
	}
}

// Mapper converts a Workbook into a HealthRecord
type Mapper struct {
	sheets []SheetSpec
}

// NewMapper creates a mapper with the default sheet layout
func NewMapper() *Mapper {
	return &Mapper{sheets: DefaultSheets()}
}

// Sheets returns the sheet layout used by the mapper
func (m *Mapper) Sheets() []SheetSpec {
	return m.sheets
}

// Map builds a fresh record from wb. Every item gets a fresh identity; any
// identity column in the source is ignored. Absent sheets yield empty
// sequences.
func (m *Mapper) Map(wb Workbook) (record.HealthRecord, error) {
	rec := record.New()

	if rows, ok := wb.Rows(PatientSheet); ok && len(rows) > 0 {
		rec.PatientInfo = mapPatient(rows[0])
	}

	for _, layout := range m.sheets {
		rows, ok := wb.Rows(layout.Sheet)
		if !ok {
			continue
		}
		for i, row := range rows {
			fields := make(map[string]string, len(layout.Columns))
			for _, col := range layout.Columns {
				if v, ok := row.Lookup(col.Header); ok {
					fields[col.Field] = v
				}
			}
			if _, err := rec.AddItem(layout.Section, fields); err != nil {
				return record.HealthRecord{}, fmt.Errorf("sheet %s row %d: %w", layout.Sheet, i+2, err)
			}
		}
	}
	return rec, nil
}

func mapPatient(row Row) record.PatientInfo {
	p := record.PatientInfo{ID: record.NewID()}
	p.Name, _ = row.Lookup("Name")
	p.DOB, _ = row.Lookup("DOB")
	p.Gender, _ = row.Lookup("Gender")
	if p.Gender == "" {
		p.Gender = record.GenderPreferNotToSay
	}
	return p
}
