package record

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownSection = errors.New("unknown record section")
	ErrUnknownField   = errors.New("unknown field")
	ErrItemNotFound   = errors.New("item not found")
)

// Section names one of the nine ordered sequences of a HealthRecord.
// Values match the JSON field names.
type Section string

const (
	SectionLabResults         Section = "labResults"
	SectionDiagnoses          Section = "diagnoses"
	SectionVitals             Section = "vitals"
	SectionMedications        Section = "medications"
	SectionImagingReports     Section = "imagingReports"
	SectionAllergies          Section = "allergies"
	SectionPastMedicalHistory Section = "pastMedicalHistory"
	SectionSurgicalHistory    Section = "surgicalHistory"
	SectionDentalRecords      Section = "dentalRecords"
)

// Sections returns all sections in record order
func Sections() []Section {
	return []Section{
		SectionLabResults,
		SectionDiagnoses,
		SectionVitals,
		SectionMedications,
		SectionImagingReports,
		SectionAllergies,
		SectionPastMedicalHistory,
		SectionSurgicalHistory,
		SectionDentalRecords,
	}
}

// ParseSection validates a section name
func ParseSection(name string) (Section, error) {
	for _, s := range Sections() {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownSection, name)
}

// Entity is implemented by pointers to every list item type. Field returns a
// pointer to the named string field (JSON name); identity is not a field.
type Entity interface {
	GetID() string
	SetID(id string)
	Field(name string) (*string, bool)
}

type entityPtr[T any] interface {
	*T
	Entity
}

// Field returns the named demographic field
func (p *PatientInfo) Field(name string) (*string, bool) {
	switch name {
	case "name":
		return &p.Name, true
	case "dob":
		return &p.DOB, true
	case "gender":
		return &p.Gender, true
	}
	return nil, false
}

func (l *LabResult) GetID() string   { return l.ID }
func (l *LabResult) SetID(id string) { l.ID = id }

func (l *LabResult) Field(name string) (*string, bool) {
	switch name {
	case "name":
		return &l.Name, true
	case "loincCode":
		return &l.LOINCCode, true
	case "value":
		return &l.Value, true
	case "unit":
		return &l.Unit, true
	case "referenceRange":
		return &l.ReferenceRange, true
	case "date":
		return &l.Date, true
	case "interpretation":
		return &l.Interpretation, true
	}
	return nil, false
}

func (d *Diagnosis) GetID() string   { return d.ID }
func (d *Diagnosis) SetID(id string) { d.ID = id }

func (d *Diagnosis) Field(name string) (*string, bool) {
	switch name {
	case "description":
		return &d.Description, true
	case "icd10Code":
		return &d.ICD10Code, true
	case "snomedCode":
		return &d.SNOMEDCode, true
	case "date":
		return &d.Date, true
	case "status":
		return &d.Status, true
	}
	return nil, false
}

func (v *VitalSign) GetID() string   { return v.ID }
func (v *VitalSign) SetID(id string) { v.ID = id }

func (v *VitalSign) Field(name string) (*string, bool) {
	switch name {
	case "type":
		return &v.Type, true
	case "value":
		return &v.Value, true
	case "unit":
		return &v.Unit, true
	case "date":
		return &v.Date, true
	}
	return nil, false
}

func (m *Medication) GetID() string   { return m.ID }
func (m *Medication) SetID(id string) { m.ID = id }

func (m *Medication) Field(name string) (*string, bool) {
	switch name {
	case "name":
		return &m.Name, true
	case "rxNormId":
		return &m.RxNormID, true
	case "dose":
		return &m.Dose, true
	case "route":
		return &m.Route, true
	case "frequency":
		return &m.Frequency, true
	case "startDate":
		return &m.StartDate, true
	case "status":
		return &m.Status, true
	}
	return nil, false
}

func (i *ImagingReport) GetID() string   { return i.ID }
func (i *ImagingReport) SetID(id string) { i.ID = id }

func (i *ImagingReport) Field(name string) (*string, bool) {
	switch name {
	case "type":
		return &i.Type, true
	case "date":
		return &i.Date, true
	case "reportText":
		return &i.ReportText, true
	}
	return nil, false
}

func (a *Allergy) GetID() string   { return a.ID }
func (a *Allergy) SetID(id string) { a.ID = id }

func (a *Allergy) Field(name string) (*string, bool) {
	switch name {
	case "substance":
		return &a.Substance, true
	case "reaction":
		return &a.Reaction, true
	case "severity":
		return &a.Severity, true
	case "onsetDate":
		return &a.OnsetDate, true
	}
	return nil, false
}

func (h *HistoryItem) GetID() string   { return h.ID }
func (h *HistoryItem) SetID(id string) { h.ID = id }

func (h *HistoryItem) Field(name string) (*string, bool) {
	switch name {
	case "description":
		return &h.Description, true
	case "date":
		return &h.Date, true
	}
	return nil, false
}

func (d *DentalRecord) GetID() string   { return d.ID }
func (d *DentalRecord) SetID(id string) { d.ID = id }

func (d *DentalRecord) Field(name string) (*string, bool) {
	switch name {
	case "procedureCode":
		return &d.ProcedureCode, true
	case "description":
		return &d.Description, true
	case "date":
		return &d.Date, true
	case "notes":
		return &d.Notes, true
	}
	return nil, false
}

// SetFields overwrites the named fields of e
func SetFields(e Entity, fields map[string]string) error {
	for name, value := range fields {
		f, ok := e.Field(name)
		if !ok {
			return fmt.Errorf("%w: %q", ErrUnknownField, name)
		}
		*f = value
	}
	return nil
}
