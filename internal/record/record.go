// Package record defines the canonical in-memory health record and its sub-entities.
package record

import "github.com/google/uuid"

// Gender values accepted for PatientInfo.Gender
const (
	GenderMale           = "Male"
	GenderFemale         = "Female"
	GenderOther          = "Other"
	GenderPreferNotToSay = "Prefer not to say"
)

// NoAlertsMessage is the single alert emitted when nothing critical was found
const NoAlertsMessage = "No critical alerts identified."

// PatientInfo holds patient demographics
type PatientInfo struct {
	ID     string `json:"id,omitempty"`
	Name   string `json:"name" validate:"required"`
	DOB    string `json:"dob"`
	Gender string `json:"gender"`
}

// LabResult is a single laboratory observation
type LabResult struct {
	ID             string `json:"id,omitempty"`
	Name           string `json:"name"`
	LOINCCode      string `json:"loincCode"`
	Value          string `json:"value"`
	Unit           string `json:"unit"`
	ReferenceRange string `json:"referenceRange"`
	Date           string `json:"date"`
	Interpretation string `json:"interpretation"`
}

// Diagnosis is a coded problem list entry
type Diagnosis struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description"`
	ICD10Code   string `json:"icd10Code"`
	SNOMEDCode  string `json:"snomedCode"`
	Date        string `json:"date"`
	Status      string `json:"status"`
}

// VitalSign is a single vital measurement
type VitalSign struct {
	ID    string `json:"id,omitempty"`
	Type  string `json:"type"`
	Value string `json:"value"`
	Unit  string `json:"unit"`
	Date  string `json:"date"`
}

// Medication is a medication list entry
type Medication struct {
	ID        string `json:"id,omitempty"`
	Name      string `json:"name"`
	RxNormID  string `json:"rxNormId"`
	Dose      string `json:"dose"`
	Route     string `json:"route"`
	Frequency string `json:"frequency"`
	StartDate string `json:"startDate"`
	Status    string `json:"status"`
}

// ImagingReport is a simplified imaging study impression
type ImagingReport struct {
	ID         string `json:"id,omitempty"`
	Type       string `json:"type"`
	Date       string `json:"date"`
	ReportText string `json:"reportText"`
}

// Allergy is an allergy or intolerance entry
type Allergy struct {
	ID        string `json:"id,omitempty"`
	Substance string `json:"substance"`
	Reaction  string `json:"reaction"`
	Severity  string `json:"severity"`
	OnsetDate string `json:"onsetDate"`
}

// HistoryItem is shared by past medical and surgical history.
// Date may be a free-text year such as "2000" or "Childhood".
type HistoryItem struct {
	ID          string `json:"id,omitempty"`
	Description string `json:"description"`
	Date        string `json:"date"`
}

// DentalRecord is a dental procedure entry
type DentalRecord struct {
	ID            string `json:"id,omitempty"`
	ProcedureCode string `json:"procedureCode"`
	Description   string `json:"description"`
	Date          string `json:"date"`
	Notes         string `json:"notes"`
}

// HealthRecord is one patient's full structured record. Sequences are never
// nil once normalized; order is insertion order.
type HealthRecord struct {
	PatientInfo        PatientInfo     `json:"patientInfo"`
	LabResults         []LabResult     `json:"labResults"`
	Diagnoses          []Diagnosis     `json:"diagnoses"`
	Vitals             []VitalSign     `json:"vitals"`
	Medications        []Medication    `json:"medications"`
	ImagingReports     []ImagingReport `json:"imagingReports"`
	Allergies          []Allergy       `json:"allergies"`
	PastMedicalHistory []HistoryItem   `json:"pastMedicalHistory"`
	SurgicalHistory    []HistoryItem   `json:"surgicalHistory"`
	DentalRecords      []DentalRecord  `json:"dentalRecords"`
}

// AiSummaries are the generated summaries for one record snapshot
type AiSummaries struct {
	DoctorSummary  string   `json:"doctorSummary"`
	PatientSummary string   `json:"patientSummary"`
	Alerts         []string `json:"alerts"`
}

// HasAlerts reports whether the alerts carry anything besides the
// "no critical alerts" convention.
func (s AiSummaries) HasAlerts() bool {
	if len(s.Alerts) == 0 {
		return false
	}
	return len(s.Alerts) > 1 || s.Alerts[0] != NoAlertsMessage
}

// Clone returns a deep copy
func (s AiSummaries) Clone() AiSummaries {
	s.Alerts = append(make([]string, 0, len(s.Alerts)), s.Alerts...)
	return s
}

// NewID returns a fresh identity token. Tokens are random v4 UUIDs and are
// never reused.
func NewID() string {
	return uuid.New().String()
}
