package record

// Option lists offered by the entry form. Imported values are not checked
// against them.
var (
	GenderOptions            = []string{GenderMale, GenderFemale, GenderOther, GenderPreferNotToSay}
	LabInterpretationOptions = []string{"Normal", "Abnormal", "Critical", ""}
	DiagnosisStatusOptions   = []string{"Active", "Resolved", ""}
	VitalTypeOptions         = []string{"Blood Pressure", "Heart Rate", "Weight", "BMI", "Temperature", "SpO2"}
	MedicationStatusOptions  = []string{"Active", "Inactive", "On Hold", ""}
	AllergySeverityOptions   = []string{"Mild", "Moderate", "Severe", ""}
)

// DefaultVitalType is the vital type a new or imported vital starts with
const DefaultVitalType = "Blood Pressure"

// NewPatientInfo returns empty demographics with a fresh identity
func NewPatientInfo() PatientInfo {
	return PatientInfo{ID: NewID(), Gender: GenderPreferNotToSay}
}

// Templates for new items. Identity is assigned by the caller.

func NewLabResult() LabResult         { return LabResult{} }
func NewDiagnosis() Diagnosis         { return Diagnosis{} }
func NewVitalSign() VitalSign         { return VitalSign{Type: DefaultVitalType} }
func NewMedication() Medication       { return Medication{} }
func NewImagingReport() ImagingReport { return ImagingReport{} }
func NewAllergy() Allergy             { return Allergy{} }
func NewHistoryItem() HistoryItem     { return HistoryItem{} }
func NewDentalRecord() DentalRecord   { return DentalRecord{} }

// New returns the initial all-empty record
func New() HealthRecord {
	return HealthRecord{
		PatientInfo:        NewPatientInfo(),
		LabResults:         []LabResult{},
		Diagnoses:          []Diagnosis{},
		Vitals:             []VitalSign{},
		Medications:        []Medication{},
		ImagingReports:     []ImagingReport{},
		Allergies:          []Allergy{},
		PastMedicalHistory: []HistoryItem{},
		SurgicalHistory:    []HistoryItem{},
		DentalRecords:      []DentalRecord{},
	}
}

// Example returns the demo patient. Identities are fresh on every call.
func Example() HealthRecord {
	return HealthRecord{
		PatientInfo: PatientInfo{ID: NewID(), Name: "Jane Doe", DOB: "1985-07-22", Gender: GenderFemale},
		LabResults: []LabResult{
			{ID: NewID(), Name: "Hemoglobin A1c", LOINCCode: "4548-4", Value: "6.5", Unit: "%", ReferenceRange: "4.0-5.6%", Date: "2023-10-15", Interpretation: "Abnormal"},
			{ID: NewID(), Name: "Total Cholesterol", LOINCCode: "2093-3", Value: "220", Unit: "mg/dL", ReferenceRange: "<200 mg/dL", Date: "2023-10-15", Interpretation: "Abnormal"},
		},
		Diagnoses: []Diagnosis{
			{ID: NewID(), Description: "Type 2 Diabetes Mellitus", ICD10Code: "E11.9", SNOMEDCode: "44054006", Date: "2022-05-01", Status: "Active"},
			{ID: NewID(), Description: "Hypertension", ICD10Code: "I10", SNOMEDCode: "38341003", Date: "2021-11-20", Status: "Active"},
		},
		Vitals: []VitalSign{
			{ID: NewID(), Type: "Blood Pressure", Value: "145/90", Unit: "mmHg", Date: "2023-11-01"},
			{ID: NewID(), Type: "Heart Rate", Value: "78", Unit: "bpm", Date: "2023-11-01"},
		},
		Medications: []Medication{
			{ID: NewID(), Name: "Metformin", RxNormID: "860975", Dose: "500mg", Route: "Oral", Frequency: "Twice daily", StartDate: "2022-05-01", Status: "Active"},
			{ID: NewID(), Name: "Lisinopril", RxNormID: "203155", Dose: "10mg", Route: "Oral", Frequency: "Once daily", StartDate: "2021-11-20", Status: "Active"},
		},
		ImagingReports: []ImagingReport{
			{ID: NewID(), Type: "Chest X-Ray", Date: "2023-01-10", ReportText: "Lungs are clear. No acute cardiopulmonary process."},
		},
		Allergies: []Allergy{
			{ID: NewID(), Substance: "Penicillin", Reaction: "Rash", Severity: "Moderate", OnsetDate: "2005-03-01"},
		},
		PastMedicalHistory: []HistoryItem{
			{ID: NewID(), Description: "Seasonal allergies", Date: "Childhood"},
		},
		SurgicalHistory: []HistoryItem{
			{ID: NewID(), Description: "Appendectomy", Date: "2000"},
		},
		DentalRecords: []DentalRecord{
			{ID: NewID(), ProcedureCode: "D1110", Description: "Adult Prophylaxis", Date: "2023-06-15", Notes: "Routine cleaning, no issues."},
		},
	}
}
