package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caresynapse/healthsummary/internal/record"
)

func titles(events []Event) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.Title
	}
	return out
}

func TestProject_DescendingByDate(t *testing.T) {
	rec := record.New()
	rec.LabResults = []record.LabResult{{Name: "Glucose", Value: "100", Unit: "mg/dL", Date: "2023-01-01"}}
	rec.Diagnoses = []record.Diagnosis{{Description: "Hypertension", Status: "Active", Date: "2023-06-01"}}

	events := Project(rec)

	require.Len(t, events, 2)
	assert.Equal(t, Event{Date: "2023-06-01", Title: "Diagnosis: Hypertension", Description: "Status: Active", Kind: KindDiagnosis}, events[0])
	assert.Equal(t, Event{Date: "2023-01-01", Title: "Lab: Glucose", Description: "Value: 100 mg/dL", Kind: KindLab}, events[1])
}

func TestProject_EventShapes(t *testing.T) {
	rec := record.New()
	rec.Medications = []record.Medication{{ID: "m1", Name: "Metformin", Dose: "500mg", Frequency: "BID", StartDate: "2022-01-15"}}
	rec.ImagingReports = []record.ImagingReport{{Type: "Chest X-Ray", Date: "2023-03-10", ReportText: "clear"}}
	rec.Allergies = []record.Allergy{{Substance: "Penicillin", OnsetDate: "2024-01-01"}}
	rec.Vitals = []record.VitalSign{{Type: "Heart Rate", Date: "2024-01-01"}}

	events := Project(rec)

	require.Len(t, events, 2)
	assert.Equal(t, "Imaging: Chest X-Ray", events[0].Title)
	assert.Equal(t, "Key findings available.", events[0].Description)
	assert.Equal(t, Event{Date: "2022-01-15", Title: "Medication: Metformin", Description: "500mg, BID", Kind: KindMedication, SourceID: "m1"}, events[1])
}

func TestProject_UnparseableDatesSortLast(t *testing.T) {
	rec := record.New()
	rec.LabResults = []record.LabResult{
		{Name: "A", Date: "Childhood"},
		{Name: "B", Date: "2020"},
		{Name: "C", Date: ""},
		{Name: "D", Date: "2021-05"},
		{Name: "E", Date: "2021-05-02"},
	}

	events := Project(rec)

	assert.Equal(t, []string{"Lab: E", "Lab: D", "Lab: B", "Lab: A", "Lab: C"}, titles(events))
}

func TestProject_TiesKeepSectionOrder(t *testing.T) {
	rec := record.New()
	rec.ImagingReports = []record.ImagingReport{{Type: "MRI", Date: "2023-01-01"}}
	rec.Medications = []record.Medication{{Name: "Aspirin", StartDate: "2023-01-01"}}
	rec.LabResults = []record.LabResult{{Name: "Sodium", Date: "2023-01-01"}}

	events := Project(rec)

	assert.Equal(t, []string{"Lab: Sodium", "Medication: Aspirin", "Imaging: MRI"}, titles(events))
}

func TestProject_Example(t *testing.T) {
	rec := record.Example()

	events := Project(rec)

	assert.Len(t, events, len(rec.LabResults)+len(rec.Diagnoses)+len(rec.Medications)+len(rec.ImagingReports))
	for i := 1; i < len(events); i++ {
		prev, okPrev := ParseDate(events[i-1].Date)
		cur, okCur := ParseDate(events[i].Date)
		if okPrev && okCur {
			assert.False(t, cur.After(prev), "%s before %s", events[i-1].Title, events[i].Title)
		}
	}
}

func TestProject_EmptyRecord(t *testing.T) {
	assert.Empty(t, Project(record.New()))
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"2023-10-15", true},
		{"2023-10", true},
		{"1999", true},
		{"2023-10-15T08:30:00Z", true},
		{" 2023-10-15 ", true},
		{"Childhood", false},
		{"15/10/2023", false},
		{"", false},
	}
	for _, tt := range tests {
		_, ok := ParseDate(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
	}
}
