package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/caresynapse/healthsummary/internal/record"
)

func sampleSummaries() record.AiSummaries {
	return record.AiSummaries{
		DoctorSummary:  "S: ...",
		PatientSummary: "You are doing well.",
		Alerts:         []string{record.NoAlertsMessage},
	}
}

func TestNew_EmptyRecord(t *testing.T) {
	s := New(nil)

	rec := s.Record()
	assert.NotEmpty(t, rec.PatientInfo.ID)
	assert.NotNil(t, rec.LabResults)
	_, ok := s.Summaries()
	assert.False(t, ok)
}

func TestReplace_ClearsSummaries(t *testing.T) {
	s := New(nil)
	s.SetSummaries(sampleSummaries())

	s.Replace(record.Example())

	_, ok := s.Summaries()
	assert.False(t, ok)
	assert.Equal(t, "Jane Doe", s.Record().PatientInfo.Name)
}

func TestReplace_NormalizesMissingSequences(t *testing.T) {
	s := New(nil)

	got := s.Replace(record.HealthRecord{PatientInfo: record.PatientInfo{Name: "A"}})

	for _, sec := range record.Sections() {
		assert.Zero(t, got.Len(sec))
	}
	assert.NotNil(t, got.DentalRecords)
	assert.NotEmpty(t, got.PatientInfo.ID)
}

func TestItemEdits_KeepSummaries(t *testing.T) {
	s := New(nil)
	s.Replace(record.Example())
	s.SetSummaries(sampleSummaries())
	rev := s.Revision()

	id, err := s.AddItem(record.SectionAllergies, map[string]string{"substance": "Latex"})
	require.NoError(t, err)
	require.NoError(t, s.UpdateItemField(record.SectionAllergies, id, "severity", "Severe"))
	require.NoError(t, s.UpdatePatientField("name", "Jane Q. Doe"))

	_, ok := s.Summaries()
	assert.True(t, ok)
	assert.Greater(t, s.Revision(), rev)

	rec := s.Record()
	require.Len(t, rec.Allergies, 2)
	assert.Equal(t, "Severe", rec.Allergies[1].Severity)

	require.NoError(t, s.RemoveItem(record.SectionAllergies, id))
	assert.Len(t, s.Record().Allergies, 1)
}

func TestFailedMutation_KeepsRevision(t *testing.T) {
	s := New(nil)
	rev := s.Revision()

	err := s.RemoveItem(record.SectionVitals, "nope")
	assert.ErrorIs(t, err, record.ErrItemNotFound)
	assert.Equal(t, rev, s.Revision())
}

func TestSetSummariesFor_RejectsStaleSnapshot(t *testing.T) {
	s := New(nil)
	s.Replace(record.Example())
	snap := s.Snapshot()

	// an edit lands while the summary is in flight
	require.NoError(t, s.UpdatePatientField("dob", "1985-07-23"))

	err := s.SetSummariesFor(snap.Revision, sampleSummaries())
	assert.ErrorIs(t, err, ErrStaleSnapshot)
	_, ok := s.Summaries()
	assert.False(t, ok)

	fresh := s.Snapshot()
	require.NoError(t, s.SetSummariesFor(fresh.Revision, sampleSummaries()))
	got, ok := s.Summaries()
	require.True(t, ok)
	assert.Equal(t, sampleSummaries(), got)
}

func TestReads_AreCopies(t *testing.T) {
	s := New(nil)
	s.Replace(record.Example())
	s.SetSummaries(sampleSummaries())

	rec := s.Record()
	rec.LabResults[0].Value = "0"
	sum, _ := s.Summaries()
	sum.Alerts[0] = "changed"

	assert.Equal(t, "6.5", s.Record().LabResults[0].Value)
	again, _ := s.Summaries()
	assert.Equal(t, record.NoAlertsMessage, again.Alerts[0])
}

func TestClearSummaries(t *testing.T) {
	s := New(nil)
	s.SetSummaries(sampleSummaries())
	s.ClearSummaries()

	_, ok := s.Summaries()
	assert.False(t, ok)
}

func TestConcurrentAccess(t *testing.T) {
	s := New(nil)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, _ = s.AddItem(record.SectionVitals, nil)
		}()
		go func() {
			defer wg.Done()
			_ = s.Snapshot()
		}()
	}
	wg.Wait()

	assert.Len(t, s.Record().Vitals, 20)
}
