package importer

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/caresynapse/healthsummary/internal/record"
)

func TestExportImport_RoundTrip(t *testing.T) {
	m := NewMapper()
	src := record.Example()

	var buf bytes.Buffer
	require.NoError(t, m.Export(&buf, src))

	got, err := m.Import(buf.Bytes())
	require.NoError(t, err)

	assert.Equal(t, src.WithoutIDs(), got.WithoutIDs())
	assert.NotEqual(t, src.PatientInfo.ID, got.PatientInfo.ID)
	assert.NotEqual(t, src.LabResults[0].ID, got.LabResults[0].ID)
}

func TestExport_EmptyRecordIsTemplate(t *testing.T) {
	m := NewMapper()

	var buf bytes.Buffer
	require.NoError(t, m.Export(&buf, record.New()))

	wb, err := ReadWorkbook(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)

	for _, layout := range m.Sheets() {
		rows, ok := wb.Rows(layout.Sheet)
		assert.True(t, ok, layout.Sheet)
		assert.Empty(t, rows, layout.Sheet)
	}
	rows, ok := wb.Rows(PatientSheet)
	require.True(t, ok)
	require.Len(t, rows, 1)
	assert.Equal(t, record.GenderPreferNotToSay, rows[0]["Gender"])
}

func TestReadWorkbook_SkipsBlankRowsAndCells(t *testing.T) {
	f := excelize.NewFile()
	require.NoError(t, f.SetSheetName("Sheet1", "LabResults"))
	require.NoError(t, f.SetSheetRow("LabResults", "A1", &[]any{"Test Name", "Value", "Unit"}))
	require.NoError(t, f.SetSheetRow("LabResults", "A2", &[]any{"Glucose", "100"}))
	require.NoError(t, f.SetSheetRow("LabResults", "A4", &[]any{"Sodium", "", "mmol/L"}))

	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)

	rec, err := NewMapper().Import(buf.Bytes())
	require.NoError(t, err)

	require.Len(t, rec.LabResults, 2)
	assert.Equal(t, "Glucose", rec.LabResults[0].Name)
	assert.Equal(t, "", rec.LabResults[0].Unit)
	assert.Equal(t, "Sodium", rec.LabResults[1].Name)
	assert.Equal(t, "", rec.LabResults[1].Value)
	assert.Equal(t, "mmol/L", rec.LabResults[1].Unit)
	assert.Empty(t, rec.Diagnoses)
}

func TestImport_Failures(t *testing.T) {
	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not a workbook", []byte("name,dob\nJane,1985-07-22\n")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewMapper().Import(tt.data)
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr))
			assert.Contains(t, perr.UserMessage(), "Failed to import from Excel.")
			assert.NotEmpty(t, perr.Detail())
		})
	}
}

func TestParseError_TruncatesCause(t *testing.T) {
	long := bytes.Repeat([]byte("x"), 2000)
	err := &ParseError{Cause: errors.New(string(long))}

	assert.LessOrEqual(t, len(err.Detail()), maxCauseLen+3)
	assert.ErrorIs(t, err, err.Cause)
}
