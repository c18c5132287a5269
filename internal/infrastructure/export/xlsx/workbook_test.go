package xlsx

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
)

func TestRenderWritesOneRowPerLetter(t *testing.T) {
	info := &domain.DocumentInfo{
		Language: domain.LanguageTagalog,
		DocumentFields: domain.DocumentFields{
			StudentID:      "21-12345-678",
			StudentName:    "Maria Santos",
			Addressee:      "Kapatid na Reyes",
			SubmissionDate: time.Date(2025, time.April, 2, 0, 0, 0, 0, time.UTC),
			NatureOfExcuse: "I was absent because I was sick.",
		},
		ViolationType: domain.ViolationAttendance,
	}
	rows := []Row{
		RowFromStatus(domain.UploadStatus{FileName: "a.pdf", State: domain.StateCompleted, Info: info}),
		RowFromStatus(domain.UploadStatus{FileName: "b.png", State: domain.StateError, Notice: "Failed to convert image to PDF."}),
		RowFromRecord(domain.SalaysayRecord{FileName: "c.pdf", Status: domain.RecordProcessed, Info: domain.DocumentInfo{ViolationType: "Academic"}}),
	}

	data, err := New(nil).Render(rows)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, headers, got[0])
	assert.Equal(t, []string{"a.pdf", "completed", "21-12345-678", "Maria Santos", "April 2, 2025", "Kapatid na Reyes",
		"I was absent because I was sick.", "Attendance Issue", "tagalog"}, got[1])
	assert.Equal(t, "Failed to convert image to PDF.", got[2][9])
	assert.Equal(t, "Academic Misconduct", got[3][7])
}

func TestRenderEmptyWorkbookHasHeaders(t *testing.T) {
	data, err := New(nil).Render(nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Len(t, got[0], len(headers))
}
