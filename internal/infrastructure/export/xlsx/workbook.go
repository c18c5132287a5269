package xlsx

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/SigmaByteKing/neu-salaysay-tracker/internal/core/domain"
)

const sheetName = "Salaysay"

var headers = []string{
	"File",
	"State",
	"Student Number",
	"Sender Name",
	"Incident Date",
	"Addressee",
	"Excuse Description",
	"Violation Type",
	"Language",
	"Notice",
}

// Row is one exported letter.
type Row struct {
	FileName string
	State    string
	Info     *domain.DocumentInfo
	Notice   string
}

func RowFromStatus(status domain.UploadStatus) Row {
	return Row{
		FileName: status.FileName,
		State:    string(status.State),
		Info:     status.Info,
		Notice:   status.Notice,
	}
}

func RowFromRecord(rec domain.SalaysayRecord) Row {
	info := rec.Info
	info.ViolationType = rec.ViolationType()
	return Row{
		FileName: rec.FileName,
		State:    string(rec.Status),
		Info:     &info,
		Notice:   rec.Notice,
	}
}

// Exporter renders rows into an XLSX workbook.
type Exporter struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{logger: logger}
}

func (e *Exporter) Render(rows []Row) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() {
		_ = f.Close()
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, h); err != nil {
			return nil, fmt.Errorf("xlsx header: %w", err)
		}
	}

	for i, r := range rows {
		values := rowValues(r)
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheetName, cell, v); err != nil {
				return nil, fmt.Errorf("xlsx cell %s: %w", cell, err)
			}
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 28)
	_ = f.SetColWidth(sheetName, "B", "B", 14)
	_ = f.SetColWidth(sheetName, "C", "C", 16)
	_ = f.SetColWidth(sheetName, "D", "F", 24)
	_ = f.SetColWidth(sheetName, "G", "G", 60)
	_ = f.SetColWidth(sheetName, "H", "H", 22)
	_ = f.SetColWidth(sheetName, "J", "J", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	e.logger.Info("export_xlsx_ok", "rows", len(rows), "elapsed_ms", time.Since(start).Milliseconds())
	return buf.Bytes(), nil
}

func rowValues(r Row) []string {
	values := []string{r.FileName, r.State, "", "", "", "", "", "", "", r.Notice}
	if r.Info == nil {
		return values
	}
	values[2] = r.Info.StudentID
	values[3] = r.Info.StudentName
	values[4] = domain.CanonicalDate(r.Info.SubmissionDate)
	values[5] = r.Info.Addressee
	values[6] = r.Info.NatureOfExcuse
	values[7] = string(domain.NormalizeViolationType(string(r.Info.ViolationType)))
	values[8] = string(r.Info.Language)
	return values
}
