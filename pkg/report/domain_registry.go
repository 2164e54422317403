package report

import (
	"bytes"
	"fmt"

	"go-jobseeker-backend/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	SummarySheet = "Domains"
	MembersSheet = "Members"
)

// DomainRegistryWorkbook renders the registry as an xlsx file with a summary
// sheet (one row per domain) and a members sheet (one row per domain/email pair).
func DomainRegistryWorkbook(entries []domain.DomainEntry) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(MembersSheet); err != nil {
		return nil, err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})

	writeHeader(f, SummarySheet, headerStyle, "DOMAIN", "MEMBERS", "UPDATED AT")
	writeHeader(f, MembersSheet, headerStyle, "DOMAIN", "EMAIL")

	memberRow := 2
	for i, e := range entries {
		row := i + 2
		setRow(f, SummarySheet, row, string(e.Name), len(e.UserEmails), formatTime(e))

		for _, email := range e.UserEmails {
			setRow(f, MembersSheet, memberRow, string(e.Name), email)
			memberRow++
		}
	}

	_ = f.SetColWidth(SummarySheet, "A", "C", 28)
	_ = f.SetColWidth(MembersSheet, "A", "B", 36)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

func writeHeader(f *excelize.File, sheet string, style int, names ...string) {
	for i, name := range names {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, name)
	}
	end, _ := excelize.CoordinatesToCellName(len(names), 1)
	_ = f.SetCellStyle(sheet, "A1", end, style)
}

func setRow(f *excelize.File, sheet string, row int, values ...any) {
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		_ = f.SetCellValue(sheet, cell, v)
	}
}

func formatTime(e domain.DomainEntry) string {
	if e.UpdatedAt.IsZero() {
		return ""
	}
	return e.UpdatedAt.UTC().Format("2006-01-02 15:04:05")
}
