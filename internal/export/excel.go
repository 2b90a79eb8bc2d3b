package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"rentmimi/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Exporter writes payout ledgers as Excel files into the export directory.
type Exporter struct {
	path   string
	logger *zerolog.Logger
}

func NewExporter(path string, logger *zerolog.Logger) *Exporter {
	return &Exporter{path: path, logger: logger}
}

// PayoutLedger writes one row per pending payout line and a total row at
// the bottom. Returns the path of the created file.
func (e *Exporter) PayoutLedger(lines []models.PayoutLine) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %v", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "정산"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("error creating sheet: %v", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"예약 ID", "날짜", "시간", "미미", "등급", "시간(h)", "플랜", "결제액", "정산액"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	_ = f.SetCellStyle(sheetName, "A1", "I1", headerStyle)

	var total int64
	for i, line := range lines {
		row := i + 2
		_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), line.Booking.ID)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), line.Booking.Date)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), line.Booking.Time)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), line.MimiName)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), line.Grade)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("F%d", row), line.Booking.DurationHours)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("G%d", row), line.Booking.Plan)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("H%d", row), line.Booking.TotalCost)
		_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", row), line.Amount)
		total += line.Amount
	}

	totalRow := len(lines) + 2
	_ = f.SetCellValue(sheetName, fmt.Sprintf("A%d", totalRow), "합계")
	_ = f.SetCellValue(sheetName, fmt.Sprintf("I%d", totalRow), total)
	totalStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	_ = f.SetCellStyle(sheetName, fmt.Sprintf("A%d", totalRow), fmt.Sprintf("I%d", totalRow), totalStyle)

	_ = f.SetColWidth(sheetName, "A", "A", 38)
	_ = f.SetColWidth(sheetName, "B", "I", 14)

	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("payouts_%s.xlsx", time.Now().Format("2006-01-02_15-04-05"))
	filePath := filepath.Join(e.path, fileName)

	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %v", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("lines", len(lines)).Msg("Payout ledger created")
	return filePath, nil
}
