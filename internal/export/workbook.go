package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/restoops/backend-go/internal/service"
)

const (
	summarySheet  = "Summary"
	forecastSheet = "Forecast"
)

// WriteWorkbook renders the batch results as an XLSX workbook: a summary
// sheet mirroring the CSV layout plus a per-day forecast sheet.
func WriteWorkbook(w io.Writer, results []service.BatchResult) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName(f.GetSheetName(0), summarySheet)
	if _, err := f.NewSheet(forecastSheet); err != nil {
		return fmt.Errorf("failed to create forecast sheet: %w", err)
	}

	if err := writeSheetRow(f, summarySheet, 1, toAny(summaryHeader)); err != nil {
		return err
	}
	for i, result := range results {
		if err := writeSheetRow(f, summarySheet, i+2, toAny(summaryRow(result))); err != nil {
			return err
		}
	}

	forecastHeader := []interface{}{"item_id", "name", "date", "estimated_usage", "confidence"}
	if err := writeSheetRow(f, forecastSheet, 1, forecastHeader); err != nil {
		return err
	}
	rowNum := 2
	for _, result := range results {
		if result.Report == nil || result.Report.Forecast == nil {
			continue
		}
		for _, day := range result.Report.Forecast.Days {
			row := []interface{}{
				result.ItemID,
				result.Name,
				day.Date.Format("2006-01-02"),
				day.EstimatedUsage,
				string(day.Confidence),
			}
			if err := writeSheetRow(f, forecastSheet, rowNum, row); err != nil {
				return err
			}
			rowNum++
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeSheetRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to address row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d on %s: %w", row, sheet, err)
	}
	return nil
}

func toAny(values []string) []interface{} {
	out := make([]interface{}, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}
