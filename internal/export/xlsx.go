package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"invoicer/internal/billing"
	"invoicer/internal/domain"
)

const sheetName = "Invoices"

// money columns hold numbers so spreadsheet formulas work on them.
var moneyColumns = map[int]bool{5: true, 6: true, 7: true, 8: true}

// WriteXLSX writes a single-sheet workbook with the header row in bold.
func WriteXLSX(out io.Writer, invoices []domain.InvoiceSummary, today time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]interface{}, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	lastHeader, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(sheetName, "A1", lastHeader, bold); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i := range invoices {
		row := invoiceToRow(&invoices[i], today)
		values := make([]interface{}, len(row))
		for col, v := range row {
			if moneyColumns[col] {
				values[col] = billing.ParseDecimal(v).InexactFloat64()
				continue
			}
			values[col] = v
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(columns))
	if err := f.SetColWidth(sheetName, "A", lastCol, 16); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
