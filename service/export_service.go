package service

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/Aashish23092/receipt-capture/dto"
	"github.com/Aashish23092/receipt-capture/logger"
)

const exportSheet = "Receipts"

var exportHeaders = []string{
	"Date",
	"Merchant",
	"Category",
	"Amount",
	"Payment Method",
	"Invoice Number",
}

// ExportService renders confirmed receipts as an XLSX workbook.
type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

// ExportXLSX returns a workbook with one row per receipt on the "Receipts" sheet.
// Amounts that parse as decimals are written as numbers.
func (s *ExportService) ExportXLSX(records []dto.ReceiptFields) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(exportSheet, cell, h)
	}

	for i, r := range records {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(exportSheet, cell, v)
		}

		write(1, r.Date)
		write(2, r.Merchant)
		write(3, r.Category)
		if amount, err := decimal.NewFromString(r.Amount); err == nil {
			write(4, amount.InexactFloat64())
		} else {
			write(4, r.Amount)
		}
		write(5, string(r.PaymentMethod))
		write(6, r.InvoiceNumber)
	}

	_ = f.SetColWidth(exportSheet, "A", "A", 12) // date
	_ = f.SetColWidth(exportSheet, "B", "B", 28) // merchant
	_ = f.SetColWidth(exportSheet, "C", "C", 14) // category
	_ = f.SetColWidth(exportSheet, "D", "E", 14)
	_ = f.SetColWidth(exportSheet, "F", "F", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	logger.Log.Info().
		Int("rows", len(records)).
		Int64("elapsed_ms", time.Since(start).Milliseconds()).
		Msg("Receipts exported")
	return buf.Bytes(), nil
}
