package export

import (
	"unicode/utf8"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"bank-statement-extractor/internal/models"
	apperrors "bank-statement-extractor/pkg/errors"
	"bank-statement-extractor/pkg/logger"
)

// sheetOrder fixes the sheet layout of the workbook. Unclassified rows come
// last.
var sheetOrder = []models.AccountType{
	models.AccountHKDCurrent,
	models.AccountHKDSavings,
	models.AccountForeignSavings,
	models.AccountUnknown,
}

var excelHeaders = []string{
	"Date", "Description", "Currency",
	"Deposit", "Withdrawal", "Balance",
	"Bank", "Source File",
}

// ExcelWriter writes one sheet per account type. The account type itself is
// carried by the sheet name, not a column.
type ExcelWriter struct {
	log logger.Logger
}

// NewExcelWriter creates an Excel writer
func NewExcelWriter() *ExcelWriter {
	return &ExcelWriter{log: logger.WithComponent("export")}
}

// Write groups transactions by account type and saves the workbook.
func (w *ExcelWriter) Write(path string, transactions []models.Transaction) error {
	f := excelize.NewFile()
	defer f.Close()

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return apperrors.ExportError(apperrors.CodeWriteFailed, path, err)
	}

	groups := groupByAccount(transactions)
	firstSheet := -1
	for _, account := range sheetOrder {
		group := groups[account]
		if len(group) == 0 {
			continue
		}
		index, err := w.writeSheet(f, account.Label(), group, headerStyle)
		if err != nil {
			return apperrors.ExportError(apperrors.CodeWriteFailed, path, err)
		}
		if firstSheet < 0 {
			firstSheet = index
		}
	}

	if firstSheet >= 0 {
		f.SetActiveSheet(firstSheet)
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return apperrors.ExportError(apperrors.CodeWriteFailed, path, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.ExportError(apperrors.CodeWriteFailed, path, err)
	}

	w.log.WithFields(logger.Fields{
		"path":         path,
		"transactions": len(transactions),
	}).Info("Excel workbook written")
	return nil
}

func (w *ExcelWriter) writeSheet(f *excelize.File, name string, group []models.Transaction, headerStyle int) (int, error) {
	index, err := f.NewSheet(name)
	if err != nil {
		return 0, err
	}

	widths := make([]int, len(excelHeaders))
	for col, header := range excelHeaders {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return 0, err
		}
		if err := f.SetCellValue(name, cell, header); err != nil {
			return 0, err
		}
		widths[col] = utf8.RuneCountInString(header)
	}

	for i, txn := range group {
		values := []interface{}{
			txn.Date,
			txn.Description,
			string(txn.Currency),
			amountCell(txn.Deposit),
			amountCell(txn.Withdrawal),
			amountCell(txn.Balance),
			txn.BankName,
			txn.SourceFile,
		}
		for col, value := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return 0, err
			}
			if err := f.SetCellValue(name, cell, value); err != nil {
				return 0, err
			}
			if width := cellWidth(value); width > widths[col] {
				widths[col] = width
			}
		}
	}

	topRight, err := excelize.CoordinatesToCellName(len(excelHeaders), 1)
	if err != nil {
		return 0, err
	}
	if err := f.SetCellStyle(name, "A1", topRight, headerStyle); err != nil {
		return 0, err
	}

	// Column width tracks the widest cell, plus a little margin.
	for col, width := range widths {
		colName, err := excelize.ColumnNumberToName(col + 1)
		if err != nil {
			return 0, err
		}
		if err := f.SetColWidth(name, colName, colName, float64(width+2)); err != nil {
			return 0, err
		}
	}

	return index, nil
}

// amountCell leaves empty statement columns empty instead of writing zeros.
func amountCell(amount decimal.Decimal) interface{} {
	if amount.IsZero() {
		return ""
	}
	value, _ := amount.Float64()
	return value
}

func cellWidth(value interface{}) int {
	switch v := value.(type) {
	case string:
		return utf8.RuneCountInString(v)
	case float64:
		return len(decimal.NewFromFloat(v).StringFixed(2))
	default:
		return 0
	}
}

func groupByAccount(transactions []models.Transaction) map[models.AccountType][]models.Transaction {
	groups := make(map[models.AccountType][]models.Transaction)
	for _, txn := range transactions {
		account := txn.AccountType
		if !account.IsValid() {
			account = models.AccountUnknown
		}
		groups[account] = append(groups[account], txn)
	}
	return groups
}
