// Package export writes extracted transactions to Excel or CSV files.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"bank-statement-extractor/internal/models"
	apperrors "bank-statement-extractor/pkg/errors"
)

// Writer persists transactions to a file.
type Writer interface {
	Write(path string, transactions []models.Transaction) error
}

// ForPath picks a writer from the output file extension.
func ForPath(path string) (Writer, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return NewExcelWriter(), nil
	case ".csv":
		return NewCSVWriter(), nil
	default:
		return nil, apperrors.ExportError(apperrors.CodeUnsupportedFormat, path, nil)
	}
}

// OutputPath derives the per-file output name from the requested output path
// and the source statement. A requested path of out/transactions.xlsx for
// source jan2024.pdf and bank X yields out/transactions_X_jan2024.xlsx, so
// batch runs never overwrite each other.
func OutputPath(requested, bank, sourceFile string) string {
	dir := filepath.Dir(requested)
	ext := filepath.Ext(requested)
	base := strings.TrimSuffix(filepath.Base(requested), ext)
	stem := strings.TrimSuffix(filepath.Base(sourceFile), filepath.Ext(sourceFile))
	return filepath.Join(dir, fmt.Sprintf("%s_%s_%s%s", base, bank, stem, ext))
}
