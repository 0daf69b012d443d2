package export

import (
	"os"

	"github.com/gocarina/gocsv"

	"bank-statement-extractor/internal/models"
	apperrors "bank-statement-extractor/pkg/errors"
	"bank-statement-extractor/pkg/logger"
)

// CSVWriter writes all transactions to a single CSV file. Unlike the Excel
// writer it keeps the account-type column, since there are no sheets to
// carry it.
type CSVWriter struct {
	log logger.Logger
}

// NewCSVWriter creates a CSV writer
func NewCSVWriter() *CSVWriter {
	return &CSVWriter{log: logger.WithComponent("export")}
}

// Write marshals transactions using their csv struct tags.
func (w *CSVWriter) Write(path string, transactions []models.Transaction) error {
	file, err := os.Create(path)
	if err != nil {
		return apperrors.ExportError(apperrors.CodeWriteFailed, path, err)
	}
	defer file.Close()

	if err := gocsv.MarshalFile(&transactions, file); err != nil {
		return apperrors.ExportError(apperrors.CodeWriteFailed, path, err)
	}

	w.log.WithFields(logger.Fields{
		"path":         path,
		"transactions": len(transactions),
	}).Info("CSV file written")
	return nil
}
