package banks

import (
	"context"

	"bank-statement-extractor/internal/models"
	"bank-statement-extractor/pkg/logger"
)

// GenericParser is the fallback for banks without a dedicated pipeline. It
// parses nothing and never fails, keeping batch runs alive when an
// unsupported statement shows up.
type GenericParser struct {
	log logger.Logger
}

// NewGenericParser creates the fallback parser
func NewGenericParser() *GenericParser {
	return &GenericParser{log: logger.WithComponent("generic")}
}

// BankName returns the unknown-bank identifier
func (p *GenericParser) BankName() string {
	return BankUnknown
}

// Parse returns no transactions
func (p *GenericParser) Parse(ctx context.Context, pages []models.RawPage) ([]models.Transaction, *Report, error) {
	p.log.WithFields(logger.Fields{"pages": len(pages)}).Warn("no parser for this bank, nothing extracted")
	return nil, &Report{Pages: len(pages)}, nil
}

// ESunParser is a registered placeholder for E.SUN Bank statements.
type ESunParser struct {
	log logger.Logger
}

// NewESunParser creates the E.SUN placeholder parser
func NewESunParser() *ESunParser {
	return &ESunParser{log: logger.WithComponent("esun")}
}

// BankName returns the E.SUN identifier
func (p *ESunParser) BankName() string {
	return BankESun
}

// Parse logs that E.SUN extraction is not implemented yet and returns no
// transactions. TODO: port the E.SUN layout heuristics once sample
// statements are available.
func (p *ESunParser) Parse(ctx context.Context, pages []models.RawPage) ([]models.Transaction, *Report, error) {
	p.log.Warn("E.SUN statement parsing not implemented, nothing extracted")
	return nil, &Report{Pages: len(pages)}, nil
}
