package banks

import (
	"context"

	"bank-statement-extractor/internal/assemble"
	"bank-statement-extractor/internal/models"
	"bank-statement-extractor/internal/reconstruct"
	"bank-statement-extractor/internal/sections"
	"bank-statement-extractor/internal/tables"
	"bank-statement-extractor/pkg/logger"
)

// HSBCParser parses HSBC Hong Kong combined statements, which interleave
// HKD current, HKD savings and foreign-currency savings sections across
// pages and within single physical tables.
type HSBCParser struct {
	locator       *sections.Locator
	classifier    *tables.Classifier
	reconstructor *reconstruct.Reconstructor
	assembler     *assemble.Assembler
	log           logger.Logger
}

// NewHSBCParser wires the section locator, table classifier, row
// reconstructor and assembler into one pipeline.
func NewHSBCParser(config *Config) *HSBCParser {
	return &HSBCParser{
		locator:       sections.NewLocator(config.Sections),
		classifier:    tables.NewClassifier(config.Tables),
		reconstructor: reconstruct.NewReconstructor(config.Reconstruct),
		assembler:     assemble.NewAssembler(config.Assemble),
		log:           logger.WithComponent("hsbc"),
	}
}

// BankName returns the display name used to tag transactions
func (p *HSBCParser) BankName() string {
	return BankHSBC
}

// Parse processes pages in page order. Cancellation is cooperative at page
// granularity: the context is polled between pages only. Pages with no
// located account section yield no transactions; a malformed table or row
// is skipped and recorded in the report, never fatal.
func (p *HSBCParser) Parse(ctx context.Context, pages []models.RawPage) ([]models.Transaction, *Report, error) {
	report := &Report{Pages: len(pages)}
	seen := make(map[models.DedupKey]struct{})
	var transactions []models.Transaction

	for _, page := range pages {
		select {
		case <-ctx.Done():
			return transactions, report, ctx.Err()
		default:
		}

		found := p.locator.FindSections(page.Number, page.Text)
		report.SectionsFound += len(found)
		if len(found) == 0 {
			p.log.WithFields(logger.Fields{"page": page.Number}).Debug("page has no account sections, skipping")
			continue
		}

		hkdTables := 0
		for _, table := range page.Tables {
			report.TablesSeen++

			cls := p.classifier.Classify(table, found, page.Text, hkdTables)
			if !cls.Accepted {
				report.TablesRejected++
				skip := cls.Skip
				skip.Page = page.Number
				report.AddSkip(skip)
				continue
			}
			if tables.IsHKDTable(cls.Account, table.Width()) {
				hkdTables++
			}

			// Fresh context per table-parsing pass; inheritance never leaks
			// across tables.
			state := models.ParseState{}
			frags, skips := p.reconstructor.Reconstruct(page.Number, table, cls.Map, &state)
			for _, s := range skips {
				report.AddSkip(s)
			}

			result := p.assembler.Assemble(frags, cls.Account, p.BankName(), &state, seen)
			for _, s := range result.Skips {
				s.Page = page.Number
				report.AddSkip(s)
			}
			transactions = append(transactions, result.Transactions...)
		}
	}

	p.log.WithFields(logger.Fields{
		"pages":        report.Pages,
		"tables":       report.TablesSeen,
		"rejected":     report.TablesRejected,
		"transactions": len(transactions),
	}).Info("statement parsed")

	return transactions, report, nil
}
