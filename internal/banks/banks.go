// Package banks maps detected bank names to their statement-parsing
// pipelines. Unknown banks resolve to a generic no-op parser so batch
// processing stays resilient to unsupported statements.
package banks

import (
	"context"

	"bank-statement-extractor/internal/assemble"
	"bank-statement-extractor/internal/models"
	"bank-statement-extractor/internal/reconstruct"
	"bank-statement-extractor/internal/sections"
	"bank-statement-extractor/internal/tables"
)

// Well-known bank identifiers as produced by the detector
const (
	BankHSBC    = "汇丰银行"
	BankESun    = "玉山银行"
	BankUnknown = "其他"
)

// Parser is the capability a registered bank provides: consume extracted
// pages in page order, produce transactions. Implementations never fail on
// malformed content; only resource-level problems surface as errors.
type Parser interface {
	Parse(ctx context.Context, pages []models.RawPage) ([]models.Transaction, *Report, error)
	BankName() string
}

// Report aggregates per-file parse diagnostics: how much was seen, how
// much was rejected, and why rows were skipped.
type Report struct {
	Pages          int
	SectionsFound  int
	TablesSeen     int
	TablesRejected int
	Skips          []models.Skip
}

// AddSkip records one skip in the report
func (r *Report) AddSkip(s models.Skip) {
	r.Skips = append(r.Skips, s)
}

// SkipCounts returns the number of skips per reason
func (r *Report) SkipCounts() map[models.SkipReason]int {
	counts := make(map[models.SkipReason]int)
	for _, s := range r.Skips {
		counts[s.Reason]++
	}
	return counts
}

// Config aggregates the engine configuration shared by the bank pipelines
type Config struct {
	Sections    *sections.Config
	Tables      *tables.Config
	Reconstruct *reconstruct.Config
	Assemble    *assemble.Config
}

// Registry resolves bank names to parsers
type Registry struct {
	parsers  map[string]Parser
	fallback Parser
}

// NewRegistry builds the registry with all supported bank parsers
func NewRegistry(config *Config) *Registry {
	hsbc := NewHSBCParser(config)
	esun := NewESunParser()

	return &Registry{
		parsers: map[string]Parser{
			BankHSBC:     hsbc,
			"HSBC":       hsbc,
			BankESun:     esun,
			"E.SUN":      esun,
			"E.SUN Bank": esun,
		},
		fallback: NewGenericParser(),
	}
}

// Resolve returns the parser for a bank name. Unknown names resolve to the
// generic parser, never an error.
func (r *Registry) Resolve(bank string) Parser {
	if p, ok := r.parsers[bank]; ok {
		return p
	}
	return r.fallback
}

// Names returns the registered bank identifiers
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	return names
}
