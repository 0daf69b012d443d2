// Package tables decides whether a raw extracted table is a transaction
// table, which account type it belongs to, and which physical columns map
// to the logical date/description/amount roles.
package tables

import (
	"strings"

	"bank-statement-extractor/internal/models"
	"bank-statement-extractor/internal/normalize"
	"bank-statement-extractor/pkg/logger"
)

// Config holds the label and keyword sets the classifier matches against
type Config struct {
	// HeaderKeywords identify a header row: the first row containing at
	// least two of these is taken as the header.
	HeaderKeywords []string

	// RoleLabels lists candidate header labels per logical role, in match
	// priority order.
	RoleLabels map[models.ColumnRole][]string

	// IndicatorKeywords gate full parsing: a table whose flattened text
	// contains fewer than two distinct indicators is rejected outright.
	IndicatorKeywords []string

	// AccountKeywords attribute a table to an account type when one of the
	// type's markers appears in the table's own cells.
	AccountKeywords map[models.AccountType][]string
}

// Classification is the outcome for one table. Rejection is a normal
// outcome, not an error; Skip carries the reason.
type Classification struct {
	Accepted bool
	Skip     models.Skip
	Map      models.ColumnMap
	Account  models.AccountType
}

// Classifier builds column maps for transaction tables
type Classifier struct {
	config *Config
	log    logger.Logger
}

// NewClassifier creates a Classifier from the configured label sets
func NewClassifier(config *Config) *Classifier {
	return &Classifier{
		config: config,
		log:    logger.WithComponent("tables"),
	}
}

// attributionOrder fixes the order account keywords are tried in
var attributionOrder = []models.AccountType{
	models.AccountHKDCurrent,
	models.AccountHKDSavings,
	models.AccountForeignSavings,
}

// Classify decides acceptance and builds the column map for one table.
// sections are the account sections located on the table's page;
// hkdTablesSeen counts 5-column HKD tables already attributed during this
// page pass and breaks the tie between current and savings when the table
// itself carries no account marker: the first plain HKD table on a page is
// the current account, later ones are savings.
func (c *Classifier) Classify(table models.RawTable, sections []models.AccountSection, pageText string, hkdTablesSeen int) Classification {
	table.Normalize()

	if len(table.Rows) == 0 {
		return rejected(models.SkipNotTransactionTable, "empty table")
	}

	flat := table.Flatten()
	if c.countIndicators(flat) < 2 {
		return rejected(models.SkipNotTransactionTable, "fewer than two transaction indicators")
	}

	headerRow, ok := c.findHeaderRow(table)
	if !ok {
		// Degraded path: treat row 0 as header when there is anything below
		// it to parse.
		if len(table.Rows) <= 1 {
			return rejected(models.SkipNoHeaderRow, "no header row and no data rows")
		}
		headerRow = 0
	}

	cmap := c.resolveColumns(table.Rows[headerRow], headerRow)
	if !cmap.IsTransactionTable() {
		return rejected(models.SkipMissingColumns, "date or amount columns unresolved")
	}

	account := c.attribute(table, sections, pageText, hkdTablesSeen)

	c.log.WithFields(logger.Fields{
		"header_row": headerRow,
		"columns":    len(cmap.Columns),
		"account":    account,
	}).Debug("accepted transaction table")

	return Classification{
		Accepted: true,
		Map:      cmap,
		Account:  account,
	}
}

func rejected(reason models.SkipReason, detail string) Classification {
	return Classification{
		Accepted: false,
		Skip:     models.Skip{Reason: reason, Detail: detail},
	}
}

// countIndicators counts how many distinct indicator keywords appear in the
// flattened table text.
func (c *Classifier) countIndicators(flat string) int {
	count := 0
	for _, kw := range c.config.IndicatorKeywords {
		if kw == "" {
			continue
		}
		if strings.Contains(flat, strings.ToLower(kw)) {
			count++
		}
	}
	return count
}

// findHeaderRow returns the first row containing at least two header
// keywords.
func (c *Classifier) findHeaderRow(table models.RawTable) (int, bool) {
	for i, row := range table.Rows {
		joined := strings.ToLower(strings.Join(row, " "))
		hits := 0
		for _, kw := range c.config.HeaderKeywords {
			if strings.Contains(joined, strings.ToLower(kw)) {
				hits++
			}
			if hits >= 2 {
				return i, true
			}
		}
	}
	return 0, false
}

// resolveColumns maps each logical role to the first header cell matching
// one of its candidate labels. First match wins per role; a column already
// claimed by another role stays claimed.
func (c *Classifier) resolveColumns(header []string, headerRow int) models.ColumnMap {
	cmap := models.ColumnMap{
		HeaderRow: headerRow,
		Columns:   make(map[models.ColumnRole]int),
	}

	cells := make([]string, len(header))
	for i, cell := range header {
		cells[i] = strings.ToLower(normalize.CleanText(cell))
	}

	claimed := make(map[int]bool)
	for _, role := range []models.ColumnRole{
		models.RoleDate,
		models.RoleDescription,
		models.RoleDeposit,
		models.RoleWithdrawal,
		models.RoleBalance,
		models.RoleCurrency,
		models.RoleRemark,
	} {
	labels:
		for _, label := range c.config.RoleLabels[role] {
			label = strings.ToLower(label)
			for i, cell := range cells {
				if claimed[i] || cell == "" {
					continue
				}
				if cell == label || strings.Contains(cell, label) {
					cmap.Columns[role] = i
					claimed[i] = true
					break labels
				}
			}
		}
	}

	return cmap
}

// attribute resolves which account type the table belongs to.
// Priority: an account keyword inside the table's own cells, then textual
// overlap with a located section's span, then the HKD table counter
// tiebreak, then the unknown bucket. Unknown tables are still processed,
// never silently dropped.
func (c *Classifier) attribute(table models.RawTable, sections []models.AccountSection, pageText string, hkdTablesSeen int) models.AccountType {
	flat := table.Flatten()
	for _, account := range attributionOrder {
		for _, kw := range c.config.AccountKeywords[account] {
			if kw != "" && strings.Contains(flat, strings.ToLower(kw)) {
				return account
			}
		}
	}

	if account, ok := c.attributeByOverlap(table, sections, pageText); ok {
		return account
	}

	// A 5-column table near HKD sections carries no currency column; the
	// statement layout puts the current account first on the page.
	if table.Width() == 5 && hasHKDSection(sections) {
		if hkdTablesSeen == 0 {
			return models.AccountHKDCurrent
		}
		return models.AccountHKDSavings
	}

	if len(sections) == 1 {
		return sections[0].Type
	}

	return models.AccountUnknown
}

// attributeByOverlap checks whether one of the table's first rows appears
// inside a section's captured text span.
func (c *Classifier) attributeByOverlap(table models.RawTable, sections []models.AccountSection, pageText string) (models.AccountType, bool) {
	const probeRows = 3

	for _, section := range sections {
		span := section.Span(pageText)
		if span == "" {
			continue
		}
		for i, row := range table.Rows {
			if i >= probeRows {
				break
			}
			for _, cell := range row {
				cell = normalize.CleanText(cell)
				// Short cells ("01", "-") match everywhere; skip them.
				if len(cell) < 4 {
					continue
				}
				if strings.Contains(span, cell) {
					return section.Type, true
				}
			}
		}
	}
	return models.AccountUnknown, false
}

func hasHKDSection(sections []models.AccountSection) bool {
	for _, s := range sections {
		if s.Type == models.AccountHKDCurrent || s.Type == models.AccountHKDSavings {
			return true
		}
	}
	return false
}

// IsHKDTable reports whether an accepted table was attributed to one of the
// HKD account types; callers use it to maintain the per-page counter fed
// back into Classify.
func IsHKDTable(account models.AccountType, width int) bool {
	if width != 5 {
		return false
	}
	return account == models.AccountHKDCurrent || account == models.AccountHKDSavings
}
