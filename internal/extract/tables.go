package extract

import (
	"regexp"
	"strings"

	"bank-statement-extractor/internal/models"
	"bank-statement-extractor/internal/normalize"
)

// columnSplitRE splits a text line into cells on runs of two or more
// spaces, the separator extractByRow and extractByContent emit for wide
// horizontal gaps.
var columnSplitRE = regexp.MustCompile(`\s{2,}`)

// headerTokens mark lines that start a transaction table.
var headerTokens = []string{
	"date", "deposit", "withdrawal", "balance", "details",
	"日期", "存入", "支出", "结余", "货币",
}

// TablesFromText recovers tables from page text. A table is anchored at a
// header-looking line and extends over the following lines that either split
// into multiple cells or carry a date or amount token. Narrative lines end
// the table.
func TablesFromText(text string) []models.RawTable {
	lines := strings.Split(text, "\n")

	var tables []models.RawTable
	var current [][]string

	flush := func() {
		// A header with no data rows is not a table.
		if len(current) > 1 {
			tables = append(tables, models.RawTable{Rows: current})
		}
		current = nil
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}

		cells := splitColumns(trimmed)

		if current == nil {
			if isHeaderLine(trimmed, cells) {
				current = append(current, cells)
			}
			continue
		}

		if isHeaderLine(trimmed, cells) {
			flush()
			current = append(current, cells)
			continue
		}

		if len(cells) >= 2 || normalize.HasDateToken(trimmed) || normalize.HasAmountToken(trimmed) {
			current = append(current, cells)
			continue
		}

		flush()
	}
	flush()

	return tables
}

func splitColumns(line string) []string {
	parts := columnSplitRE.Split(line, -1)
	cells := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part != "" {
			cells = append(cells, part)
		}
	}
	return cells
}

// isHeaderLine requires at least three cells and two header tokens, which
// keeps sentences that merely mention a date or balance from opening a
// table.
func isHeaderLine(line string, cells []string) bool {
	if len(cells) < 3 {
		return false
	}
	lower := strings.ToLower(line)
	hits := 0
	for _, token := range headerTokens {
		if strings.Contains(lower, token) {
			hits++
		}
	}
	return hits >= 2
}
