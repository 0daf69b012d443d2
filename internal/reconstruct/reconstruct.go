// Package reconstruct turns classified table rows into transaction
// fragments. One physical row may hold several logical transactions packed
// into multiline cells by stream-mode extraction; the reconstructor splits
// them apart, carrying date and currency context forward across fragments
// that omit them.
package reconstruct

import (
	"fmt"
	"strings"

	"bank-statement-extractor/internal/models"
	"bank-statement-extractor/internal/normalize"
	"bank-statement-extractor/pkg/logger"

	"github.com/shopspring/decimal"
)

// Config holds the marker and keyword sets the emission rules match on
type Config struct {
	// CurrencyCodes is the allow-list of recognized ISO codes
	CurrencyCodes []string

	// DepositKeywords decide amount polarity when a row's amounts are
	// scraped from free text rather than dedicated columns.
	DepositKeywords []string

	// ContinuationKeywords qualify a lookahead line as a description
	// continuation of the previous fragment.
	ContinuationKeywords []string

	// BroughtForwardMarkers and CreditInterestMarkers trigger the composite
	// row rule when both appear in one row.
	BroughtForwardMarkers []string
	CreditInterestMarkers []string

	// Labels used for the two fragments the composite rule emits
	BroughtForwardLabel string
	CreditInterestLabel string
}

// Reconstructor consumes table rows and emits transaction fragments. The
// emission rules form a small priority table: composite row first, then
// multiline row, then single-line row; the first applicable rule wins.
type Reconstructor struct {
	config *Config
	rules  []rule
	log    logger.Logger
}

type rule struct {
	name    string
	applies func(*rowContext) bool
	emit    func(*rowContext, *models.ParseState) []models.Fragment
}

// rowContext is the per-row working view: the raw cells, the column map,
// the flattened text and the per-role line lists from multiline cells.
type rowContext struct {
	page  int
	row   int
	cells []string
	cmap  models.ColumnMap

	flat     string
	lines    map[models.ColumnRole][]string
	maxLines int
}

// splitRoles are the roles whose cells are split on embedded newlines
var splitRoles = []models.ColumnRole{
	models.RoleDescription,
	models.RoleDeposit,
	models.RoleWithdrawal,
	models.RoleBalance,
	models.RoleCurrency,
}

// NewReconstructor creates a Reconstructor with the standard rule table
func NewReconstructor(config *Config) *Reconstructor {
	r := &Reconstructor{
		config: config,
		log:    logger.WithComponent("reconstruct"),
	}
	r.rules = []rule{
		{name: "composite", applies: r.compositeApplies, emit: r.emitComposite},
		{name: "multiline", applies: r.multilineApplies, emit: r.emitMultiline},
		{name: "singleline", applies: func(*rowContext) bool { return true }, emit: r.emitSingleLine},
	}
	return r
}

// Reconstruct processes every data row below the header and returns the
// emitted fragments plus one Skip per row that produced nothing. state is
// threaded through row by row; the caller owns its lifecycle (fresh per
// table-parsing pass).
func (r *Reconstructor) Reconstruct(page int, table models.RawTable, cmap models.ColumnMap, state *models.ParseState) ([]models.Fragment, []models.Skip) {
	table.Normalize()

	var fragments []models.Fragment
	var skips []models.Skip

	for i := cmap.HeaderRow + 1; i < len(table.Rows); i++ {
		frags, skip := r.processRow(page, i, table.Rows[i], cmap, state)
		if skip != nil {
			skips = append(skips, *skip)
			continue
		}
		fragments = append(fragments, frags...)
	}

	return fragments, skips
}

// processRow runs the rule table over one row. Any panic while
// reconstructing the row is recovered and converted into a Skip; a single
// malformed row never aborts the table.
func (r *Reconstructor) processRow(page, row int, cells []string, cmap models.ColumnMap, state *models.ParseState) (frags []models.Fragment, skip *models.Skip) {
	defer func() {
		if rec := recover(); rec != nil {
			r.log.WithFields(logger.Fields{
				"page": page,
				"row":  row,
			}).Warnf("row reconstruction failed: %v", rec)
			frags = nil
			skip = &models.Skip{
				Reason: models.SkipRowError,
				Page:   page,
				Row:    row,
				Detail: fmt.Sprintf("%v", rec),
			}
		}
	}()

	ctx := newRowContext(page, row, cells, cmap)
	if ctx.flat == "" {
		return nil, &models.Skip{Reason: models.SkipEmptyDescription, Page: page, Row: row}
	}

	// A row that is only a currency marker updates context and is consumed.
	if code, ok := r.currencyAlone(ctx.flat); ok {
		state.CurrentCurrency = code
		return nil, &models.Skip{Reason: models.SkipNoDateToken, Page: page, Row: row, Detail: "currency marker"}
	}

	for _, rl := range r.rules {
		if !rl.applies(ctx) {
			continue
		}
		frags = rl.emit(ctx, state)
		if len(frags) == 0 {
			return nil, &models.Skip{
				Reason: models.SkipNoDateToken,
				Page:   page,
				Row:    row,
				Detail: clip(ctx.flat, 60),
			}
		}
		return frags, nil
	}

	return nil, &models.Skip{Reason: models.SkipRowError, Page: page, Row: row, Detail: "no rule applied"}
}

func newRowContext(page, row int, cells []string, cmap models.ColumnMap) *rowContext {
	ctx := &rowContext{
		page:  page,
		row:   row,
		cells: cells,
		cmap:  cmap,
		flat:  normalize.CleanText(strings.Join(cells, " ")),
		lines: make(map[models.ColumnRole][]string),
	}

	for _, role := range splitRoles {
		idx, ok := cmap.Index(role)
		if !ok || idx >= len(cells) {
			continue
		}
		parts := strings.Split(cells[idx], "\n")
		for i := range parts {
			parts[i] = normalize.CleanText(parts[i])
		}
		ctx.lines[role] = parts
		if len(parts) > ctx.maxLines {
			ctx.maxLines = len(parts)
		}
	}

	return ctx
}

// Composite rule: a row carrying both a brought-forward marker and a credit
// interest marker splits deterministically into exactly two fragments.

func (r *Reconstructor) compositeApplies(ctx *rowContext) bool {
	return normalize.ContainsAny(ctx.flat, r.config.BroughtForwardMarkers) &&
		normalize.ContainsAny(ctx.flat, r.config.CreditInterestMarkers)
}

func (r *Reconstructor) emitComposite(ctx *rowContext, state *models.ParseState) []models.Fragment {
	amounts := normalize.ParseAmountTokens(ctx.flat)

	date := state.CurrentDate
	if token, ok := normalize.FindDateToken(ctx.flat); ok {
		date = normalize.ParseDate(token)
		state.CurrentDate = date
	}

	// Brought-forward balance: the second-to-last amount is the carried
	// balance; the line is ledger continuity, not a deposit.
	bf := models.Fragment{
		Date:        date,
		Description: r.config.BroughtForwardLabel,
		Currency:    state.CurrentCurrency,
	}
	switch {
	case len(amounts) >= 2:
		bf.Balance = amounts[len(amounts)-2]
	case len(amounts) == 1:
		bf.Balance = amounts[0]
	}

	// Credit interest: the first amount is the interest paid in when more
	// than two amounts are present; the last is the resulting balance.
	ci := models.Fragment{
		Date:        date,
		Description: r.config.CreditInterestLabel,
		Currency:    state.CurrentCurrency,
	}
	if len(amounts) > 2 {
		ci.Deposit = amounts[0]
	}
	if len(amounts) >= 1 {
		ci.Balance = amounts[len(amounts)-1]
	}

	return []models.Fragment{bf, ci}
}

// Multiline rule: at least one relevant cell holds several logical lines.
// The line lists are iterated index-aligned; each description line either
// updates currency context, starts a new fragment, or continues the
// previous one.

func (r *Reconstructor) multilineApplies(ctx *rowContext) bool {
	return ctx.maxLines > 1
}

func (r *Reconstructor) emitMultiline(ctx *rowContext, state *models.ParseState) []models.Fragment {
	var frags []models.Fragment
	descLines := ctx.lines[models.RoleDescription]

	for i := 0; i < ctx.maxLines; i++ {
		line := lineAt(descLines, i)

		if code, ok := r.currencyAlone(line); ok {
			state.CurrentCurrency = code
			continue
		}
		if cur := lineAt(ctx.lines[models.RoleCurrency], i); cur != "" {
			if code, ok := r.currencyAlone(cur); ok {
				state.CurrentCurrency = code
			}
		}

		date := state.CurrentDate
		desc := line
		if token, ok := normalize.FindDateToken(line); ok {
			date = normalize.ParseDate(token)
			state.CurrentDate = date
			desc = normalize.StripDateToken(line)
		}

		deposit := amountAt(ctx.lines[models.RoleDeposit], i)
		withdrawal := amountAt(ctx.lines[models.RoleWithdrawal], i)
		balance := amountAt(ctx.lines[models.RoleBalance], i)

		// Lookahead: absorb the next line into this description only when
		// it reads like a continuation and owns no aligned amounts of its
		// own. A line with amounts is a transaction in its own right.
		if i+1 < len(descLines) {
			next := lineAt(descLines, i+1)
			if r.isContinuation(next) && !r.alignedAmounts(ctx, i+1) {
				desc = normalize.CleanText(desc + " " + next)
				i++
			}
		}

		if desc == "" && deposit.IsZero() && withdrawal.IsZero() && balance.IsZero() {
			continue
		}

		// No dedicated amounts at this position: scrape them from the line.
		if deposit.IsZero() && withdrawal.IsZero() && balance.IsZero() {
			deposit, withdrawal, balance = r.scrapeAmounts(desc)
			desc = normalize.StripAmountTokens(desc)
		}

		frags = append(frags, models.Fragment{
			Date:        date,
			Description: desc,
			Deposit:     deposit,
			Withdrawal:  withdrawal,
			Balance:     balance,
			Currency:    state.CurrentCurrency,
		})
	}

	return frags
}

// Single-line rule: extract one fragment from the row

func (r *Reconstructor) emitSingleLine(ctx *rowContext, state *models.ParseState) []models.Fragment {
	if idx, ok := ctx.cmap.Index(models.RoleCurrency); ok && idx < len(ctx.cells) {
		if code, ok := r.currencyAlone(normalize.CleanText(ctx.cells[idx])); ok {
			state.CurrentCurrency = code
		}
	} else if code, ok := r.currencyWord(ctx.flat); ok {
		state.CurrentCurrency = code
	}

	token, hasDate := normalize.FindDateToken(ctx.flat)

	date := state.CurrentDate
	if hasDate {
		date = normalize.ParseDate(token)
		state.CurrentDate = date
	}

	desc := r.singleLineDescription(ctx, token, hasDate)

	deposit, withdrawal, balance, fromColumns := r.columnAmounts(ctx)
	if !fromColumns {
		scraped := ctx.flat
		if hasDate {
			if pos := strings.Index(ctx.flat, token); pos >= 0 {
				scraped = ctx.flat[pos+len(token):]
			}
		}
		deposit, withdrawal, balance = r.scrapeAmounts(scraped)
		desc = normalize.StripAmountTokens(desc)
	}

	if !hasDate && deposit.IsZero() && withdrawal.IsZero() && balance.IsZero() {
		return nil
	}

	return []models.Fragment{{
		Date:        date,
		Description: desc,
		Deposit:     deposit,
		Withdrawal:  withdrawal,
		Balance:     balance,
		Currency:    state.CurrentCurrency,
	}}
}

func (r *Reconstructor) singleLineDescription(ctx *rowContext, token string, hasDate bool) string {
	if idx, ok := ctx.cmap.Index(models.RoleDescription); ok && idx < len(ctx.cells) {
		return normalize.StripDateToken(normalize.CleanText(ctx.cells[idx]))
	}
	if hasDate {
		if pos := strings.Index(ctx.flat, token); pos >= 0 {
			return normalize.StripAmountTokens(ctx.flat[pos+len(token):])
		}
	}
	return normalize.StripAmountTokens(ctx.flat)
}

// columnAmounts reads amounts from dedicated columns. fromColumns reports
// whether any mapped amount cell actually carried an amount token.
func (r *Reconstructor) columnAmounts(ctx *rowContext) (deposit, withdrawal, balance decimal.Decimal, fromColumns bool) {
	read := func(role models.ColumnRole) decimal.Decimal {
		idx, ok := ctx.cmap.Index(role)
		if !ok || idx >= len(ctx.cells) {
			return decimal.Zero
		}
		cell := ctx.cells[idx]
		if normalize.HasAmountToken(cell) {
			fromColumns = true
		}
		return normalize.ParseAmount(cell)
	}

	deposit = read(models.RoleDeposit)
	withdrawal = read(models.RoleWithdrawal)
	balance = read(models.RoleBalance)
	return deposit, withdrawal, balance, fromColumns
}

// scrapeAmounts extracts amounts from free text. The last token is the
// running balance; when more tokens remain, the first is a deposit or
// withdrawal depending on the keyword polarity of the text. The tie-break
// is a heuristic tuned against real statement samples.
func (r *Reconstructor) scrapeAmounts(text string) (deposit, withdrawal, balance decimal.Decimal) {
	amounts := normalize.ParseAmountTokens(text)
	if len(amounts) == 0 {
		return decimal.Zero, decimal.Zero, decimal.Zero
	}

	balance = amounts[len(amounts)-1]
	if len(amounts) >= 2 {
		if normalize.ContainsAny(text, r.config.DepositKeywords) {
			deposit = amounts[0]
		} else {
			withdrawal = amounts[0]
		}
	}
	return deposit, withdrawal, balance
}

// currencyAlone reports whether the cleaned text is exactly one allowed
// currency code.
func (r *Reconstructor) currencyAlone(s string) (models.CurrencyCode, bool) {
	upper := strings.ToUpper(strings.TrimSpace(s))
	for _, code := range r.config.CurrencyCodes {
		if upper == code {
			return models.CurrencyCode(code), true
		}
	}
	return "", false
}

// currencyWord finds an allowed currency code standing alone as a word
func (r *Reconstructor) currencyWord(s string) (models.CurrencyCode, bool) {
	for _, field := range strings.Fields(s) {
		if code, ok := r.currencyAlone(field); ok {
			return code, true
		}
	}
	return "", false
}

// isContinuation decides whether a lookahead line extends the previous
// fragment's description: it must read like transaction text and must not
// itself be a date, amount or currency token.
func (r *Reconstructor) isContinuation(line string) bool {
	if line == "" {
		return false
	}
	if normalize.HasDateToken(line) || normalize.HasAmountToken(line) {
		return false
	}
	if _, ok := r.currencyAlone(line); ok {
		return false
	}
	return normalize.ContainsAny(line, r.config.ContinuationKeywords)
}

// alignedAmounts reports whether any amount-role line list carries an
// amount token at position i.
func (r *Reconstructor) alignedAmounts(ctx *rowContext, i int) bool {
	for _, role := range []models.ColumnRole{models.RoleDeposit, models.RoleWithdrawal, models.RoleBalance} {
		if normalize.HasAmountToken(lineAt(ctx.lines[role], i)) {
			return true
		}
	}
	return false
}

func lineAt(lines []string, i int) string {
	if i < 0 || i >= len(lines) {
		return ""
	}
	return lines[i]
}

func amountAt(lines []string, i int) decimal.Decimal {
	return normalize.ParseAmount(lineAt(lines, i))
}

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
