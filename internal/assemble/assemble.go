// Package assemble merges reconstructed fragments into final transaction
// records: filtering boilerplate lines, resolving currency, de-duplicating
// rows seen through overlapping table and section matches, and tagging each
// record with its account type and bank.
package assemble

import (
	"bank-statement-extractor/internal/models"
	"bank-statement-extractor/internal/normalize"
	"bank-statement-extractor/pkg/logger"
)

// Config controls filtering and currency resolution
type Config struct {
	// FilterKeywords discard fragments whose description matches any entry
	// (case-insensitive substring): opening/closing balance labels, totals,
	// bank boilerplate.
	FilterKeywords []string

	// FixedCurrency forces the currency for account types with a single
	// ledger currency (the HKD accounts), regardless of what the fragment
	// detected.
	FixedCurrency map[models.AccountType]models.CurrencyCode

	// DefaultCurrency is the last-resort currency for foreign-currency
	// sections that never stated one.
	DefaultCurrency models.CurrencyCode
}

// Result is the outcome of one assembly pass
type Result struct {
	Transactions []models.Transaction
	Skips        []models.Skip
}

// Assembler builds transactions from fragments
type Assembler struct {
	config *Config
	log    logger.Logger
}

// NewAssembler creates an Assembler
func NewAssembler(config *Config) *Assembler {
	return &Assembler{
		config: config,
		log:    logger.WithComponent("assemble"),
	}
}

// Assemble converts fragments into tagged transactions. seen is the
// per-file de-duplication set, owned by the caller and shared across every
// assembly pass for one statement file; a fragment whose identity tuple was
// already seen is dropped. state supplies the fallback currency for
// fragments that never resolved one.
func (a *Assembler) Assemble(fragments []models.Fragment, account models.AccountType, bank string, state *models.ParseState, seen map[models.DedupKey]struct{}) Result {
	var result Result

	for _, frag := range fragments {
		desc := normalize.CleanText(frag.Description)
		if desc == "" {
			result.Skips = append(result.Skips, models.Skip{
				Reason: models.SkipEmptyDescription,
			})
			continue
		}

		if normalize.ContainsAny(desc, a.config.FilterKeywords) {
			result.Skips = append(result.Skips, models.Skip{
				Reason: models.SkipFilteredKeyword,
				Detail: desc,
			})
			continue
		}

		txn := models.Transaction{
			AccountType: account,
			BankName:    bank,
			Date:        frag.Date,
			Description: desc,
			Currency:    a.resolveCurrency(frag, account, state),
			Deposit:     frag.Deposit,
			Withdrawal:  frag.Withdrawal,
			Balance:     frag.Balance,
		}

		key := txn.Key()
		if _, dup := seen[key]; dup {
			result.Skips = append(result.Skips, models.Skip{
				Reason: models.SkipDuplicate,
				Detail: desc,
			})
			continue
		}
		seen[key] = struct{}{}

		result.Transactions = append(result.Transactions, txn)
	}

	a.log.WithFields(logger.Fields{
		"account":      account,
		"fragments":    len(fragments),
		"transactions": len(result.Transactions),
		"skipped":      len(result.Skips),
	}).Debug("assembled fragments")

	return result
}

// resolveCurrency applies the fixed-currency rule for single-currency
// accounts, then the fragment's detected currency, then the carried parse
// state, then the configured default.
func (a *Assembler) resolveCurrency(frag models.Fragment, account models.AccountType, state *models.ParseState) models.CurrencyCode {
	if fixed, ok := a.config.FixedCurrency[account]; ok {
		return fixed
	}
	if frag.Currency != "" {
		return frag.Currency
	}
	if state != nil && state.CurrentCurrency != "" {
		return state.CurrentCurrency
	}
	return a.config.DefaultCurrency
}
