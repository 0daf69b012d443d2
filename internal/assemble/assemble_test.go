package assemble

import (
	"testing"

	"bank-statement-extractor/internal/models"

	"github.com/shopspring/decimal"
)

func testConfig() *Config {
	return &Config{
		FilterKeywords: []string{
			"Opening Balance", "Closing Balance", "账户结余", "期初余额", "期末余额",
			"Total No. of Deposits", "Total No. of Withdrawals",
			"Total Deposit Amount", "Total Withdrawal Amount",
		},
		FixedCurrency: map[models.AccountType]models.CurrencyCode{
			models.AccountHKDCurrent: models.CurrencyHKD,
			models.AccountHKDSavings: models.CurrencyHKD,
		},
		DefaultCurrency: models.CurrencyUSD,
	}
}

func frag(date, desc string, balance string) models.Fragment {
	return models.Fragment{
		Date:        date,
		Description: desc,
		Balance:     decimal.RequireFromString(balance),
	}
}

func TestAssembleTagsTransactions(t *testing.T) {
	a := NewAssembler(testConfig())
	seen := make(map[models.DedupKey]struct{})

	result := a.Assemble(
		[]models.Fragment{frag("2024-01-01", "TRANSFER", "1000.00")},
		models.AccountHKDCurrent, "汇丰银行", &models.ParseState{}, seen,
	)

	if len(result.Transactions) != 1 {
		t.Fatalf("Assemble() produced %d transactions, want 1", len(result.Transactions))
	}
	txn := result.Transactions[0]
	if txn.AccountType != models.AccountHKDCurrent {
		t.Errorf("account type = %s", txn.AccountType)
	}
	if txn.BankName != "汇丰银行" {
		t.Errorf("bank name = %s", txn.BankName)
	}
	if txn.Currency != models.CurrencyHKD {
		t.Errorf("currency = %s, want HKD forced for HKD account", txn.Currency)
	}
}

func TestAssembleFiltersBoilerplate(t *testing.T) {
	a := NewAssembler(testConfig())
	seen := make(map[models.DedupKey]struct{})

	fragments := []models.Fragment{
		frag("2024-01-01", "Opening Balance", "1000.00"),
		frag("2024-01-02", "TRANSFER", "1100.00"),
		frag("2024-01-31", "Total Deposit Amount", "5000.00"),
		{Description: "   "},
	}

	result := a.Assemble(fragments, models.AccountHKDCurrent, "bank", &models.ParseState{}, seen)

	if len(result.Transactions) != 1 {
		t.Fatalf("Assemble() kept %d transactions, want 1", len(result.Transactions))
	}
	if result.Transactions[0].Description != "TRANSFER" {
		t.Errorf("kept transaction = %q", result.Transactions[0].Description)
	}

	reasons := map[models.SkipReason]int{}
	for _, s := range result.Skips {
		reasons[s.Reason]++
	}
	if reasons[models.SkipFilteredKeyword] != 2 {
		t.Errorf("filtered-keyword skips = %d, want 2", reasons[models.SkipFilteredKeyword])
	}
	if reasons[models.SkipEmptyDescription] != 1 {
		t.Errorf("empty-description skips = %d, want 1", reasons[models.SkipEmptyDescription])
	}
}

func TestAssembleDeduplication(t *testing.T) {
	a := NewAssembler(testConfig())
	seen := make(map[models.DedupKey]struct{})

	fragments := []models.Fragment{
		frag("2024-01-01", "TRANSFER", "1000.00"),
		frag("2024-01-01", "TRANSFER", "1000.00"), // same row via overlapping match
		frag("2024-01-01", "TRANSFER", "2000.00"), // different balance: kept
	}

	result := a.Assemble(fragments, models.AccountHKDCurrent, "bank", &models.ParseState{}, seen)
	if len(result.Transactions) != 2 {
		t.Fatalf("Assemble() kept %d transactions, want 2", len(result.Transactions))
	}
}

func TestAssembleDeduplicationIdempotent(t *testing.T) {
	a := NewAssembler(testConfig())

	fragments := []models.Fragment{
		frag("2024-01-01", "TRANSFER", "1000.00"),
		frag("2024-01-02", "CHEQUE", "900.00"),
		frag("2024-01-01", "TRANSFER", "1000.00"),
	}

	seen := make(map[models.DedupKey]struct{})
	once := a.Assemble(fragments, models.AccountHKDCurrent, "bank", &models.ParseState{}, seen)

	// Re-assembling the deduplicated output with a fresh set yields the
	// same count: deduplication is idempotent.
	var again []models.Fragment
	for _, txn := range once.Transactions {
		again = append(again, models.Fragment{
			Date:        txn.Date,
			Description: txn.Description,
			Balance:     txn.Balance,
		})
	}

	seen2 := make(map[models.DedupKey]struct{})
	twice := a.Assemble(again, models.AccountHKDCurrent, "bank", &models.ParseState{}, seen2)

	if len(twice.Transactions) != len(once.Transactions) {
		t.Errorf("second pass kept %d transactions, first pass %d",
			len(twice.Transactions), len(once.Transactions))
	}
}

func TestAssembleDeduplicationSpansAccountTypes(t *testing.T) {
	a := NewAssembler(testConfig())
	seen := make(map[models.DedupKey]struct{})

	f := frag("2024-01-01", "TRANSFER", "1000.00")
	first := a.Assemble([]models.Fragment{f}, models.AccountHKDCurrent, "bank", &models.ParseState{}, seen)
	second := a.Assemble([]models.Fragment{f}, models.AccountHKDSavings, "bank", &models.ParseState{}, seen)

	// Account type is part of the identity tuple: same row under a
	// different account is not a duplicate.
	if len(first.Transactions) != 1 || len(second.Transactions) != 1 {
		t.Errorf("kept %d and %d transactions, want 1 and 1",
			len(first.Transactions), len(second.Transactions))
	}
}

func TestAssembleCurrencyResolution(t *testing.T) {
	a := NewAssembler(testConfig())

	tests := []struct {
		name    string
		frag    models.Fragment
		account models.AccountType
		state   models.ParseState
		want    models.CurrencyCode
	}{
		{
			name:    "hkd account forces HKD over detected currency",
			frag:    models.Fragment{Description: "X", Currency: "USD"},
			account: models.AccountHKDSavings,
			want:    models.CurrencyHKD,
		},
		{
			name:    "foreign account uses fragment currency",
			frag:    models.Fragment{Description: "X", Currency: "EUR"},
			account: models.AccountForeignSavings,
			want:    "EUR",
		},
		{
			name:    "foreign account falls back to parse state",
			frag:    models.Fragment{Description: "X"},
			account: models.AccountForeignSavings,
			state:   models.ParseState{CurrentCurrency: "GBP"},
			want:    "GBP",
		},
		{
			name:    "foreign account defaults to USD",
			frag:    models.Fragment{Description: "X"},
			account: models.AccountForeignSavings,
			want:    models.CurrencyUSD,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen := make(map[models.DedupKey]struct{})
			result := a.Assemble([]models.Fragment{tt.frag}, tt.account, "bank", &tt.state, seen)
			if len(result.Transactions) != 1 {
				t.Fatalf("Assemble() produced %d transactions, want 1", len(result.Transactions))
			}
			if got := result.Transactions[0].Currency; got != tt.want {
				t.Errorf("currency = %s, want %s", got, tt.want)
			}
		})
	}
}
