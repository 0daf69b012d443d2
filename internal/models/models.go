package models

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// AccountType identifies the logical sub-account a statement section belongs
// to. A single statement commonly interleaves several of these across pages.
type AccountType string

const (
	// AccountHKDCurrent represents an HKD current account section
	AccountHKDCurrent AccountType = "HKD_CURRENT"
	// AccountHKDSavings represents an HKD savings account section
	AccountHKDSavings AccountType = "HKD_SAVINGS"
	// AccountForeignSavings represents a foreign-currency savings section
	AccountForeignSavings AccountType = "FOREIGN_SAVINGS"
	// AccountUnknown is used when a table matches no known section
	AccountUnknown AccountType = "UNKNOWN"
)

// String returns the string representation of AccountType
func (a AccountType) String() string {
	return string(a)
}

// IsValid checks if the account type is one of the known values
func (a AccountType) IsValid() bool {
	switch a {
	case AccountHKDCurrent, AccountHKDSavings, AccountForeignSavings, AccountUnknown:
		return true
	}
	return false
}

// Label returns the display label used for export grouping (sheet names)
func (a AccountType) Label() string {
	switch a {
	case AccountHKDCurrent:
		return "HKD Current"
	case AccountHKDSavings:
		return "HKD Savings"
	case AccountForeignSavings:
		return "Foreign Currency Savings"
	default:
		return "Unclassified"
	}
}

// CurrencyCode is an ISO-4217 alpha currency code
type CurrencyCode string

const (
	CurrencyHKD CurrencyCode = "HKD"
	CurrencyUSD CurrencyCode = "USD"
)

// RawPage is one page of collaborator-extracted PDF content: the plain page
// text plus any tables recovered from it.
type RawPage struct {
	Number int
	Text   string
	Tables []RawTable
}

// RawTable is a rectangular grid of cells. A cell may contain embedded
// newlines when stream-mode extraction merges adjacent visual lines.
type RawTable struct {
	Rows [][]string
}

// Width returns the cell count of the widest row
func (t RawTable) Width() int {
	w := 0
	for _, row := range t.Rows {
		if len(row) > w {
			w = len(row)
		}
	}
	return w
}

// Normalize pads short rows with empty cells so every row has the same width
func (t *RawTable) Normalize() {
	w := t.Width()
	for i, row := range t.Rows {
		for len(row) < w {
			row = append(row, "")
		}
		t.Rows[i] = row
	}
}

// Flatten joins all cells into one lowercased string for keyword checks
func (t RawTable) Flatten() string {
	var sb strings.Builder
	for _, row := range t.Rows {
		for _, cell := range row {
			sb.WriteString(cell)
			sb.WriteString(" ")
		}
	}
	return strings.ToLower(sb.String())
}

// AccountSection marks the text span of one account-type keyword match on a
// page. Sections are per-page and transient; tagging, not interval stitching,
// merges same-type sections later.
type AccountSection struct {
	Type    AccountType
	Page    int
	Start   int
	End     int
	Keyword string
}

// Span returns the section's slice of the page text
func (s AccountSection) Span(pageText string) string {
	if s.Start < 0 || s.End > len(pageText) || s.Start > s.End {
		return ""
	}
	return pageText[s.Start:s.End]
}

// ColumnRole is a logical column role in a transaction table
type ColumnRole string

const (
	RoleDate        ColumnRole = "date"
	RoleDescription ColumnRole = "description"
	RoleDeposit     ColumnRole = "deposit"
	RoleWithdrawal  ColumnRole = "withdrawal"
	RoleBalance     ColumnRole = "balance"
	RoleCurrency    ColumnRole = "currency"
	RoleRemark      ColumnRole = "remark"
)

// ColumnMap maps logical roles to physical column indexes in one RawTable,
// together with the header row the mapping was derived from.
type ColumnMap struct {
	HeaderRow int
	Columns   map[ColumnRole]int
}

// Index returns the physical column index for a role
func (m ColumnMap) Index(role ColumnRole) (int, bool) {
	idx, ok := m.Columns[role]
	return idx, ok
}

// Has reports whether the role resolved to a column
func (m ColumnMap) Has(role ColumnRole) bool {
	_, ok := m.Columns[role]
	return ok
}

// IsTransactionTable reports whether the mapping is usable: DATE plus at
// least one of DEPOSIT/WITHDRAWAL/BALANCE must have resolved.
func (m ColumnMap) IsTransactionTable() bool {
	if !m.Has(RoleDate) {
		return false
	}
	return m.Has(RoleDeposit) || m.Has(RoleWithdrawal) || m.Has(RoleBalance)
}

// ParseState carries date/currency context across fragments within one
// table-parsing pass. It is initialized fresh per pass and never persisted.
type ParseState struct {
	CurrentDate     string
	CurrentCurrency CurrencyCode
}

// Fragment is an intermediate transaction candidate produced by row
// reconstruction, consumed immediately by the assembler. Zero amounts mean
// "absent".
type Fragment struct {
	Date        string
	Description string
	Deposit     decimal.Decimal
	Withdrawal  decimal.Decimal
	Balance     decimal.Decimal
	Currency    CurrencyCode
}

// SkipReason classifies why a row or table was skipped during parsing.
// Skips are expected outcomes, not errors; they are aggregated for
// diagnostics.
type SkipReason string

const (
	SkipNotTransactionTable SkipReason = "not_transaction_table"
	SkipNoHeaderRow         SkipReason = "no_header_row"
	SkipMissingColumns      SkipReason = "missing_columns"
	SkipNoDateToken         SkipReason = "no_date_token"
	SkipEmptyDescription    SkipReason = "empty_description"
	SkipFilteredKeyword     SkipReason = "filtered_keyword"
	SkipDuplicate           SkipReason = "duplicate"
	SkipRowError            SkipReason = "row_error"
)

// Skip records one skipped row or table with enough context to diagnose it
type Skip struct {
	Reason SkipReason
	Page   int
	Row    int
	Detail string
}

// String returns a string representation of the Skip
func (s Skip) String() string {
	return fmt.Sprintf("page %d row %d: %s (%s)", s.Page, s.Row, s.Reason, s.Detail)
}

// Transaction is the final exported record. Created once by the assembler
// and never mutated afterwards.
type Transaction struct {
	AccountType AccountType     `json:"account_type" csv:"account_type"`
	BankName    string          `json:"bank_name" csv:"bank_name"`
	Date        string          `json:"date" csv:"date"`
	Description string          `json:"description" csv:"description"`
	Currency    CurrencyCode    `json:"currency" csv:"currency"`
	Deposit     decimal.Decimal `json:"deposit_amount" csv:"deposit_amount"`
	Withdrawal  decimal.Decimal `json:"withdrawal_amount" csv:"withdrawal_amount"`
	Balance     decimal.Decimal `json:"balance" csv:"balance"`
	SourceFile  string          `json:"source_file" csv:"source_file"`
}

// DedupKey is the identity tuple for de-duplication: two transactions
// sharing it are considered the same physical row seen twice.
type DedupKey struct {
	Date        string
	Description string
	Balance     string
	AccountType AccountType
}

// Key returns the de-duplication identity of the transaction
func (t *Transaction) Key() DedupKey {
	return DedupKey{
		Date:        t.Date,
		Description: t.Description,
		Balance:     t.Balance.String(),
		AccountType: t.AccountType,
	}
}

// Validate performs basic validation on the Transaction
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("transaction description cannot be empty")
	}

	if !t.AccountType.IsValid() {
		return fmt.Errorf("invalid account type: %s", t.AccountType)
	}

	if t.Deposit.IsNegative() || t.Withdrawal.IsNegative() {
		return fmt.Errorf("deposit and withdrawal amounts cannot be negative")
	}

	return nil
}

// HasISODate reports whether the date normalized to YYYY-MM-DD form.
// A non-ISO date means the normalizer preserved the original token as-is.
func (t *Transaction) HasISODate() bool {
	if len(t.Date) != 10 {
		return false
	}
	return t.Date[4] == '-' && t.Date[7] == '-'
}

// HasAmount reports whether any monetary field carries a value
func (t *Transaction) HasAmount() bool {
	return !t.Deposit.IsZero() || !t.Withdrawal.IsZero() || !t.Balance.IsZero()
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{Account: %s, Date: %s, Desc: %s, Currency: %s, Deposit: %s, Withdrawal: %s, Balance: %s}",
		t.AccountType, t.Date, t.Description, t.Currency,
		t.Deposit.String(), t.Withdrawal.String(), t.Balance.String())
}

// Equals compares two Transaction instances for equality
func (t *Transaction) Equals(other *Transaction) bool {
	if other == nil {
		return false
	}

	return t.AccountType == other.AccountType &&
		t.BankName == other.BankName &&
		t.Date == other.Date &&
		t.Description == other.Description &&
		t.Currency == other.Currency &&
		t.Deposit.Equal(other.Deposit) &&
		t.Withdrawal.Equal(other.Withdrawal) &&
		t.Balance.Equal(other.Balance)
}
