package reconstruct

import (
	"testing"

	"bank-statement-extractor/internal/models"
)

func testConfig() *Config {
	return &Config{
		CurrencyCodes:   []string{"USD", "EUR", "GBP", "AUD", "CAD", "JPY", "CHF", "NZD", "SGD"},
		DepositKeywords: []string{"deposit", "credit", "存入", "利息"},
		ContinuationKeywords: []string{
			"transfer", "balance", "interest", "deposit", "withdrawal", "payment", "cheque",
		},
		BroughtForwardMarkers: []string{"B/F BALANCE", "承前转结"},
		CreditInterestMarkers: []string{"CREDIT INTEREST", "利息收入"},
		BroughtForwardLabel:   "B/F BALANCE 承前转结",
		CreditInterestLabel:   "CREDIT INTEREST 利息收入",
	}
}

func fiveColumnMap() models.ColumnMap {
	return models.ColumnMap{
		HeaderRow: 0,
		Columns: map[models.ColumnRole]int{
			models.RoleDate:        0,
			models.RoleDescription: 1,
			models.RoleDeposit:     2,
			models.RoleWithdrawal:  3,
			models.RoleBalance:     4,
		},
	}
}

func header() []string {
	return []string{"Date", "Details", "Deposit", "Withdrawal", "Balance"}
}

func TestReconstructSingleLineRows(t *testing.T) {
	r := NewReconstructor(testConfig())
	table := models.RawTable{Rows: [][]string{
		header(),
		{"01 Jan", "OPENING TRANSFER", "1,000.00", "", "1,000.00"},
		{"02 Jan", "ATM WITHDRAWAL", "", "200.00", "800.00"},
	}}

	state := models.ParseState{}
	frags, skips := r.Reconstruct(1, table, fiveColumnMap(), &state)

	if len(frags) != 2 {
		t.Fatalf("Reconstruct() emitted %d fragments, want 2 (skips: %v)", len(frags), skips)
	}

	if frags[0].Deposit.String() != "1000" || frags[0].Balance.String() != "1000" {
		t.Errorf("fragment 0 amounts = deposit %s balance %s", frags[0].Deposit, frags[0].Balance)
	}
	if frags[1].Withdrawal.String() != "200" || frags[1].Balance.String() != "800" {
		t.Errorf("fragment 1 amounts = withdrawal %s balance %s", frags[1].Withdrawal, frags[1].Balance)
	}
	if frags[1].Description != "ATM WITHDRAWAL" {
		t.Errorf("fragment 1 description = %q", frags[1].Description)
	}
}

func TestReconstructMultilineCellSplitsInOrder(t *testing.T) {
	r := NewReconstructor(testConfig())
	table := models.RawTable{Rows: [][]string{
		header(),
		{"", "01 Jan\nB/F BALANCE", "", "", "1,000.00\n1,050.00"},
	}}

	state := models.ParseState{}
	frags, _ := r.Reconstruct(1, table, fiveColumnMap(), &state)

	if len(frags) != 2 {
		t.Fatalf("Reconstruct() emitted %d fragments, want 2", len(frags))
	}
	if frags[0].Balance.String() != "1050" && frags[0].Balance.String() != "1000" {
		t.Fatalf("unexpected first balance %s", frags[0].Balance)
	}
	// Order must follow line order: 1000.00 first, 1050.00 second.
	if frags[0].Balance.String() != "1000" {
		t.Errorf("first fragment balance = %s, want 1000", frags[0].Balance)
	}
	if frags[1].Balance.String() != "1050" {
		t.Errorf("second fragment balance = %s, want 1050", frags[1].Balance)
	}
	// The second line has no date token of its own: it inherits the first's.
	if frags[1].Date != frags[0].Date {
		t.Errorf("second fragment date = %q, want inherited %q", frags[1].Date, frags[0].Date)
	}
}

func TestReconstructCurrencyInheritance(t *testing.T) {
	r := NewReconstructor(testConfig())
	table := models.RawTable{Rows: [][]string{
		header(),
		{"", "USD\n01 Jan DEPOSIT 100.00 500.00\n02 Jan WITHDRAWAL 50.00 450.00", "", "", ""},
	}}

	state := models.ParseState{}
	frags, _ := r.Reconstruct(1, table, fiveColumnMap(), &state)

	if len(frags) != 2 {
		t.Fatalf("Reconstruct() emitted %d fragments, want 2", len(frags))
	}
	for i, frag := range frags {
		if frag.Currency != "USD" {
			t.Errorf("fragment %d currency = %q, want USD", i, frag.Currency)
		}
	}
	if frags[0].Deposit.String() != "100" || frags[0].Balance.String() != "500" {
		t.Errorf("fragment 0 = deposit %s balance %s, want 100/500", frags[0].Deposit, frags[0].Balance)
	}
	if frags[1].Withdrawal.String() != "50" || frags[1].Balance.String() != "450" {
		t.Errorf("fragment 1 = withdrawal %s balance %s, want 50/450", frags[1].Withdrawal, frags[1].Balance)
	}
	if state.CurrentCurrency != "USD" {
		t.Errorf("state currency = %q, want USD", state.CurrentCurrency)
	}
}

func TestReconstructCompositeRow(t *testing.T) {
	r := NewReconstructor(testConfig())
	table := models.RawTable{Rows: [][]string{
		header(),
		{"01 Jan", "B/F BALANCE 承前转结 CREDIT INTEREST 利息收入", "12.34", "", "1,000.00 1,012.34"},
	}}

	state := models.ParseState{}
	frags, _ := r.Reconstruct(1, table, fiveColumnMap(), &state)

	if len(frags) != 2 {
		t.Fatalf("composite row emitted %d fragments, want 2", len(frags))
	}

	bf, ci := frags[0], frags[1]
	if bf.Balance.String() != "1000" {
		t.Errorf("brought-forward balance = %s, want 1000", bf.Balance)
	}
	if !bf.Deposit.IsZero() {
		t.Errorf("brought-forward fragment has deposit %s, want none", bf.Deposit)
	}
	if ci.Deposit.String() != "12.34" {
		t.Errorf("interest deposit = %s, want 12.34", ci.Deposit)
	}
	if ci.Balance.String() != "1012.34" {
		t.Errorf("interest balance = %s, want 1012.34", ci.Balance)
	}
}

func TestReconstructDateInheritanceAcrossRows(t *testing.T) {
	r := NewReconstructor(testConfig())
	table := models.RawTable{Rows: [][]string{
		header(),
		{"03 Feb", "TRANSFER IN", "100.00", "", "600.00"},
		{"", "TRANSFER OUT", "", "50.00", "550.00"},
	}}

	state := models.ParseState{}
	frags, _ := r.Reconstruct(1, table, fiveColumnMap(), &state)

	if len(frags) != 2 {
		t.Fatalf("Reconstruct() emitted %d fragments, want 2", len(frags))
	}
	if frags[1].Date != frags[0].Date {
		t.Errorf("second row date = %q, want inherited %q", frags[1].Date, frags[0].Date)
	}
}

func TestReconstructSkipsRowsWithoutDateOrAmounts(t *testing.T) {
	r := NewReconstructor(testConfig())
	table := models.RawTable{Rows: [][]string{
		header(),
		{"", "see overleaf for conditions", "", "", ""},
		{"02 Jan", "TRANSFER", "500.00", "", "1,500.00"},
	}}

	state := models.ParseState{}
	frags, skips := r.Reconstruct(1, table, fiveColumnMap(), &state)

	if len(frags) != 1 {
		t.Fatalf("Reconstruct() emitted %d fragments, want 1", len(frags))
	}
	if len(skips) != 1 {
		t.Fatalf("Reconstruct() recorded %d skips, want 1", len(skips))
	}
	if skips[0].Reason != models.SkipNoDateToken {
		t.Errorf("skip reason = %s, want %s", skips[0].Reason, models.SkipNoDateToken)
	}
}

func TestReconstructCurrencyMarkerRowConsumed(t *testing.T) {
	r := NewReconstructor(testConfig())
	table := models.RawTable{Rows: [][]string{
		header(),
		{"", "USD", "", "", ""},
		{"05 Mar", "TT DEPOSIT", "250.00", "", "250.00"},
	}}

	state := models.ParseState{}
	frags, _ := r.Reconstruct(1, table, fiveColumnMap(), &state)

	if len(frags) != 1 {
		t.Fatalf("Reconstruct() emitted %d fragments, want 1", len(frags))
	}
	if frags[0].Currency != "USD" {
		t.Errorf("fragment currency = %q, want USD (inherited from marker row)", frags[0].Currency)
	}
}

func TestReconstructScrapedAmountPolarity(t *testing.T) {
	r := NewReconstructor(testConfig())
	// No amounts in dedicated columns: scraped from text with polarity.
	cmap := models.ColumnMap{
		HeaderRow: 0,
		Columns: map[models.ColumnRole]int{
			models.RoleDate:        0,
			models.RoleDescription: 1,
			models.RoleBalance:     2,
		},
	}
	table := models.RawTable{Rows: [][]string{
		{"Date", "Details", "Balance"},
		{"01 Jan", "CASH DEPOSIT 存入 300.00 800.00", ""},
		{"02 Jan", "CHEQUE PAID 100.00 700.00", ""},
	}}

	state := models.ParseState{}
	frags, _ := r.Reconstruct(1, table, cmap, &state)

	if len(frags) != 2 {
		t.Fatalf("Reconstruct() emitted %d fragments, want 2", len(frags))
	}
	if frags[0].Deposit.String() != "300" || !frags[0].Withdrawal.IsZero() {
		t.Errorf("deposit-polarity row = deposit %s withdrawal %s", frags[0].Deposit, frags[0].Withdrawal)
	}
	if frags[1].Withdrawal.String() != "100" || !frags[1].Deposit.IsZero() {
		t.Errorf("withdrawal-polarity row = deposit %s withdrawal %s", frags[1].Deposit, frags[1].Withdrawal)
	}
	if frags[0].Balance.String() != "800" || frags[1].Balance.String() != "700" {
		t.Errorf("balances = %s, %s", frags[0].Balance, frags[1].Balance)
	}
}
