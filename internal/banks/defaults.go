package banks

import (
	"bank-statement-extractor/internal/assemble"
	"bank-statement-extractor/internal/models"
	"bank-statement-extractor/internal/reconstruct"
	"bank-statement-extractor/internal/sections"
	"bank-statement-extractor/internal/tables"
)

// DefaultConfig returns the engine configuration tuned for the observed
// statement formats. Keyword lists carry both English and Chinese variants
// because the statements mix the two freely.
func DefaultConfig() *Config {
	return &Config{
		Sections: &sections.Config{
			Keywords: map[models.AccountType][]string{
				models.AccountHKDCurrent:     {"HKD Current", "港元往来", "港币往来"},
				models.AccountHKDSavings:     {"HKD Savings", "港元储蓄", "港币储蓄"},
				models.AccountForeignSavings: {"Foreign Currency Savings", "外币储蓄"},
			},
			Terminators: []string{
				"Total No. of Deposits",
				"Total No. of Withdrawals",
				"存入总次数",
				"支出总次数",
			},
		},
		Tables: &tables.Config{
			HeaderKeywords: []string{
				"date", "transaction", "details", "deposit", "withdrawal", "balance",
				"日期", "描述", "存入", "支出", "结余", "货币",
			},
			RoleLabels: map[models.ColumnRole][]string{
				models.RoleDate:        {"date", "日期"},
				models.RoleDescription: {"transaction details", "details", "transaction", "description", "描述", "摘要"},
				models.RoleDeposit:     {"deposit", "credit", "存入"},
				models.RoleWithdrawal:  {"withdrawal", "debit", "支出"},
				models.RoleBalance:     {"balance", "结余", "余额"},
				models.RoleCurrency:    {"currency", "货币", "币种"},
				models.RoleRemark:      {"remark", "备注"},
			},
			IndicatorKeywords: []string{
				"date", "deposit", "withdrawal", "balance",
				"日期", "存入", "支出", "结余",
			},
			AccountKeywords: map[models.AccountType][]string{
				models.AccountHKDCurrent:     {"HKD Current", "港元往来", "港币往来"},
				models.AccountHKDSavings:     {"HKD Savings", "港元储蓄", "港币储蓄"},
				models.AccountForeignSavings: {"Foreign Currency Savings", "外币储蓄"},
			},
		},
		Reconstruct: &reconstruct.Config{
			CurrencyCodes:   []string{"USD", "EUR", "GBP", "AUD", "CAD", "JPY", "CHF", "NZD", "SGD"},
			DepositKeywords: []string{"deposit", "credit", "存入", "利息"},
			ContinuationKeywords: []string{
				"transfer", "balance", "interest", "deposit", "withdrawal",
				"payment", "cheque", "autopay", "remittance",
			},
			BroughtForwardMarkers: []string{"B/F BALANCE", "承前转结"},
			CreditInterestMarkers: []string{"CREDIT INTEREST", "利息收入"},
			BroughtForwardLabel:   "B/F BALANCE 承前转结",
			CreditInterestLabel:   "CREDIT INTEREST 利息收入",
		},
		Assemble: &assemble.Config{
			FilterKeywords: []string{
				"Opening Balance", "Closing Balance",
				"账户结余", "期初余额", "期末余额",
				"Total No. of Deposits", "Total No. of Withdrawals",
				"存入总次数", "支出总次数",
				"Total Deposit Amount", "Total Withdrawal Amount",
				"存入总金额", "支出总金额",
			},
			FixedCurrency: map[models.AccountType]models.CurrencyCode{
				models.AccountHKDCurrent: models.CurrencyHKD,
				models.AccountHKDSavings: models.CurrencyHKD,
			},
			DefaultCurrency: models.CurrencyUSD,
		},
	}
}
