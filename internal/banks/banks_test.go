package banks

import (
	"context"
	"testing"

	"bank-statement-extractor/internal/models"
)

func TestRegistryResolvesKnownBanks(t *testing.T) {
	registry := NewRegistry(DefaultConfig())

	tests := []struct {
		bank string
		want string
	}{
		{BankHSBC, BankHSBC},
		{"HSBC", BankHSBC},
		{BankESun, BankESun},
	}

	for _, tt := range tests {
		parser := registry.Resolve(tt.bank)
		if parser == nil {
			t.Fatalf("Resolve(%q) returned nil", tt.bank)
		}
		if parser.BankName() != tt.want {
			t.Errorf("Resolve(%q).BankName() = %q, want %q", tt.bank, parser.BankName(), tt.want)
		}
	}
}

func TestRegistryUnknownBankFallsBack(t *testing.T) {
	registry := NewRegistry(DefaultConfig())

	parser := registry.Resolve("Some Other Bank")
	if parser == nil {
		t.Fatal("Resolve() returned nil for unknown bank")
	}

	txns, report, err := parser.Parse(context.Background(), []models.RawPage{{Number: 1, Text: "anything"}})
	if err != nil {
		t.Fatalf("generic Parse() error = %v", err)
	}
	if len(txns) != 0 {
		t.Errorf("generic Parse() produced %d transactions, want 0", len(txns))
	}
	if report.Pages != 1 {
		t.Errorf("report pages = %d, want 1", report.Pages)
	}
}

func TestESunParserIsPlaceholder(t *testing.T) {
	parser := NewESunParser()

	txns, _, err := parser.Parse(context.Background(), []models.RawPage{{Number: 1}})
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(txns) != 0 {
		t.Errorf("placeholder produced %d transactions, want 0", len(txns))
	}
}

func TestReportSkipCounts(t *testing.T) {
	report := &Report{}
	report.AddSkip(models.Skip{Reason: models.SkipRowError})
	report.AddSkip(models.Skip{Reason: models.SkipRowError})
	report.AddSkip(models.Skip{Reason: models.SkipDuplicate})

	counts := report.SkipCounts()
	if counts[models.SkipRowError] != 2 || counts[models.SkipDuplicate] != 1 {
		t.Errorf("SkipCounts() = %v", counts)
	}
}
