package detect

import (
	"testing"

	"bank-statement-extractor/internal/banks"
	"bank-statement-extractor/internal/models"
)

func pagesWithText(texts ...string) []models.RawPage {
	pages := make([]models.RawPage, len(texts))
	for i, text := range texts {
		pages[i] = models.RawPage{Number: i + 1, Text: text}
	}
	return pages
}

func TestDetectExactKeyword(t *testing.T) {
	detector := NewDetector(DefaultConfig())

	tests := []struct {
		name string
		text string
		want string
	}{
		{"english name", "HSBC Premier Statement\nAccount Summary", banks.BankHSBC},
		{"chinese name", "汇丰银行有限公司 结单", banks.BankHSBC},
		{"full legal name", "The Hongkong and Shanghai Banking Corporation Limited", banks.BankHSBC},
		{"esun", "E.SUN Commercial Bank statement", banks.BankESun},
		{"case insensitive", "hsbc premier", banks.BankHSBC},
		{"no marker", "Some Credit Union monthly report", banks.BankUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := detector.Detect("statement.pdf", pagesWithText(tt.text))
			if got != tt.want {
				t.Errorf("Detect() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDetectOnlyScansLeadingPages(t *testing.T) {
	detector := NewDetector(DefaultConfig())

	pages := pagesWithText("page one", "page two", "HSBC appears too late")
	if got := detector.Detect("statement.pdf", pages); got != banks.BankUnknown {
		t.Errorf("Detect() = %q, want unknown when marker is past the scan window", got)
	}

	pages = pagesWithText("page one", "HSBC on page two")
	if got := detector.Detect("statement.pdf", pages); got != banks.BankHSBC {
		t.Errorf("Detect() = %q, want HSBC from second page", got)
	}
}

func TestDetectFilenameOverride(t *testing.T) {
	config := DefaultConfig()
	config.Overrides = map[string]string{"weird_scan.pdf": banks.BankESun}
	detector := NewDetector(config)

	got := detector.Detect("/statements/Weird_Scan.pdf", pagesWithText("HSBC everywhere"))
	if got != banks.BankESun {
		t.Errorf("Detect() = %q, override should win over page text", got)
	}
}

func TestDetectFilenameFallback(t *testing.T) {
	detector := NewDetector(DefaultConfig())

	got := detector.Detect("/inbox/hsbc_2024_03.pdf", pagesWithText("garbled scanner output"))
	if got != banks.BankHSBC {
		t.Errorf("Detect() = %q, want HSBC from filename", got)
	}
}

func TestDetectFuzzyKeyword(t *testing.T) {
	detector := NewDetector(DefaultConfig())

	// Extraction inserted a stray hyphen into the name.
	got := detector.Detect("statement.pdf", pagesWithText("HSB-C Premier account summary"))
	if got != banks.BankHSBC {
		t.Errorf("Detect() = %q, want HSBC via fuzzy match", got)
	}
}

func TestDetectEmptyPages(t *testing.T) {
	detector := NewDetector(DefaultConfig())

	if got := detector.Detect("scan.pdf", nil); got != banks.BankUnknown {
		t.Errorf("Detect() = %q, want unknown for empty input", got)
	}
}
