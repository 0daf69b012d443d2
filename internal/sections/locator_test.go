package sections

import (
	"strings"
	"testing"

	"bank-statement-extractor/internal/models"
)

func testConfig() *Config {
	return &Config{
		Keywords: map[models.AccountType][]string{
			models.AccountHKDCurrent:     {"HKD Current", "港元往来", "港币往来"},
			models.AccountHKDSavings:     {"HKD Savings", "港元储蓄", "港币储蓄"},
			models.AccountForeignSavings: {"Foreign Currency Savings", "外币储蓄"},
		},
		Terminators: []string{"Total No. of Deposits", "存入总次数"},
	}
}

func TestFindSectionsSingleKeyword(t *testing.T) {
	locator := NewLocator(testConfig())
	text := "statement header\nHKD Current\n01 Jan TRANSFER 1,000.00\nfooter"

	found := locator.FindSections(1, text)
	if len(found) != 1 {
		t.Fatalf("FindSections() returned %d sections, want 1", len(found))
	}

	s := found[0]
	if s.Type != models.AccountHKDCurrent {
		t.Errorf("section type = %s, want %s", s.Type, models.AccountHKDCurrent)
	}
	if s.Page != 1 {
		t.Errorf("section page = %d, want 1", s.Page)
	}
	if s.End != len(text) {
		t.Errorf("section end = %d, want end of text %d", s.End, len(text))
	}
}

func TestFindSectionsBoundaryAtNextAccountType(t *testing.T) {
	locator := NewLocator(testConfig())
	text := "港币往来\n01 Jan A 1,000.00\n港币储蓄\n02 Jan B 2,000.00"

	found := locator.FindSections(1, text)
	if len(found) != 2 {
		t.Fatalf("FindSections() returned %d sections, want 2", len(found))
	}

	current, savings := found[0], found[1]
	if current.Type != models.AccountHKDCurrent || savings.Type != models.AccountHKDSavings {
		t.Fatalf("unexpected section types %s, %s", current.Type, savings.Type)
	}

	// The current-account section must end where the savings keyword starts.
	if current.End != savings.Start {
		t.Errorf("current section end = %d, want %d", current.End, savings.Start)
	}

	span := current.Span(text)
	if !contains(span, "01 Jan A") || contains(span, "02 Jan B") {
		t.Errorf("current section span leaks into savings section: %q", span)
	}
}

func TestFindSectionsBoundaryAtTerminator(t *testing.T) {
	locator := NewLocator(testConfig())
	text := "HKD Savings\n01 Jan INTEREST 5.00\nTotal No. of Deposits 3\ntrailing boilerplate"

	found := locator.FindSections(2, text)
	if len(found) != 1 {
		t.Fatalf("FindSections() returned %d sections, want 1", len(found))
	}

	span := found[0].Span(text)
	if contains(span, "trailing boilerplate") {
		t.Errorf("section span extends past terminator: %q", span)
	}
	if !contains(span, "01 Jan INTEREST") {
		t.Errorf("section span missing transaction line: %q", span)
	}
}

func TestFindSectionsRepeatedSameType(t *testing.T) {
	// Same-type matches are independent sections, never merged here.
	locator := NewLocator(testConfig())
	text := "HKD Current\nrows\nHKD Current\nmore rows"

	found := locator.FindSections(1, text)
	if len(found) != 2 {
		t.Fatalf("FindSections() returned %d sections, want 2", len(found))
	}
	for _, s := range found {
		if s.Type != models.AccountHKDCurrent {
			t.Errorf("section type = %s, want %s", s.Type, models.AccountHKDCurrent)
		}
	}
	// A same-type keyword does not end the earlier section.
	if found[0].End != len(text) {
		t.Errorf("first section end = %d, want %d", found[0].End, len(text))
	}
}

func TestFindSectionsNoKeywords(t *testing.T) {
	locator := NewLocator(testConfig())

	found := locator.FindSections(3, "fee schedule\nno account markers here")
	if len(found) != 0 {
		t.Errorf("FindSections() returned %d sections for keyword-free page, want 0", len(found))
	}

	if found := locator.FindSections(4, ""); len(found) != 0 {
		t.Errorf("FindSections() returned %d sections for empty page, want 0", len(found))
	}
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}
