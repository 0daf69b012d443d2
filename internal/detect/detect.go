// Package detect identifies which bank issued a statement by scanning the
// leading pages for bank names, falling back to fuzzy matching and the
// source filename when extraction mangles the text.
package detect

import (
	"path/filepath"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"bank-statement-extractor/internal/banks"
	"bank-statement-extractor/internal/models"
	"bank-statement-extractor/pkg/logger"
)

// Config controls bank detection.
type Config struct {
	// Keywords maps a bank name to the markers that identify it in
	// statement text or filenames.
	Keywords map[string][]string
	// Overrides maps a source filename (base name, case-insensitive) to a
	// bank name, bypassing detection entirely.
	Overrides map[string]string
	// Threshold is the maximum Levenshtein distance accepted for a fuzzy
	// keyword match. Zero disables fuzzy matching.
	Threshold int
	// Pages is how many leading pages to scan. Bank branding sits on the
	// first page; scanning more only risks false positives.
	Pages int
}

// DefaultConfig returns detection settings for the supported banks.
func DefaultConfig() *Config {
	return &Config{
		Keywords: map[string][]string{
			banks.BankHSBC: {"HSBC", "汇丰", "滙豐", "The Hongkong and Shanghai Banking"},
			banks.BankESun: {"E.SUN", "ESUN", "玉山"},
		},
		Overrides: map[string]string{},
		Threshold: 2,
		Pages:     2,
	}
}

// Detector resolves a bank name from statement pages.
type Detector struct {
	config *Config
	log    logger.Logger
}

// NewDetector creates a detector with the given configuration
func NewDetector(config *Config) *Detector {
	if config == nil {
		config = DefaultConfig()
	}
	return &Detector{config: config, log: logger.WithComponent("detect")}
}

// Detect returns the bank name for a statement. Resolution order: filename
// override, exact keyword in the leading pages, fuzzy keyword in the leading
// pages, keyword in the filename. Unrecognized statements map to
// banks.BankUnknown rather than an error so batch runs keep going.
func (d *Detector) Detect(sourceFile string, pages []models.RawPage) string {
	base := filepath.Base(sourceFile)

	if bank, ok := d.lookupOverride(base); ok {
		d.log.WithFields(logger.Fields{"file": base, "bank": bank}).Debug("bank set by filename override")
		return bank
	}

	text := d.leadingText(pages)

	if bank := d.matchExact(text); bank != "" {
		return bank
	}
	if bank := d.matchFuzzy(text); bank != "" {
		d.log.WithFields(logger.Fields{"file": base, "bank": bank}).Debug("bank detected by fuzzy match")
		return bank
	}
	if bank := d.matchExact(base); bank != "" {
		d.log.WithFields(logger.Fields{"file": base, "bank": bank}).Debug("bank detected from filename")
		return bank
	}

	d.log.WithFields(logger.Fields{"file": base}).Warn("could not identify bank")
	return banks.BankUnknown
}

func (d *Detector) lookupOverride(base string) (string, bool) {
	for name, bank := range d.config.Overrides {
		if strings.EqualFold(name, base) {
			return bank, true
		}
	}
	return "", false
}

func (d *Detector) leadingText(pages []models.RawPage) string {
	limit := d.config.Pages
	if limit <= 0 || limit > len(pages) {
		limit = len(pages)
	}
	var sb strings.Builder
	for _, page := range pages[:limit] {
		sb.WriteString(page.Text)
		sb.WriteString("\n")
	}
	return sb.String()
}

func (d *Detector) matchExact(text string) string {
	lower := strings.ToLower(text)
	for bank, keywords := range d.config.Keywords {
		for _, kw := range keywords {
			if strings.Contains(lower, strings.ToLower(kw)) {
				return bank
			}
		}
	}
	return ""
}

// matchFuzzy scans word windows against each keyword, tolerating the small
// character substitutions PDF text extraction introduces. Chinese keywords
// are excluded since edit distance over a few CJK characters matches almost
// anything.
func (d *Detector) matchFuzzy(text string) string {
	if d.config.Threshold <= 0 {
		return ""
	}
	words := strings.Fields(text)
	bestBank := ""
	bestRank := d.config.Threshold + 1
	for bank, keywords := range d.config.Keywords {
		for _, kw := range keywords {
			if !isASCII(kw) {
				continue
			}
			for _, word := range words {
				rank := fuzzy.RankMatchNormalizedFold(kw, word)
				if rank >= 0 && rank < bestRank {
					bestRank = rank
					bestBank = bank
				}
			}
		}
	}
	return bestBank
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > 127 {
			return false
		}
	}
	return true
}
