// Package sections implements account-section detection: scanning a page's
// extracted text for account-type keyword markers and computing the text
// span each logical sub-account owns.
package sections

import (
	"sort"
	"strings"

	"bank-statement-extractor/internal/models"
	"bank-statement-extractor/pkg/logger"

	"github.com/cloudflare/ahocorasick"
)

// Config holds the keyword sets that drive section detection. Keywords map
// each account type to its marker phrases (English and Chinese variants);
// Terminators end a section early (e.g. the totals footer of a table).
type Config struct {
	Keywords    map[models.AccountType][]string
	Terminators []string
}

// scanOrder fixes the iteration order over the keyword map so the matcher's
// pattern indexes are deterministic.
var scanOrder = []models.AccountType{
	models.AccountHKDCurrent,
	models.AccountHKDSavings,
	models.AccountForeignSavings,
}

// Locator finds account sections in page text. All keywords and terminators
// are compiled into a single Aho-Corasick matcher so each page is
// pre-screened in one pass regardless of how many patterns are configured.
type Locator struct {
	config   *Config
	matcher  *ahocorasick.Matcher
	patterns []string
	owners   []models.AccountType // owner per pattern; terminators use AccountUnknown
	log      logger.Logger
}

// NewLocator builds a Locator from the configured keyword sets
func NewLocator(config *Config) *Locator {
	var patterns []string
	var owners []models.AccountType

	for _, account := range scanOrder {
		for _, kw := range config.Keywords[account] {
			if kw == "" {
				continue
			}
			patterns = append(patterns, kw)
			owners = append(owners, account)
		}
	}
	for _, term := range config.Terminators {
		if term == "" {
			continue
		}
		patterns = append(patterns, term)
		owners = append(owners, models.AccountUnknown)
	}

	return &Locator{
		config:   config,
		matcher:  ahocorasick.NewStringMatcher(patterns),
		patterns: patterns,
		owners:   owners,
		log:      logger.WithComponent("sections"),
	}
}

// marker is one keyword occurrence in the page text
type marker struct {
	pos        int
	length     int
	account    models.AccountType
	terminator bool
	keyword    string
}

// FindSections returns one AccountSection per account-type keyword
// occurrence on the page, in page order. A section ends at the earliest of:
// the next occurrence of a different account type's keyword, a terminator
// phrase, or end of page text. Pages with no keyword yield zero sections
// and are skipped by the pipeline.
func (l *Locator) FindSections(page int, text string) []models.AccountSection {
	if text == "" {
		return nil
	}

	// One multi-pattern pass tells us which keywords appear at all; only
	// those are then position-scanned.
	hits := l.matcher.Match([]byte(text))
	if len(hits) == 0 {
		l.log.WithFields(logger.Fields{"page": page}).Debug("no account keywords on page")
		return nil
	}

	var markers []marker
	for _, idx := range hits {
		pattern := l.patterns[idx]
		owner := l.owners[idx]
		for _, pos := range allOccurrences(text, pattern) {
			markers = append(markers, marker{
				pos:        pos,
				length:     len(pattern),
				account:    owner,
				terminator: owner == models.AccountUnknown,
				keyword:    pattern,
			})
		}
	}

	sort.Slice(markers, func(i, j int) bool { return markers[i].pos < markers[j].pos })

	var found []models.AccountSection
	for i, m := range markers {
		if m.terminator {
			continue
		}

		end := len(text)
		for _, next := range markers[i+1:] {
			if next.terminator || next.account != m.account {
				end = next.pos
				break
			}
		}

		found = append(found, models.AccountSection{
			Type:    m.account,
			Page:    page,
			Start:   m.pos,
			End:     end,
			Keyword: m.keyword,
		})
	}

	l.log.WithFields(logger.Fields{
		"page":     page,
		"sections": len(found),
	}).Debug("located account sections")

	return found
}

// allOccurrences returns every byte offset of pattern in text
func allOccurrences(text, pattern string) []int {
	var positions []int
	offset := 0
	for {
		idx := strings.Index(text[offset:], pattern)
		if idx < 0 {
			return positions
		}
		positions = append(positions, offset+idx)
		offset += idx + len(pattern)
	}
}
