// Package normalize holds the pure text, amount and date normalizers shared
// by the statement parsers. The functions never fail: malformed input
// degrades to a neutral value (empty string, zero amount, original date
// token) so that one bad cell never aborts a row.
package normalize

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	whitespaceRE  = regexp.MustCompile(`\s+`)
	amountCharsRE = regexp.MustCompile(`[^0-9.\-]`)
	amountTokenRE = regexp.MustCompile(`[\d,]+\.\d{2}`)
	dateTokenRE   = regexp.MustCompile(`\d{1,2}\s+(Jan|Feb|Mar|Apr|May|Jun|Jul|Aug|Sep|Oct|Nov|Dec)`)
)

// dateLayouts are tried in order by ParseDate. Single-digit day and month
// layouts also accept zero-padded values.
var dateLayouts = []string{
	"2 Jan 2006",
	"2-Jan-2006",
	"2/1/2006",
	"2-1-2006",
	"2.1.2006",
	"2006/1/2",
	"2006-1-2",
	"2006.1.2",
}

// CleanText collapses runs of whitespace to single spaces and trims the
// result. Empty or whitespace-only input yields an empty string.
func CleanText(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// ParseAmount extracts a monetary amount from a raw cell value. Everything
// except digits, '.' and '-' is stripped first. Placeholder cells ("", "-",
// "--") and anything that still does not parse yield zero rather than an
// error; malformed amounts are ignored, not fatal.
func ParseAmount(s string) decimal.Decimal {
	stripped := amountCharsRE.ReplaceAllString(s, "")
	if stripped == "" || stripped == "-" || stripped == "--" {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(stripped)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseDate normalizes a date string to ISO YYYY-MM-DD form, trying each
// supported layout in order. If no layout matches, the cleaned input is
// returned unchanged; callers must treat a non-ISO result as "unparsed,
// preserve as-is". Re-parsing an already-ISO string is a no-op.
func ParseDate(s string) string {
	cleaned := CleanText(s)
	if cleaned == "" {
		return cleaned
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, cleaned); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return cleaned
}

// FindDateToken locates the first day-plus-short-month token ("5 Jan",
// "27 Dec") in a line of statement text.
func FindDateToken(s string) (string, bool) {
	token := dateTokenRE.FindString(s)
	return token, token != ""
}

// HasDateToken reports whether the text contains a date token
func HasDateToken(s string) bool {
	return dateTokenRE.MatchString(s)
}

// StripDateToken removes the first date token and returns the cleaned
// remainder, which is usually the transaction description.
func StripDateToken(s string) string {
	loc := dateTokenRE.FindStringIndex(s)
	if loc == nil {
		return CleanText(s)
	}
	return CleanText(s[:loc[0]] + " " + s[loc[1]:])
}

// FindAmountTokens returns all formatted amount tokens ("1,234.56") in
// order of appearance.
func FindAmountTokens(s string) []string {
	return amountTokenRE.FindAllString(s, -1)
}

// HasAmountToken reports whether the text contains a formatted amount
func HasAmountToken(s string) bool {
	return amountTokenRE.MatchString(s)
}

// ParseAmountTokens extracts and parses every amount token in the text
func ParseAmountTokens(s string) []decimal.Decimal {
	tokens := FindAmountTokens(s)
	amounts := make([]decimal.Decimal, 0, len(tokens))
	for _, token := range tokens {
		amounts = append(amounts, ParseAmount(token))
	}
	return amounts
}

// StripAmountTokens removes all amount tokens and returns the cleaned rest
func StripAmountTokens(s string) string {
	return CleanText(amountTokenRE.ReplaceAllString(s, " "))
}

// ContainsAny reports whether the lowercased text contains any of the
// keywords (case-insensitive substring match).
func ContainsAny(s string, keywords []string) bool {
	lower := strings.ToLower(s)
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}
