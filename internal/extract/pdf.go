// Package extract turns statement PDFs into pages of raw text and
// loosely-structured tables. It tries several extraction strategies because
// bank PDFs vary wildly in how their text streams are encoded.
package extract

import (
	"io"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ledongthuc/pdf"

	"bank-statement-extractor/internal/models"
	apperrors "bank-statement-extractor/pkg/errors"
	"bank-statement-extractor/pkg/logger"
)

// PageSource yields the pages of a statement document.
type PageSource interface {
	ReadPages(path string) ([]models.RawPage, error)
}

// PDFSource reads statement pages with the ledongthuc/pdf library, falling
// through row-based, coordinate-based and plain-text extraction until one of
// them produces readable output.
type PDFSource struct {
	log logger.Logger
}

// NewPDFSource creates a PDF page source
func NewPDFSource() *PDFSource {
	return &PDFSource{log: logger.WithComponent("extract")}
}

// ReadPages extracts per-page text and the tables embedded in it.
func (s *PDFSource) ReadPages(path string) ([]models.RawPage, error) {
	texts, err := s.extractText(path)
	if err != nil {
		return nil, err
	}

	pages := make([]models.RawPage, len(texts))
	for i, text := range texts {
		pages[i] = models.RawPage{
			Number: i + 1,
			Text:   text,
			Tables: TablesFromText(text),
		}
	}

	s.log.WithFields(logger.Fields{"file": path, "pages": len(pages)}).Debug("PDF text extracted")
	return pages, nil
}

// extractText runs the extraction methods in order of layout fidelity. The
// library panics on some malformed PDFs, hence the recover guard.
func (s *PDFSource) extractText(path string) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = apperrors.LibraryCrashError(path, r)
		}
	}()

	f, r, openErr := pdf.Open(path)
	if openErr != nil {
		return nil, apperrors.FileError(apperrors.CodeFileCorrupted, path, openErr)
	}
	defer f.Close()

	numPages := r.NumPage()
	if numPages == 0 {
		return nil, apperrors.EmptyDocumentError(path)
	}

	pages = extractByRow(r, numPages)
	if IsReadableText(pages) {
		return pages, nil
	}

	pages = extractByContent(r, numPages)
	if IsReadableText(pages) {
		return pages, nil
	}

	plain := extractByReaderPlainText(r)
	if IsReadableText([]string{plain}) {
		return []string{plain}, nil
	}

	return nil, apperrors.UnreadableTextError(path, nil)
}

// extractByRow uses GetTextByRow, which preserves line structure best. Wide
// horizontal gaps between words become double spaces so downstream column
// splitting can recover table cells.
func extractByRow(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		rows, err := page.GetTextByRow()
		if err != nil {
			continue
		}
		var lines []string
		for _, row := range rows {
			var sb strings.Builder
			var prevX float64
			for j, word := range row.Content {
				if j > 0 {
					if word.X-prevX > 15 {
						sb.WriteString("   ")
					} else {
						sb.WriteString(" ")
					}
				}
				sb.WriteString(word.S)
				prevX = word.X
			}
			line := strings.TrimSpace(sb.String())
			if line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// extractByContent reconstructs rows from raw text objects by grouping on Y
// and sorting on X. PDF Y runs bottom-to-top, so rows sort descending.
func extractByContent(r *pdf.Reader, numPages int) []string {
	var pages []string
	for i := 1; i <= numPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}
		content := page.Content()
		if len(content.Text) == 0 {
			continue
		}

		type textItem struct {
			x float64
			s string
		}
		rowMap := make(map[int][]textItem)
		for _, t := range content.Text {
			if strings.TrimSpace(t.S) == "" {
				continue
			}
			yKey := int(math.Round(t.Y))
			rowMap[yKey] = append(rowMap[yKey], textItem{x: t.X, s: t.S})
		}

		yKeys := make([]int, 0, len(rowMap))
		for y := range rowMap {
			yKeys = append(yKeys, y)
		}
		sort.Sort(sort.Reverse(sort.IntSlice(yKeys)))

		var lines []string
		for _, y := range yKeys {
			items := rowMap[y]
			sort.Slice(items, func(a, b int) bool {
				return items[a].x < items[b].x
			})

			var sb strings.Builder
			var prevX float64
			for j, item := range items {
				if j > 0 {
					if item.x-prevX > 15 {
						sb.WriteString("   ")
					} else {
						sb.WriteString(" ")
					}
				}
				sb.WriteString(item.s)
				prevX = item.x
			}
			line := strings.TrimSpace(sb.String())
			if line != "" {
				lines = append(lines, line)
			}
		}
		pages = append(pages, strings.Join(lines, "\n"))
	}
	return pages
}

// extractByReaderPlainText is the whole-document fallback. Page boundaries
// are lost, so everything lands on one logical page.
func extractByReaderPlainText(r *pdf.Reader) string {
	reader, err := r.GetPlainText()
	if err != nil {
		return ""
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}

// statementMarkers are words that appear in virtually every supported
// statement. Text containing none of them is treated as garbage.
var statementMarkers = []string{
	"bank", "account", "balance", "date", "statement",
	"total", "deposit", "withdrawal", "transaction",
	"银行", "账户", "结余", "余额", "日期", "存入", "支出",
}

// IsReadableText reports whether extracted pages look like decoded statement
// text rather than binary garbage. Requires enough characters, a readable
// character ratio above 60%, and at least one statement marker. Han
// characters count as readable since the statements mix Chinese and English,
// and they weigh double toward the length floor: each one carries about as
// much content as an English word, so dense Chinese text clears the floor
// with far fewer runes.
func IsReadableText(pages []string) bool {
	total := 0
	weighted := 0
	readable := 0
	for _, page := range pages {
		for _, r := range page {
			total++
			weighted++
			if unicode.Is(unicode.Han, r) {
				weighted++
			}
			if isReadableRune(r) {
				readable++
			}
		}
	}
	if weighted <= 50 {
		return false
	}
	if float64(readable)/float64(total) <= 0.6 {
		return false
	}
	return containsStatementMarker(pages)
}

func isReadableRune(r rune) bool {
	if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
		return true
	}
	if unicode.IsSpace(r) || unicode.Is(unicode.Han, r) {
		return true
	}
	switch r {
	case '.', ',', '-', '/', ':', ';', '(', ')', '\'', '"',
		'$', '%', '&', '@', '#', '!', '?', '+', '=', '*':
		return true
	}
	return false
}

func containsStatementMarker(pages []string) bool {
	combined := strings.ToLower(strings.Join(pages, " "))
	for _, marker := range statementMarkers {
		if strings.Contains(combined, marker) {
			return true
		}
	}
	return false
}
