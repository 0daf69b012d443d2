package errors

import (
	"fmt"
	"path/filepath"
	"strings"
)

// ExtractContext pins an extraction error to a location in the source
// document
type ExtractContext struct {
	File   string `json:"file"`
	Page   int    `json:"page,omitempty"`
	Table  int    `json:"table,omitempty"`
	Row    int    `json:"row,omitempty"`
	Detail string `json:"detail,omitempty"`
}

// EnhancedExtractionError extends the base extraction error with document
// location context and recoverability
type EnhancedExtractionError struct {
	*ExtractorError
	Context     *ExtractContext `json:"context"`
	Recoverable bool            `json:"recoverable"`
	RowContent  string          `json:"row_content,omitempty"`
}

// Error implements the error interface with enhanced formatting
func (e *EnhancedExtractionError) Error() string {
	var parts []string

	parts = append(parts, e.ExtractorError.Error())

	if e.Context != nil {
		location := fmt.Sprintf("at %s", filepath.Base(e.Context.File))
		if e.Context.Page > 0 {
			location += fmt.Sprintf(" page %d", e.Context.Page)
		}
		if e.Context.Row > 0 {
			location += fmt.Sprintf(" row %d", e.Context.Row)
		}
		parts = append(parts, location)
	}

	return strings.Join(parts, " ")
}

// GetDetailedError returns a detailed multi-line error description
func (e *EnhancedExtractionError) GetDetailedError() string {
	var lines []string

	lines = append(lines, fmt.Sprintf("ERROR: %s", e.Message))

	if e.Context != nil {
		lines = append(lines, fmt.Sprintf("  File: %s", e.Context.File))
		if e.Context.Page > 0 {
			lines = append(lines, fmt.Sprintf("  Page: %d", e.Context.Page))
		}
		if e.Context.Table > 0 {
			lines = append(lines, fmt.Sprintf("  Table: %d", e.Context.Table))
		}
		if e.Context.Row > 0 {
			lines = append(lines, fmt.Sprintf("  Row: %d", e.Context.Row))
		}
		if e.Context.Detail != "" {
			lines = append(lines, fmt.Sprintf("  Detail: %s", e.Context.Detail))
		}
	}

	if e.RowContent != "" {
		lines = append(lines, fmt.Sprintf("  Content: %s", e.RowContent))
	}

	if e.Suggestion != "" {
		lines = append(lines, fmt.Sprintf("  Suggestion: %s", e.Suggestion))
	}

	return strings.Join(lines, "\n")
}

// NewEnhancedExtractionError creates a new enhanced extraction error
func NewEnhancedExtractionError(code ErrorCode, context *ExtractContext, message string, cause error) *EnhancedExtractionError {
	baseError := Wrap(cause, CategoryExtraction, code, message)
	if baseError == nil {
		baseError = New(CategoryExtraction, code, message)
	}

	if context != nil {
		baseError.WithContext("file", context.File).
			WithContext("page", context.Page).
			WithContext("row", context.Row)
	}

	return &EnhancedExtractionError{
		ExtractorError: baseError,
		Context:        context,
		Recoverable:    true,
	}
}

// WithRowContent adds the offending row text to the error
func (e *EnhancedExtractionError) WithRowContent(content string) *EnhancedExtractionError {
	e.RowContent = content
	return e
}

// WithSuggestion adds a suggestion and returns the EnhancedExtractionError
func (e *EnhancedExtractionError) WithSuggestion(suggestion string) *EnhancedExtractionError {
	e.ExtractorError.WithSuggestion(suggestion)
	return e
}

// WithRecoverable sets whether this error is recoverable
func (e *EnhancedExtractionError) WithRecoverable(recoverable bool) *EnhancedExtractionError {
	e.Recoverable = recoverable
	return e
}

// Common extraction error constructors

// UnreadableTextError creates an error for documents whose extracted text
// fails the readability check
func UnreadableTextError(file string, cause error) *EnhancedExtractionError {
	context := &ExtractContext{File: file}

	err := NewEnhancedExtractionError(CodeUnreadableText, context, "extracted text is not readable", cause).
		WithSuggestion("The PDF may be image-based or use custom font encodings; run OCR on it first")

	err.Recoverable = false
	return err
}

// EmptyDocumentError creates an error for PDFs with no pages
func EmptyDocumentError(file string) *EnhancedExtractionError {
	context := &ExtractContext{File: file}

	err := NewEnhancedExtractionError(CodeEmptyDocument, context, "document has no pages", nil).
		WithSuggestion("Verify the PDF is complete and not truncated")

	err.Recoverable = false
	return err
}

// LibraryCrashError creates an error for panics inside the PDF library
func LibraryCrashError(file string, recovered interface{}) *EnhancedExtractionError {
	context := &ExtractContext{File: file, Detail: fmt.Sprintf("%v", recovered)}

	err := NewEnhancedExtractionError(CodeLibraryCrash, context, "PDF parsing crashed", nil).
		WithSuggestion("The file may use unsupported PDF features; try re-exporting it")

	err.Recoverable = false
	return err
}

// RowError creates an error for a table row that could not be processed
func RowError(file string, page, row int, content string, cause error) *EnhancedExtractionError {
	context := &ExtractContext{File: file, Page: page, Row: row}

	return NewEnhancedExtractionError(CodeEncodingError, context, "table row could not be processed", cause).
		WithRowContent(content)
}

// ExtractionErrorCollector collects extraction errors across a document so a
// single bad page or row does not abort the run
type ExtractionErrorCollector struct {
	errors          []*EnhancedExtractionError
	maxErrors       int
	continueOnError bool
}

// NewExtractionErrorCollector creates a new error collector
func NewExtractionErrorCollector(maxErrors int, continueOnError bool) *ExtractionErrorCollector {
	return &ExtractionErrorCollector{
		errors:          make([]*EnhancedExtractionError, 0),
		maxErrors:       maxErrors,
		continueOnError: continueOnError,
	}
}

// Add adds an error to the collector and reports whether processing should
// continue
func (c *ExtractionErrorCollector) Add(err *EnhancedExtractionError) bool {
	if err == nil {
		return true
	}

	c.errors = append(c.errors, err)

	if len(c.errors) >= c.maxErrors {
		return false
	}

	return c.continueOnError || err.Recoverable
}

// HasErrors returns true if any errors have been collected
func (c *ExtractionErrorCollector) HasErrors() bool {
	return len(c.errors) > 0
}

// GetErrors returns all collected errors
func (c *ExtractionErrorCollector) GetErrors() []*EnhancedExtractionError {
	return c.errors
}

// GetExtractorErrors converts all errors to the base ExtractorError type
func (c *ExtractionErrorCollector) GetExtractorErrors() []*ExtractorError {
	result := make([]*ExtractorError, len(c.errors))
	for i, err := range c.errors {
		result[i] = err.ExtractorError
	}
	return result
}

// GetSummary returns an error summary for all collected errors
func (c *ExtractionErrorCollector) GetSummary() *ErrorSummary {
	return NewErrorSummary(c.GetExtractorErrors())
}

// Clear clears all collected errors
func (c *ExtractionErrorCollector) Clear() {
	c.errors = c.errors[:0]
}

// FormatExtractionErrorsForUser formats multiple extraction errors in a
// user-friendly way
func FormatExtractionErrorsForUser(errors []*EnhancedExtractionError) string {
	if len(errors) == 0 {
		return "No extraction errors"
	}

	if len(errors) == 1 {
		return errors[0].GetDetailedError()
	}

	var lines []string
	lines = append(lines, fmt.Sprintf("Found %d extraction errors:", len(errors)))
	lines = append(lines, "")

	errorsByFile := make(map[string][]*EnhancedExtractionError)
	for _, err := range errors {
		file := "unknown"
		if err.Context != nil {
			file = filepath.Base(err.Context.File)
		}
		errorsByFile[file] = append(errorsByFile[file], err)
	}

	for file, fileErrors := range errorsByFile {
		lines = append(lines, fmt.Sprintf("File: %s (%d errors)", file, len(fileErrors)))

		maxDetailedErrors := 3
		for i, err := range fileErrors {
			if i < maxDetailedErrors {
				lines = append(lines, "")
				lines = append(lines, err.GetDetailedError())
			} else if i == maxDetailedErrors {
				remaining := len(fileErrors) - maxDetailedErrors
				lines = append(lines, "")
				lines = append(lines, fmt.Sprintf("... and %d more errors in this file", remaining))
				break
			}
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
