package errors

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// ErrorCategory represents different categories of errors
type ErrorCategory string

const (
	CategoryFile           ErrorCategory = "file"
	CategoryExtraction     ErrorCategory = "extraction"
	CategoryDetection      ErrorCategory = "detection"
	CategoryClassification ErrorCategory = "classification"
	CategoryExport         ErrorCategory = "export"
	CategoryConfiguration  ErrorCategory = "configuration"
	CategoryInternal       ErrorCategory = "internal"
)

// ErrorCode represents specific error codes within categories
type ErrorCode string

const (
	// File errors
	CodeFileNotFound   ErrorCode = "file_not_found"
	CodeFilePermission ErrorCode = "file_permission"
	CodeFileCorrupted  ErrorCode = "file_corrupted"
	CodeDirectoryError ErrorCode = "directory_error"

	// Extraction errors
	CodeUnreadableText ErrorCode = "unreadable_text"
	CodeEmptyDocument  ErrorCode = "empty_document"
	CodeLibraryCrash   ErrorCode = "library_crash"
	CodeEncodingError  ErrorCode = "encoding_error"

	// Detection errors
	CodeUnknownBank ErrorCode = "unknown_bank"

	// Classification errors
	CodeNoTransactionTable ErrorCode = "no_transaction_table"
	CodeMissingColumn      ErrorCode = "missing_column"

	// Export errors
	CodeWriteFailed       ErrorCode = "write_failed"
	CodeUnsupportedFormat ErrorCode = "unsupported_format"

	// Configuration errors
	CodeInvalidConfig  ErrorCode = "invalid_config"
	CodeMissingConfig  ErrorCode = "missing_config"
	CodeConfigConflict ErrorCode = "config_conflict"

	// Internal errors
	CodeUnexpectedError   ErrorCode = "unexpected_error"
	CodeResourceExhausted ErrorCode = "resource_exhausted"
)

// ExtractorError is the base error type for all application errors
type ExtractorError struct {
	Category   ErrorCategory     `json:"category"`
	Code       ErrorCode         `json:"code"`
	Message    string            `json:"message"`
	Suggestion string            `json:"suggestion,omitempty"`
	Context    Context           `json:"context,omitempty"`
	Cause      error             `json:"-"`
	StackTrace errors.StackTrace `json:"-"`
}

// Context provides additional information about the error
type Context map[string]interface{}

// Error implements the error interface
func (e *ExtractorError) Error() string {
	if e.Suggestion != "" {
		return fmt.Sprintf("%s (suggestion: %s)", e.Message, e.Suggestion)
	}
	return e.Message
}

// Unwrap returns the underlying cause error
func (e *ExtractorError) Unwrap() error {
	return e.Cause
}

// GetExitCode returns an appropriate exit code for the error
func (e *ExtractorError) GetExitCode() int {
	switch e.Category {
	case CategoryFile:
		return 2
	case CategoryExtraction, CategoryClassification:
		return 3
	case CategoryConfiguration:
		return 4
	case CategoryDetection, CategoryInternal:
		return 5
	case CategoryExport:
		return 6
	default:
		return 1
	}
}

// WithContext adds context information to the error
func (e *ExtractorError) WithContext(key string, value interface{}) *ExtractorError {
	if e.Context == nil {
		e.Context = make(Context)
	}
	e.Context[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *ExtractorError) WithSuggestion(suggestion string) *ExtractorError {
	e.Suggestion = suggestion
	return e
}

// New creates a new ExtractorError
func New(category ErrorCategory, code ErrorCode, message string) *ExtractorError {
	return &ExtractorError{
		Category:   category,
		Code:       code,
		Message:    message,
		StackTrace: errors.New("").(stackTracer).StackTrace(),
	}
}

// Wrap wraps an existing error with ExtractorError context
func Wrap(err error, category ErrorCategory, code ErrorCode, message string) *ExtractorError {
	if err == nil {
		return nil
	}

	return &ExtractorError{
		Category:   category,
		Code:       code,
		Message:    message,
		Cause:      err,
		StackTrace: errors.WithStack(err).(stackTracer).StackTrace(),
	}
}

// stackTracer interface for extracting stack traces
type stackTracer interface {
	StackTrace() errors.StackTrace
}

// Specific error constructors

// FileError creates a file-related error
func FileError(code ErrorCode, path string, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeFileNotFound:
		message = fmt.Sprintf("file not found: %s", path)
		suggestion = "check if the file path is correct and the file exists"
	case CodeFilePermission:
		message = fmt.Sprintf("permission denied accessing file: %s", path)
		suggestion = "check file permissions and ensure you have read access"
	case CodeFileCorrupted:
		message = fmt.Sprintf("file appears to be corrupted: %s", path)
		suggestion = "verify the file integrity and try using a backup copy"
	case CodeDirectoryError:
		message = fmt.Sprintf("directory error: %s", path)
		suggestion = "ensure the directory exists and is accessible"
	default:
		message = fmt.Sprintf("file error: %s", path)
		suggestion = "check the file and try again"
	}

	var result *ExtractorError
	if err != nil {
		result = Wrap(err, CategoryFile, code, message)
	} else {
		result = New(CategoryFile, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file_path", path)
}

// ExtractionError creates a PDF text extraction error
func ExtractionError(code ErrorCode, file string, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeUnreadableText:
		message = fmt.Sprintf("no readable text could be extracted from %s", file)
		suggestion = "the PDF may be image-based or scanned; run OCR on it first"
	case CodeEmptyDocument:
		message = fmt.Sprintf("document has no pages: %s", file)
		suggestion = "verify the PDF is complete and not truncated"
	case CodeLibraryCrash:
		message = fmt.Sprintf("PDF parsing crashed on %s", file)
		suggestion = "the file may use unsupported features; try re-exporting the PDF"
	case CodeEncodingError:
		message = fmt.Sprintf("text encoding could not be decoded in %s", file)
		suggestion = "the PDF may use custom font encodings"
	default:
		message = fmt.Sprintf("extraction error in %s", file)
		suggestion = "check the file format and data integrity"
	}

	var result *ExtractorError
	if err != nil {
		result = Wrap(err, CategoryExtraction, code, message)
	} else {
		result = New(CategoryExtraction, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file", file)
}

// DetectionError creates a bank detection error
func DetectionError(code ErrorCode, file string, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeUnknownBank:
		message = fmt.Sprintf("could not identify the issuing bank for %s", file)
		suggestion = "pass the bank explicitly with --bank or add a filename override"
	default:
		message = fmt.Sprintf("detection error for %s", file)
		suggestion = "check the statement content and detection keywords"
	}

	var result *ExtractorError
	if err != nil {
		result = Wrap(err, CategoryDetection, code, message)
	} else {
		result = New(CategoryDetection, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file", file)
}

// ClassificationError creates a table classification error
func ClassificationError(code ErrorCode, file string, page int, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeNoTransactionTable:
		message = fmt.Sprintf("no transaction table recognized in %s page %d", file, page)
		suggestion = "the page layout may differ from supported statement formats"
	case CodeMissingColumn:
		message = fmt.Sprintf("transaction table in %s page %d is missing required columns", file, page)
		suggestion = "verify the statement has date and amount columns"
	default:
		message = fmt.Sprintf("classification error in %s page %d", file, page)
		suggestion = "check the statement layout"
	}

	var result *ExtractorError
	if err != nil {
		result = Wrap(err, CategoryClassification, code, message)
	} else {
		result = New(CategoryClassification, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("file", file).
		WithContext("page", page)
}

// ExportError creates an output writing error
func ExportError(code ErrorCode, path string, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeWriteFailed:
		message = fmt.Sprintf("failed to write output file: %s", path)
		suggestion = "check disk space and write permissions for the output directory"
	case CodeUnsupportedFormat:
		message = fmt.Sprintf("unsupported output format: %s", path)
		suggestion = "use a .xlsx or .csv output path"
	default:
		message = fmt.Sprintf("export error: %s", path)
		suggestion = "check the output path and try again"
	}

	var result *ExtractorError
	if err != nil {
		result = Wrap(err, CategoryExport, code, message)
	} else {
		result = New(CategoryExport, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("output_path", path)
}

// ConfigurationError creates a configuration-related error
func ConfigurationError(code ErrorCode, setting string, value interface{}, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeInvalidConfig:
		message = fmt.Sprintf("invalid configuration for '%s': %v", setting, value)
		suggestion = "check the configuration documentation for valid values"
	case CodeMissingConfig:
		message = fmt.Sprintf("missing required configuration: %s", setting)
		suggestion = "provide this configuration setting or use a config file"
	case CodeConfigConflict:
		message = fmt.Sprintf("configuration conflict with setting '%s': %v", setting, value)
		suggestion = "resolve the conflicting settings or use default values"
	default:
		message = fmt.Sprintf("configuration error: %s", setting)
		suggestion = "check your configuration and try again"
	}

	var result *ExtractorError
	if err != nil {
		result = Wrap(err, CategoryConfiguration, code, message)
	} else {
		result = New(CategoryConfiguration, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("setting", setting).
		WithContext("value", value)
}

// InternalError creates an internal error
func InternalError(code ErrorCode, operation string, err error) *ExtractorError {
	var message string
	var suggestion string

	switch code {
	case CodeUnexpectedError:
		message = fmt.Sprintf("unexpected error during %s", operation)
		suggestion = "this is likely a bug - please report it with the error details"
	case CodeResourceExhausted:
		message = fmt.Sprintf("resource exhausted during %s", operation)
		suggestion = "try reducing batch size or increasing system resources"
	default:
		message = fmt.Sprintf("internal error during %s", operation)
		suggestion = "try again or contact support if the problem persists"
	}

	var result *ExtractorError
	if err != nil {
		result = Wrap(err, CategoryInternal, code, message)
	} else {
		result = New(CategoryInternal, code, message)
	}

	return result.
		WithSuggestion(suggestion).
		WithContext("operation", operation)
}

// ErrorSummary provides a summary of multiple errors
type ErrorSummary struct {
	Total        int                   `json:"total"`
	ByCategory   map[ErrorCategory]int `json:"by_category"`
	ByCode       map[ErrorCode]int     `json:"by_code"`
	Errors       []*ExtractorError     `json:"errors"`
	SampleErrors []*ExtractorError     `json:"sample_errors,omitempty"`
}

// NewErrorSummary creates a new error summary
func NewErrorSummary(errors []*ExtractorError) *ErrorSummary {
	if len(errors) == 0 {
		return &ErrorSummary{
			Total:      0,
			ByCategory: make(map[ErrorCategory]int),
			ByCode:     make(map[ErrorCode]int),
			Errors:     []*ExtractorError{},
		}
	}

	summary := &ErrorSummary{
		Total:      len(errors),
		ByCategory: make(map[ErrorCategory]int),
		ByCode:     make(map[ErrorCode]int),
		Errors:     errors,
	}

	// Count by category and code
	for _, err := range errors {
		summary.ByCategory[err.Category]++
		summary.ByCode[err.Code]++
	}

	// Include sample errors (max 5)
	maxSamples := 5
	if len(errors) > maxSamples {
		summary.SampleErrors = errors[:maxSamples]
	} else {
		summary.SampleErrors = errors
	}

	return summary
}

// Error returns a formatted error message for the summary
func (es *ErrorSummary) Error() string {
	if es.Total == 0 {
		return "no errors"
	}

	if es.Total == 1 {
		return es.Errors[0].Error()
	}

	var categories []string
	for category, count := range es.ByCategory {
		categories = append(categories, fmt.Sprintf("%s: %d", category, count))
	}

	return fmt.Sprintf("%d errors occurred (%s)", es.Total, strings.Join(categories, ", "))
}

// HasCategory checks if the summary contains errors of the given category
func (es *ErrorSummary) HasCategory(category ErrorCategory) bool {
	count, exists := es.ByCategory[category]
	return exists && count > 0
}

// HasCode checks if the summary contains errors with the given code
func (es *ErrorSummary) HasCode(code ErrorCode) bool {
	count, exists := es.ByCode[code]
	return exists && count > 0
}

// GetExitCode returns the highest priority exit code from all errors
func (es *ErrorSummary) GetExitCode() int {
	if es.Total == 0 {
		return 0
	}

	maxCode := 1
	for _, err := range es.Errors {
		if code := err.GetExitCode(); code > maxCode {
			maxCode = code
		}
	}

	return maxCode
}

// Utility functions

// IsExtractorError checks if an error is an ExtractorError
func IsExtractorError(err error) bool {
	_, ok := err.(*ExtractorError)
	return ok
}

// AsExtractorError extracts an ExtractorError from an error chain
func AsExtractorError(err error) (*ExtractorError, bool) {
	var extractorErr *ExtractorError
	if errors.As(err, &extractorErr) {
		return extractorErr, true
	}
	return nil, false
}

// WrapIfNeeded wraps an error if it's not already an ExtractorError
func WrapIfNeeded(err error, category ErrorCategory, code ErrorCode, message string) *ExtractorError {
	if err == nil {
		return nil
	}

	if extractorErr, ok := AsExtractorError(err); ok {
		return extractorErr
	}

	return Wrap(err, category, code, message)
}
