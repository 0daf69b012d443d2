package cmd

import (
	"fmt"
	"os"
	"strings"
	"syscall"

	"bank-statement-extractor/pkg/errors"
	"bank-statement-extractor/pkg/logger"

	"github.com/spf13/viper"
)

// CLIErrorHandler provides user-friendly error handling for CLI operations
type CLIErrorHandler struct {
	logger  logger.Logger
	verbose bool
}

// NewCLIErrorHandler creates a new CLI error handler
func NewCLIErrorHandler() *CLIErrorHandler {
	return &CLIErrorHandler{
		logger:  logger.GetGlobalLogger().WithComponent("cli"),
		verbose: viper.GetBool("verbose"),
	}
}

// HandleError handles errors and provides user-friendly messages
func (h *CLIErrorHandler) HandleError(err error) int {
	if err == nil {
		return 0
	}

	// Log the error
	h.logger.WithError(err).Error("Command failed")

	// Handle ExtractorError with detailed information
	if extractorErr, ok := errors.AsExtractorError(err); ok {
		return h.handleExtractorError(extractorErr)
	}

	// Handle other error types
	return h.handleGenericError(err)
}

// handleExtractorError handles ExtractorError with detailed context
func (h *CLIErrorHandler) handleExtractorError(err *errors.ExtractorError) int {
	// Print the main error message
	fmt.Fprintf(os.Stderr, "Error: %s\n", err.Message)

	// Add context information if available
	if len(err.Context) > 0 {
		fmt.Fprintf(os.Stderr, "\nContext:\n")
		for key, value := range err.Context {
			fmt.Fprintf(os.Stderr, "  %s: %v\n", key, value)
		}
	}

	// Add suggestion if available
	if err.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "\nSuggestion: %s\n", err.Suggestion)
	}

	// Add category-specific help
	fmt.Fprintf(os.Stderr, "\n%s\n", h.getCategoryHelp(err.Category))

	// Show underlying error in verbose mode
	if h.verbose && err.Cause != nil {
		fmt.Fprintf(os.Stderr, "\nUnderlying error: %v\n", err.Cause)
	}

	return err.GetExitCode()
}

// handleGenericError handles non-ExtractorError types
func (h *CLIErrorHandler) handleGenericError(err error) int {
	// Check for common system errors and provide better messages
	if h.isFileNotFoundError(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check if the file path is correct and the file exists\n")
		return 2
	}

	if h.isPermissionError(err) {
		fmt.Fprintf(os.Stderr, "Error: Permission denied\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Check file permissions and ensure you have read access\n")
		return 2
	}

	if h.isDiskFullError(err) {
		fmt.Fprintf(os.Stderr, "Error: Insufficient disk space\n")
		fmt.Fprintf(os.Stderr, "Suggestion: Free up disk space and try again\n")
		return 2
	}

	// Generic error handling
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)

	if h.verbose {
		fmt.Fprintf(os.Stderr, "\nFor more details, check the logs or run with --verbose flag\n")
	}

	return 1
}

// getCategoryHelp returns category-specific help text
func (h *CLIErrorHandler) getCategoryHelp(category errors.ErrorCategory) string {
	switch category {
	case errors.CategoryFile:
		return `File error help:
• Check if the file exists and is readable
• Verify the file path is correct (use absolute paths if needed)
• Ensure you have proper permissions to access the file
• Try using a different file or contact your system administrator`

	case errors.CategoryExtraction:
		return `Extraction error help:
• Verify the PDF opens normally in a viewer
• Scanned or image-based statements need OCR before extraction
• Statements with custom font encodings may need re-exporting
• Try a statement downloaded directly from online banking`

	case errors.CategoryDetection:
		return `Detection error help:
• Force the bank with the --bank flag
• Add a filename override in the config file
• Run 'extractor banks' to see the supported banks`

	case errors.CategoryClassification:
		return `Classification error help:
• The statement layout may differ from the supported formats
• Check that the statement contains transaction tables
• Use --verbose to see which tables were rejected and why`

	case errors.CategoryExport:
		return `Export error help:
• Use a .xlsx or .csv output path
• Check that the output directory exists and is writable
• Close the output file if it is open in another program`

	case errors.CategoryConfiguration:
		return `Configuration error help:
• Check your command-line flags and arguments
• Verify configuration file syntax if using --config
• Use 'extractor extract --help' to see all available options
• Try running with default settings first`

	default:
		return `For more help:
• Use 'extractor --help' for general help
• Use 'extractor extract --help' for command-specific help
• Check the documentation for detailed examples
• Report bugs or ask for help on the project repository`
	}
}

// Error detection helpers

func (h *CLIErrorHandler) isFileNotFoundError(err error) bool {
	return os.IsNotExist(err) || strings.Contains(err.Error(), "no such file or directory")
}

func (h *CLIErrorHandler) isPermissionError(err error) bool {
	return os.IsPermission(err) ||
		strings.Contains(err.Error(), "permission denied") ||
		strings.Contains(err.Error(), "access denied")
}

func (h *CLIErrorHandler) isDiskFullError(err error) bool {
	if err == syscall.ENOSPC {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "no space left") ||
		strings.Contains(errStr, "disk full") ||
		strings.Contains(errStr, "device full")
}
