package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"bank-statement-extractor/cmd/extractor/config"
	"bank-statement-extractor/internal/banks"
	"bank-statement-extractor/internal/pipeline"
	"bank-statement-extractor/pkg/logger"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Flags for the extract command
var (
	inputFiles   []string
	inputDir     string
	outputPath   string
	bankOverride string
	workers      int
)

// extractCmd represents the extract command
var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract transactions from bank statement PDFs",
	Long: `Extract reads one or more statement PDFs, detects the issuing bank,
parses the transaction tables and writes one output file per statement.

The output path sets the base name and the format (.xlsx or .csv); each
statement writes to <base>_<bank>_<source-stem><ext> so batch runs never
overwrite each other.

Examples:
  # Single statement to Excel
  extractor extract --input statement.pdf --output transactions.xlsx

  # Whole directory to CSV with four workers
  extractor extract --input-dir ./statements --output out/transactions.csv --workers 4

  # Force the bank instead of detecting it
  extractor extract --input scan.pdf --output out.xlsx --bank HSBC`,

	PreRunE: validateExtractFlags,
	RunE:    runExtract,
}

func init() {
	rootCmd.AddCommand(extractCmd)

	// Input flags
	extractCmd.Flags().StringSliceVarP(&inputFiles, "input", "i", []string{}, "comma-separated statement PDF paths")
	extractCmd.Flags().StringVarP(&inputDir, "input-dir", "d", "", "directory containing statement PDFs")

	// Output flags
	extractCmd.Flags().StringVarP(&outputPath, "output", "o", "transactions.xlsx", "output path, extension picks the format (.xlsx or .csv)")

	// Processing flags
	extractCmd.Flags().StringVarP(&bankOverride, "bank", "b", "", "force the bank instead of detecting it")
	extractCmd.Flags().IntVarP(&workers, "workers", "w", 0, "worker pool size (default: number of CPUs)")

	// Bind flags to viper
	viper.BindPFlag("input", extractCmd.Flags().Lookup("input"))
	viper.BindPFlag("input-dir", extractCmd.Flags().Lookup("input-dir"))
	viper.BindPFlag("output", extractCmd.Flags().Lookup("output"))
	viper.BindPFlag("bank", extractCmd.Flags().Lookup("bank"))
	viper.BindPFlag("workers", extractCmd.Flags().Lookup("workers"))
}

func validateExtractFlags(cmd *cobra.Command, args []string) error {
	// Get values from viper (allows override from config file)
	inputFiles = viper.GetStringSlice("input")
	inputDir = viper.GetString("input-dir")
	outputPath = viper.GetString("output")
	bankOverride = viper.GetString("bank")
	workers = viper.GetInt("workers")

	// Validate inputs
	if len(inputFiles) == 0 && inputDir == "" {
		return fmt.Errorf("at least one of --input or --input-dir is required")
	}

	for i, file := range inputFiles {
		if err := validateFileExists(file, fmt.Sprintf("input file %d", i+1)); err != nil {
			return err
		}
	}

	if inputDir != "" {
		info, err := os.Stat(inputDir)
		if os.IsNotExist(err) {
			return fmt.Errorf("input directory does not exist: %s", inputDir)
		}
		if err != nil {
			return fmt.Errorf("error accessing input directory: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("input-dir is not a directory: %s", inputDir)
		}
	}

	// Validate output format
	ext := strings.ToLower(filepath.Ext(outputPath))
	if ext != ".xlsx" && ext != ".csv" {
		return fmt.Errorf("invalid output extension '%s'. Valid formats: .xlsx, .csv", ext)
	}

	// Validate output directory exists if specified
	if dir := filepath.Dir(outputPath); dir != "." {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", dir)
		}
	}

	// Validate bank override
	if bankOverride != "" {
		registry := banks.NewRegistry(banks.DefaultConfig())
		known := false
		for _, name := range registry.Names() {
			if strings.EqualFold(name, bankOverride) {
				bankOverride = name
				known = true
				break
			}
		}
		if !known {
			return fmt.Errorf("unknown bank '%s'. Run 'extractor banks' to list supported banks", bankOverride)
		}
	}

	// Validate workers
	if workers < 0 {
		return fmt.Errorf("workers cannot be negative")
	}

	return nil
}

func validateFileExists(filePath, description string) error {
	if filePath == "" {
		return fmt.Errorf("%s path cannot be empty", description)
	}

	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("%s does not exist: %s", description, filePath)
	}
	if err != nil {
		return fmt.Errorf("error accessing %s: %w", description, err)
	}

	if info.IsDir() {
		return fmt.Errorf("%s is a directory, expected a file: %s", description, filePath)
	}

	// Check if file is readable
	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("%s is not readable: %w", description, err)
	}
	file.Close()

	return nil
}

// collectInputs merges the explicit input files with the PDFs found in the
// input directory, deduplicated and in stable order.
func collectInputs() ([]string, error) {
	seen := make(map[string]struct{})
	var files []string

	add := func(path string) {
		if _, ok := seen[path]; ok {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, file := range inputFiles {
		add(file)
	}

	if inputDir != "" {
		matches, err := filepath.Glob(filepath.Join(inputDir, "*.pdf"))
		if err != nil {
			return nil, fmt.Errorf("failed to scan input directory: %w", err)
		}
		sort.Strings(matches)
		for _, match := range matches {
			add(match)
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no PDF files found to process")
	}

	return files, nil
}

func runExtract(cmd *cobra.Command, args []string) error {
	log, err := logger.NewLogger(config.CreateLoggerConfig(viper.GetBool("verbose")))
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger.SetGlobalLogger(log)

	files, err := collectInputs()
	if err != nil {
		return err
	}

	if viper.GetBool("verbose") {
		fmt.Fprintf(os.Stderr, "Starting extraction...\n")
		fmt.Fprintf(os.Stderr, "Input files: %d\n", len(files))
		fmt.Fprintf(os.Stderr, "Output: %s\n", outputPath)
		if bankOverride != "" {
			fmt.Fprintf(os.Stderr, "Bank override: %s\n", bankOverride)
		}
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(config.CreatePipelineConfig(bankOverride, outputPath, workers))
	results := p.ProcessBatch(ctx, files)

	// Per-file summary
	succeeded := 0
	total := 0
	for _, result := range results {
		base := filepath.Base(result.File)
		if result.Err != nil {
			fmt.Fprintf(os.Stderr, "FAILED  %s: %v\n", base, result.Err)
			continue
		}
		succeeded++
		total += len(result.Transactions)
		if result.Output == "" {
			fmt.Printf("%-8s %s (%s): no transactions\n", "EMPTY", base, result.Bank)
			continue
		}
		fmt.Printf("%-8s %s (%s): %d transactions -> %s\n", "OK", base, result.Bank, len(result.Transactions), result.Output)
	}
	fmt.Printf("\nProcessed %d/%d files, %d transactions.\n", succeeded, len(results), total)

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("extraction interrupted: %w", err)
	}
	if succeeded == 0 {
		return fmt.Errorf("all %d files failed", len(results))
	}

	return nil
}
