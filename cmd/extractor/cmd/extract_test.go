package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"
)

func TestValidateFileExists(t *testing.T) {
	// Create temporary test files
	tmpDir := t.TempDir()
	validFile := filepath.Join(tmpDir, "valid.pdf")
	if err := os.WriteFile(validFile, []byte("test"), 0644); err != nil {
		t.Fatalf("failed to create test file: %v", err)
	}

	tests := []struct {
		name        string
		filePath    string
		description string
		expectError bool
	}{
		{
			name:        "valid file",
			filePath:    validFile,
			description: "test file",
			expectError: false,
		},
		{
			name:        "empty path",
			filePath:    "",
			description: "test file",
			expectError: true,
		},
		{
			name:        "non-existent file",
			filePath:    "/non/existent/file.pdf",
			description: "test file",
			expectError: true,
		},
		{
			name:        "directory instead of file",
			filePath:    tmpDir,
			description: "test file",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateFileExists(tt.filePath, tt.description)

			if tt.expectError && err == nil {
				t.Errorf("expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateExtractFlags(t *testing.T) {
	tmpDir := t.TempDir()
	statementFile := filepath.Join(tmpDir, "statement.pdf")
	if err := os.WriteFile(statementFile, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatalf("failed to create statement file: %v", err)
	}

	tests := []struct {
		name          string
		setupFlags    func()
		expectError   bool
		errorContains string
	}{
		{
			name: "valid flags",
			setupFlags: func() {
				viper.Set("input", []string{statementFile})
				viper.Set("output", "transactions.xlsx")
			},
			expectError: false,
		},
		{
			name: "valid directory input",
			setupFlags: func() {
				viper.Set("input-dir", tmpDir)
				viper.Set("output", "transactions.csv")
			},
			expectError: false,
		},
		{
			name: "no inputs",
			setupFlags: func() {
				viper.Set("output", "transactions.xlsx")
			},
			expectError:   true,
			errorContains: "at least one of --input or --input-dir is required",
		},
		{
			name: "missing input file",
			setupFlags: func() {
				viper.Set("input", []string{"/non/existent.pdf"})
				viper.Set("output", "transactions.xlsx")
			},
			expectError:   true,
			errorContains: "does not exist",
		},
		{
			name: "missing input directory",
			setupFlags: func() {
				viper.Set("input-dir", "/non/existent/dir")
				viper.Set("output", "transactions.xlsx")
			},
			expectError:   true,
			errorContains: "input directory does not exist",
		},
		{
			name: "invalid output extension",
			setupFlags: func() {
				viper.Set("input", []string{statementFile})
				viper.Set("output", "transactions.txt")
			},
			expectError:   true,
			errorContains: "invalid output extension",
		},
		{
			name: "missing output directory",
			setupFlags: func() {
				viper.Set("input", []string{statementFile})
				viper.Set("output", "/non/existent/dir/out.xlsx")
			},
			expectError:   true,
			errorContains: "output directory does not exist",
		},
		{
			name: "unknown bank override",
			setupFlags: func() {
				viper.Set("input", []string{statementFile})
				viper.Set("output", "transactions.xlsx")
				viper.Set("bank", "Narnia Savings")
			},
			expectError:   true,
			errorContains: "unknown bank",
		},
		{
			name: "bank alias accepted",
			setupFlags: func() {
				viper.Set("input", []string{statementFile})
				viper.Set("output", "transactions.xlsx")
				viper.Set("bank", "hsbc")
			},
			expectError: false,
		},
		{
			name: "negative workers",
			setupFlags: func() {
				viper.Set("input", []string{statementFile})
				viper.Set("output", "transactions.xlsx")
				viper.Set("workers", -1)
			},
			expectError:   true,
			errorContains: "workers cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Reset viper
			viper.Reset()
			tt.setupFlags()

			err := validateExtractFlags(extractCmd, []string{})

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error but got none")
				} else if tt.errorContains != "" && !strings.Contains(err.Error(), tt.errorContains) {
					t.Errorf("expected error to contain '%s', got: %v", tt.errorContains, err)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
			}
		})
	}
}

func TestBankOverrideNormalization(t *testing.T) {
	tmpDir := t.TempDir()
	statementFile := filepath.Join(tmpDir, "statement.pdf")
	if err := os.WriteFile(statementFile, []byte("%PDF-1.4"), 0644); err != nil {
		t.Fatalf("failed to create statement file: %v", err)
	}

	viper.Reset()
	viper.Set("input", []string{statementFile})
	viper.Set("output", "transactions.xlsx")
	viper.Set("bank", "hsbc")

	if err := validateExtractFlags(extractCmd, []string{}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bankOverride != "HSBC" {
		t.Errorf("bank override = %q, want normalized HSBC", bankOverride)
	}
}

func TestCollectInputs(t *testing.T) {
	tmpDir := t.TempDir()
	a := filepath.Join(tmpDir, "a.pdf")
	b := filepath.Join(tmpDir, "b.pdf")
	other := filepath.Join(tmpDir, "notes.txt")
	for _, f := range []string{a, b, other} {
		if err := os.WriteFile(f, []byte("x"), 0644); err != nil {
			t.Fatalf("failed to create %s: %v", f, err)
		}
	}

	// Explicit file plus directory scan, with overlap.
	inputFiles = []string{b}
	inputDir = tmpDir

	files, err := collectInputs()
	if err != nil {
		t.Fatalf("collectInputs() error = %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("collectInputs() = %v, want a.pdf and b.pdf once each", files)
	}
	if files[0] != b || files[1] != a {
		t.Errorf("collectInputs() order = %v, explicit files first", files)
	}
}

func TestExtractCommandHelp(t *testing.T) {
	cmd := extractCmd

	for _, flag := range []string{"input", "input-dir", "output", "bank", "workers"} {
		if cmd.Flags().Lookup(flag) == nil {
			t.Errorf("%s flag not found", flag)
		}
	}

	// Test help output contains key information
	var helpOutput bytes.Buffer
	cmd.SetOut(&helpOutput)
	cmd.Help()

	helpText := helpOutput.String()

	expectedSections := []string{
		"Usage:",
		"Examples:",
		"Flags:",
		"--input",
		"--output",
		"--bank",
	}

	for _, section := range expectedSections {
		if !strings.Contains(helpText, section) {
			t.Errorf("help text should contain '%s'", section)
		}
	}
}
