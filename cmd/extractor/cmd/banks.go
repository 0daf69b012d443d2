package cmd

import (
	"fmt"
	"sort"

	"bank-statement-extractor/internal/banks"

	"github.com/spf13/cobra"
)

// banksCmd lists the banks the extractor can parse
var banksCmd = &cobra.Command{
	Use:   "banks",
	Short: "List supported banks",
	Long: `Banks lists the bank identifiers the extractor recognizes, including
the aliases accepted by the --bank flag. Statements from other banks are
detected but produce no transactions.`,
	RunE: runBanks,
}

func init() {
	rootCmd.AddCommand(banksCmd)
}

func runBanks(cmd *cobra.Command, args []string) error {
	registry := banks.NewRegistry(banks.DefaultConfig())

	names := registry.Names()
	sort.Strings(names)

	fmt.Println("Supported banks:")
	for _, name := range names {
		parser := registry.Resolve(name)
		if name == parser.BankName() {
			fmt.Printf("  %s\n", name)
		} else {
			fmt.Printf("  %s (alias of %s)\n", name, parser.BankName())
		}
	}
	fmt.Printf("\nUnrecognized statements fall back to %q and extract nothing.\n", banks.BankUnknown)

	return nil
}
