package main

import (
	"os"

	"bank-statement-extractor/cmd/extractor/cmd"
)

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	// Set version information
	cmd.SetVersionInfo(version, commit, date)

	if err := cmd.Execute(); err != nil {
		os.Exit(cmd.NewCLIErrorHandler().HandleError(err))
	}
}
