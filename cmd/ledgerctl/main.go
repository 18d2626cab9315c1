package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag      string
	adminKeyFlag string
	rootCmd = &cobra.Command{
		Use:   "ledgerctl",
		Short: "CLI client for the contribution ledger REST API",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "Ledger service base URL")
	rootCmd.PersistentFlags().StringVar(&adminKeyFlag, "admin-key", os.Getenv("LEDGER_ADMIN_API_KEY"), "Admin API key sent as a Bearer token")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
