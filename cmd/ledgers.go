package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/krobinsonca/aries-oca-explorer/internal/utils"
	"github.com/krobinsonca/aries-oca-explorer/pkg/bundle"
)

// ledgersCmd prints every ledger present in the catalog with its bundle count.
var ledgersCmd = &cobra.Command{
	Use:   "ledgers",
	Short: "List ledgers found in the catalog with per-ledger bundle counts",
	Run: func(cmd *cobra.Command, args []string) {
		records, err := fetchCatalog()
		if err != nil {
			utils.Log.Fatal(err)
		}

		for _, option := range bundle.LedgerOptions(records) {
			fmt.Printf("%s (%s): %d\n", option.Label, option.Value, option.Count)
		}
	},
}

func init() {
	rootCmd.AddCommand(ledgersCmd)
}
