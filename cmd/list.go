package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/krobinsonca/aries-oca-explorer/internal/utils"
	"github.com/krobinsonca/aries-oca-explorer/pkg/bundle"
	"github.com/krobinsonca/aries-oca-explorer/pkg/identifier"
)

// listCmd prints the enriched overlay-bundle catalog.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List overlay bundles with their ledger annotations",
	Run: func(cmd *cobra.Command, args []string) {
		search, _ := cmd.Flags().GetString("search")
		ledgerFilter, _ := cmd.Flags().GetString("ledger")
		outputFlags, _ := cmd.Flags().GetString("output")
		delimiter, _ := cmd.Flags().GetString("delimiter")

		records, err := fetchCatalog()
		if err != nil {
			utils.Log.Fatal(err)
		}

		records = bundle.Filter(records, bundle.FilterOptions{
			SearchTerm: search,
			Ledger:     ledgerFilter,
		})
		bundle.SortForDisplay(records)

		for _, rec := range records {
			line := recordLine(rec, outputFlags, delimiter)
			if line != "" {
				fmt.Println(line)
			}
		}
	},
}

// recordLine renders one record per the output flag letters.
func recordLine(rec bundle.Record, outputFlags, delimiter string) string {
	var line string
	for _, f := range outputFlags {
		switch f {
		case 'n':
			line += rec.Name + delimiter
		case 'i':
			line += rec.ID + delimiter
		case 'I':
			line += strings.Join(rec.IDs, ",") + delimiter
		case 'o':
			line += rec.Org + delimiter
		case 'd':
			line += rec.Desc + delimiter
		case 'l':
			line += rec.LedgerDisplayName + delimiter
		case 'p':
			line += rec.OCABundlePath + delimiter
		case 'u':
			line += identifier.ExplorerURLBorrowing(rec.ID, rec.LedgerNormalized, rec.IDs) + delimiter
		default:
			utils.Log.Fatal("Invalid print flag")
		}
	}
	return strings.TrimSuffix(line, delimiter)
}

// fetchCatalog builds the configured bundle client and fetches the full
// enriched catalog once.
func fetchCatalog() ([]bundle.Record, error) {
	cfg := bundle.DefaultConfig()
	if v := viper.GetString("bundles.url"); v != "" {
		cfg.ListURL = v
	}
	if v := viper.GetString("bundles.file"); v != "" {
		cfg.ListFile = v
	}
	if v := viper.GetString("bundles.rawurl"); v != "" {
		cfg.RawContentURL = v
	}

	client := bundle.NewClient(nil, cfg, bundle.NewReadmeCache())
	return client.FetchList(context.Background())
}

func init() {
	rootCmd.AddCommand(listCmd)
	listCmd.Flags().StringP("search", "s", "", "Substring filter across name, description, org and ids")
	listCmd.Flags().StringP("ledger", "L", "", "Only bundles on this normalized ledger (e.g. candy-prod)")
	listCmd.Flags().StringP("output", "o", "nol", "Output flags: n (name), i (id), I (all ids), o (org), d (description), l (ledger), p (bundle path), u (explorer url)")
	listCmd.Flags().StringP("delimiter", "d", " ", "Delimiter between output fields")
}
