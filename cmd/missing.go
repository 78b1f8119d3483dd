package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/krobinsonca/aries-oca-explorer/internal/utils"
	"github.com/krobinsonca/aries-oca-explorer/pkg/candyscan"
	"github.com/krobinsonca/aries-oca-explorer/pkg/reconcile"
)

// missingCmd reconciles the catalog against the CANdy ledgers and reports
// schemas and credential definitions with no overlay bundle.
var missingCmd = &cobra.Command{
	Use:   "missing",
	Short: "Report ledger schemas and cred defs that have no overlay bundle",
	Run: func(cmd *cobra.Command, args []string) {
		asJSON, _ := cmd.Flags().GetBool("json")
		pageSize, _ := cmd.Flags().GetInt("pagesize")

		records, err := fetchCatalog()
		if err != nil {
			utils.Log.Fatal(err)
		}

		cfg := candyscan.DefaultConfig()
		if v := viper.GetString("candyscan.url"); v != "" {
			cfg.BaseURL = v
		}
		fetcher := candyscan.NewClient(nil, cfg, candyscan.NewPageCache(cfg.CacheTTL))

		r := &reconcile.Reconciler{
			Fetcher:      fetcher,
			ExplorerBase: cfg.BaseURL,
			PageSize:     pageSize,
		}
		missing := r.FindMissing(context.Background(), records)

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(missing); err != nil {
				utils.Log.Fatal(err)
			}
			return
		}

		for _, m := range missing {
			name := m.Name
			if name == "" {
				name = "(unnamed)"
			}
			fmt.Printf("%s  %-9s  %-18s  %s  %s\n",
				time.Unix(m.TxTime, 0).UTC().Format("2006-01-02 15:04"),
				m.Type,
				m.NetworkDisplayName,
				name,
				m.ID,
			)
		}
		utils.Log.Infof("%d missing bundle(s)", len(missing))
	},
}

func init() {
	rootCmd.AddCommand(missingCmd)
	missingCmd.Flags().Bool("json", false, "Emit the report as JSON")
	missingCmd.Flags().Int("pagesize", 50, "Transactions fetched per network")
}
