package cmd

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/krobinsonca/aries-oca-explorer/internal/utils"
	"github.com/krobinsonca/aries-oca-explorer/pkg/bundle"
	"github.com/krobinsonca/aries-oca-explorer/pkg/extract"
	"github.com/krobinsonca/aries-oca-explorer/pkg/oca"
	"github.com/krobinsonca/aries-oca-explorer/pkg/whttp"
)

// showCmd fetches one overlay-bundle descriptor and prints its details.
var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one overlay bundle: attributes, languages, branding watermark",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		records, err := fetchCatalog()
		if err != nil {
			utils.Log.Fatal(err)
		}

		rec, found := findRecord(records, args[0])
		if !found {
			utils.Log.Fatalf("no catalog record matches %q", args[0])
		}

		rawURL := viper.GetString("bundles.rawurl")
		bundleURL := rawURL + "/" + rec.OCABundlePath
		client := whttp.NewClient(bundle.DefaultConfig().Timeout)

		b, err := oca.FetchBundle(context.Background(), client, rec.ID, bundleURL)
		if err != nil {
			utils.Log.Fatal(err)
		}

		fmt.Printf("Name:    %s\n", rec.Name)
		fmt.Printf("Org:     %s\n", rec.Org)
		fmt.Printf("Ledger:  %s\n", rec.LedgerDisplayName)
		fmt.Printf("IDs:     %s\n", strings.Join(rec.IDs, ", "))

		if langs := b.Languages(); len(langs) > 0 {
			fmt.Printf("Languages: %s\n", strings.Join(langs, ", "))
		}

		if w := extract.BestWatermark(b.Root()); !w.IsZero() {
			fmt.Printf("Watermark: %s\n", w.Text)
		}

		attrs := b.CaptureBaseAttributes()
		if len(attrs) > 0 {
			sample := oca.FetchBundleData(context.Background(), client, bundleURL)
			fmt.Println("Attributes:")
			for _, name := range sortedKeys(attrs) {
				line := fmt.Sprintf("  %s (%s)", name, attrs[name])
				if v, ok := sample[name]; ok && v != "" {
					line += " = " + v
				}
				fmt.Println(line)
			}
		}
	},
}

// findRecord matches by primary id, any merged id, or bundle path.
func findRecord(records []bundle.Record, key string) (bundle.Record, bool) {
	for _, rec := range records {
		if rec.ID == key || rec.OCABundlePath == key || utils.ContainsString(rec.IDs, key) {
			return rec, true
		}
	}
	return bundle.Record{}, false
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func init() {
	rootCmd.AddCommand(showCmd)
}
