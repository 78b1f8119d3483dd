package cmd

import (
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/spf13/cobra"

	"github.com/krobinsonca/aries-oca-explorer/internal/utils"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "aries-oca-explorer",
	Short: "Explore OCA bundles and reconcile them against CANdy ledgers.",
	Long: `aries-oca-explorer fetches the aries-oca-bundles catalog, annotates each
overlay bundle with the ledger it lives on, and cross-references the CANdy
ledger explorers to find schemas and credential definitions that have no
overlay bundle yet.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.aries-oca-explorer.yaml)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".aries-oca-explorer")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := home + "/.aries-oca-explorer.yaml"
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s", err)
			}
		}
	}

	// Set default empty values for all keys
	viper.SetDefault("bundles.url", "https://bcgov.github.io/aries-oca-bundles")
	viper.SetDefault("bundles.file", "ocabundleslist.json")
	viper.SetDefault("bundles.rawurl", "https://raw.githubusercontent.com/bcgov/aries-oca-bundles/main")
	viper.SetDefault("candyscan.url", "https://candyscan.idlab.org")

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	utils.SetLogLevel(levelString)

	if proxy, _ := rootCmd.PersistentFlags().GetString("proxy"); proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			utils.Log.Fatal("Invalid Proxy String")
		}
		http.DefaultTransport.(*http.Transport).Proxy = http.ProxyURL(proxyURL)
	}
}
