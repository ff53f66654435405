package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/LumeraProtocol/kate/katenode/config"
)

var (
	cfgFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "katenode",
	Short: "Kate data availability proof node",
	Long: `katenode erasure-extends blocks on demand, keeps the most recent extensions
in memory and serves KZG cell proofs and block dimensions over JSON-RPC.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", config.DefaultConfigFile, "config file")
}

// loadConfig loads the --config file, falling back to defaults and the
// environment when the default file does not exist.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path := cfgFile
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			path = ""
		}
	}
	return config.Load(path)
}
