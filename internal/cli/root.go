// Package cli wires the pulsegraph commands: serve, refresh, seed, and
// config management.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pulsegraph/pulsegraph/internal/model"
)

var (
	cfgFile string
	verbose bool
	offline bool
)

var rootCmd = &cobra.Command{
	Use:   "pulsegraph",
	Short: "PulseGraph - freshness-driven earnings knowledge graph",
	Long: `PulseGraph maintains a knowledge graph of company earnings events.

It discovers coverage of an earnings period, fetches and extracts
structured claims with verbatim evidence, and merges everything into the
graph idempotently. A staleness policy decides when cached knowledge
needs refreshing, and an HTTP API answers questions from the graph.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("pulsegraph v0.1.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.pulsegraph/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVar(&offline, "offline", false, "use the in-memory store instead of Neo4j")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads the config file and PULSEGRAPH_* environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}
		viper.AddConfigPath(home + "/.pulsegraph")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("PULSEGRAPH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

// loadConfig layers the config file and environment over the defaults.
// Well-known credential variables fill any key the file left empty.
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if cfg.Extract.APIKey == "" {
		cfg.Extract.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if key := os.Getenv("BRIGHTDATA_API_KEY"); key != "" {
		if cfg.Discovery.APIKey == "" {
			cfg.Discovery.APIKey = key
		}
		if cfg.Fetch.APIKey == "" {
			cfg.Fetch.APIKey = key
		}
	}
	if cfg.Discovery.SERPZone == "" {
		cfg.Discovery.SERPZone = os.Getenv("BRIGHTDATA_SERP_ZONE")
	}
	if cfg.Fetch.UnlockerZone == "" {
		cfg.Fetch.UnlockerZone = os.Getenv("BRIGHTDATA_UNLOCKER_ZONE")
	}
	if cfg.Graph.Password == "" {
		cfg.Graph.Password = os.Getenv("NEO4J_PASSWORD")
	}
	return cfg, nil
}
