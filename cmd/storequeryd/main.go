// Package main implements storequeryd, the store search and analytics daemon.
//
// storequeryd serves relevance-ranked catalog and conversation search, order
// lookup, and analytics rollups over HTTP. Every data route is scoped to the
// tenant named in the X-Tenant-ID header.
//
// Usage:
//
//	# Start the server with defaults
//	storequeryd serve
//
//	# Start with a config file
//	storequeryd serve --config /etc/storequery/config.yaml
//
//	# Populate a tenant with sample data
//	storequeryd seed --tenant shop-a --orders 25
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Version information, set via ldflags during build.
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

// configPath is the shared --config flag value.
var configPath string

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "storequeryd",
	Short: "Store search and analytics daemon",
	Long: `storequeryd serves multi-tenant catalog search, conversation search,
order lookup, and analytics rollups over HTTP.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("storequeryd\n")
		fmt.Printf("Version:    %s\n", version)
		fmt.Printf("Commit:     %s\n", gitCommit)
		fmt.Printf("Build Date: %s\n", buildDate)
	},
}
