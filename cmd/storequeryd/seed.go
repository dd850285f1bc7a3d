package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/oakmere/storequery/internal/config"
	"github.com/oakmere/storequery/internal/logging"
	"github.com/oakmere/storequery/internal/seed"
	"github.com/oakmere/storequery/internal/storage"
	"github.com/oakmere/storequery/internal/tenant"
)

var (
	seedTenant string
	seedOrders int
	seedRNG    int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Populate a tenant with sample data",
	Long: `Populate a tenant with sample products, orders, conversations, and
analytics events for demos and local development.

Examples:
  # Seed the default volume of data
  storequeryd seed --tenant shop-a

  # More orders, reproducible across runs
  storequeryd seed --tenant shop-a --orders 50 --rng-seed 42`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed(cmd)
	},
}

func init() {
	seedCmd.Flags().StringVar(&seedTenant, "tenant", "", "tenant to seed (required)")
	seedCmd.Flags().IntVar(&seedOrders, "orders", 10, "number of sample orders")
	seedCmd.Flags().Int64Var(&seedRNG, "rng-seed", time.Now().UnixNano(), "random seed for reproducible runs")
	_ = seedCmd.MarkFlagRequired("tenant")
}

func runSeed(cmd *cobra.Command) error {
	id := tenant.ID(seedTenant)
	if err := id.Validate(); err != nil {
		return fmt.Errorf("invalid tenant: %w", err)
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	store, err := storage.Open(cfg.Storage.Path, logger)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer store.Close()

	if err := seed.New(store, logger, seedRNG).Run(cmd.Context(), id, seedOrders); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	fmt.Printf("Seeded tenant %s: %d orders plus sample products, conversations, and events\n",
		seedTenant, seedOrders)
	return nil
}
