package main

import (
	"context"
	"log"
	"time"

	"github.com/spf13/cobra"

	"github.com/freshlane/trade-api/internal/seed"
	"github.com/freshlane/trade-api/migrations"
)

func seedCmd(logger *log.Logger) *cobra.Command {
	var seedValue int64

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load deterministic demo data",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd.Context(), logger, seedValue)
		},
	}
	cmd.Flags().Int64Var(&seedValue, "seed", 1, "seed value for deterministic data")
	return cmd
}

func runSeed(ctx context.Context, logger *log.Logger, seedValue int64) error {
	loadEnvFile(logger)

	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	pool, err := openPool(startupCtx, logger)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := migrations.Apply(startupCtx, pool); err != nil {
		logger.Printf("apply migrations: %v", err)
		return err
	}

	builder := seed.NewBuilder(seedValue, time.Now())
	applied, err := builder.Build().Apply(startupCtx, pool)
	if err != nil {
		logger.Printf("apply seed: %v", err)
		return err
	}
	if !applied {
		logger.Printf("database already has data, seed skipped")
		return nil
	}

	zones, bays, slots, rfqs, quotes := builder.Counts()
	logger.Printf("seeded %d zones, %d bays, %d slots, %d rfqs, %d quotes", zones, bays, slots, rfqs, quotes)
	return nil
}
