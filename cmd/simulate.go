package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gridflex/flexcore/app"
	"github.com/gridflex/flexcore/config"
	"github.com/gridflex/flexcore/core/clock"
	"github.com/gridflex/flexcore/infra/logger"
)

var (
	simulateStart   int64
	simulateStep    int64
	simulatePeriods int
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Clear the configured market over a horizon of periods",
	RunE:  runSimulate,
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Clear the configured market for a single period",
	RunE:  runClear,
}

func init() {
	simulateCmd.Flags().Int64Var(&simulateStart, "start", 0, "first period's start timestamp")
	simulateCmd.Flags().Int64Var(&simulateStep, "step", 3600, "period duration in seconds")
	simulateCmd.Flags().IntVar(&simulatePeriods, "periods", 24, "number of periods to clear")
	clearCmd.Flags().Int64Var(&simulateStart, "start", 0, "period start timestamp")
	clearCmd.Flags().Int64Var(&simulateStep, "step", 3600, "period duration in seconds")
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(clearCmd)
}

func runSimulate(cmd *cobra.Command, args []string) error {
	return simulate(simulatePeriods)
}

func runClear(cmd *cobra.Command, args []string) error {
	return simulate(1)
}

func simulate(periods int) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	sim, err := app.New(cfg)
	if err != nil {
		return fmt.Errorf("build simulation: %w", err)
	}
	defer func() {
		if err := sim.Close(); err != nil {
			logger.New("main").Errorf("simulation close: %v", err)
		}
	}()

	return sim.Run(ctx, clock.TimeStamp(simulateStart), clock.Duration(simulateStep), periods)
}
