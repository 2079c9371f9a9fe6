package main

import (
	"fmt"

	"github.com/prismfin/prism/internal/engine"
	"github.com/prismfin/prism/internal/logger"
	"github.com/prismfin/prism/internal/quote"
	"github.com/prismfin/prism/internal/quote/eastmoney"
	"github.com/prismfin/prism/internal/quote/yahoo"
	"github.com/spf13/cobra"
)

var (
	analyzeRange string
	analyzeSteps int
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <symbol>",
	Short: "Compute risk metrics and a trend forecast for one symbol",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeRange, "range", "3M", "history range (1M, 3M, 6M, 1Y)")
	analyzeCmd.Flags().IntVar(&analyzeSteps, "steps", 10, "forecast horizon in trading days")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	log := logger.Must(debug)
	defer log.Sync()

	cfg, err := loadConfig(log)
	if err != nil {
		return err
	}

	symbol := args[0]

	registry := quote.NewRegistry()
	registry.Register(yahoo.New())
	registry.Register(eastmoney.New())
	quotes := quote.NewService(registry, cfg.Benchmark.Symbol, log)

	closes, benchReturns, err := quotes.RiskInputs(symbol, analyzeRange)
	if err != nil {
		return fmt.Errorf("fetching history for %s: %w", symbol, err)
	}

	summary := engine.ComputeRiskSummary(closes, benchReturns)
	forecast := engine.ComputeForecast(closes, analyzeSteps)

	fmt.Printf("%s (%s, %d closes, benchmark %s)\n", symbol, analyzeRange, len(closes), cfg.Benchmark.Symbol)
	fmt.Printf("  Growth:      %8.4f %%\n", summary.Growth)
	fmt.Printf("  Volatility:  %8.4f %%\n", summary.Volatility)
	fmt.Printf("  Beta:        %8.4f\n", summary.Beta)
	fmt.Printf("  Covariance:  %8.6f\n", summary.Covariance)
	fmt.Printf("  Sharpe:      %8.4f\n", summary.Sharpe)
	fmt.Printf("  Confidence:  %8.4f %%\n", summary.Confidence)

	if len(forecast.Points) > 0 {
		fmt.Printf("  Forecast (%d steps, R²=%.4f):\n", analyzeSteps, forecast.RSquared)
		for i, p := range forecast.Points {
			fmt.Printf("    t+%-3d %10.2f\n", i+1, p)
		}
	}

	return nil
}
