package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"SignalDesk/internal/catalog"
)

var (
	signalSymbol string
	signalJSON   bool
)

var signalCmd = &cobra.Command{
	Use:   "signal",
	Short: "Evaluate one signal",
	Long:  "Fetch bars for a symbol from the configured source and print the aggregated signal",
	Example: `  signald signal --symbol EUR/USD
  signald signal -s GOLD --json`,
	RunE: runSignal,
}

func init() {
	signalCmd.Flags().StringVarP(&signalSymbol, "symbol", "s", "EUR/USD", "catalog symbol to evaluate")
	signalCmd.Flags().BoolVar(&signalJSON, "json", false, "print the full signal as JSON")
	rootCmd.AddCommand(signalCmd)
}

func runSignal(cmd *cobra.Command, _ []string) error {
	symbol := strings.ToUpper(strings.TrimSpace(signalSymbol))
	if _, err := catalog.Lookup(symbol); err != nil {
		return err
	}
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	cfg.Market.Symbols = []string{symbol}

	f, err := newFeed(cfg)
	if err != nil {
		return err
	}
	snap, err := newCollector(cfg, f.fetcher).Collect(cmd.Context(), symbol)
	if err != nil {
		return fmt.Errorf("collect %s: %w", symbol, err)
	}

	out := cmd.OutOrStdout()
	if signalJSON {
		return writeJSON(out, snap.Signal)
	}
	sig := snap.Signal
	fmt.Fprintf(out, "%s %s strength=%.2f confidence=%.2f risk=%s timeframe=%s price=%v\n",
		sig.Asset, sig.Signal, sig.Strength, sig.Confidence, sig.RiskLevel, sig.Timeframe, snap.Market.CurrentPrice)
	fmt.Fprintf(out, "market: %s\n", snap.Condition.Description)
	for _, r := range sig.Reasoning {
		fmt.Fprintf(out, "  - %s\n", r)
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
