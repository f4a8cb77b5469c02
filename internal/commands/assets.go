package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"SignalDesk/internal/catalog"
	"SignalDesk/internal/model"
)

var (
	assetsType string
	assetsJSON bool
)

var assetsCmd = &cobra.Command{
	Use:   "assets",
	Short: "List tradable assets",
	Long:  "List the active instruments of the asset catalog, optionally filtered by type",
	RunE:  runAssets,
}

func init() {
	assetsCmd.Flags().StringVarP(&assetsType, "type", "t", "", "filter by type (CURRENCY, INDEX, COMMODITY, CRYPTO, STOCK, OTC)")
	assetsCmd.Flags().BoolVar(&assetsJSON, "json", false, "print as JSON")
	rootCmd.AddCommand(assetsCmd)
}

func runAssets(cmd *cobra.Command, _ []string) error {
	assets := catalog.Active()
	if t := strings.ToUpper(strings.TrimSpace(assetsType)); t != "" {
		assets = catalog.ByType(model.AssetClass(t))
	}

	out := cmd.OutOrStdout()
	if assetsJSON {
		return writeJSON(out, assets)
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SYMBOL\tNAME\tTYPE\tCATEGORY\tBASE\tSPREAD")
	for _, a := range assets {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%v\t%v\n", a.Symbol, a.Name, a.Type, a.Category, a.BasePrice, a.Spread)
	}
	return w.Flush()
}
