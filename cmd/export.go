package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gridflex/flexcore/config"
	"github.com/gridflex/flexcore/core/settlement"
	"github.com/gridflex/flexcore/pkg/export"
)

var (
	exportFormat   string
	exportOut      string
	exportTraderID string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export settlement records as CSV or JSON",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "output format: csv or json")
	exportCmd.Flags().StringVar(&exportOut, "out", "-", "output file, or - for stdout")
	exportCmd.Flags().StringVar(&exportTraderID, "trader", "", "restrict export to one trader")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	store, err := cfg.Settlement.Build()
	if err != nil {
		return fmt.Errorf("open settlement store: %w", err)
	}
	defer func() { _ = store.Close() }()

	records, err := store.Query(cmd.Context(), settlement.Query{TraderID: exportTraderID})
	if err != nil {
		return fmt.Errorf("query settlement store: %w", err)
	}

	w := cmd.OutOrStdout()
	if exportOut != "-" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		w = f
	}

	switch exportFormat {
	case "csv":
		return export.WriteCSV(w, records)
	case "json":
		return export.WriteJSON(w, records)
	default:
		return fmt.Errorf("unknown export format %s", exportFormat)
	}
}
