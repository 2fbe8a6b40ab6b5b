// Package main implements import/export CLI commands.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mywarehouse/internal/exchange"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import materials from a CSV or Excel file",
	Long: `Imports materials from a tabular file, chosen by extension
(.csv, .xlsx). Expected columns: name, model, producer, description,
retail_price, warranty_months, serials. Rows missing name or model are
skipped. Imported materials are categorized automatically.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export materials to a CSV or Excel file",
	Args:  cobra.ExactArgs(1),
	RunE:  runExport,
}

var exchangeUsed bool

func init() {
	importCmd.Flags().BoolVar(&exchangeUsed, "used", false, "Import into the used list")
	exportCmd.Flags().BoolVar(&exchangeUsed, "used", false, "Export the used list")
}

func runImport(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	count, err := exchange.ImportMaterials(st, args[0], exchangeUsed)
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	logger.Info("Import finished", zap.String("file", args[0]), zap.Int("materials", count))
	fmt.Printf("Imported %d materials from %s\n", count, args[0])
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	count, err := exchange.ExportMaterials(st, args[0], exchangeUsed)
	if err != nil {
		return fmt.Errorf("export failed: %w", err)
	}
	fmt.Printf("Exported %d materials to %s\n", count, args[0])
	return nil
}
