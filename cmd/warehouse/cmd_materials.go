// Package main implements material CLI commands.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mywarehouse/internal/store"
)

var materialsCmd = &cobra.Command{
	Use:     "materials",
	Aliases: []string{"material"},
	Short:   "Manage materials",
	Long: `List and manage materials.

Subcommands:
  add          - Add a material
  list         - List materials, optionally filtered
  set-category - Set or clear a material's manual category
  categorize   - Re-run automatic categorisation
  categories   - List known categories`,
	RunE: runMaterialsList,
}

var materialsAddCmd = &cobra.Command{
	Use:   "add <name> <model>",
	Short: "Add a material",
	Args:  cobra.ExactArgs(2),
	RunE:  runMaterialsAdd,
}

var materialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List materials",
	RunE:  runMaterialsList,
}

var materialsSetCategoryCmd = &cobra.Command{
	Use:   "set-category <material-id> [category]",
	Short: "Set a material's manual category (omit category to clear)",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runMaterialsSetCategory,
}

var materialsCategorizeCmd = &cobra.Command{
	Use:   "categorize [material-id]",
	Short: "Re-run automatic categorisation",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runMaterialsCategorize,
}

var materialsCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List known categories",
	RunE:  runMaterialsCategories,
}

var (
	materialProducer    string
	materialDescription string
	materialPrice       string
	materialWarranty    int
	materialUsed        bool
	listQuery           string
	listCategory        string
	categorizeAll       bool
)

func init() {
	materialsAddCmd.Flags().StringVar(&materialProducer, "producer", "", "Producer name")
	materialsAddCmd.Flags().StringVar(&materialDescription, "description", "", "Description")
	materialsAddCmd.Flags().StringVar(&materialPrice, "price", "", "Retail price")
	materialsAddCmd.Flags().IntVar(&materialWarranty, "warranty", 0, "Warranty in months")
	materialsAddCmd.Flags().BoolVar(&materialUsed, "used", false, "Add to the used list")

	materialsListCmd.Flags().BoolVar(&materialUsed, "used", false, "List used materials")
	materialsListCmd.Flags().StringVar(&listQuery, "query", "", "Filter by name, model, producer or description")
	materialsListCmd.Flags().StringVar(&listCategory, "category", "", "Filter by effective category")

	materialsCategorizeCmd.Flags().BoolVar(&categorizeAll, "all", false, "Categorize every uncategorized material")

	materialsCmd.AddCommand(materialsAddCmd, materialsListCmd, materialsSetCategoryCmd,
		materialsCategorizeCmd, materialsCategoriesCmd)
}

func runMaterialsAdd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	m := store.Material{
		Name:        args[0],
		Model:       args[1],
		Producer:    materialProducer,
		Description: materialDescription,
		IsUsed:      materialUsed,
	}
	if materialPrice != "" {
		price, err := decimal.NewFromString(materialPrice)
		if err != nil {
			return fmt.Errorf("invalid price %q: %w", materialPrice, err)
		}
		m.RetailPrice = decimal.NewNullDecimal(price)
	}
	if cmd.Flags().Changed("warranty") {
		m.WarrantyMonths.Int64 = int64(materialWarranty)
		m.WarrantyMonths.Valid = true
	}

	id, err := st.AddMaterial(m)
	if err != nil {
		return fmt.Errorf("failed to add material: %w", err)
	}

	categorized, err := st.Autocategorize(id)
	if err != nil {
		logger.Warn("Autocategorize failed", zap.Int64("id", id), zap.Error(err))
	}

	fmt.Printf("Added material %d: %s %s", id, m.Name, m.Model)
	if categorized != nil && categorized.AutoCategory != "" {
		fmt.Printf("  [%s %.0f%%]", categorized.AutoCategory, categorized.AutoConfidence*100)
	}
	fmt.Println()
	return nil
}

func runMaterialsList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	materials, err := st.ListMaterials(store.MaterialFilter{
		Used:     materialUsed,
		Query:    listQuery,
		Category: listCategory,
	})
	if err != nil {
		return fmt.Errorf("failed to list materials: %w", err)
	}
	if len(materials) == 0 {
		fmt.Println("No materials found.")
		return nil
	}

	fmt.Printf("%-5s %-24s %-20s %-14s %9s %7s\n",
		"ID", "NAME", "MODEL", "CATEGORY", "PRICE", "STOCK")
	fmt.Println(strings.Repeat("─", 84))
	for _, m := range materials {
		price := ""
		if m.RetailPrice.Valid {
			price = m.RetailPrice.Decimal.StringFixed(2)
		}
		fmt.Printf("%-5d %-24s %-20s %-14s %9s %3d/%-3d\n",
			m.ID, truncate(m.Name, 24), truncate(m.Model, 20),
			truncate(m.EffectiveCategory(), 14), price,
			m.AvailableSerials, m.TotalSerials)
	}
	fmt.Printf("Total: %d materials\n", len(materials))
	return nil
}

func runMaterialsSetCategory(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid material id %q", args[0])
	}
	category := ""
	if len(args) > 1 {
		category = args[1]
	}

	if err := st.SetMaterialCategory(id, category); err != nil {
		return fmt.Errorf("failed to set category: %w", err)
	}
	if category == "" {
		fmt.Printf("Cleared category of material %d\n", id)
	} else {
		fmt.Printf("Set category of material %d to %s\n", id, category)
	}
	return nil
}

func runMaterialsCategorize(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if categorizeAll {
		changed, err := st.BatchAutocategorize(true, cfg.Categorizer.BatchWorkers)
		if err != nil {
			return fmt.Errorf("batch categorisation failed: %w", err)
		}
		for _, m := range changed {
			fmt.Printf("%-5d %-24s -> %s (%.0f%%)\n",
				m.ID, truncate(m.Name, 24), m.AutoCategory, m.AutoConfidence*100)
		}
		fmt.Printf("Categorized %d materials\n", len(changed))
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("pass a material id or --all")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid material id %q", args[0])
	}
	m, err := st.Autocategorize(id)
	if err != nil {
		return fmt.Errorf("categorisation failed: %w", err)
	}
	if m.AutoCategory == "" {
		fmt.Printf("No category found for material %d\n", id)
	} else {
		fmt.Printf("Material %d: %s (%.0f%%, family %s)\n",
			id, m.AutoCategory, m.AutoConfidence*100, m.ModelFamily)
	}
	return nil
}

func runMaterialsCategories(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	categories, err := st.AllCategories()
	if err != nil {
		return fmt.Errorf("failed to list categories: %w", err)
	}
	dynamic, err := st.DynamicCategories(cfg.Categorizer.DynamicMinCount)
	if err != nil {
		return fmt.Errorf("failed to list dynamic categories: %w", err)
	}

	for _, c := range categories {
		fmt.Println(c)
	}
	if len(dynamic) > 0 {
		fmt.Printf("\nFrequent auto categories: %s\n", strings.Join(dynamic, ", "))
	}
	return nil
}

// truncate shortens s to max runes. Byte slicing would cut Greek
// material names mid-rune.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
