// Package main implements customer CLI commands.
package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mywarehouse/internal/store"
)

var customersCmd = &cobra.Command{
	Use:     "customers",
	Aliases: []string{"customer"},
	Short:   "Manage customers",
	Long: `List and manage customers.

Subcommands:
  add      - Add a customer
  update   - Update customer fields
  search   - Search customers by id, name, phone or email
  history  - Show a customer's assignment history`,
	RunE: runCustomersSearch,
}

var customersAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a customer",
	Args:  cobra.ExactArgs(1),
	RunE:  runCustomersAdd,
}

var customersUpdateCmd = &cobra.Command{
	Use:   "update <customer-id>",
	Short: "Update customer fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runCustomersUpdate,
}

var customersSearchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search customers",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCustomersSearch,
}

var customersHistoryCmd = &cobra.Command{
	Use:   "history <customer-id>",
	Short: "Show a customer's assignment history",
	Args:  cobra.ExactArgs(1),
	RunE:  runCustomersHistory,
}

var (
	customerID    string
	customerPhone string
	customerEmail string
	customerPIN   string
)

func init() {
	customersAddCmd.Flags().StringVar(&customerID, "id", "", "Customer ID (generated when empty)")
	customersAddCmd.Flags().StringVar(&customerPhone, "phone", "", "Phone number")
	customersAddCmd.Flags().StringVar(&customerEmail, "email", "", "Email address")
	customersAddCmd.Flags().StringVar(&customerPIN, "pin4", "", "4-digit identification code")

	customersUpdateCmd.Flags().StringVar(&customerPhone, "phone", "", "Phone number")
	customersUpdateCmd.Flags().StringVar(&customerEmail, "email", "", "Email address")
	customersUpdateCmd.Flags().StringVar(&customerPIN, "pin4", "", "4-digit identification code")
	customersUpdateCmd.Flags().String("name", "", "Customer name")

	customersCmd.AddCommand(customersAddCmd, customersUpdateCmd, customersSearchCmd, customersHistoryCmd)
}

func runCustomersAdd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	c, err := st.AddCustomer(store.Customer{
		ID:    customerID,
		Name:  args[0],
		Phone: customerPhone,
		Email: customerEmail,
		PIN4:  customerPIN,
	})
	if err != nil {
		return fmt.Errorf("failed to add customer: %w", err)
	}

	logger.Info("Customer added", zap.String("id", c.ID), zap.String("name", c.Name))
	fmt.Printf("Added customer %s (%s)\n", c.ID, c.Name)
	return nil
}

func runCustomersUpdate(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	fields := map[string]string{}
	for flag, column := range map[string]string{
		"name": "name", "phone": "phone", "email": "email", "pin4": "pin4",
	} {
		if cmd.Flags().Changed(flag) {
			v, _ := cmd.Flags().GetString(flag)
			fields[column] = v
		}
	}
	if len(fields) == 0 {
		return fmt.Errorf("nothing to update: pass at least one of --name, --phone, --email, --pin4")
	}

	if err := st.UpdateCustomer(args[0], fields); err != nil {
		return fmt.Errorf("failed to update customer %s: %w", args[0], err)
	}
	fmt.Printf("Updated customer %s\n", args[0])
	return nil
}

func runCustomersSearch(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	query := ""
	if len(args) > 0 {
		query = args[0]
	}
	customers, err := st.SearchCustomers(query)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(customers) == 0 {
		fmt.Println("No customers found.")
		return nil
	}
	for _, c := range customers {
		line := fmt.Sprintf("%-20s %s", c.ID, c.Name)
		if c.Phone != "" {
			line += "  " + c.Phone
		}
		if c.Email != "" {
			line += "  " + c.Email
		}
		fmt.Println(line)
	}
	fmt.Printf("Total: %d customers\n", len(customers))
	return nil
}

func runCustomersHistory(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	entries, err := st.CustomerHistory(args[0])
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(entries) == 0 {
		fmt.Println("No assignments.")
		return nil
	}

	fmt.Printf("History for %s\n", args[0])
	fmt.Println(strings.Repeat("─", 70))
	for _, e := range entries {
		status := "active"
		if e.Deleted {
			status = "returned"
		}
		fmt.Printf("%-12s %-24s %-20s %s", e.AssignedDate, e.MaterialName, e.Serial, status)
		if e.WarrantyExpiration != "" {
			fmt.Printf("  warranty until %s", e.WarrantyExpiration)
		}
		fmt.Println()
	}
	return nil
}
