// Package main implements serial number CLI commands.
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"mywarehouse/internal/store"
)

var serialsCmd = &cobra.Command{
	Use:     "serials",
	Aliases: []string{"serial"},
	Short:   "Manage serial numbers",
	Long: `Manage serial numbers.

Subcommands:
  add      - Add serial numbers to a material
  delete   - Delete serial numbers
  list     - List a material's serial numbers
  assign   - Assign a serial to a customer
  unassign - Return a serial to stock
  transfer - Move serials to the used list`,
}

var serialsAddCmd = &cobra.Command{
	Use:   "add <material-id> <serial>...",
	Short: "Add serial numbers to a material",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runSerialsAdd,
}

var serialsDeleteCmd = &cobra.Command{
	Use:   "delete <serial>...",
	Short: "Delete serial numbers",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSerialsDelete,
}

var serialsListCmd = &cobra.Command{
	Use:   "list <material-id>",
	Short: "List a material's serial numbers",
	Args:  cobra.ExactArgs(1),
	RunE:  runSerialsList,
}

var serialsAssignCmd = &cobra.Command{
	Use:   "assign <customer-id> <serial>",
	Short: "Assign a serial to a customer",
	Args:  cobra.ExactArgs(2),
	RunE:  runSerialsAssign,
}

var serialsUnassignCmd = &cobra.Command{
	Use:   "unassign <serial>",
	Short: "Return a serial to stock",
	Args:  cobra.ExactArgs(1),
	RunE:  runSerialsUnassign,
}

var serialsTransferCmd = &cobra.Command{
	Use:   "transfer <serial>...",
	Short: "Move serials to the used list",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSerialsTransfer,
}

var (
	serialProduction  string
	serialAcquisition string
	unassignForce     bool
	transferFrom      string
	listAssigned      bool
)

func init() {
	serialsAddCmd.Flags().StringVar(&serialProduction, "production-date", "", "Production date (YYYY-MM-DD)")
	serialsAddCmd.Flags().StringVar(&serialAcquisition, "acquisition-date", "", "Acquisition date (YYYY-MM-DD)")

	serialsListCmd.Flags().BoolVar(&listAssigned, "assigned", false, "Include assigned serials")

	serialsUnassignCmd.Flags().BoolVar(&unassignForce, "force", false, "Erase the assignment instead of keeping it in history")

	serialsTransferCmd.Flags().StringVar(&transferFrom, "from-customer", "", "Unassign from this customer before transferring")

	serialsCmd.AddCommand(serialsAddCmd, serialsDeleteCmd, serialsListCmd,
		serialsAssignCmd, serialsUnassignCmd, serialsTransferCmd)
}

func runSerialsAdd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid material id %q", args[0])
	}

	added, skipped, err := st.AddSerials(id, args[1:], store.SerialOptions{
		ProductionDate:  serialProduction,
		AcquisitionDate: serialAcquisition,
	})
	if err != nil {
		return fmt.Errorf("failed to add serials: %w", err)
	}

	fmt.Printf("Added %d serials to material %d\n", added, id)
	if len(skipped) > 0 {
		fmt.Printf("Skipped %d duplicates: %s\n", len(skipped), strings.Join(skipped, ", "))
	}
	return nil
}

func runSerialsDelete(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	valid, invalid, err := st.ResolveSerials(args)
	if err != nil {
		return fmt.Errorf("failed to resolve serials: %w", err)
	}
	if len(invalid) > 0 {
		fmt.Printf("Unknown serials (ignored): %s\n", strings.Join(invalid, ", "))
	}
	if len(valid) == 0 {
		return fmt.Errorf("no known serials to delete")
	}

	if err := st.DeleteSerials(valid); err != nil {
		return fmt.Errorf("failed to delete serials: %w", err)
	}
	logger.Info("Serials deleted", zap.Int("count", len(valid)))
	fmt.Printf("Deleted %d serials\n", len(valid))
	return nil
}

func runSerialsList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid material id %q", args[0])
	}

	serials, err := st.SerialsByMaterial(id, listAssigned)
	if err != nil {
		return fmt.Errorf("failed to list serials: %w", err)
	}
	if len(serials) == 0 {
		fmt.Println("No serials.")
		return nil
	}

	for _, sn := range serials {
		line := sn.Serial
		if sn.ProductionDate != "" {
			line += "  produced " + sn.ProductionDate
		}
		if sn.AssignedTo != "" {
			line += "  assigned to " + sn.AssignedTo
		}
		fmt.Println(line)
	}
	fmt.Printf("Total: %d serials\n", len(serials))
	return nil
}

func runSerialsAssign(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.AssignSerial(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to assign %s: %w", args[1], err)
	}
	fmt.Printf("Assigned %s to %s\n", args[1], args[0])
	return nil
}

func runSerialsUnassign(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.UnassignSerial(args[0], unassignForce); err != nil {
		return fmt.Errorf("failed to unassign %s: %w", args[0], err)
	}
	fmt.Printf("Returned %s to stock\n", args[0])
	return nil
}

func runSerialsTransfer(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.TransferToUsed(args, transferFrom); err != nil {
		return fmt.Errorf("transfer failed: %w", err)
	}
	fmt.Printf("Transferred %d serials to the used list\n", len(args))
	return nil
}
