// Package main implements operator account CLI commands.
package main

import (
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/term"
)

var usersCmd = &cobra.Command{
	Use:     "users",
	Aliases: []string{"user"},
	Short:   "Manage operator accounts",
	Long: `Manage operator accounts.

Subcommands:
  add      - Add an account
  list     - List accounts
  set-role - Change an account's role
  delete   - Delete an account`,
	RunE: runUsersList,
}

var usersAddCmd = &cobra.Command{
	Use:   "add <username>",
	Short: "Add an account (prompts for password)",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersAdd,
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE:  runUsersList,
}

var usersSetRoleCmd = &cobra.Command{
	Use:   "set-role <username> <role>",
	Short: "Change an account's role",
	Args:  cobra.ExactArgs(2),
	RunE:  runUsersSetRole,
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete <username>",
	Short: "Delete an account",
	Args:  cobra.ExactArgs(1),
	RunE:  runUsersDelete,
}

var userRole string

func init() {
	usersAddCmd.Flags().StringVar(&userRole, "role", "user", "Account role")

	usersCmd.AddCommand(usersAddCmd, usersListCmd, usersSetRoleCmd, usersDeleteCmd)
}

// readPassword prompts for a password without echo.
func readPassword(prompt string) (string, error) {
	fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(syscall.Stdin))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(pw), nil
}

func runUsersAdd(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	confirm, err := readPassword("Confirm: ")
	if err != nil {
		return err
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	if err := st.AddUser(args[0], password, userRole); err != nil {
		return fmt.Errorf("failed to add user: %w", err)
	}
	logger.Info("User added", zap.String("username", args[0]), zap.String("role", userRole))
	fmt.Printf("Added user %s (%s)\n", args[0], userRole)
	return nil
}

func runUsersList(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	users, err := st.ListUsers()
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	for _, u := range users {
		fmt.Printf("%-20s %s\n", u.Username, u.Role)
	}
	return nil
}

func runUsersSetRole(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.UpdateUserRole(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	fmt.Printf("Set role of %s to %s\n", args[0], args[1])
	return nil
}

func runUsersDelete(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	if err := st.DeleteUser(args[0]); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	fmt.Printf("Deleted user %s\n", args[0])
	return nil
}
