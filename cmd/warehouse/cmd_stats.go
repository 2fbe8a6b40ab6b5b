// Package main implements the stats CLI command.
package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show database statistics",
	RunE:  runStats,
}

var statsPretty bool

func init() {
	statsCmd.Flags().BoolVar(&statsPretty, "pretty", false, "Render as a formatted table")
}

func runStats(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	stats, err := st.Stats()
	if err != nil {
		return fmt.Errorf("failed to read stats: %w", err)
	}

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	if !statsPretty {
		for _, name := range names {
			fmt.Printf("%-20s %d\n", name, stats[name])
		}
		return nil
	}

	var md strings.Builder
	md.WriteString("# Warehouse\n\n")
	md.WriteString(fmt.Sprintf("Database: `%s`\n\n", st.Path()))
	md.WriteString("| Table | Rows |\n|---|---:|\n")
	for _, name := range names {
		md.WriteString(fmt.Sprintf("| %s | %d |\n", name, stats[name]))
	}

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to build renderer: %w", err)
	}
	out, err := renderer.Render(md.String())
	if err != nil {
		return fmt.Errorf("failed to render: %w", err)
	}
	fmt.Print(out)
	return nil
}
