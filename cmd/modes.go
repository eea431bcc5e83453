package main

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/sells-group/price-check/internal/model"
)

var modesCmd = &cobra.Command{
	Use:   "modes",
	Short: "List price modes",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		r := lipgloss.NewRenderer(out)
		headerStyle := r.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
		dimStyle := r.NewStyle().Foreground(lipgloss.Color("241"))

		fmt.Fprintln(out, headerStyle.Render("Price modes"))
		for _, m := range model.NewPriceModes().All() {
			marker := " "
			if m.Index == cfg.Pricing.PriceMode {
				marker = "*"
			}
			fmt.Fprintf(out, "%s %d  %-20s %s\n", marker, m.Index, m.Name, dimStyle.Render(m.Description))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(modesCmd)
}
