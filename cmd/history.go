package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/price-check/internal/classify"
	"github.com/sells-group/price-check/internal/history"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent price checks",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.History.Driver == "" {
			return eris.New("history is disabled; set history.driver to sqlite or postgres")
		}

		rec, err := history.Open(cmd.Context(), cfg.History.Driver, cfg.History.DatabaseURL)
		if err != nil {
			return err
		}
		defer rec.Close() //nolint:errcheck

		if err := rec.Migrate(cmd.Context()); err != nil {
			return eris.Wrap(err, "migrate history")
		}

		entries, err := rec.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "no price checks recorded")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "TIME\tITEM\tWORLD\tRESULT\tPRICE\tMESSAGE")
		for _, e := range entries {
			name := e.Name
			if e.HQ {
				name += " (HQ)"
			}
			price := "-"
			if e.MarketPrice != nil {
				price = classify.FormatPrice(*e.MarketPrice)
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\t%s\n",
				e.EvaluatedAt.Local().Format("2006-01-02 15:04:05"), name, e.WorldID, e.Result, price, e.Message)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of entries to show")
	rootCmd.AddCommand(historyCmd)
}
