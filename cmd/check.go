package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/price-check/internal/config"
	"github.com/sells-group/price-check/internal/game"
	"github.com/sells-group/price-check/internal/model"
)

var (
	checkItem  uint64
	checkHQ    bool
	checkWorld uint32
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Price check a single item once",
	RunE: func(cmd *cobra.Command, args []string) error {
		if checkItem == 0 {
			return eris.New("--item is required")
		}
		if checkWorld == 0 {
			return eris.New("--world is required")
		}

		ev := model.NormalizeInterest(checkItem)
		if checkHQ {
			ev.HQ = true
		}

		current := func() *config.Config { return cfg }
		env, err := initEnv(cmd.Context(), current, os.Stdout, game.NewSession(game.State{WorldID: checkWorld}))
		if err != nil {
			return err
		}
		defer env.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), cfg.Market.RequestTimeout()*2)
		defer cancel()

		item, ok := env.Service.Process(ctx, ev.ItemID, ev.HQ)
		if !ok {
			return eris.Errorf("price check for item %d timed out", ev.ItemID)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "%s: %s (%s)\n", item.DisplayName(), item.Message, item.Result)
		if item.MarketPrice != nil {
			fmt.Fprintf(out, "  market %d, vendor %d\n", *item.MarketPrice, item.VendorPrice)
		}
		return nil
	},
}

func init() {
	checkCmd.Flags().Uint64Var(&checkItem, "item", 0, "item id (ids above 1000000 are high quality)")
	checkCmd.Flags().BoolVar(&checkHQ, "hq", false, "check the high quality variant")
	checkCmd.Flags().Uint32Var(&checkWorld, "world", 0, "world id to price against")
	rootCmd.AddCommand(checkCmd)
}
